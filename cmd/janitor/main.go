package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bychrisr/hub-defisats-sub012/internal/antifraud"
	"github.com/bychrisr/hub-defisats-sub012/pkg/config"
	"github.com/bychrisr/hub-defisats-sub012/pkg/database"
	"github.com/bychrisr/hub-defisats-sub012/pkg/logger"
	"github.com/bychrisr/hub-defisats-sub012/pkg/redis"
)

func main() {
	// Load configuration
	cfg, err := config.Load("antifraud-janitor")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Server.Environment); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Connect to PostgreSQL
	pool, err := database.NewPostgresPool(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(pool)
	log.Println("Connected to PostgreSQL database")

	// Connect to Redis
	redisClient, err := redis.NewRedisClient(&cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()
	log.Println("Connected to Redis")

	repo := antifraud.NewRepository(pool)
	cache := antifraud.NewRedisBlacklistCache(redisClient.Client, cfg.Antifraud.BlacklistCacheTTL)
	blacklist := antifraud.NewBlacklistService(repo, cache)
	janitor := antifraud.NewJanitor(blacklist, cfg.Antifraud.CleanupInterval)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go janitor.Run(ctx)

	// Ops endpoints only: liveness and metrics
	router := gin.Default()
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": cfg.Server.ServiceName})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	srv := &http.Server{Addr: ":" + cfg.Server.Port, Handler: router}
	go func() {
		<-ctx.Done()
		_ = srv.Shutdown(context.Background())
	}()

	log.Printf("Janitor service starting on port %s", cfg.Server.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}
