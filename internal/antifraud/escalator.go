package antifraud

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/bychrisr/hub-defisats-sub012/pkg/logger"
)

// Escalation thresholds and the TTL of the resulting blacklist entries
const (
	escalateIPThreshold = 5
	escalateIPWindow    = 24 * time.Hour
	escalateIPTTLHours  = 24
	escalateFPThreshold = 3
	escalateFPWindow    = 7 * 24 * time.Hour
	escalateFPTTLHours  = 168
)

// AutoEscalator promotes repeat offenders into the blacklist after an event
// is finalized. Calling it repeatedly for the same identifiers is safe: the
// blacklist upsert converges on a single refreshed entry.
type AutoEscalator struct {
	blacklist *BlacklistService
	ledger    UsageLedgerRepository
}

// NewAutoEscalator creates an auto-escalator
func NewAutoEscalator(blacklist *BlacklistService, ledger UsageLedgerRepository) *AutoEscalator {
	return &AutoEscalator{blacklist: blacklist, ledger: ledger}
}

// Escalate checks the IP and fingerprint thresholds and blacklists whichever
// crossed them. It runs after the event outcome, independent of the decision.
func (e *AutoEscalator) Escalate(ctx context.Context, ip, fingerprint string) error {
	ipCount, err := e.ledger.CountByIP(ctx, ip, time.Now().Add(-escalateIPWindow))
	if err != nil {
		return fmt.Errorf("count ip usage for escalation: %w", err)
	}
	if ipCount >= escalateIPThreshold {
		ttl := escalateIPTTLHours
		reason := fmt.Sprintf("Auto-bloqueado: %d registros em 24h", ipCount)
		if err := e.blacklist.Add(ctx, BlacklistTypeIP, ip, reason, &ttl, true); err != nil {
			return fmt.Errorf("auto-blacklist ip: %w", err)
		}
		logger.Warn("ip auto-escalated to blacklist", zap.String("ip", ip), zap.Int("count", ipCount))
	}

	if fingerprint == "" {
		return nil
	}

	fpCount, err := e.ledger.CountByFingerprint(ctx, fingerprint, time.Now().Add(-escalateFPWindow))
	if err != nil {
		return fmt.Errorf("count fingerprint usage for escalation: %w", err)
	}
	if fpCount >= escalateFPThreshold {
		ttl := escalateFPTTLHours
		reason := fmt.Sprintf("Auto-bloqueado: %d registros em 7 dias", fpCount)
		if err := e.blacklist.Add(ctx, BlacklistTypeFingerprint, fingerprint, reason, &ttl, true); err != nil {
			return fmt.Errorf("auto-blacklist fingerprint: %w", err)
		}
		logger.Warn("fingerprint auto-escalated to blacklist", zap.String("fingerprint", fingerprint), zap.Int("count", fpCount))
	}

	return nil
}
