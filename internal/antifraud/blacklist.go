package antifraud

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bychrisr/hub-defisats-sub012/pkg/logger"
)

// BlacklistService manages the TTL-backed denylist that can unconditionally
// veto a registration or coupon redemption.
type BlacklistService struct {
	repo  BlacklistRepository
	cache BlacklistCache
}

// NewBlacklistService creates a blacklist service. cache may be nil, which
// disables the hot-path cache.
func NewBlacklistService(repo BlacklistRepository, cache BlacklistCache) *BlacklistService {
	return &BlacklistService{repo: repo, cache: cache}
}

// IsBlacklisted reports whether an active entry exists for (type, value)
func (s *BlacklistService) IsBlacklisted(ctx context.Context, entryType BlacklistType, value string) (bool, error) {
	entry, err := s.findActive(ctx, entryType, value)
	if err != nil {
		return false, err
	}
	return entry != nil, nil
}

func (s *BlacklistService) findActive(ctx context.Context, entryType BlacklistType, value string) (*BlacklistEntry, error) {
	if s.cache != nil {
		if reason, ok := s.cache.GetHit(ctx, entryType, value); ok {
			return &BlacklistEntry{Type: entryType, Value: value, Reason: reason}, nil
		}
	}

	entry, err := s.repo.FindActive(ctx, entryType, value)
	if err != nil {
		return nil, err
	}
	if entry != nil && s.cache != nil {
		s.cache.SetHit(ctx, entryType, entry.Value, entry.Reason)
	}

	return entry, nil
}

// Add inserts or refreshes an entry for (type, value). expiresInHours nil
// means the entry never expires.
func (s *BlacklistService) Add(ctx context.Context, entryType BlacklistType, value, reason string, expiresInHours *int, autoAdded bool) error {
	now := time.Now()
	entry := &BlacklistEntry{
		ID:        uuid.New(),
		Type:      entryType,
		Value:     value,
		Reason:    reason,
		AutoAdded: autoAdded,
		CreatedAt: now,
	}
	if expiresInHours != nil {
		expiresAt := now.Add(time.Duration(*expiresInHours) * time.Hour)
		entry.ExpiresAt = &expiresAt
	}

	if err := s.repo.Upsert(ctx, entry); err != nil {
		return err
	}

	// The stored reason may differ from the cached one after an upsert
	if s.cache != nil {
		s.cache.Invalidate(ctx, entryType, value)
	}

	logger.Info("blacklist entry added",
		zap.String("type", string(entryType)),
		zap.String("value", value),
		zap.Bool("auto_added", autoAdded),
	)

	return nil
}

// Remove deletes all entries for (type, value)
func (s *BlacklistService) Remove(ctx context.Context, entryType BlacklistType, value string) error {
	if err := s.repo.Delete(ctx, entryType, value); err != nil {
		return err
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx, entryType, value)
	}
	return nil
}

// List returns entries newest first, optionally filtered by type
func (s *BlacklistService) List(ctx context.Context, entryType BlacklistType) ([]*BlacklistEntry, error) {
	return s.repo.List(ctx, entryType)
}

// CleanupExpired removes entries whose TTL has passed and returns the count.
// Reads racing the cleanup may briefly see a soon-to-expire entry; that is
// acceptable for a denylist.
func (s *BlacklistService) CleanupExpired(ctx context.Context) (int64, error) {
	removed, err := s.repo.DeleteExpired(ctx, time.Now())
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		blacklistCleanupTotal.Add(float64(removed))
		logger.Info("expired blacklist entries removed", zap.Int64("count", removed))
	}
	return removed, nil
}

// CheckMultiple reports whether any of the keys has an active entry,
// short-circuiting on the first hit.
func (s *BlacklistService) CheckMultiple(ctx context.Context, checks []BlacklistKey) (bool, error) {
	for _, check := range checks {
		blocked, err := s.IsBlacklisted(ctx, check.Type, check.Value)
		if err != nil {
			return false, err
		}
		if blocked {
			return true, nil
		}
	}
	return false, nil
}

// CheckRegistration runs the veto check for a registration attempt. The order
// is fixed: email domain first, then IP, then fingerprint when present; the
// first hit determines the reported type and reason.
func (s *BlacklistService) CheckRegistration(ctx context.Context, email, ip, fingerprint string) (*RegistrationCheck, error) {
	checks := []BlacklistKey{
		{Type: BlacklistTypeEmailDomain, Value: EmailDomain(email)},
		{Type: BlacklistTypeIP, Value: ip},
	}
	if fingerprint != "" {
		checks = append(checks, BlacklistKey{Type: BlacklistTypeFingerprint, Value: fingerprint})
	}

	for _, check := range checks {
		entry, err := s.findActive(ctx, check.Type, check.Value)
		if err != nil {
			return nil, fmt.Errorf("check %s blacklist: %w", check.Type, err)
		}
		if entry != nil {
			blacklistHitsTotal.WithLabelValues(string(check.Type)).Inc()
			return &RegistrationCheck{
				IsBlocked: true,
				Reason:    entry.Reason,
				Type:      check.Type,
			}, nil
		}
	}

	return &RegistrationCheck{IsBlocked: false}, nil
}

// EmailDomain extracts the lower-cased domain part of an email address
func EmailDomain(email string) string {
	parts := strings.Split(email, "@")
	if len(parts) < 2 {
		return ""
	}
	return strings.ToLower(parts[1])
}
