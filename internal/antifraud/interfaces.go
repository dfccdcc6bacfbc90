package antifraud

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// BlacklistRepository defines the persistence contract for blacklist entries
type BlacklistRepository interface {
	// Upsert atomically inserts or refreshes the entry keyed by (type, value).
	// On conflict the stored reason gets the " (atualizado)" suffix and the
	// expiry and auto_added flags are overwritten.
	Upsert(ctx context.Context, entry *BlacklistEntry) error

	// FindActive returns the active entry for the key, or nil when the key is
	// absent or every matching entry has expired.
	FindActive(ctx context.Context, entryType BlacklistType, value string) (*BlacklistEntry, error)

	// Delete removes all rows matching the key
	Delete(ctx context.Context, entryType BlacklistType, value string) error

	// List returns entries ordered by created_at descending, optionally
	// filtered by type (empty type means all).
	List(ctx context.Context, entryType BlacklistType) ([]*BlacklistEntry, error)

	// DeleteExpired removes rows whose expiry is at or before now and returns
	// how many were removed.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// UsageLedgerRepository defines the persistence contract for the append-only
// usage ledger, the risk audit trail, and coupon limits.
type UsageLedgerRepository interface {
	InsertUsage(ctx context.Context, record *UsageRecord) error
	InsertRiskLog(ctx context.Context, entry *RiskLog) error

	// Time-windowed aggregates over usage records
	CountByIP(ctx context.Context, ip string, since time.Time) (int, error)
	CountByFingerprint(ctx context.Context, fingerprint string, since time.Time) (int, error)
	CountDistinctUsersByIP(ctx context.Context, ip string, since time.Time) (int, error)

	// Coupon lookup and per-coupon usage counts inside the cooldown window
	GetCoupon(ctx context.Context, couponID uuid.UUID) (*Coupon, error)
	CountCouponUsesByIP(ctx context.Context, couponID uuid.UUID, ip string, since time.Time) (int, error)
	CountCouponUsesByFingerprint(ctx context.Context, couponID uuid.UUID, fingerprint string, since time.Time) (int, error)
}

// SessionRepository reads the registration-progress record that owns the
// verification code.
type SessionRepository interface {
	// FindByTokenAndCode returns the session matching both the token and the
	// code, or nil when no unconsumed session matches.
	FindByTokenAndCode(ctx context.Context, sessionToken, code string) (*VerificationSession, error)

	// MarkCodeConsumed stamps consumed_at so a validated code cannot be replayed
	MarkCodeConsumed(ctx context.Context, sessionToken string) error
}

// BlacklistCache is the optional hot path in front of BlacklistRepository.
// Only confirmed hits are cached; a miss always falls through to the store.
type BlacklistCache interface {
	GetHit(ctx context.Context, entryType BlacklistType, value string) (reason string, ok bool)
	SetHit(ctx context.Context, entryType BlacklistType, value, reason string)
	Invalidate(ctx context.Context, entryType BlacklistType, value string)
}

// Probe is one independent risk signal. Evaluate must be pure given the
// historical snapshot it reads so probes can run concurrently; it returns nil
// when the signal does not apply to the request.
type Probe interface {
	Name() string
	Evaluate(ctx context.Context, req *AssessmentRequest) (*RiskFactor, error)
}
