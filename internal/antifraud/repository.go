package antifraud

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository implements the persistence contracts on PostgreSQL
type Repository struct {
	db *pgxpool.Pool
}

var (
	_ BlacklistRepository   = (*Repository)(nil)
	_ UsageLedgerRepository = (*Repository)(nil)
	_ SessionRepository     = (*Repository)(nil)
)

// NewRepository creates a new antifraud repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// ========================================
// BLACKLIST
// ========================================

// Upsert atomically inserts or refreshes a blacklist entry. The unique index
// on (type, value) makes concurrent adds for the same key converge on one row.
func (r *Repository) Upsert(ctx context.Context, entry *BlacklistEntry) error {
	query := `
		INSERT INTO blacklist (id, type, value, reason, auto_added, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (type, value) DO UPDATE SET
			reason     = EXCLUDED.reason || ' (atualizado)',
			auto_added = EXCLUDED.auto_added,
			expires_at = EXCLUDED.expires_at
	`

	_, err := r.db.Exec(ctx, query,
		entry.ID,
		entry.Type,
		entry.Value,
		entry.Reason,
		entry.AutoAdded,
		entry.ExpiresAt,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert blacklist entry: %w", err)
	}

	return nil
}

// FindActive returns the active entry for (type, value), or nil when the key
// is absent or expired.
func (r *Repository) FindActive(ctx context.Context, entryType BlacklistType, value string) (*BlacklistEntry, error) {
	query := `
		SELECT id, type, value, reason, auto_added, expires_at, created_at
		FROM blacklist
		WHERE type = $1 AND value = $2
		  AND (expires_at IS NULL OR expires_at > NOW())
	`

	var entry BlacklistEntry
	err := r.db.QueryRow(ctx, query, entryType, value).Scan(
		&entry.ID,
		&entry.Type,
		&entry.Value,
		&entry.Reason,
		&entry.AutoAdded,
		&entry.ExpiresAt,
		&entry.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find blacklist entry: %w", err)
	}

	return &entry, nil
}

// Delete removes all rows matching the key
func (r *Repository) Delete(ctx context.Context, entryType BlacklistType, value string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM blacklist WHERE type = $1 AND value = $2`, entryType, value)
	if err != nil {
		return fmt.Errorf("delete blacklist entry: %w", err)
	}
	return nil
}

// List returns entries ordered newest first, optionally filtered by type
func (r *Repository) List(ctx context.Context, entryType BlacklistType) ([]*BlacklistEntry, error) {
	query := `
		SELECT id, type, value, reason, auto_added, expires_at, created_at
		FROM blacklist
		WHERE $1 = '' OR type = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(ctx, query, string(entryType))
	if err != nil {
		return nil, fmt.Errorf("list blacklist: %w", err)
	}
	defer rows.Close()

	entries := make([]*BlacklistEntry, 0)
	for rows.Next() {
		var entry BlacklistEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.Type,
			&entry.Value,
			&entry.Reason,
			&entry.AutoAdded,
			&entry.ExpiresAt,
			&entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan blacklist entry: %w", err)
		}
		entries = append(entries, &entry)
	}

	return entries, rows.Err()
}

// DeleteExpired removes rows whose expiry has passed and returns the count
func (r *Repository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM blacklist WHERE expires_at IS NOT NULL AND expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("delete expired blacklist entries: %w", err)
	}
	return tag.RowsAffected(), nil
}

// ========================================
// USAGE LEDGER
// ========================================

// InsertUsage appends a coupon-usage record. The ledger is append-only.
func (r *Repository) InsertUsage(ctx context.Context, record *UsageRecord) error {
	query := `
		INSERT INTO coupon_usage (
			id, coupon_id, user_id, ip_address, device_fingerprint,
			user_agent, risk_score, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.Exec(ctx, query,
		record.ID,
		record.CouponID,
		record.UserID,
		record.IPAddress,
		record.DeviceFingerprint,
		record.UserAgent,
		record.RiskScore,
		record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert usage record: %w", err)
	}

	return nil
}

// InsertRiskLog appends an audit entry with its factors as JSONB
func (r *Repository) InsertRiskLog(ctx context.Context, entry *RiskLog) error {
	factorsJSON, err := json.Marshal(entry.Factors)
	if err != nil {
		return fmt.Errorf("marshal risk factors: %w", err)
	}

	query := `
		INSERT INTO risk_logs (
			id, user_id, ip_address, device_fingerprint, risk_score,
			factors, action_taken, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err = r.db.Exec(ctx, query,
		entry.ID,
		entry.UserID,
		entry.IPAddress,
		entry.DeviceFingerprint,
		entry.RiskScore,
		factorsJSON,
		entry.ActionTaken,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert risk log: %w", err)
	}

	return nil
}

// CountByIP counts usage records from an IP since the given time
func (r *Repository) CountByIP(ctx context.Context, ip string, since time.Time) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM coupon_usage WHERE ip_address = $1 AND created_at >= $2`,
		ip, since,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count usage by ip: %w", err)
	}
	return count, nil
}

// CountByFingerprint counts usage records from a device fingerprint since the
// given time.
func (r *Repository) CountByFingerprint(ctx context.Context, fingerprint string, since time.Time) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM coupon_usage WHERE device_fingerprint = $1 AND created_at >= $2`,
		fingerprint, since,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count usage by fingerprint: %w", err)
	}
	return count, nil
}

// CountDistinctUsersByIP counts how many different users shared an IP since
// the given time.
func (r *Repository) CountDistinctUsersByIP(ctx context.Context, ip string, since time.Time) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(DISTINCT user_id) FROM coupon_usage WHERE ip_address = $1 AND created_at >= $2`,
		ip, since,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count distinct users by ip: %w", err)
	}
	return count, nil
}

// GetCoupon loads a coupon's abuse limits. Returns ErrNotFound when the
// coupon does not exist.
func (r *Repository) GetCoupon(ctx context.Context, couponID uuid.UUID) (*Coupon, error) {
	query := `
		SELECT id, code, max_uses_per_ip, max_uses_per_fingerprint, cooldown_period_hours
		FROM coupons
		WHERE id = $1
	`

	var coupon Coupon
	err := r.db.QueryRow(ctx, query, couponID).Scan(
		&coupon.ID,
		&coupon.Code,
		&coupon.MaxUsesPerIP,
		&coupon.MaxUsesPerFingerprint,
		&coupon.CooldownPeriodHours,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get coupon: %w", err)
	}

	return &coupon, nil
}

// CountCouponUsesByIP counts uses of a coupon from an IP inside the window
func (r *Repository) CountCouponUsesByIP(ctx context.Context, couponID uuid.UUID, ip string, since time.Time) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM coupon_usage WHERE coupon_id = $1 AND ip_address = $2 AND created_at >= $3`,
		couponID, ip, since,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count coupon uses by ip: %w", err)
	}
	return count, nil
}

// CountCouponUsesByFingerprint counts uses of a coupon from a fingerprint
// inside the window.
func (r *Repository) CountCouponUsesByFingerprint(ctx context.Context, couponID uuid.UUID, fingerprint string, since time.Time) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM coupon_usage WHERE coupon_id = $1 AND device_fingerprint = $2 AND created_at >= $3`,
		couponID, fingerprint, since,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count coupon uses by fingerprint: %w", err)
	}
	return count, nil
}

// ========================================
// VERIFICATION SESSIONS
// ========================================

// FindByTokenAndCode returns the unconsumed registration-progress session
// matching both the token and the code, or nil when nothing matches.
func (r *Repository) FindByTokenAndCode(ctx context.Context, sessionToken, code string) (*VerificationSession, error) {
	query := `
		SELECT session_token, verification_code, verification_code_expires, consumed_at
		FROM registration_progress
		WHERE session_token = $1 AND verification_code = $2 AND consumed_at IS NULL
	`

	var session VerificationSession
	err := r.db.QueryRow(ctx, query, sessionToken, code).Scan(
		&session.SessionToken,
		&session.VerificationCode,
		&session.VerificationCodeExpires,
		&session.ConsumedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find verification session: %w", err)
	}

	return &session, nil
}

// MarkCodeConsumed stamps consumed_at so a validated code cannot be replayed
func (r *Repository) MarkCodeConsumed(ctx context.Context, sessionToken string) error {
	_, err := r.db.Exec(ctx,
		`UPDATE registration_progress SET consumed_at = NOW() WHERE session_token = $1 AND consumed_at IS NULL`,
		sessionToken,
	)
	if err != nil {
		return fmt.Errorf("mark verification code consumed: %w", err)
	}
	return nil
}
