package antifraud

import (
	"time"

	"github.com/google/uuid"
)

// BlacklistType identifies what kind of identifier a blacklist entry blocks
type BlacklistType string

const (
	BlacklistTypeIP          BlacklistType = "ip"
	BlacklistTypeFingerprint BlacklistType = "fingerprint"
	BlacklistTypeEmailDomain BlacklistType = "email_domain"
)

// Recommendation is the outcome of a risk assessment
type Recommendation string

const (
	RecommendationApprove Recommendation = "approve"
	RecommendationVerify  Recommendation = "verify"
	RecommendationBlock   Recommendation = "block"
)

// ActionTaken records what the registration workflow did with an assessment
type ActionTaken string

const (
	ActionApproved          ActionTaken = "approved"
	ActionEmailVerification ActionTaken = "email_verification"
	ActionBlocked           ActionTaken = "blocked"
)

// Risk factor names produced by the built-in probes
const (
	FactorBlacklisted          = "blacklisted"
	FactorBlacklistUnavailable = "blacklist_unavailable"
	FactorIPReuse              = "ip_reuse"
	FactorFingerprintReuse     = "fingerprint_reuse"
	FactorDisposableEmail      = "disposable_email"
	FactorVPNProxy             = "vpn_proxy"
	FactorVelocity             = "velocity"
	FactorCouponAbuse          = "coupon_abuse"
)

// Decision thresholds over the aggregated score
const (
	blockThreshold  = 71
	verifyThreshold = 30
)

// BlacklistEntry is a denylisted identifier. An entry is active while
// ExpiresAt is nil or in the future.
type BlacklistEntry struct {
	ID        uuid.UUID     `json:"id" db:"id"`
	Type      BlacklistType `json:"type" db:"type"`
	Value     string        `json:"value" db:"value"`
	Reason    string        `json:"reason" db:"reason"`
	AutoAdded bool          `json:"auto_added" db:"auto_added"`
	ExpiresAt *time.Time    `json:"expires_at,omitempty" db:"expires_at"`
	CreatedAt time.Time     `json:"created_at" db:"created_at"`
}

// IsActive reports whether the entry still vetoes requests at the given time
func (e *BlacklistEntry) IsActive(now time.Time) bool {
	return e.ExpiresAt == nil || e.ExpiresAt.After(now)
}

// UsageRecord is one append-only coupon-usage event. Usage records are the
// evidentiary basis for every probe and are never mutated or deleted.
type UsageRecord struct {
	ID                uuid.UUID  `json:"id" db:"id"`
	CouponID          *uuid.UUID `json:"coupon_id,omitempty" db:"coupon_id"`
	UserID            uuid.UUID  `json:"user_id" db:"user_id"`
	IPAddress         string     `json:"ip_address" db:"ip_address"`
	DeviceFingerprint *string    `json:"device_fingerprint,omitempty" db:"device_fingerprint"`
	UserAgent         string     `json:"user_agent" db:"user_agent"`
	RiskScore         int        `json:"risk_score" db:"risk_score"`
	CreatedAt         time.Time  `json:"created_at" db:"created_at"`
}

// RiskLog is one append-only audit entry for a finished assessment
type RiskLog struct {
	ID                uuid.UUID    `json:"id" db:"id"`
	UserID            *uuid.UUID   `json:"user_id,omitempty" db:"user_id"`
	IPAddress         string       `json:"ip_address" db:"ip_address"`
	DeviceFingerprint *string      `json:"device_fingerprint,omitempty" db:"device_fingerprint"`
	RiskScore         int          `json:"risk_score" db:"risk_score"`
	Factors           []RiskFactor `json:"factors" db:"factors"`
	ActionTaken       ActionTaken  `json:"action_taken" db:"action_taken"`
	CreatedAt         time.Time    `json:"created_at" db:"created_at"`
}

// RiskFactor is one named contribution to the total risk score
type RiskFactor struct {
	Factor      string `json:"factor"`
	Score       int    `json:"score"`
	Description string `json:"description"`
}

// RiskAssessment is the ephemeral result of scoring one request. It is never
// persisted directly; the caller records it through LogRisk.
type RiskAssessment struct {
	RiskScore            int            `json:"risk_score"`
	Factors              []RiskFactor   `json:"factors"`
	Recommendation       Recommendation `json:"recommendation"`
	RequiresVerification bool           `json:"requires_verification"`
}

// Coupon carries the abuse limits enforced by the coupon-abuse probe
type Coupon struct {
	ID                    uuid.UUID `json:"id" db:"id"`
	Code                  string    `json:"code" db:"code"`
	MaxUsesPerIP          int       `json:"max_uses_per_ip" db:"max_uses_per_ip"`
	MaxUsesPerFingerprint int       `json:"max_uses_per_fingerprint" db:"max_uses_per_fingerprint"`
	CooldownPeriodHours   int       `json:"cooldown_period_hours" db:"cooldown_period_hours"`
}

// DefaultCooldownHours applies when a coupon has no cooldown configured
const DefaultCooldownHours = 168

// CooldownWindow returns the coupon's enforcement window
func (c *Coupon) CooldownWindow() time.Duration {
	hours := c.CooldownPeriodHours
	if hours <= 0 {
		hours = DefaultCooldownHours
	}
	return time.Duration(hours) * time.Hour
}

// VerificationSession is the slice of the registration-progress record this
// core reads to validate a verification code.
type VerificationSession struct {
	SessionToken            string     `json:"session_token" db:"session_token"`
	VerificationCode        string     `json:"verification_code" db:"verification_code"`
	VerificationCodeExpires *time.Time `json:"verification_code_expires,omitempty" db:"verification_code_expires"`
	ConsumedAt              *time.Time `json:"consumed_at,omitempty" db:"consumed_at"`
}

// AssessmentRequest is the input to AssessRisk
type AssessmentRequest struct {
	IPAddress   string     `json:"ip_address" validate:"required"`
	Email       string     `json:"email" validate:"required,email"`
	Fingerprint string     `json:"fingerprint,omitempty"`
	CouponID    *uuid.UUID `json:"coupon_id,omitempty"`
}

// RegistrationCheck is the result of the blacklist veto step
type RegistrationCheck struct {
	IsBlocked bool          `json:"is_blocked"`
	Reason    string        `json:"reason,omitempty"`
	Type      BlacklistType `json:"type,omitempty"`
}

// BlacklistKey identifies one entry for CheckMultiple
type BlacklistKey struct {
	Type  BlacklistType `json:"type"`
	Value string        `json:"value"`
}

// CodeValidation is the result of validating a verification code
type CodeValidation struct {
	Valid   bool `json:"valid"`
	Expired bool `json:"expired"`
}
