package antifraud

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/bychrisr/hub-defisats-sub012/pkg/validation"
)

// Service is the inbound surface the registration workflow talks to. It wires
// the blacklist, the scorer, the ledger, the auto-escalator and the
// verification-code service behind one dependency-injected façade.
type Service struct {
	blacklist *BlacklistService
	scorer    *RiskScorer
	escalator *AutoEscalator
	codes     *VerificationCodeService
	ledger    UsageLedgerRepository
	validate  *validator.Validate
}

// NewService creates the antifraud service
func NewService(blacklist *BlacklistService, scorer *RiskScorer, escalator *AutoEscalator, codes *VerificationCodeService, ledger UsageLedgerRepository) *Service {
	return &Service{
		blacklist: blacklist,
		scorer:    scorer,
		escalator: escalator,
		codes:     codes,
		ledger:    ledger,
		validate:  validator.New(),
	}
}

// AssessRisk validates the request and scores it. It errors only on malformed
// input; "no risk found" is a normal assessment, never an error.
func (s *Service) AssessRisk(ctx context.Context, req *AssessmentRequest) (*RiskAssessment, error) {
	if err := s.validate.Struct(req); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok {
			return nil, validation.NewValidationError(errs)
		}
		return nil, err
	}

	return s.scorer.Assess(ctx, req)
}

// TrackUsage appends a coupon-usage record to the ledger
func (s *Service) TrackUsage(ctx context.Context, couponID *uuid.UUID, userID uuid.UUID, ip, userAgent, fingerprint string, riskScore int) error {
	record := &UsageRecord{
		ID:        uuid.New(),
		CouponID:  couponID,
		UserID:    userID,
		IPAddress: ip,
		UserAgent: userAgent,
		RiskScore: riskScore,
		CreatedAt: time.Now(),
	}
	if fingerprint != "" {
		record.DeviceFingerprint = &fingerprint
	}

	return s.ledger.InsertUsage(ctx, record)
}

// LogRisk appends an audit entry for a finished assessment
func (s *Service) LogRisk(ctx context.Context, userID *uuid.UUID, ip, fingerprint string, riskScore int, factors []RiskFactor, actionTaken ActionTaken) error {
	entry := &RiskLog{
		ID:          uuid.New(),
		UserID:      userID,
		IPAddress:   ip,
		RiskScore:   riskScore,
		Factors:     factors,
		ActionTaken: actionTaken,
		CreatedAt:   time.Now(),
	}
	if fingerprint != "" {
		entry.DeviceFingerprint = &fingerprint
	}

	return s.ledger.InsertRiskLog(ctx, entry)
}

// AutoEscalate promotes the identifiers into the blacklist when their usage
// crossed the escalation thresholds.
func (s *Service) AutoEscalate(ctx context.Context, ip, fingerprint string) error {
	return s.escalator.Escalate(ctx, ip, fingerprint)
}

// Blacklist exposes the denylist operations (add, remove, list, check, cleanup)
func (s *Service) Blacklist() *BlacklistService {
	return s.blacklist
}

// GenerateVerificationCode returns a fresh 6-digit code
func (s *Service) GenerateVerificationCode() (string, error) {
	return s.codes.GenerateCode()
}

// ValidateVerificationCode checks a code against its session
func (s *Service) ValidateVerificationCode(ctx context.Context, sessionToken, code string) (*CodeValidation, error) {
	return s.codes.ValidateCode(ctx, sessionToken, code)
}
