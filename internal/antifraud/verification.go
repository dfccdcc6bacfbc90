package antifraud

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"go.uber.org/zap"

	"github.com/bychrisr/hub-defisats-sub012/pkg/logger"
)

// Range of generated verification codes, inclusive
const (
	codeMin = 100000
	codeMax = 999999
)

// VerificationCodeService generates and validates the short-lived codes that
// gate the secondary verification step.
type VerificationCodeService struct {
	sessions SessionRepository
}

// NewVerificationCodeService creates a verification-code service
func NewVerificationCodeService(sessions SessionRepository) *VerificationCodeService {
	return &VerificationCodeService{sessions: sessions}
}

// GenerateCode returns a uniformly random 6-digit code. The source is
// crypto/rand; verification codes must not be predictable.
func (s *VerificationCodeService) GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeMax-codeMin+1))
	if err != nil {
		return "", fmt.Errorf("generate verification code: %w", err)
	}
	return fmt.Sprintf("%d", codeMin+n.Int64()), nil
}

// ValidateCode checks a code against the session identified by the token.
// A successful validation consumes the code so it cannot be replayed.
func (s *VerificationCodeService) ValidateCode(ctx context.Context, sessionToken, code string) (*CodeValidation, error) {
	session, err := s.sessions.FindByTokenAndCode(ctx, sessionToken, code)
	if err != nil {
		return nil, fmt.Errorf("look up verification session: %w", err)
	}
	if session == nil {
		return &CodeValidation{Valid: false, Expired: false}, nil
	}

	// A match without a recorded expiry is treated as expired
	if session.VerificationCodeExpires == nil {
		return &CodeValidation{Valid: false, Expired: true}, nil
	}

	if !session.VerificationCodeExpires.After(time.Now()) {
		return &CodeValidation{Valid: false, Expired: true}, nil
	}

	if err := s.sessions.MarkCodeConsumed(ctx, sessionToken); err != nil {
		// The code already checked out; failing consumption should not turn a
		// valid code into a rejection.
		logger.Warn("could not consume verification code", zap.Error(err))
	}

	return &CodeValidation{Valid: true, Expired: false}, nil
}
