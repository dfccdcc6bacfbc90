package antifraud

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type mockBlacklistRepository struct {
	mock.Mock
}

func (m *mockBlacklistRepository) Upsert(ctx context.Context, entry *BlacklistEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *mockBlacklistRepository) FindActive(ctx context.Context, entryType BlacklistType, value string) (*BlacklistEntry, error) {
	args := m.Called(ctx, entryType, value)
	entry, _ := args.Get(0).(*BlacklistEntry)
	return entry, args.Error(1)
}

func (m *mockBlacklistRepository) Delete(ctx context.Context, entryType BlacklistType, value string) error {
	args := m.Called(ctx, entryType, value)
	return args.Error(0)
}

func (m *mockBlacklistRepository) List(ctx context.Context, entryType BlacklistType) ([]*BlacklistEntry, error) {
	args := m.Called(ctx, entryType)
	entries, _ := args.Get(0).([]*BlacklistEntry)
	return entries, args.Error(1)
}

func (m *mockBlacklistRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

type mockUsageLedger struct {
	mock.Mock
}

func (m *mockUsageLedger) InsertUsage(ctx context.Context, record *UsageRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *mockUsageLedger) InsertRiskLog(ctx context.Context, entry *RiskLog) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *mockUsageLedger) CountByIP(ctx context.Context, ip string, since time.Time) (int, error) {
	args := m.Called(ctx, ip, since)
	return args.Int(0), args.Error(1)
}

func (m *mockUsageLedger) CountByFingerprint(ctx context.Context, fingerprint string, since time.Time) (int, error) {
	args := m.Called(ctx, fingerprint, since)
	return args.Int(0), args.Error(1)
}

func (m *mockUsageLedger) CountDistinctUsersByIP(ctx context.Context, ip string, since time.Time) (int, error) {
	args := m.Called(ctx, ip, since)
	return args.Int(0), args.Error(1)
}

func (m *mockUsageLedger) GetCoupon(ctx context.Context, couponID uuid.UUID) (*Coupon, error) {
	args := m.Called(ctx, couponID)
	coupon, _ := args.Get(0).(*Coupon)
	return coupon, args.Error(1)
}

func (m *mockUsageLedger) CountCouponUsesByIP(ctx context.Context, couponID uuid.UUID, ip string, since time.Time) (int, error) {
	args := m.Called(ctx, couponID, ip, since)
	return args.Int(0), args.Error(1)
}

func (m *mockUsageLedger) CountCouponUsesByFingerprint(ctx context.Context, couponID uuid.UUID, fingerprint string, since time.Time) (int, error) {
	args := m.Called(ctx, couponID, fingerprint, since)
	return args.Int(0), args.Error(1)
}

type mockSessionRepository struct {
	mock.Mock
}

func (m *mockSessionRepository) FindByTokenAndCode(ctx context.Context, sessionToken, code string) (*VerificationSession, error) {
	args := m.Called(ctx, sessionToken, code)
	session, _ := args.Get(0).(*VerificationSession)
	return session, args.Error(1)
}

func (m *mockSessionRepository) MarkCodeConsumed(ctx context.Context, sessionToken string) error {
	args := m.Called(ctx, sessionToken)
	return args.Error(0)
}

// stubProbe returns a fixed factor, or an error, for scorer tests
type stubProbe struct {
	name   string
	factor *RiskFactor
	err    error
}

func (p *stubProbe) Name() string { return p.name }

func (p *stubProbe) Evaluate(_ context.Context, _ *AssessmentRequest) (*RiskFactor, error) {
	return p.factor, p.err
}
