package antifraud

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestGenerateCodeIsSixDigitNumeric(t *testing.T) {
	service := NewVerificationCodeService(new(mockSessionRepository))

	for i := 0; i < 500; i++ {
		code, err := service.GenerateCode()
		require.NoError(t, err)
		require.Len(t, code, 6)

		value, err := strconv.Atoi(code)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, value, 100000)
		assert.LessOrEqual(t, value, 999999)
	}
}

func TestValidateCodeNoMatch(t *testing.T) {
	ctx := context.Background()
	sessions := new(mockSessionRepository)
	sessions.On("FindByTokenAndCode", ctx, "tok-1", "123456").Return(nil, nil).Once()

	service := NewVerificationCodeService(sessions)

	result, err := service.ValidateCode(ctx, "tok-1", "123456")
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.False(t, result.Expired)
	sessions.AssertNotCalled(t, "MarkCodeConsumed", mock.Anything, mock.Anything)
}

func TestValidateCodeMatchWithoutExpiryIsExpired(t *testing.T) {
	ctx := context.Background()
	sessions := new(mockSessionRepository)
	sessions.On("FindByTokenAndCode", ctx, "tok-1", "123456").
		Return(&VerificationSession{SessionToken: "tok-1", VerificationCode: "123456"}, nil).Once()

	service := NewVerificationCodeService(sessions)

	result, err := service.ValidateCode(ctx, "tok-1", "123456")
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.True(t, result.Expired)
}

func TestValidateCodePastExpiry(t *testing.T) {
	ctx := context.Background()
	expired := time.Now().Add(-time.Minute)
	sessions := new(mockSessionRepository)
	sessions.On("FindByTokenAndCode", ctx, "tok-1", "123456").
		Return(&VerificationSession{
			SessionToken:            "tok-1",
			VerificationCode:        "123456",
			VerificationCodeExpires: &expired,
		}, nil).Once()

	service := NewVerificationCodeService(sessions)

	result, err := service.ValidateCode(ctx, "tok-1", "123456")
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.True(t, result.Expired)
	sessions.AssertNotCalled(t, "MarkCodeConsumed", mock.Anything, mock.Anything)
}

func TestValidateCodeSuccessConsumesCode(t *testing.T) {
	ctx := context.Background()
	expires := time.Now().Add(10 * time.Minute)
	sessions := new(mockSessionRepository)
	sessions.On("FindByTokenAndCode", ctx, "tok-1", "654321").
		Return(&VerificationSession{
			SessionToken:            "tok-1",
			VerificationCode:        "654321",
			VerificationCodeExpires: &expires,
		}, nil).Once()
	sessions.On("MarkCodeConsumed", ctx, "tok-1").Return(nil).Once()

	service := NewVerificationCodeService(sessions)

	result, err := service.ValidateCode(ctx, "tok-1", "654321")
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.False(t, result.Expired)
	sessions.AssertExpectations(t)
}
