package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "test-secret"

func newAuthService(tx *stubTxManager, sms *recordingSMSSender) *AuthService {
	return NewAuthService(tx, sms, testJWTSecret)
}

func TestSignupLoginTokenRoundTrip(t *testing.T) {
	tx, _, _ := newTestEnv()
	sms := &recordingSMSSender{}
	svc := newAuthService(tx, sms)
	ctx := context.Background()

	user, err := svc.Signup(ctx, "9876543210", "alice", "hunter22")
	require.NoError(t, err)
	assert.True(t, user.IsVerified)
	assert.NotEmpty(t, sms.lastOTP())

	token, logged, err := svc.Login(ctx, "alice", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, user.ID, logged.ID)

	parsed, err := svc.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, parsed)
}

func TestSignupDuplicateConflict(t *testing.T) {
	tx, _, _ := newTestEnv()
	svc := newAuthService(tx, &recordingSMSSender{})
	ctx := context.Background()

	_, err := svc.Signup(ctx, "9876543210", "alice", "hunter22")
	require.NoError(t, err)

	_, err = svc.Signup(ctx, "9876543210", "bob", "secret99")
	assert.ErrorIs(t, err, ErrConflict)

	_, err = svc.Signup(ctx, "1112223334", "alice", "secret99")
	assert.ErrorIs(t, err, ErrConflict)
}

func TestLoginFailures(t *testing.T) {
	tx, _, _ := newTestEnv()
	svc := newAuthService(tx, &recordingSMSSender{})
	ctx := context.Background()

	_, _, err := svc.Login(ctx, "nobody", "whatever")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Signup(ctx, "9876543210", "alice", "hunter22")
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestParseTokenRejectsGarbageAndExpiry(t *testing.T) {
	tx, _, _ := newTestEnv()
	svc := newAuthService(tx, &recordingSMSSender{})
	ctx := context.Background()

	_, err := svc.ParseToken("not.a.token")
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = svc.Signup(ctx, "9876543210", "alice", "hunter22")
	require.NoError(t, err)
	token, _, err := svc.Login(ctx, "alice", "hunter22")
	require.NoError(t, err)

	// Move the service clock past token expiry.
	svc.clock = func() time.Time { return time.Now().Add(tokenLifetime + time.Hour) }
	_, err = svc.ParseToken(token)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	tx, _, _ := newTestEnv()
	svc := newAuthService(tx, &recordingSMSSender{})
	other := NewAuthService(tx, &recordingSMSSender{}, "different-secret")
	ctx := context.Background()

	_, err := svc.Signup(ctx, "9876543210", "alice", "hunter22")
	require.NoError(t, err)
	token, _, err := svc.Login(ctx, "alice", "hunter22")
	require.NoError(t, err)

	_, err = other.ParseToken(token)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestOTPVerification(t *testing.T) {
	tx, _, _ := newTestEnv()
	sms := &recordingSMSSender{}
	svc := newAuthService(tx, sms)
	ctx := context.Background()

	_, err := svc.Signup(ctx, "9876543210", "alice", "hunter22")
	require.NoError(t, err)

	require.NoError(t, svc.SendOTP(ctx, "9876543210"))
	otp := sms.lastOTP()
	require.Regexp(t, `^\d{6}$`, otp)

	assert.ErrorIs(t, svc.VerifyOTP(ctx, "9876543210", "abcdef"), ErrInvalidInput)
	assert.ErrorIs(t, svc.VerifyOTP(ctx, "9876543210", "000001"), ErrUnauthorized)
	assert.ErrorIs(t, svc.VerifyOTP(ctx, "0000000000", otp), ErrNotFound)
	assert.NoError(t, svc.VerifyOTP(ctx, "9876543210", otp))
}

func TestOTPExpiry(t *testing.T) {
	tx, _, _ := newTestEnv()
	sms := &recordingSMSSender{}
	svc := newAuthService(tx, sms)
	ctx := context.Background()

	_, err := svc.Signup(ctx, "9876543210", "alice", "hunter22")
	require.NoError(t, err)
	require.NoError(t, svc.SendOTP(ctx, "9876543210"))
	otp := sms.lastOTP()

	svc.clock = func() time.Time { return time.Now().Add(otpLifetime + time.Minute) }
	assert.ErrorIs(t, svc.VerifyOTP(ctx, "9876543210", otp), ErrUnauthorized)
}

func TestPasswordResetFlow(t *testing.T) {
	tx, _, _ := newTestEnv()
	sms := &recordingSMSSender{}
	svc := newAuthService(tx, sms)
	ctx := context.Background()

	_, err := svc.Signup(ctx, "9876543210", "alice", "hunter22")
	require.NoError(t, err)

	// Unknown numbers report success without sending anything.
	sent := len(sms.messages)
	require.NoError(t, svc.RequestPasswordReset(ctx, "0000000000"))
	assert.Len(t, sms.messages, sent)

	require.NoError(t, svc.RequestPasswordReset(ctx, "9876543210"))
	otp := sms.lastOTP()

	require.NoError(t, svc.VerifyResetOTP(ctx, "9876543210", otp))
	require.NoError(t, svc.ResetPassword(ctx, "9876543210", otp, "newpass77"))

	_, _, err = svc.Login(ctx, "alice", "hunter22")
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, _, err = svc.Login(ctx, "alice", "newpass77")
	assert.NoError(t, err)
}

func TestUpdateProfileAndPassword(t *testing.T) {
	tx, _, _ := newTestEnv()
	svc := newAuthService(tx, &recordingSMSSender{})
	ctx := context.Background()

	user, err := svc.Signup(ctx, "9876543210", "alice", "hunter22")
	require.NoError(t, err)

	updated, err := svc.UpdateProfile(ctx, user.ID, "alice2", "9876543211")
	require.NoError(t, err)
	assert.Equal(t, "alice2", updated.Name)
	assert.Equal(t, "9876543211", updated.Mobile)

	_, err = svc.UpdateProfile(ctx, uuid.New(), "ghost", "1234567890")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, svc.UpdatePassword(ctx, user.ID, "wrong", "next11"), ErrUnauthorized)
	require.NoError(t, svc.UpdatePassword(ctx, user.ID, "hunter22", "next11"))

	_, _, err = svc.Login(ctx, "alice2", "next11")
	assert.NoError(t, err)
}

func TestPurgeExpiredOTPs(t *testing.T) {
	tx, _, users := newTestEnv()
	sms := &recordingSMSSender{}
	svc := newAuthService(tx, sms)
	ctx := context.Background()

	_, err := svc.Signup(ctx, "9876543210", "alice", "hunter22")
	require.NoError(t, err)
	_, err = svc.Signup(ctx, "1112223334", "bob", "hunter22")
	require.NoError(t, err)

	require.NoError(t, svc.SendOTP(ctx, "9876543210"))
	require.NoError(t, svc.SendOTP(ctx, "1112223334"))

	svc.clock = func() time.Time { return time.Now().Add(otpLifetime + time.Minute) }
	purged, err := svc.PurgeExpiredOTPs(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, purged)

	alice, err := users.GetByMobile(ctx, "9876543210")
	require.NoError(t, err)
	assert.Nil(t, alice.OTP)
}
