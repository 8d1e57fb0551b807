package services

import (
	"testing"
	"time"

	"go-storefront/models"
	"go-storefront/utils"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const otpTTL = 15 * time.Minute

func newResetService(f *fixture) *PasswordResetService {
	svc := NewPasswordResetService(f.store.Users, f.email, utils.NewOTPHasher("otp-secret"), otpTTL, zerolog.Nop())
	svc.now = f.clock.Now
	return svc
}

func TestPasswordResetRoundTrip(t *testing.T) {
	f := newFixture(t)
	f.user(t, "ada@x.io", models.RoleUser)
	svc := newResetService(f)
	auth := NewAuthService(f.store.Users, mustTokens(t), nil, zerolog.Nop())

	require.NoError(t, svc.RequestReset(f.ctx, "ADA@x.io"))
	code := f.mailer.lastCode(t)

	stored, err := f.store.Users.FindByEmail(f.ctx, "ada@x.io")
	require.NoError(t, err)
	assert.NotEqual(t, code, stored.ResetPasswordOTP, "code must be stored hashed")

	f.clock.Advance(otpTTL - time.Second)
	require.NoError(t, svc.VerifyOTP(f.ctx, "ada@x.io", code))
	require.NoError(t, svc.VerifyOTP(f.ctx, "ada@x.io", code), "verify does not consume the code")
	require.NoError(t, svc.ResetPassword(f.ctx, "ada@x.io", code, "n3w-password"))

	_, err = auth.Login(f.ctx, "ada@x.io", "n3w-password")
	require.NoError(t, err)
	_, err = auth.Login(f.ctx, "ada@x.io", "secret123")
	assertKind(t, err, utils.KindUnauthorized)
}

func TestPasswordResetExpiresAfterTTL(t *testing.T) {
	f := newFixture(t)
	f.user(t, "ada@x.io", models.RoleUser)
	svc := newResetService(f)

	require.NoError(t, svc.RequestReset(f.ctx, "ada@x.io"))
	code := f.mailer.lastCode(t)

	f.clock.Advance(otpTTL + time.Second)
	err := svc.VerifyOTP(f.ctx, "ada@x.io", code)
	assert.Equal(t, msgInvalidOTP, assertKind(t, err, utils.KindValidation).Message)
	assertKind(t, svc.ResetPassword(f.ctx, "ada@x.io", code, "n3w-password"), utils.KindValidation)
}

func TestPasswordResetCodeIsSingleUse(t *testing.T) {
	f := newFixture(t)
	f.user(t, "ada@x.io", models.RoleUser)
	svc := newResetService(f)

	require.NoError(t, svc.RequestReset(f.ctx, "ada@x.io"))
	code := f.mailer.lastCode(t)

	require.NoError(t, svc.ResetPassword(f.ctx, "ada@x.io", code, "first"))
	assertKind(t, svc.ResetPassword(f.ctx, "ada@x.io", code, "second"), utils.KindValidation)
	assertKind(t, svc.VerifyOTP(f.ctx, "ada@x.io", code), utils.KindValidation)
}

func TestPasswordResetNewCodeReplacesOld(t *testing.T) {
	f := newFixture(t)
	f.user(t, "ada@x.io", models.RoleUser)
	svc := newResetService(f)

	require.NoError(t, svc.RequestReset(f.ctx, "ada@x.io"))
	first := f.mailer.lastCode(t)
	require.NoError(t, svc.RequestReset(f.ctx, "ada@x.io"))
	second := f.mailer.lastCode(t)
	if first == second {
		t.Skip("both requests drew the same code")
	}

	assertKind(t, svc.VerifyOTP(f.ctx, "ada@x.io", first), utils.KindValidation)
	require.NoError(t, svc.VerifyOTP(f.ctx, "ada@x.io", second))
}

func TestPasswordResetErrors(t *testing.T) {
	f := newFixture(t)
	f.user(t, "ada@x.io", models.RoleUser)
	svc := newResetService(f)

	assertKind(t, svc.RequestReset(f.ctx, ""), utils.KindValidation)
	assertKind(t, svc.RequestReset(f.ctx, "nobody@x.io"), utils.KindNotFound)
	assertKind(t, svc.VerifyOTP(f.ctx, "ada@x.io", "123456"), utils.KindValidation)
	assertKind(t, svc.ResetPassword(f.ctx, "ada@x.io", "123456", ""), utils.KindValidation)
	assert.Empty(t, f.mailer.Sent())
}
