package services

import (
	"context"
	"errors"
	"time"

	"go-storefront/models"
	"go-storefront/store"
	"go-storefront/utils"

	"github.com/rs/zerolog"
)

const msgInvalidOTP = "Invalid or expired OTP"

// PasswordResetService runs the e-mailed one-time code flow:
// request (code issued) -> verify (optional, does not consume) -> reset (consumes).
type PasswordResetService struct {
	users  store.Users
	email  *utils.EmailService
	hasher *utils.OTPHasher
	ttl    time.Duration
	logger zerolog.Logger
	now    Clock
}

func NewPasswordResetService(users store.Users, email *utils.EmailService, hasher *utils.OTPHasher, ttl time.Duration, logger zerolog.Logger) *PasswordResetService {
	return &PasswordResetService{users: users, email: email, hasher: hasher, ttl: ttl, logger: logger, now: systemClock}
}

// RequestReset issues a new code, replacing any earlier one, and mails it.
func (s *PasswordResetService) RequestReset(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return utils.Validation("Please provide an email")
	}
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return storeErr(err, "User not found", "look up email")
	}

	code, err := utils.GenerateOTP()
	if err != nil {
		return utils.Internal(err, "generate otp")
	}
	if err := s.users.SetResetOTP(ctx, user.ID, s.hasher.Hash(code), s.now().Add(s.ttl)); err != nil {
		return storeErr(err, "User not found", "store otp")
	}
	if err := s.email.SendPasswordResetOTP(ctx, user, code, s.ttl); err != nil {
		return utils.Internal(err, "send otp email")
	}
	s.logger.Info().Str("user_id", user.ID.Hex()).Msg("password reset code issued")
	return nil
}

// check loads the account and reports whether code is its live reset code.
func (s *PasswordResetService) check(ctx context.Context, email, code string) (*models.User, error) {
	email = normalizeEmail(email)
	if email == "" || code == "" {
		return nil, utils.Validation("Please provide email and OTP")
	}
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, storeErr(err, "User not found", "look up email")
	}
	if user.ResetPasswordOTP == "" || user.ResetPasswordOTPExpires == nil {
		return nil, utils.Validation(msgInvalidOTP)
	}
	if !user.ResetPasswordOTPExpires.After(s.now()) || !s.hasher.Equal(code, user.ResetPasswordOTP) {
		return nil, utils.Validation(msgInvalidOTP)
	}
	return user, nil
}

// VerifyOTP checks the code without consuming it.
func (s *PasswordResetService) VerifyOTP(ctx context.Context, email, code string) error {
	_, err := s.check(ctx, email, code)
	return err
}

// ResetPassword checks the code and, in one conditional write, sets the new password and
// clears the code. A code can be spent once; on failure nothing changes.
func (s *PasswordResetService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	if newPassword == "" {
		return utils.Validation("Please provide a new password")
	}
	user, err := s.check(ctx, email, code)
	if err != nil {
		return err
	}
	hash, err := utils.HashPassword(newPassword)
	if err != nil {
		return utils.Internal(err, "hash password")
	}
	if err := s.users.ConsumeResetOTP(ctx, user.ID, user.ResetPasswordOTP, hash); err != nil {
		if errors.Is(err, store.ErrStaleState) {
			return utils.Validation(msgInvalidOTP)
		}
		return utils.Internal(err, "reset password")
	}
	s.logger.Info().Str("user_id", user.ID.Hex()).Msg("password reset")
	return nil
}
