package services

import (
	"context"
	"errors"
	"strings"

	"go-storefront/models"
	"go-storefront/store"
	"go-storefront/utils"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AuthService registers accounts and issues session tokens.
type AuthService struct {
	users  store.Users
	tokens *utils.TokenMaker
	google GoogleVerifier
	logger zerolog.Logger
	now    Clock
}

func NewAuthService(users store.Users, tokens *utils.TokenMaker, google GoogleVerifier, logger zerolog.Logger) *AuthService {
	return &AuthService{users: users, tokens: tokens, google: google, logger: logger, now: systemClock}
}

// Session is an authenticated account with its freshly issued token.
type Session struct {
	User  *models.User
	Token string
}

func (s *AuthService) session(user *models.User) (*Session, error) {
	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, utils.Internal(err, "sign session token")
	}
	return &Session{User: user, Token: token}, nil
}

// Signup creates a password account with the user role.
func (s *AuthService) Signup(ctx context.Context, name, email, password string) (*Session, error) {
	name, email = strings.TrimSpace(name), normalizeEmail(email)
	if name == "" || email == "" || password == "" {
		return nil, utils.Validation("Please provide all required fields")
	}

	_, err := s.users.FindByEmail(ctx, email)
	if err == nil {
		return nil, utils.Conflict("User already exists with this email")
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, utils.Internal(err, "look up email")
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, utils.Internal(err, "hash password")
	}
	now := s.now()
	user := &models.User{
		Name:      name,
		Email:     email,
		Password:  hash,
		Role:      models.RoleUser,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, utils.Conflict("User already exists with this email")
		}
		return nil, utils.Internal(err, "create user")
	}
	s.logger.Info().Str("user_id", user.ID.Hex()).Msg("account created")
	return s.session(user)
}

// Login checks a password. An unknown email is a 404, a wrong or missing password a 401;
// both carry the same message.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, utils.Validation("Please provide email and password")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, storeErr(err, "Invalid credentials", "look up email")
	}
	if !user.HasPassword() || !utils.CheckPassword(user.Password, password) {
		return nil, utils.Unauthorized("Invalid credentials")
	}
	return s.session(user)
}

// GoogleLogin signs in with a Google access token. An account with the same email is linked
// to the Google identity; its password, if any, is kept.
func (s *AuthService) GoogleLogin(ctx context.Context, accessToken string) (*Session, error) {
	if accessToken == "" {
		return nil, utils.Validation("Google access token is required")
	}
	info, err := s.google.UserInfo(ctx, accessToken)
	if err != nil {
		s.logger.Warn().Err(err).Msg("google token rejected")
		return nil, utils.Unauthorized("Invalid Google token")
	}
	if !info.EmailVerified {
		return nil, utils.Unauthorized("Google account email is not verified")
	}

	email := normalizeEmail(info.Email)
	user, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if user.GoogleID == "" {
			if err := s.users.LinkGoogle(ctx, user.ID, info.Sub, info.Picture); err != nil && !errors.Is(err, store.ErrNotFound) {
				return nil, utils.Internal(err, "link google account")
			}
			user.GoogleID = info.Sub
			if user.Picture == "" {
				user.Picture = info.Picture
			}
		} else if user.GoogleID != info.Sub {
			return nil, utils.Unauthorized("Invalid Google token")
		}
		return s.session(user)
	case !errors.Is(err, store.ErrNotFound):
		return nil, utils.Internal(err, "look up email")
	}

	now := s.now()
	user = &models.User{
		Name:      info.Name,
		Email:     email,
		GoogleID:  info.Sub,
		Picture:   info.Picture,
		Role:      models.RoleUser,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if user.Name == "" {
		user.Name = email
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, utils.Conflict("User already exists with this email")
		}
		return nil, utils.Internal(err, "create google user")
	}
	s.logger.Info().Str("user_id", user.ID.Hex()).Msg("account created from google")
	return s.session(user)
}

// Profile returns the account behind a session.
func (s *AuthService) Profile(ctx context.Context, userID primitive.ObjectID) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, storeErr(err, "User not found", "load profile")
	}
	return user, nil
}
