package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go-storefront/models"
	"go-storefront/utils"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustTokens(t *testing.T) *utils.TokenMaker {
	t.Helper()
	tokens, err := utils.NewTokenMaker("test-secret", time.Hour)
	require.NoError(t, err)
	return tokens
}

type fakeGoogle struct {
	user *GoogleUser
	err  error
}

func (g fakeGoogle) UserInfo(context.Context, string) (*GoogleUser, error) {
	return g.user, g.err
}

func TestSignupAndLogin(t *testing.T) {
	f := newFixture(t)
	tokens := mustTokens(t)
	svc := NewAuthService(f.store.Users, tokens, nil, zerolog.Nop())

	sess, err := svc.Signup(f.ctx, " Ada ", "Ada@X.io", "pw")
	require.NoError(t, err)
	assert.Equal(t, "Ada", sess.User.Name)
	assert.Equal(t, "ada@x.io", sess.User.Email)
	assert.Equal(t, models.RoleUser, sess.User.Role)
	assert.NotEqual(t, "pw", sess.User.Password)

	id, err := tokens.Verify(sess.Token)
	require.NoError(t, err)
	assert.Equal(t, sess.User.ID, id)

	_, err = svc.Signup(f.ctx, "Other", "ada@x.io", "pw2")
	assertKind(t, err, utils.KindConflict)

	login, err := svc.Login(f.ctx, "ADA@x.io", "pw")
	require.NoError(t, err)
	assert.Equal(t, sess.User.ID, login.User.ID)
}

func TestLoginFailures(t *testing.T) {
	f := newFixture(t)
	svc := NewAuthService(f.store.Users, mustTokens(t), nil, zerolog.Nop())
	f.user(t, "ada@x.io", models.RoleUser)
	require.NoError(t, f.store.Users.Create(f.ctx, &models.User{Name: "G", Email: "g@x.io", GoogleID: "g-1", Role: models.RoleUser}))

	tests := []struct {
		name     string
		email    string
		password string
		status   int
	}{
		{"missing fields", "", "", http.StatusBadRequest},
		{"unknown email", "nobody@x.io", "pw", http.StatusNotFound},
		{"wrong password", "ada@x.io", "nope", http.StatusUnauthorized},
		{"google only account", "g@x.io", "anything", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(f.ctx, tt.email, tt.password)
			assertStatus(t, err, tt.status)
		})
	}
}

func TestGoogleLoginCreatesAccount(t *testing.T) {
	f := newFixture(t)
	google := fakeGoogle{user: &GoogleUser{Sub: "g-1", Email: "New@x.io", EmailVerified: true, Name: "New", Picture: "p.png"}}
	svc := NewAuthService(f.store.Users, mustTokens(t), google, zerolog.Nop())

	sess, err := svc.GoogleLogin(f.ctx, "token")
	require.NoError(t, err)
	assert.Equal(t, "new@x.io", sess.User.Email)
	assert.Equal(t, "g-1", sess.User.GoogleID)
	assert.False(t, sess.User.HasPassword())

	again, err := svc.GoogleLogin(f.ctx, "token")
	require.NoError(t, err)
	assert.Equal(t, sess.User.ID, again.User.ID)
}

func TestGoogleLoginLinksExistingAccount(t *testing.T) {
	f := newFixture(t)
	existing := f.user(t, "ada@x.io", models.RoleUser)
	google := fakeGoogle{user: &GoogleUser{Sub: "g-7", Email: "ada@x.io", EmailVerified: true, Picture: "ada.png"}}
	svc := NewAuthService(f.store.Users, mustTokens(t), google, zerolog.Nop())

	sess, err := svc.GoogleLogin(f.ctx, "token")
	require.NoError(t, err)
	assert.Equal(t, existing.ID, sess.User.ID)

	stored, err := f.store.Users.FindByID(f.ctx, existing.ID)
	require.NoError(t, err)
	assert.Equal(t, "g-7", stored.GoogleID)
	assert.Equal(t, existing.Password, stored.Password, "password hash is kept")

	_, err = svc.Login(f.ctx, "ada@x.io", "secret123")
	require.NoError(t, err)
}

func TestGoogleLoginRejects(t *testing.T) {
	f := newFixture(t)
	linked := &models.User{Name: "L", Email: "linked@x.io", GoogleID: "g-1", Role: models.RoleUser}
	require.NoError(t, f.store.Users.Create(f.ctx, linked))

	tests := []struct {
		name   string
		google fakeGoogle
		token  string
		kind   utils.ErrorKind
	}{
		{"no token", fakeGoogle{}, "", utils.KindValidation},
		{"verifier error", fakeGoogle{err: errors.New("401")}, "t", utils.KindUnauthorized},
		{"unverified email", fakeGoogle{user: &GoogleUser{Sub: "x", Email: "x@x.io"}}, "t", utils.KindUnauthorized},
		{"different google id", fakeGoogle{user: &GoogleUser{Sub: "g-2", Email: "linked@x.io", EmailVerified: true}}, "t", utils.KindUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewAuthService(f.store.Users, mustTokens(t), tt.google, zerolog.Nop())
			_, err := svc.GoogleLogin(f.ctx, tt.token)
			assertKind(t, err, tt.kind)
		})
	}
}

func TestGoogleUserInfoClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer good" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"sub":"123","email":"ada@x.io","email_verified":true,"name":"Ada","picture":"a.png"}`))
	}))
	defer srv.Close()

	client := NewGoogleUserInfoClient(srv.URL)

	user, err := client.UserInfo(context.Background(), "good")
	require.NoError(t, err)
	assert.Equal(t, &GoogleUser{Sub: "123", Email: "ada@x.io", EmailVerified: true, Name: "Ada", Picture: "a.png"}, user)

	_, err = client.UserInfo(context.Background(), "bad")
	assert.Error(t, err)
}

func TestProfile(t *testing.T) {
	f := newFixture(t)
	svc := NewAuthService(f.store.Users, mustTokens(t), nil, zerolog.Nop())
	u := f.user(t, "ada@x.io", models.RoleUser)

	got, err := svc.Profile(f.ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Email, got.Email)

	require.NoError(t, f.store.Users.Delete(f.ctx, u.ID))
	_, err = svc.Profile(f.ctx, u.ID)
	assertKind(t, err, utils.KindNotFound)
}
