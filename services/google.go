package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// GoogleUser is the identity returned by Google's userinfo endpoint.
type GoogleUser struct {
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// GoogleVerifier exchanges an OAuth access token for the Google identity behind it.
type GoogleVerifier interface {
	UserInfo(ctx context.Context, accessToken string) (*GoogleUser, error)
}

// GoogleUserInfoClient calls the OAuth2 userinfo endpoint.
type GoogleUserInfoClient struct {
	url    string
	client *http.Client
}

// NewGoogleUserInfoClient creates a client for the userinfo endpoint at url.
func NewGoogleUserInfoClient(url string) *GoogleUserInfoClient {
	return &GoogleUserInfoClient{url: url, client: &http.Client{Timeout: 10 * time.Second}}
}

func (g *GoogleUserInfoClient) UserInfo(ctx context.Context, accessToken string) (*GoogleUser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending userinfo request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("invalid token: userinfo status %d", resp.StatusCode)
	}

	var user GoogleUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	if user.Sub == "" || user.Email == "" {
		return nil, errors.New("userinfo response is missing sub or email")
	}
	return &user, nil
}
