package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go-storefront/models"
	"go-storefront/store"
	"go-storefront/utils"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Key type for context
type contextKey string

const (
	userIDKey    = contextKey("userID")
	requestIDKey = contextKey("requestID")
	infoKey      = contextKey("requestInfo")
)

// TokenCookie is the name of the session cookie.
const TokenCookie = "token"

// WithUserID returns a context carrying the authenticated account id.
func WithUserID(ctx context.Context, id primitive.ObjectID) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}

// UserIDFromContext returns the account id attached by AuthMiddleware.
func UserIDFromContext(ctx context.Context) (primitive.ObjectID, bool) {
	id, ok := ctx.Value(userIDKey).(primitive.ObjectID)
	return id, ok && !id.IsZero()
}

// tokenFromRequest reads the session cookie, falling back to a Bearer header.
func tokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(TokenCookie); err == nil && c.Value != "" {
		return c.Value
	}
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// AuthMiddleware verifies the session token and attaches the account id to the context
func AuthMiddleware(tokens *utils.TokenMaker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := tokenFromRequest(r)
			if raw == "" {
				utils.WriteError(w, r, utils.Unauthorized("Authentication required - No token provided"))
				return
			}
			userID, err := tokens.Verify(raw)
			if err != nil {
				utils.WriteError(w, r, utils.Unauthorized("Invalid or expired token"))
				return
			}

			if info, ok := r.Context().Value(infoKey).(*requestInfo); ok {
				info.userID = userID.Hex()
			}
			ctx := WithUserID(r.Context(), userID)
			logger := zerolog.Ctx(ctx).With().Str("user_id", userID.Hex()).Logger()
			next.ServeHTTP(w, r.WithContext(logger.WithContext(ctx)))
		})
	}
}

// VendorMiddleware ensures the authenticated account has the vendor role. It must run
// after AuthMiddleware.
func VendorMiddleware(users store.Users) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := UserIDFromContext(r.Context())
			if !ok {
				utils.WriteError(w, r, utils.Unauthorized("Not authorized"))
				return
			}
			user, err := users.FindByID(r.Context(), userID)
			switch {
			case errors.Is(err, store.ErrNotFound):
				utils.WriteError(w, r, utils.NotFound("User not found"))
				return
			case err != nil:
				utils.WriteError(w, r, utils.Internal(err, "load account for role check"))
				return
			case user.Role != models.RoleVendor:
				utils.WriteError(w, r, utils.Forbidden("Access denied. Vendors only."))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
