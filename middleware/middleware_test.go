package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go-storefront/models"
	"go-storefront/store"
	"go-storefront/utils"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func echoUserID(w http.ResponseWriter, r *http.Request) {
	id, _ := UserIDFromContext(r.Context())
	utils.WriteJSON(w, http.StatusOK, utils.H{"userId": id.Hex()})
}

func messageOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	msg, _ := body["message"].(string)
	return msg
}

func TestAuthMiddleware(t *testing.T) {
	tokens, err := utils.NewTokenMaker("secret", time.Hour)
	require.NoError(t, err)
	userID := primitive.NewObjectID()
	token, err := tokens.Generate(userID)
	require.NoError(t, err)
	handler := AuthMiddleware(tokens)(http.HandlerFunc(echoUserID))

	tests := []struct {
		name    string
		prepare func(r *http.Request)
		status  int
		message string
	}{
		{"cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: TokenCookie, Value: token}) }, http.StatusOK, ""},
		{"bearer header", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }, http.StatusOK, ""},
		{"missing", func(r *http.Request) {}, http.StatusUnauthorized, "Authentication required - No token provided"},
		{"garbage", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: TokenCookie, Value: "nope"}) }, http.StatusUnauthorized, "Invalid or expired token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			tt.prepare(req)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusOK {
				assert.Contains(t, rec.Body.String(), userID.Hex())
			} else {
				assert.Equal(t, tt.message, messageOf(t, rec))
			}
		})
	}
}

func TestVendorMiddleware(t *testing.T) {
	st := store.NewMemory().Store()
	vendor := &models.User{Name: "V", Email: "v@x.io", Role: models.RoleVendor}
	buyer := &models.User{Name: "B", Email: "b@x.io", Role: models.RoleUser}
	require.NoError(t, st.Users.Create(context.Background(), vendor))
	require.NoError(t, st.Users.Create(context.Background(), buyer))
	handler := VendorMiddleware(st.Users)(http.HandlerFunc(echoUserID))

	tests := []struct {
		name   string
		userID primitive.ObjectID
		status int
	}{
		{"vendor", vendor.ID, http.StatusOK},
		{"buyer", buyer.ID, http.StatusForbidden},
		{"deleted account", primitive.NewObjectID(), http.StatusNotFound},
		{"no session", primitive.NilObjectID, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req = req.WithContext(WithUserID(req.Context(), tt.userID))
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestLoggerMiddlewareRecordsRequest(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	tokens, err := utils.NewTokenMaker("secret", time.Hour)
	require.NoError(t, err)
	userID := primitive.NewObjectID()
	token, err := tokens.Generate(userID)
	require.NoError(t, err)

	chain := RequestIDMiddleware(LoggerMiddleware(logger)(AuthMiddleware(tokens)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))))

	req := httptest.NewRequest(http.MethodGet, "/brew?x=1", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	chain.ServeHTTP(rec, req)

	assert.Equal(t, "req-42", rec.Header().Get(RequestIDHeader))
	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "req-42", line["request_id"])
	assert.Equal(t, userID.Hex(), line["user_id"])
	assert.Equal(t, "/brew?x=1", line["url"])
	assert.EqualValues(t, http.StatusTeapot, line["status"])
}

func TestRequestIDGenerated(t *testing.T) {
	var seen string
	handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.NotEmpty(t, seen)
	assert.NotEqual(t, "unknown", seen)
	assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))
}

func TestRecoverMiddleware(t *testing.T) {
	handler := RecoverMiddleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal Server Error", messageOf(t, rec))
}

func TestTimeoutMiddlewareSetsDeadline(t *testing.T) {
	var hasDeadline bool
	handler := TimeoutMiddleware(time.Second)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hasDeadline = r.Context().Deadline()
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.True(t, hasDeadline)
}
