package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/taskvault/taskvault/internal/token"
)

func gateForTest(t *testing.T) (*token.Service, http.Handler, *string) {
	t.Helper()
	tokens := token.NewService("access-secret", "refresh-secret", 15*time.Minute, 24*time.Hour)

	var seenEmail string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		email, _ := EmailFromContext(r.Context())
		seenEmail = email
		w.WriteHeader(http.StatusOK)
	})
	return tokens, Auth(tokens, zap.NewNop())(inner), &seenEmail
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Success   bool   `json:"success"`
		ErrorCode string `json:"errorCode"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Success)
	return body.ErrorCode
}

func TestAuth_MissingHeader(t *testing.T) {
	_, gate, _ := gateForTest(t)

	rec := httptest.NewRecorder()
	gate.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/user", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "NO_AUTH_HEADER", errorCode(t, rec))
}

func TestAuth_MalformedHeader(t *testing.T) {
	_, gate, _ := gateForTest(t)

	for _, header := range []string{"Token abc", "Bearer", "Bearer "} {
		req := httptest.NewRequest(http.MethodGet, "/user", nil)
		req.Header.Set("Authorization", header)
		rec := httptest.NewRecorder()
		gate.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code, header)
		assert.Equal(t, "INVALID_AUTH_HEADER", errorCode(t, rec))
	}
}

func TestAuth_InvalidToken(t *testing.T) {
	_, gate, _ := gateForTest(t)

	req := httptest.NewRequest(http.MethodGet, "/user", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rec := httptest.NewRecorder()
	gate.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "INVALID_ACCESS_TOKEN", errorCode(t, rec))
}

func TestAuth_RefreshTokenRejectedAtGate(t *testing.T) {
	tokens, gate, _ := gateForTest(t)

	// A refresh token is signed with the other secret; the gate only
	// accepts the access class.
	refresh, err := tokens.IssueRefresh(token.Identity{Email: "alice@example.com", Username: "alice"})
	assert.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/user", nil)
	req.Header.Set("Authorization", "Bearer "+refresh)
	rec := httptest.NewRecorder()
	gate.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAuth_ValidTokenInjectsIdentity(t *testing.T) {
	tokens, gate, seenEmail := gateForTest(t)

	access, err := tokens.IssueAccess(token.Identity{Email: "alice@example.com", Username: "alice"})
	assert.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/user", nil)
	req.Header.Set("Authorization", "Bearer "+access)
	rec := httptest.NewRecorder()
	gate.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice@example.com", *seenEmail)
}

func TestAuth_ExpiredToken(t *testing.T) {
	expiring := token.NewService("access-secret", "refresh-secret", -time.Minute, 24*time.Hour)
	gate := Auth(expiring, zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	access, err := expiring.IssueAccess(token.Identity{Email: "alice@example.com", Username: "alice"})
	assert.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/user", nil)
	req.Header.Set("Authorization", "Bearer "+access)
	rec := httptest.NewRecorder()
	gate.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "INVALID_ACCESS_TOKEN", errorCode(t, rec))
}
