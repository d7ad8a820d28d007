package router

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/ignatzorin/hebammen-backend/internal/config"
)

type staticTokens map[string]string

func (s staticTokens) ParseAccess(token string) (uuid.UUID, string, error) {
	role, ok := s[token]
	if !ok {
		return uuid.Nil, "", errors.New("invalid token")
	}
	return uuid.New(), role, nil
}

func testRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		Env:              "test",
		AllowedOrigins:   []string{"http://localhost:3000"},
		MediaStoragePath: t.TempDir(),
		RateLimitLimit:   100,
		RateLimitPeriod:  time.Minute,
		BookingRateLimit: 100,
	}
	return SetupRouter(cfg, Handlers{}, staticTokens{"client": "CLIENT", "midwife": "MIDWIFE"})
}

func request(r *gin.Engine, method, path, token string) int {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestRouter_ProtectedRoutesRequireToken(t *testing.T) {
	r := testRouter(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/api/bookings"},
		{http.MethodGet, "/api/bookings"},
		{http.MethodGet, "/api/bookings/" + uuid.NewString() + "/contact"},
		{http.MethodPatch, "/api/bookings/" + uuid.NewString() + "/status"},
		{http.MethodGet, "/api/profile"},
		{http.MethodGet, "/api/notifications"},
		{http.MethodGet, "/api/admin/overview"},
	} {
		assert.Equal(t, http.StatusUnauthorized, request(r, tc.method, tc.path, ""), tc.path)
		assert.Equal(t, http.StatusUnauthorized, request(r, tc.method, tc.path, "forged"), tc.path)
	}
}

func TestRouter_RoleGuards(t *testing.T) {
	r := testRouter(t)

	assert.Equal(t, http.StatusForbidden, request(r, http.MethodGet, "/api/admin/overview", "midwife"))
	assert.Equal(t, http.StatusForbidden, request(r, http.MethodGet, "/api/admin/disputes", "client"))
	assert.Equal(t, http.StatusForbidden, request(r, http.MethodPost, "/api/availability", "client"))
	assert.Equal(t, http.StatusForbidden, request(r, http.MethodPost, "/api/billing/subscribe", "client"))
}

func TestRouter_InvalidIDRejectedBeforeHandler(t *testing.T) {
	r := testRouter(t)

	assert.Equal(t, http.StatusBadRequest, request(r, http.MethodGet, "/api/bookings/not-a-uuid/contact", "client"))
	assert.Equal(t, http.StatusBadRequest, request(r, http.MethodGet, "/api/midwives/42", ""))
}

func TestRouter_InternalEndpointWithoutSecret(t *testing.T) {
	r := testRouter(t)

	assert.Equal(t, http.StatusUnauthorized, request(r, http.MethodPost, "/api/internal/update-plan", "anything"))
}
