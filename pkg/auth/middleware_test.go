package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crimewatch/pkg/config"
	"crimewatch/pkg/models"
)

func okHandler() (http.Handler, *int) {
	var hits int
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusOK)
	}), &hits
}

func TestRequireSessionBlocksAnonymous(t *testing.T) {
	next, hits := okHandler()
	h := RequireSession(next)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, 0, *hits)

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req = req.WithContext(WithSession(req.Context(), models.Identity{ID: "u1"}))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, *hits)
}

func TestRequireAdminChecksConfiguredKey(t *testing.T) {
	config.SetRuntime(&config.RuntimeConfig{AdminKeys: map[string]struct{}{"k1": {}}})
	t.Cleanup(func() { config.SetRuntime(nil) })

	next, hits := okHandler()
	h := RequireAdmin(next)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/x", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req := httptest.NewRequest(http.MethodPatch, "/x", nil)
	req.Header.Set("X-API-Key", "wrong")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodPatch, "/x", nil)
	req.Header.Set("X-API-Key", "k1")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, *hits)
}

func TestGatewayResolvesBearerAndCookieSessions(t *testing.T) {
	config.SetRuntime(&config.RuntimeConfig{SessionSecret: "secret", SessionTTL: time.Hour})
	t.Cleanup(func() { config.SetRuntime(nil) })

	token, err := IssueSession(models.Identity{ID: "u1", Email: "a@example.com"})
	require.NoError(t, err)

	var seen models.Identity
	var ok bool
	gw := Gateway(GatewayConfig{Rate: RateConfig{RPS: 100, Burst: 100}})
	h := gw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, ok = SessionFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	h.ServeHTTP(httptest.NewRecorder(), req)
	require.True(t, ok)
	assert.Equal(t, "u1", seen.ID)

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: token})
	ok = false
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.True(t, ok)

	// a bad token resolves to no session rather than an error
	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	ok = true
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, ok)
}

func TestGatewayRateLimits(t *testing.T) {
	gw := Gateway(GatewayConfig{Rate: RateConfig{RPS: 1, Burst: 1}})
	next, _ := okHandler()
	h := gw(next)

	first := httptest.NewRecorder()
	h.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusOK, first.Code)

	second := httptest.NewRecorder()
	h.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)

	// health probes bypass the limiter
	probe := httptest.NewRecorder()
	h.ServeHTTP(probe, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, probe.Code)
}

func TestGatewayCORS(t *testing.T) {
	gw := Gateway(GatewayConfig{
		AllowedOrigins: []string{"https://app.example.com"},
		Rate:           RateConfig{RPS: 100, Burst: 100},
	})
	next, _ := okHandler()
	h := gw(next)

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "https://app.example.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.RemoteAddr = "10.0.0.1:5555"
	assert.Equal(t, "10.0.0.1", clientIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	assert.Equal(t, "203.0.113.7", clientIP(req))
}
