package auth

import (
	"context"
	"net"
	"net/http"
	"strings"

	"crimewatch/pkg/config"
	"crimewatch/pkg/logger"
	"crimewatch/pkg/models"
	"crimewatch/pkg/utils"
)

type ctxSessionKey struct{}

// SessionCookie is the cookie name carrying the session token.
const SessionCookie = "session"

// GatewayConfig tunes the outermost HTTP middleware.
type GatewayConfig struct {
	AllowedOrigins []string
	Rate           RateConfig
}

// Gateway is the outermost middleware: request logging, CORS, and
// per-client rate limiting. Session resolution happens here too so every
// handler can read the identity from context; enforcement is left to
// RequireSession on the gated routes.
func Gateway(cfg GatewayConfig) func(http.Handler) http.Handler {
	limiters := &limiterPool{cfg: cfg.Rate}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger.LogRequest(r)

			origin := r.Header.Get("Origin")
			if origin != "" && originAllowed(origin, cfg.AllowedOrigins) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Vary", "Origin")
				w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,PATCH,OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Authorization,Content-Type,X-API-Key")
				w.Header().Set("Access-Control-Allow-Credentials", "true")
				w.Header().Set("Access-Control-Max-Age", "600")
			}
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			// health probes skip rate limiting
			if (r.URL.Path == "/healthz" || r.URL.Path == "/readyz") && r.Method == http.MethodGet {
				next.ServeHTTP(w, r)
				return
			}

			if !limiters.Allow(clientIP(r)) {
				utils.JSONError(w, http.StatusTooManyRequests, "rate limit exceeded")
				logger.Warn("rate_limited", "path", r.URL.Path, "remote", r.RemoteAddr)
				return
			}

			if token := bearerToken(r); token != "" {
				if id, err := ParseSession(token); err == nil {
					r = r.WithContext(context.WithValue(r.Context(), ctxSessionKey{}, id))
				} else {
					logger.Warn("session_rejected", "path", r.URL.Path, "remote", r.RemoteAddr)
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireSession gates a route behind an authenticated session.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := SessionFromContext(r.Context()); !ok {
			utils.JSONError(w, http.StatusUnauthorized, "unauthorized")
			logger.Warn("request_unauthorized", "path", r.URL.Path, "remote", r.RemoteAddr)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin gates back-office routes behind a configured admin key.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := strings.TrimSpace(r.Header.Get("X-API-Key"))
		if key == "" || !config.IsAdminKey(key) {
			utils.JSONError(w, http.StatusForbidden, "forbidden")
			logger.Warn("admin_rejected", "path", r.URL.Path, "remote", r.RemoteAddr)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// SessionFromContext returns the resolved session identity, if any.
func SessionFromContext(ctx context.Context) (models.Identity, bool) {
	if v := ctx.Value(ctxSessionKey{}); v != nil {
		if id, ok := v.(models.Identity); ok {
			return id, true
		}
	}
	return models.Identity{}, false
}

// WithSession injects an identity into the context. Test helper and
// internal plumbing; production resolution happens in Gateway.
func WithSession(ctx context.Context, id models.Identity) context.Context {
	return context.WithValue(ctx, ctxSessionKey{}, id)
}

// bearerToken pulls the session token from the Authorization header or,
// failing that, the session cookie.
func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		return c.Value
	}
	return ""
}

func originAllowed(origin string, allowed []string) bool {
	if len(allowed) == 0 {
		return false
	}
	for _, a := range allowed {
		if a == "*" || strings.EqualFold(a, origin) {
			return true
		}
	}
	return false
}

func clientIP(r *http.Request) string {
	if xf := r.Header.Get("X-Forwarded-For"); xf != "" {
		parts := strings.Split(xf, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
