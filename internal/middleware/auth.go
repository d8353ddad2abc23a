package middleware

import (
	"net/http"
	"strings"

	"github.com/2beens/trendweight/internal/telemetry/tracing"
	"github.com/2beens/trendweight/pkg"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
)

// AuthMiddlewareHandler guards the write surface of the API with a static
// shared-secret token. The secret is never stored in plain text; the
// configured bcrypt hash is compared against the X-TW-TOKEN header.
type AuthMiddlewareHandler struct {
	apiTokenHash         string
	allowedPaths         map[string]bool
	allowedPathsPrefixes []string
}

func NewAuthMiddlewareHandler(apiTokenHash string) *AuthMiddlewareHandler {
	return &AuthMiddlewareHandler{
		apiTokenHash: apiTokenHash,
		allowedPaths: map[string]bool{
			// misc handler:
			"/":        true,
			"/ping":    true,
			"/version": true,
		},
		allowedPathsPrefixes: []string{
			// the read-only query surface is public
			"/weightstats/records",
			"/weightstats/stats",
			"/weightstats/weekly",
			"/weightstats/phases",
			"/weightstats/correlations",
		},
	}
}

func (h *AuthMiddlewareHandler) pathIsAlwaysAllowed(path string) bool {
	if h.allowedPaths[path] {
		return true
	}
	for _, prefix := range h.allowedPathsPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func (h *AuthMiddlewareHandler) AuthCheck() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, span := tracing.GlobalTracer.Start(r.Context(), "middleware.auth")
			defer span.End()

			if r.Method == http.MethodOptions {
				w.Header().Add("Allow", "GET, POST, OPTIONS")
				w.WriteHeader(http.StatusOK)
				span.SetStatus(codes.Ok, "options-ok")
				return
			}

			if h.pathIsAlwaysAllowed(r.URL.Path) {
				span.SetStatus(codes.Ok, "ok")
				next.ServeHTTP(w, r)
				return
			}

			// TODO: use Authorization header, not this custom one
			authToken := r.Header.Get("X-TW-TOKEN")
			if authToken == "" {
				log.Tracef("[missing token] [auth middleware] unauthorized => %s", r.URL.Path)
				http.Error(w, "no can do", http.StatusUnauthorized)
				span.SetStatus(codes.Error, "missing-auth-token")
				return
			}

			if !pkg.CheckPasswordHash(authToken, h.apiTokenHash) {
				log.Tracef("[invalid token] [auth middleware] unauthorized => %s", r.URL.Path)
				http.Error(w, "no can do", http.StatusUnauthorized)
				span.SetStatus(codes.Error, "invalid-auth-token")
				return
			}

			span.SetStatus(codes.Ok, "ok")
			next.ServeHTTP(w, r)
		})
	}
}
