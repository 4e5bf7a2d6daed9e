package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"merry/internal/auth"
	"merry/internal/httputil"
)

// AuthMiddleware verifies bearer tokens and stores the user identity in the
// request context. An absent or invalid token leaves the request anonymous;
// routes that require an identity reject it downstream. That keeps ownerless
// document reads working for unauthenticated clients.
func AuthMiddleware(verifier auth.JWTVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := verifier.VerifyToken(token)
			if err != nil {
				logger.Debug("bearer token rejected", "path", r.URL.Path)
				next.ServeHTTP(w, r)
				return
			}

			r = httputil.WithUserID(r, claims.GetUserID())
			r = httputil.WithClaims(r, claims)
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
