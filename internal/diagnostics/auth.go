package diagnostics

import (
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// bearerAuth gates a handler chain behind an HS256 JWT bearer token.
// Adapted from the teacher's RSA-based ServiceAuthMiddleware down to a
// single shared-secret HMAC key: diagnostics has one caller class (an
// operator or sidecar holding DiagnosticsToken), not a fleet of
// independently-keyed services, so per-service RSA keys would be
// unused machinery. golang-jwt/jwt/v4 is pinned below v4.5.0 in this
// module, so claims use jwt.StandardClaims rather than the
// RegisteredClaims type introduced later in the v4 line.
func bearerAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if secret == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			const prefix = "Bearer "
			if !strings.HasPrefix(header, prefix) {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}
			raw := strings.TrimPrefix(header, prefix)

			claims := &jwt.StandardClaims{}
			token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				http.Error(w, "invalid bearer token", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// IssueToken mints a short-lived diagnostics bearer token; exposed for
// operator tooling (e.g. a CLI subcommand) rather than used internally.
func IssueToken(secret, subject string, ttl time.Duration) (string, error) {
	claims := jwt.StandardClaims{
		Subject:   subject,
		IssuedAt:  time.Now().Unix(),
		ExpiresAt: time.Now().Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
