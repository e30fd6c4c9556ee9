package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/YutakaKawauchi/mvv-analysis-api/internal/api/shared"
	"github.com/YutakaKawauchi/mvv-analysis-api/internal/dispatch"
)

// InternalAuth guards component-to-component endpoints (worker dispatch,
// completion webhook) with a shared-secret header. This is deliberately
// not user authentication; it only keeps external callers off internal
// routes.
type InternalAuth struct {
	token string
}

// NewInternalAuth creates the middleware for the given shared secret.
func NewInternalAuth(token string) *InternalAuth {
	return &InternalAuth{token: token}
}

// Authenticate rejects requests whose internal-token header does not
// match the shared secret. Comparison is constant-time.
func (a *InternalAuth) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		provided := r.Header.Get(dispatch.InternalTokenHeader)
		if subtle.ConstantTimeCompare([]byte(provided), []byte(a.token)) != 1 {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid internal token")
			return
		}
		next.ServeHTTP(w, r)
	})
}
