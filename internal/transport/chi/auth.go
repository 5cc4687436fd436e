package chi

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// Probes and the scrape endpoint stay reachable without a key.
var publicPaths = map[string]struct{}{
	"/health":  {},
	"/metrics": {},
}

// apiKeyRing holds the accepted API keys.
type apiKeyRing [][]byte

func newAPIKeyRing(keys []string) apiKeyRing {
	ring := make(apiKeyRing, 0, len(keys))
	for _, k := range keys {
		if k = strings.TrimSpace(k); k != "" {
			ring = append(ring, []byte(k))
		}
	}
	return ring
}

// accepts compares token against every key so timing does not reveal which one matched.
func (r apiKeyRing) accepts(token string) bool {
	found := 0
	for _, k := range r {
		found |= subtle.ConstantTimeCompare(k, []byte(token))
	}
	return found == 1
}

// bearerToken extracts the credential of an "Authorization: Bearer <token>" header.
// The scheme is matched case-insensitively.
func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// BearerAuthMiddleware rejects requests without a known API key.
// With no keys configured every request passes.
func BearerAuthMiddleware(apiKeys []string) func(http.Handler) http.Handler {
	ring := newAPIKeyRing(apiKeys)

	return func(next http.Handler) http.Handler {
		if len(ring) == 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := publicPaths[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			header := r.Header.Get("Authorization")
			token, ok := bearerToken(header)
			switch {
			case header == "":
				unauthorized(w, "missing authorization header")
			case !ok:
				unauthorized(w, "authorization header must use Bearer scheme")
			case !ring.accepts(token):
				unauthorized(w, "invalid api key")
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="playmatch"`)
	writeError(w, http.StatusUnauthorized, CodeUnauthorized, msg)
}
