package api

import (
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// requireToken checks "Authorization: Bearer <token>" against the bcrypt
// hash from server.token_hash. It is a no-op when no hash is configured.
func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.tokenHash == "" {
			next.ServeHTTP(w, r)
			return
		}
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || token == "" {
			w.Header().Set("WWW-Authenticate", `Bearer realm="domforge"`)
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "missing bearer token"})
			return
		}
		if err := bcrypt.CompareHashAndPassword([]byte(s.tokenHash), []byte(token)); err != nil {
			s.logger.Warn("api: rejected token", "remote", r.RemoteAddr)
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid token"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// HashToken returns the bcrypt hash to put in server.token_hash.
func HashToken(token string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}
