package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v4"
)

var errUnauthorized = errors.New("server: missing or invalid bearer token")

// GenerateToken issues a bearer token gating the mutating RPC calls
// (insert, batchinsert, l2norm, new), the same jwt.NewWithClaims /
// SignedString pair the teacher's replication layer uses to authenticate
// peer connections.
func GenerateToken(subject string, secret []byte) (string, error) {
	claims := jwt.MapClaims{
		"sub": subject,
		"exp": time.Now().Add(24 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// validateToken parses and verifies a bearer token, returning its subject.
func validateToken(tokenString string, secret []byte) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	})
	if err != nil || !token.Valid {
		return "", errUnauthorized
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errUnauthorized
	}
	sub, _ := claims["sub"].(string)
	return sub, nil
}

// requireAuth wraps a mutating handler with a bearer-token check. An
// empty jwtSecret disables the gate entirely (local/dev mode), matching
// the reference CLI having no auth concept at all.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if len(s.jwtSecret) == 0 {
			next(w, r)
			return
		}
		header := r.Header.Get("Authorization")
		const prefix = "Bearer "
		if !strings.HasPrefix(header, prefix) {
			http.Error(w, "missing bearer token", http.StatusUnauthorized)
			return
		}
		if _, err := validateToken(strings.TrimPrefix(header, prefix), s.jwtSecret); err != nil {
			http.Error(w, "invalid bearer token", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}
