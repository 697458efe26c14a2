package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/operman-code/petme/internal/platform/logger"
	"go.uber.org/zap"
)

// Claims are the token claims issued by the account service. Older tokens carry the
// caller in "id" rather than "userId".
type Claims struct {
	UserID   string `json:"userId,omitempty"`
	LegacyID string `json:"id,omitempty"`
	Email    string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Caller returns the first non-empty identity claim.
func (c *Claims) Caller() string {
	switch {
	case c.UserID != "":
		return c.UserID
	case c.LegacyID != "":
		return c.LegacyID
	default:
		return c.Subject
	}
}

func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		parts := strings.Fields(h)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return parts[1]
		}
		return ""
	}
	return strings.TrimSpace(r.Header.Get("x-auth-token"))
}

// ParseToken validates an HMAC-signed token and returns its caller id.
func ParseToken(tokenString, secret string) (string, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}))
	if err != nil {
		return "", err
	}
	if claims.Caller() == "" {
		return "", jwt.ErrTokenInvalidClaims
	}
	return claims.Caller(), nil
}

// JWTAuth rejects requests without a valid bearer token and stores the caller id in
// the request context.
func JWTAuth(secret string, log *logger.Logger) func(http.Handler) http.Handler {
	log = log.Named("JWTAuth")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				unauthorized(w, "No token, authorization denied")
				return
			}
			userID, err := ParseToken(token, secret)
			if err != nil {
				log.Debug("Rejected token", zap.String("path", r.URL.Path), zap.Error(err))
				unauthorized(w, "Token is not valid")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": message})
}
