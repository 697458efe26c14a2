package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/operman-code/petme/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func sign(t *testing.T, claims jwt.Claims, method jwt.SigningMethod, secret string) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func echoCaller() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, _ := UserIDFromContext(r.Context())
		_, _ = w.Write([]byte(id))
	})
}

func TestJWTAuth(t *testing.T) {
	valid := sign(t, &Claims{UserID: "u1"}, jwt.SigningMethodHS256, testSecret)
	legacy := sign(t, &Claims{LegacyID: "u2", Email: "a@b.c"}, jwt.SigningMethodHS256, testSecret)
	subject := sign(t, &Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "u3"}}, jwt.SigningMethodHS256, testSecret)
	wrongKey := sign(t, &Claims{UserID: "u1"}, jwt.SigningMethodHS256, "other")
	expired := sign(t, &Claims{UserID: "u1", RegisteredClaims: jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	}}, jwt.SigningMethodHS256, testSecret)
	noCaller := sign(t, &Claims{Email: "a@b.c"}, jwt.SigningMethodHS256, testSecret)

	tests := []struct {
		name       string
		header     string
		value      string
		wantStatus int
		wantBody   string
	}{
		{"bearer", "Authorization", "Bearer " + valid, http.StatusOK, "u1"},
		{"legacy id claim", "Authorization", "bearer " + legacy, http.StatusOK, "u2"},
		{"subject claim", "Authorization", "Bearer " + subject, http.StatusOK, "u3"},
		{"x-auth-token", "x-auth-token", valid, http.StatusOK, "u1"},
		{"missing", "", "", http.StatusUnauthorized, "No token, authorization denied"},
		{"malformed header", "Authorization", "Token " + valid, http.StatusUnauthorized, "No token, authorization denied"},
		{"wrong key", "Authorization", "Bearer " + wrongKey, http.StatusUnauthorized, "Token is not valid"},
		{"expired", "Authorization", "Bearer " + expired, http.StatusUnauthorized, "Token is not valid"},
		{"no caller", "Authorization", "Bearer " + noCaller, http.StatusUnauthorized, "Token is not valid"},
	}

	h := JWTAuth(testSecret, logger.NewNop())(echoCaller())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
		})
	}
}

func TestParseTokenRejectsNoneAlg(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: "u1"})
	s, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = ParseToken(s, testSecret)
	assert.Error(t, err)
}
