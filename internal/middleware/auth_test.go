package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"DF-DOCGEN/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signed(t *testing.T, secret, subject string, method jwt.SigningMethod) string {
	t.Helper()
	token := jwt.NewWithClaims(method, jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	s, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func newRouter(secret string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(NewAuthMiddleware(secret, logger.Nop()).Authenticate())
	r.GET("/whoami", func(c *gin.Context) {
		id, ok := PrincipalID(c)
		c.JSON(http.StatusOK, gin.H{"id": id, "ok": ok})
	})
	return r
}

func call(r *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthenticateSetsPrincipal(t *testing.T) {
	r := newRouter("s3cret")
	w := call(r, signed(t, "s3cret", "user-42", jwt.SigningMethodHS256))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":"user-42","ok":true}`, w.Body.String())
}

func TestAuthenticateAnonymous(t *testing.T) {
	w := call(newRouter("s3cret"), "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":"","ok":false}`, w.Body.String())
}

func TestAuthenticateRejectsBadTokens(t *testing.T) {
	r := newRouter("s3cret")
	assert.Equal(t, http.StatusUnauthorized, call(r, signed(t, "other", "user-42", jwt.SigningMethodHS256)).Code)
	assert.Equal(t, http.StatusUnauthorized, call(r, signed(t, "s3cret", "user-42", jwt.SigningMethodHS384)).Code)
	assert.Equal(t, http.StatusUnauthorized, call(r, "garbage").Code)
}

func TestAuthenticateWithoutSecretIsInert(t *testing.T) {
	w := call(newRouter(""), signed(t, "s3cret", "user-42", jwt.SigningMethodHS256))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":"","ok":false}`, w.Body.String())
}
