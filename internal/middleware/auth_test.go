package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-redis/redismock/v8"
	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func signedToken(t *testing.T, jti string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"client_id": 3,
		"jti":       jti,
		"exp":       time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(viper.GetString("jwt.secret_key")))
	assert.NoError(t, err)
	return signed
}

func TestAuthMiddleware(t *testing.T) {
	viper.Set("jwt.secret_key", "test-secret")

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID, _ := r.Context().Value(ClientIDKey).(string)
		w.Header().Set("X-Client-ID", clientID)
		w.WriteHeader(http.StatusOK)
	})
	handler := AuthMiddleware(next)

	t.Run("valid token passes and carries the client id", func(t *testing.T) {
		redisClient, redisMock := redismock.NewClientMock()
		InitAuthMiddleware(redisClient)
		redisMock.ExpectExists("blacklist:jti-1").SetVal(0)

		req := httptest.NewRequest("GET", "/accounts", nil)
		req.Header.Set("Authorization", "Bearer "+signedToken(t, "jti-1"))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "3", w.Header().Get("X-Client-ID"))
	})

	t.Run("blacklisted token is rejected", func(t *testing.T) {
		redisClient, redisMock := redismock.NewClientMock()
		InitAuthMiddleware(redisClient)
		redisMock.ExpectExists("blacklist:jti-2").SetVal(1)

		req := httptest.NewRequest("GET", "/accounts", nil)
		req.Header.Set("Authorization", "Bearer "+signedToken(t, "jti-2"))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("missing header is rejected", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/accounts", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("malformed header is rejected", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/accounts", nil)
		req.Header.Set("Authorization", "Token abc")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("token signed with a different HMAC variant is rejected", func(t *testing.T) {
		redisClient, _ := redismock.NewClientMock()
		InitAuthMiddleware(redisClient)

		token := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{
			"client_id": 3,
			"jti":       "jti-3",
			"exp":       time.Now().Add(time.Hour).Unix(),
		})
		signed, err := token.SignedString([]byte(viper.GetString("jwt.secret_key")))
		assert.NoError(t, err)

		req := httptest.NewRequest("GET", "/accounts", nil)
		req.Header.Set("Authorization", "Bearer "+signed)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("garbage token is rejected", func(t *testing.T) {
		redisClient, _ := redismock.NewClientMock()
		InitAuthMiddleware(redisClient)

		req := httptest.NewRequest("GET", "/accounts", nil)
		req.Header.Set("Authorization", "Bearer not-a-token")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
