package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reelcraft/script-generation-go/internal/models"
)

const testSecret = "test-secret"

func sessionRouter() (*gin.Engine, *[]*models.Caller) {
	gin.SetMode(gin.TestMode)

	var seen []*models.Caller
	router := gin.New()
	router.Use(Session(testSecret))
	router.GET("/probe", func(c *gin.Context) {
		seen = append(seen, CallerFrom(c))
		c.Status(http.StatusOK)
	})
	return router, &seen
}

func TestSession(t *testing.T) {
	user := &models.User{ID: uuid.New(), Email: "creator@example.com"}

	t.Run("missing header resolves to anonymous", func(t *testing.T) {
		router, seen := sessionRouter()

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/probe", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		require.Len(t, *seen, 1)
		assert.Nil(t, (*seen)[0])
	})

	t.Run("valid token resolves caller identity", func(t *testing.T) {
		router, seen := sessionRouter()

		token, err := GenerateToken(user, testSecret, time.Hour)
		require.NoError(t, err)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/probe", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		require.Len(t, *seen, 1)
		require.NotNil(t, (*seen)[0])
		assert.Equal(t, user.ID, (*seen)[0].ID)
		assert.Equal(t, user.Email, (*seen)[0].Email)
	})

	t.Run("rejects expired token", func(t *testing.T) {
		router, seen := sessionRouter()

		token, err := GenerateToken(user, testSecret, -time.Hour)
		require.NoError(t, err)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/probe", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Empty(t, *seen)
	})

	t.Run("rejects token signed with wrong secret", func(t *testing.T) {
		router, seen := sessionRouter()

		token, err := GenerateToken(user, "other-secret", time.Hour)
		require.NoError(t, err)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/probe", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Empty(t, *seen)
	})

	t.Run("rejects malformed authorization header", func(t *testing.T) {
		router, seen := sessionRouter()

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/probe", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Empty(t, *seen)
	})
}

func TestParseToken_RoundTrip(t *testing.T) {
	user := &models.User{ID: uuid.New(), Email: "creator@example.com"}

	token, err := GenerateToken(user, testSecret, time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), claims.Subject)
	assert.Equal(t, user.Email, claims.Email)
}
