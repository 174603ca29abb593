package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/reelcraft/script-generation-go/internal/config"
	"github.com/reelcraft/script-generation-go/internal/db"
	"github.com/reelcraft/script-generation-go/internal/models"
)

type memoryUserRepo struct {
	byEmail map[string]*models.User
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{byEmail: map[string]*models.User{}}
}

func (r *memoryUserRepo) Create(_ context.Context, user *models.User) error {
	if _, exists := r.byEmail[user.Email]; exists {
		return fmt.Errorf("create user: %w", db.ErrDuplicateKey)
	}
	r.byEmail[user.Email] = user
	return nil
}

func (r *memoryUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	user, ok := r.byEmail[email]
	if !ok {
		return nil, fmt.Errorf("find user by email: %w", db.ErrNotFound)
	}
	return user, nil
}

func (r *memoryUserRepo) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	for _, user := range r.byEmail {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, fmt.Errorf("find user by id: %w", db.ErrNotFound)
}

func (r *memoryUserRepo) ResetUsage(_ context.Context, _ uuid.UUID, _ time.Time) error {
	return nil
}

func (r *memoryUserRepo) IncrementUsage(_ context.Context, _ uuid.UUID) (int, error) {
	return 1, nil
}

func authRouter(repo *memoryUserRepo) *gin.Engine {
	h := NewAuthHandler(repo, config.AuthConfig{
		JWTSecret:   "auth-test-secret",
		AdminSecret: "admin-secret",
		TokenTTL:    time.Hour,
	})

	router := gin.New()
	router.POST("/api/v1/auth/login", h.HandleLogin)
	router.POST("/api/v1/admin/users", h.HandleCreateUser)
	return router
}

func seedUser(t *testing.T, repo *memoryUserRepo, email, password string) *models.User {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{
		ID:           uuid.New(),
		Email:        email,
		Name:         "Seeded User",
		PasswordHash: string(hash),
		LastReset:    time.Now(),
	}
	require.NoError(t, repo.Create(context.Background(), user))
	return user
}

func postJSON(t *testing.T, router *gin.Engine, path string, payload any, headers map[string]string) *httptest.ResponseRecorder {
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	router.ServeHTTP(w, req)
	return w
}

func TestHandleLogin(t *testing.T) {
	t.Run("issues token for valid credentials", func(t *testing.T) {
		repo := newMemoryUserRepo()
		user := seedUser(t, repo, "creator@example.com", "correct-horse")
		router := authRouter(repo)

		w := postJSON(t, router, "/api/v1/auth/login", gin.H{
			"email":    "creator@example.com",
			"password": "correct-horse",
		}, nil)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var resp struct {
			Token string `json:"token"`
			User  struct {
				ID    uuid.UUID `json:"id"`
				Email string    `json:"email"`
			} `json:"user"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, user.ID, resp.User.ID)
	})

	t.Run("rejects wrong password", func(t *testing.T) {
		repo := newMemoryUserRepo()
		seedUser(t, repo, "creator@example.com", "correct-horse")
		router := authRouter(repo)

		w := postJSON(t, router, "/api/v1/auth/login", gin.H{
			"email":    "creator@example.com",
			"password": "wrong-password",
		}, nil)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("rejects unknown email with same status as wrong password", func(t *testing.T) {
		router := authRouter(newMemoryUserRepo())

		w := postJSON(t, router, "/api/v1/auth/login", gin.H{
			"email":    "nobody@example.com",
			"password": "whatever-password",
		}, nil)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("rejects missing fields", func(t *testing.T) {
		router := authRouter(newMemoryUserRepo())

		w := postJSON(t, router, "/api/v1/auth/login", gin.H{"email": "creator@example.com"}, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHandleCreateUser(t *testing.T) {
	adminHeaders := map[string]string{"Authorization": "Bearer admin-secret"}

	t.Run("creates user with admin secret", func(t *testing.T) {
		repo := newMemoryUserRepo()
		router := authRouter(repo)

		w := postJSON(t, router, "/api/v1/admin/users", gin.H{
			"email":    "New.Creator@Example.com",
			"password": "strong-password",
			"name":     "New Creator",
		}, adminHeaders)

		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		created, err := repo.FindByEmail(context.Background(), "new.creator@example.com")
		require.NoError(t, err)
		assert.Equal(t, "New Creator", created.Name)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("strong-password")))
	})

	t.Run("rejects missing admin secret", func(t *testing.T) {
		router := authRouter(newMemoryUserRepo())

		w := postJSON(t, router, "/api/v1/admin/users", gin.H{
			"email":    "new@example.com",
			"password": "strong-password",
		}, nil)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("rejects wrong admin secret", func(t *testing.T) {
		router := authRouter(newMemoryUserRepo())

		w := postJSON(t, router, "/api/v1/admin/users", gin.H{
			"email":    "new@example.com",
			"password": "strong-password",
		}, map[string]string{"Authorization": "Bearer not-the-secret"})

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("conflicts on duplicate email", func(t *testing.T) {
		repo := newMemoryUserRepo()
		seedUser(t, repo, "taken@example.com", "whatever-pass")
		router := authRouter(repo)

		w := postJSON(t, router, "/api/v1/admin/users", gin.H{
			"email":    "taken@example.com",
			"password": "strong-password",
		}, adminHeaders)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("rejects short password", func(t *testing.T) {
		router := authRouter(newMemoryUserRepo())

		w := postJSON(t, router, "/api/v1/admin/users", gin.H{
			"email":    "new@example.com",
			"password": "short",
		}, adminHeaders)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
