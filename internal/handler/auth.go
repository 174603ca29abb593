package handler

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/reelcraft/script-generation-go/internal/config"
	"github.com/reelcraft/script-generation-go/internal/db"
	"github.com/reelcraft/script-generation-go/internal/db/repository"
	"github.com/reelcraft/script-generation-go/internal/middleware"
	"github.com/reelcraft/script-generation-go/internal/models"
	"github.com/reelcraft/script-generation-go/pkg/logger"
)

// AuthHandler handles login and admin user management.
type AuthHandler struct {
	users repository.UserRepository
	cfg   config.AuthConfig
}

// NewAuthHandler creates a new AuthHandler instance.
func NewAuthHandler(users repository.UserRepository, cfg config.AuthConfig) *AuthHandler {
	return &AuthHandler{users: users, cfg: cfg}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type createUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name"`
}

// HandleLogin verifies credentials and issues a session token.
func (h *AuthHandler) HandleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "Bad Request", "Invalid request payload: "+err.Error(), nil)
		return
	}

	user, err := h.users.FindByEmail(c.Request.Context(), strings.ToLower(req.Email))
	if err != nil {
		if db.IsNotFound(err) {
			writeError(c, http.StatusUnauthorized, "Unauthorized", "Invalid email or password", nil)
			return
		}
		logger.Log.Error("Failed to load user for login", zap.Error(err))
		writeError(c, http.StatusInternalServerError, "Internal Server Error", "Login failed", nil)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		writeError(c, http.StatusUnauthorized, "Unauthorized", "Invalid email or password", nil)
		return
	}

	token, err := middleware.GenerateToken(user, h.cfg.JWTSecret, h.cfg.TokenTTL)
	if err != nil {
		logger.Log.Error("Failed to sign session token", zap.Error(err))
		writeError(c, http.StatusInternalServerError, "Internal Server Error", "Login failed", nil)
		return
	}

	logger.Log.Info("User logged in", zap.String("userId", user.ID.String()))

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user": gin.H{
			"id":    user.ID,
			"email": user.Email,
			"name":  user.Name,
		},
	})
}

// HandleCreateUser registers a new user. Guarded by the configured admin
// secret, passed as a bearer token.
func (h *AuthHandler) HandleCreateUser(c *gin.Context) {
	if !h.adminAuthorized(c) {
		writeError(c, http.StatusUnauthorized, "Unauthorized", "Invalid admin credentials", nil)
		return
	}

	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "Bad Request", "Invalid request payload: "+err.Error(), nil)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		logger.Log.Error("Failed to hash password", zap.Error(err))
		writeError(c, http.StatusInternalServerError, "Internal Server Error", "Failed to create user", nil)
		return
	}

	now := time.Now()
	user := &models.User{
		ID:           uuid.New(),
		Email:        strings.ToLower(req.Email),
		Name:         req.Name,
		PasswordHash: string(hash),
		LastReset:    now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := h.users.Create(c.Request.Context(), user); err != nil {
		if db.IsDuplicateKey(err) {
			writeError(c, http.StatusConflict, "Conflict", "A user with this email already exists", nil)
			return
		}
		logger.Log.Error("Failed to create user", zap.Error(err))
		writeError(c, http.StatusInternalServerError, "Internal Server Error", "Failed to create user", nil)
		return
	}

	logger.Log.Info("User created",
		zap.String("userId", user.ID.String()),
		zap.String("email", user.Email),
	)

	c.JSON(http.StatusCreated, gin.H{
		"id":    user.ID,
		"email": user.Email,
		"name":  user.Name,
	})
}

func (h *AuthHandler) adminAuthorized(c *gin.Context) bool {
	if h.cfg.AdminSecret == "" {
		return false
	}

	authHeader := c.GetHeader("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return false
	}

	provided := strings.TrimPrefix(authHeader, "Bearer ")
	return subtle.ConstantTimeCompare([]byte(provided), []byte(h.cfg.AdminSecret)) == 1
}
