package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/drivelane-dev/drivelane/internal/auth"
	"github.com/drivelane-dev/drivelane/internal/store"
	"github.com/drivelane-dev/drivelane/internal/types"
	"github.com/gin-gonic/gin"
)

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type TokenRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthHandler serves registration and token issuance. Its collaborators are
// injected at construction; it holds no global state.
type AuthHandler struct {
	users  *store.UserStore
	tokens *auth.TokenService
	hasher *auth.PasswordHasher
	logger *slog.Logger
}

func NewAuthHandler(users *store.UserStore, tokens *auth.TokenService, hasher *auth.PasswordHasher, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		users:  users,
		tokens: tokens,
		hasher: hasher,
		logger: logger,
	}
}

// Register creates a new account. Duplicate emails are resolved by the
// store's uniqueness constraint, so two racing registrations end with one
// row and one 409.
func (h *AuthHandler) Register(ctx *gin.Context) {
	var req RegisterRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Invalid request body"})
		return
	}

	if err := auth.ValidatePassword(req.Password); err != nil {
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	if req.Username == "" {
		req.Username = usernameFromEmail(req.Email)
	}

	passwordHash, err := h.hasher.Hash(req.Password)

	if err != nil {
		h.logger.Error("failed to hash password", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	user, err := h.users.Create(req.Username, req.Email, passwordHash)

	if err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			ctx.JSON(http.StatusConflict, gin.H{"error": "A user with this email already exists"})
			return
		}
		h.logger.Error("failed to create user", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"user": types.UserResponse{
			ID:       user.ID,
			Username: user.Username,
			Email:    user.Email,
		},
	})
}

// Token exchanges a username and password for a bearer token. An unknown
// username is a 404 and a bad password a 401; everything else about the
// failure stays server-side.
func (h *AuthHandler) Token(ctx *gin.Context) {
	var req TokenRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Invalid request body"})
		return
	}

	user, err := h.users.GetByUsername(req.Username)

	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Unknown username"})
			return
		}
		h.logger.Error("failed to look up user", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if !h.hasher.Verify(req.Password, user.PasswordHash) {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Incorrect password"})
		return
	}

	token, err := h.tokens.Issue(user.ID)

	if err != nil {
		h.logger.Error("failed to issue token", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, types.TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
	})
}

func usernameFromEmail(email string) string {
	email = store.NormalizeEmail(email)

	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}

	return email
}
