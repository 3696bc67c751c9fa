package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/drivelane-dev/drivelane/internal/auth"
	"github.com/drivelane-dev/drivelane/internal/middleware"
	"github.com/drivelane-dev/drivelane/internal/store"
	"github.com/drivelane-dev/drivelane/internal/types"
	"github.com/gin-gonic/gin"
)

type UpdateUserRequest struct {
	Username        *string `json:"username" binding:"omitempty,min=1,max=50"`
	Email           *string `json:"email" binding:"omitempty,email"`
	CurrentPassword string  `json:"current_password"`
	NewPassword     string  `json:"new_password"`
}

// UserHandler serves the authenticated user's own profile. There is no
// cross-user surface: every route under /api/users operates on the caller.
type UserHandler struct {
	users  *store.UserStore
	hasher *auth.PasswordHasher
	logger *slog.Logger
}

func NewUserHandler(users *store.UserStore, hasher *auth.PasswordHasher, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		users:  users,
		hasher: hasher,
		logger: logger,
	}
}

func (h *UserHandler) Me(ctx *gin.Context) {
	currentUser, ok := middleware.CurrentUser(ctx)

	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"user": types.UserResponse{
			ID:       currentUser.ID,
			Username: currentUser.Username,
			Email:    currentUser.Email,
		},
	})
}

// UpdateMe patches the caller's profile. Changing the password requires the
// current one; changing the email can collide with another account, which
// comes back as a 409.
func (h *UserHandler) UpdateMe(ctx *gin.Context) {
	currentUser, ok := middleware.CurrentUser(ctx)

	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req UpdateUserRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Invalid request body"})
		return
	}

	updates := make(map[string]interface{})

	if req.Username != nil {
		updates["username"] = strings.TrimSpace(*req.Username)
	}

	// Changing the email or the password repins the account to a new
	// credential, so both require the current password.
	if req.Email != nil || req.NewPassword != "" {
		dbUser, err := h.users.GetByID(currentUser.ID)

		if err != nil {
			h.logger.Error("failed to fetch user", "error", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		if !h.hasher.Verify(req.CurrentPassword, dbUser.PasswordHash) {
			ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Current password is incorrect"})
			return
		}
	}

	if req.Email != nil {
		updates["email"] = *req.Email
	}

	if req.NewPassword != "" {
		if err := auth.ValidatePassword(req.NewPassword); err != nil {
			ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}

		passwordHash, err := h.hasher.Hash(req.NewPassword)

		if err != nil {
			h.logger.Error("failed to hash new password", "error", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		updates["password_hash"] = passwordHash
	}

	if len(updates) == 0 {
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": "No valid fields to update"})
		return
	}

	user, err := h.users.Update(currentUser.ID, updates)

	if err != nil {
		switch {
		case errors.Is(err, store.ErrDuplicateEmail):
			ctx.JSON(http.StatusConflict, gin.H{"error": "A user with this email already exists"})
		case errors.Is(err, store.ErrNotFound):
			ctx.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		default:
			h.logger.Error("failed to update user", "error", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"user": types.UserResponse{
			ID:       user.ID,
			Username: user.Username,
			Email:    user.Email,
		},
	})
}

// DeleteMe removes the caller's account and every application they own.
// The password is re-checked so a leaked token alone cannot destroy an
// account.
func (h *UserHandler) DeleteMe(ctx *gin.Context) {
	currentUser, ok := middleware.CurrentUser(ctx)

	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req struct {
		Password string `json:"password" binding:"required"`
	}

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Password is required for account deletion"})
		return
	}

	dbUser, err := h.users.GetByID(currentUser.ID)

	if err != nil {
		h.logger.Error("failed to fetch user", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if !h.hasher.Verify(req.Password, dbUser.PasswordHash) {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Incorrect password"})
		return
	}

	if err := h.users.Delete(currentUser.ID); err != nil {
		h.logger.Error("failed to delete user", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.Status(http.StatusNoContent)
}
