package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/parcelhub/parcelhub/internal/config"
	"github.com/parcelhub/parcelhub/internal/domain/user"
	"github.com/parcelhub/parcelhub/internal/http/middlewares"
	"github.com/parcelhub/parcelhub/internal/repo/postgres"
	"github.com/parcelhub/parcelhub/internal/security"
)

type ProfileStore interface {
	GetByID(ctx context.Context, id int64) (user.User, error)
	UpdateProfile(ctx context.Context, id int64, req user.UpdateProfileRequest, passwordHash string) (user.User, error)
	Delete(ctx context.Context, id int64) error
}

// UsersStore is the full surface the router wires a users repo into.
type UsersStore interface {
	UserReader
	UserWriter
	ProfileStore
	OwnerReader
}

type UsersHandler struct {
	users ProfileStore
}

func NewUsersHandler(users ProfileStore) *UsersHandler {
	return &UsersHandler{users: users}
}

func (h *UsersHandler) GetProfile(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Authentication required")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)

	defer cancel()

	u, err := h.users.GetByID(cctx, userID)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			// valid token for a since-deleted account
			RespondNotFound(ctx, "User not found")
			return
		}

		if postgres.IsUnavailable(err) {
			RespondServiceUnavailable(ctx, "Datastore unreachable, try again shortly.")
			return
		}

		slog.Default().ErrorContext(ctx.Request.Context(), "get_profile_failed", "err", err)
		RespondInternal(ctx, "Could not fetch profile")
		return
	}

	ctx.JSON(http.StatusOK, u)
}

func (h *UsersHandler) UpdateProfile(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Authentication required")
		return
	}

	var req user.UpdateProfileRequest

	if !BindJSON(ctx, &req) {
		return
	}

	if req.Empty() {
		RespondBadRequest(ctx, "Nothing to update", nil)
		return
	}

	passwordHash := ""

	if req.Password != nil {
		hash, err := security.HashPassword(*req.Password)

		if err != nil {
			RespondInternal(ctx, "Could not update profile")
			return
		}

		passwordHash = hash
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	u, err := h.users.UpdateProfile(cctx, userID, req, passwordHash)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}

		if postgres.IsUnavailable(err) {
			RespondServiceUnavailable(ctx, "Datastore unreachable, try again shortly.")
			return
		}

		slog.Default().ErrorContext(ctx.Request.Context(), "update_profile_failed", "err", err)
		RespondInternal(ctx, "Could not update profile")
		return
	}

	ctx.JSON(http.StatusOK, u)
}

// DeleteProfile hard-deletes the account. Shipments the user owns stay
// behind untouched.
func (h *UsersHandler) DeleteProfile(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Authentication required")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)

	defer cancel()

	err := h.users.Delete(cctx, userID)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}

		if postgres.IsUnavailable(err) {
			RespondServiceUnavailable(ctx, "Datastore unreachable, try again shortly.")
			return
		}

		slog.Default().ErrorContext(ctx.Request.Context(), "delete_account_failed", "err", err)
		RespondInternal(ctx, "Could not delete account")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "User account deleted successfully"})
}
