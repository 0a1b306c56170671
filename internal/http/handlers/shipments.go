package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/parcelhub/parcelhub/internal/cache"
	"github.com/parcelhub/parcelhub/internal/config"
	"github.com/parcelhub/parcelhub/internal/domain/shipment"
	"github.com/parcelhub/parcelhub/internal/domain/user"
	"github.com/parcelhub/parcelhub/internal/http/middlewares"
	"github.com/parcelhub/parcelhub/internal/observability"
	"github.com/parcelhub/parcelhub/internal/repo/postgres"
	"github.com/parcelhub/parcelhub/internal/utils"
)

type ShipmentStore interface {
	Create(ctx context.Context, s shipment.Shipment) (shipment.Shipment, error)
	GetByTrackingNumber(ctx context.Context, trackingNumber string) (shipment.Shipment, error)
	ListForUser(ctx context.Context, userID int64) ([]shipment.Shipment, error)
	ListAll(ctx context.Context, filter shipment.ListFilter) ([]shipment.Shipment, bool, error)
	UpdateStatus(ctx context.Context, id int64, status string) (shipment.Shipment, error)
	SoftDelete(ctx context.Context, id int64) (shipment.Shipment, error)
}

type OwnerReader interface {
	GetByID(ctx context.Context, id int64) (user.User, error)
}

type ShipmentsHandler struct {
	repo   ShipmentStore
	owners OwnerReader
	cache  cache.TrackingCache
	prom   *observability.Prom
}

func NewShipmentsHandler(repo ShipmentStore, owners OwnerReader, trackCache cache.TrackingCache, prom *observability.Prom) *ShipmentsHandler {
	return &ShipmentsHandler{
		repo:   repo,
		owners: owners,
		cache:  trackCache,
		prom:   prom,
	}
}

const defaultListLimit = 50

func (h *ShipmentsHandler) CreateShipment(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Authentication required")
		return
	}

	var req shipment.CreateShipmentRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	// sender fields are snapshotted from the owner profile as it is right now
	owner, err := h.owners.GetByID(cctx, userID)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}

		if postgres.IsUnavailable(err) {
			RespondServiceUnavailable(ctx, "Datastore unreachable, try again shortly.")
			return
		}

		slog.Default().ErrorContext(ctx.Request.Context(), "create_shipment_owner_lookup_failed", "err", err)
		RespondInternal(ctx, "Could not create shipment")
		return
	}

	s, err := h.repo.Create(cctx, shipment.NewFromCreateRequest(owner, req))

	if err != nil {
		if postgres.IsUnavailable(err) {
			RespondServiceUnavailable(ctx, "Datastore unreachable, try again shortly.")
			return
		}

		slog.Default().ErrorContext(ctx.Request.Context(), "create_shipment_failed", "err", err)
		RespondInternal(ctx, "Could not create shipment")
		return
	}

	ctx.JSON(http.StatusCreated, s)
}

// TrackShipment is the public, unauthenticated lookup. Possession of the
// tracking number is the only access control here, which is why codes are
// generated unguessable.
func (h *ShipmentsHandler) TrackShipment(ctx *gin.Context) {
	trackingNumber := ctx.Param("tracking_number")

	if trackingNumber == "" {
		RespondBadRequest(ctx, "Tracking number is required", nil)
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)

	defer cancel()

	if h.cache != nil {
		if payload, ok := h.cache.Get(cctx, trackingNumber); ok {
			if h.prom != nil {
				h.prom.TrackCacheHits.Inc()
			}
			ctx.Data(http.StatusOK, "application/json; charset=utf-8", payload)
			return
		}

		if h.prom != nil {
			h.prom.TrackCacheMisses.Inc()
		}
	}

	s, err := h.repo.GetByTrackingNumber(cctx, trackingNumber)

	if err != nil {
		if errors.Is(err, shipment.ErrNotFound) {
			RespondNotFound(ctx, "Shipment not found")
			return
		}

		if postgres.IsUnavailable(err) {
			RespondServiceUnavailable(ctx, "Datastore unreachable, try again shortly.")
			return
		}

		slog.Default().ErrorContext(ctx.Request.Context(), "track_shipment_failed", "err", err)
		RespondInternal(ctx, "Could not fetch shipment")
		return
	}

	payload, err := json.Marshal(s)

	if err != nil {
		RespondInternal(ctx, "Could not fetch shipment")
		return
	}

	if h.cache != nil {
		h.cache.Set(cctx, trackingNumber, payload)
	}

	ctx.Data(http.StatusOK, "application/json; charset=utf-8", payload)
}

func (h *ShipmentsHandler) ListMyShipments(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Authentication required")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)

	defer cancel()

	shipments, err := h.repo.ListForUser(cctx, userID)

	if err != nil {
		if postgres.IsUnavailable(err) {
			RespondServiceUnavailable(ctx, "Datastore unreachable, try again shortly.")
			return
		}

		slog.Default().ErrorContext(ctx.Request.Context(), "list_my_shipments_failed", "err", err)
		RespondInternal(ctx, "Could not list shipments")
		return
	}

	ctx.JSON(http.StatusOK, shipments)
}

// ListAllShipments backs the admin dashboard; the role gate sits on the
// route, not here. limit/after query params page through on (created_at, id).
func (h *ShipmentsHandler) ListAllShipments(ctx *gin.Context) {
	filter := shipment.ListFilter{Limit: defaultListLimit}

	if rawLimit := ctx.Query("limit"); rawLimit != "" {
		limit, err := strconv.Atoi(rawLimit)

		if err != nil || limit < 1 || limit > 200 {
			RespondBadRequest(ctx, "limit must be an integer between 1 and 200", nil)
			return
		}

		filter.Limit = limit
	}

	if after := ctx.Query("after"); after != "" {
		cursor, err := utils.DecodeShipmentCursor(after)

		if err != nil {
			RespondBadRequest(ctx, "after is not a valid cursor", nil)
			return
		}

		filter.AfterCreated = cursor.CreatedAt
		filter.AfterID = cursor.ID
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)

	defer cancel()

	shipments, hasMore, err := h.repo.ListAll(cctx, filter)

	if err != nil {
		if postgres.IsUnavailable(err) {
			RespondServiceUnavailable(ctx, "Datastore unreachable, try again shortly.")
			return
		}

		slog.Default().ErrorContext(ctx.Request.Context(), "list_all_shipments_failed", "err", err)
		RespondInternal(ctx, "Could not list shipments")
		return
	}

	var nextCursor *string

	if hasMore && len(shipments) > 0 {
		last := shipments[len(shipments)-1]

		encoded, encErr := utils.EncodeShipmentCursor(last.CreatedAt, last.ID)

		if encErr == nil {
			nextCursor = &encoded
		}
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items":      shipments,
		"count":      len(shipments),
		"nextCursor": nextCursor,
	})
}

func (h *ShipmentsHandler) UpdateStatus(ctx *gin.Context) {
	id, ok := shipmentIDParam(ctx)

	if !ok {
		return
	}

	var req shipment.UpdateStatusRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)

	defer cancel()

	s, err := h.repo.UpdateStatus(cctx, id, req.Status)

	if err != nil {
		if errors.Is(err, shipment.ErrNotFound) {
			RespondNotFound(ctx, "Shipment not found")
			return
		}

		if postgres.IsUnavailable(err) {
			RespondServiceUnavailable(ctx, "Datastore unreachable, try again shortly.")
			return
		}

		slog.Default().ErrorContext(ctx.Request.Context(), "update_status_failed", "err", err)
		RespondInternal(ctx, "Could not update shipment status")
		return
	}

	if h.cache != nil {
		h.cache.Invalidate(cctx, s.TrackingNumber)
	}

	ctx.JSON(http.StatusOK, s)
}

func (h *ShipmentsHandler) DeleteShipment(ctx *gin.Context) {
	id, ok := shipmentIDParam(ctx)

	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)

	defer cancel()

	s, err := h.repo.SoftDelete(cctx, id)

	if err != nil {
		if errors.Is(err, shipment.ErrNotFound) {
			RespondNotFound(ctx, "Shipment not found or already deleted")
			return
		}

		if postgres.IsUnavailable(err) {
			RespondServiceUnavailable(ctx, "Datastore unreachable, try again shortly.")
			return
		}

		slog.Default().ErrorContext(ctx.Request.Context(), "delete_shipment_failed", "err", err)
		RespondInternal(ctx, "Could not delete shipment")
		return
	}

	if h.cache != nil {
		h.cache.Invalidate(cctx, s.TrackingNumber)
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message":  "Shipment deleted successfully",
		"shipment": s,
	})
}

func shipmentIDParam(ctx *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)

	if err != nil || id < 1 {
		RespondBadRequest(ctx, "shipment id must be a positive integer", nil)
		return 0, false
	}

	return id, true
}
