package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/wb-go/wbf/ginext"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/order-notifier/internal/api/dto"
	"github.com/aliskhannn/order-notifier/internal/api/respond"
	"github.com/aliskhannn/order-notifier/internal/model"
	notifrepo "github.com/aliskhannn/order-notifier/internal/repository/notification"
	notifsvc "github.com/aliskhannn/order-notifier/internal/service/notification"
)

// notificationService defines the interface that the Handler depends on.
//
//go:generate mockgen -source=handler.go -destination=../../../mocks/api/handlers/notification/mock.go -package=mocks
type notificationService interface {
	EnqueueAndDispatch(ctx context.Context, d model.Draft) (model.Notification, model.DispatchResult, error)
	GetNotification(ctx context.Context, id uuid.UUID) (model.Notification, error)
	GetAllNotifications(ctx context.Context) ([]model.Notification, error)
	GetNotificationStatus(ctx context.Context, id uuid.UUID) (model.Status, error)
}

// Handler handles HTTP requests related to notifications.
//
// Sending is synchronous: a create request returns once the provider has
// accepted or rejected the message.
type Handler struct {
	service   notificationService
	validator *validator.Validate
}

// NewHandler creates a new Handler instance.
func NewHandler(s notificationService, v *validator.Validate) *Handler {
	return &Handler{service: s, validator: v}
}

// Create handles POST requests that enqueue a notification and deliver it
// immediately.
//
// Responses:
//   - 201 with the notification and provider result on delivery
//   - 400 on an invalid body
//   - 502 with the notification when the provider rejected the message
//   - 202 when another dispatcher currently holds the notification
//   - 409 when a matching notification already reached a terminal state
func (h *Handler) Create(c *ginext.Context) {
	var req dto.CreateRequest

	if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to decode request body")
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("invalid request body"))
		return
	}

	if err := h.validator.Struct(req); err != nil {
		zlog.Logger.Warn().Err(err).Msg("failed to validate request body")
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("validation error: %s", err.Error()))
		return
	}

	n, result, err := h.service.EnqueueAndDispatch(c.Request.Context(), req.Draft())
	switch {
	case err == nil:
		respond.JSON(c.Writer, http.StatusCreated, dto.CreateResponse{Notification: n, Result: result})
	case errors.Is(err, notifsvc.ErrInvalidDraft):
		zlog.Logger.Warn().Err(err).Msg("invalid notification")
		respond.Fail(c.Writer, http.StatusBadRequest, err)
	case errors.Is(err, notifsvc.ErrDeliveryFailed):
		zlog.Logger.Warn().Err(err).Str("id", n.ID.String()).Msg("notification delivery failed")
		respond.JSON(c.Writer, http.StatusBadGateway, dto.DispatchErrorResponse{Error: err.Error(), Notification: n})
	case errors.Is(err, notifsvc.ErrDispatchInProgress):
		respond.JSON(c.Writer, http.StatusAccepted, dto.DispatchErrorResponse{Notification: n})
	case errors.Is(err, notifsvc.ErrAlreadyDelivered), errors.Is(err, notifsvc.ErrPermanentlyFailed):
		respond.JSON(c.Writer, http.StatusConflict, dto.DispatchErrorResponse{Error: err.Error(), Notification: n})
	default:
		zlog.Logger.Error().Err(err).Str("type", req.Type).Msg("failed to send notification")
		respond.Fail(c.Writer, http.StatusInternalServerError, fmt.Errorf("internal server error"))
	}
}

// GetByID returns a single notification.
func (h *Handler) GetByID(c *ginext.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	n, err := h.service.GetNotification(c.Request.Context(), id)
	if err != nil {
		failLookup(c, id, err)
		return
	}

	respond.OK(c.Writer, n)
}

// GetStatus returns the delivery status of a notification.
func (h *Handler) GetStatus(c *ginext.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	status, err := h.service.GetNotificationStatus(c.Request.Context(), id)
	if err != nil {
		failLookup(c, id, err)
		return
	}

	respond.OK(c.Writer, dto.StatusResponse{ID: id.String(), Status: status})
}

// GetAll returns every notification, newest first.
func (h *Handler) GetAll(c *ginext.Context) {
	notifications, err := h.service.GetAllNotifications(c.Request.Context())
	if err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to get notifications")
		respond.Fail(c.Writer, http.StatusInternalServerError, fmt.Errorf("internal server error"))
		return
	}

	if notifications == nil {
		notifications = []model.Notification{}
	}

	respond.OK(c.Writer, notifications)
}

func parseID(c *ginext.Context) (uuid.UUID, bool) {
	idStr := c.Param("id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		zlog.Logger.Error().Err(err).Str("idStr", idStr).Msg("failed to parse id")
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("invalid id"))
		return uuid.Nil, false
	}

	if id == uuid.Nil {
		zlog.Logger.Warn().Msg("missing id")
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("missing id"))
		return uuid.Nil, false
	}

	return id, true
}

func failLookup(c *ginext.Context, id uuid.UUID, err error) {
	if errors.Is(err, notifrepo.ErrNotificationNotFound) {
		zlog.Logger.Warn().Str("id", id.String()).Err(err).Msg("notification not found")
		respond.Fail(c.Writer, http.StatusNotFound, fmt.Errorf("notification not found"))
		return
	}

	zlog.Logger.Error().Err(err).Str("id", id.String()).Msg("failed to get notification")
	respond.Fail(c.Writer, http.StatusInternalServerError, fmt.Errorf("internal server error"))
}
