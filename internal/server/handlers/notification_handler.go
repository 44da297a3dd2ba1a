package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/gasdiary/internal/domain/models"
	"github.com/mamadbah2/gasdiary/internal/service/diary"
	"github.com/mamadbah2/gasdiary/internal/service/notifications"
)

// UserIDHeader carries the authenticated user id set by the upstream gateway.
const UserIDHeader = "X-User-ID"

// NotificationService is the notification engine surface exposed over HTTP.
type NotificationService interface {
	List(ctx context.Context, viewer notifications.Viewer) ([]models.Notification, int, error)
	MarkAsRead(ctx context.Context, viewer notifications.Viewer, id string) error
	MarkAllAsRead(ctx context.Context, viewer notifications.Viewer) error
	Clear(ctx context.Context, viewer notifications.Viewer) error
	Open(ctx context.Context, viewer notifications.Viewer, id string) (models.NavigationIntent, error)
}

// RoleFinder looks up the stored role of a user. A nil row means none.
type RoleFinder interface {
	FindUserRole(ctx context.Context, userID string) (*models.UserRole, error)
}

// NotificationHandler serves the per-viewer notification feed.
type NotificationHandler struct {
	svc    NotificationService
	roles  RoleFinder
	logger *zap.Logger
}

// NewNotificationHandler constructs the HTTP handler adapter.
func NewNotificationHandler(svc NotificationService, roles RoleFinder, logger *zap.Logger) *NotificationHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationHandler{svc: svc, roles: roles, logger: logger}
}

// List returns the viewer's notifications and unread count.
func (h *NotificationHandler) List(c *gin.Context) {
	viewer, ok := h.viewer(c)
	if !ok {
		return
	}
	list, unread, err := h.svc.List(c.Request.Context(), viewer)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": list, "unread": unread})
}

// MarkRead marks one notification read.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	viewer, ok := h.viewer(c)
	if !ok {
		return
	}
	if err := h.svc.MarkAsRead(c.Request.Context(), viewer, c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// MarkAllRead marks every notification visible to the viewer read.
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	viewer, ok := h.viewer(c)
	if !ok {
		return
	}
	if err := h.svc.MarkAllAsRead(c.Request.Context(), viewer); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Clear hides the current notifications from the viewer.
func (h *NotificationHandler) Clear(c *gin.Context) {
	viewer, ok := h.viewer(c)
	if !ok {
		return
	}
	if err := h.svc.Clear(c.Request.Context(), viewer); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Open marks a notification read and returns where it leads.
func (h *NotificationHandler) Open(c *gin.Context) {
	viewer, ok := h.viewer(c)
	if !ok {
		return
	}
	intent, err := h.svc.Open(c.Request.Context(), viewer, c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, intent)
}

func (h *NotificationHandler) viewer(c *gin.Context) (notifications.Viewer, bool) {
	userID := c.GetHeader(UserIDHeader)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing " + UserIDHeader})
		return notifications.Viewer{}, false
	}

	row, err := h.roles.FindUserRole(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("role lookup failed", zap.String("user_id", userID), zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "role lookup failed"})
		return notifications.Viewer{}, false
	}

	var rows []models.UserRole
	if row != nil {
		rows = append(rows, *row)
	}
	return notifications.Viewer{UserID: userID, Role: diary.NewRoleMap(rows).Resolve(&userID)}, true
}

func (h *NotificationHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, notifications.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, notifications.ErrNoAction):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, notifications.ErrInvalidViewer):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	default:
		h.logger.Error("notification request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
