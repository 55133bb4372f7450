package api

import (
	"errors"
	"net/http"

	"github.com/calebc9298-pixel/fencepost/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationHandler holds the notification service dependency.
type NotificationHandler struct {
	notificationService service.NotificationService
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(notificationService service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// List returns the caller's notification inbox, newest first.
func (h *NotificationHandler) List(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify user")
		return
	}

	notifications, err := h.notificationService.List(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to load notifications")
		return
	}

	c.JSON(http.StatusOK, notifications)
}

// UnreadCount returns how many unread notifications the caller has.
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify user")
		return
	}

	count, err := h.notificationService.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to count notifications")
		return
	}

	c.JSON(http.StatusOK, gin.H{"unread": count})
}

// MarkRead marks a single notification as read.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify user")
		return
	}
	notificationID, err := primitive.ObjectIDFromHex(c.Param("notificationId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid notification ID format")
		return
	}

	if err := h.notificationService.MarkRead(c.Request.Context(), userID, notificationID); err != nil {
		if errors.Is(err, service.ErrNotificationNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to mark notification read")
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// MarkAllRead marks the caller's whole inbox as read.
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify user")
		return
	}

	if err := h.notificationService.MarkAllRead(c.Request.Context(), userID); err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to mark notifications read")
		return
	}

	c.Status(http.StatusNoContent)
}
