package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/aurevo/aurevo-server/internal/store"
	"github.com/aurevo/aurevo-server/internal/types"
)

type NotificationHandler struct {
	registry *store.Registry
}

func NewNotificationHandler(registry *store.Registry) *NotificationHandler {
	return &NotificationHandler{registry: registry}
}

func (nh *NotificationHandler) List(c *gin.Context) {
	set, ok := userStores(c, nh.registry)
	if !ok {
		return
	}
	filter := store.NotificationFilter{
		Unread: c.Query("unread") == "true",
		Type:   types.NotificationType(c.Query("type")),
	}
	RespondOK(c, gin.H{
		"notifications": set.Notifications.List(filter),
		"unread_count":  set.Notifications.UnreadCount(),
	})
}

func (nh *NotificationHandler) MarkRead(c *gin.Context) {
	set, ok := userStores(c, nh.registry)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid notification id"})
		return
	}
	if !set.Notifications.MarkRead(id) {
		c.JSON(http.StatusNotFound, gin.H{"error": "notification not found"})
		return
	}
	RespondOK(c, gin.H{"unread_count": set.Notifications.UnreadCount()})
}

func (nh *NotificationHandler) MarkAllRead(c *gin.Context) {
	set, ok := userStores(c, nh.registry)
	if !ok {
		return
	}
	set.Notifications.MarkAllRead()
	RespondOK(c, gin.H{"unread_count": 0})
}

func (nh *NotificationHandler) Dismiss(c *gin.Context) {
	set, ok := userStores(c, nh.registry)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid notification id"})
		return
	}
	if !set.Notifications.Dismiss(id) {
		c.JSON(http.StatusNotFound, gin.H{"error": "notification not found"})
		return
	}
	RespondOK(c, gin.H{"unread_count": set.Notifications.UnreadCount()})
}

func (nh *NotificationHandler) Clear(c *gin.Context) {
	set, ok := userStores(c, nh.registry)
	if !ok {
		return
	}
	set.Notifications.Clear()
	RespondOK(c, gin.H{"message": "cleared"})
}
