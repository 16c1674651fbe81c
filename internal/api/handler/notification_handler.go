package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/ahmednour/giving/internal/dto"
	"github.com/ahmednour/giving/internal/service"
	"github.com/ahmednour/giving/pkg/response"
)

// NotificationHandler 通知模块 HTTP 处理器
type NotificationHandler struct {
	notificationSvc service.NotificationService
}

// NewNotificationHandler 创建 NotificationHandler
func NewNotificationHandler(notificationSvc service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationSvc: notificationSvc}
}

// ListMyNotifications 我的通知（新的排前面）
// GET /api/v1/notifications
func (h *NotificationHandler) ListMyNotifications(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	notifications, err := h.notificationSvc.ListMine(c.Request.Context(), userID)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": notifications})
}

// MarkNotificationRead 单条通知置已读
// PUT /api/v1/notifications/:id/read
func (h *NotificationHandler) MarkNotificationRead(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "通知ID不能为空")
		return
	}

	if err := h.notificationSvc.MarkRead(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrNotificationNotFound) {
			response.NotFound(c, 14001, "通知不存在或已读")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, nil)
}

// MarkAllNotificationsRead 全部通知置已读
// PUT /api/v1/notifications/read-all
func (h *NotificationHandler) MarkAllNotificationsRead(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	updated, err := h.notificationSvc.MarkAllRead(c.Request.Context(), userID)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, dto.MarkAllReadResponse{Updated: updated})
}
