package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/ahmednour/giving/internal/dto"
	"github.com/ahmednour/giving/internal/model"
	"github.com/ahmednour/giving/internal/repository"
)

// ── 通知模块业务错误 ──

var (
	// ErrNotificationNotFound 目标不存在或已读（零行命中，不作区分）
	ErrNotificationNotFound = errors.New("通知不存在或已读")
)

// NotificationService 通知业务接口
type NotificationService interface {
	ListMine(ctx context.Context, userID string) ([]dto.NotificationResponse, error)
	// MarkRead 置已读；目标不存在或已读返回 ErrNotificationNotFound
	MarkRead(ctx context.Context, id string) error
	// MarkAllRead 批量置已读，返回更新条数
	MarkAllRead(ctx context.Context, userID string) (int64, error)
}

type notificationService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewNotificationService 创建 NotificationService 实例
func NewNotificationService(repo *repository.Repository, logger *zap.Logger) NotificationService {
	return &notificationService{repo: repo, logger: logger}
}

// ────────────────────── ListMine ──────────────────────

func (s *notificationService) ListMine(ctx context.Context, userID string) ([]dto.NotificationResponse, error) {
	notifications, err := s.repo.Notification.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("列出通知失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.NotificationResponse, 0, len(notifications))
	for i := range notifications {
		result = append(result, *toNotificationResponse(&notifications[i]))
	}

	return result, nil
}

// ────────────────────── MarkRead ──────────────────────

func (s *notificationService) MarkRead(ctx context.Context, id string) error {
	rows, err := s.repo.Notification.MarkRead(ctx, id)
	if err != nil {
		s.logger.Error("通知置已读失败", zap.String("id", id), zap.Error(err))
		return err
	}
	if rows == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

// ────────────────────── MarkAllRead ──────────────────────

func (s *notificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	rows, err := s.repo.Notification.MarkAllRead(ctx, userID)
	if err != nil {
		s.logger.Error("通知批量置已读失败", zap.String("user_id", userID), zap.Error(err))
		return 0, err
	}
	return rows, nil
}

// ── 内部辅助方法 ──

func toNotificationResponse(notification *model.Notification) *dto.NotificationResponse {
	return &dto.NotificationResponse{
		ID:        notification.NotificationID,
		Message:   notification.Message,
		IsRead:    notification.IsRead,
		CreatedAt: notification.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
