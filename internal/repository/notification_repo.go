package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/ahmednour/giving/internal/model"
)

// NotificationRepository 通知数据访问接口
type NotificationRepository interface {
	Create(ctx context.Context, notification *model.Notification) error
	ListByUser(ctx context.Context, userID string) ([]model.Notification, error)
	// MarkRead 置已读；目标不存在或已读时返回零行
	MarkRead(ctx context.Context, id string) (int64, error)
	// MarkAllRead 批量置已读，返回更新行数
	MarkAllRead(ctx context.Context, userID string) (int64, error)
}

// notificationRepo NotificationRepository 的 GORM 实现
type notificationRepo struct {
	db *gorm.DB
}

// NewNotificationRepo 创建 NotificationRepository 实例
func NewNotificationRepo(db *gorm.DB) NotificationRepository {
	return &notificationRepo{db: db}
}

func (r *notificationRepo) Create(ctx context.Context, notification *model.Notification) error {
	return r.db.WithContext(ctx).Create(notification).Error
}

func (r *notificationRepo) ListByUser(ctx context.Context, userID string) ([]model.Notification, error) {
	var notifications []model.Notification
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&notifications).Error
	if err != nil {
		return nil, err
	}
	return notifications, nil
}

func (r *notificationRepo) MarkRead(ctx context.Context, id string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.Notification{}).
		Where("notification_id = ? AND is_read = FALSE", id).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}

func (r *notificationRepo) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.Notification{}).
		Where("user_id = ? AND is_read = FALSE", userID).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}
