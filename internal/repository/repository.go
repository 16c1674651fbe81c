package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	db *gorm.DB

	User         UserRepository
	Donation     DonationRepository
	Request      RequestRepository
	Notification NotificationRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:           db,
		User:         NewUserRepo(db),
		Donation:     NewDonationRepo(db),
		Request:      NewRequestRepo(db),
		Notification: NewNotificationRepo(db),
	}
}

// BeginTx 开启事务
// 单测使用 mock 仓储时没有真实连接，返回 nil 事务，调用方按 nil 透传处理
func (r *Repository) BeginTx(ctx context.Context) (*gorm.DB, error) {
	if r.db == nil {
		return nil, nil
	}
	tx := r.db.WithContext(ctx).Begin()
	return tx, tx.Error
}

// WithTx 返回绑定到指定事务连接的 Repository 聚合
// tx 为 nil 时原样返回（mock 场景）
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return NewRepository(tx)
}
