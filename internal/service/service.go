package service

import (
	"go.uber.org/zap"

	"github.com/ahmednour/giving/config"
	"github.com/ahmednour/giving/internal/repository"
	"github.com/ahmednour/giving/pkg/jwt"
	"github.com/ahmednour/giving/pkg/redis"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth         AuthService
	User         UserService
	Donation     DonationService
	Request      RequestService
	Notification NotificationService
	Stats        StatsService
	Export       ExportService
}

// NewService 创建 Service 聚合
// rdb 允许为 nil（Redis 降级运行，黑名单与限流不可用）
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	logger *zap.Logger,
) *Service {
	return &Service{
		Auth:         NewAuthService(cfg, repo, jwtMgr, rdb, logger),
		User:         NewUserService(repo, logger),
		Donation:     NewDonationService(repo, logger),
		Request:      NewRequestService(repo, logger),
		Notification: NewNotificationService(repo, logger),
		Stats:        NewStatsService(repo, logger),
		Export:       NewExportService(repo, logger),
	}
}
