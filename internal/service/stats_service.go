package service

import (
	"context"
	"math"

	"go.uber.org/zap"

	"github.com/ahmednour/giving/internal/dto"
	"github.com/ahmednour/giving/internal/model"
	"github.com/ahmednour/giving/internal/repository"
)

// StatsService 平台统计业务接口（管理员）
type StatsService interface {
	Platform(ctx context.Context) (*dto.PlatformStatsResponse, error)
}

type statsService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewStatsService 创建 StatsService 实例
func NewStatsService(repo *repository.Repository, logger *zap.Logger) StatsService {
	return &statsService{repo: repo, logger: logger}
}

// ────────────────────── Platform ──────────────────────

func (s *statsService) Platform(ctx context.Context) (*dto.PlatformStatsResponse, error) {
	roleCounts, err := s.repo.User.CountByRole(ctx)
	if err != nil {
		s.logger.Error("统计用户失败", zap.Error(err))
		return nil, err
	}

	donationStats, err := s.repo.Donation.Stats(ctx)
	if err != nil {
		s.logger.Error("统计捐赠失败", zap.Error(err))
		return nil, err
	}

	requestStats, err := s.repo.Request.Stats(ctx)
	if err != nil {
		s.logger.Error("统计申请失败", zap.Error(err))
		return nil, err
	}

	categories, err := s.repo.Donation.CountByCategory(ctx)
	if err != nil {
		s.logger.Error("统计捐赠分类失败", zap.Error(err))
		return nil, err
	}

	users := dto.UserRoleStats{
		Donors:    roleCounts[model.RoleDonor],
		Receivers: roleCounts[model.RoleReceiver],
		Admins:    roleCounts[model.RoleAdmin],
	}
	for _, n := range roleCounts {
		users.Total += n
	}

	resp := &dto.PlatformStatsResponse{
		Users: users,
		Donations: dto.DonationOverview{
			TotalDonations:     donationStats.TotalDonations,
			AvailableDonations: donationStats.AvailableDonations,
			RequestedDonations: donationStats.RequestedDonations,
			CompletedDonations: donationStats.CompletedDonations,
			TotalDonors:        donationStats.TotalDonors,
		},
		Requests: dto.RequestStatsResponse{
			TotalRequests:     requestStats.TotalRequests,
			PendingRequests:   requestStats.PendingRequests,
			ApprovedRequests:  requestStats.ApprovedRequests,
			RejectedRequests:  requestStats.RejectedRequests,
			CompletedRequests: requestStats.CompletedRequests,
			TotalReceivers:    requestStats.TotalReceivers,
		},
		Categories: make([]dto.CategoryCountItem, 0, len(categories)),
		Metrics: dto.PlatformMetrics{
			SuccessRate:            ratePercent(requestStats.CompletedRequests, requestStats.TotalRequests),
			AvgDonationsPerDonor:   average(donationStats.TotalDonations, donationStats.TotalDonors),
			AvgRequestsPerReceiver: average(requestStats.TotalRequests, requestStats.TotalReceivers),
		},
	}
	for _, c := range categories {
		resp.Categories = append(resp.Categories, dto.CategoryCountItem{
			Category: c.Category,
			Count:    c.Count,
		})
	}

	return resp, nil
}

// ── 内部辅助方法 ──

// ratePercent 百分比，两位小数；分母为零时为 0
func ratePercent(part, total int64) float64 {
	if total == 0 {
		return 0
	}
	return round2(float64(part) / float64(total) * 100)
}

// average 均值，两位小数；分母为零时为 0
func average(sum, count int64) float64 {
	if count == 0 {
		return 0
	}
	return round2(float64(sum) / float64(count))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
