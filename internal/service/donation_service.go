package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ahmednour/giving/internal/dto"
	"github.com/ahmednour/giving/internal/model"
	"github.com/ahmednour/giving/internal/repository"
)

// ── 捐赠模块业务错误 ──

var (
	ErrDonationNotFound = errors.New("捐赠不存在")
	// ErrDonationForbidden 归属过滤后零行命中：不存在或不属于当前捐赠者
	// 二者对外不作区分，避免泄露他人资源的存在性
	ErrDonationForbidden = errors.New("捐赠不存在或无权操作")
	ErrDonationNoFields  = errors.New("没有需要更新的字段")
)

// DonationService 捐赠业务接口
type DonationService interface {
	Create(ctx context.Context, req *dto.CreateDonationRequest, donorID string) (*dto.DonationResponse, error)
	GetByID(ctx context.Context, id string) (*dto.DonationResponse, error)
	List(ctx context.Context, req *dto.DonationListRequest) ([]dto.DonationResponse, int64, error)
	ListByDonor(ctx context.Context, donorID string, req *dto.DonationListRequest) ([]dto.DonationResponse, int64, error)
	// Update 局部更新；donorID 为 nil 表示管理员覆盖（不做归属过滤）
	Update(ctx context.Context, id string, req *dto.UpdateDonationRequest, donorID *string) (*dto.DonationResponse, error)
	// Delete 归属语义与 Update 一致；子申请由外键级联删除
	Delete(ctx context.Context, id string, donorID *string) error
	// WithPendingRequests 返回仍有待处理申请的捐赠及其数量
	WithPendingRequests(ctx context.Context, donorID *string) ([]dto.DonationWithPendingResponse, error)
	Stats(ctx context.Context) (*dto.DonationStatsResponse, error)
}

type donationService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewDonationService 创建 DonationService 实例
func NewDonationService(repo *repository.Repository, logger *zap.Logger) DonationService {
	return &donationService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *donationService) Create(ctx context.Context, req *dto.CreateDonationRequest, donorID string) (*dto.DonationResponse, error) {
	category := req.Category
	if category == "" {
		category = "other"
	}

	donation := &model.Donation{
		Title:       req.Title,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		Category:    category,
		DonorID:     donorID,
		// 新捐赠始终从 available 起步，不接受外部传入状态
		Status: model.DonationStatusAvailable,
	}

	if err := s.repo.Donation.Create(ctx, donation); err != nil {
		s.logger.Error("创建捐赠失败", zap.Error(err))
		return nil, err
	}

	created, err := s.repo.Donation.GetByID(ctx, donation.DonationID)
	if err != nil {
		s.logger.Error("查询捐赠失败", zap.String("id", donation.DonationID), zap.Error(err))
		return nil, err
	}

	return toDonationResponse(created), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *donationService) GetByID(ctx context.Context, id string) (*dto.DonationResponse, error) {
	donation, err := s.repo.Donation.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDonationNotFound
		}
		s.logger.Error("查询捐赠失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return toDonationResponse(donation), nil
}

// ────────────────────── List ──────────────────────

func (s *donationService) List(ctx context.Context, req *dto.DonationListRequest) ([]dto.DonationResponse, int64, error) {
	return s.list(ctx, req, "")
}

// ────────────────────── ListByDonor ──────────────────────

func (s *donationService) ListByDonor(ctx context.Context, donorID string, req *dto.DonationListRequest) ([]dto.DonationResponse, int64, error) {
	return s.list(ctx, req, donorID)
}

func (s *donationService) list(ctx context.Context, req *dto.DonationListRequest, donorID string) ([]dto.DonationResponse, int64, error) {
	_, pageSize, offset := req.Normalize()

	filters := &repository.DonationListFilters{
		Status:   req.Status,
		Category: req.Category,
		DonorID:  donorID,
		Search:   req.Search,
	}

	donations, total, err := s.repo.Donation.List(ctx, filters, offset, pageSize)
	if err != nil {
		s.logger.Error("列出捐赠失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.DonationResponse, 0, len(donations))
	for i := range donations {
		result = append(result, *toDonationResponse(&donations[i]))
	}

	return result, total, nil
}

// ────────────────────── Update ──────────────────────

func (s *donationService) Update(ctx context.Context, id string, req *dto.UpdateDonationRequest, donorID *string) (*dto.DonationResponse, error) {
	fields := map[string]interface{}{}
	if req.Title != nil {
		fields["title"] = *req.Title
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.ImageURL != nil {
		fields["image_url"] = *req.ImageURL
	}
	if req.Category != nil {
		fields["category"] = *req.Category
	}
	if req.Status != nil {
		fields["status"] = *req.Status
	}
	if len(fields) == 0 {
		return nil, ErrDonationNoFields
	}

	rows, err := s.repo.Donation.UpdateFields(ctx, id, fields, donorID)
	if err != nil {
		s.logger.Error("更新捐赠失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	if rows == 0 {
		return nil, ErrDonationForbidden
	}

	updated, err := s.repo.Donation.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("查询捐赠失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return toDonationResponse(updated), nil
}

// ────────────────────── Delete ──────────────────────

func (s *donationService) Delete(ctx context.Context, id string, donorID *string) error {
	rows, err := s.repo.Donation.Delete(ctx, id, donorID)
	if err != nil {
		s.logger.Error("删除捐赠失败", zap.String("id", id), zap.Error(err))
		return err
	}
	if rows == 0 {
		return ErrDonationForbidden
	}

	s.logger.Info("捐赠已删除", zap.String("id", id))
	return nil
}

// ────────────────────── WithPendingRequests ──────────────────────

func (s *donationService) WithPendingRequests(ctx context.Context, donorID *string) ([]dto.DonationWithPendingResponse, error) {
	rows, err := s.repo.Donation.ListWithPendingRequests(ctx, donorID)
	if err != nil {
		s.logger.Error("查询待处理捐赠失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.DonationWithPendingResponse, 0, len(rows))
	for i := range rows {
		result = append(result, dto.DonationWithPendingResponse{
			DonationResponse:     *toDonationResponse(&rows[i].Donation),
			PendingRequestsCount: rows[i].PendingRequestsCount,
		})
	}

	return result, nil
}

// ────────────────────── Stats ──────────────────────

func (s *donationService) Stats(ctx context.Context) (*dto.DonationStatsResponse, error) {
	stats, err := s.repo.Donation.Stats(ctx)
	if err != nil {
		s.logger.Error("统计捐赠失败", zap.Error(err))
		return nil, err
	}

	categories, err := s.repo.Donation.CountByCategory(ctx)
	if err != nil {
		s.logger.Error("统计捐赠分类失败", zap.Error(err))
		return nil, err
	}

	resp := &dto.DonationStatsResponse{
		Overview: dto.DonationOverview{
			TotalDonations:     stats.TotalDonations,
			AvailableDonations: stats.AvailableDonations,
			RequestedDonations: stats.RequestedDonations,
			CompletedDonations: stats.CompletedDonations,
			TotalDonors:        stats.TotalDonors,
		},
		Categories: make([]dto.CategoryCountItem, 0, len(categories)),
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

func toDonationResponse(donation *model.Donation) *dto.DonationResponse {
	resp := &dto.DonationResponse{
		ID:          donation.DonationID,
		Title:       donation.Title,
		Description: donation.Description,
		ImageURL:    donation.ImageURL,
		Category:    donation.Category,
		Status:      donation.Status,
		CreatedAt:   donation.CreatedAt.Format("2006-01-02T15:04:05Z"),
		UpdatedAt:   donation.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}
	if donation.Donor != nil {
		resp.Donor = &dto.UserBrief{
			ID:    donation.Donor.UserID,
			Name:  donation.Donor.Name,
			Email: donation.Donor.Email,
		}
	}
	return resp
}
