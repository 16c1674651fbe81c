package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/ahmednour/giving/internal/model"
)

// DonationListFilters 捐赠列表过滤条件
type DonationListFilters struct {
	Status   string
	Category string
	DonorID  string
	Search   string // 标题或描述子串匹配
}

// DonationStats 捐赠统计
type DonationStats struct {
	TotalDonations     int64 `json:"total_donations"`
	AvailableDonations int64 `json:"available_donations"`
	RequestedDonations int64 `json:"requested_donations"`
	CompletedDonations int64 `json:"completed_donations"`
	TotalDonors        int64 `json:"total_donors"`
}

// CategoryCount 按分类统计
type CategoryCount struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

// DonationWithPending 带待处理申请数的捐赠
type DonationWithPending struct {
	model.Donation
	PendingRequestsCount int64 `json:"pending_requests_count"`
}

// DonationRepository 捐赠数据访问接口
type DonationRepository interface {
	Create(ctx context.Context, donation *model.Donation) error
	GetByID(ctx context.Context, id string) (*model.Donation, error)
	List(ctx context.Context, filters *DonationListFilters, offset, limit int) ([]model.Donation, int64, error)
	// UpdateFields 局部更新；donorID 非 nil 时附加归属过滤（零行命中=不存在或无权限）
	UpdateFields(ctx context.Context, id string, fields map[string]interface{}, donorID *string) (int64, error)
	// Delete 删除；donorID 归属语义与 UpdateFields 一致
	Delete(ctx context.Context, id string, donorID *string) (int64, error)
	// UpdateStatus 状态直写，仅供申请生命周期重算投影使用
	UpdateStatus(ctx context.Context, id string, status string) (int64, error)
	// ClaimAvailable 原子条件更新 available → requested，作为申请创建的并发闸门
	ClaimAvailable(ctx context.Context, id string) (bool, error)
	ListWithPendingRequests(ctx context.Context, donorID *string) ([]DonationWithPending, error)
	Stats(ctx context.Context) (*DonationStats, error)
	CountByCategory(ctx context.Context) ([]CategoryCount, error)
	CountByDonor(ctx context.Context, donorID string) (int64, error)
}

// donationRepo DonationRepository 的 GORM 实现
type donationRepo struct {
	db *gorm.DB
}

// NewDonationRepo 创建 DonationRepository 实例
func NewDonationRepo(db *gorm.DB) DonationRepository {
	return &donationRepo{db: db}
}

func (r *donationRepo) Create(ctx context.Context, donation *model.Donation) error {
	return r.db.WithContext(ctx).Create(donation).Error
}

func (r *donationRepo) GetByID(ctx context.Context, id string) (*model.Donation, error) {
	var donation model.Donation
	err := r.db.WithContext(ctx).
		Preload("Donor").
		Where("donation_id = ?", id).
		First(&donation).Error
	if err != nil {
		return nil, err
	}
	return &donation, nil
}

func (r *donationRepo) List(ctx context.Context, filters *DonationListFilters, offset, limit int) ([]model.Donation, int64, error) {
	var donations []model.Donation
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Donation{})

	if filters != nil {
		if filters.Status != "" {
			db = db.Where("status = ?", filters.Status)
		}
		if filters.Category != "" {
			db = db.Where("category = ?", filters.Category)
		}
		if filters.DonorID != "" {
			db = db.Where("donor_id = ?", filters.DonorID)
		}
		if filters.Search != "" {
			pattern := "%" + filters.Search + "%"
			db = db.Where("title ILIKE ? OR description ILIKE ?", pattern, pattern)
		}
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Preload("Donor").
		Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&donations).Error; err != nil {
		return nil, 0, err
	}

	return donations, total, nil
}

func (r *donationRepo) UpdateFields(ctx context.Context, id string, fields map[string]interface{}, donorID *string) (int64, error) {
	fields["updated_at"] = time.Now()

	db := r.db.WithContext(ctx).Model(&model.Donation{}).
		Where("donation_id = ?", id)
	if donorID != nil {
		db = db.Where("donor_id = ?", *donorID)
	}

	res := db.Updates(fields)
	return res.RowsAffected, res.Error
}

func (r *donationRepo) Delete(ctx context.Context, id string, donorID *string) (int64, error) {
	db := r.db.WithContext(ctx).
		Where("donation_id = ?", id)
	if donorID != nil {
		db = db.Where("donor_id = ?", *donorID)
	}

	res := db.Delete(&model.Donation{})
	return res.RowsAffected, res.Error
}

func (r *donationRepo) UpdateStatus(ctx context.Context, id string, status string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.Donation{}).
		Where("donation_id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		})
	return res.RowsAffected, res.Error
}

// ClaimAvailable 以条件更新代替「查询后再写」，避免并发创建申请时
// 在可用性检查与插入之间产生竞态
func (r *donationRepo) ClaimAvailable(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Donation{}).
		Where("donation_id = ? AND status = ?", id, model.DonationStatusAvailable).
		Updates(map[string]interface{}{
			"status":     model.DonationStatusRequested,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *donationRepo) ListWithPendingRequests(ctx context.Context, donorID *string) ([]DonationWithPending, error) {
	var rows []DonationWithPending

	db := r.db.WithContext(ctx).Model(&model.Donation{}).
		Select("donations.*, COUNT(requests.request_id) AS pending_requests_count").
		Joins("JOIN requests ON requests.donation_id = donations.donation_id").
		Where("requests.status = ?", model.RequestStatusPending)
	if donorID != nil {
		db = db.Where("donations.donor_id = ?", *donorID)
	}

	err := db.Group("donations.donation_id").
		Order("donations.created_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *donationRepo) Stats(ctx context.Context) (*DonationStats, error) {
	var stats DonationStats

	err := r.db.WithContext(ctx).Model(&model.Donation{}).
		Select(`COUNT(*) AS total_donations,
			COUNT(*) FILTER (WHERE status = 'available') AS available_donations,
			COUNT(*) FILTER (WHERE status = 'requested') AS requested_donations,
			COUNT(*) FILTER (WHERE status = 'donated') AS completed_donations,
			COUNT(DISTINCT donor_id) AS total_donors`).
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (r *donationRepo) CountByCategory(ctx context.Context) ([]CategoryCount, error) {
	var rows []CategoryCount

	err := r.db.WithContext(ctx).Model(&model.Donation{}).
		Select("category, COUNT(*) AS count").
		Group("category").
		Order("count DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *donationRepo) CountByDonor(ctx context.Context, donorID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Donation{}).
		Where("donor_id = ?", donorID).
		Count(&count).Error
	return count, err
}
