package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/ahmednour/giving/internal/model"
)

// RequestListFilters 申请列表过滤条件
type RequestListFilters struct {
	Status     string
	ReceiverID string
	DonorID    string // 按捐赠归属的 donor 过滤
}

// RequestStats 申请统计
type RequestStats struct {
	TotalRequests     int64 `json:"total_requests"`
	PendingRequests   int64 `json:"pending_requests"`
	ApprovedRequests  int64 `json:"approved_requests"`
	RejectedRequests  int64 `json:"rejected_requests"`
	CompletedRequests int64 `json:"completed_requests"`
	TotalReceivers    int64 `json:"total_receivers"`
}

// RequestRepository 申请数据访问接口
type RequestRepository interface {
	Create(ctx context.Context, request *model.Request) error
	// GetByID 返回带捐赠（含捐赠者）与申请人展示信息的申请
	GetByID(ctx context.Context, id string) (*model.Request, error)
	List(ctx context.Context, filters *RequestListFilters, offset, limit int) ([]model.Request, int64, error)
	// ListPending 审核队列：最早创建的排前面
	ListPending(ctx context.Context, offset, limit int) ([]model.Request, int64, error)
	UpdateStatus(ctx context.Context, id, status, adminNotes string) (int64, error)
	// Delete 删除；receiverID 非 nil 时附加归属过滤（零行命中=不存在或无权限）
	Delete(ctx context.Context, id string, receiverID *string) (int64, error)
	// CountActive 统计 (donation, receiver) 的活跃申请数（pending | approved）
	CountActive(ctx context.Context, donationID, receiverID string) (int64, error)
	// CountPending 统计某捐赠剩余 pending 申请数
	CountPending(ctx context.Context, donationID string) (int64, error)
	CountByReceiver(ctx context.Context, receiverID string) (int64, error)
	Stats(ctx context.Context) (*RequestStats, error)
}

// requestRepo RequestRepository 的 GORM 实现
type requestRepo struct {
	db *gorm.DB
}

// NewRequestRepo 创建 RequestRepository 实例
func NewRequestRepo(db *gorm.DB) RequestRepository {
	return &requestRepo{db: db}
}

func (r *requestRepo) Create(ctx context.Context, request *model.Request) error {
	return r.db.WithContext(ctx).Create(request).Error
}

func (r *requestRepo) GetByID(ctx context.Context, id string) (*model.Request, error) {
	var request model.Request
	err := r.db.WithContext(ctx).
		Preload("Donation").
		Preload("Donation.Donor").
		Preload("Receiver").
		Where("request_id = ?", id).
		First(&request).Error
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *requestRepo) List(ctx context.Context, filters *RequestListFilters, offset, limit int) ([]model.Request, int64, error) {
	var requests []model.Request
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Request{})

	if filters != nil {
		if filters.Status != "" {
			db = db.Where("requests.status = ?", filters.Status)
		}
		if filters.ReceiverID != "" {
			db = db.Where("requests.receiver_id = ?", filters.ReceiverID)
		}
		if filters.DonorID != "" {
			db = db.Joins("JOIN donations ON donations.donation_id = requests.donation_id").
				Where("donations.donor_id = ?", filters.DonorID)
		}
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Preload("Donation").
		Preload("Donation.Donor").
		Preload("Receiver").
		Offset(offset).Limit(limit).
		Order("requests.created_at DESC").
		Find(&requests).Error; err != nil {
		return nil, 0, err
	}

	return requests, total, nil
}

func (r *requestRepo) ListPending(ctx context.Context, offset, limit int) ([]model.Request, int64, error) {
	var requests []model.Request
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Request{}).
		Where("status = ?", model.RequestStatusPending)

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Preload("Donation").
		Preload("Donation.Donor").
		Preload("Receiver").
		Offset(offset).Limit(limit).
		Order("created_at ASC").
		Find(&requests).Error; err != nil {
		return nil, 0, err
	}

	return requests, total, nil
}

func (r *requestRepo) UpdateStatus(ctx context.Context, id, status, adminNotes string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.Request{}).
		Where("request_id = ?", id).
		Updates(map[string]interface{}{
			"status":      status,
			"admin_notes": adminNotes,
			"updated_at":  time.Now(),
		})
	return res.RowsAffected, res.Error
}

func (r *requestRepo) Delete(ctx context.Context, id string, receiverID *string) (int64, error) {
	db := r.db.WithContext(ctx).
		Where("request_id = ?", id)
	if receiverID != nil {
		db = db.Where("receiver_id = ?", *receiverID)
	}

	res := db.Delete(&model.Request{})
	return res.RowsAffected, res.Error
}

func (r *requestRepo) CountActive(ctx context.Context, donationID, receiverID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Request{}).
		Where("donation_id = ? AND receiver_id = ? AND status IN ?",
			donationID, receiverID,
			[]string{model.RequestStatusPending, model.RequestStatusApproved}).
		Count(&count).Error
	return count, err
}

func (r *requestRepo) CountPending(ctx context.Context, donationID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Request{}).
		Where("donation_id = ? AND status = ?", donationID, model.RequestStatusPending).
		Count(&count).Error
	return count, err
}

func (r *requestRepo) CountByReceiver(ctx context.Context, receiverID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Request{}).
		Where("receiver_id = ?", receiverID).
		Count(&count).Error
	return count, err
}

func (r *requestRepo) Stats(ctx context.Context) (*RequestStats, error) {
	var stats RequestStats

	err := r.db.WithContext(ctx).Model(&model.Request{}).
		Select(`COUNT(*) AS total_requests,
			COUNT(*) FILTER (WHERE status = 'pending') AS pending_requests,
			COUNT(*) FILTER (WHERE status = 'approved') AS approved_requests,
			COUNT(*) FILTER (WHERE status = 'rejected') AS rejected_requests,
			COUNT(*) FILTER (WHERE status = 'completed') AS completed_requests,
			COUNT(DISTINCT receiver_id) AS total_receivers`).
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
