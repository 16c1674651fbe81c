package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ahmednour/giving/internal/dto"
	"github.com/ahmednour/giving/internal/model"
	"github.com/ahmednour/giving/internal/repository"
	pkgerrors "github.com/ahmednour/giving/pkg/errors"
)

// ── 申请模块业务错误 ──

var (
	ErrRequestNotFound      = errors.New("申请不存在")
	ErrRequestForbidden     = errors.New("申请不存在或无权操作")
	ErrRequestInvalidStatus = errors.New("无效的申请状态")
	ErrDonationUnavailable  = errors.New("该捐赠当前不可申请")
	ErrDuplicateRequest     = errors.New("已存在针对该捐赠的进行中申请")
	ErrTransitionDenied     = errors.New("无权变更该申请的状态")
)

// 通知文案模板；入库文案固定为英文，与前端展示解耦
const (
	notifyDonorNewRequest = "%s has requested your donation: \"%s\""
	notifyReceiverStatus  = "The status of your request for \"%s\" has been updated to %s."
)

// TransitionPolicy 判定操作者能否流转指定申请的状态
// 授权规则集中于此，路由层不再重复判断
type TransitionPolicy interface {
	CanTransition(actorID, actorRole string, request *model.Request) bool
}

// defaultTransitionPolicy 管理员或捐赠归属的捐赠者可流转
type defaultTransitionPolicy struct{}

func (defaultTransitionPolicy) CanTransition(actorID, actorRole string, request *model.Request) bool {
	if actorRole == model.RoleAdmin {
		return true
	}
	return request.Donation != nil && request.Donation.DonorID == actorID
}

// RequestService 申请业务接口
//
// 捐赠状态是申请聚合状态的投影（donated > requested > available），
// 任何申请状态变更都必须在同一事务内重算并回写捐赠状态
type RequestService interface {
	Create(ctx context.Context, req *dto.CreateRequestRequest, receiverID string) (*dto.RequestDetailResponse, error)
	GetByID(ctx context.Context, id string) (*dto.RequestDetailResponse, error)
	List(ctx context.Context, req *dto.RequestListRequest) ([]dto.RequestDetailResponse, int64, error)
	ListByReceiver(ctx context.Context, receiverID string, req *dto.RequestListRequest) ([]dto.RequestDetailResponse, int64, error)
	ListByDonor(ctx context.Context, donorID string, req *dto.RequestListRequest) ([]dto.RequestDetailResponse, int64, error)
	// ListPending 审核队列，最早创建的排前面
	ListPending(ctx context.Context, req *dto.RequestListRequest) ([]dto.RequestDetailResponse, int64, error)
	UpdateStatus(ctx context.Context, id string, req *dto.UpdateRequestStatusRequest, actorID, actorRole string) (*dto.RequestDetailResponse, error)
	// Delete 申请人删除自己的申请；receiverID 为 nil 表示管理员覆盖
	Delete(ctx context.Context, id string, receiverID *string) error
	Stats(ctx context.Context) (*dto.RequestStatsResponse, error)
}

type requestService struct {
	repo   *repository.Repository
	policy TransitionPolicy
	logger *zap.Logger
}

// NewRequestService 创建 RequestService 实例（默认授权策略）
func NewRequestService(repo *repository.Repository, logger *zap.Logger) RequestService {
	return NewRequestServiceWithPolicy(repo, defaultTransitionPolicy{}, logger)
}

// NewRequestServiceWithPolicy 创建 RequestService 实例并注入授权策略
func NewRequestServiceWithPolicy(repo *repository.Repository, policy TransitionPolicy, logger *zap.Logger) RequestService {
	return &requestService{repo: repo, policy: policy, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *requestService) Create(ctx context.Context, req *dto.CreateRequestRequest, receiverID string) (*dto.RequestDetailResponse, error) {
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.Error("开启事务失败", zap.Error(err))
		return nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			if tx != nil {
				tx.Rollback()
			}
			panic(r)
		}
	}()

	txRepo := s.repo.WithTx(tx)

	// 1. 占用捐赠：条件更新 available → requested，同时充当并发闸门
	claimed, err := txRepo.Donation.ClaimAvailable(ctx, req.DonationID)
	if err != nil {
		if tx != nil {
			tx.Rollback()
		}
		s.logger.Error("占用捐赠失败", zap.String("donation_id", req.DonationID), zap.Error(err))
		return nil, err
	}
	if !claimed {
		if tx != nil {
			tx.Rollback()
		}
		// 区分不存在与状态不可申请
		if _, gerr := s.repo.Donation.GetByID(ctx, req.DonationID); errors.Is(gerr, gorm.ErrRecordNotFound) {
			return nil, ErrDonationNotFound
		}
		return nil, ErrDonationUnavailable
	}

	// 2. 同一 (捐赠, 申请人) 不允许重复的进行中申请
	active, err := txRepo.Request.CountActive(ctx, req.DonationID, receiverID)
	if err != nil {
		if tx != nil {
			tx.Rollback()
		}
		s.logger.Error("查询进行中申请失败", zap.Error(err))
		return nil, err
	}
	if active > 0 {
		if tx != nil {
			tx.Rollback()
		}
		return nil, ErrDuplicateRequest
	}

	// 3. 写入申请
	request := &model.Request{
		DonationID: req.DonationID,
		ReceiverID: receiverID,
		Message:    req.Message,
		Status:     model.RequestStatusPending,
	}
	if err := txRepo.Request.Create(ctx, request); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		s.logger.Error("创建申请失败", zap.Error(err))
		return nil, err
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("提交事务失败", zap.Error(err))
			return nil, err
		}
	}

	created, err := s.repo.Request.GetByID(ctx, request.RequestID)
	if err != nil {
		s.logger.Error("查询申请失败", zap.String("id", request.RequestID), zap.Error(err))
		return nil, err
	}

	// 4. 通知捐赠者（尽力而为，不影响主流程）
	if created.Donation != nil {
		receiverName := receiverID
		if created.Receiver != nil {
			receiverName = created.Receiver.Name
		}
		s.notify(created.Donation.DonorID,
			fmt.Sprintf(notifyDonorNewRequest, receiverName, created.Donation.Title))
	}

	s.logger.Info("申请已创建",
		zap.String("id", request.RequestID),
		zap.String("donation_id", req.DonationID),
		zap.String("receiver_id", receiverID))

	return toRequestResponse(created), nil
}

// ────────────────────── UpdateStatus ──────────────────────

func (s *requestService) UpdateStatus(ctx context.Context, id string, req *dto.UpdateRequestStatusRequest, actorID, actorRole string) (*dto.RequestDetailResponse, error) {
	if !model.IsValidRequestStatus(req.Status) {
		return nil, ErrRequestInvalidStatus
	}

	request, err := s.repo.Request.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		s.logger.Error("查询申请失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if !s.policy.CanTransition(actorID, actorRole, request) {
		return nil, ErrTransitionDenied
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.Error("开启事务失败", zap.Error(err))
		return nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			if tx != nil {
				tx.Rollback()
			}
			panic(r)
		}
	}()

	txRepo := s.repo.WithTx(tx)

	rows, err := txRepo.Request.UpdateStatus(ctx, id, req.Status, req.AdminNotes)
	if err != nil {
		if tx != nil {
			tx.Rollback()
		}
		s.logger.Error("更新申请状态失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	if rows == 0 {
		// 前置查询到了记录但条件更新未命中：被并发操作抢先
		if tx != nil {
			tx.Rollback()
		}
		return nil, pkgerrors.ErrStateConflict
	}

	// 状态写入后重算捐赠状态投影
	if err := s.recomputeAfterTransition(ctx, txRepo, request.DonationID, req.Status); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		return nil, err
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("提交事务失败", zap.Error(err))
			return nil, err
		}
	}

	// 通知申请人（尽力而为）
	if request.Donation != nil {
		s.notify(request.ReceiverID,
			fmt.Sprintf(notifyReceiverStatus, request.Donation.Title, req.Status))
	}

	s.logger.Info("申请状态已变更",
		zap.String("id", id),
		zap.String("status", req.Status),
		zap.String("operator", actorID))

	updated, err := s.repo.Request.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("查询申请失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return toRequestResponse(updated), nil
}

// recomputeAfterTransition 按流转后的申请状态回写捐赠状态：
//   - approved  → requested
//   - completed → donated
//   - rejected  → 仍有 pending 则 requested，否则 available
//   - pending   → 不变
func (s *requestService) recomputeAfterTransition(ctx context.Context, txRepo *repository.Repository, donationID, newStatus string) error {
	var target string

	switch newStatus {
	case model.RequestStatusApproved:
		target = model.DonationStatusRequested
	case model.RequestStatusCompleted:
		target = model.DonationStatusDonated
	case model.RequestStatusRejected:
		pending, err := txRepo.Request.CountPending(ctx, donationID)
		if err != nil {
			s.logger.Error("统计待处理申请失败", zap.String("donation_id", donationID), zap.Error(err))
			return err
		}
		target = donationStatusAfterRelease(pending)
	default:
		return nil
	}

	if _, err := txRepo.Donation.UpdateStatus(ctx, donationID, target); err != nil {
		s.logger.Error("回写捐赠状态失败",
			zap.String("donation_id", donationID),
			zap.String("status", target),
			zap.Error(err))
		return err
	}
	return nil
}

// donationStatusAfterRelease 一个申请被释放（驳回/删除）后捐赠应处的状态
// 只看剩余 pending，不考察 approved——与驳回路径保持同一条规则
func donationStatusAfterRelease(pendingCount int64) string {
	if pendingCount > 0 {
		return model.DonationStatusRequested
	}
	return model.DonationStatusAvailable
}

// ────────────────────── Delete ──────────────────────

func (s *requestService) Delete(ctx context.Context, id string, receiverID *string) error {
	request, err := s.repo.Request.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRequestNotFound
		}
		s.logger.Error("查询申请失败", zap.String("id", id), zap.Error(err))
		return err
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.Error("开启事务失败", zap.Error(err))
		return err
	}
	defer func() {
		if r := recover(); r != nil {
			if tx != nil {
				tx.Rollback()
			}
			panic(r)
		}
	}()

	txRepo := s.repo.WithTx(tx)

	rows, err := txRepo.Request.Delete(ctx, id, receiverID)
	if err != nil {
		if tx != nil {
			tx.Rollback()
		}
		s.logger.Error("删除申请失败", zap.String("id", id), zap.Error(err))
		return err
	}
	if rows == 0 {
		if tx != nil {
			tx.Rollback()
		}
		return ErrRequestForbidden
	}

	// 删除后仅当不再有 pending 申请时才回落 available；
	// 其余情形保持原状，与驳回路径的回写范围刻意不同
	pending, err := txRepo.Request.CountPending(ctx, request.DonationID)
	if err != nil {
		if tx != nil {
			tx.Rollback()
		}
		s.logger.Error("统计待处理申请失败", zap.String("donation_id", request.DonationID), zap.Error(err))
		return err
	}
	if donationStatusAfterRelease(pending) == model.DonationStatusAvailable {
		if _, err := txRepo.Donation.UpdateStatus(ctx, request.DonationID, model.DonationStatusAvailable); err != nil {
			if tx != nil {
				tx.Rollback()
			}
			s.logger.Error("回写捐赠状态失败", zap.String("donation_id", request.DonationID), zap.Error(err))
			return err
		}
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("提交事务失败", zap.Error(err))
			return err
		}
	}

	s.logger.Info("申请已删除", zap.String("id", id))
	return nil
}

// ────────────────────── 读投影 ──────────────────────

func (s *requestService) GetByID(ctx context.Context, id string) (*dto.RequestDetailResponse, error) {
	request, err := s.repo.Request.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		s.logger.Error("查询申请失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return toRequestResponse(request), nil
}

func (s *requestService) List(ctx context.Context, req *dto.RequestListRequest) ([]dto.RequestDetailResponse, int64, error) {
	return s.list(ctx, req, "", "")
}

func (s *requestService) ListByReceiver(ctx context.Context, receiverID string, req *dto.RequestListRequest) ([]dto.RequestDetailResponse, int64, error) {
	return s.list(ctx, req, receiverID, "")
}

func (s *requestService) ListByDonor(ctx context.Context, donorID string, req *dto.RequestListRequest) ([]dto.RequestDetailResponse, int64, error) {
	return s.list(ctx, req, "", donorID)
}

func (s *requestService) list(ctx context.Context, req *dto.RequestListRequest, receiverID, donorID string) ([]dto.RequestDetailResponse, int64, error) {
	_, pageSize, offset := req.Normalize()

	filters := &repository.RequestListFilters{
		Status:     req.Status,
		ReceiverID: receiverID,
		DonorID:    donorID,
	}

	requests, total, err := s.repo.Request.List(ctx, filters, offset, pageSize)
	if err != nil {
		s.logger.Error("列出申请失败", zap.Error(err))
		return nil, 0, err
	}

	return toRequestResponses(requests), total, nil
}

func (s *requestService) ListPending(ctx context.Context, req *dto.RequestListRequest) ([]dto.RequestDetailResponse, int64, error) {
	_, pageSize, offset := req.Normalize()

	requests, total, err := s.repo.Request.ListPending(ctx, offset, pageSize)
	if err != nil {
		s.logger.Error("列出待处理申请失败", zap.Error(err))
		return nil, 0, err
	}

	return toRequestResponses(requests), total, nil
}

func (s *requestService) Stats(ctx context.Context) (*dto.RequestStatsResponse, error) {
	stats, err := s.repo.Request.Stats(ctx)
	if err != nil {
		s.logger.Error("统计申请失败", zap.Error(err))
		return nil, err
	}

	return &dto.RequestStatsResponse{
		TotalRequests:     stats.TotalRequests,
		PendingRequests:   stats.PendingRequests,
		ApprovedRequests:  stats.ApprovedRequests,
		RejectedRequests:  stats.RejectedRequests,
		CompletedRequests: stats.CompletedRequests,
		TotalReceivers:    stats.TotalReceivers,
	}, nil
}

// ── 内部辅助方法 ──

// notify 写入通知；失败仅记录日志，不影响主流程
// 使用独立 context，避免请求取消连带丢弃通知
func (s *requestService) notify(userID, message string) {
	notification := &model.Notification{
		UserID:  userID,
		Message: message,
	}
	if err := s.repo.Notification.Create(context.Background(), notification); err != nil {
		s.logger.Warn("写入通知失败",
			zap.String("user_id", userID),
			zap.Error(err))
	}
}

func toRequestResponse(request *model.Request) *dto.RequestDetailResponse {
	resp := &dto.RequestDetailResponse{
		ID:         request.RequestID,
		Status:     request.Status,
		Message:    request.Message,
		AdminNotes: request.AdminNotes,
		CreatedAt:  request.CreatedAt.Format("2006-01-02T15:04:05Z"),
		UpdatedAt:  request.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}
	if request.Donation != nil {
		info := &dto.RequestDonationInfo{
			ID:          request.Donation.DonationID,
			Title:       request.Donation.Title,
			Description: request.Donation.Description,
			ImageURL:    request.Donation.ImageURL,
			Category:    request.Donation.Category,
			DonorID:     request.Donation.DonorID,
		}
		if request.Donation.Donor != nil {
			info.DonorName = request.Donation.Donor.Name
		}
		resp.Donation = info
	}
	if request.Receiver != nil {
		resp.Receiver = &dto.UserBrief{
			ID:    request.Receiver.UserID,
			Name:  request.Receiver.Name,
			Email: request.Receiver.Email,
		}
	}
	return resp
}

func toRequestResponses(requests []model.Request) []dto.RequestDetailResponse {
	result := make([]dto.RequestDetailResponse, 0, len(requests))
	for i := range requests {
		result = append(result, *toRequestResponse(&requests[i]))
	}
	return result
}
