package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ahmednour/giving/internal/dto"
	"github.com/ahmednour/giving/internal/repository"
)

// ── 用户模块业务错误 ──

var (
	ErrUserNotFound       = errors.New("用户不存在")
	ErrEmailExists        = errors.New("邮箱已被注册")
	ErrUserSelfDeactivate = errors.New("不能停用自己的账号")
)

// UserService 用户业务接口
type UserService interface {
	UpdateProfile(ctx context.Context, userID string, req *dto.UpdateProfileRequest) (*dto.UserResponse, error)
	List(ctx context.Context, req *dto.UserListRequest) ([]dto.UserResponse, int64, error)
	// GetDetail 返回用户详情及其捐赠/申请统计（管理员视角）
	GetDetail(ctx context.Context, id string) (*dto.UserDetailResponse, error)
	// SetActive 启用/停用账号；管理员不能停用自己
	SetActive(ctx context.Context, id string, active bool, callerID string) error
}

type userService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewUserService 创建 UserService 实例
func NewUserService(repo *repository.Repository, logger *zap.Logger) UserService {
	return &userService{repo: repo, logger: logger}
}

// ────────────────────── UpdateProfile ──────────────────────

func (s *userService) UpdateProfile(ctx context.Context, userID string, req *dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("id", userID), zap.Error(err))
		return nil, err
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Email != nil && *req.Email != user.Email {
		// 新邮箱不能与他人重复
		if _, err := s.repo.User.GetByEmail(ctx, *req.Email); err == nil {
			return nil, ErrEmailExists
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("查询用户失败", zap.Error(err))
			return nil, err
		}
		user.Email = *req.Email
	}

	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("更新用户失败", zap.String("id", userID), zap.Error(err))
		return nil, err
	}

	return toUserResponse(user), nil
}

// ────────────────────── List ──────────────────────

func (s *userService) List(ctx context.Context, req *dto.UserListRequest) ([]dto.UserResponse, int64, error) {
	_, pageSize, offset := req.Normalize()

	users, total, err := s.repo.User.List(ctx, offset, pageSize)
	if err != nil {
		s.logger.Error("列出用户失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		result = append(result, *toUserResponse(&users[i]))
	}

	return result, total, nil
}

// ────────────────────── GetDetail ──────────────────────

func (s *userService) GetDetail(ctx context.Context, id string) (*dto.UserDetailResponse, error) {
	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	donations, err := s.repo.Donation.CountByDonor(ctx, id)
	if err != nil {
		s.logger.Error("统计用户捐赠失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	requests, err := s.repo.Request.CountByReceiver(ctx, id)
	if err != nil {
		s.logger.Error("统计用户申请失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return &dto.UserDetailResponse{
		User: *toUserResponse(user),
		Stats: dto.UserStatsResponse{
			TotalDonations: donations,
			TotalRequests:  requests,
		},
	}, nil
}

// ────────────────────── SetActive ──────────────────────

func (s *userService) SetActive(ctx context.Context, id string, active bool, callerID string) error {
	if !active && id == callerID {
		return ErrUserSelfDeactivate
	}

	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("id", id), zap.Error(err))
		return err
	}

	if user.IsActive == active {
		return nil
	}

	user.IsActive = active
	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("更新用户状态失败", zap.String("id", id), zap.Error(err))
		return err
	}

	s.logger.Info("用户状态已变更",
		zap.String("id", id),
		zap.Bool("active", active),
		zap.String("operator", callerID))

	return nil
}
