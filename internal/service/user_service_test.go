package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/ahmednour/giving/internal/dto"
	"github.com/ahmednour/giving/internal/model"
)

// ── 测试辅助 ──

func setupTestUserService() (UserService, *mockStore) {
	repo, store := newMockRepos()
	svc := NewUserService(repo, zap.NewNop())
	return svc, store
}

// ── UpdateProfile 测试 ──

func TestUserService_UpdateProfile_Success(t *testing.T) {
	svc, store := setupTestUserService()
	seedUser(store, "user-1", "Alice", model.RoleDonor)

	newName := "Alice Zhang"
	result, err := svc.UpdateProfile(context.Background(), "user-1",
		&dto.UpdateProfileRequest{Name: &newName})
	if err != nil {
		t.Fatalf("UpdateProfile 应成功: %v", err)
	}
	if result.Name != "Alice Zhang" {
		t.Errorf("期望Name=Alice Zhang，实际=%s", result.Name)
	}
}

func TestUserService_UpdateProfile_EmailConflict(t *testing.T) {
	svc, store := setupTestUserService()
	seedUser(store, "user-1", "Alice", model.RoleDonor)
	seedUser(store, "user-2", "Bob", model.RoleReceiver)

	taken := "user-2@example.com"
	_, err := svc.UpdateProfile(context.Background(), "user-1",
		&dto.UpdateProfileRequest{Email: &taken})
	if !errors.Is(err, ErrEmailExists) {
		t.Errorf("期望 ErrEmailExists，实际: %v", err)
	}
}

func TestUserService_UpdateProfile_NotFound(t *testing.T) {
	svc, _ := setupTestUserService()

	newName := "Ghost"
	_, err := svc.UpdateProfile(context.Background(), "nonexistent",
		&dto.UpdateProfileRequest{Name: &newName})
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("期望 ErrUserNotFound，实际: %v", err)
	}
}

// ── GetDetail 测试 ──

func TestUserService_GetDetail_WithStats(t *testing.T) {
	svc, store := setupTestUserService()
	seedUser(store, "donor-1", "Alice", model.RoleDonor)
	seedDonation(store, "don-1", "Chair", "donor-1", model.DonationStatusAvailable)
	seedDonation(store, "don-2", "Desk", "donor-1", model.DonationStatusAvailable)

	result, err := svc.GetDetail(context.Background(), "donor-1")
	if err != nil {
		t.Fatalf("GetDetail 应成功: %v", err)
	}
	if result.Stats.TotalDonations != 2 {
		t.Errorf("期望捐赠数=2，实际=%d", result.Stats.TotalDonations)
	}
	if result.Stats.TotalRequests != 0 {
		t.Errorf("期望申请数=0，实际=%d", result.Stats.TotalRequests)
	}
}

// ── SetActive 测试 ──

func TestUserService_SetActive_SelfDeactivateForbidden(t *testing.T) {
	svc, store := setupTestUserService()
	seedUser(store, "admin-1", "Root", model.RoleAdmin)

	err := svc.SetActive(context.Background(), "admin-1", false, "admin-1")
	if !errors.Is(err, ErrUserSelfDeactivate) {
		t.Errorf("期望 ErrUserSelfDeactivate，实际: %v", err)
	}
	if !store.users["admin-1"].IsActive {
		t.Error("账号不应被停用")
	}
}

func TestUserService_SetActive_DeactivateOther(t *testing.T) {
	svc, store := setupTestUserService()
	seedUser(store, "admin-1", "Root", model.RoleAdmin)
	seedUser(store, "user-1", "Alice", model.RoleDonor)

	if err := svc.SetActive(context.Background(), "user-1", false, "admin-1"); err != nil {
		t.Fatalf("SetActive 应成功: %v", err)
	}
	if store.users["user-1"].IsActive {
		t.Error("账号应已停用")
	}

	// 重新启用
	if err := svc.SetActive(context.Background(), "user-1", true, "admin-1"); err != nil {
		t.Fatalf("SetActive 应成功: %v", err)
	}
	if !store.users["user-1"].IsActive {
		t.Error("账号应已启用")
	}
}

func TestUserService_SetActive_NotFound(t *testing.T) {
	svc, _ := setupTestUserService()

	err := svc.SetActive(context.Background(), "nonexistent", false, "admin-1")
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("期望 ErrUserNotFound，实际: %v", err)
	}
}
