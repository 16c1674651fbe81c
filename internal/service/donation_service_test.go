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

func setupTestDonationService() (DonationService, *mockStore) {
	repo, store := newMockRepos()
	svc := NewDonationService(repo, zap.NewNop())
	return svc, store
}

// ── Create 测试 ──

func TestDonationService_Create_ForcesAvailable(t *testing.T) {
	svc, store := setupTestDonationService()
	seedUser(store, "donor-1", "Alice", model.RoleDonor)

	req := &dto.CreateDonationRequest{
		Title:       "旧书一批",
		Description: "九成新教材",
		Category:    "books",
	}

	result, err := svc.Create(context.Background(), req, "donor-1")
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if result.Status != model.DonationStatusAvailable {
		t.Errorf("新捐赠期望状态=available，实际=%s", result.Status)
	}
	if result.Donor == nil || result.Donor.ID != "donor-1" {
		t.Error("响应应装配捐赠者信息")
	}
}

func TestDonationService_Create_DefaultCategory(t *testing.T) {
	svc, store := setupTestDonationService()
	seedUser(store, "donor-1", "Alice", model.RoleDonor)

	req := &dto.CreateDonationRequest{Title: "杂物", Description: "未分类物品"}

	result, err := svc.Create(context.Background(), req, "donor-1")
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if result.Category != "other" {
		t.Errorf("期望Category=other，实际=%s", result.Category)
	}
}

// ── GetByID 测试 ──

func TestDonationService_GetByID_NotFound(t *testing.T) {
	svc, _ := setupTestDonationService()

	_, err := svc.GetByID(context.Background(), "nonexistent")
	if !errors.Is(err, ErrDonationNotFound) {
		t.Errorf("期望 ErrDonationNotFound，实际: %v", err)
	}
}

// ── Update 测试 ──

func TestDonationService_Update_OwnerSuccess(t *testing.T) {
	svc, store := setupTestDonationService()
	seedUser(store, "donor-1", "Alice", model.RoleDonor)
	seedDonation(store, "don-1", "Chair", "donor-1", model.DonationStatusAvailable)

	newTitle := "Office Chair"
	donorID := "donor-1"

	result, err := svc.Update(context.Background(), "don-1",
		&dto.UpdateDonationRequest{Title: &newTitle}, &donorID)
	if err != nil {
		t.Fatalf("Update 应成功: %v", err)
	}
	if result.Title != "Office Chair" {
		t.Errorf("期望Title=Office Chair，实际=%s", result.Title)
	}
}

func TestDonationService_Update_NonOwnerForbidden(t *testing.T) {
	svc, store := setupTestDonationService()
	seedUser(store, "donor-1", "Alice", model.RoleDonor)
	seedDonation(store, "don-1", "Chair", "donor-1", model.DonationStatusAvailable)

	newTitle := "Hijacked"
	other := "donor-2"

	_, err := svc.Update(context.Background(), "don-1",
		&dto.UpdateDonationRequest{Title: &newTitle}, &other)
	if !errors.Is(err, ErrDonationForbidden) {
		t.Errorf("期望 ErrDonationForbidden，实际: %v", err)
	}
	if store.donations["don-1"].Title != "Chair" {
		t.Error("非归属更新不应生效")
	}
}

func TestDonationService_Update_AdminOverride(t *testing.T) {
	svc, store := setupTestDonationService()
	seedUser(store, "donor-1", "Alice", model.RoleDonor)
	seedDonation(store, "don-1", "Chair", "donor-1", model.DonationStatusAvailable)

	newStatus := model.DonationStatusDonated

	// donorID 为 nil 表示管理员覆盖，不做归属过滤
	result, err := svc.Update(context.Background(), "don-1",
		&dto.UpdateDonationRequest{Status: &newStatus}, nil)
	if err != nil {
		t.Fatalf("管理员更新应成功: %v", err)
	}
	if result.Status != model.DonationStatusDonated {
		t.Errorf("期望Status=donated，实际=%s", result.Status)
	}
}

func TestDonationService_Update_NoFields(t *testing.T) {
	svc, store := setupTestDonationService()
	seedDonation(store, "don-1", "Chair", "donor-1", model.DonationStatusAvailable)

	_, err := svc.Update(context.Background(), "don-1", &dto.UpdateDonationRequest{}, nil)
	if !errors.Is(err, ErrDonationNoFields) {
		t.Errorf("期望 ErrDonationNoFields，实际: %v", err)
	}
}

// ── Delete 测试 ──

func TestDonationService_Delete_OwnerSuccess(t *testing.T) {
	svc, store := setupTestDonationService()
	seedDonation(store, "don-1", "Chair", "donor-1", model.DonationStatusAvailable)

	donorID := "donor-1"
	if err := svc.Delete(context.Background(), "don-1", &donorID); err != nil {
		t.Fatalf("Delete 应成功: %v", err)
	}
	if _, ok := store.donations["don-1"]; ok {
		t.Error("捐赠应已删除")
	}
}

func TestDonationService_Delete_NonOwnerForbidden(t *testing.T) {
	svc, store := setupTestDonationService()
	seedDonation(store, "don-1", "Chair", "donor-1", model.DonationStatusAvailable)

	other := "donor-2"
	err := svc.Delete(context.Background(), "don-1", &other)
	if !errors.Is(err, ErrDonationForbidden) {
		t.Errorf("期望 ErrDonationForbidden，实际: %v", err)
	}
	if _, ok := store.donations["don-1"]; !ok {
		t.Error("捐赠不应被删除")
	}
}

// ── List 测试 ──

func TestDonationService_List_FilterByStatus(t *testing.T) {
	svc, store := setupTestDonationService()
	seedUser(store, "donor-1", "Alice", model.RoleDonor)
	seedDonation(store, "don-1", "Chair", "donor-1", model.DonationStatusAvailable)
	seedDonation(store, "don-2", "Desk", "donor-1", model.DonationStatusDonated)

	req := &dto.DonationListRequest{Status: model.DonationStatusAvailable}

	result, total, err := svc.List(context.Background(), req)
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if total != 1 || len(result) != 1 {
		t.Fatalf("期望命中 1 条，实际 total=%d len=%d", total, len(result))
	}
	if result[0].Title != "Chair" {
		t.Errorf("期望Title=Chair，实际=%s", result[0].Title)
	}
}

// ── WithPendingRequests 测试 ──

func TestDonationService_WithPendingRequests(t *testing.T) {
	svc, store := setupTestDonationService()
	seedUser(store, "donor-1", "Alice", model.RoleDonor)
	seedUser(store, "recv-1", "Bob", model.RoleReceiver)
	seedUser(store, "recv-2", "Dave", model.RoleReceiver)
	seedDonation(store, "don-1", "Chair", "donor-1", model.DonationStatusRequested)
	seedDonation(store, "don-2", "Desk", "donor-1", model.DonationStatusAvailable)
	seedRequest(store, "req-1", "don-1", "recv-1", model.RequestStatusPending)
	seedRequest(store, "req-2", "don-1", "recv-2", model.RequestStatusPending)

	donorID := "donor-1"
	result, err := svc.WithPendingRequests(context.Background(), &donorID)
	if err != nil {
		t.Fatalf("WithPendingRequests 应成功: %v", err)
	}
	if len(result) != 1 {
		t.Fatalf("期望 1 条捐赠有待处理申请，实际 %d 条", len(result))
	}
	if result[0].ID != "don-1" || result[0].PendingRequestsCount != 2 {
		t.Errorf("期望 don-1 有 2 条待处理申请，实际 id=%s count=%d",
			result[0].ID, result[0].PendingRequestsCount)
	}
}

// ── Stats 测试 ──

func TestDonationService_Stats(t *testing.T) {
	svc, store := setupTestDonationService()
	seedUser(store, "donor-1", "Alice", model.RoleDonor)
	seedUser(store, "donor-2", "Carol", model.RoleDonor)
	seedDonation(store, "don-1", "Chair", "donor-1", model.DonationStatusAvailable)
	seedDonation(store, "don-2", "Desk", "donor-1", model.DonationStatusRequested)
	seedDonation(store, "don-3", "Lamp", "donor-2", model.DonationStatusDonated)

	result, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats 应成功: %v", err)
	}
	if result.Overview.TotalDonations != 3 {
		t.Errorf("期望总数=3，实际=%d", result.Overview.TotalDonations)
	}
	if result.Overview.AvailableDonations != 1 ||
		result.Overview.RequestedDonations != 1 ||
		result.Overview.CompletedDonations != 1 {
		t.Errorf("按状态统计不符: %+v", result.Overview)
	}
	if result.Overview.TotalDonors != 2 {
		t.Errorf("期望捐赠者数=2，实际=%d", result.Overview.TotalDonors)
	}
}
