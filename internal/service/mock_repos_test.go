package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/ahmednour/giving/internal/model"
	"github.com/ahmednour/giving/internal/repository"
)

// mockStore 各 mock 仓储共享的内存状态
// 共用一份数据才能在 GetByID 时装配跨实体关联（捐赠→捐赠者、申请→捐赠/申请人）
type mockStore struct {
	users         map[string]*model.User
	donations     map[string]*model.Donation
	requests      map[string]*model.Request
	notifications []*model.Notification
	seq           int
}

func newMockStore() *mockStore {
	return &mockStore{
		users:     make(map[string]*model.User),
		donations: make(map[string]*model.Donation),
		requests:  make(map[string]*model.Request),
	}
}

func (s *mockStore) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%d", prefix, s.seq)
}

// newMockRepos 返回接入全部 mock 仓储的聚合
// db 为 nil，事务按 nil 透传
func newMockRepos() (*repository.Repository, *mockStore) {
	store := newMockStore()
	repo := &repository.Repository{
		User:         &mockUserRepo{store},
		Donation:     &mockDonationRepo{store},
		Request:      &mockRequestRepo{store},
		Notification: &mockNotificationRepo{store},
	}
	return repo, store
}

// ── Mock UserRepository ──

type mockUserRepo struct {
	store *mockStore
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if user.UserID == "" {
		user.UserID = m.store.nextID("user")
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()
	m.store.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.store.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.store.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	user.UpdatedAt = time.Now()
	m.store.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) List(_ context.Context, offset, limit int) ([]model.User, int64, error) {
	var all []model.User
	for _, u := range m.store.users {
		all = append(all, *u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].UserID < all[j].UserID })

	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockUserRepo) CountByRole(_ context.Context) (map[string]int64, error) {
	result := make(map[string]int64)
	for _, u := range m.store.users {
		result[u.Role]++
	}
	return result, nil
}

// ── Mock DonationRepository ──

type mockDonationRepo struct {
	store *mockStore
}

func (m *mockDonationRepo) Create(_ context.Context, donation *model.Donation) error {
	if donation.DonationID == "" {
		donation.DonationID = m.store.nextID("don")
	}
	if donation.Status == "" {
		donation.Status = model.DonationStatusAvailable
	}
	if donation.Category == "" {
		donation.Category = "other"
	}
	donation.CreatedAt = time.Now()
	donation.UpdatedAt = time.Now()
	cp := *donation
	m.store.donations[cp.DonationID] = &cp
	return nil
}

func (m *mockDonationRepo) GetByID(_ context.Context, id string) (*model.Donation, error) {
	d, ok := m.store.donations[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return m.hydrate(d), nil
}

func (m *mockDonationRepo) List(_ context.Context, filters *repository.DonationListFilters, offset, limit int) ([]model.Donation, int64, error) {
	var all []model.Donation
	for _, d := range m.store.donations {
		if filters != nil {
			if filters.Status != "" && d.Status != filters.Status {
				continue
			}
			if filters.Category != "" && d.Category != filters.Category {
				continue
			}
			if filters.DonorID != "" && d.DonorID != filters.DonorID {
				continue
			}
			if filters.Search != "" {
				needle := strings.ToLower(filters.Search)
				if !strings.Contains(strings.ToLower(d.Title), needle) &&
					!strings.Contains(strings.ToLower(d.Description), needle) {
					continue
				}
			}
		}
		all = append(all, *m.hydrate(d))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockDonationRepo) UpdateFields(_ context.Context, id string, fields map[string]interface{}, donorID *string) (int64, error) {
	d, ok := m.store.donations[id]
	if !ok {
		return 0, nil
	}
	if donorID != nil && d.DonorID != *donorID {
		return 0, nil
	}

	for k, v := range fields {
		switch k {
		case "title":
			d.Title = v.(string)
		case "description":
			d.Description = v.(string)
		case "image_url":
			d.ImageURL = v.(string)
		case "category":
			d.Category = v.(string)
		case "status":
			d.Status = v.(string)
		}
	}
	d.UpdatedAt = time.Now()
	return 1, nil
}

func (m *mockDonationRepo) Delete(_ context.Context, id string, donorID *string) (int64, error) {
	d, ok := m.store.donations[id]
	if !ok {
		return 0, nil
	}
	if donorID != nil && d.DonorID != *donorID {
		return 0, nil
	}
	delete(m.store.donations, id)
	return 1, nil
}

func (m *mockDonationRepo) UpdateStatus(_ context.Context, id string, status string) (int64, error) {
	d, ok := m.store.donations[id]
	if !ok {
		return 0, nil
	}
	d.Status = status
	d.UpdatedAt = time.Now()
	return 1, nil
}

func (m *mockDonationRepo) ClaimAvailable(_ context.Context, id string) (bool, error) {
	d, ok := m.store.donations[id]
	if !ok || d.Status != model.DonationStatusAvailable {
		return false, nil
	}
	d.Status = model.DonationStatusRequested
	d.UpdatedAt = time.Now()
	return true, nil
}

func (m *mockDonationRepo) ListWithPendingRequests(_ context.Context, donorID *string) ([]repository.DonationWithPending, error) {
	var result []repository.DonationWithPending
	for id, d := range m.store.donations {
		if donorID != nil && d.DonorID != *donorID {
			continue
		}
		var pending int64
		for _, r := range m.store.requests {
			if r.DonationID == id && r.Status == model.RequestStatusPending {
				pending++
			}
		}
		if pending == 0 {
			continue
		}
		result = append(result, repository.DonationWithPending{
			Donation:             *m.hydrate(d),
			PendingRequestsCount: pending,
		})
	}
	return result, nil
}

func (m *mockDonationRepo) Stats(_ context.Context) (*repository.DonationStats, error) {
	stats := &repository.DonationStats{}
	donors := make(map[string]bool)
	for _, d := range m.store.donations {
		stats.TotalDonations++
		donors[d.DonorID] = true
		switch d.Status {
		case model.DonationStatusAvailable:
			stats.AvailableDonations++
		case model.DonationStatusRequested:
			stats.RequestedDonations++
		case model.DonationStatusDonated:
			stats.CompletedDonations++
		}
	}
	stats.TotalDonors = int64(len(donors))
	return stats, nil
}

func (m *mockDonationRepo) CountByCategory(_ context.Context) ([]repository.CategoryCount, error) {
	counts := make(map[string]int64)
	for _, d := range m.store.donations {
		counts[d.Category]++
	}

	var result []repository.CategoryCount
	for c, n := range counts {
		result = append(result, repository.CategoryCount{Category: c, Count: n})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Count > result[j].Count })
	return result, nil
}

func (m *mockDonationRepo) CountByDonor(_ context.Context, donorID string) (int64, error) {
	var count int64
	for _, d := range m.store.donations {
		if d.DonorID == donorID {
			count++
		}
	}
	return count, nil
}

func (m *mockDonationRepo) hydrate(d *model.Donation) *model.Donation {
	cp := *d
	if u, ok := m.store.users[d.DonorID]; ok {
		donor := *u
		cp.Donor = &donor
	}
	return &cp
}

// ── Mock RequestRepository ──

type mockRequestRepo struct {
	store *mockStore
}

func (m *mockRequestRepo) Create(_ context.Context, request *model.Request) error {
	if request.RequestID == "" {
		request.RequestID = m.store.nextID("req")
	}
	if request.Status == "" {
		request.Status = model.RequestStatusPending
	}
	request.CreatedAt = time.Now()
	request.UpdatedAt = time.Now()
	cp := *request
	m.store.requests[cp.RequestID] = &cp
	return nil
}

func (m *mockRequestRepo) GetByID(_ context.Context, id string) (*model.Request, error) {
	r, ok := m.store.requests[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return m.hydrate(r), nil
}

func (m *mockRequestRepo) List(_ context.Context, filters *repository.RequestListFilters, offset, limit int) ([]model.Request, int64, error) {
	var all []model.Request
	for _, r := range m.store.requests {
		if filters != nil {
			if filters.Status != "" && r.Status != filters.Status {
				continue
			}
			if filters.ReceiverID != "" && r.ReceiverID != filters.ReceiverID {
				continue
			}
			if filters.DonorID != "" {
				d, ok := m.store.donations[r.DonationID]
				if !ok || d.DonorID != filters.DonorID {
					continue
				}
			}
		}
		all = append(all, *m.hydrate(r))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockRequestRepo) ListPending(_ context.Context, offset, limit int) ([]model.Request, int64, error) {
	var all []model.Request
	for _, r := range m.store.requests {
		if r.Status == model.RequestStatusPending {
			all = append(all, *m.hydrate(r))
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.Before(all[j].CreatedAt) })

	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockRequestRepo) UpdateStatus(_ context.Context, id, status, adminNotes string) (int64, error) {
	r, ok := m.store.requests[id]
	if !ok {
		return 0, nil
	}
	r.Status = status
	r.AdminNotes = adminNotes
	r.UpdatedAt = time.Now()
	return 1, nil
}

func (m *mockRequestRepo) Delete(_ context.Context, id string, receiverID *string) (int64, error) {
	r, ok := m.store.requests[id]
	if !ok {
		return 0, nil
	}
	if receiverID != nil && r.ReceiverID != *receiverID {
		return 0, nil
	}
	delete(m.store.requests, id)
	return 1, nil
}

func (m *mockRequestRepo) CountActive(_ context.Context, donationID, receiverID string) (int64, error) {
	var count int64
	for _, r := range m.store.requests {
		if r.DonationID == donationID && r.ReceiverID == receiverID && model.IsActiveRequestStatus(r.Status) {
			count++
		}
	}
	return count, nil
}

func (m *mockRequestRepo) CountPending(_ context.Context, donationID string) (int64, error) {
	var count int64
	for _, r := range m.store.requests {
		if r.DonationID == donationID && r.Status == model.RequestStatusPending {
			count++
		}
	}
	return count, nil
}

func (m *mockRequestRepo) CountByReceiver(_ context.Context, receiverID string) (int64, error) {
	var count int64
	for _, r := range m.store.requests {
		if r.ReceiverID == receiverID {
			count++
		}
	}
	return count, nil
}

func (m *mockRequestRepo) Stats(_ context.Context) (*repository.RequestStats, error) {
	stats := &repository.RequestStats{}
	receivers := make(map[string]bool)
	for _, r := range m.store.requests {
		stats.TotalRequests++
		receivers[r.ReceiverID] = true
		switch r.Status {
		case model.RequestStatusPending:
			stats.PendingRequests++
		case model.RequestStatusApproved:
			stats.ApprovedRequests++
		case model.RequestStatusRejected:
			stats.RejectedRequests++
		case model.RequestStatusCompleted:
			stats.CompletedRequests++
		}
	}
	stats.TotalReceivers = int64(len(receivers))
	return stats, nil
}

func (m *mockRequestRepo) hydrate(r *model.Request) *model.Request {
	cp := *r
	if d, ok := m.store.donations[r.DonationID]; ok {
		donation := *d
		if u, ok := m.store.users[d.DonorID]; ok {
			donor := *u
			donation.Donor = &donor
		}
		cp.Donation = &donation
	}
	if u, ok := m.store.users[r.ReceiverID]; ok {
		receiver := *u
		cp.Receiver = &receiver
	}
	return &cp
}

// ── Mock NotificationRepository ──

type mockNotificationRepo struct {
	store *mockStore
}

func (m *mockNotificationRepo) Create(_ context.Context, notification *model.Notification) error {
	if notification.NotificationID == "" {
		notification.NotificationID = m.store.nextID("notif")
	}
	notification.CreatedAt = time.Now()
	cp := *notification
	m.store.notifications = append(m.store.notifications, &cp)
	return nil
}

func (m *mockNotificationRepo) ListByUser(_ context.Context, userID string) ([]model.Notification, error) {
	var result []model.Notification
	for _, n := range m.store.notifications {
		if n.UserID == userID {
			result = append(result, *n)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (m *mockNotificationRepo) MarkRead(_ context.Context, id string) (int64, error) {
	for _, n := range m.store.notifications {
		if n.NotificationID == id && !n.IsRead {
			n.IsRead = true
			return 1, nil
		}
	}
	return 0, nil
}

func (m *mockNotificationRepo) MarkAllRead(_ context.Context, userID string) (int64, error) {
	var count int64
	for _, n := range m.store.notifications {
		if n.UserID == userID && !n.IsRead {
			n.IsRead = true
			count++
		}
	}
	return count, nil
}
