package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/ahmednour/giving/config"
	"github.com/ahmednour/giving/internal/dto"
	"github.com/ahmednour/giving/internal/model"
	"github.com/ahmednour/giving/pkg/jwt"
)

// ── 测试辅助 ──

func setupTestAuthService() (AuthService, *mockStore) {
	repo, store := newMockRepos()
	cfg := &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:               "unit-test-secret-0123456789",
			AccessTokenTTL:          15 * time.Minute,
			RefreshTokenTTLDefault:  24 * time.Hour,
			RefreshTokenTTLRemember: 30 * 24 * time.Hour,
		},
	}
	jwtMgr := jwt.NewManager(&cfg.Auth)
	svc := NewAuthService(cfg, repo, jwtMgr, nil, zap.NewNop())
	return svc, store
}

func seedUserWithPassword(store *mockStore, id, email, password, role string, active bool) {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	store.users[id] = &model.User{
		UserID:       id,
		Name:         "用户" + id,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		IsActive:     active,
	}
}

// ── Register 测试 ──

func TestAuthService_Register_Success(t *testing.T) {
	svc, store := setupTestAuthService()

	req := &dto.RegisterRequest{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "strong-password",
		Role:     model.RoleDonor,
	}

	result, err := svc.Register(context.Background(), req)
	if err != nil {
		t.Fatalf("Register 应成功: %v", err)
	}
	if result.Role != model.RoleDonor {
		t.Errorf("期望Role=donor，实际=%s", result.Role)
	}
	if !result.IsActive {
		t.Error("新用户应默认启用")
	}

	// 密码不得明文入库
	stored := store.users[result.ID]
	if stored.PasswordHash == "strong-password" {
		t.Error("密码不应明文存储")
	}
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	svc, store := setupTestAuthService()
	seedUserWithPassword(store, "user-1", "alice@example.com", "pw", model.RoleDonor, true)

	req := &dto.RegisterRequest{
		Name:     "Imposter",
		Email:    "alice@example.com",
		Password: "strong-password",
		Role:     model.RoleReceiver,
	}

	_, err := svc.Register(context.Background(), req)
	if !errors.Is(err, ErrEmailExists) {
		t.Errorf("期望 ErrEmailExists，实际: %v", err)
	}
}

// ── Login 测试 ──

func TestAuthService_Login_Success(t *testing.T) {
	svc, store := setupTestAuthService()
	seedUserWithPassword(store, "user-1", "alice@example.com", "secret123", model.RoleDonor, true)

	result, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "alice@example.com",
		Password: "secret123",
	})
	if err != nil {
		t.Fatalf("Login 应成功: %v", err)
	}
	if result.AccessToken == "" || result.RefreshToken == "" {
		t.Error("应返回 Token 对")
	}
	if result.ExpiresIn != int((15 * time.Minute).Seconds()) {
		t.Errorf("期望ExpiresIn=900，实际=%d", result.ExpiresIn)
	}
	if result.User.ID != "user-1" {
		t.Errorf("期望用户=user-1，实际=%s", result.User.ID)
	}
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	svc, store := setupTestAuthService()
	seedUserWithPassword(store, "user-1", "alice@example.com", "secret123", model.RoleDonor, true)

	_, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "alice@example.com",
		Password: "wrong",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("期望 ErrInvalidCredentials，实际: %v", err)
	}
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	svc, _ := setupTestAuthService()

	_, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "ghost@example.com",
		Password: "whatever",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("期望 ErrInvalidCredentials，实际: %v", err)
	}
}

func TestAuthService_Login_DisabledUser(t *testing.T) {
	svc, store := setupTestAuthService()
	seedUserWithPassword(store, "user-1", "alice@example.com", "secret123", model.RoleDonor, false)

	_, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "alice@example.com",
		Password: "secret123",
	})
	if !errors.Is(err, ErrUserDisabled) {
		t.Errorf("期望 ErrUserDisabled，实际: %v", err)
	}
}

// ── Refresh 测试 ──

func TestAuthService_Refresh_Success(t *testing.T) {
	svc, store := setupTestAuthService()
	seedUserWithPassword(store, "user-1", "alice@example.com", "secret123", model.RoleDonor, true)

	login, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "alice@example.com",
		Password: "secret123",
	})
	if err != nil {
		t.Fatalf("Login 应成功: %v", err)
	}

	result, err := svc.Refresh(context.Background(), login.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh 应成功: %v", err)
	}
	if result.AccessToken == "" || result.RefreshToken == "" {
		t.Error("应返回新的 Token 对")
	}
}

func TestAuthService_Refresh_RejectsAccessToken(t *testing.T) {
	svc, store := setupTestAuthService()
	seedUserWithPassword(store, "user-1", "alice@example.com", "secret123", model.RoleDonor, true)

	login, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "alice@example.com",
		Password: "secret123",
	})
	if err != nil {
		t.Fatalf("Login 应成功: %v", err)
	}

	// Access Token 不能用于刷新
	_, err = svc.Refresh(context.Background(), login.AccessToken)
	if !errors.Is(err, ErrRefreshTokenInvalid) {
		t.Errorf("期望 ErrRefreshTokenInvalid，实际: %v", err)
	}
}

func TestAuthService_Refresh_GarbageToken(t *testing.T) {
	svc, _ := setupTestAuthService()

	_, err := svc.Refresh(context.Background(), "not-a-jwt")
	if !errors.Is(err, ErrRefreshTokenInvalid) {
		t.Errorf("期望 ErrRefreshTokenInvalid，实际: %v", err)
	}
}

// ── Me 测试 ──

func TestAuthService_Me_NotFound(t *testing.T) {
	svc, _ := setupTestAuthService()

	_, err := svc.Me(context.Background(), "nonexistent")
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("期望 ErrUserNotFound，实际: %v", err)
	}
}
