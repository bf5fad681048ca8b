package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/slabworks/slabdesk-backend/api/middleware"
	"github.com/slabworks/slabdesk-backend/internal/auth"
)

type stubAuthService struct {
	loginFn    func(ctx context.Context, req auth.LoginRequest) (*auth.LoginResponse, error)
	refreshFn  func(ctx context.Context, req auth.RefreshRequest) (*auth.RefreshResponse, error)
	logoutFn   func(ctx context.Context, accessID string) error
	registerFn func(ctx context.Context, req auth.RegisterAdminRequest) (*auth.AdminDTO, error)
}

func (s *stubAuthService) Login(ctx context.Context, req auth.LoginRequest) (*auth.LoginResponse, error) {
	return s.loginFn(ctx, req)
}

func (s *stubAuthService) Refresh(ctx context.Context, req auth.RefreshRequest) (*auth.RefreshResponse, error) {
	return s.refreshFn(ctx, req)
}

func (s *stubAuthService) Logout(ctx context.Context, accessID string) error {
	return s.logoutFn(ctx, accessID)
}

func (s *stubAuthService) RegisterAdmin(ctx context.Context, req auth.RegisterAdminRequest) (*auth.AdminDTO, error) {
	return s.registerFn(ctx, req)
}

func TestAuthLoginReturnsTokenPair(t *testing.T) {
	svc := &stubAuthService{
		loginFn: func(_ context.Context, req auth.LoginRequest) (*auth.LoginResponse, error) {
			if req.Email != "ops@example.com" {
				t.Fatalf("unexpected email %q", req.Email)
			}
			return &auth.LoginResponse{AccessToken: "access", RefreshToken: "refresh"}, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"email":"ops@example.com","password":"hunter2hunter2"}`))
	resp := httptest.NewRecorder()
	AuthLogin(svc, nil)(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	var envelope struct {
		Data auth.LoginResponse `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.AccessToken != "access" || envelope.Data.RefreshToken != "refresh" {
		t.Fatalf("unexpected token pair %+v", envelope.Data)
	}
}

func TestAuthLoginRejectsMalformedEmail(t *testing.T) {
	svc := &stubAuthService{
		loginFn: func(_ context.Context, _ auth.LoginRequest) (*auth.LoginResponse, error) {
			t.Fatal("service should not be called")
			return nil, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"email":"not-an-email","password":"x"}`))
	resp := httptest.NewRecorder()
	AuthLogin(svc, nil)(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestAuthLogoutRevokesContextSession(t *testing.T) {
	var revoked string
	svc := &stubAuthService{
		logoutFn: func(_ context.Context, accessID string) error {
			revoked = accessID
			return nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	ctx := middleware.WithAdminID(req.Context(), "admin-1")
	ctx = middleware.WithSessionID(ctx, "jti-42")
	req = req.WithContext(ctx)

	resp := httptest.NewRecorder()
	AuthLogout(svc, nil)(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if revoked != "jti-42" {
		t.Fatalf("expected session jti-42 revoked, got %q", revoked)
	}
}
