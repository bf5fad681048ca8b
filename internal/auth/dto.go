package auth

import (
	"time"

	"github.com/google/uuid"

	"github.com/slabworks/slabdesk-backend/pkg/db/models"
	"github.com/slabworks/slabdesk-backend/pkg/enums"
)

// LoginRequest captures the credentials sent to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AdminDTO is the operator shape returned by auth endpoints.
type AdminDTO struct {
	ID          uuid.UUID       `json:"id"`
	Email       string          `json:"email"`
	Role        enums.AdminRole `json:"role"`
	LastLoginAt *time.Time      `json:"last_login_at,omitempty"`
}

// LoginResponse contains the token pair and operator produced by a successful login.
type LoginResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	Admin        *AdminDTO `json:"admin"`
}

// RefreshRequest carries the expired access token and its refresh token.
type RefreshRequest struct {
	AccessToken  string `json:"access_token" validate:"required"`
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshResponse returns the rotated token pair.
type RefreshResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// RegisterAdminRequest creates a back-office operator account.
type RegisterAdminRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=12"`
	Role     string `json:"role,omitempty"`
}

func adminFromModel(admin *models.AdminUser) *AdminDTO {
	if admin == nil {
		return nil
	}
	return &AdminDTO{
		ID:          admin.ID,
		Email:       admin.Email,
		Role:        admin.Role,
		LastLoginAt: admin.LastLoginAt,
	}
}
