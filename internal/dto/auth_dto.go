package dto

import (
	"time"

	"github.com/zaroda/school-backend/internal/models"
)

type LoginRequest struct {
	Role       string `json:"role" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required"`
	SchoolCode string `json:"school_code"`
}

type SignupRequest struct {
	FullName   string `json:"full_name" validate:"required,max=120"`
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=6"`
	SchoolCode string `json:"school_code" validate:"required"`
	Phone      string `json:"phone" validate:"omitempty,max=20"`
	Subject    string `json:"subject" validate:"omitempty,max=60"`
	Grade      string `json:"grade" validate:"omitempty,max=40"`
}

type AuthResponse struct {
	User      models.AuthUser `json:"user"`
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
	Redirect  string          `json:"redirect"`
}

type SessionResponse struct {
	Loading  bool             `json:"loading"`
	User     *models.AuthUser `json:"user"`
	Redirect string           `json:"redirect"`
}

type ErrorResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

type HealthResponse struct {
	Status      string `json:"status"`
	Timestamp   string `json:"timestamp"`
	Storage     string `json:"storage"`
	SchoolCount int    `json:"school_count"`
}
