package dto

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AuthClaims defines the custom claims for JWT.
type AuthClaims struct {
	UserID string `json:"id"`
	jwt.RegisteredClaims
}

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Name             string `json:"name" validate:"required,min=2,max=100"`
	Email            string `json:"email" validate:"required,email"`
	Password         string `json:"password" validate:"required,min=6,max=128"`
	ProfileImageURL  string `json:"profileImageUrl" validate:"omitempty,url"`
	AdminInviteToken string `json:"adminInviteToken"`
	GeminiAPIKey     string `json:"geminiApiKey"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// GoogleLoginRequest carries a Google ID token from the client.
type GoogleLoginRequest struct {
	Token string `json:"token" validate:"required"`
}

type UpdateProfileRequest struct {
	Name            *string `json:"name" validate:"omitempty,min=2,max=100"`
	ProfileImageURL *string `json:"profileImageUrl" validate:"omitempty,url"`
}

type GeminiKeyRequest struct {
	APIKey string `json:"apiKey" validate:"required,min=10"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type VerifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,len=6,numeric"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email" validate:"required,email"`
	OTP         string `json:"otp" validate:"required,len=6,numeric"`
	NewPassword string `json:"newPassword" validate:"required,min=6,max=128"`
}

// UserResponse is a user as returned to clients. The stored key is only
// ever represented by HasGeminiKey and its masked form.
// @Description User profile
type UserResponse struct {
	ID              string    `json:"_id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	ProfileImageURL string    `json:"profileImageUrl,omitempty"`
	Role            string    `json:"role"`
	HasGeminiKey    bool      `json:"hasGeminiKey"`
	GeminiKeyMasked string    `json:"geminiKeyMasked,omitempty"`
	Notes           string    `json:"notes,omitempty"`
	IsActive        bool      `json:"isActive"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	UserResponse
	Token string `json:"token"`
}

type GeminiKeyResponse struct {
	HasGeminiKey    bool   `json:"hasGeminiKey"`
	GeminiKeyMasked string `json:"geminiKeyMasked,omitempty"`
}

// OTPStatusResponse reports the outcome of an OTP step.
type OTPStatusResponse struct {
	Valid     bool `json:"valid"`
	ExpiresIn int  `json:"expiresIn,omitempty"`
}
