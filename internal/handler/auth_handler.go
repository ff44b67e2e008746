package handler

import (
	"interview-prep/internal/dto"
	"interview-prep/internal/middleware"
	"interview-prep/internal/service"
	"interview-prep/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// forgotPasswordMessage is the same whether or not the address is registered.
const forgotPasswordMessage = "If an account exists for this email, a verification code has been sent"

type AuthHandler struct {
	authService service.AuthService
	bind        binder
}

func NewAuthHandler(authService service.AuthService, v *validation.Validator) *AuthHandler {
	return &AuthHandler{authService: authService, bind: binder{v: v}}
}

// Register godoc
// @Summary Register a new account
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "Account details"
// @Success 201 {object} dto.SuccessResponse{data=dto.AuthResponse}
// @Failure 400 {object} dto.ErrorResponse
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := h.bind.body(c, &req); err != nil {
		return err
	}
	resp, err := h.authService.Register(c.UserContext(), &req)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusCreated, "User registered successfully", resp)
}

// Login godoc
// @Summary Log in with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Credentials"
// @Success 200 {object} dto.SuccessResponse{data=dto.AuthResponse}
// @Failure 400 {object} dto.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := h.bind.body(c, &req); err != nil {
		return err
	}
	resp, err := h.authService.Login(c.UserContext(), &req)
	if err != nil {
		return err
	}
	return ok(c, "Login successful", resp)
}

// GoogleLogin godoc
// @Summary Log in with a Google ID token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.GoogleLoginRequest true "Google ID token"
// @Success 200 {object} dto.SuccessResponse{data=dto.AuthResponse}
// @Failure 401 {object} dto.ErrorResponse
// @Router /auth/google [post]
func (h *AuthHandler) GoogleLogin(c *fiber.Ctx) error {
	var req dto.GoogleLoginRequest
	if err := h.bind.body(c, &req); err != nil {
		return err
	}
	resp, err := h.authService.GoogleLogin(c.UserContext(), &req)
	if err != nil {
		return err
	}
	return ok(c, "Google login successful", resp)
}

// Profile godoc
// @Summary Current user's profile
// @Tags auth
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} dto.SuccessResponse{data=dto.UserResponse}
// @Router /auth/profile [get]
func (h *AuthHandler) Profile(c *fiber.Ctx) error {
	resp, err := h.authService.GetProfile(c.UserContext(), middleware.CurrentUserID(c))
	if err != nil {
		return err
	}
	return ok(c, "Profile retrieved successfully", resp)
}

// UpdateProfile godoc
// @Summary Update name or profile image
// @Tags auth
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body dto.UpdateProfileRequest true "Fields to change"
// @Success 200 {object} dto.SuccessResponse{data=dto.UserResponse}
// @Router /auth/profile [put]
func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	var req dto.UpdateProfileRequest
	if err := h.bind.body(c, &req); err != nil {
		return err
	}
	resp, err := h.authService.UpdateProfile(c.UserContext(), middleware.CurrentUserID(c), &req)
	if err != nil {
		return err
	}
	return ok(c, "Profile updated successfully", resp)
}

// DeleteAccount godoc
// @Summary Delete the caller's account and everything it owns
// @Tags auth
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} dto.MessageResponse
// @Router /auth/account [delete]
func (h *AuthHandler) DeleteAccount(c *fiber.Ctx) error {
	if err := h.authService.DeleteAccount(c.UserContext(), middleware.CurrentUserID(c)); err != nil {
		return err
	}
	return ok(c, "Account deleted successfully", nil)
}

// SetGeminiKey godoc
// @Summary Validate and store a Gemini API key
// @Tags auth
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body dto.GeminiKeyRequest true "API key"
// @Success 200 {object} dto.SuccessResponse{data=dto.GeminiKeyResponse}
// @Failure 400 {object} dto.ErrorResponse
// @Router /auth/gemini-key [put]
func (h *AuthHandler) SetGeminiKey(c *fiber.Ctx) error {
	var req dto.GeminiKeyRequest
	if err := h.bind.body(c, &req); err != nil {
		return err
	}
	resp, err := h.authService.SetGeminiKey(c.UserContext(), middleware.CurrentUserID(c), req.APIKey)
	if err != nil {
		return err
	}
	return ok(c, "API key saved successfully", resp)
}

// RemoveGeminiKey godoc
// @Summary Remove the stored Gemini API key
// @Tags auth
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} dto.MessageResponse
// @Router /auth/gemini-key [delete]
func (h *AuthHandler) RemoveGeminiKey(c *fiber.Ctx) error {
	if err := h.authService.RemoveGeminiKey(c.UserContext(), middleware.CurrentUserID(c)); err != nil {
		return err
	}
	return ok(c, "API key removed successfully", nil)
}

// ForgotPassword godoc
// @Summary Issue a password reset code
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.ForgotPasswordRequest true "Account email"
// @Success 200 {object} dto.MessageResponse
// @Failure 429 {object} dto.ErrorResponse
// @Router /auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var req dto.ForgotPasswordRequest
	if err := h.bind.body(c, &req); err != nil {
		return err
	}
	if err := h.authService.ForgotPassword(c.UserContext(), &req); err != nil {
		return err
	}
	return ok(c, forgotPasswordMessage, nil)
}

// VerifyOTP godoc
// @Summary Check a reset code without consuming it
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.VerifyOTPRequest true "Email and code"
// @Success 200 {object} dto.SuccessResponse{data=dto.OTPStatusResponse}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 429 {object} dto.ErrorResponse
// @Router /auth/verify-otp [post]
func (h *AuthHandler) VerifyOTP(c *fiber.Ctx) error {
	var req dto.VerifyOTPRequest
	if err := h.bind.body(c, &req); err != nil {
		return err
	}
	resp, err := h.authService.VerifyOTP(c.UserContext(), &req)
	if err != nil {
		return err
	}
	return ok(c, "OTP verified successfully", resp)
}

// ResetPassword godoc
// @Summary Consume a reset code and set a new password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.ResetPasswordRequest true "Email, code and new password"
// @Success 200 {object} dto.MessageResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 429 {object} dto.ErrorResponse
// @Router /auth/reset-password [post]
func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req dto.ResetPasswordRequest
	if err := h.bind.body(c, &req); err != nil {
		return err
	}
	if err := h.authService.ResetPassword(c.UserContext(), &req); err != nil {
		return err
	}
	return ok(c, "Password reset successfully", nil)
}
