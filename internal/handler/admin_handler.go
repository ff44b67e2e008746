package handler

import (
	"time"

	"interview-prep/internal/dto"
	"interview-prep/internal/middleware"
	"interview-prep/internal/service"
	"interview-prep/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// AdminHandler serves the admin console. Every route sits behind
// middleware.AdminOnly.
type AdminHandler struct {
	admin  service.AdminService
	system service.SystemService
	bind   binder
	now    func() time.Time
}

func NewAdminHandler(admin service.AdminService, system service.SystemService, v *validation.Validator) *AdminHandler {
	return &AdminHandler{
		admin:  admin,
		system: system,
		bind:   binder{v: v},
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// DashboardStats godoc
// @Summary Platform-wide dashboard statistics
// @Tags admin
// @Produce json
// @Security ApiKeyAuth
// @Param period query string false "7d, 30d, 90d or year"
// @Success 200 {object} dto.SuccessResponse{data=dto.DashboardStatsResponse}
// @Failure 403 {object} dto.ErrorResponse
// @Router /admin/dashboard/stats [get]
func (h *AdminHandler) DashboardStats(c *fiber.Ctx) error {
	resp, err := h.admin.DashboardStats(c.UserContext(), c.Query("period", "7d"))
	if err != nil {
		return err
	}
	return ok(c, "Dashboard statistics retrieved successfully", resp)
}

// ListUsers godoc
// @Summary Page through users with activity counts
// @Tags admin
// @Produce json
// @Security ApiKeyAuth
// @Param page query int false "Page"
// @Param limit query int false "Page size (1-100)"
// @Param search query string false "Name or email fragment"
// @Param role query string false "user, admin or moderator"
// @Param status query string false "active or inactive"
// @Success 200 {object} dto.SuccessResponse{data=dto.AdminUserListResponse}
// @Router /admin/users [get]
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	var q dto.AdminUserListQuery
	if err := h.bind.query(c, &q); err != nil {
		return err
	}
	resp, err := h.admin.ListUsers(c.UserContext(), &q)
	if err != nil {
		return err
	}
	return ok(c, "Users retrieved successfully", resp)
}

// UserStats godoc
// @Summary User counts by role and activity
// @Tags admin
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} dto.SuccessResponse{data=dto.UserStatsResponse}
// @Router /admin/users/stats [get]
func (h *AdminHandler) UserStats(c *fiber.Ctx) error {
	resp, err := h.admin.UserStats(c.UserContext())
	if err != nil {
		return err
	}
	return ok(c, "User statistics retrieved successfully", resp)
}

// CreateUser godoc
// @Summary Create a user
// @Tags admin
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body dto.AdminCreateUserRequest true "User"
// @Success 201 {object} dto.SuccessResponse{data=dto.UserResponse}
// @Failure 409 {object} dto.ErrorResponse
// @Router /admin/users [post]
func (h *AdminHandler) CreateUser(c *fiber.Ctx) error {
	var req dto.AdminCreateUserRequest
	if err := h.bind.body(c, &req); err != nil {
		return err
	}
	resp, err := h.admin.CreateUser(c.UserContext(), &req)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusCreated, "User created successfully", resp)
}

// GetUser godoc
// @Summary One user with sessions and activity
// @Tags admin
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "User ID"
// @Success 200 {object} dto.SuccessResponse{data=dto.AdminUserDetailResponse}
// @Failure 404 {object} dto.ErrorResponse
// @Router /admin/users/{id} [get]
func (h *AdminHandler) GetUser(c *fiber.Ctx) error {
	resp, err := h.admin.GetUser(c.UserContext(), pathID(c, "id"))
	if err != nil {
		return err
	}
	return ok(c, "User retrieved successfully", resp)
}

// UpdateUser godoc
// @Summary Update a user's profile, role, status or Gemini key
// @Tags admin
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "User ID"
// @Param request body dto.AdminUpdateUserRequest true "Fields to change"
// @Success 200 {object} dto.SuccessResponse{data=dto.UserResponse}
// @Failure 400 {object} dto.ErrorResponse
// @Router /admin/users/{id} [put]
func (h *AdminHandler) UpdateUser(c *fiber.Ctx) error {
	var req dto.AdminUpdateUserRequest
	if err := h.bind.body(c, &req); err != nil {
		return err
	}
	resp, err := h.admin.UpdateUser(c.UserContext(), middleware.CurrentUserID(c), pathID(c, "id"), &req)
	if err != nil {
		return err
	}
	return ok(c, "User updated successfully", resp)
}

// DeleteUser godoc
// @Summary Delete a user and everything they own
// @Tags admin
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "User ID"
// @Success 200 {object} dto.MessageResponse
// @Failure 400 {object} dto.ErrorResponse "Cannot delete yourself"
// @Router /admin/users/{id} [delete]
func (h *AdminHandler) DeleteUser(c *fiber.Ctx) error {
	if err := h.admin.DeleteUser(c.UserContext(), middleware.CurrentUserID(c), pathID(c, "id")); err != nil {
		return err
	}
	return ok(c, "User deleted successfully", nil)
}

// ListSessions godoc
// @Summary Page through all sessions
// @Tags admin
// @Produce json
// @Security ApiKeyAuth
// @Param page query int false "Page"
// @Param limit query int false "Page size (1-100)"
// @Param search query string false "Role fragment"
// @Param status query string false "active or completed"
// @Success 200 {object} dto.SuccessResponse{data=dto.AdminSessionListResponse}
// @Router /admin/sessions [get]
func (h *AdminHandler) ListSessions(c *fiber.Ctx) error {
	var q dto.AdminSessionListQuery
	if err := h.bind.query(c, &q); err != nil {
		return err
	}
	resp, err := h.admin.ListSessions(c.UserContext(), &q)
	if err != nil {
		return err
	}
	return ok(c, "Sessions retrieved successfully", resp)
}

// SessionStats godoc
// @Summary Session counts and averages
// @Tags admin
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} dto.SuccessResponse{data=dto.SessionStatsResponse}
// @Router /admin/sessions/stats [get]
func (h *AdminHandler) SessionStats(c *fiber.Ctx) error {
	resp, err := h.admin.SessionStats(c.UserContext())
	if err != nil {
		return err
	}
	return ok(c, "Session statistics retrieved successfully", resp)
}

// GetSession godoc
// @Summary One session with its owner
// @Tags admin
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Session ID"
// @Success 200 {object} dto.SuccessResponse{data=dto.AdminSessionDetailResponse}
// @Failure 404 {object} dto.ErrorResponse
// @Router /admin/sessions/{id} [get]
func (h *AdminHandler) GetSession(c *fiber.Ctx) error {
	resp, err := h.admin.GetSession(c.UserContext(), pathID(c, "id"))
	if err != nil {
		return err
	}
	return ok(c, "Session retrieved successfully", resp)
}

// SessionQuestions godoc
// @Summary A session's questions
// @Tags admin
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Session ID"
// @Success 200 {object} dto.SuccessResponse{data=[]dto.QuestionResponse}
// @Router /admin/sessions/{id}/questions [get]
func (h *AdminHandler) SessionQuestions(c *fiber.Ctx) error {
	resp, err := h.admin.SessionQuestions(c.UserContext(), pathID(c, "id"))
	if err != nil {
		return err
	}
	return ok(c, "Questions retrieved successfully", resp)
}

// SessionMaterials godoc
// @Summary A session's study materials
// @Tags admin
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Session ID"
// @Success 200 {object} dto.SuccessResponse{data=[]dto.StudyMaterialResponse}
// @Router /admin/sessions/{id}/study-materials [get]
func (h *AdminHandler) SessionMaterials(c *fiber.Ctx) error {
	resp, err := h.admin.SessionMaterials(c.UserContext(), pathID(c, "id"))
	if err != nil {
		return err
	}
	return ok(c, "Study materials retrieved successfully", resp)
}

// DeleteSession godoc
// @Summary Delete any session with its dependents
// @Tags admin
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Session ID"
// @Success 200 {object} dto.MessageResponse
// @Router /admin/sessions/{id} [delete]
func (h *AdminHandler) DeleteSession(c *fiber.Ctx) error {
	if err := h.admin.DeleteSession(c.UserContext(), pathID(c, "id")); err != nil {
		return err
	}
	return ok(c, "Session deleted successfully", nil)
}

// MaterialsByQuestion godoc
// @Summary Study materials for a question
// @Tags admin
// @Produce json
// @Security ApiKeyAuth
// @Param questionId path string true "Question ID"
// @Param session_id query string false "Restrict to one session"
// @Success 200 {object} dto.SuccessResponse{data=[]dto.StudyMaterialResponse}
// @Router /admin/study-materials/question/{questionId} [get]
func (h *AdminHandler) MaterialsByQuestion(c *fiber.Ctx) error {
	resp, err := h.admin.MaterialsByQuestion(c.UserContext(), pathID(c, "questionId"), c.Query("session_id"))
	if err != nil {
		return err
	}
	return ok(c, "Study materials retrieved successfully", resp)
}

// SystemStatus godoc
// @Summary Request latency, error rate and database usage
// @Tags admin
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} dto.SuccessResponse{data=dto.SystemStatusResponse}
// @Router /admin/system/status [get]
func (h *AdminHandler) SystemStatus(c *fiber.Ctx) error {
	resp, err := h.system.Status(c.UserContext())
	if err != nil {
		return err
	}
	return ok(c, "System status retrieved successfully", resp)
}

// SystemMetrics godoc
// @Summary Runtime and database connection metrics
// @Tags admin
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} dto.SuccessResponse{data=dto.SystemMetricsResponse}
// @Router /admin/system/metrics [get]
func (h *AdminHandler) SystemMetrics(c *fiber.Ctx) error {
	resp, err := h.system.Metrics(c.UserContext())
	if err != nil {
		return err
	}
	return ok(c, "System metrics retrieved successfully", resp)
}

// Health godoc
// @Summary Admin API liveness
// @Tags admin
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} dto.HealthResponse
// @Router /admin/health [get]
func (h *AdminHandler) Health(c *fiber.Ctx) error {
	return c.JSON(dto.HealthResponse{Status: "healthy", Service: "admin-api", Timestamp: h.now()})
}
