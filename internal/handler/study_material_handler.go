package handler

import (
	"interview-prep/internal/dto"
	"interview-prep/internal/middleware"
	"interview-prep/internal/service"
	"interview-prep/internal/validation"

	"github.com/gofiber/fiber/v2"
)

type StudyMaterialHandler struct {
	materials service.StudyMaterialService
	bind      binder
}

func NewStudyMaterialHandler(materials service.StudyMaterialService, v *validation.Validator) *StudyMaterialHandler {
	return &StudyMaterialHandler{materials: materials, bind: binder{v: v}}
}

// GetOrCreate godoc
// @Summary Curated study resources for a question, regenerated when stale
// @Tags study-materials
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param questionId path string true "Question ID"
// @Param request body dto.StudyMaterialRequest false "Override question text or force a refresh"
// @Success 200 {object} dto.SuccessResponse{data=dto.StudyMaterialResponse}
// @Failure 400 {object} dto.ErrorResponse
// @Router /study-materials/question/{questionId} [post]
func (h *StudyMaterialHandler) GetOrCreate(c *fiber.Ctx) error {
	var req dto.StudyMaterialRequest
	if len(c.Body()) > 0 {
		if err := h.bind.body(c, &req); err != nil {
			return err
		}
	}
	resp, err := h.materials.GetOrCreate(c.UserContext(), middleware.CurrentUser(c), pathID(c, "questionId"), &req)
	if err != nil {
		return err
	}
	return ok(c, "Study materials retrieved successfully", resp)
}

// ByQuestion godoc
// @Summary Stored study resources for a question
// @Tags study-materials
// @Produce json
// @Security ApiKeyAuth
// @Param questionId path string true "Question ID"
// @Success 200 {object} dto.SuccessResponse{data=dto.StudyMaterialResponse}
// @Failure 404 {object} dto.ErrorResponse
// @Router /study-materials/question/{questionId} [get]
func (h *StudyMaterialHandler) ByQuestion(c *fiber.Ctx) error {
	resp, err := h.materials.ByQuestion(c.UserContext(), middleware.CurrentUserID(c), pathID(c, "questionId"))
	if err != nil {
		return err
	}
	return ok(c, "Study materials retrieved successfully", resp)
}

// BySession godoc
// @Summary Caller's study resources for a session, grouped by question
// @Tags study-materials
// @Produce json
// @Security ApiKeyAuth
// @Param sessionId path string true "Session ID"
// @Success 200 {object} dto.SuccessResponse{data=[]dto.QuestionMaterials}
// @Router /study-materials/session/{sessionId} [get]
func (h *StudyMaterialHandler) BySession(c *fiber.Ctx) error {
	resp, err := h.materials.BySession(c.UserContext(), middleware.CurrentUserID(c), pathID(c, "sessionId"))
	if err != nil {
		return err
	}
	return ok(c, "Study materials retrieved successfully", resp)
}

// Refresh godoc
// @Summary Regenerate a stored study material
// @Tags study-materials
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Study material ID"
// @Success 200 {object} dto.SuccessResponse{data=dto.StudyMaterialResponse}
// @Router /study-materials/{id}/refresh [post]
func (h *StudyMaterialHandler) Refresh(c *fiber.Ctx) error {
	resp, err := h.materials.Refresh(c.UserContext(), middleware.CurrentUser(c), pathID(c, "id"))
	if err != nil {
		return err
	}
	return ok(c, "Study materials refreshed successfully", resp)
}

// Delete godoc
// @Summary Delete a stored study material
// @Tags study-materials
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Study material ID"
// @Success 200 {object} dto.MessageResponse
// @Router /study-materials/{id} [delete]
func (h *StudyMaterialHandler) Delete(c *fiber.Ctx) error {
	if err := h.materials.Delete(c.UserContext(), middleware.CurrentUserID(c), pathID(c, "id")); err != nil {
		return err
	}
	return ok(c, "Study materials deleted", nil)
}
