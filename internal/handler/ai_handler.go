package handler

import (
	"interview-prep/internal/dto"
	"interview-prep/internal/middleware"
	"interview-prep/internal/service"
	"interview-prep/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// AIHandler exposes direct text generation with the caller's Gemini key.
type AIHandler struct {
	ai   service.AIService
	bind binder
}

func NewAIHandler(ai service.AIService, v *validation.Validator) *AIHandler {
	return &AIHandler{ai: ai, bind: binder{v: v}}
}

// GenerateQuestions godoc
// @Summary Generate interview questions with answers
// @Tags ai
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body dto.GenerateQuestionsRequest true "Role and topics"
// @Success 200 {array} dto.QAPair
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 429 {object} dto.ErrorResponse
// @Router /ai/generate-questions [post]
func (h *AIHandler) GenerateQuestions(c *fiber.Ctx) error {
	var req dto.GenerateQuestionsRequest
	if err := h.bind.body(c, &req); err != nil {
		return err
	}
	resp, err := h.ai.GenerateQuestions(c.UserContext(), middleware.CurrentUser(c), &req)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// GenerateExplanation godoc
// @Summary Explain a concept
// @Tags ai
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body dto.ExplanationRequest true "Question"
// @Success 200 {object} dto.ExplanationResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /ai/generate-explanation [post]
func (h *AIHandler) GenerateExplanation(c *fiber.Ctx) error {
	var req dto.ExplanationRequest
	if err := h.bind.body(c, &req); err != nil {
		return err
	}
	resp, err := h.ai.GenerateExplanation(c.UserContext(), middleware.CurrentUser(c), &req)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// Followup godoc
// @Summary Answer a follow-up question in context
// @Tags ai
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body dto.FollowupRequest true "Context and question"
// @Success 200 {object} dto.FollowupResponse
// @Router /ai/followup [post]
func (h *AIHandler) Followup(c *fiber.Ctx) error {
	var req dto.FollowupRequest
	if err := h.bind.body(c, &req); err != nil {
		return err
	}
	resp, err := h.ai.Followup(c.UserContext(), middleware.CurrentUser(c), &req)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}
