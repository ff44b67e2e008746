package handler

import (
	"interview-prep/internal/dto"
	"interview-prep/internal/middleware"
	"interview-prep/internal/service"
	"interview-prep/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// QuizHandler handles quiz-related HTTP requests
type QuizHandler struct {
	quizzes service.QuizService
	bind    binder
}

func NewQuizHandler(quizzes service.QuizService, v *validation.Validator) *QuizHandler {
	return &QuizHandler{quizzes: quizzes, bind: binder{v: v}}
}

// Generate godoc
// @Summary Generate a multiple-choice quiz from a session
// @Tags quiz
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body dto.GenerateQuizRequest true "Session and size"
// @Success 201 {object} dto.SuccessResponse{data=dto.GeneratedQuizResponse}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /quiz/generate [post]
func (h *QuizHandler) Generate(c *fiber.Ctx) error {
	var req dto.GenerateQuizRequest
	if err := h.bind.body(c, &req); err != nil {
		return err
	}
	sessionID, err := h.bind.objectID("sessionId", req.SessionID)
	if err != nil {
		return err
	}
	resp, err := h.quizzes.Generate(c.UserContext(), middleware.CurrentUser(c), sessionID, req.NumberOfQuestions)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusCreated, "Quiz generated successfully", resp)
}

// Submit godoc
// @Summary Submit answers for grading
// @Tags quiz
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Quiz ID"
// @Param request body dto.SubmitQuizRequest true "Answers"
// @Success 200 {object} dto.SuccessResponse{data=dto.QuizResultResponse}
// @Failure 400 {object} dto.ErrorResponse "Already submitted or answers malformed"
// @Router /quiz/{id}/submit [post]
func (h *QuizHandler) Submit(c *fiber.Ctx) error {
	var req dto.SubmitQuizRequest
	if err := h.bind.body(c, &req); err != nil {
		return err
	}
	resp, err := h.quizzes.Submit(c.UserContext(), middleware.CurrentUser(c), pathID(c, "id"), &req)
	if err != nil {
		return err
	}
	return ok(c, "Quiz submitted successfully", resp)
}

// Results godoc
// @Summary A quiz with its grading
// @Tags quiz
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Quiz ID"
// @Success 200 {object} dto.SuccessResponse{data=dto.QuizResponse}
// @Router /quiz/{id}/results [get]
func (h *QuizHandler) Results(c *fiber.Ctx) error {
	resp, err := h.quizzes.Results(c.UserContext(), middleware.CurrentUserID(c), pathID(c, "id"))
	if err != nil {
		return err
	}
	return ok(c, "Quiz results retrieved successfully", resp)
}

// BySession godoc
// @Summary Caller's quizzes for a session, newest first
// @Tags quiz
// @Produce json
// @Security ApiKeyAuth
// @Param sessionId path string true "Session ID"
// @Success 200 {object} dto.SuccessResponse{data=[]dto.QuizResponse}
// @Router /quiz/session/{sessionId} [get]
func (h *QuizHandler) BySession(c *fiber.Ctx) error {
	resp, err := h.quizzes.ListBySession(c.UserContext(), middleware.CurrentUserID(c), pathID(c, "sessionId"))
	if err != nil {
		return err
	}
	return ok(c, "Quizzes retrieved successfully", resp)
}

// Delete godoc
// @Summary Delete a quiz
// @Tags quiz
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Quiz ID"
// @Success 200 {object} dto.MessageResponse
// @Router /quiz/{id} [delete]
func (h *QuizHandler) Delete(c *fiber.Ctx) error {
	if err := h.quizzes.Delete(c.UserContext(), middleware.CurrentUserID(c), pathID(c, "id")); err != nil {
		return err
	}
	return ok(c, "Quiz deleted successfully", nil)
}

// Analytics godoc
// @Summary Score statistics for a session's quizzes
// @Tags quiz
// @Produce json
// @Security ApiKeyAuth
// @Param sessionId path string true "Session ID"
// @Param range query string false "week, month or all"
// @Success 200 {object} dto.SuccessResponse{data=dto.QuizAnalyticsResponse}
// @Router /quiz/session/{sessionId}/analytics [get]
func (h *QuizHandler) Analytics(c *fiber.Ctx) error {
	resp, err := h.quizzes.Analytics(c.UserContext(), middleware.CurrentUserID(c), pathID(c, "sessionId"), c.Query("range", "all"))
	if err != nil {
		return err
	}
	return ok(c, "Quiz analytics retrieved successfully", resp)
}

// Topics godoc
// @Summary Performance per session topic
// @Tags quiz
// @Produce json
// @Security ApiKeyAuth
// @Param sessionId path string true "Session ID"
// @Success 200 {object} dto.SuccessResponse{data=dto.TopicPerformanceResponse}
// @Router /quiz/session/{sessionId}/topics [get]
func (h *QuizHandler) Topics(c *fiber.Ctx) error {
	resp, err := h.quizzes.TopicPerformance(c.UserContext(), middleware.CurrentUserID(c), pathID(c, "sessionId"))
	if err != nil {
		return err
	}
	return ok(c, "Topic performance retrieved successfully", resp)
}

// TrackTime godoc
// @Summary Record when a question was reached
// @Tags quiz
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Quiz ID"
// @Param request body dto.TrackTimeRequest true "Question index"
// @Success 200 {object} dto.MessageResponse
// @Router /quiz/{id}/track-time [post]
func (h *QuizHandler) TrackTime(c *fiber.Ctx) error {
	var req dto.TrackTimeRequest
	if err := h.bind.body(c, &req); err != nil {
		return err
	}
	if err := h.quizzes.TrackTime(c.UserContext(), middleware.CurrentUserID(c), pathID(c, "id"), req.QuestionIndex); err != nil {
		return err
	}
	return ok(c, "Time tracked", nil)
}
