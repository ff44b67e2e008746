package handler

import (
	"strconv"

	"interview-prep/internal/dto"
	"interview-prep/internal/middleware"
	"interview-prep/internal/service"
	"interview-prep/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// SessionHandler serves interview sessions, their questions and exports.
type SessionHandler struct {
	sessions  service.SessionService
	questions service.QuestionService
	export    service.ExportService
	bind      binder
}

func NewSessionHandler(sessions service.SessionService, questions service.QuestionService, export service.ExportService, v *validation.Validator) *SessionHandler {
	return &SessionHandler{sessions: sessions, questions: questions, export: export, bind: binder{v: v}}
}

// Create godoc
// @Summary Create a session with optional initial questions
// @Tags sessions
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body dto.CreateSessionRequest true "Session"
// @Success 201 {object} dto.SuccessResponse{data=dto.SessionResponse}
// @Failure 400 {object} dto.ErrorResponse
// @Router /sessions/create [post]
func (h *SessionHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateSessionRequest
	if err := h.bind.body(c, &req); err != nil {
		return err
	}
	resp, err := h.sessions.CreateSession(c.UserContext(), middleware.CurrentUserID(c), &req)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusCreated, "Session created successfully", resp)
}

// Mine godoc
// @Summary Caller's sessions, newest first
// @Tags sessions
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} dto.SuccessResponse{data=[]dto.SessionResponse}
// @Router /sessions/my-sessions [get]
func (h *SessionHandler) Mine(c *fiber.Ctx) error {
	resp, err := h.sessions.MySessions(c.UserContext(), middleware.CurrentUserID(c))
	if err != nil {
		return err
	}
	return ok(c, "Sessions retrieved successfully", resp)
}

// Get godoc
// @Summary One session with its questions, pinned first
// @Tags sessions
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Session ID"
// @Success 200 {object} dto.SuccessResponse{data=dto.SessionResponse}
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /sessions/{id} [get]
func (h *SessionHandler) Get(c *fiber.Ctx) error {
	resp, err := h.sessions.GetSession(c.UserContext(), middleware.CurrentUserID(c), pathID(c, "id"))
	if err != nil {
		return err
	}
	return ok(c, "Session retrieved successfully", resp)
}

// Delete godoc
// @Summary Delete a session with its questions, quizzes and study materials
// @Tags sessions
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Session ID"
// @Success 200 {object} dto.MessageResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /sessions/{id} [delete]
func (h *SessionHandler) Delete(c *fiber.Ctx) error {
	if err := h.sessions.DeleteSession(c.UserContext(), middleware.CurrentUserID(c), pathID(c, "id")); err != nil {
		return err
	}
	return ok(c, "Session deleted successfully", nil)
}

// Export godoc
// @Summary Download the session as a standalone HTML document
// @Tags sessions
// @Produce html
// @Security ApiKeyAuth
// @Param id path string true "Session ID"
// @Success 200 {file} file
// @Failure 403 {object} dto.ErrorResponse
// @Router /sessions/{id}/export [get]
func (h *SessionHandler) Export(c *fiber.Ctx) error {
	doc, err := h.export.ExportSession(c.UserContext(), middleware.CurrentUserID(c), pathID(c, "id"))
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, doc.ContentType)
	c.Set(fiber.HeaderContentDisposition, "attachment; filename="+strconv.Quote(doc.Filename))
	return c.Send(doc.Body)
}

// AddQuestions godoc
// @Summary Append questions to a session
// @Tags questions
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body dto.AddQuestionsRequest true "Questions"
// @Success 201 {object} dto.SuccessResponse{data=[]dto.QuestionResponse}
// @Router /questions/add [post]
func (h *SessionHandler) AddQuestions(c *fiber.Ctx) error {
	var req dto.AddQuestionsRequest
	if err := h.bind.body(c, &req); err != nil {
		return err
	}
	sessionID, err := h.bind.objectID("sessionId", req.SessionID)
	if err != nil {
		return err
	}
	resp, err := h.questions.AddQuestions(c.UserContext(), middleware.CurrentUserID(c), sessionID, req.Questions)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusCreated, "Questions added to session successfully", resp)
}

// TogglePin godoc
// @Summary Toggle a question's pin
// @Tags questions
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Question ID"
// @Success 200 {object} dto.SuccessResponse{data=dto.QuestionResponse}
// @Router /questions/{id}/pin [post]
func (h *SessionHandler) TogglePin(c *fiber.Ctx) error {
	resp, err := h.questions.TogglePin(c.UserContext(), middleware.CurrentUserID(c), pathID(c, "id"))
	if err != nil {
		return err
	}
	return ok(c, "Question pin updated", resp)
}

// UpdateNote godoc
// @Summary Set a question's note
// @Tags questions
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Question ID"
// @Param request body dto.NoteRequest true "Note"
// @Success 200 {object} dto.SuccessResponse{data=dto.QuestionResponse}
// @Router /questions/{id}/note [post]
func (h *SessionHandler) UpdateNote(c *fiber.Ctx) error {
	var req dto.NoteRequest
	if len(c.Body()) > 0 {
		if err := h.bind.body(c, &req); err != nil {
			return err
		}
	}
	resp, err := h.questions.UpdateNote(c.UserContext(), middleware.CurrentUserID(c), pathID(c, "id"), req.Note)
	if err != nil {
		return err
	}
	return ok(c, "Question note updated", resp)
}
