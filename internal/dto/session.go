package dto

import "time"

type QuestionInput struct {
	Question string `json:"question" validate:"required"`
	Answer   string `json:"answer" validate:"required"`
	Topic    string `json:"topic"`
	IsPinned bool   `json:"isPinned"`
}

type CreateSessionRequest struct {
	Role          string          `json:"role" validate:"required"`
	Experience    FlexString      `json:"experience" validate:"required"`
	TopicsToFocus string          `json:"topicsToFocus" validate:"required"`
	Description   string          `json:"description"`
	Questions     []QuestionInput `json:"questions" validate:"omitempty,dive"`
}

type QuestionResponse struct {
	ID        string    `json:"_id"`
	Session   string    `json:"session"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Topic     string    `json:"topic,omitempty"`
	IsPinned  bool      `json:"isPinned"`
	Note      string    `json:"note"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// @Description Interview preparation session
type SessionResponse struct {
	ID            string             `json:"_id"`
	User          string             `json:"user"`
	Role          string             `json:"role"`
	Experience    string             `json:"experience"`
	TopicsToFocus string             `json:"topicsToFocus"`
	Description   string             `json:"description"`
	Status        string             `json:"status"`
	Duration      *float64           `json:"duration,omitempty"`
	Questions     []QuestionResponse `json:"questions"`
	QuestionCount int                `json:"questionCount"`
	CreatedAt     time.Time          `json:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt"`
}

type AddQuestionsRequest struct {
	SessionID string          `json:"sessionId" validate:"required"`
	Questions []QuestionInput `json:"questions" validate:"required,min=1,dive"`
}

type NoteRequest struct {
	Note string `json:"note" validate:"max=5000"`
}
