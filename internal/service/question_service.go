package service

import (
	"context"
	"errors"
	"time"

	"interview-prep/internal/domain"
	"interview-prep/internal/dto"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// QuestionService edits questions inside a session the caller owns.
type QuestionService interface {
	AddQuestions(ctx context.Context, userID primitive.ObjectID, sessionID primitive.ObjectID, inputs []dto.QuestionInput) ([]dto.QuestionResponse, error)
	TogglePin(ctx context.Context, userID, questionID primitive.ObjectID) (*dto.QuestionResponse, error)
	UpdateNote(ctx context.Context, userID, questionID primitive.ObjectID, note string) (*dto.QuestionResponse, error)
}

type questionServiceImpl struct {
	sessions  domain.SessionRepository
	questions domain.QuestionRepository
}

func NewQuestionService(sessions domain.SessionRepository, questions domain.QuestionRepository) QuestionService {
	return &questionServiceImpl{sessions: sessions, questions: questions}
}

func (s *questionServiceImpl) AddQuestions(ctx context.Context, userID, sessionID primitive.ObjectID, inputs []dto.QuestionInput) ([]dto.QuestionResponse, error) {
	session, err := ownedSession(ctx, s.sessions, sessionID, userID)
	if err != nil {
		return nil, err
	}
	questions := newQuestions(session.ID, inputs, time.Now().UTC())
	ids, err := s.questions.InsertMany(ctx, questions)
	if err != nil {
		return nil, domain.NewInternalError("Failed to save questions", err)
	}
	if err := s.sessions.AppendQuestions(ctx, session.ID, ids); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NewNotFoundError("Session not found")
		}
		return nil, domain.NewInternalError("Failed to attach questions", err)
	}
	return toQuestionResponses(questions), nil
}

// ownedQuestion loads a question whose session belongs to userID.
func (s *questionServiceImpl) ownedQuestion(ctx context.Context, userID, questionID primitive.ObjectID) (*domain.Question, error) {
	q, err := s.questions.GetByID(ctx, questionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NewNotFoundError("Question not found")
		}
		return nil, domain.NewInternalError("Failed to load question", err)
	}
	if _, err := ownedSession(ctx, s.sessions, q.Session, userID); err != nil {
		return nil, err
	}
	return q, nil
}

func (s *questionServiceImpl) TogglePin(ctx context.Context, userID, questionID primitive.ObjectID) (*dto.QuestionResponse, error) {
	q, err := s.ownedQuestion(ctx, userID, questionID)
	if err != nil {
		return nil, err
	}
	if err := s.questions.SetPinned(ctx, q.ID, !q.IsPinned); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NewNotFoundError("Question not found")
		}
		return nil, domain.NewInternalError("Failed to update question", err)
	}
	q.IsPinned = !q.IsPinned
	q.UpdatedAt = time.Now().UTC()
	resp := toQuestionResponse(q)
	return &resp, nil
}

func (s *questionServiceImpl) UpdateNote(ctx context.Context, userID, questionID primitive.ObjectID, note string) (*dto.QuestionResponse, error) {
	q, err := s.ownedQuestion(ctx, userID, questionID)
	if err != nil {
		return nil, err
	}
	if err := s.questions.SetNote(ctx, q.ID, note); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NewNotFoundError("Question not found")
		}
		return nil, domain.NewInternalError("Failed to update question", err)
	}
	q.Note = note
	q.UpdatedAt = time.Now().UTC()
	resp := toQuestionResponse(q)
	return &resp, nil
}
