package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"interview-prep/internal/domain"
	"interview-prep/internal/dto"
	"interview-prep/internal/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ownedSession loads a session and checks that userID owns it.
func ownedSession(ctx context.Context, sessions domain.SessionRepository, id, userID primitive.ObjectID) (*domain.Session, error) {
	session, err := sessions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NewNotFoundError("Session not found")
		}
		return nil, domain.NewInternalError("Failed to load session", err)
	}
	if session.User != userID {
		return nil, domain.NewForbiddenError("Not authorized to access this session")
	}
	return session, nil
}

func newQuestions(sessionID primitive.ObjectID, inputs []dto.QuestionInput, now time.Time) []*domain.Question {
	out := make([]*domain.Question, 0, len(inputs))
	for _, in := range inputs {
		out = append(out, &domain.Question{
			Session:   sessionID,
			Question:  strings.TrimSpace(in.Question),
			Answer:    in.Answer,
			Topic:     in.Topic,
			IsPinned:  in.IsPinned,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	return out
}

// SessionService manages a user's preparation sessions.
type SessionService interface {
	CreateSession(ctx context.Context, userID primitive.ObjectID, req *dto.CreateSessionRequest) (*dto.SessionResponse, error)
	MySessions(ctx context.Context, userID primitive.ObjectID) ([]dto.SessionResponse, error)
	GetSession(ctx context.Context, userID, sessionID primitive.ObjectID) (*dto.SessionResponse, error)
	DeleteSession(ctx context.Context, userID, sessionID primitive.ObjectID) error
}

type sessionServiceImpl struct {
	sessions  domain.SessionRepository
	questions domain.QuestionRepository
	purger    *Purger
}

func NewSessionService(sessions domain.SessionRepository, questions domain.QuestionRepository, purger *Purger) SessionService {
	return &sessionServiceImpl{sessions: sessions, questions: questions, purger: purger}
}

func (s *sessionServiceImpl) CreateSession(ctx context.Context, userID primitive.ObjectID, req *dto.CreateSessionRequest) (*dto.SessionResponse, error) {
	session := &domain.Session{
		User:          userID,
		Role:          strings.TrimSpace(req.Role),
		Experience:    req.Experience.String(),
		TopicsToFocus: req.TopicsToFocus,
		Description:   req.Description,
		Status:        domain.SessionStatusActive,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, domain.NewInternalError("Failed to create session", err)
	}

	var questions []*domain.Question
	if len(req.Questions) > 0 {
		questions = newQuestions(session.ID, req.Questions, session.CreatedAt)
		ids, err := s.questions.InsertMany(ctx, questions)
		if err != nil {
			s.discard(ctx, session.ID)
			return nil, domain.NewInternalError("Failed to save questions", err)
		}
		if err := s.sessions.SetQuestions(ctx, session.ID, ids); err != nil {
			s.discard(ctx, session.ID)
			return nil, domain.NewInternalError("Failed to attach questions", err)
		}
		session.Questions = ids
	}

	logger.Get().Info("Session created",
		zap.String("sessionID", session.ID.Hex()),
		zap.String("userID", userID.Hex()),
		zap.Int("questions", len(questions)))
	resp := toSessionResponse(session, questions)
	return &resp, nil
}

// discard removes a half-created session along with any questions already
// written for it.
func (s *sessionServiceImpl) discard(ctx context.Context, id primitive.ObjectID) {
	if err := s.purger.PurgeSessions(context.WithoutCancel(ctx), []primitive.ObjectID{id}); err != nil {
		logger.Get().Error("Failed to discard incomplete session", zap.String("sessionID", id.Hex()), zap.Error(err))
	}
}

func (s *sessionServiceImpl) MySessions(ctx context.Context, userID primitive.ObjectID) ([]dto.SessionResponse, error) {
	sessions, err := s.sessions.ListByUser(ctx, userID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to list sessions", err)
	}
	out := make([]dto.SessionResponse, 0, len(sessions))
	for _, session := range sessions {
		questions, err := s.questions.ListByIDs(ctx, session.Questions)
		if err != nil {
			return nil, domain.NewInternalError("Failed to load session questions", err)
		}
		out = append(out, toSessionResponse(session, questions))
	}
	return out, nil
}

func (s *sessionServiceImpl) GetSession(ctx context.Context, userID, sessionID primitive.ObjectID) (*dto.SessionResponse, error) {
	session, err := ownedSession(ctx, s.sessions, sessionID, userID)
	if err != nil {
		return nil, err
	}
	questions, err := s.questions.ListBySession(ctx, session.ID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to load session questions", err)
	}
	resp := toSessionResponse(session, questions)
	return &resp, nil
}

func (s *sessionServiceImpl) DeleteSession(ctx context.Context, userID, sessionID primitive.ObjectID) error {
	session, err := ownedSession(ctx, s.sessions, sessionID, userID)
	if err != nil {
		return err
	}
	if err := s.purger.PurgeSessions(ctx, []primitive.ObjectID{session.ID}); err != nil {
		return domain.NewInternalError("Failed to delete session", err)
	}
	return nil
}
