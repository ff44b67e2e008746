package service

import (
	"context"
	"fmt"

	"interview-prep/internal/domain"
	"interview-prep/internal/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Purger removes sessions and users together with everything that hangs off
// them. Children are deleted before their parent so an interrupted purge
// leaves the parent reachable for a retry.
type Purger struct {
	users     domain.UserRepository
	sessions  domain.SessionRepository
	questions domain.QuestionRepository
	quizzes   domain.QuizRepository
	materials domain.StudyMaterialRepository
}

func NewPurger(
	users domain.UserRepository,
	sessions domain.SessionRepository,
	questions domain.QuestionRepository,
	quizzes domain.QuizRepository,
	materials domain.StudyMaterialRepository,
) *Purger {
	return &Purger{users: users, sessions: sessions, questions: questions, quizzes: quizzes, materials: materials}
}

// PurgeSessions deletes the questions, quizzes and study materials of the
// given sessions, then the sessions.
func (p *Purger) PurgeSessions(ctx context.Context, ids []primitive.ObjectID) error {
	if len(ids) == 0 {
		return nil
	}
	hexIDs := make([]string, len(ids))
	for i, id := range ids {
		hexIDs[i] = id.Hex()
	}

	questions, err := p.questions.DeleteBySessions(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to delete session questions: %w", err)
	}
	quizzes, err := p.quizzes.DeleteBySessions(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to delete session quizzes: %w", err)
	}
	materials, err := p.materials.DeleteBySessions(ctx, hexIDs)
	if err != nil {
		return fmt.Errorf("failed to delete session study materials: %w", err)
	}
	sessions, err := p.sessions.DeleteMany(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to delete sessions: %w", err)
	}

	logger.Get().Info("Sessions purged",
		zap.Int64("sessions", sessions),
		zap.Int64("questions", questions),
		zap.Int64("quizzes", quizzes),
		zap.Int64("materials", materials))
	return nil
}

// PurgeUser deletes every session of the user with its children, any study
// materials not tied to those sessions, and finally the user.
func (p *Purger) PurgeUser(ctx context.Context, userID primitive.ObjectID) error {
	ids, err := p.sessions.IDsByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to list user sessions: %w", err)
	}
	if err := p.PurgeSessions(ctx, ids); err != nil {
		return err
	}
	if _, err := p.materials.DeleteByUser(ctx, userID.Hex()); err != nil {
		return fmt.Errorf("failed to delete user study materials: %w", err)
	}
	if err := p.users.Delete(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	logger.Get().Info("User purged", zap.String("userID", userID.Hex()), zap.Int("sessions", len(ids)))
	return nil
}
