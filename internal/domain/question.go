package domain

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Question is one prompt/answer pair belonging to a session.
type Question struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Session   primitive.ObjectID `bson:"session"`
	Question  string             `bson:"question"`
	Answer    string             `bson:"answer"`
	Topic     string             `bson:"topic,omitempty"`
	IsPinned  bool               `bson:"isPinned"`
	Note      string             `bson:"note"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

// QuestionRepository persists questions.
type QuestionRepository interface {
	// InsertMany stores questions in slice order and fills in their ids.
	InsertMany(ctx context.Context, questions []*Question) ([]primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*Question, error)
	// ListBySession orders pinned questions first, then by creation time.
	ListBySession(ctx context.Context, sessionID primitive.ObjectID) ([]*Question, error)
	ListByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*Question, error)
	// FirstBySession returns up to limit questions in creation order.
	FirstBySession(ctx context.Context, sessionID primitive.ObjectID, limit int64) ([]*Question, error)
	SetPinned(ctx context.Context, id primitive.ObjectID, pinned bool) error
	SetNote(ctx context.Context, id primitive.ObjectID, note string) error
	DeleteBySessions(ctx context.Context, sessionIDs []primitive.ObjectID) (int64, error)
	CountBySessions(ctx context.Context, sessionIDs []primitive.ObjectID) (int64, error)
}
