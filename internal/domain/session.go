package domain

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	SessionStatusActive    = "active"
	SessionStatusCompleted = "completed"
)

// Session is one interview-preparation run owned by a user. Questions keeps
// question ids in insertion order.
type Session struct {
	ID            primitive.ObjectID   `bson:"_id,omitempty"`
	User          primitive.ObjectID   `bson:"user"`
	Role          string               `bson:"role"`
	Experience    string               `bson:"experience"`
	TopicsToFocus string               `bson:"topicsToFocus"`
	Description   string               `bson:"description"`
	Questions     []primitive.ObjectID `bson:"questions"`
	Status        string               `bson:"status"`
	Duration      *float64             `bson:"duration,omitempty"`
	CreatedAt     time.Time            `bson:"createdAt"`
	UpdatedAt     time.Time            `bson:"updatedAt"`
}

// SessionFilter narrows the admin session listing.
type SessionFilter struct {
	Search string
	Status string
	Page   int
	Limit  int
}

// SessionWithOwner is a session row in the admin listing.
type SessionWithOwner struct {
	Session       `bson:",inline"`
	OwnerName     string `bson:"ownerName"`
	OwnerEmail    string `bson:"ownerEmail"`
	QuestionCount int    `bson:"questionCount"`
}

// SessionRepository persists sessions.
type SessionRepository interface {
	Create(ctx context.Context, session *Session) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*Session, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]*Session, error)
	SetQuestions(ctx context.Context, id primitive.ObjectID, questionIDs []primitive.ObjectID) error
	AppendQuestions(ctx context.Context, id primitive.ObjectID, questionIDs []primitive.ObjectID) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	IDsByUser(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error)
	DeleteMany(ctx context.Context, ids []primitive.ObjectID) (int64, error)
	List(ctx context.Context, filter SessionFilter) ([]*SessionWithOwner, int64, error)
}
