package domain

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DayCount is a per-day counter.
type DayCount struct {
	Date  string `bson:"date" json:"date"`
	Count int64  `bson:"count" json:"count"`
}

// TopUser ranks users by questions per session.
type TopUser struct {
	ID              primitive.ObjectID `bson:"_id" json:"id"`
	Name            string             `bson:"name" json:"name"`
	Email           string             `bson:"email" json:"email"`
	ProfileImageURL string             `bson:"profileImageUrl" json:"profileImageUrl"`
	Sessions        int                `bson:"sessions" json:"sessions"`
	Questions       int                `bson:"questions" json:"questions"`
	Score           float64            `bson:"score" json:"score"`
}

// LabelCount is a generic grouped count.
type LabelCount struct {
	Label string `bson:"_id" json:"label"`
	Count int64  `bson:"count" json:"count"`
}

// SessionAverages holds averages over sessions with a recorded duration.
type SessionAverages struct {
	AvgDuration  float64 `bson:"avgDuration" json:"avgDuration"`
	AvgQuestions float64 `bson:"avgQuestions" json:"avgQuestions"`
	Found        bool    `bson:"-" json:"-"`
}

// CollectionCounts is the document count of each collection.
type CollectionCounts struct {
	Users          int64 `json:"users"`
	Sessions       int64 `json:"sessions"`
	Questions      int64 `json:"questions"`
	StudyMaterials int64 `json:"materials"`
	Quizzes        int64 `json:"quizzes"`
}

func (c CollectionCounts) Total() int64 {
	return c.Users + c.Sessions + c.Questions + c.StudyMaterials + c.Quizzes
}

// StatsRepository runs the read-only aggregation pipelines behind the admin
// dashboard. Each query is independent of the others.
type StatsRepository interface {
	CollectionCounts(ctx context.Context) (CollectionCounts, error)
	CountUsersActiveSince(ctx context.Context, since time.Time) (int64, error)
	CountUsersCreatedSince(ctx context.Context, since time.Time) (int64, error)
	CountSessionsCreatedSince(ctx context.Context, since time.Time) (int64, error)
	CountSessionsByStatus(ctx context.Context, status string) (int64, error)
	UsersByRole(ctx context.Context) ([]LabelCount, error)
	SessionsByRole(ctx context.Context) ([]LabelCount, error)
	SessionsPerDay(ctx context.Context, from, to time.Time) ([]DayCount, error)
	TopUsers(ctx context.Context, limit int64) ([]TopUser, error)
	RecentUsers(ctx context.Context, limit int64) ([]*User, error)
	SessionAverages(ctx context.Context) (SessionAverages, error)
	CountUserSessionsByStatus(ctx context.Context, userID primitive.ObjectID, status string) (int64, error)
	DataSizeBytes(ctx context.Context) (float64, error)
	ActiveConnections(ctx context.Context) (int64, error)
}
