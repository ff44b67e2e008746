package repository

import (
	"context"
	"time"

	"interview-prep/internal/database"
	"interview-prep/internal/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type mongoQuizRepository struct {
	coll *mongo.Collection
}

func NewMongoQuizRepository(db *mongo.Database) domain.QuizRepository {
	return &mongoQuizRepository{coll: db.Collection(database.CollQuizzes)}
}

func (r *mongoQuizRepository) Create(ctx context.Context, q *domain.Quiz) error {
	if q.ID.IsZero() {
		q.ID = primitive.NewObjectID()
	}
	if q.CreatedAt.IsZero() {
		q.CreatedAt = time.Now().UTC()
	}
	if q.Status == "" {
		q.Status = domain.QuizStatusActive
	}
	_, err := r.coll.InsertOne(ctx, q)
	return wrapErr("create quiz", err)
}

func (r *mongoQuizRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Quiz, error) {
	var q domain.Quiz
	if err := r.coll.FindOne(ctx, byID(id)).Decode(&q); err != nil {
		return nil, wrapErr("get quiz", err)
	}
	return &q, nil
}

func activeQuiz(id primitive.ObjectID) bson.M {
	return bson.M{"_id": id, "status": domain.QuizStatusActive}
}

// Complete freezes the quiz. The filter only matches an active quiz, so of
// two concurrent submissions exactly one succeeds.
func (r *mongoQuizRepository) Complete(ctx context.Context, id primitive.ObjectID, sub domain.QuizSubmission) error {
	res, err := r.coll.UpdateOne(ctx, activeQuiz(id), bson.M{"$set": bson.M{
		"status":      domain.QuizStatusCompleted,
		"userAnswers": sub.UserAnswers,
		"score":       sub.Score,
		"percentage":  sub.Percentage,
		"results":     sub.Results,
		"feedback":    sub.Feedback,
		"timeSpent":   sub.TimeSpent,
		"submittedAt": sub.At,
		"completedAt": sub.At,
	}})
	if err != nil {
		return wrapErr("complete quiz", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrConcurrentUpdate
	}
	return nil
}

func (r *mongoQuizRepository) ListBySessionAndUser(ctx context.Context, sessionID, userID primitive.ObjectID, limit int64) ([]*domain.Quiz, error) {
	opts := sortBy(bson.E{Key: "createdAt", Value: -1})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cur, err := r.coll.Find(ctx, bson.M{"sessionId": sessionID, "userId": userID}, opts)
	return findAll[domain.Quiz](ctx, cur, err, "list quizzes")
}

// ListCompleted returns completed quizzes oldest first. A zero since means
// no lower bound.
func (r *mongoQuizRepository) ListCompleted(ctx context.Context, sessionID, userID primitive.ObjectID, since time.Time) ([]*domain.Quiz, error) {
	filter := bson.M{
		"sessionId": sessionID,
		"userId":    userID,
		"status":    domain.QuizStatusCompleted,
	}
	if !since.IsZero() {
		filter["completedAt"] = bson.M{"$gte": since}
	}
	cur, err := r.coll.Find(ctx, filter, sortBy(bson.E{Key: "completedAt", Value: 1}))
	return findAll[domain.Quiz](ctx, cur, err, "list completed quizzes")
}

func (r *mongoQuizRepository) CountBySessionAndUser(ctx context.Context, sessionID, userID primitive.ObjectID) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"sessionId": sessionID, "userId": userID})
	return n, wrapErr("count quizzes", err)
}

// AppendTiming records a timing mark; it returns ErrConcurrentUpdate once
// the quiz is no longer active.
func (r *mongoQuizRepository) AppendTiming(ctx context.Context, id primitive.ObjectID, timing domain.QuestionTiming) error {
	res, err := r.coll.UpdateOne(ctx, activeQuiz(id), bson.M{"$push": bson.M{"questionTimings": timing}})
	if err != nil {
		return wrapErr("track quiz time", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrConcurrentUpdate
	}
	return nil
}

func (r *mongoQuizRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, byID(id))
	if err != nil {
		return wrapErr("delete quiz", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *mongoQuizRepository) DeleteBySessions(ctx context.Context, sessionIDs []primitive.ObjectID) (int64, error) {
	if len(sessionIDs) == 0 {
		return 0, nil
	}
	res, err := r.coll.DeleteMany(ctx, bson.M{"sessionId": bson.M{"$in": sessionIDs}})
	if err != nil {
		return 0, wrapErr("delete quizzes", err)
	}
	return res.DeletedCount, nil
}

var _ domain.QuizRepository = (*mongoQuizRepository)(nil)
