package repository

import (
	"context"
	"time"

	"interview-prep/internal/database"
	"interview-prep/internal/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoQuestionRepository struct {
	coll *mongo.Collection
}

func NewMongoQuestionRepository(db *mongo.Database) domain.QuestionRepository {
	return &mongoQuestionRepository{coll: db.Collection(database.CollQuestions)}
}

// InsertMany assigns ids client-side so the returned slice follows input
// order; the insert itself is ordered.
func (r *mongoQuestionRepository) InsertMany(ctx context.Context, questions []*domain.Question) ([]primitive.ObjectID, error) {
	if len(questions) == 0 {
		return []primitive.ObjectID{}, nil
	}
	now := time.Now().UTC()
	docs := make([]interface{}, 0, len(questions))
	ids := make([]primitive.ObjectID, 0, len(questions))
	for _, q := range questions {
		if q.ID.IsZero() {
			q.ID = primitive.NewObjectID()
		}
		if q.CreatedAt.IsZero() {
			q.CreatedAt = now
		}
		q.UpdatedAt = now
		docs = append(docs, q)
		ids = append(ids, q.ID)
	}
	if _, err := r.coll.InsertMany(ctx, docs, options.InsertMany().SetOrdered(true)); err != nil {
		return nil, wrapErr("insert questions", err)
	}
	return ids, nil
}

func (r *mongoQuestionRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Question, error) {
	var q domain.Question
	if err := r.coll.FindOne(ctx, byID(id)).Decode(&q); err != nil {
		return nil, wrapErr("get question", err)
	}
	return &q, nil
}

func (r *mongoQuestionRepository) ListBySession(ctx context.Context, sessionID primitive.ObjectID) ([]*domain.Question, error) {
	cur, err := r.coll.Find(ctx, bson.M{"session": sessionID}, sortBy(
		bson.E{Key: "isPinned", Value: -1},
		bson.E{Key: "createdAt", Value: 1},
		bson.E{Key: "_id", Value: 1},
	))
	return findAll[domain.Question](ctx, cur, err, "list questions by session")
}

// ListByIDs returns the questions in the order of ids, skipping missing ones.
func (r *mongoQuestionRepository) ListByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*domain.Question, error) {
	if len(ids) == 0 {
		return []*domain.Question{}, nil
	}
	cur, err := r.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	found, err := findAll[domain.Question](ctx, cur, err, "list questions by ids")
	if err != nil {
		return nil, err
	}
	byKey := make(map[primitive.ObjectID]*domain.Question, len(found))
	for _, q := range found {
		byKey[q.ID] = q
	}
	ordered := make([]*domain.Question, 0, len(found))
	for _, id := range ids {
		if q, ok := byKey[id]; ok {
			ordered = append(ordered, q)
		}
	}
	return ordered, nil
}

func (r *mongoQuestionRepository) FirstBySession(ctx context.Context, sessionID primitive.ObjectID, limit int64) ([]*domain.Question, error) {
	opts := sortBy(bson.E{Key: "createdAt", Value: 1}, bson.E{Key: "_id", Value: 1}).SetLimit(limit)
	cur, err := r.coll.Find(ctx, bson.M{"session": sessionID}, opts)
	return findAll[domain.Question](ctx, cur, err, "list first questions")
}

func (r *mongoQuestionRepository) set(ctx context.Context, id primitive.ObjectID, fields bson.M, op string) error {
	fields["updatedAt"] = time.Now().UTC()
	res, err := r.coll.UpdateOne(ctx, byID(id), bson.M{"$set": fields})
	if err != nil {
		return wrapErr(op, err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *mongoQuestionRepository) SetPinned(ctx context.Context, id primitive.ObjectID, pinned bool) error {
	return r.set(ctx, id, bson.M{"isPinned": pinned}, "pin question")
}

func (r *mongoQuestionRepository) SetNote(ctx context.Context, id primitive.ObjectID, note string) error {
	return r.set(ctx, id, bson.M{"note": note}, "update question note")
}

func (r *mongoQuestionRepository) DeleteBySessions(ctx context.Context, sessionIDs []primitive.ObjectID) (int64, error) {
	if len(sessionIDs) == 0 {
		return 0, nil
	}
	res, err := r.coll.DeleteMany(ctx, bson.M{"session": bson.M{"$in": sessionIDs}})
	if err != nil {
		return 0, wrapErr("delete questions", err)
	}
	return res.DeletedCount, nil
}

func (r *mongoQuestionRepository) CountBySessions(ctx context.Context, sessionIDs []primitive.ObjectID) (int64, error) {
	if len(sessionIDs) == 0 {
		return 0, nil
	}
	n, err := r.coll.CountDocuments(ctx, bson.M{"session": bson.M{"$in": sessionIDs}})
	return n, wrapErr("count questions", err)
}

var _ domain.QuestionRepository = (*mongoQuestionRepository)(nil)
