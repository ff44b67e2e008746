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

type mongoStudyMaterialRepository struct {
	coll *mongo.Collection
}

func NewMongoStudyMaterialRepository(db *mongo.Database) domain.StudyMaterialRepository {
	return &mongoStudyMaterialRepository{coll: db.Collection(database.CollStudyMaterials)}
}

func (r *mongoStudyMaterialRepository) findOne(ctx context.Context, filter bson.M, op string) (*domain.StudyMaterial, error) {
	var m domain.StudyMaterial
	if err := r.coll.FindOne(ctx, filter).Decode(&m); err != nil {
		return nil, wrapErr(op, err)
	}
	return &m, nil
}

func (r *mongoStudyMaterialRepository) GetByQuestionAndUser(ctx context.Context, questionID, userID string) (*domain.StudyMaterial, error) {
	return r.findOne(ctx, bson.M{"question_id": questionID, "user_id": userID}, "get study material")
}

func (r *mongoStudyMaterialRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.StudyMaterial, error) {
	return r.findOne(ctx, byID(id), "get study material")
}

// Upsert replaces the content for (question_id, user_id). created_at is only
// written when the document is first inserted.
func (r *mongoStudyMaterialRepository) Upsert(ctx context.Context, m *domain.StudyMaterial) (*domain.StudyMaterial, error) {
	now := time.Now().UTC()
	m.UpdatedAt = now
	m.Normalize()

	raw, err := bson.Marshal(m)
	if err != nil {
		return nil, wrapErr("encode study material", err)
	}
	var set bson.M
	if err := bson.Unmarshal(raw, &set); err != nil {
		return nil, wrapErr("encode study material", err)
	}
	delete(set, "_id")
	delete(set, "created_at")

	created := m.CreatedAt
	if created.IsZero() {
		created = now
	}

	filter := bson.M{"question_id": m.QuestionID, "user_id": m.UserID}
	update := bson.M{
		"$set":         set,
		"$setOnInsert": bson.M{"created_at": created},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var stored domain.StudyMaterial
	if err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&stored); err != nil {
		return nil, wrapErr("upsert study material", err)
	}
	return &stored, nil
}

func (r *mongoStudyMaterialRepository) list(ctx context.Context, filter bson.M, op string) ([]*domain.StudyMaterial, error) {
	cur, err := r.coll.Find(ctx, filter, sortBy(bson.E{Key: "created_at", Value: -1}))
	return findAll[domain.StudyMaterial](ctx, cur, err, op)
}

func (r *mongoStudyMaterialRepository) ListBySessionAndUser(ctx context.Context, sessionID, userID string) ([]*domain.StudyMaterial, error) {
	return r.list(ctx, bson.M{"session_id": sessionID, "user_id": userID}, "list study materials")
}

func (r *mongoStudyMaterialRepository) ListBySession(ctx context.Context, sessionID string) ([]*domain.StudyMaterial, error) {
	return r.list(ctx, bson.M{"session_id": sessionID}, "list study materials")
}

// ListByQuestion lists every user's materials for a question, optionally
// narrowed to one session.
func (r *mongoStudyMaterialRepository) ListByQuestion(ctx context.Context, questionID, sessionID string) ([]*domain.StudyMaterial, error) {
	filter := bson.M{"question_id": questionID}
	if sessionID != "" {
		filter["session_id"] = sessionID
	}
	return r.list(ctx, filter, "list study materials by question")
}

func (r *mongoStudyMaterialRepository) DeleteOwned(ctx context.Context, id primitive.ObjectID, userID string) (int64, error) {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id, "user_id": userID})
	if err != nil {
		return 0, wrapErr("delete study material", err)
	}
	return res.DeletedCount, nil
}

func (r *mongoStudyMaterialRepository) DeleteBySessions(ctx context.Context, sessionIDs []string) (int64, error) {
	if len(sessionIDs) == 0 {
		return 0, nil
	}
	res, err := r.coll.DeleteMany(ctx, bson.M{"session_id": bson.M{"$in": sessionIDs}})
	if err != nil {
		return 0, wrapErr("delete study materials", err)
	}
	return res.DeletedCount, nil
}

func (r *mongoStudyMaterialRepository) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.M{"user_id": userID})
	if err != nil {
		return 0, wrapErr("delete study materials", err)
	}
	return res.DeletedCount, nil
}

func (r *mongoStudyMaterialRepository) CountBySession(ctx context.Context, sessionID string) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"session_id": sessionID})
	return n, wrapErr("count study materials", err)
}

var _ domain.StudyMaterialRepository = (*mongoStudyMaterialRepository)(nil)
