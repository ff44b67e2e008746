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

type mongoSessionRepository struct {
	coll *mongo.Collection
}

func NewMongoSessionRepository(db *mongo.Database) domain.SessionRepository {
	return &mongoSessionRepository{coll: db.Collection(database.CollSessions)}
}

func (r *mongoSessionRepository) Create(ctx context.Context, s *domain.Session) error {
	if s.ID.IsZero() {
		s.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.UpdatedAt = now
	if s.Status == "" {
		s.Status = domain.SessionStatusActive
	}
	if s.Questions == nil {
		s.Questions = []primitive.ObjectID{}
	}
	_, err := r.coll.InsertOne(ctx, s)
	return wrapErr("create session", err)
}

func (r *mongoSessionRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Session, error) {
	var s domain.Session
	if err := r.coll.FindOne(ctx, byID(id)).Decode(&s); err != nil {
		return nil, wrapErr("get session", err)
	}
	return &s, nil
}

// ListByUser returns the user's sessions, newest first.
func (r *mongoSessionRepository) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]*domain.Session, error) {
	cur, err := r.coll.Find(ctx, bson.M{"user": userID}, sortBy(bson.E{Key: "createdAt", Value: -1}))
	return findAll[domain.Session](ctx, cur, err, "list sessions by user")
}

func (r *mongoSessionRepository) update(ctx context.Context, id primitive.ObjectID, doc bson.M, op string) error {
	res, err := r.coll.UpdateOne(ctx, byID(id), doc)
	if err != nil {
		return wrapErr(op, err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *mongoSessionRepository) SetQuestions(ctx context.Context, id primitive.ObjectID, questionIDs []primitive.ObjectID) error {
	return r.update(ctx, id, bson.M{"$set": bson.M{
		"questions": questionIDs,
		"updatedAt": time.Now().UTC(),
	}}, "set session questions")
}

// AppendQuestions pushes ids onto the end of the session's question list.
func (r *mongoSessionRepository) AppendQuestions(ctx context.Context, id primitive.ObjectID, questionIDs []primitive.ObjectID) error {
	return r.update(ctx, id, bson.M{
		"$push": bson.M{"questions": bson.M{"$each": questionIDs}},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}, "append session questions")
}

func (r *mongoSessionRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, byID(id))
	if err != nil {
		return wrapErr("delete session", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *mongoSessionRepository) IDsByUser(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error) {
	cur, err := r.coll.Find(ctx, bson.M{"user": userID}, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, wrapErr("list session ids", err)
	}
	var rows []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, wrapErr("list session ids", err)
	}
	ids := make([]primitive.ObjectID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	return ids, nil
}

func (r *mongoSessionRepository) DeleteMany(ctx context.Context, ids []primitive.ObjectID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := r.coll.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return 0, wrapErr("delete sessions", err)
	}
	return res.DeletedCount, nil
}

func sessionListMatch(f domain.SessionFilter) bson.M {
	match := bson.M{}
	if f.Search != "" {
		re := containsInsensitive(f.Search)
		match["$or"] = bson.A{
			bson.M{"role": re},
			bson.M{"topicsToFocus": re},
			bson.M{"description": re},
		}
	}
	if f.Status != "" {
		match["status"] = f.Status
	}
	return match
}

// List returns one page of sessions, newest first, joined with their owner.
func (r *mongoSessionRepository) List(ctx context.Context, f domain.SessionFilter) ([]*domain.SessionWithOwner, int64, error) {
	match := sessionListMatch(f)
	total, err := r.coll.CountDocuments(ctx, match)
	if err != nil {
		return nil, 0, wrapErr("count sessions", err)
	}

	skip, limit := pagination(f.Page, f.Limit)
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}},
		{{Key: "$skip", Value: skip}},
		{{Key: "$limit", Value: limit}},
		{{Key: "$lookup", Value: bson.M{
			"from":         database.CollUsers,
			"localField":   "user",
			"foreignField": "_id",
			"as":           "owner",
		}}},
		{{Key: "$unwind", Value: bson.M{"path": "$owner", "preserveNullAndEmptyArrays": true}}},
		{{Key: "$addFields", Value: bson.M{
			"ownerName":     bson.M{"$ifNull": bson.A{"$owner.name", "Unknown"}},
			"ownerEmail":    bson.M{"$ifNull": bson.A{"$owner.email", ""}},
			"questionCount": bson.M{"$size": bson.M{"$ifNull": bson.A{"$questions", bson.A{}}}},
		}}},
		{{Key: "$project", Value: bson.M{"owner": 0}}},
	}

	cur, err := r.coll.Aggregate(ctx, pipeline)
	sessions, err := findAll[domain.SessionWithOwner](ctx, cur, err, "list sessions")
	if err != nil {
		return nil, 0, err
	}
	return sessions, total, nil
}

var _ domain.SessionRepository = (*mongoSessionRepository)(nil)
