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

// questionsPerSessionTarget is the per-session question count that scores 100.
const questionsPerSessionTarget = 20

type mongoStatsRepository struct {
	db *mongo.Database
}

func NewMongoStatsRepository(db *mongo.Database) domain.StatsRepository {
	return &mongoStatsRepository{db: db}
}

func (r *mongoStatsRepository) coll(name string) *mongo.Collection {
	return r.db.Collection(name)
}

// CollectionCounts uses the metadata estimate for every collection.
func (r *mongoStatsRepository) CollectionCounts(ctx context.Context) (domain.CollectionCounts, error) {
	var c domain.CollectionCounts
	targets := []struct {
		name string
		dst  *int64
	}{
		{database.CollUsers, &c.Users},
		{database.CollSessions, &c.Sessions},
		{database.CollQuestions, &c.Questions},
		{database.CollStudyMaterials, &c.StudyMaterials},
		{database.CollQuizzes, &c.Quizzes},
	}
	for _, t := range targets {
		n, err := r.coll(t.name).EstimatedDocumentCount(ctx)
		if err != nil {
			return domain.CollectionCounts{}, wrapErr("count "+t.name, err)
		}
		*t.dst = n
	}
	return c, nil
}

func (r *mongoStatsRepository) count(ctx context.Context, collection string, filter bson.M) (int64, error) {
	n, err := r.coll(collection).CountDocuments(ctx, filter)
	return n, wrapErr("count "+collection, err)
}

func (r *mongoStatsRepository) CountUsersActiveSince(ctx context.Context, since time.Time) (int64, error) {
	return r.count(ctx, database.CollUsers, bson.M{"updatedAt": bson.M{"$gte": since}})
}

func (r *mongoStatsRepository) CountUsersCreatedSince(ctx context.Context, since time.Time) (int64, error) {
	return r.count(ctx, database.CollUsers, bson.M{"createdAt": bson.M{"$gte": since}})
}

func (r *mongoStatsRepository) CountSessionsCreatedSince(ctx context.Context, since time.Time) (int64, error) {
	return r.count(ctx, database.CollSessions, bson.M{"createdAt": bson.M{"$gte": since}})
}

func (r *mongoStatsRepository) CountSessionsByStatus(ctx context.Context, status string) (int64, error) {
	return r.count(ctx, database.CollSessions, bson.M{"status": status})
}

func (r *mongoStatsRepository) CountUserSessionsByStatus(ctx context.Context, userID primitive.ObjectID, status string) (int64, error) {
	filter := bson.M{"user": userID}
	if status != "" {
		filter["status"] = status
	}
	return r.count(ctx, database.CollSessions, filter)
}

func (r *mongoStatsRepository) groupCount(ctx context.Context, collection, field string) ([]domain.LabelCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": "$" + field, "count": bson.M{"$sum": 1}}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}}}},
	}
	cur, err := r.coll(collection).Aggregate(ctx, pipeline)
	rows, err := findAll[domain.LabelCount](ctx, cur, err, "group "+collection+" by "+field)
	if err != nil {
		return nil, err
	}
	out := make([]domain.LabelCount, 0, len(rows))
	for _, row := range rows {
		out = append(out, *row)
	}
	return out, nil
}

func (r *mongoStatsRepository) UsersByRole(ctx context.Context) ([]domain.LabelCount, error) {
	return r.groupCount(ctx, database.CollUsers, "role")
}

func (r *mongoStatsRepository) SessionsByRole(ctx context.Context) ([]domain.LabelCount, error) {
	return r.groupCount(ctx, database.CollSessions, "role")
}

// SessionsPerDay counts sessions per UTC calendar day in [from, to). Days
// without sessions are absent.
func (r *mongoStatsRepository) SessionsPerDay(ctx context.Context, from, to time.Time) ([]domain.DayCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"createdAt": bson.M{"$gte": from, "$lt": to}}}},
		{{Key: "$group", Value: bson.M{
			"_id":   bson.M{"$dateToString": bson.M{"format": "%Y-%m-%d", "date": "$createdAt"}},
			"count": bson.M{"$sum": 1},
		}}},
		{{Key: "$project", Value: bson.M{"_id": 0, "date": "$_id", "count": 1}}},
		{{Key: "$sort", Value: bson.D{{Key: "date", Value: 1}}}},
	}
	cur, err := r.coll(database.CollSessions).Aggregate(ctx, pipeline)
	rows, err := findAll[domain.DayCount](ctx, cur, err, "count sessions per day")
	if err != nil {
		return nil, err
	}
	out := make([]domain.DayCount, 0, len(rows))
	for _, row := range rows {
		out = append(out, *row)
	}
	return out, nil
}

// TopUsers ranks users that own at least one session by
// questions / (sessions × 20) × 100.
func (r *mongoStatsRepository) TopUsers(ctx context.Context, limit int64) ([]domain.TopUser, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$lookup", Value: bson.M{
			"from":         database.CollSessions,
			"localField":   "_id",
			"foreignField": "user",
			"as":           "userSessions",
		}}},
		{{Key: "$addFields", Value: bson.M{
			"sessions": bson.M{"$size": "$userSessions"},
			"questions": bson.M{"$sum": bson.M{"$map": bson.M{
				"input": "$userSessions",
				"as":    "s",
				"in":    bson.M{"$size": bson.M{"$ifNull": bson.A{"$$s.questions", bson.A{}}}},
			}}},
		}}},
		{{Key: "$match", Value: bson.M{"sessions": bson.M{"$gt": 0}}}},
		{{Key: "$addFields", Value: bson.M{
			"score": bson.M{"$multiply": bson.A{
				bson.M{"$divide": bson.A{"$questions", bson.M{"$multiply": bson.A{"$sessions", questionsPerSessionTarget}}}},
				100,
			}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "score", Value: -1}, {Key: "questions", Value: -1}}}},
		{{Key: "$limit", Value: limit}},
		{{Key: "$project", Value: bson.M{
			"name": 1, "email": 1, "profileImageUrl": 1,
			"sessions": 1, "questions": 1, "score": 1,
		}}},
	}
	cur, err := r.coll(database.CollUsers).Aggregate(ctx, pipeline)
	rows, err := findAll[domain.TopUser](ctx, cur, err, "rank top users")
	if err != nil {
		return nil, err
	}
	out := make([]domain.TopUser, 0, len(rows))
	for _, row := range rows {
		out = append(out, *row)
	}
	return out, nil
}

func (r *mongoStatsRepository) RecentUsers(ctx context.Context, limit int64) ([]*domain.User, error) {
	opts := sortBy(bson.E{Key: "createdAt", Value: -1}).
		SetLimit(limit).
		SetProjection(bson.M{"password": 0})
	cur, err := r.coll(database.CollUsers).Find(ctx, bson.M{}, opts)
	return findAll[domain.User](ctx, cur, err, "list recent users")
}

// SessionAverages covers sessions with a positive recorded duration.
func (r *mongoStatsRepository) SessionAverages(ctx context.Context) (domain.SessionAverages, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"duration": bson.M{"$gt": 0}}}},
		{{Key: "$group", Value: bson.M{
			"_id":          nil,
			"avgDuration":  bson.M{"$avg": "$duration"},
			"avgQuestions": bson.M{"$avg": bson.M{"$size": bson.M{"$ifNull": bson.A{"$questions", bson.A{}}}}},
		}}},
	}
	cur, err := r.coll(database.CollSessions).Aggregate(ctx, pipeline)
	rows, err := findAll[domain.SessionAverages](ctx, cur, err, "average sessions")
	if err != nil {
		return domain.SessionAverages{}, err
	}
	if len(rows) == 0 {
		return domain.SessionAverages{}, nil
	}
	avg := *rows[0]
	avg.Found = true
	return avg, nil
}

// DataSizeBytes reports dbStats.dataSize.
func (r *mongoStatsRepository) DataSizeBytes(ctx context.Context) (float64, error) {
	var res struct {
		DataSize float64 `bson:"dataSize"`
	}
	err := r.db.RunCommand(ctx, bson.D{{Key: "dbStats", Value: 1}}).Decode(&res)
	if err != nil {
		return 0, wrapErr("read dbStats", err)
	}
	return res.DataSize, nil
}

// ActiveConnections reports serverStatus connections.current.
func (r *mongoStatsRepository) ActiveConnections(ctx context.Context) (int64, error) {
	var res struct {
		Connections struct {
			Current int64 `bson:"current"`
		} `bson:"connections"`
	}
	admin := r.db.Client().Database("admin")
	err := admin.RunCommand(ctx, bson.D{{Key: "serverStatus", Value: 1}}).Decode(&res)
	if err != nil {
		return 0, wrapErr("read serverStatus", err)
	}
	return res.Connections.Current, nil
}

var _ domain.StatsRepository = (*mongoStatsRepository)(nil)
