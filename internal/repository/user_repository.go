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

type mongoUserRepository struct {
	coll *mongo.Collection
}

// NewMongoUserRepository creates a user repository over the users collection.
func NewMongoUserRepository(db *mongo.Database) domain.UserRepository {
	return &mongoUserRepository{coll: db.Collection(database.CollUsers)}
}

func (r *mongoUserRepository) Create(ctx context.Context, user *domain.User) error {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = now
	}
	if user.Role == "" {
		user.Role = domain.RoleUser
	}
	_, err := r.coll.InsertOne(ctx, user)
	return wrapErr("create user", err)
}

func (r *mongoUserRepository) findOne(ctx context.Context, filter bson.M, op string) (*domain.User, error) {
	var u domain.User
	if err := r.coll.FindOne(ctx, filter).Decode(&u); err != nil {
		return nil, wrapErr(op, err)
	}
	return &u, nil
}

func (r *mongoUserRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	return r.findOne(ctx, byID(id), "get user by id")
}

func (r *mongoUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email}, "get user by email")
}

func (r *mongoUserRepository) GetByGoogleID(ctx context.Context, googleID string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"googleId": googleID}, "get user by google id")
}

// Update applies the non-nil fields of update and returns the stored user.
func (r *mongoUserRepository) Update(ctx context.Context, id primitive.ObjectID, update domain.UserUpdate) (*domain.User, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	unset := bson.M{}

	if update.UpdatedAt != nil {
		set["updatedAt"] = *update.UpdatedAt
	}
	if update.GoogleID != nil {
		set["googleId"] = *update.GoogleID
	}

	if update.Name != nil {
		set["name"] = *update.Name
	}
	if update.Email != nil {
		set["email"] = *update.Email
	}
	if update.Password != nil {
		set["password"] = *update.Password
	}
	if update.ProfileImageURL != nil {
		set["profileImageUrl"] = *update.ProfileImageURL
	}
	if update.Role != nil {
		set["role"] = *update.Role
	}
	if update.Notes != nil {
		set["notes"] = *update.Notes
	}
	if update.IsActive != nil {
		set["isActive"] = *update.IsActive
	}
	if update.GeminiAPIKey != nil {
		if *update.GeminiAPIKey == "" {
			unset["geminiApiKey"] = ""
		} else {
			set["geminiApiKey"] = *update.GeminiAPIKey
		}
	}

	doc := bson.M{"$set": set}
	if len(unset) > 0 {
		doc["$unset"] = unset
	}

	var u domain.User
	err := r.coll.FindOneAndUpdate(ctx, byID(id), doc,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&u)
	if err != nil {
		return nil, wrapErr("update user", err)
	}
	return &u, nil
}

// Touch records activity by moving updatedAt forward.
func (r *mongoUserRepository) Touch(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	_, err := r.coll.UpdateOne(ctx, byID(id), bson.M{"$set": bson.M{"updatedAt": at}})
	return wrapErr("touch user", err)
}

func (r *mongoUserRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, byID(id))
	if err != nil {
		return wrapErr("delete user", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func userListMatch(f domain.UserFilter, now time.Time) bson.M {
	match := bson.M{}
	if f.Search != "" {
		re := containsInsensitive(f.Search)
		match["$or"] = bson.A{bson.M{"name": re}, bson.M{"email": re}}
	}
	if f.Role != "" {
		match["role"] = f.Role
	}
	window := f.ActiveWindow
	if window <= 0 {
		window = 7 * 24 * time.Hour
	}
	switch f.Status {
	case "active":
		match["updatedAt"] = bson.M{"$gte": now.Add(-window)}
	case "inactive":
		match["updatedAt"] = bson.M{"$lt": now.Add(-window)}
	}
	return match
}

// List returns one page of users, newest first, with their session, question
// and study material counts.
func (r *mongoUserRepository) List(ctx context.Context, f domain.UserFilter) ([]*domain.UserWithCounts, int64, error) {
	match := userListMatch(f, time.Now().UTC())

	total, err := r.coll.CountDocuments(ctx, match)
	if err != nil {
		return nil, 0, wrapErr("count users", err)
	}

	skip, limit := pagination(f.Page, f.Limit)
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}},
		{{Key: "$skip", Value: skip}},
		{{Key: "$limit", Value: limit}},
		{{Key: "$lookup", Value: bson.M{
			"from":         database.CollSessions,
			"localField":   "_id",
			"foreignField": "user",
			"as":           "sessionDocs",
		}}},
		{{Key: "$lookup", Value: bson.M{
			"from": database.CollStudyMaterials,
			"let":  bson.M{"uid": bson.M{"$toString": "$_id"}},
			"pipeline": bson.A{
				bson.M{"$match": bson.M{"$expr": bson.M{"$eq": bson.A{"$user_id", "$$uid"}}}},
				bson.M{"$count": "n"},
			},
			"as": "materialAgg",
		}}},
		{{Key: "$addFields", Value: bson.M{
			"sessionCount": bson.M{"$size": "$sessionDocs"},
			"questionCount": bson.M{"$sum": bson.M{"$map": bson.M{
				"input": "$sessionDocs",
				"as":    "s",
				"in":    bson.M{"$size": bson.M{"$ifNull": bson.A{"$$s.questions", bson.A{}}}},
			}}},
			"materialCount": bson.M{"$ifNull": bson.A{bson.M{"$arrayElemAt": bson.A{"$materialAgg.n", 0}}, 0}},
		}}},
		{{Key: "$project", Value: bson.M{"sessionDocs": 0, "materialAgg": 0, "password": 0}}},
	}

	cur, err := r.coll.Aggregate(ctx, pipeline)
	users, err := findAll[domain.UserWithCounts](ctx, cur, err, "list users")
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

var _ domain.UserRepository = (*mongoUserRepository)(nil)
