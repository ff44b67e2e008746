package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"interview-prep/internal/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// wrapErr maps driver errors onto the domain sentinels and adds the
// operation name to everything else.
func wrapErr(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return domain.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%s: %w", op, domain.ErrDuplicateKey)
	default:
		return fmt.Errorf("failed to %s: %w", op, err)
	}
}

// pagination clamps page and limit and returns the skip and limit to apply.
func pagination(page, limit int) (int64, int64) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return int64((page - 1) * limit), int64(limit)
}

// containsInsensitive matches value as a literal, case-insensitive substring.
func containsInsensitive(value string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(value), Options: "i"}
}

func byID(id primitive.ObjectID) bson.M {
	return bson.M{"_id": id}
}

func findAll[T any](ctx context.Context, cur *mongo.Cursor, err error, op string) ([]*T, error) {
	if err != nil {
		return nil, wrapErr(op, err)
	}
	var out []*T
	if err := cur.All(ctx, &out); err != nil {
		return nil, wrapErr(op, err)
	}
	if out == nil {
		out = []*T{}
	}
	return out, nil
}

func sortBy(keys ...bson.E) *options.FindOptions {
	return options.Find().SetSort(bson.D(keys))
}
