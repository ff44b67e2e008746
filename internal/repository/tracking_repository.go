package repository

import (
	"context"
	"time"

	"interview-prep/internal/database"
	"interview-prep/internal/domain"

	"go.mongodb.org/mongo-driver/mongo"
)

type mongoTrackingRepository struct {
	pageViews *mongo.Collection
	events    *mongo.Collection
}

func NewMongoTrackingRepository(db *mongo.Database) domain.TrackingRepository {
	return &mongoTrackingRepository{
		pageViews: db.Collection(database.CollPageViews),
		events:    db.Collection(database.CollEvents),
	}
}

func (r *mongoTrackingRepository) InsertPageView(ctx context.Context, pv *domain.PageView) error {
	if pv.Timestamp.IsZero() {
		pv.Timestamp = time.Now().UTC()
	}
	_, err := r.pageViews.InsertOne(ctx, pv)
	return wrapErr("store page view", err)
}

func (r *mongoTrackingRepository) InsertEvent(ctx context.Context, ev *domain.Event) error {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}
	_, err := r.events.InsertOne(ctx, ev)
	return wrapErr("store event", err)
}

var _ domain.TrackingRepository = (*mongoTrackingRepository)(nil)
