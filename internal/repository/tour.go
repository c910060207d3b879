package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/deppfellow/natours/internal/database"
	"github.com/deppfellow/natours/internal/dberr"
	"github.com/deppfellow/natours/internal/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// tourProjection hides fields that default reads never return.
var tourProjection = bson.D{{Key: "createdAt", Value: 0}}

type TourRepository struct {
	coll *mongo.Collection
}

func NewTourRepository(db *mongo.Database) *TourRepository {
	return &TourRepository{coll: db.Collection(database.ToursCollection)}
}

// Insert stores a prepared tour and sets its ID.
func (r *TourRepository) Insert(ctx context.Context, tour *model.Tour) error {
	res, err := r.coll.InsertOne(ctx, tour)
	if err != nil {
		return dberr.HandleError(fmt.Errorf("insert tour: %w", err))
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		tour.ID = oid
	}
	return nil
}

// Find returns every tour in the read scope.
func (r *TourRepository) Find(ctx context.Context, opts ...ReadOption) ([]model.Tour, error) {
	cursor, err := r.coll.Find(ctx, TourScope(bson.D{}, opts...), options.Find().SetProjection(tourProjection))
	if err != nil {
		return nil, dberr.HandleError(fmt.Errorf("find tours: %w", err))
	}

	tours := []model.Tour{}
	if err := cursor.All(ctx, &tours); err != nil {
		return nil, dberr.HandleError(fmt.Errorf("decode tours: %w", err))
	}

	for i := range tours {
		tours[i].ComputeDurationWeeks()
	}
	return tours, nil
}

// FindByID returns the tour with id, or ErrNotFound.
func (r *TourRepository) FindByID(ctx context.Context, id string, opts ...ReadOption) (*model.Tour, error) {
	oid, err := dberr.ParseObjectID(id)
	if err != nil {
		return nil, err
	}

	var tour model.Tour
	err = r.coll.FindOne(ctx, TourScope(bson.D{{Key: "_id", Value: oid}}, opts...),
		options.FindOne().SetProjection(tourProjection)).Decode(&tour)
	if err != nil {
		return nil, notFoundOr(err, "find tour")
	}

	tour.ComputeDurationWeeks()
	return &tour, nil
}

// Update applies a prepared patch and returns the updated tour.
func (r *TourRepository) Update(ctx context.Context, id string, patch *model.TourPatch, opts ...ReadOption) (*model.Tour, error) {
	empty, err := isEmptyDocument(patch)
	if err != nil {
		return nil, fmt.Errorf("marshal tour patch: %w", err)
	}
	if empty {
		return r.FindByID(ctx, id, opts...)
	}

	oid, err := dberr.ParseObjectID(id)
	if err != nil {
		return nil, err
	}

	findOpts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(tourProjection)

	var tour model.Tour
	err = r.coll.FindOneAndUpdate(ctx, TourScope(bson.D{{Key: "_id", Value: oid}}, opts...),
		bson.D{{Key: "$set", Value: patch}}, findOpts).Decode(&tour)
	if err != nil {
		return nil, notFoundOr(err, "update tour")
	}

	tour.ComputeDurationWeeks()
	return &tour, nil
}

// Delete removes the tour with id, or returns ErrNotFound.
func (r *TourRepository) Delete(ctx context.Context, id string, opts ...ReadOption) error {
	oid, err := dberr.ParseObjectID(id)
	if err != nil {
		return err
	}

	res, err := r.coll.DeleteOne(ctx, TourScope(bson.D{{Key: "_id", Value: oid}}, opts...))
	if err != nil {
		return dberr.HandleError(fmt.Errorf("delete tour: %w", err))
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func notFoundOr(err error, op string) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return dberr.HandleError(fmt.Errorf("%s: %w", op, err))
}
