package repository

import (
	"context"
	"fmt"

	"github.com/deppfellow/natours/internal/database"
	"github.com/deppfellow/natours/internal/dberr"
	"github.com/deppfellow/natours/internal/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// userProjection keeps password hashes out of every read.
var userProjection = bson.D{{Key: "password", Value: 0}}

type UserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection(database.UsersCollection)}
}

// Insert stores a prepared user and sets its ID. Password must already be hashed.
func (r *UserRepository) Insert(ctx context.Context, user *model.User) error {
	res, err := r.coll.InsertOne(ctx, user)
	if err != nil {
		return dberr.HandleError(fmt.Errorf("insert user: %w", err))
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		user.ID = oid
	}
	return nil
}

func (r *UserRepository) Find(ctx context.Context) ([]model.User, error) {
	cursor, err := r.coll.Find(ctx, bson.D{}, options.Find().SetProjection(userProjection))
	if err != nil {
		return nil, dberr.HandleError(fmt.Errorf("find users: %w", err))
	}

	users := []model.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, dberr.HandleError(fmt.Errorf("decode users: %w", err))
	}
	return users, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	oid, err := dberr.ParseObjectID(id)
	if err != nil {
		return nil, err
	}

	var user model.User
	err = r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: oid}},
		options.FindOne().SetProjection(userProjection)).Decode(&user)
	if err != nil {
		return nil, notFoundOr(err, "find user")
	}
	return &user, nil
}

func (r *UserRepository) Update(ctx context.Context, id string, patch *model.UserPatch) (*model.User, error) {
	empty, err := isEmptyDocument(patch)
	if err != nil {
		return nil, fmt.Errorf("marshal user patch: %w", err)
	}
	if empty {
		return r.FindByID(ctx, id)
	}

	oid, err := dberr.ParseObjectID(id)
	if err != nil {
		return nil, err
	}

	findOpts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(userProjection)

	var user model.User
	err = r.coll.FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: oid}},
		bson.D{{Key: "$set", Value: patch}}, findOpts).Decode(&user)
	if err != nil {
		return nil, notFoundOr(err, "update user")
	}
	return &user, nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	oid, err := dberr.ParseObjectID(id)
	if err != nil {
		return err
	}

	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return dberr.HandleError(fmt.Errorf("delete user: %w", err))
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
