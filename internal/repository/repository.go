// Package repository handles all interactions with the database.
//
// It contains the MongoDB queries used to fetch, persist, update and
// delete tours and users, and converts driver failures into dberr values
// so the service layer never sees raw driver errors.
package repository

import (
	"errors"

	"go.mongodb.org/mongo-driver/bson"
)

// ErrNotFound is returned when no document matches the requested ID.
var ErrNotFound = errors.New("document not found")

// ReadOption adjusts the default scope of a read.
type ReadOption func(*readOptions)

type readOptions struct {
	includeSecret bool
}

// IncludeSecret bypasses the default read scope so secret tours are returned.
func IncludeSecret() ReadOption {
	return func(o *readOptions) {
		o.includeSecret = true
	}
}

// TourScope prepends the default tour read scope to filter:
//
//	{ secretTour: { $ne: true }, ...filter }
//
// With IncludeSecret the filter is returned as is.
func TourScope(filter bson.D, opts ...ReadOption) bson.D {
	var o readOptions
	for _, opt := range opts {
		opt(&o)
	}

	if o.includeSecret {
		if filter == nil {
			return bson.D{}
		}
		return filter
	}

	scoped := make(bson.D, 0, len(filter)+1)
	scoped = append(scoped, bson.E{Key: "secretTour", Value: bson.D{{Key: "$ne", Value: true}}})
	return append(scoped, filter...)
}

// isEmptyDocument reports whether v marshals to a BSON document with no fields.
func isEmptyDocument(v any) (bool, error) {
	raw, err := bson.Marshal(v)
	if err != nil {
		return false, err
	}
	elems, err := bson.Raw(raw).Elements()
	if err != nil {
		return false, err
	}
	return len(elems) == 0, nil
}
