package dberr

import (
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrKind reports the Kind of err, or KindOther when err is not an *Error.
func ErrKind(err error) Kind {
	var dbErr *Error
	if errors.As(err, &dbErr) {
		return dbErr.Kind
	}
	return KindOther
}

// ParseObjectID converts a hex ID into an ObjectID.
// A malformed ID becomes a KindCast error on path "_id".
func ParseObjectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, NewCastError("_id", id, err)
	}
	return oid, nil
}

// HandleError converts a low-level driver error into a storage failure.
//
// Output:
//   - nil stays nil
//   - an *Error is returned unchanged
//   - a duplicate key server error becomes a KindDuplicateKey *Error
//   - anything else is returned unchanged, to be treated as a fault
//
// mongo.ErrNoDocuments is left untouched; repositories translate it
// into "not found" results themselves.
func HandleError(err error) error {
	if err == nil {
		return nil
	}

	var dbErr *Error
	if errors.As(err, &dbErr) {
		return err
	}

	if !mongo.IsDuplicateKeyError(err) {
		return err
	}

	code, msg := duplicateKeyDetails(err)
	return NewDuplicateKeyError(code, msg, nil, err)
}

// duplicateKeyDetails finds the server code and message of the first
// duplicate key failure inside err.
func duplicateKeyDetails(err error) (int, string) {
	var writeErr mongo.WriteException
	if errors.As(err, &writeErr) {
		for _, we := range writeErr.WriteErrors {
			if isDuplicateCode(we.Code) {
				return we.Code, we.Message
			}
		}
	}

	var bulkErr mongo.BulkWriteException
	if errors.As(err, &bulkErr) {
		for _, we := range bulkErr.WriteErrors {
			if isDuplicateCode(we.Code) {
				return we.Code, we.Message
			}
		}
	}

	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) && isDuplicateCode(int(cmdErr.Code)) {
		return int(cmdErr.Code), cmdErr.Message
	}

	return DuplicateKeyCode, err.Error()
}

// isDuplicateCode matches the codes mongo.IsDuplicateKeyError accepts.
func isDuplicateCode(code int) bool {
	return code == DuplicateKeyCode || code == 11001 || code == 12582
}
