// Package validation holds the schema rule engine used before documents are
// written, and the helpers that bind and check incoming request data.
//
// Schema rules live in `validate` struct tags (go-playground/validator).
// Failures are collected per field, matched against the record kind's
// message table and returned as a single dberr validation error.
package validation
