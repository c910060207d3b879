// Package dberr describes the failure shapes surfaced by the document store.
//
// The MongoDB driver (and the schema layer sitting in front of it) reports
// failures in many forms. This package narrows them into one tagged
// variant, *Error, so the global error handler can classify failures by
// Kind and Code instead of inspecting driver internals.
package dberr
