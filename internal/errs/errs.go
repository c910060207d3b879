// Package errs defines the application's classified error type.
//
// An *AppError is an operational error: a failure that was anticipated
// (invalid input, not found, duplicate, bad token) and whose message is
// safe to show to the caller. Anything that is not an *AppError is
// treated as a fault by the global error handler.
package errs
