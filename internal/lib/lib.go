// Package lib holds modules that do not fit strictly into other layers.
//
// It contains shared utilities, bearer token signing, background job
// processing (Redis/Asynq), email delivery (Resend) and the page renderer.
package lib
