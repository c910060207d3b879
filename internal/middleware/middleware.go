// Package middleware stores global and route-specific middleware.
//
// These intercept requests to handle cross-cutting concerns such as
// request IDs, request logging, tracing, bearer token identity, CORS,
// rate limiting, panic recovery, and the global error handler that turns
// every failure into a response.
package middleware
