// Package api implements the HTTP layer of the recruiting backend: request
// models, handlers for authentication and asynchronous AI task endpoints,
// and the mapping from internal errors to safe HTTP responses.
//
// Handlers never leak raw error strings to clients. Every error goes through
// MapErrorToStatusCode and GetSafeErrorMessage so internal details stay in
// the logs, keyed by the request's trace ID.
package api
