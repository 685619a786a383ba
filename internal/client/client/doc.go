// Package client talks to the book-review backend.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic API contract (see the Client interface) covering
//     login/register, user lookups, favorites, books and reviews.
//  2. A concrete REST implementation (see HTTPClient) that attaches the
//     bearer credential through golang.org/x/oauth2, tags every request with
//     an X-Request-ID, shares a cookie jar with the token store, and maps
//     HTTP statuses to sentinel errors.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations) wiring an
//     SQLite database and applying embedded goose migrations.
//
// # Error Handling
//
// Transport failures wrap ErrUnavailable. Non-2xx answers are *APIError and
// unwrap to ErrUnauthorized (401/403), ErrNotFound (404) or ErrUnavailable
// (502/503/504). Match with errors.Is / errors.As.
//
// Concurrency & Contexts
//
// HTTPClient is safe for concurrent use. All operations accept
// context.Context and honor cancellation/timeouts.
package client
