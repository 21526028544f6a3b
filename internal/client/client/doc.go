// Package client contains the client-side building blocks that talk to the
// outside world.
//
// # Overview
//
//  1. A transport-agnostic contract for the public character API (see the
//     Client interface): List with optional filters and GetByID.
//  2. A concrete HTTP implementation (see HTTPClient) that builds query
//     strings from models.Filters, decodes JSON responses and maps non-2xx
//     statuses to *StatusError.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations) that opens the
//     SQLite database and applies the embedded goose migrations.
//
// # Error Handling
//
// Requests are single-shot: no retries and no caching. A 404 matches
// common.ErrNotFound through errors.Is; transport failures match
// ErrUnavailable. Anything else is a *StatusError carrying the status code.
//
// Concurrency & Contexts
//
// HTTPClient is safe for concurrent use. All operations accept a
// context.Context and honor cancellation.
package client
