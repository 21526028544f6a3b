// Package store keeps the in-memory catalog state shared by the CLI, the
// REPL and the HTTP API: the current remote page, the local characters and
// the paging/search cursor that drives the next remote fetch.
package store
