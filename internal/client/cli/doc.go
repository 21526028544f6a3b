// Package cli is the command-line front end of the character catalog.
//
// It exposes a cobra command tree (list, show, create, edit, delete, stats,
// clear, export, backup, repl, serve) on top of App, which wires the
// configuration, the remote API client, local SQLite storage and the
// character store. Only locally created characters can be edited or deleted.
//
// The repl command starts an interactive loop; see runREPL.
package cli
