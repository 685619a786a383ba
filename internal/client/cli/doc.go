// Package cli provides the bookcase command-line client.
//
// It wires configuration, the local database, the token store, the session
// context and the API services, and exposes them through a cobra command
// tree. The root command starts an interactive REPL; a few subcommands
// (whoami, search, logout, oauth-url) run once and exit.
//
// Key features:
//   - Login with email/password, Google OAuth (pasted credential), logout
//   - Catalog search and book details, imported on first view
//   - Favorites with optimistic toggling
//   - Reading and writing reviews
//
// A background watcher pings the backend and shows online/offline in the
// prompt. See Execute, App.Run and runREPL for details.
package cli
