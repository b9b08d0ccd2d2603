// Package cli provides the interactive accountd command-line client.
//
// It wires configuration, the HTTP API client and an interactive REPL.
// The session token lives only in memory; logout simply forgets it.
//
// Commands:
//   - register / login / logout
//   - profile (show the current profile)
//   - update (replace name, age, date of birth and contact)
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
