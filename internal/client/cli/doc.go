// Package cli provides the interactive mealkeeper command-line client.
//
// It wires configuration, the credential store, the API client and the
// session manager, then runs a REPL over them. On start the stored session
// is restored (refreshing it if needed) before the first prompt.
//
// Commands:
//   - register, login, logout, status
//   - meals [page], meal <id>, delete <id>, upload <path>
//   - metrics
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
