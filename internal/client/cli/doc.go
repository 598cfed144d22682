// Package cli provides the interactive Briefly command-line client.
//
// App wires configuration, the local session database, the API client and
// the session and summary services. App.Run restores a persisted session,
// then runs a REPL whose command set follows the RouteGuard decision:
//
//	Not logged in:  help, register, login, exit | quit
//	Logged in:      help, (l)ist, shared, show <id>, new, delete <id>,
//	                regenerate <id>, share <id>, download <id> [path],
//	                refresh, stats, whoami, logout, exit | quit
//
// Every command handler returns an error that the REPL prints. A 401 from
// the backend ends the session and drops the REPL back to the login view.
package cli
