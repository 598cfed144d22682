// Package client contains the transport side of the Briefly CLI.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic API contract (see the Client interface) covering
//     registration, login, summary listing/creation/upload/deletion,
//     sharing, regeneration and input-file download.
//  2. A concrete HTTP implementation (see HTTPClient) that is the single
//     choke point for outbound calls: it attaches the bearer token obtained
//     from a TokenSource, encodes JSON or multipart bodies, bounds every
//     call with a timeout, checks the backend's response envelope and maps
//     failures to typed errors.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations) wiring an
//     SQLite database and applying embedded goose migrations.
//
// # Error Handling
//
// Failures are reported as:
//   - *NetworkError: no response was received (dial error, timeout, cancel).
//   - *APIError: a non-2xx response; Message holds the backend's detail.
//   - *FetchError: a 2xx response whose envelope status is not "OK".
//   - ErrUnauthenticated: an authenticated call was attempted without a
//     usable token; nothing was sent.
//
// NetworkError matches ErrUnavailable and 401/403 APIErrors match
// ErrUnauthorized under errors.Is.
//
// # Concurrency & Contexts
//
// HTTPClient is safe for concurrent use. All operations accept
// context.Context and honor cancellation on top of the configured timeout.
package client
