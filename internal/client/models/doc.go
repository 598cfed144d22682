// Package models defines the client-side data shapes exchanged with the
// Briefly backend: users, summaries, shared summaries and the response
// envelope.
package models
