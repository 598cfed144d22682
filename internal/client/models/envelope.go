package models

import "encoding/json"

// Envelope is the backend's response wrapper. Status carries logical
// success independently of the HTTP status code.
type Envelope struct {
	Status string          `json:"status"`
	Result json.RawMessage `json:"result"`
	Detail json.RawMessage `json:"detail,omitempty"`
}
