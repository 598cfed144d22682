package services

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/briefly/internal/client/client"
	"github.com/dmitrijs2005/briefly/internal/common"
)

// ErrInFlight is returned when an operation of the same kind is still
// running.
var ErrInFlight = errors.New("operation already in progress")

// ValidationError reports input rejected before any network call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

// HumanMessage renders err as a short message for display.
func HumanMessage(err error) string {
	if err == nil {
		return ""
	}

	var (
		vErr   *ValidationError
		apiErr *client.APIError
		fErr   *client.FetchError
		nErr   *client.NetworkError
	)
	switch {
	case errors.As(err, &vErr):
		return vErr.Error()
	case errors.As(err, &apiErr):
		return apiErr.Message
	case errors.Is(err, client.ErrUnauthenticated):
		return "Your session has expired. Please log in again."
	case errors.As(err, &fErr):
		return fErr.Message
	case errors.As(err, &nErr):
		if nErr.Timeout() {
			return "The server took too long to respond. Please try again."
		}
		return "Cannot reach the server. Check your connection and try again."
	case errors.Is(err, ErrInFlight):
		return "Please wait, the previous request is still running."
	case errors.Is(err, common.ErrorNotFound):
		return "Not found."
	}
	return err.Error()
}
