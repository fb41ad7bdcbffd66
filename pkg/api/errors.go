package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Error is a typed error for any non-2xx API response. It carries enough
// detail for callers to branch on status (notably 401 and 408).
type Error struct {
	Status     int
	StatusText string
	Body       []byte
}

func (e *Error) Error() string {
	return fmt.Sprintf("API error %d: %s", e.Status, e.StatusText)
}

// DecodeBody unmarshals the error response body into out.
func (e *Error) DecodeBody(out any) error {
	if len(e.Body) == 0 {
		return nil
	}
	if err := json.Unmarshal(e.Body, out); err != nil {
		return fmt.Errorf("failed to decode error body: %w", err)
	}
	return nil
}

// IsStatus reports whether err is an API error with the given status code.
func IsStatus(err error, status int) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// IsTimeout reports whether err is the client-side timeout error.
func IsTimeout(err error) bool {
	return IsStatus(err, http.StatusRequestTimeout)
}
