package model

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidRequest marks caller input errors reported before any fetch runs.
	ErrInvalidRequest = errors.New("invalid search request")
	// ErrLocationRequired is returned when Onsite or Hybrid is requested without a location.
	ErrLocationRequired = fmt.Errorf("%w: location text is required for onsite and hybrid searches", ErrInvalidRequest)
	// ErrRoleRequired is returned when the role title is blank.
	ErrRoleRequired = fmt.Errorf("%w: role title is required", ErrInvalidRequest)
)

// HTTPError wraps an HTTP status code so retry logic can inspect it.
type HTTPError struct {
	StatusCode int
	RetryAfter time.Duration // from Retry-After header, zero if absent
	Err        error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("HTTP %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}
