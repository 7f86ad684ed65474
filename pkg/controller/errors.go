package controller

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-formsync/pkg/validation"
)

var (
	// ErrClosed is returned by operations on a closed controller.
	ErrClosed = errors.New("controller: closed")
	// ErrCancelled is returned when a task's context ends before its
	// response was applied.
	ErrCancelled = errors.New("controller: cancelled")
	// ErrUnavailable is returned when a control is pressed while its
	// affordance is disabled.
	ErrUnavailable = errors.New("controller: control unavailable")
	// ErrDeclined is returned when the user rejects a confirmation.
	ErrDeclined = errors.New("controller: confirmation declined")
	// ErrStale is returned when a response from before a Reset is dropped.
	ErrStale = errors.New("controller: stale response dropped")
	// ErrInvalidConfig wraps configuration errors.
	ErrInvalidConfig = errors.New("controller: invalid config")
)

// ValidationError blocks a submission before anything is sent.
type ValidationError struct {
	Issues []validation.Issue
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		if issue.Field == "" {
			parts = append(parts, issue.Message)
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", issue.Field, issue.Message))
	}
	return "controller: validation failed: " + strings.Join(parts, "; ")
}

// IsValidation reports whether err is a validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
