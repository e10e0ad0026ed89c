package domain

import (
	"errors"
	"fmt"
)

// ErrUnknownUser means an inbound Slack user id does not map to a
// registered user. Fatal for that request, no fallback.
var ErrUnknownUser = errors.New("unknown slack user")

// ValidationError rejects a user submission that cannot be accepted as-is.
// The user gets a corrective message and may retry.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ReferenceNotFoundError means a selected work type or program code no
// longer resolves to an active row. This is a data-integrity problem an
// administrator has to look at, not a user mistake.
type ReferenceNotFoundError struct {
	Kind string // "work type" or "program"
	Code string
}

func (e *ReferenceNotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found or inactive", e.Kind, e.Code)
}

// DeliveryError wraps a failed dispatch to Slack or the spreadsheet.
type DeliveryError struct {
	Op  string
	Err error
}

func (e *DeliveryError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }
func (e *DeliveryError) Unwrap() error { return e.Err }
