// Package status defines the lifecycle of a credit application.
package status

import "errors"

// Status represents the review state of an application request.
type Status string

const (
	StatusPending  Status = "pending"  // Scored, awaiting lender review
	StatusApproved Status = "approved" // Terminal
	StatusDeclined Status = "declined" // Terminal
)

// ErrInvalidTransition is returned when a status transition is not allowed.
var ErrInvalidTransition = errors.New("invalid status transition")

// ErrUnknownStatus is returned when parsing an unrecognised status.
var ErrUnknownStatus = errors.New("unknown status")

// IsTerminal returns true if no further transitions are allowed.
func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusDeclined
}

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// ValidTransitions defines allowed status transitions.
var ValidTransitions = map[Status][]Status{
	StatusPending:  {StatusApproved, StatusDeclined},
	StatusApproved: {},
	StatusDeclined: {},
}

// Parse converts raw input into a known status.
func Parse(raw string) (Status, error) {
	s := Status(raw)
	if _, ok := ValidTransitions[s]; !ok {
		return "", ErrUnknownStatus
	}
	return s, nil
}

// CanTransitionTo checks if a transition from current status to target status is valid.
func (s Status) CanTransitionTo(target Status) bool {
	for _, t := range ValidTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// TransitionTo attempts to transition to the target status and returns error if invalid.
func (s Status) TransitionTo(target Status) (Status, error) {
	if !s.CanTransitionTo(target) {
		return s, ErrInvalidTransition
	}
	return target, nil
}
