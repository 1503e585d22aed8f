package booking

import (
	"errors"
	"strings"
	"time"
)

// Status constants for the session request lifecycle.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusDenied   = "denied"
)

// ValidStatuses contains all valid status values.
var ValidStatuses = []string{StatusPending, StatusApproved, StatusDenied}

// Domain errors
var (
	ErrEmptyUserEmail  = errors.New("user email cannot be empty")
	ErrEmptyDay        = errors.New("day cannot be empty")
	ErrEmptyTime       = errors.New("time cannot be empty")
	ErrInvalidStatus   = errors.New("status must be one of: pending, approved, denied")
	ErrInvalidDecision = errors.New("decision must be approved or denied")
)

// SessionRequest represents one student's request for a tutoring slot.
// Requests start pending and are approved or denied by the admin; they are
// never deleted.
type SessionRequest struct {
	ID        string
	UserEmail string
	Day       string // catalog day name, e.g. "Sunday"
	Time      string // catalog time label, e.g. "10:00 AM"
	Status    string // pending, approved, denied
	CreatedAt time.Time
}

// Validate checks if the SessionRequest has valid data.
// PRE: SessionRequest struct is populated
// POST: Returns nil if valid, error otherwise
func (s *SessionRequest) Validate() error {
	if strings.TrimSpace(s.UserEmail) == "" {
		return ErrEmptyUserEmail
	}
	if strings.TrimSpace(s.Day) == "" {
		return ErrEmptyDay
	}
	if strings.TrimSpace(s.Time) == "" {
		return ErrEmptyTime
	}
	if !isValidStatus(s.Status) {
		return ErrInvalidStatus
	}
	return nil
}

// Decide sets the request status to a terminal decision.
// Re-deciding an already-decided request is allowed and idempotent; no
// prior-state guard is enforced here.
// PRE: decision is approved or denied
// POST: Status is set to decision
func (s *SessionRequest) Decide(decision string) error {
	if decision != StatusApproved && decision != StatusDenied {
		return ErrInvalidDecision
	}
	s.Status = decision
	return nil
}

// IsPending returns true if the request has not been decided.
// INVARIANT: SessionRequest fields are not mutated
func (s *SessionRequest) IsPending() bool {
	return s.Status == StatusPending
}

// IsApproved returns true if the request holds its slot.
// INVARIANT: SessionRequest fields are not mutated
func (s *SessionRequest) IsApproved() bool {
	return s.Status == StatusApproved
}

// Occupies reports whether this request blocks the given slot.
// Only approved requests occupy a slot; pending and denied do not.
// INVARIANT: SessionRequest fields are not mutated
func (s *SessionRequest) Occupies(day, time string) bool {
	return s.Status == StatusApproved && s.Day == day && s.Time == time
}

func isValidStatus(status string) bool {
	for _, v := range ValidStatuses {
		if v == status {
			return true
		}
	}
	return false
}
