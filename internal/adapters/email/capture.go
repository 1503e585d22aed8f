package email

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// CaptureSender records every send in memory instead of delivering it.
// Tests use it to read back the login code that would have been emailed.
type CaptureSender struct {
	mu    sync.Mutex
	sends []SendRequest
}

// NewCaptureSender creates an empty CaptureSender.
func NewCaptureSender() *CaptureSender {
	return &CaptureSender{}
}

// Send records the request and reports success.
// POST: The request is appended to the capture list
func (s *CaptureSender) Send(_ context.Context, req SendRequest) (SendResult, error) {
	s.mu.Lock()
	s.sends = append(s.sends, req)
	s.mu.Unlock()
	return SendResult{
		MessageID: fmt.Sprintf("capture-%d", time.Now().UnixNano()),
		SentAt:    time.Now(),
	}, nil
}

// Last returns the most recently captured request, if any.
// INVARIANT: The capture list is not mutated
func (s *CaptureSender) Last() (SendRequest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.sends) == 0 {
		return SendRequest{}, false
	}
	return s.sends[len(s.sends)-1], true
}

// Count returns how many sends have been captured.
func (s *CaptureSender) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sends)
}
