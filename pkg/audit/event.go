// Package audit provides audit logging for switch programming sessions.
package audit

import (
	"fmt"
	"time"
)

// Event records one auditable switch programming outcome.
type Event struct {
	ID        string        `json:"id"`
	Timestamp time.Time     `json:"timestamp"`
	User      string        `json:"user"`
	Switch    string        `json:"switch"`
	Operation string        `json:"operation"`
	Entries   int           `json:"entries,omitempty"`
	Groups    int           `json:"groups,omitempty"`
	Threshold uint64        `json:"threshold,omitempty"`
	Success   bool          `json:"success"`
	Error     string        `json:"error,omitempty"`
	Duration  time.Duration `json:"duration"`
}

// OpProgram is the operation recorded for forwarding-state programming.
const OpProgram = "program"

// Filter defines criteria for querying audit events
type Filter struct {
	Switch      string
	User        string
	Operation   string
	StartTime   time.Time
	EndTime     time.Time
	SuccessOnly bool
	FailureOnly bool
	Limit       int
	Offset      int
}

// NewEvent creates a new audit event
func NewEvent(user, sw, operation string) *Event {
	return &Event{
		ID:        generateID(),
		Timestamp: time.Now(),
		User:      user,
		Switch:    sw,
		Operation: operation,
	}
}

// WithState records the programmed forwarding state size
func (e *Event) WithState(entries, groups int, threshold uint64) *Event {
	e.Entries = entries
	e.Groups = groups
	e.Threshold = threshold
	return e
}

// WithSuccess marks the event as successful
func (e *Event) WithSuccess() *Event {
	e.Success = true
	return e
}

// WithError marks the event as failed
func (e *Event) WithError(err error) *Event {
	e.Success = false
	if err != nil {
		e.Error = err.Error()
	}
	return e
}

// WithDuration sets the operation duration
func (e *Event) WithDuration(d time.Duration) *Event {
	e.Duration = d
	return e
}

func generateID() string {
	return fmt.Sprintf("%d", time.Now().UnixNano())
}
