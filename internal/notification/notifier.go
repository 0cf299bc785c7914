// Package notification fans domain events out to an external delivery
// transport without making callers wait on delivery.
package notification

import (
	"context"
	"strings"
	"time"
)

type EventType string

const (
	EventMeetingScheduled    EventType = "meeting.scheduled"
	EventEmergencyRequested  EventType = "meeting.emergency_requested"
	EventApplicationReviewed EventType = "application.reviewed"
	EventVolunteerAdded      EventType = "volunteer.added"
	EventMeetingReminder     EventType = "meeting.reminder"
)

type Event struct {
	Type       EventType      `json:"type"`
	SubjectID  string         `json:"subject_id"`
	Data       map[string]any `json:"data,omitempty"`
	RequestID  string         `json:"request_id,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// TemplateName maps an event type to its email template.
func (e Event) TemplateName() string {
	return strings.ReplaceAll(string(e.Type), ".", "_")
}

// Notifier accepts events for delivery. Implementations return once the event
// is accepted, not when it is delivered.
type Notifier interface {
	Notify(ctx context.Context, event Event) error
}

// Transport performs the actual delivery of one event.
type Transport interface {
	Name() string
	Deliver(ctx context.Context, event Event) error
}

type NoOpNotifier struct{}

func (NoOpNotifier) Notify(context.Context, Event) error { return nil }
