package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventSubjectLoggedIn   EventType = "subject_logged_in"
	EventTokenRefreshed    EventType = "token_refreshed"
	EventSubjectLoggedOut  EventType = "subject_logged_out"
	EventSessionSuperseded EventType = "session_superseded"
)

// Event represents an authentication event emitted by the core.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	SubjectID string    `json:"subject_id"`
	Username  string    `json:"username,omitempty"`
	TokenID   string    `json:"token_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
