package storage

import "time"

// Transcript is a finished conversation session archived locally.
type Transcript struct {
	SessionID  string    `json:"session_id"`
	Register   string    `json:"register"`
	Score      int       `json:"score"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	DurationMs int64     `json:"duration_ms"`
	// MessageCount is maintained by an insert trigger.
	MessageCount int `json:"message_count"`
}

// TranscriptMessage is one line of an archived transcript.
type TranscriptMessage struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Role      string    `json:"role"` // "user" or "assistant"
	Content   string    `json:"content"`
	Feedback  string    `json:"feedback,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// TranscriptSummary is a list row for archived sessions.
type TranscriptSummary struct {
	SessionID    string    `json:"session_id"`
	StartedAt    time.Time `json:"started_at"`
	Score        int       `json:"score"`
	MessageCount int       `json:"message_count"`
	FirstLine    string    `json:"first_line"`
}
