package session

import (
	"errors"
	"time"
)

// Role identifies who produced a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one line of the live transcript, plus any on-demand annotations
// the user requested for it.
type Message struct {
	ID         string
	Role       Role
	Text       string
	Feedback   string // tagged correction, or a plain "already natural" note
	Suggestion string // example reply, assistant messages only
	Loading    bool   // an annotation request for this message is in flight
	CreatedAt  time.Time
}

// FinalizeTrigger records what ended the session.
type FinalizeTrigger string

const (
	TriggerManual    FinalizeTrigger = "manual"
	TriggerAutomatic FinalizeTrigger = "automatic"
)

var (
	ErrNoSession         = errors.New("no active session")
	ErrEmptyMessage      = errors.New("message is empty")
	ErrTimeUp            = errors.New("session time is up")
	ErrBusy              = errors.New("a message is already being sent")
	ErrFinalized         = errors.New("session already finalized")
	ErrNotUserMessage    = errors.New("feedback applies to user messages only")
	ErrNotAssistant      = errors.New("suggestions apply to assistant messages only")
	ErrMessageNotFound   = errors.New("message not found")
	ErrMalformedFeedback = errors.New("feedback response missing correction or explanation")
	ErrAnnotationPending = errors.New("an annotation request for this message is already in flight")
)
