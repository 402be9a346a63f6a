package api

import "encoding/json"

// Envelope is the standard response wrapper used by every backend endpoint.
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
	Code    string          `json:"code,omitempty"`
	Meta    *Meta           `json:"meta,omitempty"`

	// Raw is the undecoded response body, kept for callers that need fields
	// outside the standard envelope shape.
	Raw json.RawMessage `json:"-"`
}

// Meta carries optional request metadata returned by the backend.
type Meta struct {
	RequestID  string `json:"requestId,omitempty"`
	DurationMs int64  `json:"durationMs,omitempty"`
	Page       int    `json:"page,omitempty"`
	Limit      int    `json:"limit,omitempty"`
	Total      int    `json:"total,omitempty"`
}

// === Auth & Profile ===

type AuthMe struct {
	Auth0ID      string `json:"auth0Id"`
	UserID       string `json:"userId"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	Subscription string `json:"subscription"` // "basic" or "premium"
}

type UserProfile struct {
	UserID       string  `json:"userId"`
	Email        string  `json:"email"`
	Name         string  `json:"name"`
	AvatarURL    *string `json:"avatarUrl"`
	Subscription string  `json:"subscription"`
	Country      string  `json:"country"` // "us", "uk", "aus"
	Style        string  `json:"style"`   // "casual", "formal"
	Gender       string  `json:"gender"`
	Streak       int     `json:"streak"`
}

type UpdateProfileRequest struct {
	Name      *string `json:"name,omitempty"`
	AvatarURL *string `json:"avatarUrl,omitempty"`
	Country   *string `json:"country,omitempty"`
	Style     *string `json:"style,omitempty"`
	Gender    *string `json:"gender,omitempty"`
}

// === Conversation ===

type StartSessionResponse struct {
	SessionID string `json:"sessionId"`
	StartTime string `json:"startTime"` // ISO timestamp issued by the server
}

// ChatMessage is a transcript line in the backend's wire format.
type ChatMessage struct {
	From string `json:"from"` // "user" or "ai"
	Text string `json:"text"`
}

type FinishSessionRequest struct {
	SessionID  string        `json:"sessionId"`
	Script     []ChatMessage `json:"script"`
	DurationMs int64         `json:"durationMs,omitempty"`
	StartedAt  string        `json:"startedAt,omitempty"`
	FinishedAt string        `json:"finishedAt,omitempty"`
}

type FinishSessionResponse struct {
	SessionID     string `json:"sessionId"`
	SavedMessages int    `json:"savedMessages"`
	// Score placement varies across backend versions; callers should use
	// review.ParseScore on the raw envelope instead of this field alone.
	Score *int `json:"score,omitempty"`
}

type ConversationHistoryItem struct {
	SessionID  json.Number   `json:"sessionId"`
	StartTime  string        `json:"startTime"`
	FinishedAt *string       `json:"finishedAt"`
	Script     []ChatMessage `json:"script"`
}

type ConversationHistoryResponse struct {
	UserID  json.Number               `json:"userId"`
	History []ConversationHistoryItem `json:"history"`
}

type ConversationDetail struct {
	SessionID string        `json:"sessionId"`
	Script    []ChatMessage `json:"script"`
}

// === Subscription ===

type SubscriptionOption struct {
	CallMinutes json.RawMessage `json:"callMinutes"` // number or "∞"
	ScriptLimit json.RawMessage `json:"scriptLimit"` // number or "∞"
	Price       float64         `json:"price"`
}

type SubscriptionOptionsResponse struct {
	Basic   SubscriptionOption `json:"basic"`
	Premium SubscriptionOption `json:"premium"`
}

type SubscribeResponse struct {
	Plan      string `json:"plan"`
	StartedAt string `json:"startedAt"`
}

type CancelSubscriptionResponse struct {
	CanceledAt string `json:"canceledAt"`
}

// === AI ===

type AIChatResponse struct {
	Text string `json:"text"`
}

// AIFeedbackResponse is the structured grammar feedback contract. Natural
// sentences carry only the confirmation message; corrected ones carry the
// corrected English text plus a Korean explanation.
type AIFeedbackResponse struct {
	Natural     bool   `json:"natural"`
	Message     string `json:"message,omitempty"`
	CorrectedEN string `json:"corrected_en,omitempty"`
	ReasonKO    string `json:"reason_ko,omitempty"`
}

type ExampleReplyResponse struct {
	ReplyExample string `json:"reply_example"`
}

type STTResponse struct {
	Type       string  `json:"type,omitempty"` // "stt_result" on the streaming path
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

type TTSResponse struct {
	Audio string `json:"audio"` // base64
	Mime  string `json:"mime"`
}

// === Settings ===

type ConversationSettings struct {
	Country string `json:"country"`
	Style   string `json:"style"`
	Gender  string `json:"gender"`
}

type UpdateSettingsRequest struct {
	Country *string `json:"country,omitempty"`
	Style   *string `json:"style,omitempty"`
	Gender  *string `json:"gender,omitempty"`
}

// === Stats ===

type UserStats struct {
	TotalSessions   int   `json:"totalSessions"`
	TotalMinutes    int   `json:"totalMinutes"`
	AvgScore        int   `json:"avgScore"`
	BestScore       int   `json:"bestScore"`
	Streak          int   `json:"streak"`
	NewWordsLearned int   `json:"newWordsLearned"`
	Progress        []int `json:"progress,omitempty"`
}

// === Phrases ===

type Phrase struct {
	ID int    `json:"id"`
	EN string `json:"en"`
	KR string `json:"kr"`
}

// === Notifications ===

type NotificationSettings struct {
	Enabled bool `json:"enabled"`
}

// === Home ===

type HomeStatus struct {
	TodayConversationCount int    `json:"todayConversationCount"`
	Subscription           string `json:"subscription"`
}
