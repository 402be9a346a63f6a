package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/lingomate/lingomate-cli/internal/api"
	"github.com/lingomate/lingomate-cli/internal/review"
	"github.com/lingomate/lingomate-cli/internal/storage"
)

// Backend is the slice of the API client the controller needs.
type Backend interface {
	StartSession(ctx context.Context) (*api.StartSessionResponse, error)
	Chat(ctx context.Context, text string) (*api.AIChatResponse, error)
	Feedback(ctx context.Context, text string) (*api.AIFeedbackResponse, error)
	ExampleReply(ctx context.Context, aiText, sessionID string) (*api.ExampleReplyResponse, error)
}

// Finalizer runs the end-of-session pipeline. *review.Aggregator satisfies it.
type Finalizer interface {
	Finish(ctx context.Context, req api.FinishSessionRequest, entries []review.TranscriptEntry) (*review.Result, error)
}

// FinalizeResult is what a finished session produced.
type FinalizeResult struct {
	SessionID  string
	Trigger    FinalizeTrigger
	Score      int
	Cards      []review.Card
	DurationMs int64
	Messages   []Message
}

// Controller owns one conversation session: the remote session handle, the
// live transcript, the countdown, and the one-shot finalize.
type Controller struct {
	backend   Backend
	finalizer Finalizer
	archive   storage.TranscriptStore // optional local transcript archive
	logger    *log.Logger
	now       func() time.Time

	budget       time.Duration
	tickInterval time.Duration
	onTick       func(remaining time.Duration)
	register     string // conversational register for the archive, e.g. "casual"

	// OnFinalize runs exactly once per session, after finalize completes,
	// for both manual and automatic triggers. Set before Start.
	OnFinalize func(*FinalizeResult)

	mu          sync.Mutex
	timer       *Timer
	sessionID   string
	serverStart time.Time
	localStart  time.Time
	messages    []Message
	submitting  bool
	finalized   bool
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithArchive stores finished transcripts in the local database.
func WithArchive(store storage.TranscriptStore) ControllerOption {
	return func(c *Controller) { c.archive = store }
}

// WithTickInterval overrides the countdown granularity.
func WithTickInterval(d time.Duration) ControllerOption {
	return func(c *Controller) { c.tickInterval = d }
}

// WithOnTick registers a countdown observer.
func WithOnTick(fn func(remaining time.Duration)) ControllerOption {
	return func(c *Controller) { c.onTick = fn }
}

// WithClock overrides the controller's time source.
func WithClock(now func() time.Time) ControllerOption {
	return func(c *Controller) { c.now = now }
}

// WithRegister tags archived transcripts with the conversation style.
func WithRegister(register string) ControllerOption {
	return func(c *Controller) { c.register = register }
}

// NewController creates a session controller with the given time budget.
func NewController(backend Backend, finalizer Finalizer, budget time.Duration, opts ...ControllerOption) *Controller {
	c := &Controller{
		backend:      backend,
		finalizer:    finalizer,
		logger:       log.WithPrefix("session"),
		now:          time.Now,
		budget:       budget,
		tickInterval: DefaultTickInterval,
		register:     "casual",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start opens a session on the backend and begins the countdown. On failure
// no session exists and the controller stays idle.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.sessionID != "" && !c.finalized {
		c.mu.Unlock()
		return fmt.Errorf("session %s is still active", c.sessionID)
	}
	c.mu.Unlock()

	resp, err := c.backend.StartSession(ctx)
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.sessionID = resp.SessionID
	c.localStart = c.now()
	c.serverStart = time.Time{}
	if t, perr := time.Parse(time.RFC3339, resp.StartTime); perr == nil {
		c.serverStart = t
	}
	c.messages = nil
	c.submitting = false
	c.finalized = false

	c.timer = NewTimer(c.budget, c.tickInterval, c.onTick, func() {
		// Expiry finalizes on its own: the countdown goroutine owns no
		// request context, so the API client's timeout bounds the calls.
		if _, err := c.Finalize(context.Background(), TriggerAutomatic); err != nil && err != ErrFinalized {
			c.logger.Error("automatic finalize failed", "sessionId", resp.SessionID, "error", err)
		}
	})
	c.timer.Start()

	c.logger.Info("session started", "sessionId", resp.SessionID, "budget", c.budget)
	return nil
}

// SessionID returns the active session id, or "" when idle.
func (c *Controller) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

// Remaining returns the countdown's remaining time.
func (c *Controller) Remaining() time.Duration {
	c.mu.Lock()
	t := c.timer
	c.mu.Unlock()
	if t == nil {
		return 0
	}
	return t.Remaining()
}

// Messages returns a snapshot of the live transcript.
func (c *Controller) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Pause freezes the countdown.
func (c *Controller) Pause() {
	c.mu.Lock()
	t := c.timer
	c.mu.Unlock()
	if t != nil {
		t.Pause()
	}
}

// Resume continues a paused countdown.
func (c *Controller) Resume() {
	c.mu.Lock()
	t := c.timer
	c.mu.Unlock()
	if t != nil {
		t.Resume()
	}
}

// Submit sends a user message and appends the assistant's reply. Submits are
// single-flight: a second call while one is in flight fails with ErrBusy. A
// failed exchange keeps the user's message in the transcript so it is not
// lost from the finish payload.
func (c *Controller) Submit(ctx context.Context, text string) (*Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}

	c.mu.Lock()
	switch {
	case c.sessionID == "" || c.finalized:
		c.mu.Unlock()
		return nil, ErrNoSession
	case c.timer != nil && c.timer.Expired():
		c.mu.Unlock()
		return nil, ErrTimeUp
	case c.submitting:
		c.mu.Unlock()
		return nil, ErrBusy
	}
	c.submitting = true
	userMsg := Message{
		ID:        uuid.New().String(),
		Role:      RoleUser,
		Text:      text,
		CreatedAt: c.now(),
	}
	c.messages = append(c.messages, userMsg)
	c.mu.Unlock()

	resp, err := c.backend.Chat(ctx, text)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.submitting = false
	if err != nil {
		return nil, fmt.Errorf("failed to send message: %w", err)
	}

	reply := Message{
		ID:        uuid.New().String(),
		Role:      RoleAssistant,
		Text:      resp.Text,
		CreatedAt: c.now(),
	}
	c.messages = append(c.messages, reply)
	return &reply, nil
}

// RequestFeedback toggles grammar feedback on a user message. A message that
// already carries feedback has it cleared locally, with no network call.
// Fresh feedback is normalized into the tagged correction format; natural
// sentences keep the backend's confirmation message as-is.
func (c *Controller) RequestFeedback(ctx context.Context, messageID string) (string, error) {
	c.mu.Lock()
	idx := c.indexOf(messageID)
	if idx < 0 {
		c.mu.Unlock()
		return "", ErrMessageNotFound
	}
	msg := c.messages[idx]
	if msg.Role != RoleUser {
		c.mu.Unlock()
		return "", ErrNotUserMessage
	}
	if msg.Loading {
		c.mu.Unlock()
		return "", ErrAnnotationPending
	}
	if msg.Feedback != "" {
		c.messages[idx].Feedback = ""
		c.mu.Unlock()
		return "", nil
	}
	c.messages[idx].Loading = true
	c.mu.Unlock()

	resp, err := c.backend.Feedback(ctx, msg.Text)

	c.mu.Lock()
	defer c.mu.Unlock()
	if idx = c.indexOf(messageID); idx >= 0 {
		c.messages[idx].Loading = false
	}
	if err != nil {
		return "", fmt.Errorf("failed to get feedback: %w", err)
	}
	if idx < 0 {
		return "", ErrMessageNotFound
	}

	var feedback string
	if resp.Natural {
		feedback = resp.Message
		if feedback == "" {
			feedback = "Your sentence is already natural!"
		}
	} else {
		if strings.TrimSpace(resp.CorrectedEN) == "" || strings.TrimSpace(resp.ReasonKO) == "" {
			return "", ErrMalformedFeedback
		}
		feedback = review.FormatFeedback(resp.CorrectedEN, resp.ReasonKO)
	}
	c.messages[idx].Feedback = feedback
	return feedback, nil
}

// RequestSuggestion toggles an example reply on an assistant message. Like
// feedback, an existing suggestion is cleared locally without a network call.
func (c *Controller) RequestSuggestion(ctx context.Context, messageID string) (string, error) {
	c.mu.Lock()
	idx := c.indexOf(messageID)
	if idx < 0 {
		c.mu.Unlock()
		return "", ErrMessageNotFound
	}
	msg := c.messages[idx]
	if msg.Role != RoleAssistant {
		c.mu.Unlock()
		return "", ErrNotAssistant
	}
	if msg.Loading {
		c.mu.Unlock()
		return "", ErrAnnotationPending
	}
	if msg.Suggestion != "" {
		c.messages[idx].Suggestion = ""
		c.mu.Unlock()
		return "", nil
	}
	c.messages[idx].Loading = true
	sessionID := c.sessionID
	c.mu.Unlock()

	resp, err := c.backend.ExampleReply(ctx, msg.Text, sessionID)

	c.mu.Lock()
	defer c.mu.Unlock()
	if idx = c.indexOf(messageID); idx >= 0 {
		c.messages[idx].Loading = false
	}
	if err != nil {
		return "", fmt.Errorf("failed to get example reply: %w", err)
	}
	if idx < 0 {
		return "", ErrMessageNotFound
	}
	if strings.TrimSpace(resp.ReplyExample) == "" {
		return "", fmt.Errorf("example reply was empty")
	}
	c.messages[idx].Suggestion = resp.ReplyExample
	return resp.ReplyExample, nil
}

// indexOf must be called with c.mu held.
func (c *Controller) indexOf(messageID string) int {
	for i := range c.messages {
		if c.messages[i].ID == messageID {
			return i
		}
	}
	return -1
}

// Finalize ends the session exactly once: it stops the countdown, reports the
// transcript to the backend, persists review cards, and archives the
// transcript locally. A second call, from any trigger, fails with
// ErrFinalized and performs no work.
func (c *Controller) Finalize(ctx context.Context, trigger FinalizeTrigger) (*FinalizeResult, error) {
	c.mu.Lock()
	if c.sessionID == "" {
		c.mu.Unlock()
		return nil, ErrNoSession
	}
	if c.finalized {
		c.mu.Unlock()
		return nil, ErrFinalized
	}
	c.finalized = true
	if c.timer != nil {
		c.timer.Stop()
	}
	sessionID := c.sessionID
	localStart := c.localStart
	serverStart := c.serverStart
	messages := make([]Message, len(c.messages))
	copy(messages, c.messages)
	c.mu.Unlock()

	finishedAt := c.now()
	durationMs := finishedAt.Sub(localStart).Milliseconds()
	if durationMs < 0 {
		durationMs = 0
	}
	startedAt := localStart
	if !serverStart.IsZero() {
		startedAt = serverStart
	}

	req := api.FinishSessionRequest{
		SessionID:  sessionID,
		Script:     buildScript(messages),
		DurationMs: durationMs,
		StartedAt:  startedAt.UTC().Format(time.RFC3339),
		FinishedAt: finishedAt.UTC().Format(time.RFC3339),
	}

	res, err := c.finalizer.Finish(ctx, req, toEntries(messages))
	if err != nil {
		return nil, fmt.Errorf("failed to finalize session: %w", err)
	}

	if c.archive != nil {
		c.archiveTranscript(ctx, sessionID, res.Score, startedAt, finishedAt, durationMs, messages)
	}

	result := &FinalizeResult{
		SessionID:  sessionID,
		Trigger:    trigger,
		Score:      res.Score,
		Cards:      res.Cards,
		DurationMs: durationMs,
		Messages:   messages,
	}
	c.logger.Info("session finalized",
		"sessionId", sessionID, "trigger", trigger,
		"score", res.Score, "cards", len(res.Cards))

	if c.OnFinalize != nil {
		c.OnFinalize(result)
	}
	return result, nil
}

func (c *Controller) archiveTranscript(ctx context.Context, sessionID string, score int, startedAt, finishedAt time.Time, durationMs int64, messages []Message) {
	tr := &storage.Transcript{
		SessionID:  sessionID,
		Register:   c.register,
		Score:      score,
		StartedAt:  startedAt,
		FinishedAt: finishedAt,
		DurationMs: durationMs,
	}
	var rows []storage.TranscriptMessage
	for _, m := range messages {
		rows = append(rows, storage.TranscriptMessage{
			ID:        m.ID,
			SessionID: sessionID,
			Role:      string(m.Role),
			Content:   m.Text,
			Feedback:  m.Feedback,
			CreatedAt: m.CreatedAt,
		})
	}
	if err := c.archive.SaveTranscript(ctx, tr, rows); err != nil {
		// The archive is a local convenience; losing it must not fail the
		// finalize that already succeeded remotely.
		c.logger.Warn("failed to archive transcript", "sessionId", sessionID, "error", err)
	}
}

func buildScript(messages []Message) []api.ChatMessage {
	script := make([]api.ChatMessage, 0, len(messages))
	for _, m := range messages {
		from := "user"
		if m.Role == RoleAssistant {
			from = "ai"
		}
		script = append(script, api.ChatMessage{From: from, Text: m.Text})
	}
	return script
}

func toEntries(messages []Message) []review.TranscriptEntry {
	entries := make([]review.TranscriptEntry, 0, len(messages))
	for _, m := range messages {
		entries = append(entries, review.TranscriptEntry{
			Role:     string(m.Role),
			Text:     m.Text,
			Feedback: m.Feedback,
		})
	}
	return entries
}
