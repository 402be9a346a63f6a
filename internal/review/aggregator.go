package review

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/lingomate/lingomate-cli/internal/api"
)

// Finisher closes a session on the backend. *api.Client satisfies it.
type Finisher interface {
	FinishSession(ctx context.Context, req api.FinishSessionRequest) (*api.FinishSessionResponse, *api.Envelope, error)
}

// Result is the outcome of aggregating a finished session.
type Result struct {
	Score     int
	Cards     []Card
	Persisted bool // false when every extracted card was already stored
}

// Aggregator runs the end-of-session pipeline: extract review cards from the
// transcript, report the session to the backend, and persist the cards
// locally.
type Aggregator struct {
	finisher Finisher
	store    *Store
	logger   *log.Logger
}

// NewAggregator wires an aggregator to the backend and the local store.
func NewAggregator(finisher Finisher, store *Store) *Aggregator {
	return &Aggregator{
		finisher: finisher,
		store:    store,
		logger:   log.WithPrefix("review"),
	}
}

// Finish extracts cards from the transcript, closes the session remotely, and
// saves the cards. Neither the remote call nor the local save failing blocks
// the result: a dead network falls back to score 0, and a failed history
// write is logged and dropped, so the caller always gets score and cards.
func (a *Aggregator) Finish(ctx context.Context, req api.FinishSessionRequest, entries []TranscriptEntry) (*Result, error) {
	cards := ExtractCards(entries)

	score := 0
	if req.SessionID == "" {
		a.logger.Warn("no session id, skipping remote finish")
	} else {
		_, env, err := a.finisher.FinishSession(ctx, req)
		if err != nil {
			a.logger.Warn("failed to finish session remotely", "sessionId", req.SessionID, "error", err)
		}
		if env != nil {
			score = ParseScore(env.Raw)
		}
	}

	persisted := false
	if len(cards) > 0 {
		var err error
		persisted, err = a.store.Append(cards)
		if err != nil {
			// A failed history write must not strand the session mid-finish.
			a.logger.Warn("failed to persist review cards", "error", err)
			persisted = false
		}
	}

	return &Result{Score: score, Cards: cards, Persisted: persisted}, nil
}
