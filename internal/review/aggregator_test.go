package review

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/lingomate/lingomate-cli/internal/api"
)

type fakeFinisher struct {
	calls int
	body  string
	err   error
}

func (f *fakeFinisher) FinishSession(ctx context.Context, req api.FinishSessionRequest) (*api.FinishSessionResponse, *api.Envelope, error) {
	f.calls++
	if f.err != nil {
		return nil, nil, f.err
	}
	env := &api.Envelope{Success: true, Raw: []byte(f.body)}
	return &api.FinishSessionResponse{}, env, nil
}

func TestAggregatorFinish(t *testing.T) {
	entries := []TranscriptEntry{
		{Role: "user", Text: "I go home", Feedback: FormatFeedback("I went home.", "Use the past tense.")},
		{Role: "assistant", Text: "Got it!"},
	}
	req := api.FinishSessionRequest{SessionID: "sess-1"}

	t.Run("HappyPath", func(t *testing.T) {
		finisher := &fakeFinisher{body: `{"success":true,"data":{"score":85}}`}
		store := NewStore(filepath.Join(t.TempDir(), "history.json"), 0)
		agg := NewAggregator(finisher, store)

		res, err := agg.Finish(context.Background(), req, entries)
		if err != nil {
			t.Fatal(err)
		}
		if res.Score != 85 {
			t.Errorf("score = %d, want 85", res.Score)
		}
		if len(res.Cards) != 1 || !res.Persisted {
			t.Errorf("unexpected result: %+v", res)
		}
		if finisher.calls != 1 {
			t.Errorf("finish called %d times", finisher.calls)
		}

		batches, _ := store.Load()
		if len(batches) != 1 {
			t.Errorf("expected cards persisted, got %+v", batches)
		}
	})

	t.Run("RemoteFailureStillPersists", func(t *testing.T) {
		finisher := &fakeFinisher{err: errors.New("network down")}
		store := NewStore(filepath.Join(t.TempDir(), "history.json"), 0)
		agg := NewAggregator(finisher, store)

		res, err := agg.Finish(context.Background(), req, entries)
		if err != nil {
			t.Fatal(err)
		}
		if res.Score != 0 {
			t.Errorf("score = %d, want fallback 0", res.Score)
		}
		if !res.Persisted {
			t.Error("expected cards persisted despite remote failure")
		}
	})

	t.Run("PersistFailureStillReturnsResult", func(t *testing.T) {
		finisher := &fakeFinisher{body: `{"success":true,"data":{"score":85}}`}
		// Rooting the store under a regular file makes every read fail.
		blocker := filepath.Join(t.TempDir(), "blocker")
		if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
		agg := NewAggregator(finisher, NewStore(filepath.Join(blocker, "history.json"), 0))

		res, err := agg.Finish(context.Background(), req, entries)
		if err != nil {
			t.Fatalf("persist failure must not fail the finish: %v", err)
		}
		if res.Score != 85 || len(res.Cards) != 1 {
			t.Errorf("unexpected result: %+v", res)
		}
		if res.Persisted {
			t.Error("expected Persisted false when the store is unwritable")
		}
	})

	t.Run("NoSessionSkipsRemote", func(t *testing.T) {
		finisher := &fakeFinisher{body: `{"success":true,"data":{"score":85}}`}
		store := NewStore(filepath.Join(t.TempDir(), "history.json"), 0)
		agg := NewAggregator(finisher, store)

		res, err := agg.Finish(context.Background(), api.FinishSessionRequest{}, entries)
		if err != nil {
			t.Fatal(err)
		}
		if finisher.calls != 0 {
			t.Errorf("finish called %d times, want 0", finisher.calls)
		}
		if res.Score != 0 {
			t.Errorf("score = %d, want 0", res.Score)
		}
		if !res.Persisted {
			t.Error("expected cards persisted without a session id")
		}
	})

	t.Run("NoCardsSkipsStore", func(t *testing.T) {
		finisher := &fakeFinisher{body: `{"success":true}`}
		path := filepath.Join(t.TempDir(), "history.json")
		agg := NewAggregator(finisher, NewStore(path, 0))

		res, err := agg.Finish(context.Background(), req, []TranscriptEntry{
			{Role: "user", Text: "hello"},
		})
		if err != nil {
			t.Fatal(err)
		}
		if res.Persisted || len(res.Cards) != 0 {
			t.Errorf("unexpected result: %+v", res)
		}
	})
}
