package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func newTestTranscriptStore(t *testing.T) TranscriptStore {
	t.Helper()
	store, err := NewTranscriptStore(filepath.Join(t.TempDir(), "transcripts.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleTranscript(sessionID string, start time.Time) (*Transcript, []TranscriptMessage) {
	tr := &Transcript{
		SessionID:  sessionID,
		Register:   "casual",
		Score:      72,
		StartedAt:  start,
		FinishedAt: start.Add(10 * time.Minute),
		DurationMs: 600_000,
	}
	msgs := []TranscriptMessage{
		{ID: sessionID + "-m1", SessionID: sessionID, Role: "user", Content: "I go to park", Feedback: "[Corrected Sentence]: I went to the park.\n[Explanation]: past tense", CreatedAt: start},
		{ID: sessionID + "-m2", SessionID: sessionID, Role: "assistant", Content: "Sounds fun!", CreatedAt: start.Add(time.Second)},
	}
	return tr, msgs
}

func TestTranscriptStoreCRUD(t *testing.T) {
	store := newTestTranscriptStore(t)
	ctx := context.Background()
	start := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)

	tr, msgs := sampleTranscript("sess-1", start)
	if err := store.SaveTranscript(ctx, tr, msgs); err != nil {
		t.Fatal(err)
	}

	t.Run("Get", func(t *testing.T) {
		got, messages, err := store.GetTranscript(ctx, "sess-1")
		if err != nil {
			t.Fatal(err)
		}
		if got.Score != 72 || got.Register != "casual" {
			t.Errorf("transcript = %+v", got)
		}
		if got.MessageCount != 2 {
			t.Errorf("message_count = %d, want trigger-maintained 2", got.MessageCount)
		}
		if len(messages) != 2 || messages[0].Role != "user" {
			t.Fatalf("messages = %+v", messages)
		}
		if messages[0].Feedback == "" {
			t.Error("feedback column not round-tripped")
		}
		if messages[1].Feedback != "" {
			t.Error("empty feedback should stay empty")
		}
	})

	t.Run("GetMissing", func(t *testing.T) {
		if _, _, err := store.GetTranscript(ctx, "nope"); err == nil {
			t.Error("expected error for unknown session")
		}
	})

	t.Run("ListNewestFirst", func(t *testing.T) {
		tr2, msgs2 := sampleTranscript("sess-2", start.Add(24*time.Hour))
		if err := store.SaveTranscript(ctx, tr2, msgs2); err != nil {
			t.Fatal(err)
		}

		summaries, err := store.ListTranscripts(ctx, 10, 0)
		if err != nil {
			t.Fatal(err)
		}
		if len(summaries) != 2 {
			t.Fatalf("got %d summaries", len(summaries))
		}
		if summaries[0].SessionID != "sess-2" {
			t.Errorf("newest first expected, got %s", summaries[0].SessionID)
		}
		if summaries[0].FirstLine != "I go to park" {
			t.Errorf("first line = %q", summaries[0].FirstLine)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		if err := store.DeleteTranscript(ctx, "sess-1"); err != nil {
			t.Fatal(err)
		}
		if _, _, err := store.GetTranscript(ctx, "sess-1"); err == nil {
			t.Error("transcript still present after delete")
		}

		// Re-using the session id must not resurrect the old messages.
		tr, _ := sampleTranscript("sess-1", start)
		fresh := []TranscriptMessage{
			{ID: "sess-1-m3", SessionID: "sess-1", Role: "user", Content: "Hello again", CreatedAt: start},
		}
		if err := store.SaveTranscript(ctx, tr, fresh); err != nil {
			t.Fatal(err)
		}
		_, messages, err := store.GetTranscript(ctx, "sess-1")
		if err != nil {
			t.Fatal(err)
		}
		if len(messages) != 1 || messages[0].ID != "sess-1-m3" {
			t.Fatalf("expected only the fresh message, got %+v", messages)
		}
	})

	t.Run("DuplicateSessionRejected", func(t *testing.T) {
		tr3, msgs3 := sampleTranscript("sess-2", start)
		if err := store.SaveTranscript(ctx, tr3, msgs3); err == nil {
			t.Error("expected primary-key violation for duplicate session")
		}
	})
}
