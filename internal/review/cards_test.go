package review

import (
	"testing"
)

func TestParseTagged(t *testing.T) {
	t.Run("WellFormed", func(t *testing.T) {
		feedback := "[Corrected Sentence]: I went to school yesterday.\n[Explanation]: 과거형은 went를 사용합니다."
		corrected, explanation, ok := parseTagged(feedback)
		if !ok {
			t.Fatal("expected tagged feedback to parse")
		}
		if corrected != "I went to school yesterday." {
			t.Errorf("corrected = %q", corrected)
		}
		if explanation != "과거형은 went를 사용합니다." {
			t.Errorf("explanation = %q", explanation)
		}
	})

	t.Run("MissingExplanationTag", func(t *testing.T) {
		if _, _, ok := parseTagged("[Corrected Sentence]: Nice try."); ok {
			t.Error("expected parse to fail without explanation tag")
		}
	})

	t.Run("TagsOutOfOrder", func(t *testing.T) {
		feedback := "[Explanation]: backwards\n[Corrected Sentence]: nope"
		if _, _, ok := parseTagged(feedback); ok {
			t.Error("expected parse to fail when explanation precedes corrected")
		}
	})

	t.Run("PlainTextFeedback", func(t *testing.T) {
		if _, _, ok := parseTagged("Your sentence is already natural!"); ok {
			t.Error("expected untagged feedback to be skipped")
		}
	})

	t.Run("EmptySegments", func(t *testing.T) {
		if _, _, ok := parseTagged("[Corrected Sentence]: \n[Explanation]: "); ok {
			t.Error("expected empty segments to be rejected")
		}
	})
}

func TestExtractCards(t *testing.T) {
	entries := []TranscriptEntry{
		{Role: "assistant", Text: "Hi! How was your day?"},
		{Role: "user", Text: "I go school yesterday", Feedback: FormatFeedback("I went to school yesterday.", "Use the past tense.")},
		{Role: "assistant", Text: "Nice!", Feedback: FormatFeedback("ignored", "feedback on assistant messages is not extracted")},
		{Role: "user", Text: "That sounds great"},
		{Role: "user", Text: "me too", Feedback: "already natural"},
	}

	cards := ExtractCards(entries)
	if len(cards) != 1 {
		t.Fatalf("expected 1 card, got %d", len(cards))
	}
	if cards[0].Corrected != "I went to school yesterday." {
		t.Errorf("corrected = %q", cards[0].Corrected)
	}
	if cards[0].Type != CardTypeFeedback {
		t.Errorf("type = %q", cards[0].Type)
	}
}

func TestCardKey(t *testing.T) {
	a := Card{Corrected: "  I went home. ", Explanation: "past tense\n", Type: CardTypeFeedback}
	b := Card{Corrected: "I went home.", Explanation: "past tense", Type: CardTypeFeedback}
	if a.Key() != b.Key() {
		t.Error("expected whitespace-trimmed cards to share identity")
	}

	c := Card{Corrected: "I went home.", Explanation: "past tense", Type: CardTypeSuggestion}
	if a.Key() == c.Key() {
		t.Error("expected type to participate in identity")
	}
}

func TestDedupe(t *testing.T) {
	a := Card{Corrected: "A", Explanation: "x", Type: CardTypeFeedback}
	b := Card{Corrected: "B", Explanation: "y", Type: CardTypeFeedback}

	out := Dedupe([]Card{a, b, a})
	if len(out) != 2 {
		t.Fatalf("expected 2 cards, got %d", len(out))
	}
	if out[0].Corrected != "A" || out[1].Corrected != "B" {
		t.Errorf("expected order preserved, got %v", out)
	}
}
