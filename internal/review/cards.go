// Package review turns finished conversation transcripts into durable,
// deduplicated review material.
package review

import (
	"fmt"
	"strings"
)

// CardType distinguishes where a review card came from.
type CardType string

const (
	CardTypeFeedback   CardType = "feedback"
	CardTypeSuggestion CardType = "suggestion"
)

// Card is one unit of corrected language material surfaced for review.
type Card struct {
	Corrected   string   `json:"corrected"`
	Explanation string   `json:"explanation"`
	Type        CardType `json:"type"`
}

// Key is the card's identity: two cards are the same card if and only if
// their trimmed corrected text, trimmed explanation, and type all match.
func (c Card) Key() string {
	return fmt.Sprintf("%s||%s||%s",
		strings.TrimSpace(c.Corrected),
		strings.TrimSpace(c.Explanation),
		c.Type)
}

// Tag markers of the legacy feedback format. The feedback endpoint's
// structured response is flattened into this tagged string for display, and
// parsed back out here at session end.
const (
	correctedTag   = "[Corrected Sentence]:"
	explanationTag = "[Explanation]:"
)

// FormatFeedback renders a structured correction in the tagged legacy format.
func FormatFeedback(corrected, explanation string) string {
	return fmt.Sprintf("%s %s\n%s %s", correctedTag, corrected, explanationTag, explanation)
}

// TranscriptEntry is the slice of a session message that card extraction
// needs.
type TranscriptEntry struct {
	Role     string // "user" or "assistant"
	Text     string
	Feedback string
}

// ExtractCards scans a transcript for user messages carrying feedback in the
// tagged format and returns one feedback card per parseable annotation, in
// transcript order. Annotations that don't match the tagged format (for
// example "already natural" confirmations) are skipped, not defaulted.
func ExtractCards(entries []TranscriptEntry) []Card {
	var cards []Card
	for _, e := range entries {
		if e.Role != "user" || e.Feedback == "" {
			continue
		}
		corrected, explanation, ok := parseTagged(e.Feedback)
		if !ok {
			continue
		}
		cards = append(cards, Card{
			Corrected:   corrected,
			Explanation: explanation,
			Type:        CardTypeFeedback,
		})
	}
	return cards
}

// parseTagged extracts the corrected sentence and explanation from the tagged
// feedback format. Both markers must be present, corrected before explanation.
func parseTagged(feedback string) (corrected, explanation string, ok bool) {
	ci := strings.Index(feedback, correctedTag)
	ei := strings.Index(feedback, explanationTag)
	if ci < 0 || ei < 0 || ei < ci {
		return "", "", false
	}

	corrected = strings.TrimSpace(feedback[ci+len(correctedTag) : ei])
	explanation = strings.TrimSpace(feedback[ei+len(explanationTag):])
	if corrected == "" || explanation == "" {
		return "", "", false
	}
	return corrected, explanation, true
}

// Dedupe returns the cards with later duplicates removed, preserving order.
func Dedupe(cards []Card) []Card {
	seen := make(map[string]struct{}, len(cards))
	out := make([]Card, 0, len(cards))
	for _, c := range cards {
		k := c.Key()
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, c)
	}
	return out
}
