package review

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// DefaultMaxBatches caps how many review batches the store retains. Oldest
// batches are evicted first.
const DefaultMaxBatches = 100

// Batch is one session's worth of review cards saved together.
type Batch struct {
	ID        string `json:"id"`
	CreatedAt int64  `json:"createdAt"` // unix milliseconds
	Cards     []Card `json:"cards"`
}

// Store persists review batches to a single JSON file. All methods are safe
// for concurrent use.
type Store struct {
	mu         sync.Mutex
	path       string
	maxBatches int
	logger     *log.Logger
}

// NewStore creates a review history store backed by the given file path.
func NewStore(path string, maxBatches int) *Store {
	if maxBatches <= 0 {
		maxBatches = DefaultMaxBatches
	}
	return &Store{
		path:       path,
		maxBatches: maxBatches,
		logger:     log.WithPrefix("review"),
	}
}

// Load returns all stored batches, newest first. A missing or corrupt file is
// treated as an empty history.
func (s *Store) Load() ([]Batch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Store) load() ([]Batch, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read review history: %w", err)
	}

	var batches []Batch
	if err := json.Unmarshal(data, &batches); err != nil {
		s.logger.Warn("review history is corrupt, starting fresh", "path", s.path, "error", err)
		return nil, nil
	}
	return batches, nil
}

// Append saves a new batch of cards. Cards already present in any stored
// batch are dropped first; if nothing new remains, no batch is written and
// Append reports false. The store is trimmed to its batch cap after the
// write.
func (s *Store) Append(cards []Card) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	batches, err := s.load()
	if err != nil {
		return false, err
	}

	existing := make(map[string]struct{})
	for _, b := range batches {
		for _, c := range b.Cards {
			existing[c.Key()] = struct{}{}
		}
	}

	var fresh []Card
	for _, c := range Dedupe(cards) {
		if _, dup := existing[c.Key()]; dup {
			continue
		}
		fresh = append(fresh, c)
	}
	if len(fresh) == 0 {
		return false, nil
	}

	batch := Batch{
		ID:        uuid.New().String(),
		CreatedAt: time.Now().UnixMilli(),
		Cards:     fresh,
	}
	batches = append([]Batch{batch}, batches...)
	if len(batches) > s.maxBatches {
		batches = batches[:s.maxBatches]
	}

	if err := s.write(batches); err != nil {
		return false, err
	}
	s.logger.Debug("saved review batch", "cards", len(fresh), "batches", len(batches))
	return true, nil
}

// DeleteCard removes every occurrence of the card, by identity, across all
// batches. Batches left empty are dropped entirely.
func (s *Store) DeleteCard(card Card) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	batches, err := s.load()
	if err != nil {
		return err
	}

	key := card.Key()
	out := batches[:0]
	for _, b := range batches {
		kept := b.Cards[:0]
		for _, c := range b.Cards {
			if c.Key() != key {
				kept = append(kept, c)
			}
		}
		if len(kept) > 0 {
			b.Cards = kept
			out = append(out, b)
		}
	}
	return s.write(out)
}

// Clear removes the entire review history.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear review history: %w", err)
	}
	return nil
}

// Flatten returns every stored card as a single deduplicated list, oldest
// batch first, preserving card order within each batch.
func (s *Store) Flatten() ([]Card, error) {
	batches, err := s.Load()
	if err != nil {
		return nil, err
	}

	var all []Card
	for i := len(batches) - 1; i >= 0; i-- {
		all = append(all, batches[i].Cards...)
	}
	return Dedupe(all), nil
}

func (s *Store) write(batches []Batch) error {
	if batches == nil {
		batches = []Batch{}
	}
	data, err := json.MarshalIndent(batches, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal review history: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write review history: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to save review history: %w", err)
	}
	return nil
}
