// Package stats tracks study activity locally and reconciles it with the
// backend's view.
package stats

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lingomate/lingomate-cli/internal/api"
)

// dateLayout is the day-boundary format used for streak bookkeeping.
const dateLayout = "2006-01-02"

// localStats is the on-disk shape of the local study record.
type localStats struct {
	TotalSessions    int      `json:"totalSessions"`
	TotalMinutes     int      `json:"totalMinutes"`
	ScoreSum         int      `json:"scoreSum"`
	BestScore        int      `json:"bestScore"`
	Streak           int      `json:"streak"`
	LastStudyDate    string   `json:"lastStudyDate"` // "2006-01-02"
	LearnedSentences []string `json:"learnedSentences"`
}

// Store persists local study stats to a JSON file. Safe for concurrent use.
type Store struct {
	mu     sync.Mutex
	path   string
	logger *log.Logger
	now    func() time.Time
}

// NewStore creates a stats store backed by the given file path.
func NewStore(path string) *Store {
	return &Store{
		path:   path,
		logger: log.WithPrefix("stats"),
		now:    time.Now,
	}
}

func (s *Store) load() localStats {
	var ls localStats
	data, err := os.ReadFile(s.path)
	if err != nil {
		return ls
	}
	if err := json.Unmarshal(data, &ls); err != nil {
		s.logger.Warn("local stats are corrupt, starting fresh", "path", s.path, "error", err)
		return localStats{}
	}
	return ls
}

func (s *Store) write(ls localStats) error {
	if ls.LearnedSentences == nil {
		ls.LearnedSentences = []string{}
	}
	data, err := json.MarshalIndent(ls, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal stats: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write stats: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to save stats: %w", err)
	}
	return nil
}

// RecordSession folds one finished session into the local record. Streaks
// advance on calendar-day boundaries: studying twice in one day keeps the
// streak, a gap of more than one day resets it to 1.
func (s *Store) RecordSession(durationMs int64, score int, learned []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ls := s.load()
	ls.TotalSessions++
	ls.TotalMinutes += int((durationMs + 30_000) / 60_000)
	ls.ScoreSum += score
	if score > ls.BestScore {
		ls.BestScore = score
	}

	today := s.now().Format(dateLayout)
	yesterday := s.now().AddDate(0, 0, -1).Format(dateLayout)
	switch ls.LastStudyDate {
	case today:
		// already counted today
	case yesterday:
		ls.Streak++
	default:
		ls.Streak = 1
	}
	ls.LastStudyDate = today

	if len(learned) > 0 {
		set := make(map[string]struct{}, len(ls.LearnedSentences)+len(learned))
		for _, v := range ls.LearnedSentences {
			set[v] = struct{}{}
		}
		for _, v := range learned {
			set[v] = struct{}{}
		}
		ls.LearnedSentences = ls.LearnedSentences[:0]
		for v := range set {
			ls.LearnedSentences = append(ls.LearnedSentences, v)
		}
		sort.Strings(ls.LearnedSentences)
	}

	return s.write(ls)
}

// Snapshot returns the local record as backend-shaped stats.
func (s *Store) Snapshot() api.UserStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	ls := s.load()
	avg := 0
	if ls.TotalSessions > 0 {
		avg = ls.ScoreSum / ls.TotalSessions
	}

	streak := ls.Streak
	if streak > 0 && ls.LastStudyDate != "" {
		// A streak is only live if the last study day was today or yesterday.
		today := s.now().Format(dateLayout)
		yesterday := s.now().AddDate(0, 0, -1).Format(dateLayout)
		if ls.LastStudyDate != today && ls.LastStudyDate != yesterday {
			streak = 0
		}
	}

	return api.UserStats{
		TotalSessions:   ls.TotalSessions,
		TotalMinutes:    ls.TotalMinutes,
		AvgScore:        avg,
		BestScore:       ls.BestScore,
		Streak:          streak,
		NewWordsLearned: len(ls.LearnedSentences),
	}
}

// Merge reconciles the backend's stats with the local record. Server values
// win except where the server reports zero and the local record knows better,
// which happens when sessions finished offline or before the backend rolled
// up its aggregates.
func Merge(server, local api.UserStats) api.UserStats {
	out := server
	if out.TotalSessions == 0 {
		out.TotalSessions = local.TotalSessions
	}
	if out.TotalMinutes == 0 {
		out.TotalMinutes = local.TotalMinutes
	}
	if out.AvgScore == 0 {
		out.AvgScore = local.AvgScore
	}
	if out.BestScore == 0 {
		out.BestScore = local.BestScore
	}
	if out.Streak == 0 {
		out.Streak = local.Streak
	}
	if out.NewWordsLearned == 0 {
		out.NewWordsLearned = local.NewWordsLearned
	}
	if len(out.Progress) == 0 {
		out.Progress = local.Progress
	}
	return out
}
