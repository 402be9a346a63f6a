package stats

import (
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/lingomate/lingomate-cli/internal/api"
)

func newTestStore(t *testing.T, now time.Time) *Store {
	t.Helper()
	s := NewStore(filepath.Join(t.TempDir(), "local_stats.json"))
	s.now = func() time.Time { return now }
	return s
}

func TestRecordSession(t *testing.T) {
	day := func(d int) time.Time {
		return time.Date(2026, 8, d, 12, 0, 0, 0, time.UTC)
	}

	t.Run("Aggregates", func(t *testing.T) {
		s := newTestStore(t, day(1))
		if err := s.RecordSession(10*60_000, 80, []string{"I went home."}); err != nil {
			t.Fatal(err)
		}
		if err := s.RecordSession(5*60_000, 60, []string{"I went home.", "See you soon."}); err != nil {
			t.Fatal(err)
		}

		snap := s.Snapshot()
		if snap.TotalSessions != 2 {
			t.Errorf("sessions = %d", snap.TotalSessions)
		}
		if snap.TotalMinutes != 15 {
			t.Errorf("minutes = %d", snap.TotalMinutes)
		}
		if snap.AvgScore != 70 || snap.BestScore != 80 {
			t.Errorf("avg = %d, best = %d", snap.AvgScore, snap.BestScore)
		}
		if snap.NewWordsLearned != 2 {
			t.Errorf("learned = %d, want deduped 2", snap.NewWordsLearned)
		}
	})

	t.Run("StreakAdvancesAcrossDays", func(t *testing.T) {
		s := newTestStore(t, day(1))
		if err := s.RecordSession(60_000, 50, nil); err != nil {
			t.Fatal(err)
		}
		if got := s.Snapshot().Streak; got != 1 {
			t.Fatalf("streak = %d, want 1", got)
		}

		// Same day again: no double count.
		if err := s.RecordSession(60_000, 50, nil); err != nil {
			t.Fatal(err)
		}
		if got := s.Snapshot().Streak; got != 1 {
			t.Errorf("streak after same-day session = %d, want 1", got)
		}

		// Next day extends.
		s.now = func() time.Time { return day(2) }
		if err := s.RecordSession(60_000, 50, nil); err != nil {
			t.Fatal(err)
		}
		if got := s.Snapshot().Streak; got != 2 {
			t.Errorf("streak = %d, want 2", got)
		}

		// A gap resets.
		s.now = func() time.Time { return day(5) }
		if err := s.RecordSession(60_000, 50, nil); err != nil {
			t.Fatal(err)
		}
		if got := s.Snapshot().Streak; got != 1 {
			t.Errorf("streak after gap = %d, want 1", got)
		}
	})

	t.Run("StaleStreakReadsAsZero", func(t *testing.T) {
		s := newTestStore(t, day(1))
		if err := s.RecordSession(60_000, 50, nil); err != nil {
			t.Fatal(err)
		}
		s.now = func() time.Time { return day(10) }
		if got := s.Snapshot().Streak; got != 0 {
			t.Errorf("stale streak = %d, want 0", got)
		}
	})
}

func TestMerge(t *testing.T) {
	local := api.UserStats{
		TotalSessions: 3, TotalMinutes: 25, AvgScore: 70,
		BestScore: 90, Streak: 2, NewWordsLearned: 12,
	}

	t.Run("ServerWins", func(t *testing.T) {
		server := api.UserStats{
			TotalSessions: 10, TotalMinutes: 90, AvgScore: 75,
			BestScore: 95, Streak: 4, NewWordsLearned: 30,
		}
		if got := Merge(server, local); !reflect.DeepEqual(got, server) {
			t.Errorf("merge = %+v, want server values", got)
		}
	})

	t.Run("LocalFillsServerZeroes", func(t *testing.T) {
		server := api.UserStats{TotalSessions: 10, Streak: 0, BestScore: 0}
		got := Merge(server, local)
		if got.TotalSessions != 10 {
			t.Errorf("sessions = %d, want server 10", got.TotalSessions)
		}
		if got.Streak != 2 || got.BestScore != 90 {
			t.Errorf("zero fields not filled from local: %+v", got)
		}
	})

	t.Run("BothZeroStaysZero", func(t *testing.T) {
		got := Merge(api.UserStats{}, api.UserStats{})
		if !reflect.DeepEqual(got, api.UserStats{}) {
			t.Errorf("merge of empties = %+v", got)
		}
	})
}
