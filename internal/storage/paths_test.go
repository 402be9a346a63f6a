package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func TestPathManager(t *testing.T) {
	root := filepath.Join(t.TempDir(), ".lingomate")
	pm := NewPathManagerAt(root)

	t.Run("CreatesDataDir", func(t *testing.T) {
		dir, err := pm.GetLingomateDir()
		if err != nil {
			t.Fatal(err)
		}
		if dir != root {
			t.Errorf("dir = %q, want %q", dir, root)
		}
		if _, err := os.Stat(dir); err != nil {
			t.Errorf("data dir not created: %v", err)
		}
	})

	t.Run("KnownFileNames", func(t *testing.T) {
		checks := []struct {
			name string
			get  func() (string, error)
			want string
		}{
			{"transcripts", pm.GetTranscriptDatabasePath, "transcripts.db"},
			{"review", pm.GetReviewHistoryPath, "review_history_v1.json"},
			{"tokens", pm.GetTokenPath, "credentials.json"},
			{"stats", pm.GetLocalStatsPath, "local_stats.json"},
		}
		for _, c := range checks {
			t.Run(c.name, func(t *testing.T) {
				p, err := c.get()
				if err != nil {
					t.Fatal(err)
				}
				if filepath.Base(p) != c.want {
					t.Errorf("path = %q, want base %q", p, c.want)
				}
				if filepath.Dir(p) != root {
					t.Errorf("path %q not under data dir", p)
				}
			})
		}
	})

	t.Run("LogsDir", func(t *testing.T) {
		dir, err := pm.GetLogsDir()
		if err != nil {
			t.Fatal(err)
		}
		if _, err := os.Stat(dir); err != nil {
			t.Errorf("logs dir not created: %v", err)
		}
	})
}
