package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lingomate/lingomate-cli/internal/api"
	"github.com/lingomate/lingomate-cli/internal/stats"
)

var statsLocalOnly bool

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show study statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		local := lingoApp.Stats.Snapshot()

		merged := local
		if !statsLocalOnly {
			server, err := lingoApp.Client.GetStats(cmd.Context())
			if err != nil {
				fmt.Println("(offline: showing local stats only)")
			} else {
				merged = stats.Merge(*server, local)
			}
		}

		printStats(merged)
		return nil
	},
}

func printStats(s api.UserStats) {
	fmt.Printf("Sessions:      %d\n", s.TotalSessions)
	fmt.Printf("Minutes:       %d\n", s.TotalMinutes)
	fmt.Printf("Average score: %d\n", s.AvgScore)
	fmt.Printf("Best score:    %d\n", s.BestScore)
	fmt.Printf("Streak:        %d day(s)\n", s.Streak)
	fmt.Printf("New sentences: %d\n", s.NewWordsLearned)
}

func init() {
	statsCmd.Flags().BoolVar(&statsLocalOnly, "local", false, "Skip the backend and show local stats")
	rootCmd.AddCommand(statsCmd)
}
