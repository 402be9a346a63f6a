package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show today's usage and plan",
	RunE: func(cmd *cobra.Command, args []string) error {
		hs, err := lingoApp.Client.GetHomeStatus(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to fetch status: %w", err)
		}
		fmt.Printf("Conversations today: %d\n", hs.TodayConversationCount)
		fmt.Printf("Plan:                %s\n", hs.Subscription)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
