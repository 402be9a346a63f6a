package cmd

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	reviewCorrectedStyle = lipgloss.NewStyle().Bold(true)
	reviewReasonStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).PaddingLeft(4)
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Browse corrections saved from past sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		cards, err := lingoApp.Reviews.Flatten()
		if err != nil {
			return fmt.Errorf("failed to load review history: %w", err)
		}
		if len(cards) == 0 {
			fmt.Println("No saved corrections yet. Use /feedback during a conversation.")
			return nil
		}
		for i, c := range cards {
			fmt.Printf("%2d. %s\n", i+1, reviewCorrectedStyle.Render(c.Corrected))
			fmt.Println(reviewReasonStyle.Render(c.Explanation))
		}
		return nil
	},
}

var reviewDeleteCmd = &cobra.Command{
	Use:   "delete <number>",
	Short: "Delete a correction by its list number",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid number: %s", args[0])
		}

		cards, err := lingoApp.Reviews.Flatten()
		if err != nil {
			return fmt.Errorf("failed to load review history: %w", err)
		}
		if n < 1 || n > len(cards) {
			return fmt.Errorf("number out of range: have %d corrections", len(cards))
		}

		card := cards[n-1]
		if err := lingoApp.Reviews.DeleteCard(card); err != nil {
			return fmt.Errorf("failed to delete correction: %w", err)
		}
		fmt.Printf("Deleted: %s\n", card.Corrected)
		return nil
	},
}

var reviewClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the entire review history",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := lingoApp.Reviews.Clear(); err != nil {
			return err
		}
		fmt.Println("Review history cleared.")
		return nil
	},
}

func init() {
	reviewCmd.AddCommand(reviewDeleteCmd)
	reviewCmd.AddCommand(reviewClearCmd)
	rootCmd.AddCommand(reviewCmd)
}
