package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	historyLocal bool
	historyPage  int
	historyLimit int
)

var historyHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past conversations",
	RunE: func(cmd *cobra.Command, args []string) error {
		if historyLocal {
			return listLocalHistory(cmd)
		}

		resp, err := lingoApp.Client.GetHistory(cmd.Context(), historyPage, historyLimit)
		if err != nil {
			return fmt.Errorf("failed to fetch history: %w", err)
		}
		if len(resp.History) == 0 {
			fmt.Println("No conversations yet. Run `lingomate` to start one.")
			return nil
		}

		for _, item := range resp.History {
			first := ""
			for _, m := range item.Script {
				if m.From == "user" {
					first = m.Text
					break
				}
			}
			fmt.Printf("%s  %s  %s\n",
				historyHeaderStyle.Render(item.SessionID.String()),
				item.StartTime, truncate(first, 60))
		}
		return nil
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Print one conversation's transcript",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if historyLocal {
			return showLocalTranscript(cmd, args[0])
		}

		detail, err := lingoApp.Client.GetConversation(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to fetch conversation: %w", err)
		}
		for _, m := range detail.Script {
			who := "You"
			if m.From == "ai" {
				who = "AI "
			}
			fmt.Printf("%s: %s\n", who, m.Text)
		}
		return nil
	},
}

var historyDeleteAll bool

var historyDeleteCmd = &cobra.Command{
	Use:   "delete [session-id]",
	Short: "Delete a conversation, or all of them with --all",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if historyLocal {
			if len(args) == 0 {
				return fmt.Errorf("provide a session id")
			}
			store, err := lingoApp.Transcripts()
			if err != nil {
				return err
			}
			if err := store.DeleteTranscript(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Println("Archived conversation deleted.")
			return nil
		}
		if historyDeleteAll {
			if err := lingoApp.Client.DeleteAllConversations(cmd.Context()); err != nil {
				return fmt.Errorf("failed to delete history: %w", err)
			}
			fmt.Println("All conversations deleted.")
			return nil
		}
		if len(args) == 0 {
			return fmt.Errorf("provide a session id or --all")
		}
		if err := lingoApp.Client.DeleteConversation(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("failed to delete conversation: %w", err)
		}
		fmt.Println("Conversation deleted.")
		return nil
	},
}

func listLocalHistory(cmd *cobra.Command) error {
	store, err := lingoApp.Transcripts()
	if err != nil {
		return err
	}
	summaries, err := store.ListTranscripts(cmd.Context(), historyLimit, (historyPage-1)*historyLimit)
	if err != nil {
		return fmt.Errorf("failed to list local transcripts: %w", err)
	}
	if len(summaries) == 0 {
		fmt.Println("No archived conversations on this machine.")
		return nil
	}
	for _, s := range summaries {
		fmt.Printf("%s  %s  score %d  %d msgs  %s\n",
			historyHeaderStyle.Render(s.SessionID),
			s.StartedAt.Format("2006-01-02 15:04"),
			s.Score, s.MessageCount, truncate(s.FirstLine, 40))
	}
	return nil
}

func showLocalTranscript(cmd *cobra.Command, sessionID string) error {
	store, err := lingoApp.Transcripts()
	if err != nil {
		return err
	}
	tr, messages, err := store.GetTranscript(cmd.Context(), sessionID)
	if err != nil {
		return err
	}
	fmt.Printf("Session %s, score %d\n\n", tr.SessionID, tr.Score)
	for _, m := range messages {
		who := "You"
		if m.Role == "assistant" {
			who = "AI "
		}
		fmt.Printf("%s: %s\n", who, m.Content)
		if m.Feedback != "" {
			fmt.Printf("     %s\n", strings.ReplaceAll(m.Feedback, "\n", "\n     "))
		}
	}
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

func init() {
	historyCmd.PersistentFlags().BoolVar(&historyLocal, "local", false, "Use the local transcript archive")
	historyCmd.PersistentFlags().IntVar(&historyPage, "page", 1, "Page number")
	historyCmd.PersistentFlags().IntVar(&historyLimit, "limit", 20, "Items per page")
	historyDeleteCmd.Flags().BoolVar(&historyDeleteAll, "all", false, "Delete every conversation")

	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyDeleteCmd)
	rootCmd.AddCommand(historyCmd)
}
