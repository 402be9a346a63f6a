package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var phrasesCmd = &cobra.Command{
	Use:   "phrases",
	Short: "Show today's practice phrases",
	RunE: func(cmd *cobra.Command, args []string) error {
		phrases, err := lingoApp.Client.GetPhrases(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to fetch phrases: %w", err)
		}
		for _, p := range phrases {
			fmt.Printf("%s\n    %s\n", p.EN, p.KR)
		}
		return nil
	},
}

var (
	notifyOn  bool
	notifyOff bool
)

var notificationsCmd = &cobra.Command{
	Use:   "notifications",
	Short: "Show or change practice reminders",
	RunE: func(cmd *cobra.Command, args []string) error {
		if notifyOn && notifyOff {
			return fmt.Errorf("--on and --off are mutually exclusive")
		}

		if notifyOn || notifyOff {
			s, err := lingoApp.Client.UpdateNotificationSettings(cmd.Context(), notifyOn)
			if err != nil {
				return fmt.Errorf("failed to update notifications: %w", err)
			}
			fmt.Printf("Reminders enabled: %v\n", s.Enabled)
			return nil
		}

		s, err := lingoApp.Client.GetNotificationSettings(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to fetch notifications: %w", err)
		}
		fmt.Printf("Reminders enabled: %v\n", s.Enabled)
		return nil
	},
}

func init() {
	notificationsCmd.Flags().BoolVar(&notifyOn, "on", false, "Enable reminders")
	notificationsCmd.Flags().BoolVar(&notifyOff, "off", false, "Disable reminders")
	rootCmd.AddCommand(phrasesCmd)
	rootCmd.AddCommand(notificationsCmd)
}
