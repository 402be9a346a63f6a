package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lingomate/lingomate-cli/internal/api"
)

var (
	settingsAccent string
	settingsStyle  string
	settingsGender string
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change conversation settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		req := api.UpdateSettingsRequest{}
		if cmd.Flags().Changed("accent") {
			req.Country = &settingsAccent
		}
		if cmd.Flags().Changed("style") {
			req.Style = &settingsStyle
		}
		if cmd.Flags().Changed("gender") {
			req.Gender = &settingsGender
		}

		var s *api.ConversationSettings
		var err error
		if req == (api.UpdateSettingsRequest{}) {
			s, err = lingoApp.Client.GetSettings(cmd.Context())
		} else {
			s, err = lingoApp.Client.UpdateSettings(cmd.Context(), req)
		}
		if err != nil {
			return fmt.Errorf("failed to access settings: %w", err)
		}

		fmt.Printf("Accent: %s\nStyle:  %s\nVoice:  %s\n", s.Country, s.Style, s.Gender)
		return nil
	},
}

func init() {
	settingsCmd.Flags().StringVar(&settingsAccent, "accent", "", "Accent: us, uk, or aus")
	settingsCmd.Flags().StringVar(&settingsStyle, "style", "", "Conversation style: casual or formal")
	settingsCmd.Flags().StringVar(&settingsGender, "gender", "", "AI voice gender: male or female")
	rootCmd.AddCommand(settingsCmd)
}
