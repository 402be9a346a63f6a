package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lingomate/lingomate-cli/internal/api"
)

var (
	profileName    string
	profileCountry string
	profileStyle   string
	profileGender  string
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show your profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := lingoApp.Client.GetProfile(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to fetch profile: %w", err)
		}
		fmt.Printf("Name:         %s\n", p.Name)
		fmt.Printf("Email:        %s\n", p.Email)
		fmt.Printf("Plan:         %s\n", p.Subscription)
		fmt.Printf("Accent:       %s\n", p.Country)
		fmt.Printf("Style:        %s\n", p.Style)
		fmt.Printf("Voice gender: %s\n", p.Gender)
		fmt.Printf("Streak:       %d day(s)\n", p.Streak)
		return nil
	},
}

var profileSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Update profile fields",
	RunE: func(cmd *cobra.Command, args []string) error {
		req := api.UpdateProfileRequest{}
		if cmd.Flags().Changed("name") {
			req.Name = &profileName
		}
		if cmd.Flags().Changed("accent") {
			req.Country = &profileCountry
		}
		if cmd.Flags().Changed("style") {
			req.Style = &profileStyle
		}
		if cmd.Flags().Changed("gender") {
			req.Gender = &profileGender
		}
		if req == (api.UpdateProfileRequest{}) {
			return fmt.Errorf("nothing to update: pass --name, --accent, --style, or --gender")
		}

		p, err := lingoApp.Client.UpdateProfile(cmd.Context(), req)
		if err != nil {
			return fmt.Errorf("failed to update profile: %w", err)
		}
		fmt.Printf("Profile updated: %s / %s / %s\n", p.Country, p.Style, p.Gender)
		return nil
	},
}

func init() {
	profileSetCmd.Flags().StringVar(&profileName, "name", "", "Display name")
	profileSetCmd.Flags().StringVar(&profileCountry, "accent", "", "Accent: us, uk, or aus")
	profileSetCmd.Flags().StringVar(&profileStyle, "style", "", "Conversation style: casual or formal")
	profileSetCmd.Flags().StringVar(&profileGender, "gender", "", "AI voice gender: male or female")

	profileCmd.AddCommand(profileSetCmd)
	rootCmd.AddCommand(profileCmd)
}
