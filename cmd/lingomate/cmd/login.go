package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in with the device authorization flow",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		dc, err := lingoApp.Auth.RequestDeviceCode(ctx)
		if err != nil {
			return fmt.Errorf("failed to start login: %w", err)
		}

		fmt.Printf("Open %s and enter code: %s\n", dc.VerificationURI, dc.UserCode)
		if dc.VerificationURIComplete != "" {
			fmt.Printf("Or visit: %s\n", dc.VerificationURIComplete)
		}
		fmt.Println("Waiting for confirmation...")

		if _, err := lingoApp.Auth.WaitForToken(ctx, dc); err != nil {
			return fmt.Errorf("login failed: %w", err)
		}

		// First sign-in provisions the account server-side.
		if err := lingoApp.Client.RegisterIfNeeded(ctx); err != nil {
			return fmt.Errorf("failed to register account: %w", err)
		}

		me, err := lingoApp.Client.Me(ctx)
		if err != nil {
			return fmt.Errorf("failed to fetch account: %w", err)
		}
		fmt.Printf("Signed in as %s (%s)\n", me.Name, me.Email)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and discard stored credentials",
	RunE: func(cmd *cobra.Command, args []string) error {
		lingoApp.Auth.Logout(cmd.Context())
		fmt.Println("Signed out.")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in account",
	RunE: func(cmd *cobra.Command, args []string) error {
		me, err := lingoApp.Client.Me(cmd.Context())
		if err != nil {
			return fmt.Errorf("not signed in: %w", err)
		}
		fmt.Printf("%s (%s), %s plan\n", me.Name, me.Email, me.Subscription)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
}
