package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/lingomate/lingomate-cli/internal/app"
	"github.com/lingomate/lingomate-cli/internal/chat"
	"github.com/lingomate/lingomate-cli/internal/config"
)

var (
	debug      bool
	workingDir string
)

// Global app instance shared by all commands
var lingoApp *app.App

var rootCmd = &cobra.Command{
	Use:   "lingomate",
	Short: "English conversation practice from the terminal",
	Long: `Lingomate is an English conversation partner for Korean learners.

Usage:
  lingomate                   # Start a timed practice conversation
  lingomate review            # Browse saved corrections
  lingomate stats             # Show study statistics

During a conversation:
  /feedback                   # Grammar feedback on your last message
  /suggest                    # Example reply to the AI's last message
  /finish                     # End the session early`,
	DisableAutoGenTag: true,
	SilenceUsage:      true,
	SilenceErrors:     false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if debug {
			log.SetLevel(log.DebugLevel)
		} else {
			log.SetLevel(log.WarnLevel)
		}

		cfg, err := config.Load(workingDir, debug)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		lingoApp, err = app.New(cmd.Context(), cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize app: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if lingoApp != nil {
			lingoApp.Close()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConversation()
	},
}

// runConversation drives one timed practice session. Ctrl+C ends it early and
// still finishes the session properly.
func runConversation() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	controller := lingoApp.NewSessionController()
	controller.OnFinalize = lingoApp.RecordFinishedSession

	return chat.New(controller).Run(ctx)
}

func init() {
	wd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to get working directory: %v\n", err)
		os.Exit(1)
	}
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug mode")
	rootCmd.PersistentFlags().StringVar(&workingDir, "wd", wd, "Working directory")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
