package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lingomate/lingomate-cli/internal/api"
)

var subscriptionCmd = &cobra.Command{
	Use:   "subscription",
	Short: "Show available plans",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := lingoApp.Client.GetSubscriptionOptions(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to fetch plans: %w", err)
		}
		printPlan("basic", opts.Basic)
		printPlan("premium", opts.Premium)
		return nil
	},
}

func printPlan(name string, opt api.SubscriptionOption) {
	fmt.Printf("%s: $%.2f/mo, %s call minutes, %s saved scripts\n",
		name, opt.Price, limitString(opt.CallMinutes), limitString(opt.ScriptLimit))
}

// limitString renders a plan limit that is either a number or "∞".
func limitString(raw json.RawMessage) string {
	var n float64
	if json.Unmarshal(raw, &n) == nil {
		return fmt.Sprintf("%.0f", n)
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	return "?"
}

var subscribeCmd = &cobra.Command{
	Use:   "subscribe <plan>",
	Short: "Subscribe to a plan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := lingoApp.Client.Subscribe(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to subscribe: %w", err)
		}
		fmt.Printf("Subscribed to %s (since %s).\n", resp.Plan, resp.StartedAt)
		return nil
	},
}

var unsubscribeCmd = &cobra.Command{
	Use:   "cancel",
	Short: "Cancel the current subscription",
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := lingoApp.Client.CancelSubscription(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to cancel: %w", err)
		}
		fmt.Printf("Subscription canceled (%s).\n", resp.CanceledAt)
		return nil
	},
}

func init() {
	subscriptionCmd.AddCommand(subscribeCmd)
	subscriptionCmd.AddCommand(unsubscribeCmd)
	rootCmd.AddCommand(subscriptionCmd)
}
