package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const defaultAPI = "http://127.0.0.1:8080"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var apiFlag string

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the extension bridge (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}

	rootCmd := &cobra.Command{
		Use:           "cortex-bridge",
		Short:         "Local bridge between the Cortex browser extension and the desktop host",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE:          serveCmd.RunE,
	}
	rootCmd.PersistentFlags().StringVarP(&apiFlag, "api", "a", defaultAPI, "Bridge base URL for client commands")

	healthCmd := &cobra.Command{
		Use:   "health",
		Short: "Probe a running bridge's /health endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHealth(cmd.Context(), apiFlag, cmd.OutOrStdout())
		},
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show connected extensions of a running bridge",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd.Context(), apiFlag, cmd.OutOrStdout())
		},
	}

	var send sendOptions
	sendCmd := &cobra.Command{
		Use:   "send",
		Short: "Send one extension message to a running bridge",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSend(cmd.Context(), apiFlag, send, cmd.OutOrStdout())
		},
	}
	sendCmd.Flags().StringVar(&send.Domain, "domain", "", "Site domain (required)")
	sendCmd.Flags().StringVar(&send.Activity, "activity", "", "Activity label (required)")
	sendCmd.Flags().StringVar(&send.URL, "url", "", "Page URL")
	sendCmd.Flags().StringVar(&send.Title, "title", "", "Page title")
	sendCmd.Flags().StringVar(&send.EventType, "event-type", "activity", "Message event_type")
	sendCmd.Flags().StringVar(&send.Elements, "elements", "", "Optional JSON describing page elements")
	_ = sendCmd.MarkFlagRequired("domain")
	_ = sendCmd.MarkFlagRequired("activity")

	draftCmd := &cobra.Command{
		Use:   "rule-draft <text>",
		Short: "Draft rule JSON from a natural-language request, offline",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRuleDraft(cmd.Context(), args, cmd.OutOrStdout())
		},
	}

	rootCmd.AddCommand(serveCmd, healthCmd, statusCmd, sendCmd, draftCmd)
	return rootCmd
}
