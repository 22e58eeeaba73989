package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "chatctl",
		Short: "Terminal client for the slot-filling chat service",
		Long: `chatctl talks to a running slot-filling chat service.

It keeps the session id, transcript and slot state between turns the way
a browser client would, and prints the agent's decision after each reply.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().String("url", "http://localhost:8000", "Base URL of the chat service")
	rootCmd.PersistentFlags().Duration("timeout", 60*time.Second, "HTTP timeout per request")

	rootCmd.AddCommand(
		newChatCmd(),
		newHealthCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func clientFromFlags(cmd *cobra.Command) *chatClient {
	baseURL, _ := cmd.Flags().GetString("url")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	return newChatClient(baseURL, timeout)
}

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the chat service is up",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := clientFromFlags(cmd).Health(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), status)
			return nil
		},
	}
}

func newChatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session",
		RunE: func(cmd *cobra.Command, args []string) error {
			domain, _ := cmd.Flags().GetString("domain")
			sessionID, _ := cmd.Flags().GetString("session")
			session := &chatSession{
				client:    clientFromFlags(cmd),
				domain:    domain,
				sessionID: sessionID,
			}
			return session.Run(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().String("domain", "profile", "Slot domain to fill (profile or sorting)")
	cmd.Flags().String("session", "", "Resume an existing session id")
	return cmd
}
