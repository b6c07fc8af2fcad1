package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "minimact",
		Short: "Client-side runtime for server-driven reactive UIs",
		Long: `minimact drives a server-rendered, patch-updated UI over a
persistent WebSocket connection: it hydrates server-rendered markup,
applies incremental vdom patches, speculatively applies server-queued
hints ahead of confirmation, and resumes cleanly across reconnects.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		runCmd(),
		inspectCmd(),
		replayCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
		os.Exit(1)
	}
}
