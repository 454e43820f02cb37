/*
Package main is the entry point for the relaychat server.

The binary is a cobra command tree; `relaychat serve` loads configuration,
initializes logging, wires the relay engine to the websocket hub and the HTTP
router, and shuts everything down gracefully on SIGINT or SIGTERM.
*/
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "relaychat",
	Short:         "Ephemeral relay for small real-time chat rooms",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	rootCmd.AddCommand(newServeCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		os.Exit(1)
	}
}
