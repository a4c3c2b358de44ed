// Command storekit-inspect runs the live inspector against a demo store.
// It exists to exercise and demonstrate the inspector endpoints; real
// applications embed inspect.Server next to their own stores.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "storekit-inspect",
		Short: "Live inspector for storekit stores",
		Long: `storekit-inspect hosts a demo store behind the inspector server.

Endpoints:
  GET /inspect/stores            - registered stores
  GET /inspect/stores/{id}/state - state snapshot for one store
  GET /inspect/feed              - WebSocket feed of dispatched actions
  GET /metrics                   - Prometheus dispatch metrics

The demo store dispatches a synthetic action once per second so the
feed has something to show.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		serveCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("storekit-inspect %s (%s)\n", version, commit)
		},
	}
}
