package main

import (
	"fmt"
	"os"

	"github.com/roost-io/roost/pkg/client"
	"github.com/spf13/cobra"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "roost",
	Short: "Roost - Minimal cluster control plane",
	Long: `Roost is a minimal cluster control plane: a node and pod registry,
a bin-packing scheduler, a heartbeat failure detector, and a
rescheduling loop over a pluggable state store, in a single binary.`,
	Version: Version,
}

func init() {
	// Set version template
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"Roost version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))

	rootCmd.PersistentFlags().String("manager", "127.0.0.1:8080", "Manager address")
}

// clientFromFlags builds an API client from the --manager flag.
func clientFromFlags(cmd *cobra.Command) *client.Client {
	addr, _ := cmd.Flags().GetString("manager")
	return client.NewClient(addr)
}
