package cli

import (
	"fmt"
	"os"

	"github.com/opsdeck/opsdeck/internal/initialization"
	"github.com/spf13/cobra"
)

func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "opsdeck-gateway",
		Short: "Opsdeck Integration Gateway",
		Long: `Opsdeck Integration Gateway dispatches CI/CD actions against external
providers and fans notification events out to delivery channels.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")

	gatewayContainer, err := initialization.NewGatewayContainer()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize gateway container: %v\n", err)
		os.Exit(1)
	}

	rootCmd.AddCommand(NewStartCommand(gatewayContainer))

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
