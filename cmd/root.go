package cmd

import (
	"github.com/spf13/cobra"

	"github.com/SpikeIreland/clarence-engine/internal/config"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "clarence",
	Short: "Contract negotiation position and alignment engine",
	Long: `CLARENCE tracks customer and counterparty positions on negotiable
contract items, computes alignment, recommends compromises for
divergent items, and gates negotiation phases on an alignment
threshold.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultPath, "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
