package cmd

import (
	"github.com/spf13/cobra"

	"github.com/SpikeIreland/clarence-engine/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize clarence configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to configure the engine and generates a .clarence.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard()
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
