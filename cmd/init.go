package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/fixbot/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize fixbot configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to configure storage, matching and gamification, and writes the config file (.fixbot.yml by default).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard(cfgFile)
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
