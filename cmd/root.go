package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "fixbot",
	Short: "A troubleshooting chatbot that learns from its users",
	Long: `fixbot answers technical problems from a knowledge base of known fixes.
It matches free-text questions with fuzzy search, asks whether the answer
helped, and lets users teach it new solutions, rewarding them with points
and badges. Chat in the browser, the terminal, Slack or Teams, or expose
the knowledge base to AI agents over MCP.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".fixbot.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

func exitOnError(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
