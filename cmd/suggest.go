package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var suggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "Print the quick-pick problems shown to chat users",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := setup(context.Background(), true)
		if err != nil {
			return err
		}
		defer rt.Close()

		picks := rt.ranker.Rank()
		if len(picks) == 0 {
			fmt.Println("No suggestions yet.")
			return nil
		}
		for i, p := range picks {
			fmt.Printf("  %d. %s (asked %d times)\n", i+1, p, rt.stats.Count(p))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(suggestCmd)
}
