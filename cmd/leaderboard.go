package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Show the users who taught the most solutions",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		jsonOutput, _ := cmd.Flags().GetBool("json")

		rt, err := setup(context.Background(), true)
		if err != nil {
			return err
		}
		defer rt.Close()

		rows := rt.ledger.Leaderboard(limit)
		if jsonOutput {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(rows)
		}
		if len(rows) == 0 {
			fmt.Println("No users yet.")
			return nil
		}
		for i, r := range rows {
			fmt.Printf("  %2d. %-20s %4d  %s\n", i+1, r.Username, r.Points, r.Badge)
		}
		return nil
	},
}

func init() {
	leaderboardCmd.Flags().Int("limit", 10, "maximum number of users (0 for all)")
	leaderboardCmd.Flags().Bool("json", false, "output as JSON")
	rootCmd.AddCommand(leaderboardCmd)
}
