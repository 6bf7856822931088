package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/fixbot/internal/matcher"
)

var askCmd = &cobra.Command{
	Use:   "ask [problem]",
	Short: "Look up the solution for a problem",
	Long: `Matches a problem description against the knowledge base and prints the
stored solution, or the closest known problems when nothing matches.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().Bool("json", false, "output the resolution as JSON")
	askCmd.Flags().Bool("record", false, "count the question in the quick-pick statistics")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	queryText := strings.Join(args, " ")

	jsonOutput, _ := cmd.Flags().GetBool("json")
	record, _ := cmd.Flags().GetBool("record")

	rt, err := setup(ctx, true)
	if err != nil {
		return err
	}
	defer rt.Close()

	if record {
		if _, err := rt.stats.Record(ctx, queryText); err != nil {
			return fmt.Errorf("recording query: %w", err)
		}
	}

	res := rt.resolver.Resolve(queryText)

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	printResolution(rt, res)
	return nil
}

func printResolution(rt *runtime, res matcher.Resolution) {
	switch res.Kind {
	case matcher.KindMatch:
		author := res.Record.SubmittedBy
		summary := rt.ledger.Summary(author)
		fmt.Printf("%s  [%d%% confidence]\n\n", res.Problem, res.Confidence)
		fmt.Println(res.Record.SolutionText)
		fmt.Printf("\nTaught by: %s | Badge: %s | Points: %d\n", author, summary.Badge, summary.Points)
	case matcher.KindSimilar:
		fmt.Println("No close match. Similar known problems:")
		for _, p := range res.Similar {
			fmt.Printf("  - %s\n", p)
		}
	default:
		fmt.Println("No matching problem is known. Teach one with `fixbot chat` and the 'solution' command.")
	}
}
