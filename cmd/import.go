package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/fixbot/internal/importers"
	"github.com/ziadkadry99/fixbot/internal/progress"
)

var importCmd = &cobra.Command{
	Use:   "import <glob>...",
	Short: "Teach solutions from catalog files",
	Long: `Imports problem/solution pairs from YAML, JSON or markdown catalog files
into the knowledge base. Globs may use ** to match nested directories.

YAML and JSON files hold a list of {problem, solution, submitted_by}
entries, either at the top level or under "problems". In markdown files
every heading at the deepest level is a problem and its body the solution.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().String("user", "", "credit entries without submitted_by to this user (default System)")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	user, _ := cmd.Flags().GetString("user")

	rt, err := setup(ctx, true)
	if err != nil {
		return err
	}
	defer rt.Close()

	importer := importers.NewImporter(rt.knowledge,
		importers.WithStore(importers.NewStore(rt.db)),
		importers.WithAudit(rt.audit),
		importers.WithReporter(progress.NewReporter(os.Stderr, "Importing catalogs")),
		importers.WithLogger(rt.logger.Named("importers")),
	)

	res, err := importer.Import(ctx, args, user)
	if errors.Is(err, importers.ErrNoFiles) {
		return fmt.Errorf("no catalog files match %v", args)
	}
	if err != nil {
		return err
	}

	fmt.Printf("Imported %d entries from %d file(s).\n", res.Entries, res.Files)
	for _, f := range res.Failures {
		fmt.Fprintf(os.Stderr, "  failed: %s\n", f)
	}
	if user != "" && res.Entries > 0 {
		fmt.Printf("Entries without an author are credited to %s.\n", user)
	}
	return nil
}
