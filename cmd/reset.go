package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/fixbot/internal/audit"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Forget taught solutions, ratings and query statistics",
	Long: `Clears the user knowledge layer and the query statistics. Built-in
solutions and user profiles are kept. Use --transcripts to also delete
stored chat transcripts.`,
	RunE: runReset,
}

func init() {
	resetCmd.Flags().BoolP("yes", "y", false, "skip the confirmation prompt")
	resetCmd.Flags().Bool("transcripts", false, "also delete chat transcripts")
	rootCmd.AddCommand(resetCmd)
}

func runReset(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	yes, _ := cmd.Flags().GetBool("yes")
	transcripts, _ := cmd.Flags().GetBool("transcripts")

	if !yes {
		prompt := promptui.Prompt{
			Label:     "Reset all taught knowledge and statistics",
			IsConfirm: true,
		}
		if _, err := prompt.Run(); err != nil {
			if errors.Is(err, promptui.ErrAbort) || errors.Is(err, promptui.ErrInterrupt) {
				fmt.Println("Aborted.")
				return nil
			}
			return err
		}
	}

	rt, err := setup(ctx, true)
	if err != nil {
		return err
	}
	defer rt.Close()

	if err := rt.knowledge.Reset(ctx); err != nil {
		return err
	}
	if err := rt.stats.Reset(ctx); err != nil {
		return fmt.Errorf("resetting query statistics: %w", err)
	}
	if transcripts {
		if err := rt.history.DeleteAll(ctx); err != nil {
			return err
		}
	}

	summary := "Cleared taught solutions, ratings and query statistics"
	if transcripts {
		summary += " and transcripts"
	}
	if err := rt.audit.Log(ctx, audit.Entry{
		ActorType: audit.ActorSystem,
		ActorID:   "cli",
		Action:    audit.ActionKnowledgeReset,
		Summary:   summary,
	}); err != nil {
		return fmt.Errorf("writing audit entry: %w", err)
	}

	fmt.Println("Knowledge and history reset.")
	return nil
}
