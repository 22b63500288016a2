package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var applyCmd = &cobra.Command{
	Use:   "apply <candidate-id> <offer-id>",
	Short: "Submit an application for a candidate",
	Args:  cobra.ExactArgs(2),
	RunE:  runApply,
}

func init() {
	rootCmd.AddCommand(applyCmd)

	applyCmd.Flags().Float64("score", 0, "match score to record on the application")
}

func runApply(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApplication(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	var score *float64
	if cmd.Flags().Changed("score") {
		v, _ := cmd.Flags().GetFloat64("score")
		if v < 0 || v > 1 {
			return fmt.Errorf("score must be between 0 and 1, got %v", v)
		}
		score = &v
	}

	id, err := a.workflow.ApplyWithScore(ctx, args[0], args[1], score)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), id)
	return nil
}
