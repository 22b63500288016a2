package main

import (
	"github.com/spf13/cobra"
)

var matchCmd = &cobra.Command{
	Use:   "match <offer-id>",
	Short: "Rank candidates for an offer, or offers for a candidate with --reverse",
	Args:  cobra.ExactArgs(1),
	RunE:  runMatch,
}

func init() {
	rootCmd.AddCommand(matchCmd)

	matchCmd.Flags().BoolP("reverse", "r", false, "treat the argument as a candidate ID and rank offers")
	matchCmd.Flags().IntP("limit", "l", 0, "maximum offers to return with --reverse (default from config)")
}

func runMatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApplication(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	reverse, _ := cmd.Flags().GetBool("reverse")
	if reverse {
		limit, _ := cmd.Flags().GetInt("limit")
		offers, err := a.orchestrator.OffersForCandidate(ctx, args[0], limit)
		if err != nil {
			return err
		}
		for i := range offers {
			if offers[i].Offer != nil {
				o := *offers[i].Offer
				o.Embedding = nil
				offers[i].Offer = &o
			}
		}
		return printJSON(cmd.OutOrStdout(), offers)
	}

	results, err := a.orchestrator.ExecuteMatching(ctx, args[0])
	if err != nil {
		return err
	}
	for i := range results {
		if results[i].Candidate != nil {
			c := *results[i].Candidate
			c.Embedding = nil
			results[i].Candidate = &c
		}
	}
	return printJSON(cmd.OutOrStdout(), results)
}
