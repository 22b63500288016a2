package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/juan975/cail-matching/internal/matching"
	"github.com/juan975/cail-matching/pkg/types"
)

// dataset is the document accepted by the seed command
type dataset struct {
	Offers     []*types.Offer     `json:"offers"`
	Candidates []*types.Candidate `json:"candidates"`
}

// seedStats reports how many rows a seed run wrote
type seedStats struct {
	Offers             int `json:"offers"`
	Candidates         int `json:"candidates"`
	EmbeddedCandidates int `json:"embedded_candidates"`
}

var seedCmd = &cobra.Command{
	Use:   "seed <file.json>",
	Short: "Upsert offers and candidates from a JSON dataset",
	Args:  cobra.ExactArgs(1),
	RunE:  runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	data, err := readDataset(args[0])
	if err != nil {
		return err
	}

	a, err := openApplication(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	stats, err := seed(ctx, a, data)
	if err != nil {
		return err
	}

	a.log.Info("seed completed",
		zap.Int("offers", stats.Offers),
		zap.Int("candidates", stats.Candidates),
		zap.Int("embedded", stats.EmbeddedCandidates),
	)
	return printJSON(cmd.OutOrStdout(), stats)
}

func readDataset(path string) (*dataset, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading dataset: %w", err)
	}

	var data dataset
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parsing dataset %s: %w", path, err)
	}
	return &data, nil
}

// seed upserts offers as given and candidates with an embedding, computing
// one from the profile text when the dataset has none.
func seed(ctx context.Context, a *application, data *dataset) (seedStats, error) {
	var stats seedStats

	for _, offer := range data.Offers {
		if offer == nil {
			continue
		}
		if err := a.store.UpsertOffer(ctx, offer); err != nil {
			return stats, fmt.Errorf("offer %s: %w", offer.ID, err)
		}
		stats.Offers++
	}

	for _, c := range data.Candidates {
		if c == nil {
			continue
		}
		if len(c.Embedding) == 0 {
			vec, err := a.embedder.Embed(ctx, matching.CandidateText(c))
			if err != nil {
				return stats, fmt.Errorf("embedding candidate %s: %w", c.ID, err)
			}
			c.Embedding = vec
			stats.EmbeddedCandidates++
		}
		if err := a.store.UpsertCandidate(ctx, c); err != nil {
			return stats, fmt.Errorf("candidate %s: %w", c.ID, err)
		}
		stats.Candidates++
	}

	return stats, nil
}
