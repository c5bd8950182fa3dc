package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"quizdash/internal/config"
	"quizdash/internal/ledger"
)

// NewScoresCmd builds the subcommand that prints the persisted ledger.
func NewScoresCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "scores",
		Short: "Print the high-score list",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScores(cmd.Context(), *configPath)
		},
	}
}

func runScores(ctx context.Context, configPath string) error {
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return err
	}

	store, cleanup, err := newScoreStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	entries, err := ledger.New(store, ledger.WithCapacity(cfg.Ledger.Capacity)).Entries(ctx)
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		fmt.Fprintln(os.Stdout, "no high scores yet")
		return nil
	}
	for i, entry := range entries {
		fmt.Fprintf(os.Stdout, "%d. %s - %.2f seconds\n", i+1, entry.Name, entry.TimeSeconds)
	}
	return nil
}
