package cli

import (
	"bufio"
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"quizdash/internal/config"
	"quizdash/internal/domain"
	"quizdash/internal/game"
	"quizdash/internal/ledger"
	"quizdash/internal/quizhttp"
)

// NewPlayCmd builds the subcommand that runs the game in the terminal.
func NewPlayCmd(configPath *string) *cobra.Command {
	var startURL string
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play the quiz",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(cmd.Context(), *configPath, startURL)
		},
	}
	cmd.Flags().StringVar(&startURL, "start-url", "", "first question URL (overrides config)")
	return cmd
}

func runPlay(ctx context.Context, configPath, startURL string) error {
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return err
	}
	if startURL != "" {
		cfg.Quiz.StartURL = startURL
	}

	store, cleanup, err := newScoreStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	scores := ledger.New(store, ledger.WithCapacity(cfg.Ledger.Capacity))
	ui := newTerminalUI(os.Stdout)
	orchestrator := game.NewOrchestrator(
		quizhttp.NewClient(),
		scores,
		clockwork.NewRealClock(),
		game.Options{StartURL: cfg.Quiz.StartURL, DefaultLimit: cfg.Quiz.DefaultLimit},
		ui, ui, ui, ui,
	)

	runCtx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			err := orchestrator.HandleInput(scanner.Text())
			switch {
			case err == nil:
			case errors.Is(err, domain.ErrGameOver):
				cancel()
				return
			case errors.Is(err, domain.ErrEmptyName),
				errors.Is(err, domain.ErrNoSelection),
				errors.Is(err, domain.ErrBlankAnswer):
				ui.Alert(err.Error())
			default:
				log.Debug().Err(err).Msg("input ignored")
			}
		}
		cancel()
	}()

	if err := orchestrator.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
