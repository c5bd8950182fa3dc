package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"quizdash/internal/config"
	"quizdash/internal/ledger"
	transport "quizdash/internal/transport/http"
)

// NewServeCmd builds the subcommand that runs the practice quiz server: a
// local question chain speaking the same wire protocol as the remote service.
func NewServeCmd(configPath *string) *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a local question chain",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, port)
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "port to listen on (overrides config)")
	return cmd
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	if !verbose {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return err
	}

	port := portFlag
	if port == "" {
		port = cfg.Server.Port
	}
	if envPort := os.Getenv("PORT"); port == "" && envPort != "" {
		port = envPort
	}
	if port == "" {
		port = "8080"
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	store, cleanup, err := newScoreStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()
	scores := ledger.New(store, ledger.WithCapacity(cfg.Ledger.Capacity))

	loader, loaderCleanup, err := newPackLoader(ctx, cfg)
	if err != nil {
		return err
	}
	defer loaderCleanup()

	packTTL := config.TTLDuration(cfg.Server.TTL, 10*time.Minute)
	repo := transport.NewPackRepository(loader, packTTL)
	handler := transport.NewQuizHandler(repo, scores)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	handler.Register(mux)

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("port", port).Str("pack", cfg.Server.Pack).Msg("starting quiz server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info().Msg("shutting down server")
	case <-ctx.Done():
		log.Info().Msg("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// newPackLoader picks the question pack backend from config: the questions
// table when source is postgres, the YAML pack file otherwise.
func newPackLoader(ctx context.Context, cfg config.Config) (transport.PackLoader, func(), error) {
	if cfg.Server.Source == "postgres" {
		if cfg.Postgres.URL == "" {
			return nil, nil, fmt.Errorf("postgres pack source requires a postgres url")
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, nil, err
		}
		return transport.NewPGPackLoader(pool), pool.Close, nil
	}
	return transport.NewYAMLPackLoader(cfg.Server.Pack), func() {}, nil
}
