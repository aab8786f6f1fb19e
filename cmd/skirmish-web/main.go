package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/peterkuimelis/skirmish/internal/config"
	"github.com/peterkuimelis/skirmish/internal/game"
	"github.com/peterkuimelis/skirmish/internal/store"
	"github.com/peterkuimelis/skirmish/internal/web"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	addr := flag.String("addr", "", "HTTP listen address (overrides config)")
	dataDir := flag.String("data", "", "data directory with the JSON files (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Addr = *addr
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}

	logger, err := config.NewLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	st, err := store.Open(cfg.DataDir, cfg.EnemyIDOffset, logger)
	if err != nil {
		return err
	}

	rules := cfg.GameRules()
	srv := web.NewServer(web.Options{
		Store:    st,
		Resolver: game.NewResolver(st.Battles, cfg.Rand(), rules.MaxEnemyDeck),
		Ladder:   game.NewLadder(cfg.LadderMax),
		Rules:    rules,
		Logger:   logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("skirmish web starting",
		zap.String("addr", cfg.Addr),
		zap.String("data_dir", cfg.DataDir),
	)
	if err := srv.ListenAndServe(ctx, cfg.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	logger.Info("skirmish web stopped")
	return nil
}
