package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"go.uber.org/zap"

	"github.com/peterkuimelis/skirmish/internal/config"
	"github.com/peterkuimelis/skirmish/internal/game"
	"github.com/peterkuimelis/skirmish/internal/log"
	skirmishnet "github.com/peterkuimelis/skirmish/internal/net"
	"github.com/peterkuimelis/skirmish/internal/store"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var err error
	switch os.Args[1] {
	case "play":
		err = runPlay(ctx, os.Args[2:])
	case "join":
		err = runJoin(ctx, os.Args[2:])
	default:
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  skirmish-cli play [--battle N | --ladder] [--data DIR] [--config FILE] [--transcript FILE]")
	fmt.Println("  skirmish-cli join [--addr HOST:PORT] [--battle N | --ladder]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  play    Fight a battle in this terminal using the local JSON files")
	fmt.Println("  join    Start a battle on a running skirmish-web server and play it here")
}

// battleFlag is an optional battle ID; unset means a random battle.
type battleFlag struct {
	id  int
	set bool
}

func (b *battleFlag) String() string {
	if !b.set {
		return ""
	}
	return fmt.Sprint(b.id)
}

func (b *battleFlag) Set(s string) error {
	if _, err := fmt.Sscan(s, &b.id); err != nil {
		return fmt.Errorf("battle must be a number: %w", err)
	}
	b.set = true
	return nil
}

func (b *battleFlag) ptr() *int {
	if !b.set {
		return nil
	}
	id := b.id
	return &id
}

func runPlay(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("play", flag.ExitOnError)
	var battle battleFlag
	fs.Var(&battle, "battle", "battle configuration ID (random when omitted)")
	ladder := fs.Bool("ladder", false, "fight the first ladder battle")
	dataDir := fs.String("data", "", "data directory with the JSON files (overrides config)")
	configPath := fs.String("config", "", "path to YAML config file")
	transcript := fs.String("transcript", "", "write a plain-text battle transcript to this file")
	fs.Parse(args)

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}
	logger, err := config.NewLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	st, err := store.Open(cfg.DataDir, cfg.EnemyIDOffset, logger)
	if err != nil {
		return err
	}
	var events log.EventLogger = log.NewMemoryLogger()
	if *transcript != "" {
		f, err := os.Create(*transcript)
		if err != nil {
			return fmt.Errorf("create transcript: %w", err)
		}
		defer f.Close()
		events = log.NewTextLogger(f)
	}

	rules := cfg.GameRules()
	req := store.BattleRequest{
		Resolver: game.NewResolver(st.Battles, cfg.Rand(), rules.MaxEnemyDeck),
		BattleID: battle.ptr(),
		Rules:    rules,
		Logger:   events,
	}
	if *ladder {
		req.Ladder = game.NewLadder(cfg.LadderMax)
	}

	b, battleID, err := st.StartBattle(ctx, req)
	if err != nil {
		return err
	}
	if battleID != nil {
		fmt.Printf("Battle %d: %d enemies\n", *battleID, len(b.State.Enemy.Active))
	} else {
		fmt.Printf("Random battle: %d enemies\n", len(b.State.Enemy.Active))
	}

	phase, err := skirmishnet.PlayLocal(ctx, b, os.Stdin, os.Stdout)
	if err != nil {
		return err
	}
	logger.Debug("battle finished", zap.String("outcome", skirmishnet.OutcomeName(phase)))
	return nil
}

func runJoin(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("join", flag.ExitOnError)
	addr := fs.String("addr", "localhost:8080", "skirmish-web server address")
	var battle battleFlag
	fs.Var(&battle, "battle", "battle configuration ID (random when omitted)")
	ladder := fs.Bool("ladder", false, "fight the server's next ladder battle")
	fs.Parse(args)

	req := skirmishnet.StartRequest{BattleID: battle.ptr(), Ladder: *ladder}
	_, err := skirmishnet.Join(ctx, "http://"+*addr, req, os.Stdin, os.Stdout)
	return err
}
