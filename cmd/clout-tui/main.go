package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/Garsondee/clout-chase/internal/client"
	"github.com/Garsondee/clout-chase/internal/config"
	"github.com/Garsondee/clout-chase/internal/sim"
	"github.com/Garsondee/clout-chase/internal/terminal"
)

func main() {
	if err := config.InitConfig(".env"); err != nil {
		log.Fatalf("load .env: %v", err)
	}
	cfg := config.ClientFromEnv()
	var seed int64
	var logPath string

	flag.StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "leaderboard server URL, empty for offline play")
	flag.StringVar(&cfg.User, "user", cfg.User, "username")
	flag.StringVar(&cfg.LocalDB, "local-db", cfg.LocalDB, "offline leaderboard file")
	flag.Int64Var(&seed, "seed", 0, "RNG seed, 0 for random")
	flag.StringVar(&logPath, "log", "", "write logs to this file (default: discard)")
	flag.Parse()

	if cfg.User == "" {
		fmt.Println("error: -user is required")
		os.Exit(2)
	}

	// The screen owns the terminal, so logs go to a file or nowhere.
	var logOut io.Writer = io.Discard
	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			log.Fatalf("open log: %v", err)
		}
		defer f.Close()
		logOut = f
	}
	logger := log.New(logOut, "[tui] ", log.LstdFlags)

	board, user, offline, closeBoard, err := connect(cfg, logger)
	if err != nil {
		log.Fatal(err)
	}
	defer closeBoard()

	screen, err := tcell.NewScreen()
	if err != nil {
		log.Fatalf("create screen: %v", err)
	}
	if err := screen.Init(); err != nil {
		log.Fatalf("init screen: %v", err)
	}
	defer screen.Fini()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	host := terminal.New(screen, terminal.Config{
		Board:   board,
		User:    user,
		Offline: offline,
		Seed:    seed,
		Logger:  logger,
	})
	if err := host.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Printf("run: %v", err)
	}
}

// connect registers the user with the server, falling back to the local
// JSON leaderboard when it cannot be reached.
func connect(cfg config.Client, logger *log.Logger) (sim.Leaderboard, string, bool, func(), error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if cfg.ServerURL != "" {
		remote := client.New(cfg.ServerURL)
		u, err := remote.EnsureUser(ctx, cfg.User)
		if err == nil {
			return remote, u.Username, false, func() {}, nil
		}
		logger.Printf("login_failed server=%s err=%v", cfg.ServerURL, err)
	}

	local, closeFn, err := client.OpenLocal(cfg.LocalDB, logger)
	if err != nil {
		return nil, "", false, nil, err
	}
	u, err := local.EnsureUser(ctx, cfg.User)
	if err != nil {
		closeFn()
		return nil, "", false, nil, fmt.Errorf("register %q: %w", cfg.User, err)
	}
	return local, u.Username, true, func() { closeFn() }, nil
}
