package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Garsondee/clout-chase/internal/api"
	"github.com/Garsondee/clout-chase/internal/config"
	"github.com/Garsondee/clout-chase/internal/leaderboard"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := config.InitConfig(".env"); err != nil {
		log.Fatalf("load .env: %v", err)
	}
	cfg := config.ServerFromEnv()

	flag.StringVar(&cfg.Addr, "addr", cfg.Addr, "listen address")
	flag.StringVar(&cfg.DBPath, "db", cfg.DBPath, "database file (JSON or SQLite)")
	flag.StringVar(&cfg.Store, "store", cfg.Store, "storage backend: json or sqlite")
	flag.StringVar(&cfg.Assets, "assets", cfg.Assets, "static files directory, empty to disable")
	flag.Parse()

	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	store, err := openStore(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer store.Close()

	svc := leaderboard.NewService(store, log.New(os.Stdout, "[leaderboard] ", log.LstdFlags))
	srv := api.NewServer(svc, api.WithAssets(cfg.Assets))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := serve(ctx, cfg.Addr, srv.Routes()); err != nil {
		log.Printf("server error: %v", err)
		store.Close()
		os.Exit(1)
	}
	log.Println("server stopped")
}

func openStore(cfg config.Server) (leaderboard.Store, error) {
	switch cfg.Store {
	case "json":
		s, err := leaderboard.OpenJSONStore(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("open json store: %w", err)
		}
		return s, nil
	case "sqlite":
		s, err := leaderboard.OpenSQLiteStore(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unsupported store %q", cfg.Store)
	}
}

// serve runs the HTTP server until ctx is cancelled, then drains in-flight
// requests.
func serve(ctx context.Context, addr string, h http.Handler) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      35 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("listening on %s", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
