package main

import (
	"flag"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/Garsondee/clout-chase/internal/client"
	"github.com/Garsondee/clout-chase/internal/config"
	"github.com/Garsondee/clout-chase/internal/game"
	"github.com/Garsondee/clout-chase/internal/sim"
)

func main() {
	if err := config.InitConfig(".env"); err != nil {
		log.Fatalf("load .env: %v", err)
	}
	cfg := config.ClientFromEnv()

	flag.StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "leaderboard server URL, empty for offline play")
	flag.StringVar(&cfg.User, "user", cfg.User, "username (skips the entry screen)")
	flag.StringVar(&cfg.Assets, "assets", cfg.Assets, "assets directory")
	flag.BoolVar(&cfg.Mute, "mute", cfg.Mute, "disable sound")
	flag.StringVar(&cfg.LocalDB, "local-db", cfg.LocalDB, "offline leaderboard file")
	flag.Parse()

	logger := log.New(os.Stderr, "[game] ", log.LstdFlags)

	var closeLocal func() error
	openLocal := func() (sim.Leaderboard, error) {
		lb, closeFn, err := client.OpenLocal(cfg.LocalDB, log.New(os.Stderr, "[leaderboard] ", log.LstdFlags))
		if err != nil {
			return nil, err
		}
		closeLocal = closeFn
		return lb, nil
	}

	gc := game.Config{
		User:     cfg.User,
		Assets:   cfg.Assets,
		Mute:     cfg.Mute,
		Logger:   logger,
		Fallback: openLocal,
	}
	if cfg.ServerURL != "" {
		gc.Board = client.New(cfg.ServerURL)
	} else {
		lb, err := openLocal()
		if err != nil {
			log.Fatal(err)
		}
		gc.Board = lb
		gc.Fallback = nil
	}

	g := game.New(gc)
	w, h := g.Size()
	ebiten.SetWindowTitle("Clout Chase")
	ebiten.SetWindowSize(w*2, h*2)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	err := ebiten.RunGame(g)
	g.Close()
	if closeLocal != nil {
		if cerr := closeLocal(); cerr != nil {
			logger.Printf("close offline leaderboard: %v", cerr)
		}
	}
	if err != nil {
		log.Fatal(err)
	}
}
