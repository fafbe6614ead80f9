package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/jask/setmatch/internal/config"
	"github.com/jask/setmatch/internal/game"
	"github.com/jask/setmatch/internal/set"
	"github.com/jask/setmatch/internal/tui"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	oracle, err := set.New(cfg.Game.FeatureCount, cfg.Game.FeatureSize)
	if err != nil {
		log.Fatalf("oracle: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sink := tui.NewSink()
	g, err := game.New(game.Config{
		Slots:       cfg.Slots(),
		DeckSize:    oracle.DeckSize(),
		TurnTimeout: cfg.TurnTimeout(),
		Warning:     cfg.Warning(),
		Freeze:      cfg.PenaltyFreeze(),
		TableDelay:  cfg.TableDelay(),
		Hints:       cfg.Game.Hints,
		Humans:      cfg.Players.Human,
		Computers:   cfg.Players.Computer,
		AIDelay:     cfg.AIMoveDelay(),
		Names:       cfg.Players.Names,
	}, oracle, sink)
	if err != nil {
		log.Fatalf("game: %v", err)
	}
	g.Dealer.SetFeatureDecoder(oracle.CardsToFeatures)

	// The TUI owns the terminal from here on; the engine's log stream goes
	// to a file when debugging, otherwise away.
	if os.Getenv("SETMATCH_DEBUG") != "" {
		f, err := tea.LogToFile(filepath.Join(os.TempDir(), "setmatch-debug.log"), "setmatch")
		if err != nil {
			log.Fatalf("log file: %v", err)
		}
		defer f.Close()
	} else {
		log.SetOutput(io.Discard)
	}
	log.Printf("session %s starting", uuid.NewString())

	app := tui.New(ctx, cancel, cfg, g, oracle.Features)
	prog := tea.NewProgram(app, tea.WithAltScreen())
	sink.Attach(prog)

	if _, err := prog.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "setmatch: %v\n", err)
		os.Exit(1)
	}
	cancel()

	for _, p := range g.Players {
		fmt.Printf("%s: %d\n", p.Name(), p.Score())
	}
}
