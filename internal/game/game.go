// Package game implements the concurrent core of the Set card game: a shared
// table of card slots, one actor goroutine per player placing tokens, and a
// dealer goroutine that serializes claim validation, scoring and board
// replacement.
package game

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Display receives state changes for rendering. Every call is
// fire-and-forget; the core never reads anything back. Durations are pushed
// once and the display is expected to animate them locally.
type Display interface {
	ShowCard(card, slot int)
	HideCard(slot int)
	ShowToken(player, slot int)
	HideToken(player, slot int)
	SetScore(player, score int)
	SetCountdown(remaining time.Duration, urgent bool)
	SetElapsed(elapsed time.Duration)
	SetFreeze(player int, d time.Duration)
	AnnounceWinners(players []int)
}

// Oracle decides set legality. The core treats it as pure and authoritative.
type Oracle interface {
	// IsValidSet reports whether the three cards form a legal set.
	IsValidSet(cards []int) bool
	// FindSets enumerates up to limit legal sets among cards; limit 1 is
	// the existence check used for reshuffle and termination decisions.
	FindSets(cards []int, limit int) [][]int
}

// Outcome is the dealer's verdict on a claim, delivered through the player's
// wait handle.
type Outcome int

const (
	// OutcomeVoid releases a claimant without a score change: the token
	// snapshot was stale (raced with a reshuffle or another claim).
	OutcomeVoid Outcome = iota
	// OutcomePoint is a validated set.
	OutcomePoint
	// OutcomePenalty is a rejected set; the player is frozen.
	OutcomePenalty
)

func (o Outcome) String() string {
	switch o {
	case OutcomePoint:
		return "point"
	case OutcomePenalty:
		return "penalty"
	default:
		return "void"
	}
}

// TimerMode selects how the round clock runs and renders. It is fixed once
// at startup from the sign of the configured turn timeout.
type TimerMode int

const (
	// ModeCountdown counts down from the turn timeout and reshuffles at
	// zero.
	ModeCountdown TimerMode = iota
	// ModeElapsed counts up and reshuffles when the board holds no set.
	ModeElapsed
	// ModeNone shows no clock and reshuffles when the board holds no set.
	ModeNone
)

// TimerModeFor derives the mode from the configured turn timeout: positive
// is a countdown, zero an elapsed clock, negative no clock at all.
func TimerModeFor(turnTimeout time.Duration) TimerMode {
	switch {
	case turnTimeout > 0:
		return ModeCountdown
	case turnTimeout == 0:
		return ModeElapsed
	default:
		return ModeNone
	}
}

// Config carries the engine parameters. The TUI-facing knobs (key layouts,
// colors) stay in the config package; this is only what the core needs.
type Config struct {
	Slots       int
	DeckSize    int
	TurnTimeout time.Duration // sign selects the TimerMode
	Warning     time.Duration // countdown threshold for urgent styling
	Freeze      time.Duration // penalty freeze
	TableDelay  time.Duration // artificial per-mutation delay (demo hook)
	Hints       bool
	Humans      int
	Computers   int
	AIDelay     time.Duration
	Names       []string
}

// Game owns the table, the players and the dealer for one session.
type Game struct {
	Table   *Table
	Players []*Player
	Dealer  *Dealer
}

// New wires a full game from the config and the two collaborators.
func New(cfg Config, oracle Oracle, display Display) (*Game, error) {
	if cfg.Slots < 3 {
		return nil, fmt.Errorf("game: board needs at least 3 slots, got %d", cfg.Slots)
	}
	if cfg.DeckSize < cfg.Slots {
		return nil, fmt.Errorf("game: deck of %d cannot fill %d slots", cfg.DeckSize, cfg.Slots)
	}
	total := cfg.Humans + cfg.Computers
	if total < 1 {
		return nil, fmt.Errorf("game: no players configured")
	}

	table := NewTable(cfg.Slots, cfg.DeckSize, total, cfg.TableDelay, display)
	players := make([]*Player, total)
	for i := range players {
		name := fmt.Sprintf("player %d", i)
		if i < len(cfg.Names) && cfg.Names[i] != "" {
			name = cfg.Names[i]
		}
		players[i] = NewPlayer(i, name, i < cfg.Humans, table, display, cfg.Freeze, cfg.AIDelay)
	}
	dealer := NewDealer(cfg, table, players, oracle, display)
	return &Game{Table: table, Players: players, Dealer: dealer}, nil
}

// Run starts every player actor and blocks in the dealer loop until the game
// ends or ctx is cancelled. Player goroutines are joined before it returns.
func (g *Game) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	for _, p := range g.Players {
		wg.Add(1)
		go func(p *Player) {
			defer wg.Done()
			p.Run(ctx)
		}(p)
	}
	g.Dealer.Run(ctx)
	cancel()
	wg.Wait()
}
