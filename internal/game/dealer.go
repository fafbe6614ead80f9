package game

import (
	"context"
	"log"
	"math/rand/v2"
	"time"
)

// displayTick is the timer refresh granularity while no claims arrive.
const displayTick = time.Second

// Dealer arbitrates the game: it owns the deck, fills and reshuffles the
// board, drains the claim queue one claim at a time, and is the only
// goroutine that validates, scores, penalizes and releases claimants.
type Dealer struct {
	table   *Table
	players []*Player
	oracle  Oracle
	display Display

	deck []int // dealer-owned; consumed front-to-back after a shuffle

	mode        TimerMode
	turnTimeout time.Duration
	warning     time.Duration
	hints       bool
	featuresOf  func(cards []int) [][]int

	roundStart time.Time
	deadline   time.Time
}

// NewDealer builds the dealer with a full, unshuffled deck. The timer mode
// is fixed here, once, from the configured timeout's sign.
func NewDealer(cfg Config, table *Table, players []*Player, oracle Oracle, display Display) *Dealer {
	deck := make([]int, cfg.DeckSize)
	for i := range deck {
		deck[i] = i
	}
	return &Dealer{
		table:       table,
		players:     players,
		oracle:      oracle,
		display:     display,
		deck:        deck,
		mode:        TimerModeFor(cfg.TurnTimeout),
		turnTimeout: cfg.TurnTimeout,
		warning:     cfg.Warning,
		hints:       cfg.Hints,
	}
}

// SetFeatureDecoder installs the card→features decoder used for hint
// logging. Optional.
func (d *Dealer) SetFeatureDecoder(f func(cards []int) [][]int) { d.featuresOf = f }

// Run is the dealer loop: one iteration per board life, until no legal set
// remains across deck and board or ctx is cancelled. It announces the
// winners before returning.
func (d *Dealer) Run(ctx context.Context) {
	log.Printf("dealer: starting (%d players, %d cards)", len(d.players), len(d.deck))
	for ctx.Err() == nil && !d.shouldFinish() {
		d.placeCardsOnTable()
		if d.hints {
			d.table.Hints(d.oracle, d.featuresOf)
		}
		d.updateTimerDisplay(true)
		d.roundLoop(ctx)
		d.updateTimerDisplay(true)
		d.clearBoard()
	}
	d.announceWinners()
	log.Printf("dealer: stopped")
}

// roundLoop runs one board life: wait (bounded) for a claim or a tick,
// refresh the clock, drain and resolve pending claims in arrival order, and
// top up emptied slots.
func (d *Dealer) roundLoop(ctx context.Context) {
	for ctx.Err() == nil && !d.roundOver() {
		p, ok, err := d.table.TakeNextClaim(ctx, d.tick())
		if err != nil {
			return
		}
		d.updateTimerDisplay(false)
		if !ok {
			continue
		}
		d.resolveClaim(p)
		for {
			q, more := d.table.TryNextClaim()
			if !more {
				break
			}
			d.resolveClaim(q)
		}
		d.placeCardsOnTable()
	}
}

// roundOver reports whether the board must be reshuffled: countdown expiry,
// or — without a countdown — no legal set left among the cards on display.
func (d *Dealer) roundOver() bool {
	switch d.mode {
	case ModeCountdown:
		return !time.Now().Before(d.deadline)
	default:
		return len(d.oracle.FindSets(d.table.BoardCards(), 1)) == 0
	}
}

// tick bounds the claim wait so the clock keeps refreshing and countdown
// expiry is honored promptly.
func (d *Dealer) tick() time.Duration {
	if d.mode != ModeCountdown {
		return displayTick
	}
	remaining := time.Until(d.deadline)
	if remaining < time.Millisecond {
		return time.Millisecond
	}
	if remaining < displayTick {
		return remaining
	}
	return displayTick
}

// resolveClaim validates one claim end to end: snapshot, verdict, board
// mutation, score or penalty, release. Nothing else runs a resolution
// concurrently; the board mutations of two claims never interleave.
func (d *Dealer) resolveClaim(id int) {
	p := d.playerByID(id)
	if p == nil {
		log.Printf("dealer: claim from unknown player %d", id)
		return
	}
	cards := d.table.PlayerTokenCards(id)
	if len(cards) != maxTokens {
		// The snapshot went stale before we got to it (a reshuffle or
		// an overlapping resolution took some tokens). Not an error.
		log.Printf("dealer: void claim from player %d (%d tokens)", id, len(cards))
		p.SyncTokens()
		p.release(OutcomeVoid)
		return
	}
	if d.oracle.IsValidSet(cards) {
		for _, card := range cards {
			s := d.table.SlotOf(card)
			if s == noCard {
				continue
			}
			if err := d.table.RemoveCard(s); err != nil {
				log.Printf("dealer: remove card %d from slot %d: %v", card, s, err)
			}
			d.table.ResetAllTokens(s)
		}
		d.updateTimerDisplay(true)
		p.Point()
		log.Printf("dealer: point for player %d, set %v", id, cards)
		p.release(OutcomePoint)
		return
	}
	log.Printf("dealer: penalty for player %d, not a set: %v", id, cards)
	p.Penalty()
	p.release(OutcomePenalty)
}

// placeCardsOnTable fills the board: a shuffled full deal when the board is
// empty, otherwise a top-up of the empty slots while cards remain.
func (d *Dealer) placeCardsOnTable() {
	if d.table.CountCards() == 0 {
		rand.Shuffle(len(d.deck), func(i, j int) {
			d.deck[i], d.deck[j] = d.deck[j], d.deck[i]
		})
	}
	for s := 0; s < d.table.SlotCount() && len(d.deck) > 0; s++ {
		if d.table.CardAt(s) != noCard {
			continue
		}
		card := d.deck[0]
		d.deck = d.deck[1:]
		if err := d.table.PlaceCard(card, s); err != nil {
			log.Printf("dealer: place card %d on slot %d: %v", card, s, err)
		}
	}
}

// clearBoard is the reshuffle boundary: cards back to the deck, every token
// cleared, the claim queue drained, and every still-blocked claimant
// released as stale rather than dropped.
func (d *Dealer) clearBoard() {
	d.deck = append(d.deck, d.table.ResetBoard()...)
	for _, p := range d.players {
		p.ResetTokens()
	}
	for _, id := range d.table.ClearClaims() {
		if p := d.playerByID(id); p != nil {
			log.Printf("dealer: releasing stale claim from player %d", id)
			p.release(OutcomeVoid)
		}
	}
}

// shouldFinish reports the end of the game: no legal set exists across the
// deck and the board combined.
func (d *Dealer) shouldFinish() bool {
	cards := append([]int(nil), d.deck...)
	cards = append(cards, d.table.BoardCards()...)
	return len(d.oracle.FindSets(cards, 1)) == 0
}

// updateTimerDisplay refreshes the clock; reset restarts the round timer
// (round start and successful claims both restart it).
func (d *Dealer) updateTimerDisplay(reset bool) {
	now := time.Now()
	switch d.mode {
	case ModeCountdown:
		if reset {
			d.deadline = now.Add(d.turnTimeout)
		}
		remaining := time.Until(d.deadline)
		if remaining < 0 {
			remaining = 0
		}
		d.display.SetCountdown(remaining, remaining <= d.warning)
	case ModeElapsed:
		if reset {
			d.roundStart = now
		}
		d.display.SetElapsed(now.Sub(d.roundStart))
	}
}

// announceWinners reports every player holding the maximum score.
func (d *Dealer) announceWinners() {
	best := 0
	for _, p := range d.players {
		if p.Score() > best {
			best = p.Score()
		}
	}
	var winners []int
	for _, p := range d.players {
		if p.Score() == best {
			winners = append(winners, p.ID())
		}
	}
	log.Printf("dealer: winners %v with %d points", winners, best)
	d.display.AnnounceWinners(winners)
}

func (d *Dealer) playerByID(id int) *Player {
	for _, p := range d.players {
		if p.ID() == id {
			return p
		}
	}
	return nil
}
