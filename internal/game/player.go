package game

import (
	"context"
	"errors"
	"log"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"
)

const maxTokens = 3

// Player is one player's actor. Exactly one goroutine (Run) mutates the
// token set, turning key presses into placements and removals; the dealer
// touches it only through Point, Penalty, ResetTokens and the wait handle,
// and only while the actor is blocked or between presses.
type Player struct {
	id      int
	name    string
	human   bool
	table   *Table
	display Display

	actions  chan int     // pressed slots; presses are dropped, never queued, while the actor is busy
	resolved chan Outcome // wait handle, signalled only by the dealer

	mu     sync.Mutex
	tokens [maxTokens]int // card ids, noCard when free
	count  int

	score       atomic.Int32
	freezeUntil atomic.Int64 // unix nanos

	freeze  time.Duration
	aiDelay time.Duration
}

// NewPlayer builds a player actor. Human players receive presses through
// KeyPressed from the input source; computer players synthesize their own.
func NewPlayer(id int, name string, human bool, table *Table, display Display, freeze, aiDelay time.Duration) *Player {
	p := &Player{
		id:       id,
		name:     name,
		human:    human,
		table:    table,
		display:  display,
		actions:  make(chan int, maxTokens),
		resolved: make(chan Outcome, 1),
		freeze:   freeze,
		aiDelay:  aiDelay,
	}
	for i := range p.tokens {
		p.tokens[i] = noCard
	}
	return p
}

// ID returns the player's index.
func (p *Player) ID() int { return p.id }

// Name returns the display name.
func (p *Player) Name() string { return p.name }

// Human reports whether presses come from the input source.
func (p *Player) Human() bool { return p.human }

// Score returns the current score.
func (p *Player) Score() int { return int(p.score.Load()) }

// Frozen reports whether the player is inside a penalty freeze. Input is
// dropped while frozen; the actor loop itself keeps running so shutdown
// stays prompt.
func (p *Player) Frozen() bool {
	return time.Now().UnixNano() < p.freezeUntil.Load()
}

// KeyPressed is the single input entry point, shared by the keyboard source
// and the AI synthesizer. It never blocks: presses arriving while the actor
// is frozen, mid-claim or backlogged are dropped.
func (p *Player) KeyPressed(s int) {
	if s < 0 || s >= p.table.SlotCount() {
		return
	}
	select {
	case p.actions <- s:
	default:
	}
}

// Run is the actor loop. It exits when ctx is cancelled.
func (p *Player) Run(ctx context.Context) {
	log.Printf("player %d (%s): starting", p.id, p.name)
	if !p.human {
		go p.synthesize(ctx)
	}
	for {
		select {
		case <-ctx.Done():
			log.Printf("player %d: stopping", p.id)
			return
		case s := <-p.actions:
			if p.Frozen() {
				continue
			}
			p.press(ctx, s)
		}
	}
}

// press applies one key press: toggle off an own token on the same card,
// otherwise place a token; the third placement files a claim and blocks
// until the dealer resolves it.
func (p *Player) press(ctx context.Context, s int) {
	p.mu.Lock()
	card := p.table.CardAt(s)
	if card == noCard {
		p.mu.Unlock()
		return
	}
	if i := p.tokenIndex(card); i >= 0 {
		removed, err := p.table.RemoveToken(p.id, s)
		if err != nil && !errors.Is(err, ErrEmptySlot) {
			log.Printf("player %d: remove token slot %d: %v", p.id, s, err)
		}
		if removed {
			p.tokens[i] = noCard
			p.count--
		}
		p.mu.Unlock()
		return
	}
	if p.count >= maxTokens {
		p.mu.Unlock()
		return
	}
	placed, err := p.table.PlaceToken(p.id, s)
	if err != nil {
		// The card left the slot between the lookup and the
		// placement; the press is simply stale.
		p.mu.Unlock()
		if !errors.Is(err, ErrEmptySlot) {
			log.Printf("player %d: place token slot %d: %v", p.id, s, err)
		}
		return
	}
	p.tokens[p.freeIndex()] = placed
	p.count++
	claim := p.count == maxTokens
	p.mu.Unlock()

	if claim {
		p.table.EnqueueClaim(p.id)
		p.await(ctx)
	}
}

// await blocks on the wait handle until the dealer resolves the claim, then
// discards any presses that piled up while blocked.
func (p *Player) await(ctx context.Context) {
	select {
	case out := <-p.resolved:
		log.Printf("player %d: claim resolved: %s", p.id, out)
		p.drainActions()
	case <-ctx.Done():
	}
}

func (p *Player) drainActions() {
	for {
		select {
		case <-p.actions:
		default:
			return
		}
	}
}

// release signals the wait handle. Dealer only; at most one claim is ever
// outstanding per player, so the buffered send never blocks.
func (p *Player) release(out Outcome) {
	select {
	case p.resolved <- out:
	default:
		log.Printf("player %d: dropped duplicate release %s", p.id, out)
	}
}

// Point awards a point for a validated claim and clears the local token
// set; its table tokens are removed with the claimed cards by the dealer.
func (p *Player) Point() {
	p.display.SetScore(p.id, int(p.score.Add(1)))
	p.clearLocal()
}

// Penalty freezes the player for the configured duration. Non-blocking: the
// freeze is a deadline the actor loop checks, never a sleep.
func (p *Player) Penalty() {
	p.freezeUntil.Store(time.Now().Add(p.freeze).UnixNano())
	p.display.SetFreeze(p.id, p.freeze)
}

// ResetTokens removes every owned token from the table and empties the
// local set. The dealer calls it at reshuffle boundaries and game end; the
// table side tolerates slots already cleared wholesale.
func (p *Player) ResetTokens() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, card := range p.tokens {
		if card == noCard {
			continue
		}
		if s := p.table.SlotOf(card); s != noCard {
			if _, err := p.table.RemoveToken(p.id, s); err != nil && !errors.Is(err, ErrEmptySlot) {
				log.Printf("player %d: reset token slot %d: %v", p.id, s, err)
			}
		}
		p.tokens[i] = noCard
	}
	p.count = 0
}

// SyncTokens rebuilds the local set from the table. The dealer uses it when
// a claim resolves void: another resolution or a reshuffle already took some
// of the tokens, and the table is authoritative.
func (p *Player) SyncTokens() {
	cards := p.table.PlayerTokenCards(p.id)
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := range p.tokens {
		p.tokens[i] = noCard
	}
	p.count = 0
	for _, c := range cards {
		if p.count == maxTokens {
			break
		}
		p.tokens[p.freeIndex()] = c
		p.count++
	}
}

// TokenCards returns the local token snapshot, for tests and diagnostics.
func (p *Player) TokenCards() []int {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []int
	for _, c := range p.tokens {
		if c != noCard {
			out = append(out, c)
		}
	}
	return out
}

func (p *Player) clearLocal() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := range p.tokens {
		p.tokens[i] = noCard
	}
	p.count = 0
}

// tokenIndex returns the local index holding card, or -1. Callers hold p.mu.
func (p *Player) tokenIndex(card int) int {
	for i, c := range p.tokens {
		if c == card {
			return i
		}
	}
	return -1
}

// freeIndex returns a free local index. Callers hold p.mu and have checked
// count < maxTokens.
func (p *Player) freeIndex() int {
	for i, c := range p.tokens {
		if c == noCard {
			return i
		}
	}
	return 0
}

// synthesize is the computer player's input loop: uniform-random presses
// over occupied slots through the same entry point and contract as keyboard
// input.
func (p *Player) synthesize(ctx context.Context) {
	log.Printf("player %d: ai input starting", p.id)
	for {
		delay := p.aiDelay
		if delay <= 0 {
			delay = time.Millisecond
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(delay + time.Duration(rand.Int64N(int64(delay)+1))):
		}
		if p.Frozen() {
			continue
		}
		occupied := p.table.OccupiedSlots()
		if len(occupied) == 0 {
			continue
		}
		p.KeyPressed(occupied[rand.IntN(len(occupied))])
	}
}
