package game

import (
	"context"
	"errors"
	"log"
	"sort"
	"sync"
	"time"
)

// Mutation contract errors. They indicate a protocol bug in the caller, not
// a recoverable game situation.
var (
	// ErrEmptySlot is returned by token operations on a slot holding no
	// card. Players treat it as a press that raced with a removal and
	// drop the press; everywhere else it is a bug.
	ErrEmptySlot = errors.New("table: slot holds no card")
	// ErrOccupied is returned when placing a card on a non-empty slot.
	ErrOccupied = errors.New("table: slot already holds a card")
	// ErrCardOnBoard is returned when placing a card that is already on
	// the board.
	ErrCardOnBoard = errors.New("table: card already on the board")
	// ErrBadSlot is returned for out-of-range slot indices.
	ErrBadSlot = errors.New("table: slot out of range")
)

const noCard = -1

// Table is the shared board: the slot↔card bijection, per-slot token
// occupancy, and the claim hand-off queue.
//
// Locking: mu is the table-wide section. Whole-board operations (ResetBoard)
// take it exclusively; slot-scoped mutation takes it shared plus the slot's
// own mutex. The bijection arrays are written only under the exclusive
// section or under the owning slot's mutex with mu held shared, so a reader
// holding mu shared plus the slot mutex always sees a consistent pair.
type Table struct {
	mu      sync.RWMutex
	slots   []slot
	byCard  []int // card -> slot, noCard when off the board
	display Display
	delay   time.Duration

	claimMu sync.Mutex
	queued  map[int]bool
	claims  chan int
}

type slot struct {
	mu     sync.Mutex
	card   int
	tokens []int // player ids in placement order
}

// NewTable builds an empty board of slotCount slots for a deck of deckSize
// cards and up to playerCount concurrent claimants. delay is the artificial
// per-card-mutation pause used for demos and race shakeouts.
func NewTable(slotCount, deckSize, playerCount int, delay time.Duration, display Display) *Table {
	t := &Table{
		slots:   make([]slot, slotCount),
		byCard:  make([]int, deckSize),
		display: display,
		delay:   delay,
		queued:  make(map[int]bool),
		claims:  make(chan int, playerCount),
	}
	for i := range t.slots {
		t.slots[i].card = noCard
	}
	for i := range t.byCard {
		t.byCard[i] = noCard
	}
	return t
}

// SlotCount returns the number of slots on the board.
func (t *Table) SlotCount() int { return len(t.slots) }

func (t *Table) checkSlot(s int) error {
	if s < 0 || s >= len(t.slots) {
		return ErrBadSlot
	}
	return nil
}

// PlaceCard puts a card on an empty slot. Dealer only.
func (t *Table) PlaceCard(card, s int) error {
	if err := t.checkSlot(s); err != nil {
		return err
	}
	t.pause()
	t.mu.RLock()
	defer t.mu.RUnlock()
	sl := &t.slots[s]
	sl.mu.Lock()
	defer sl.mu.Unlock()
	if sl.card != noCard {
		return ErrOccupied
	}
	if t.byCard[card] != noCard {
		return ErrCardOnBoard
	}
	sl.card = card
	t.byCard[card] = s
	t.display.ShowCard(card, s)
	return nil
}

// RemoveCard clears a slot's card, keeping the bijection intact. The tokens
// on the slot are untouched; callers pair this with ResetAllTokens so no
// token is left referencing an empty slot. Dealer only.
func (t *Table) RemoveCard(s int) error {
	if err := t.checkSlot(s); err != nil {
		return err
	}
	t.pause()
	t.mu.RLock()
	defer t.mu.RUnlock()
	sl := &t.slots[s]
	sl.mu.Lock()
	defer sl.mu.Unlock()
	if sl.card == noCard {
		return ErrEmptySlot
	}
	t.byCard[sl.card] = noCard
	sl.card = noCard
	t.display.HideCard(s)
	return nil
}

// PlaceToken adds the player's token to a slot and returns the card the slot
// held at that instant, so the caller's record can never drift from what was
// actually claimed.
func (t *Table) PlaceToken(player, s int) (int, error) {
	if err := t.checkSlot(s); err != nil {
		return noCard, err
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	sl := &t.slots[s]
	sl.mu.Lock()
	defer sl.mu.Unlock()
	if sl.card == noCard {
		return noCard, ErrEmptySlot
	}
	for _, p := range sl.tokens {
		if p == player {
			return sl.card, nil
		}
	}
	sl.tokens = append(sl.tokens, player)
	t.display.ShowToken(player, s)
	return sl.card, nil
}

// RemoveToken removes the player's token from a slot, reporting whether one
// was there.
func (t *Table) RemoveToken(player, s int) (bool, error) {
	if err := t.checkSlot(s); err != nil {
		return false, err
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	sl := &t.slots[s]
	sl.mu.Lock()
	defer sl.mu.Unlock()
	if sl.card == noCard {
		return false, ErrEmptySlot
	}
	return t.dropTokenLocked(sl, player, s), nil
}

func (t *Table) dropTokenLocked(sl *slot, player, s int) bool {
	for i, p := range sl.tokens {
		if p == player {
			sl.tokens = append(sl.tokens[:i], sl.tokens[i+1:]...)
			t.display.HideToken(player, s)
			return true
		}
	}
	return false
}

// ResetAllTokens clears every player's token on one slot. Used when the
// slot's card is removed so no token dangles on an empty slot.
func (t *Table) ResetAllTokens(s int) {
	if t.checkSlot(s) != nil {
		return
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	sl := &t.slots[s]
	sl.mu.Lock()
	defer sl.mu.Unlock()
	for _, p := range sl.tokens {
		t.display.HideToken(p, s)
	}
	sl.tokens = nil
}

// CardAt returns the card on a slot, or -1.
func (t *Table) CardAt(s int) int {
	if t.checkSlot(s) != nil {
		return noCard
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	sl := &t.slots[s]
	sl.mu.Lock()
	defer sl.mu.Unlock()
	return sl.card
}

// SlotOf returns the slot holding a card, or -1.
func (t *Table) SlotOf(card int) int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if card < 0 || card >= len(t.byCard) {
		return noCard
	}
	s := t.byCard[card]
	if s == noCard {
		return noCard
	}
	sl := &t.slots[s]
	sl.mu.Lock()
	defer sl.mu.Unlock()
	if sl.card != card {
		return noCard
	}
	return s
}

// CountCards counts occupied slots.
func (t *Table) CountCards() int {
	return len(t.OccupiedSlots())
}

// OccupiedSlots lists the slots currently holding a card, ascending.
func (t *Table) OccupiedSlots() []int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var out []int
	for i := range t.slots {
		sl := &t.slots[i]
		sl.mu.Lock()
		if sl.card != noCard {
			out = append(out, i)
		}
		sl.mu.Unlock()
	}
	return out
}

// BoardCards lists the cards on the board in slot order.
func (t *Table) BoardCards() []int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var out []int
	for i := range t.slots {
		sl := &t.slots[i]
		sl.mu.Lock()
		if sl.card != noCard {
			out = append(out, sl.card)
		}
		sl.mu.Unlock()
	}
	return out
}

// PlayerTokenCards snapshots the cards the player's tokens sit on, in slot
// order. This is the claim snapshot the dealer validates.
func (t *Table) PlayerTokenCards(player int) []int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var out []int
	for i := range t.slots {
		sl := &t.slots[i]
		sl.mu.Lock()
		for _, p := range sl.tokens {
			if p == player && sl.card != noCard {
				out = append(out, sl.card)
				break
			}
		}
		sl.mu.Unlock()
	}
	return out
}

// TokenCount counts the player's tokens on the board.
func (t *Table) TokenCount(player int) int {
	return len(t.PlayerTokenCards(player))
}

// EnqueueClaim appends the player to the claim queue. A player already
// queued is a no-op, so the queue never holds duplicate entries.
func (t *Table) EnqueueClaim(player int) {
	t.claimMu.Lock()
	defer t.claimMu.Unlock()
	if t.queued[player] {
		return
	}
	t.queued[player] = true
	t.claims <- player
}

// TakeNextClaim pops the earliest claim, waiting up to timeout for one to
// arrive. ok is false on timeout; err is non-nil only when ctx ends the
// wait.
func (t *Table) TakeNextClaim(ctx context.Context, timeout time.Duration) (player int, ok bool, err error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case p := <-t.claims:
		t.unqueue(p)
		return p, true, nil
	case <-timer.C:
		return 0, false, nil
	case <-ctx.Done():
		return 0, false, ctx.Err()
	}
}

// TryNextClaim pops the earliest claim without waiting.
func (t *Table) TryNextClaim() (player int, ok bool) {
	select {
	case p := <-t.claims:
		t.unqueue(p)
		return p, true
	default:
		return 0, false
	}
}

func (t *Table) unqueue(player int) {
	t.claimMu.Lock()
	delete(t.queued, player)
	t.claimMu.Unlock()
}

// ClearClaims drains the queue and returns the drained player ids so the
// dealer can release each of them as stale rather than dropping them.
func (t *Table) ClearClaims() []int {
	t.claimMu.Lock()
	defer t.claimMu.Unlock()
	var out []int
	for {
		select {
		case p := <-t.claims:
			delete(t.queued, p)
			out = append(out, p)
		default:
			return out
		}
	}
}

// ResetBoard empties every slot under the table-wide exclusive section and
// returns the removed cards. All tokens are cleared with their slots, and
// calling it on an already-empty board changes nothing.
func (t *Table) ResetBoard() []int {
	t.mu.Lock()
	defer t.mu.Unlock()
	var cards []int
	for i := range t.slots {
		sl := &t.slots[i]
		for _, p := range sl.tokens {
			t.display.HideToken(p, i)
		}
		sl.tokens = nil
		if sl.card != noCard {
			cards = append(cards, sl.card)
			t.byCard[sl.card] = noCard
			sl.card = noCard
			t.display.HideCard(i)
		}
	}
	return cards
}

// Hints logs every legal set currently on the board with its slots and
// feature matrix. featuresOf may be nil when the oracle cannot decode cards.
func (t *Table) Hints(oracle Oracle, featuresOf func(cards []int) [][]int) {
	cards := t.BoardCards()
	for _, set := range oracle.FindSets(cards, len(cards)*len(cards)) {
		slots := make([]int, 0, len(set))
		for _, c := range set {
			if s := t.SlotOf(c); s != noCard {
				slots = append(slots, s)
			}
		}
		sort.Ints(slots)
		if featuresOf != nil {
			log.Printf("hint: set on slots %v features %v", slots, featuresOf(set))
		} else {
			log.Printf("hint: set on slots %v cards %v", slots, set)
		}
	}
}

func (t *Table) pause() {
	if t.delay > 0 {
		time.Sleep(t.delay)
	}
}
