package game

import (
	"sync"
	"time"
)

// nopDisplay discards every display call.
type nopDisplay struct{}

func (nopDisplay) ShowCard(int, int)                {}
func (nopDisplay) HideCard(int)                     {}
func (nopDisplay) ShowToken(int, int)               {}
func (nopDisplay) HideToken(int, int)               {}
func (nopDisplay) SetScore(int, int)                {}
func (nopDisplay) SetCountdown(time.Duration, bool) {}
func (nopDisplay) SetElapsed(time.Duration)         {}
func (nopDisplay) SetFreeze(int, time.Duration)     {}
func (nopDisplay) AnnounceWinners([]int)            {}

// dispEvent is one recorded display call. a and b carry the call's ints:
// card/slot, player/slot, player/score, millis/urgent-flag.
type dispEvent struct {
	kind string
	a, b int
}

// recordingDisplay keeps the ordered stream of display calls.
type recordingDisplay struct {
	mu      sync.Mutex
	events  []dispEvent
	winners [][]int
}

func (r *recordingDisplay) record(kind string, a, b int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, dispEvent{kind: kind, a: a, b: b})
}

func (r *recordingDisplay) ShowCard(card, slot int)    { r.record("card+", card, slot) }
func (r *recordingDisplay) HideCard(slot int)          { r.record("card-", slot, 0) }
func (r *recordingDisplay) ShowToken(player, slot int) { r.record("token+", player, slot) }
func (r *recordingDisplay) HideToken(player, slot int) { r.record("token-", player, slot) }
func (r *recordingDisplay) SetScore(player, score int) { r.record("score", player, score) }

func (r *recordingDisplay) SetCountdown(remaining time.Duration, urgent bool) {
	u := 0
	if urgent {
		u = 1
	}
	r.record("countdown", int(remaining.Milliseconds()), u)
}

func (r *recordingDisplay) SetElapsed(elapsed time.Duration) {
	r.record("elapsed", int(elapsed.Milliseconds()), 0)
}

func (r *recordingDisplay) SetFreeze(player int, d time.Duration) {
	r.record("freeze", player, int(d.Milliseconds()))
}

func (r *recordingDisplay) AnnounceWinners(players []int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.winners = append(r.winners, append([]int(nil), players...))
	r.events = append(r.events, dispEvent{kind: "winners"})
}

func (r *recordingDisplay) snapshot() []dispEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]dispEvent(nil), r.events...)
}

func (r *recordingDisplay) count(kind string) int {
	n := 0
	for _, e := range r.snapshot() {
		if e.kind == kind {
			n++
		}
	}
	return n
}

func (r *recordingDisplay) lastWinners() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.winners) == 0 {
		return nil
	}
	return r.winners[len(r.winners)-1]
}

// fakeOracle scripts the two oracle calls independently.
type fakeOracle struct {
	validFn func(cards []int) bool
	findFn  func(cards []int, limit int) [][]int
}

func (o fakeOracle) IsValidSet(cards []int) bool {
	if o.validFn == nil {
		return false
	}
	return o.validFn(cards)
}

func (o fakeOracle) FindSets(cards []int, limit int) [][]int {
	if o.findFn == nil {
		return nil
	}
	return o.findFn(cards, limit)
}

// scriptedOracle accepts or rejects every claim and reports sets as
// existing whenever three cards are in play, which keeps the dealer's
// termination and reshuffle checks from firing mid-test.
func scriptedOracle(valid bool) fakeOracle {
	return fakeOracle{
		validFn: func([]int) bool { return valid },
		findFn: func(cards []int, _ int) [][]int {
			if len(cards) < 3 {
				return nil
			}
			return [][]int{{cards[0], cards[1], cards[2]}}
		},
	}
}

// barrenOracle reports no sets anywhere: the game ends immediately.
var barrenOracle = fakeOracle{}
