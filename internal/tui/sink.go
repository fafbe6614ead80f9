package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Engine state-change messages, folded into the App model by Update.
type (
	cardShownMsg  struct{ card, slot int }
	cardHiddenMsg struct{ slot int }

	tokenShownMsg  struct{ player, slot int }
	tokenHiddenMsg struct{ player, slot int }

	scoreMsg struct{ player, score int }

	countdownMsg struct {
		remaining time.Duration
		urgent    bool
	}
	elapsedMsg struct{ elapsed time.Duration }

	freezeMsg struct {
		player int
		d      time.Duration
	}

	winnersMsg struct{ players []int }
)

// Sink adapts the bubbletea program to game.Display: every display call
// becomes a message sent into the program, which is safe from any
// goroutine. Attach must run before the engine starts; the engine is kicked
// off from the model's Init, after the program is live.
type Sink struct {
	p *tea.Program
}

// NewSink returns an unattached sink.
func NewSink() *Sink { return &Sink{} }

// Attach binds the program the sink forwards to.
func (s *Sink) Attach(p *tea.Program) { s.p = p }

func (s *Sink) send(msg tea.Msg) {
	if s.p != nil {
		s.p.Send(msg)
	}
}

func (s *Sink) ShowCard(card, slot int) { s.send(cardShownMsg{card: card, slot: slot}) }
func (s *Sink) HideCard(slot int)       { s.send(cardHiddenMsg{slot: slot}) }

func (s *Sink) ShowToken(player, slot int) { s.send(tokenShownMsg{player: player, slot: slot}) }
func (s *Sink) HideToken(player, slot int) { s.send(tokenHiddenMsg{player: player, slot: slot}) }

func (s *Sink) SetScore(player, score int) { s.send(scoreMsg{player: player, score: score}) }

func (s *Sink) SetCountdown(remaining time.Duration, urgent bool) {
	s.send(countdownMsg{remaining: remaining, urgent: urgent})
}

func (s *Sink) SetElapsed(elapsed time.Duration) { s.send(elapsedMsg{elapsed: elapsed}) }

func (s *Sink) SetFreeze(player int, d time.Duration) { s.send(freezeMsg{player: player, d: d}) }

func (s *Sink) AnnounceWinners(players []int) { s.send(winnersMsg{players: players}) }
