package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/jask/setmatch/internal/config"
	"github.com/jask/setmatch/internal/game"
	"github.com/jask/setmatch/internal/set"
)

func testApp(t *testing.T) (*App, context.Context) {
	t.Helper()
	cfg := config.Config{
		Game: config.GameConfig{
			Rows:               3,
			Columns:            4,
			FeatureCount:       4,
			FeatureSize:        3,
			TurnTimeoutSeconds: 60,
		},
		Players: config.PlayersConfig{
			Human:    1,
			Computer: 1,
			Names:    []string{"dana", "bot"},
			Keys:     []string{"qwerasdfzxcv"},
		},
	}
	require.NoError(t, cfg.Validate())

	oracle, err := set.New(cfg.Game.FeatureCount, cfg.Game.FeatureSize)
	require.NoError(t, err)

	g, err := game.New(game.Config{
		Slots:       cfg.Slots(),
		DeckSize:    oracle.DeckSize(),
		TurnTimeout: cfg.TurnTimeout(),
		Warning:     cfg.Warning(),
		Freeze:      cfg.PenaltyFreeze(),
		Humans:      cfg.Players.Human,
		Computers:   cfg.Players.Computer,
		Names:       cfg.Players.Names,
	}, oracle, NewSink())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return New(ctx, cancel, cfg, g, oracle.Features), ctx
}

// update folds one message and keeps the concrete model type.
func update(t *testing.T, a *App, msg tea.Msg) (*App, tea.Cmd) {
	t.Helper()
	m, cmd := a.Update(msg)
	app, ok := m.(*App)
	require.True(t, ok)
	return app, cmd
}

func TestKeymapCoversBoard(t *testing.T) {
	t.Parallel()

	a, _ := testApp(t)
	require.Len(t, a.keymaps, 1)
	require.Len(t, a.keymaps[0], 12)
	require.Equal(t, 0, a.keymaps[0]['q'])
	require.Equal(t, 5, a.keymaps[0]['s'])
	require.Equal(t, 11, a.keymaps[0]['v'])
}

func TestEscCancelsAndQuits(t *testing.T) {
	t.Parallel()

	a, ctx := testApp(t)
	_, cmd := update(t, a, tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	require.Error(t, ctx.Err(), "quit cancels the engine context")
}

func TestUpdateFoldsEngineMessages(t *testing.T) {
	t.Parallel()

	a, _ := testApp(t)

	a, _ = update(t, a, cardShownMsg{card: 7, slot: 2})
	require.Equal(t, 7, a.board[2])
	a, _ = update(t, a, tokenShownMsg{player: 1, slot: 2})
	require.True(t, a.tokens[2][1])
	a, _ = update(t, a, tokenHiddenMsg{player: 1, slot: 2})
	require.False(t, a.tokens[2][1])
	a, _ = update(t, a, cardHiddenMsg{slot: 2})
	require.Equal(t, -1, a.board[2])

	a, _ = update(t, a, scoreMsg{player: 0, score: 3})
	require.Equal(t, 3, a.scores[0])

	a, _ = update(t, a, countdownMsg{remaining: 61 * time.Second, urgent: false})
	require.Equal(t, "time left 01:01", a.clock)
	require.False(t, a.urgent)
	a, _ = update(t, a, countdownMsg{remaining: 4 * time.Second, urgent: true})
	require.True(t, a.urgent)
	a, _ = update(t, a, elapsedMsg{elapsed: 90 * time.Second})
	require.Equal(t, "elapsed 01:30", a.clock)
	require.False(t, a.urgent)

	a, _ = update(t, a, freezeMsg{player: 0, d: time.Minute})
	require.True(t, a.frozen[0].After(time.Now()))

	// Out-of-range ids never panic.
	a, _ = update(t, a, cardShownMsg{card: 1, slot: 99})
	a, _ = update(t, a, tokenShownMsg{player: 9, slot: 99})
	a, _ = update(t, a, scoreMsg{player: -1, score: 1})
	_, _ = update(t, a, freezeMsg{player: 42, d: time.Second})
}

func TestViewRendersBoardAndScores(t *testing.T) {
	t.Parallel()

	a, _ := testApp(t)
	// Card 0 decodes to a single solid triangle; card 40 to two of
	// something else. Exact styling aside, the glyphs must show up.
	a, _ = update(t, a, cardShownMsg{card: 0, slot: 0})
	a, _ = update(t, a, scoreMsg{player: 0, score: 2})
	a, _ = update(t, a, countdownMsg{remaining: 30 * time.Second})
	a, _ = update(t, a, freezeMsg{player: 1, d: time.Minute})

	out := a.View()
	require.Contains(t, out, "▲")
	require.Contains(t, out, "time left 00:30")
	require.Contains(t, out, "dana")
	require.Contains(t, out, "bot")
	require.Contains(t, out, "2")
	require.Contains(t, out, "frozen")
}

func TestNumericFallbackWithoutDecoder(t *testing.T) {
	t.Parallel()

	a, _ := testApp(t)
	a.features = nil
	a, _ = update(t, a, cardShownMsg{card: 5, slot: 0})
	require.Contains(t, a.View(), "#5")
}

func TestWinnersView(t *testing.T) {
	t.Parallel()

	a, _ := testApp(t)
	a, _ = update(t, a, winnersMsg{players: []int{0, 1}})
	require.True(t, a.done)
	out := a.View()
	require.Contains(t, out, "tie:")
	require.Contains(t, out, "dana")
	require.Contains(t, out, "bot")

	a.winners = []int{1}
	require.Contains(t, a.View(), "bot wins!")

	a.winners = nil
	require.Contains(t, a.View(), "game over")
	require.False(t, strings.Contains(a.View(), "tie:"))
}

func TestClockFormat(t *testing.T) {
	t.Parallel()

	require.Equal(t, "00:00", clockFormat(-5*time.Second))
	require.Equal(t, "00:01", clockFormat(1400*time.Millisecond))
	require.Equal(t, "01:00", clockFormat(time.Minute))
	require.Equal(t, "61:05", clockFormat(61*time.Minute+5*time.Second))
}
