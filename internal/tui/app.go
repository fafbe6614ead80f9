// Package tui renders the game in the terminal and feeds keyboard input to
// the player actors. It is strictly a display sink plus input source: all
// game state lives in the engine, and the model only folds the engine's
// fire-and-forget messages into view state.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jask/setmatch/internal/config"
	"github.com/jask/setmatch/internal/game"
)

type tickMsg time.Time

// engineDoneMsg arrives when the engine's Run returns.
type engineDoneMsg struct{}

// App is the bubbletea model.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc
	g      *game.Game

	rows, cols int
	keymaps    []map[rune]int // per human player: key -> slot
	features   func(card int) []int

	board   []int
	tokens  [][]bool // slot -> player id -> token present
	scores  []int
	frozen  []time.Time
	clock   string
	urgent  bool
	winners []int
	done    bool
}

// New builds the model. features decodes a card id into its feature values
// for rendering; pass nil to fall back to numeric cards.
func New(ctx context.Context, cancel context.CancelFunc, cfg config.Config, g *game.Game, features func(card int) []int) *App {
	slots := cfg.Slots()
	keymaps := make([]map[rune]int, cfg.Players.Human)
	for i := range keymaps {
		keymaps[i] = make(map[rune]int, slots)
		for s, r := range []rune(cfg.Players.Keys[i]) {
			if s >= slots {
				break
			}
			keymaps[i][r] = s
		}
	}
	board := make([]int, slots)
	tokens := make([][]bool, slots)
	for s := range board {
		board[s] = -1
		tokens[s] = make([]bool, len(g.Players))
	}
	if cfg.Game.FeatureCount != 4 || cfg.Game.FeatureSize != 3 {
		// The glyph renderer draws the classic 4x3 geometry only.
		features = nil
	}
	return &App{
		ctx:      ctx,
		cancel:   cancel,
		g:        g,
		rows:     cfg.Game.Rows,
		cols:     cfg.Game.Columns,
		keymaps:  keymaps,
		features: features,
		board:    board,
		tokens:   tokens,
		scores:   make([]int, len(g.Players)),
		frozen:   make([]time.Time, len(g.Players)),
	}
}

// Init starts the render tick and the engine. Running the engine as a
// command means it only starts once the program is live and the sink can
// deliver.
func (a *App) Init() tea.Cmd {
	return tea.Batch(tick(), func() tea.Msg {
		a.g.Run(a.ctx)
		return engineDoneMsg{}
	})
}

func tick() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.KeyMsg:
		// The default key rows claim most letters ("q" included), so
		// quitting is chord-only.
		switch m.String() {
		case "ctrl+c", "esc":
			a.cancel()
			return a, tea.Quit
		}
		if a.done || m.Type != tea.KeyRunes || len(m.Runes) != 1 {
			return a, nil
		}
		for human, km := range a.keymaps {
			if slot, ok := km[m.Runes[0]]; ok {
				a.g.Players[human].KeyPressed(slot)
			}
		}
	case tickMsg:
		return a, tick()
	case cardShownMsg:
		if m.slot >= 0 && m.slot < len(a.board) {
			a.board[m.slot] = m.card
		}
	case cardHiddenMsg:
		if m.slot >= 0 && m.slot < len(a.board) {
			a.board[m.slot] = -1
		}
	case tokenShownMsg:
		a.setToken(m.player, m.slot, true)
	case tokenHiddenMsg:
		a.setToken(m.player, m.slot, false)
	case scoreMsg:
		if m.player >= 0 && m.player < len(a.scores) {
			a.scores[m.player] = m.score
		}
	case countdownMsg:
		a.clock = "time left " + clockFormat(m.remaining)
		a.urgent = m.urgent
	case elapsedMsg:
		a.clock = "elapsed " + clockFormat(m.elapsed)
		a.urgent = false
	case freezeMsg:
		if m.player >= 0 && m.player < len(a.frozen) {
			a.frozen[m.player] = time.Now().Add(m.d)
		}
	case winnersMsg:
		a.winners = m.players
		a.done = true
	case engineDoneMsg:
		a.done = true
	}
	return a, nil
}

func (a *App) setToken(player, slot int, on bool) {
	if slot < 0 || slot >= len(a.tokens) {
		return
	}
	if player < 0 || player >= len(a.tokens[slot]) {
		return
	}
	a.tokens[slot][player] = on
}

func (a *App) View() string {
	if a.done {
		return a.viewWinners()
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render("setmatch"))
	b.WriteString("\n")
	if a.clock != "" {
		style := clockStyle
		if a.urgent {
			style = clockUrgentStyle
		}
		b.WriteString(style.Render(a.clock))
		b.WriteString("\n")
	}
	b.WriteString(a.viewBoard())
	b.WriteString("\n")
	b.WriteString(a.viewScores())
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("press your key row to toggle a token · esc quits"))
	return b.String()
}

func (a *App) viewBoard() string {
	rows := make([]string, 0, a.rows)
	for r := 0; r < a.rows; r++ {
		cells := make([]string, 0, a.cols)
		for c := 0; c < a.cols; c++ {
			cells = append(cells, a.viewCell(r*a.cols+c))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (a *App) viewCell(slot int) string {
	card := a.board[slot]
	var marks strings.Builder
	for p, on := range a.tokens[slot] {
		if on {
			mark := lipgloss.NewStyle().Foreground(tokenColors[p%len(tokenColors)]).Render("●")
			marks.WriteString(mark)
		}
	}
	key := " "
	if len(a.keymaps) > 0 {
		for r, s := range a.keymaps[0] {
			if s == slot {
				key = string(r)
				break
			}
		}
	}
	if card < 0 {
		return emptyCellStyle.Render(keyHintStyle.Render(key) + "\n ")
	}
	return cellStyle.Render(keyHintStyle.Render(key) + " " + a.cardGlyph(card) + "\n" + marks.String())
}

// cardGlyph draws the card: count and shape from the first two features,
// color from the third, shading (solid, open, faint) from the fourth.
func (a *App) cardGlyph(card int) string {
	if a.features == nil {
		return fmt.Sprintf("#%d", card)
	}
	fs := a.features(card)
	shapes := [2][3]string{
		{"▲", "■", "●"}, // solid
		{"△", "□", "○"}, // open
	}
	count, shape, color, shade := fs[0]+1, fs[1], fs[2], fs[3]
	sym := shapes[0][shape]
	if shade == 1 {
		sym = shapes[1][shape]
	}
	style := lipgloss.NewStyle().Foreground(cardColors[color%len(cardColors)])
	if shade == 2 {
		style = style.Faint(true)
	}
	return style.Render(strings.Repeat(sym, count))
}

func (a *App) viewScores() string {
	now := time.Now()
	lines := make([]string, 0, len(a.g.Players))
	for _, p := range a.g.Players {
		mark := lipgloss.NewStyle().Foreground(tokenColors[p.ID()%len(tokenColors)]).Render("●")
		kind := "cpu"
		if p.Human() {
			kind = "you"
		}
		line := fmt.Sprintf("%s %-12s %s  %d", mark, p.Name(), kind, a.scores[p.ID()])
		if left := a.frozen[p.ID()].Sub(now); left > 0 {
			line += frozenStyle.Render(fmt.Sprintf("  frozen %.1fs", left.Seconds()))
		}
		lines = append(lines, scoreStyle.Render(line))
	}
	return strings.Join(lines, "\n")
}

func (a *App) viewWinners() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("setmatch"))
	b.WriteString("\n\n")
	names := make([]string, 0, len(a.winners))
	for _, id := range a.winners {
		if id >= 0 && id < len(a.g.Players) {
			names = append(names, a.g.Players[id].Name())
		}
	}
	switch len(names) {
	case 0:
		b.WriteString(winnerStyle.Render("game over"))
	case 1:
		b.WriteString(winnerStyle.Render(names[0] + " wins!"))
	default:
		b.WriteString(winnerStyle.Render("tie: " + strings.Join(names, ", ")))
	}
	b.WriteString("\n\n")
	b.WriteString(a.viewScores())
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("esc quits"))
	return b.String()
}

func clockFormat(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Second)
	return fmt.Sprintf("%02d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}
