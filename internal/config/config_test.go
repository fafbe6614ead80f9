package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir()) // no config file anywhere
	t.Setenv("SETMATCH_CONFIG", "")

	c, err := Load()
	require.NoError(t, err)

	require.Equal(t, 3, c.Game.Rows)
	require.Equal(t, 4, c.Game.Columns)
	require.Equal(t, 12, c.Slots())
	require.Equal(t, 81, c.DeckSize())
	require.Equal(t, time.Minute, c.TurnTimeout())
	require.Equal(t, 5*time.Second, c.Warning())
	require.Equal(t, 3*time.Second, c.PenaltyFreeze())
	require.Equal(t, time.Duration(0), c.TableDelay())
	require.Equal(t, 500*time.Millisecond, c.AIMoveDelay())
	require.False(t, c.Game.Hints)
	require.Equal(t, 1, c.Players.Human)
	require.Equal(t, 1, c.Players.Computer)
	require.Len(t, c.Players.Keys, 2)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[game]
rows = 2
columns = 3
feature_count = 2
feature_size = 3
turn_timeout_seconds = 0
hints = true

[players]
human = 1
computer = 3
names = ["dana"]
keys = ["qweasd"]

[ai]
move_delay_millis = 50
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Setenv("SETMATCH_CONFIG", path)

	c, err := Load()
	require.NoError(t, err)

	require.Equal(t, 6, c.Slots())
	require.Equal(t, 9, c.DeckSize())
	require.Equal(t, time.Duration(0), c.TurnTimeout())
	require.True(t, c.Game.Hints)
	require.Equal(t, 3, c.Players.Computer)
	require.Equal(t, []string{"dana"}, c.Players.Names)
	require.Equal(t, 50*time.Millisecond, c.AIMoveDelay())

	// untouched keys keep their defaults
	require.Equal(t, 3*time.Second, c.PenaltyFreeze())
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("SETMATCH_CONFIG", "")
	t.Setenv("SETMATCH_GAME_TURN_TIMEOUT_SECONDS", "-1")
	t.Setenv("SETMATCH_GAME_HINTS", "true")

	c, err := Load()
	require.NoError(t, err)
	require.Equal(t, -time.Second, c.TurnTimeout())
	require.True(t, c.Game.Hints)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	base := func() Config {
		return Config{
			Game: GameConfig{
				Rows:         3,
				Columns:      4,
				FeatureCount: 4,
				FeatureSize:  3,
			},
			Players: PlayersConfig{
				Human:    1,
				Computer: 1,
				Keys:     []string{"qwerasdfzxcv"},
			},
		}
	}

	require.NoError(t, base().Validate())

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty board", func(c *Config) { c.Game.Rows = 0 }},
		{"bad geometry", func(c *Config) { c.Game.FeatureSize = 1 }},
		{"deck too small", func(c *Config) { c.Game.FeatureCount = 2 }}, // 9 cards, 12 slots
		{"negative players", func(c *Config) { c.Players.Computer = -1 }},
		{"no players", func(c *Config) { c.Players.Human = 0; c.Players.Computer = 0 }},
		{"missing key layout", func(c *Config) { c.Players.Human = 2 }},
		{"short key layout", func(c *Config) { c.Players.Keys = []string{"qwe"} }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			c := base()
			tc.mutate(&c)
			require.Error(t, c.Validate())
		})
	}
}
