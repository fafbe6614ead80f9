package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Game    GameConfig
	Players PlayersConfig
	AI      AIConfig
}

// GameConfig holds the board, deck and timer settings.
type GameConfig struct {
	Rows                      int
	Columns                   int
	FeatureCount              int `mapstructure:"feature_count"`
	FeatureSize               int `mapstructure:"feature_size"`
	TurnTimeoutSeconds        int `mapstructure:"turn_timeout_seconds"`
	TurnTimeoutWarningSeconds int `mapstructure:"turn_timeout_warning_seconds"`
	PenaltyFreezeSeconds      int `mapstructure:"penalty_freeze_seconds"`
	TableDelayMillis          int `mapstructure:"table_delay_millis"`
	Hints                     bool
}

// PlayersConfig holds the roster: how many humans and computers, their
// names, and one key row layout per human player.
type PlayersConfig struct {
	Human    int
	Computer int
	Names    []string
	Keys     []string
}

// AIConfig holds computer player pacing.
type AIConfig struct {
	MoveDelayMillis int `mapstructure:"move_delay_millis"`
}

// Load reads configuration from file and env. Env var overrides use prefix
// SETMATCH_.
func Load() (Config, error) {
	v := viper.New()

	// default values
	v.SetDefault("game.rows", 3)
	v.SetDefault("game.columns", 4)
	v.SetDefault("game.feature_count", 4)
	v.SetDefault("game.feature_size", 3)
	v.SetDefault("game.turn_timeout_seconds", 60)
	v.SetDefault("game.turn_timeout_warning_seconds", 5)
	v.SetDefault("game.penalty_freeze_seconds", 3)
	v.SetDefault("game.table_delay_millis", 0)
	v.SetDefault("game.hints", false)
	v.SetDefault("players.human", 1)
	v.SetDefault("players.computer", 1)
	v.SetDefault("players.names", []string{})
	v.SetDefault("players.keys", []string{"qwerasdfzxcv", "uiopjkl;m,./"})
	v.SetDefault("ai.move_delay_millis", 500)

	v.SetConfigType("toml")

	cfgPath := os.Getenv("SETMATCH_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "setmatch"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("SETMATCH")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// read config file if present
	_ = v.ReadInConfig()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks the cross-field constraints viper cannot express.
func (c Config) Validate() error {
	if c.Game.Rows < 1 || c.Game.Columns < 1 {
		return fmt.Errorf("config: board %dx%d is empty", c.Game.Rows, c.Game.Columns)
	}
	if c.Game.FeatureCount < 1 || c.Game.FeatureSize < 2 {
		return fmt.Errorf("config: invalid feature geometry %dx%d", c.Game.FeatureCount, c.Game.FeatureSize)
	}
	if c.DeckSize() < c.Slots() {
		return fmt.Errorf("config: deck of %d cards cannot fill a %d-slot board", c.DeckSize(), c.Slots())
	}
	if c.Players.Human < 0 || c.Players.Computer < 0 {
		return fmt.Errorf("config: negative player counts")
	}
	if c.Players.Human+c.Players.Computer < 1 {
		return fmt.Errorf("config: at least one player required")
	}
	if len(c.Players.Keys) < c.Players.Human {
		return fmt.Errorf("config: %d human players but only %d key layouts", c.Players.Human, len(c.Players.Keys))
	}
	for i := 0; i < c.Players.Human; i++ {
		if len([]rune(c.Players.Keys[i])) < c.Slots() {
			return fmt.Errorf("config: key layout %d covers %d of %d slots", i, len([]rune(c.Players.Keys[i])), c.Slots())
		}
	}
	return nil
}

// Slots returns the board size.
func (c Config) Slots() int { return c.Game.Rows * c.Game.Columns }

// DeckSize returns the deck size the feature geometry admits.
func (c Config) DeckSize() int {
	size := 1
	for i := 0; i < c.Game.FeatureCount; i++ {
		size *= c.Game.FeatureSize
	}
	return size
}

// TurnTimeout returns the signed turn timeout; the sign selects the timer
// mode downstream.
func (c Config) TurnTimeout() time.Duration {
	return time.Duration(c.Game.TurnTimeoutSeconds) * time.Second
}

// Warning returns the urgent-styling threshold.
func (c Config) Warning() time.Duration {
	return time.Duration(c.Game.TurnTimeoutWarningSeconds) * time.Second
}

// PenaltyFreeze returns the post-penalty input freeze.
func (c Config) PenaltyFreeze() time.Duration {
	return time.Duration(c.Game.PenaltyFreezeSeconds) * time.Second
}

// TableDelay returns the artificial per-mutation delay (demo/test hook).
func (c Config) TableDelay() time.Duration {
	return time.Duration(c.Game.TableDelayMillis) * time.Millisecond
}

// AIMoveDelay returns the computer players' press pacing.
func (c Config) AIMoveDelay() time.Duration {
	return time.Duration(c.AI.MoveDelayMillis) * time.Millisecond
}
