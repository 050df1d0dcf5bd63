package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

type GameConfig struct {
	// DefenseWindowMillis is how long an attacked player has to play a counter card.
	DefenseWindowMillis int64 `json:"defense_window_millis"`
	TurnDurationSeconds int   `json:"turn_duration_seconds"`
	// BotMinDelayTicks/BotMaxDelayTicks bound the random think time before a bot acts.
	BotMinDelayTicks int `json:"bot_min_delay_ticks"`
	BotMaxDelayTicks int `json:"bot_max_delay_ticks"`
	// BotAutoFillDelaySeconds configures how many seconds to wait before adding a bot to a solo human lobby.
	BotAutoFillDelaySeconds int   `json:"bot_auto_fill_delay_seconds"`
	WinnerCrownBonus        int64 `json:"winner_crown_bonus"`
}

var (
	cfg      *GameConfig
	loadOnce sync.Once
	loadErr  error
)

// LoadGameConfig loads the game configuration from the given path.
func LoadGameConfig(path string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("failed to read game config: %w", err)
			return
		}

		var c GameConfig
		if err := json.Unmarshal(data, &c); err != nil {
			loadErr = fmt.Errorf("failed to unmarshal game config: %w", err)
			return
		}
		cfg = &c
	})
	return loadErr
}

// GetGameConfig returns the global game configuration.
func GetGameConfig() *GameConfig {
	return cfg
}

// DefenseWindowMillis returns the configured counter window, or the rulebook default.
func DefenseWindowMillis() int64 {
	if cfg == nil || cfg.DefenseWindowMillis <= 0 {
		return 5000
	}
	return cfg.DefenseWindowMillis
}

// TurnDurationSeconds returns the per-turn timer, or a safe default.
func TurnDurationSeconds() int {
	if cfg == nil || cfg.TurnDurationSeconds <= 0 {
		return 60
	}
	return cfg.TurnDurationSeconds
}

// BotDelayTicks returns the bounds for a bot's random think delay.
func BotDelayTicks() (int, int) {
	min, max := 2, 6
	if cfg != nil && cfg.BotMinDelayTicks > 0 {
		min = cfg.BotMinDelayTicks
	}
	if cfg != nil && cfg.BotMaxDelayTicks >= min {
		max = cfg.BotMaxDelayTicks
	}
	if max < min {
		max = min
	}
	return min, max
}

// BotAutoFillDelaySeconds returns how long a solo human waits before bots fill the table.
func BotAutoFillDelaySeconds() int {
	if cfg == nil || cfg.BotAutoFillDelaySeconds <= 0 {
		return 15
	}
	return cfg.BotAutoFillDelaySeconds
}

// WinnerCrownBonus returns the crown award for winning a game.
func WinnerCrownBonus() int64 {
	if cfg == nil || cfg.WinnerCrownBonus <= 0 {
		return 25
	}
	return cfg.WinnerCrownBonus
}
