package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// BetTier is a named stake level for match labels and lobby filtering.
type BetTier struct {
	ID       string `json:"id"`
	TableMin int64  `json:"table_min"`
}

// GameConfig holds table rules shared by both game kinds.
type GameConfig struct {
	// PayoutPercent is the winning payout as a percentage of the bet.
	PayoutPercent int64 `json:"payout_percent"`
	// BlackjackDecks is the number of standard decks in the shoe.
	BlackjackDecks int `json:"blackjack_decks"`
	// WarMatchSeconds is the authoritative match clock budget.
	WarMatchSeconds int `json:"war_match_seconds"`
	// WarBonusEnabled toggles the first-round bonus card rule.
	WarBonusEnabled bool `json:"war_bonus_enabled"`

	DefaultTier string    `json:"default_tier"`
	Tiers       []BetTier `json:"tiers"`
}

const (
	defaultPayoutPercent   = 180
	defaultBlackjackDecks  = 6
	defaultWarMatchSeconds = 300
	defaultTableMin        = 10
)

var (
	cfg      *GameConfig
	loadOnce sync.Once
	loadErr  error
)

// LoadGameConfig loads the table configuration from the given path.
// Loading happens once; later calls return the first result.
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

// GetPayoutPercent returns the winning payout percentage.
func GetPayoutPercent() int64 {
	if cfg == nil || cfg.PayoutPercent <= 0 {
		return defaultPayoutPercent
	}
	return cfg.PayoutPercent
}

// GetBlackjackDecks returns the shoe size in standard decks.
func GetBlackjackDecks() int {
	if cfg == nil || cfg.BlackjackDecks < 1 {
		return defaultBlackjackDecks
	}
	return cfg.BlackjackDecks
}

// GetWarMatchSeconds returns the war match wall-clock budget.
func GetWarMatchSeconds() int {
	if cfg == nil || cfg.WarMatchSeconds <= 0 {
		return defaultWarMatchSeconds
	}
	return cfg.WarMatchSeconds
}

// GetWarBonusEnabled reports whether the first-round bonus card is dealt.
func GetWarBonusEnabled() bool {
	if cfg == nil {
		return true
	}
	return cfg.WarBonusEnabled
}

// GetTableMin returns the table minimum for a tier ID, or the default
// tier's minimum when the ID is unknown or empty.
func GetTableMin(tierID string) int64 {
	if cfg == nil {
		return defaultTableMin
	}

	target := tierID
	if target == "" {
		target = cfg.DefaultTier
	}

	for _, tier := range cfg.Tiers {
		if tier.ID == target {
			return tier.TableMin
		}
	}
	for _, tier := range cfg.Tiers {
		if tier.ID == cfg.DefaultTier {
			return tier.TableMin
		}
	}

	return defaultTableMin
}
