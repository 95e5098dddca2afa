package app

import (
	"math/rand"

	"cardroom/internal/bot"
	"cardroom/internal/config"
	"cardroom/internal/domain"
)

// Service contains the rules-engine use-cases for both game kinds. It is
// pure with respect to the ledger: money movement belongs to the Registry.
type Service struct {
	rng   *rand.Rand
	brain bot.Brain
}

// NewService constructs a Service. A nil rng falls back to the CSPRNG
// shuffle source; tests pass a seeded rand for deterministic deals. A nil
// brain falls back to the uniform-random opponent.
func NewService(rng *rand.Rand, brain bot.Brain) *Service {
	if rng == nil {
		rng = domain.NewCryptoRand()
	}
	if brain == nil {
		brain, _ = bot.NewBrain(bot.LevelRandom)
	}
	return &Service{rng: rng, brain: brain}
}

// private tags an event for delivery to a single player. Both games are
// solo against the house, so every effect is private to its player.
func private(playerID string, kind EventKind, payload any) Event {
	return Event{Kind: kind, Payload: payload, Recipients: []string{playerID}}
}

// payout computes the winning amount from the configured percentage.
func payout(bet int64) int64 {
	return bet * config.GetPayoutPercent() / 100
}
