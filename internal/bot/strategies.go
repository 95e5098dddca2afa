package bot

import (
	"math/rand"

	"cardroom/internal/domain"
)

// RandomBrain is the default opponent: uniform choice over the hand.
// The player cannot see the computer's hand, so randomness alone already
// plays reasonably in a high-card game.
type RandomBrain struct{}

func (b *RandomBrain) SelectCard(v View, rng *rand.Rand) int {
	if len(v.Hand) == 0 {
		return -1
	}
	return rng.Intn(len(v.Hand))
}

// SharpBrain spends strength where it matters: it dumps its weakest card
// into a twist seven (low beats high there) and otherwise plays high cards
// when trailing and low cards when ahead.
type SharpBrain struct{}

func (b *SharpBrain) SelectCard(v View, rng *rand.Rand) int {
	if len(v.Hand) == 0 {
		return -1
	}

	if v.PlayerCard.Rank == domain.TwistRank {
		return lowestIndex(v.Hand)
	}

	if v.ComputerScore < v.PlayerScore {
		return highestIndex(v.Hand)
	}
	if v.ComputerScore > v.PlayerScore {
		return lowestIndex(v.Hand)
	}
	return rng.Intn(len(v.Hand))
}

func lowestIndex(hand []domain.Card) int {
	best := 0
	for i, c := range hand {
		if c.WarValue() < hand[best].WarValue() {
			best = i
		}
	}
	return best
}

func highestIndex(hand []domain.Card) int {
	best := 0
	for i, c := range hand {
		if c.WarValue() > hand[best].WarValue() {
			best = i
		}
	}
	return best
}
