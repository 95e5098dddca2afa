package bot

import (
	"math/rand"

	"cardroom/internal/domain"
)

// View is the information a brain is allowed to see when picking the
// computer's card. It deliberately excludes the player's hidden pyramid
// cards and the escalation deck.
type View struct {
	Hand          []domain.Card
	PlayerCard    domain.Card
	PlayerScore   int
	ComputerScore int
	RoundsPlayed  int
}

// Brain picks which card the computer opponent plays. Implementations
// return an index into View.Hand.
type Brain interface {
	SelectCard(v View, rng *rand.Rand) int
}
