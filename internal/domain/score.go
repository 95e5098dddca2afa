package domain

// BlackjackScore computes the blackjack value of a hand. Aces count 11
// until the total would bust, then soften to 1 one at a time. Face-down
// cards are excluded from the total entirely until revealed.
func BlackjackScore(hand []Card) int {
	score := 0
	aces := 0
	for _, c := range hand {
		if !c.FaceUp {
			continue
		}
		switch {
		case c.Rank == Ace:
			score += 11
			aces++
		case c.Rank >= Ten:
			score += 10
		default:
			score += int(c.Rank)
		}
	}
	for score > 21 && aces > 0 {
		score -= 10
		aces--
	}
	return score
}

// IsBust reports whether a hand score exceeds 21.
func IsBust(score int) bool {
	return score > 21
}

// WarOutcome is the result of comparing two active war cards.
type WarOutcome int32

const (
	// WarTie means equal strength; the round escalates to a war.
	WarTie WarOutcome = iota
	// PlayerWins means the player takes the round.
	PlayerWins
	// ComputerWins means the house opponent takes the round.
	ComputerWins
)

// TwistRank is the rank that inverts the normal comparison when the
// player leads with it: the lower card wins that single comparison.
const TwistRank = Seven

// CompareWar resolves one war comparison between the player's active card
// and the computer's. Jokers beat any non-joker and tie each other; the
// joker rule takes precedence over the twist. A twist seven against an
// equal rank is still a tie.
func CompareWar(player, computer Card) WarOutcome {
	switch {
	case player.IsJoker() && computer.IsJoker():
		return WarTie
	case player.IsJoker():
		return PlayerWins
	case computer.IsJoker():
		return ComputerWins
	}

	pv, cv := player.WarValue(), computer.WarValue()
	if pv == cv {
		return WarTie
	}

	if player.Rank == TwistRank {
		// Twist: the dealer needs the strictly lower card to win.
		if cv > pv {
			return PlayerWins
		}
		return ComputerWins
	}

	if pv > cv {
		return PlayerWins
	}
	return ComputerWins
}
