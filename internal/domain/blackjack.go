package domain

// BlackjackState is the lifecycle stage of a blackjack table instance.
type BlackjackState string

const (
	// BlackjackWaitingForBet is the idle state before a bet is placed.
	BlackjackWaitingForBet BlackjackState = "waiting_for_bet"
	// BlackjackPlayerTurn is the hit/stand loop.
	BlackjackPlayerTurn BlackjackState = "player_turn"
	// BlackjackDealerTurn is the fixed-policy house draw.
	BlackjackDealerTurn BlackjackState = "dealer_turn"
	// BlackjackEnded is the terminal settled state.
	BlackjackEnded BlackjackState = "game_ended"
	// BlackjackError is reachable from any state on an unrecoverable
	// fault and requires an explicit reset.
	BlackjackError BlackjackState = "error"
)

// BlackjackOutcome is the settlement result of a finished hand.
type BlackjackOutcome string

const (
	OutcomeNone      BlackjackOutcome = ""
	OutcomePlayerWin BlackjackOutcome = "player_win"
	OutcomeHouseWin  BlackjackOutcome = "house_win"
	// OutcomePush only occurs when the player hits to exactly 21 and the
	// dealer's revealed hand is also 21; every other tie goes to the house.
	OutcomePush BlackjackOutcome = "push"
)

// BlackjackGame holds the authoritative state for one player's table.
type BlackjackGame struct {
	PlayerID   string
	State      BlackjackState
	Deck       []Card
	PlayerHand []Card
	DealerHand []Card
	Bet        int64
	Outcome    BlackjackOutcome
	// Settled flips exactly once when the payout (if any) is credited.
	Settled bool

	initialCards int
}

// NewBlackjackGame creates an instance in the waiting state.
func NewBlackjackGame(playerID string) *BlackjackGame {
	return &BlackjackGame{PlayerID: playerID, State: BlackjackWaitingForBet}
}

// SetDeck installs a freshly shuffled shoe and records its size for the
// conservation invariant.
func (g *BlackjackGame) SetDeck(deck []Card) {
	g.Deck = deck
	g.initialCards = len(deck)
}

// CardCount sums deck plus both hands. It must equal InitialCards for the
// whole life of the instance.
func (g *BlackjackGame) CardCount() int {
	return len(g.Deck) + len(g.PlayerHand) + len(g.DealerHand)
}

// InitialCards is the shoe size at deal time.
func (g *BlackjackGame) InitialCards() int {
	return g.initialCards
}

// Terminal reports whether the instance can accept a new bet after reset.
func (g *BlackjackGame) Terminal() bool {
	return g.State == BlackjackWaitingForBet || g.State == BlackjackEnded || g.State == BlackjackError
}

// HoleCard returns the dealer's face-down card, if one is still hidden.
func (g *BlackjackGame) HoleCard() (Card, bool) {
	for _, c := range g.DealerHand {
		if !c.FaceUp {
			return c, true
		}
	}
	return Card{}, false
}

// RevealDealer turns over the dealer's hidden card and returns it.
func (g *BlackjackGame) RevealDealer() (Card, bool) {
	for i, c := range g.DealerHand {
		if !c.FaceUp {
			g.DealerHand[i] = c.Revealed()
			return g.DealerHand[i], true
		}
	}
	return Card{}, false
}

// PlayerScore is the visible score of the player hand.
func (g *BlackjackGame) PlayerScore() int {
	return BlackjackScore(g.PlayerHand)
}

// DealerScore is the visible score of the dealer hand. While the hole
// card is hidden this counts only the up card.
func (g *BlackjackGame) DealerScore() int {
	return BlackjackScore(g.DealerHand)
}

// SettleOutcome applies the table's settlement comparator once both hands
// are final. Ties go to the house; the only push is a player hit to 21
// against a dealer 21, which the caller marks explicitly via hit21.
func (g *BlackjackGame) SettleOutcome(hit21 bool) BlackjackOutcome {
	player := g.PlayerScore()
	dealer := g.DealerScore()

	switch {
	case IsBust(player):
		g.Outcome = OutcomeHouseWin
	case hit21 && dealer == 21:
		g.Outcome = OutcomePush
	case hit21:
		g.Outcome = OutcomePlayerWin
	case IsBust(dealer):
		g.Outcome = OutcomePlayerWin
	case player > dealer:
		g.Outcome = OutcomePlayerWin
	default:
		// dealer > player, and the deliberate house-edge rule: exact tie
		// also goes to the dealer.
		g.Outcome = OutcomeHouseWin
	}
	g.State = BlackjackEnded
	return g.Outcome
}
