package domain

// WarState is the lifecycle stage of a war battle match.
type WarState string

const (
	// WarAwaitingBet is the idle state before a bet is placed.
	WarAwaitingBet WarState = "awaiting_bet"
	// WarDealt means the table is set and the player may select a card.
	WarDealt WarState = "dealt"
	// WarRoundActive means both active cards are on the table.
	WarRoundActive WarState = "round_active"
	// WarEscalation means tied cards are stacked and tiebreakers drawn.
	WarEscalation WarState = "war_active"
	// WarRoundSettling means a decisive comparison is being awarded.
	WarRoundSettling WarState = "round_settling"
	// WarComplete is the terminal settled state.
	WarComplete WarState = "complete"
)

const (
	// PyramidSize is the fixed number of player cards dealt per match.
	PyramidSize = 20
	// WarHandSize is the computer opponent's hand, one card per round.
	WarHandSize = 20
)

// pyramidRows is the row layout of the 20-card pyramid, top to bottom.
var pyramidRows = []int{2, 3, 4, 5, 6}

// PyramidSlot is one position in the player's pyramid. Taken slots keep
// their card value for display history but the card itself has moved to
// the table.
type PyramidSlot struct {
	Card  Card
	Row   int
	Taken bool
}

// WarMatch holds the authoritative state for one player's battle match.
type WarMatch struct {
	PlayerID string
	State    WarState

	// Deck is the war/escalation reserve left after the deal.
	Deck         []Card
	Pyramid      []PyramidSlot
	ComputerHand []Card
	// BonusCard is dealt face-down on the first round only and awarded to
	// the first round's winner.
	BonusCard *Card

	SelectedPlayer   *Card
	SelectedComputer *Card

	// War stacks accumulate face-down cards during escalation and are
	// awarded wholesale to the eventual round winner.
	PlayerWarStack   []Card
	ComputerWarStack []Card

	// Won piles keep every card awarded so far, preserving the deck
	// conservation invariant through the whole match.
	PlayerWon   []Card
	ComputerWon []Card

	WarRound      int
	PlayerScore   int
	ComputerScore int
	RoundsPlayed  int
	// TimeRemaining is the engine-authoritative countdown in seconds.
	TimeRemaining int

	Bet int64
	Won bool
	// Settled flips exactly once when the payout (if any) is credited.
	Settled bool

	initialCards int
}

// NewWarMatch creates an instance in the awaiting-bet state.
func NewWarMatch(playerID string) *WarMatch {
	return &WarMatch{PlayerID: playerID, State: WarAwaitingBet}
}

// DealTable distributes a shuffled 55-card deck into the pyramid, the
// computer hand, the bonus card and the escalation reserve.
func (m *WarMatch) DealTable(deck []Card) error {
	m.initialCards = len(deck)

	m.Pyramid = make([]PyramidSlot, 0, PyramidSize)
	for row, width := range pyramidRows {
		for col := 0; col < width; col++ {
			card, err := DrawOne(&deck)
			if err != nil {
				return err
			}
			// Fog of war: alternate positions stay hidden until selected.
			if (row+col)%2 == 0 {
				card = card.Revealed()
			} else {
				card = card.FaceDown()
			}
			m.Pyramid = append(m.Pyramid, PyramidSlot{Card: card, Row: row})
		}
	}

	hand, err := Draw(&deck, WarHandSize)
	if err != nil {
		return err
	}
	m.ComputerHand = hand

	bonus, err := DrawOne(&deck)
	if err != nil {
		return err
	}
	bonus = bonus.FaceDown()
	m.BonusCard = &bonus

	m.Deck = deck
	m.State = WarDealt
	return nil
}

// TakePyramidCard removes the card at idx from the pyramid and reveals it.
func (m *WarMatch) TakePyramidCard(idx int) (Card, error) {
	if idx < 0 || idx >= len(m.Pyramid) || m.Pyramid[idx].Taken {
		return Card{}, ErrInvalidAction
	}
	m.Pyramid[idx].Taken = true
	return m.Pyramid[idx].Card.Revealed(), nil
}

// PyramidRemaining counts unselected pyramid slots.
func (m *WarMatch) PyramidRemaining() int {
	n := 0
	for _, slot := range m.Pyramid {
		if !slot.Taken {
			n++
		}
	}
	return n
}

// CardCount sums every card still in play. It must equal InitialCards
// from the deal to completion.
func (m *WarMatch) CardCount() int {
	n := len(m.Deck) + len(m.ComputerHand) +
		len(m.PlayerWarStack) + len(m.ComputerWarStack) +
		len(m.PlayerWon) + len(m.ComputerWon) +
		m.PyramidRemaining()
	if m.BonusCard != nil {
		n++
	}
	if m.SelectedPlayer != nil {
		n++
	}
	if m.SelectedComputer != nil {
		n++
	}
	return n
}

// InitialCards is the deck size at deal time.
func (m *WarMatch) InitialCards() int {
	return m.initialCards
}

// Exhausted reports whether all 20 pyramid rounds have been played.
func (m *WarMatch) Exhausted() bool {
	return m.RoundsPlayed >= PyramidSize
}

// Terminal reports whether the match accepts a new bet after reset.
func (m *WarMatch) Terminal() bool {
	return m.State == WarAwaitingBet || m.State == WarComplete
}

// ClearTable moves both active cards into the given piles and resets the
// selection pointers between rounds.
func (m *WarMatch) ClearTable(playerTo, computerTo *[]Card) {
	if m.SelectedPlayer != nil {
		*playerTo = append(*playerTo, *m.SelectedPlayer)
		m.SelectedPlayer = nil
	}
	if m.SelectedComputer != nil {
		*computerTo = append(*computerTo, *m.SelectedComputer)
		m.SelectedComputer = nil
	}
}
