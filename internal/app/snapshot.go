package app

import "cardroom/internal/domain"

// CardView is the wire-safe projection of a card. Face-down cards keep
// their identity out of every snapshot and effect payload; a hidden card
// serializes as nothing but face_up=false.
type CardView struct {
	Suit   string `json:"suit,omitempty"`
	Rank   int    `json:"rank,omitempty"`
	FaceUp bool   `json:"face_up"`
}

// NewCardView masks a card according to its reveal flag.
func NewCardView(c domain.Card) CardView {
	if !c.FaceUp {
		return CardView{FaceUp: false}
	}
	return CardView{Suit: c.Suit.String(), Rank: int(c.Rank), FaceUp: true}
}

func cardViews(cards []domain.Card) []CardView {
	out := make([]CardView, len(cards))
	for i, c := range cards {
		out[i] = NewCardView(c)
	}
	return out
}

// PyramidView is one pyramid slot as the player may see it.
type PyramidView struct {
	Card  CardView `json:"card"`
	Row   int      `json:"row"`
	Taken bool     `json:"taken"`
}

func pyramidViews(slots []domain.PyramidSlot) []PyramidView {
	out := make([]PyramidView, len(slots))
	for i, slot := range slots {
		card := slot.Card
		if slot.Taken {
			// Selected cards have been revealed on the table already.
			card = card.Revealed()
		}
		out[i] = PyramidView{Card: NewCardView(card), Row: slot.Row, Taken: slot.Taken}
	}
	return out
}

// BlackjackSnapshot is the read-only view of a blackjack table.
type BlackjackSnapshot struct {
	State       domain.BlackjackState   `json:"state"`
	Bet         int64                   `json:"bet"`
	PlayerHand  []CardView              `json:"player_hand"`
	PlayerScore int                     `json:"player_score"`
	DealerHand  []CardView              `json:"dealer_hand"`
	DealerScore int                     `json:"dealer_score"`
	Outcome     domain.BlackjackOutcome `json:"outcome,omitempty"`
	Settled     bool                    `json:"settled"`
}

// WarSnapshot is the read-only view of a war battle match.
type WarSnapshot struct {
	State         domain.WarState `json:"state"`
	Bet           int64           `json:"bet"`
	Pyramid       []PyramidView   `json:"pyramid"`
	ComputerCards int             `json:"computer_cards"`
	ReserveCards  int             `json:"reserve_cards"`
	PlayerCard    *CardView       `json:"player_card,omitempty"`
	ComputerCard  *CardView       `json:"computer_card,omitempty"`
	PlayerScore   int             `json:"player_score"`
	ComputerScore int             `json:"computer_score"`
	RoundsPlayed  int             `json:"rounds_played"`
	WarRound      int             `json:"war_round"`
	TimeRemaining int             `json:"time_remaining"`
	HasBonusCard  bool            `json:"has_bonus_card"`
	Won           bool            `json:"won"`
	Settled       bool            `json:"settled"`
}

// Snapshot is the full state-sync projection for one player's game. The
// cursor is the sequence number of the last effect in the log; a client
// resuming passes it back to receive only newer effects.
type Snapshot struct {
	PlayerID  string             `json:"player_id"`
	Game      GameKind           `json:"game"`
	Cursor    uint64             `json:"cursor"`
	Blackjack *BlackjackSnapshot `json:"blackjack,omitempty"`
	War       *WarSnapshot       `json:"war,omitempty"`
}

// snapshotLocked builds the projection; the session mutex must be held.
func (r *Registry) snapshotLocked(s *session) Snapshot {
	snap := Snapshot{PlayerID: s.playerID, Game: s.game, Cursor: s.nextSeq}

	if s.game == GameBlackjack {
		g := s.blackjack
		if g == nil {
			g = domain.NewBlackjackGame(s.playerID)
		}
		snap.Blackjack = &BlackjackSnapshot{
			State:       g.State,
			Bet:         g.Bet,
			PlayerHand:  cardViews(g.PlayerHand),
			PlayerScore: g.PlayerScore(),
			DealerHand:  cardViews(g.DealerHand),
			DealerScore: g.DealerScore(),
			Outcome:     g.Outcome,
			Settled:     g.Settled,
		}
		return snap
	}

	m := s.war
	if m == nil {
		m = domain.NewWarMatch(s.playerID)
	}
	war := &WarSnapshot{
		State:         m.State,
		Bet:           m.Bet,
		Pyramid:       pyramidViews(m.Pyramid),
		ComputerCards: len(m.ComputerHand),
		ReserveCards:  len(m.Deck),
		PlayerScore:   m.PlayerScore,
		ComputerScore: m.ComputerScore,
		RoundsPlayed:  m.RoundsPlayed,
		WarRound:      m.WarRound,
		TimeRemaining: m.TimeRemaining,
		HasBonusCard:  m.BonusCard != nil,
		Won:           m.Won,
		Settled:       m.Settled,
	}
	if m.SelectedPlayer != nil {
		v := NewCardView(*m.SelectedPlayer)
		war.PlayerCard = &v
	}
	if m.SelectedComputer != nil {
		v := NewCardView(*m.SelectedComputer)
		war.ComputerCard = &v
	}
	snap.War = war
	return snap
}
