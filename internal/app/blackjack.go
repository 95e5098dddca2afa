package app

import (
	"cardroom/internal/config"
	"cardroom/internal/domain"
)

// dealerStandScore is the fixed house policy: draw to 17, stand on 17+.
const dealerStandScore = 17

// StartBlackjack validates the bet, builds a fresh shuffled shoe and
// deals the opening hands. The caller has already debited the ledger; on
// any error here no instance is returned and nothing was dealt.
func (s *Service) StartBlackjack(playerID string, bet int64) (*domain.BlackjackGame, []Event, error) {
	if bet < config.GetTableMin("") {
		return nil, nil, domain.ErrBetBelowMinimum
	}

	g := domain.NewBlackjackGame(playerID)
	shoe := domain.NewBlackjackShoe(config.GetBlackjackDecks())
	domain.Shuffle(shoe, s.rng)
	g.SetDeck(shoe)
	g.Bet = bet

	opening, err := domain.Draw(&g.Deck, 4)
	if err != nil {
		return nil, nil, err
	}
	g.PlayerHand = []domain.Card{opening[0].Revealed(), opening[1].Revealed()}
	g.DealerHand = []domain.Card{opening[2].Revealed(), opening[3].FaceDown()}
	g.State = domain.BlackjackPlayerTurn

	// A dealt 21 still waits for an explicit action; there is no
	// auto-stand at this table.
	events := []Event{
		private(playerID, EventBetPlaced, BetPlacedPayload{Game: GameBlackjack, Amount: bet}),
		private(playerID, EventBlackjackDealt, BlackjackDealtPayload{
			PlayerHand:  cardViews(g.PlayerHand),
			PlayerScore: g.PlayerScore(),
			DealerUp:    NewCardView(g.DealerHand[0]),
			HiddenCards: 1,
		}),
	}
	return g, events, nil
}

// Hit draws one card into the player hand. Hitting exactly 21 settles
// immediately: the hole card is revealed but the dealer draws no further,
// and only a dealer 21 denies the win (as a push). A bust ends the hand
// with the dealer's hole card revealed for display symmetry.
func (s *Service) Hit(g *domain.BlackjackGame) ([]Event, error) {
	if g.State != domain.BlackjackPlayerTurn {
		return nil, domain.ErrInvalidAction
	}

	card, err := domain.DrawOne(&g.Deck)
	if err != nil {
		return nil, err
	}
	g.PlayerHand = append(g.PlayerHand, card.Revealed())

	score := g.PlayerScore()
	events := []Event{
		private(g.PlayerID, EventCardDrawn, CardDrawnPayload{Target: "player", Card: NewCardView(card.Revealed()), Score: score}),
	}

	switch {
	case score == 21:
		events = append(events, s.revealDealer(g)...)
		g.SettleOutcome(true)
		events = append(events, s.endEvent(g))
	case domain.IsBust(score):
		events = append(events, s.revealDealer(g)...)
		g.SettleOutcome(false)
		events = append(events, s.endEvent(g))
	}
	return events, nil
}

// Stand reveals the hole card and runs the fixed dealer policy, then
// settles. Ties pay the house.
func (s *Service) Stand(g *domain.BlackjackGame) ([]Event, error) {
	if g.State != domain.BlackjackPlayerTurn {
		return nil, domain.ErrInvalidAction
	}

	g.State = domain.BlackjackDealerTurn
	events := s.revealDealer(g)

	for g.DealerScore() < dealerStandScore {
		card, err := domain.DrawOne(&g.Deck)
		if err != nil {
			// Shoe exhaustion mid-draw leaves no legal continuation.
			g.State = domain.BlackjackError
			return events, err
		}
		g.DealerHand = append(g.DealerHand, card.Revealed())
		events = append(events, private(g.PlayerID, EventCardDrawn, CardDrawnPayload{
			Target: "dealer",
			Card:   NewCardView(card.Revealed()),
			Score:  g.DealerScore(),
		}))
	}

	g.SettleOutcome(false)
	events = append(events, s.endEvent(g))
	return events, nil
}

// ResetBlackjack returns a terminal instance to the waiting state.
// Idempotent; rejected mid-hand since a placed bet cannot be cancelled.
func (s *Service) ResetBlackjack(g *domain.BlackjackGame) ([]Event, error) {
	if !g.Terminal() {
		return nil, domain.ErrInvalidAction
	}
	*g = *domain.NewBlackjackGame(g.PlayerID)
	return []Event{private(g.PlayerID, EventGameReset, GameResetPayload{Game: GameBlackjack})}, nil
}

func (s *Service) revealDealer(g *domain.BlackjackGame) []Event {
	card, ok := g.RevealDealer()
	if !ok {
		return nil
	}
	return []Event{private(g.PlayerID, EventDealerRevealed, DealerRevealedPayload{
		Card:        NewCardView(card),
		DealerScore: g.DealerScore(),
	})}
}

func (s *Service) endEvent(g *domain.BlackjackGame) Event {
	return private(g.PlayerID, EventBlackjackEnded, BlackjackEndedPayload{
		Outcome:     g.Outcome,
		PlayerScore: g.PlayerScore(),
		DealerScore: g.DealerScore(),
		Payout:      BlackjackPayout(g),
	})
}

// BlackjackPayout is the amount credited at settlement for the hand's
// outcome: the configured multiple of the bet on a win, the bet back on
// the hit-21 push, nothing on a house win.
func BlackjackPayout(g *domain.BlackjackGame) int64 {
	switch g.Outcome {
	case domain.OutcomePlayerWin:
		return payout(g.Bet)
	case domain.OutcomePush:
		return g.Bet
	default:
		return 0
	}
}
