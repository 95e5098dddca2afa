package app

import (
	"cardroom/internal/bot"
	"cardroom/internal/config"
	"cardroom/internal/domain"
)

// warEscalationCost is the cards a single war draws from the reserve:
// one face-down stake plus one face-up tiebreaker per side.
const warEscalationCost = 4

// StartWar validates the bet and deals the battle table: the 20-card
// pyramid, the computer hand, the first-round bonus card and the
// escalation reserve. The caller has already debited the ledger.
func (s *Service) StartWar(playerID string, bet int64) (*domain.WarMatch, []Event, error) {
	if bet < config.GetTableMin("") {
		return nil, nil, domain.ErrBetBelowMinimum
	}

	m := domain.NewWarMatch(playerID)
	deck := domain.NewWarDeck()
	domain.Shuffle(deck, s.rng)
	if err := m.DealTable(deck); err != nil {
		return nil, nil, err
	}
	m.Bet = bet
	m.TimeRemaining = config.GetWarMatchSeconds()
	if !config.GetWarBonusEnabled() {
		// The bonus card stays in the reserve when the rule is off.
		m.Deck = append(m.Deck, m.BonusCard.FaceDown())
		m.BonusCard = nil
	}

	events := []Event{
		private(playerID, EventBetPlaced, BetPlacedPayload{Game: GameWar, Amount: bet}),
		private(playerID, EventWarDealt, WarDealtPayload{
			Pyramid:       pyramidViews(m.Pyramid),
			ComputerCards: len(m.ComputerHand),
			ReserveCards:  len(m.Deck),
			HasBonusCard:  m.BonusCard != nil,
			TimeRemaining: m.TimeRemaining,
		}),
	}
	return m, events, nil
}

// SelectCard plays one full round: the player's chosen pyramid card
// against the computer's autonomous pick, including any war escalations
// and the round award. The twentieth round completes the match. Effects
// arrive in resolution order.
func (s *Service) SelectCard(m *domain.WarMatch, idx int) ([]Event, error) {
	if m.State != domain.WarDealt || m.TimeRemaining <= 0 {
		return nil, domain.ErrInvalidAction
	}

	playerCard, err := m.TakePyramidCard(idx)
	if err != nil {
		return nil, err
	}
	m.SelectedPlayer = &playerCard

	computerCard := s.pickComputerCard(m, playerCard)
	m.SelectedComputer = &computerCard
	m.State = domain.WarRoundActive
	m.WarRound = 0

	events := []Event{
		private(m.PlayerID, EventRoundStarted, RoundStartedPayload{
			Round:        m.RoundsPlayed + 1,
			PlayerCard:   NewCardView(playerCard),
			ComputerCard: NewCardView(computerCard),
		}),
	}

	winner, resolution := s.resolveRound(m)
	events = append(events, resolution...)
	m.RoundsPlayed++

	if bonus := s.awardBonus(m, winner); bonus != nil {
		events = append(events, *bonus)
	}

	if m.Exhausted() {
		events = append(events, s.completeWar(m, false))
	} else {
		m.State = domain.WarDealt
	}
	return events, nil
}

// pickComputerCard asks the brain for the computer's card and removes it
// from the hand.
func (s *Service) pickComputerCard(m *domain.WarMatch, playerCard domain.Card) domain.Card {
	view := bot.View{
		Hand:          m.ComputerHand,
		PlayerCard:    playerCard,
		PlayerScore:   m.PlayerScore,
		ComputerScore: m.ComputerScore,
		RoundsPlayed:  m.RoundsPlayed,
	}
	ci := s.brain.SelectCard(view, s.rng)
	if ci < 0 || ci >= len(m.ComputerHand) {
		ci = 0
	}
	card := m.ComputerHand[ci].Revealed()
	m.ComputerHand = append(m.ComputerHand[:ci], m.ComputerHand[ci+1:]...)
	return card
}

// resolveRound runs the compare/escalate loop until a decisive outcome or
// a reserve-exhaustion push. It returns the round winner ("player",
// "computer" or "push") plus the effects in order.
func (s *Service) resolveRound(m *domain.WarMatch) (string, []Event) {
	var events []Event

	for {
		outcome := domain.CompareWar(*m.SelectedPlayer, *m.SelectedComputer)

		if outcome != domain.WarTie {
			m.State = domain.WarRoundSettling
			winner := "computer"
			if outcome == domain.PlayerWins {
				winner = "player"
			}
			awarded := len(m.PlayerWarStack) + len(m.ComputerWarStack) + 2
			if winner == "player" {
				m.PlayerScore++
				m.PlayerWon = append(m.PlayerWon, m.PlayerWarStack...)
				m.PlayerWon = append(m.PlayerWon, m.ComputerWarStack...)
				m.ClearTable(&m.PlayerWon, &m.PlayerWon)
			} else {
				m.ComputerScore++
				m.ComputerWon = append(m.ComputerWon, m.PlayerWarStack...)
				m.ComputerWon = append(m.ComputerWon, m.ComputerWarStack...)
				m.ClearTable(&m.ComputerWon, &m.ComputerWon)
			}
			m.PlayerWarStack = nil
			m.ComputerWarStack = nil
			events = append(events, s.roundSettled(m, winner, awarded))
			return winner, events
		}

		// Tie: both actives join the war stakes face-down.
		m.PlayerWarStack = append(m.PlayerWarStack, m.SelectedPlayer.FaceDown())
		m.ComputerWarStack = append(m.ComputerWarStack, m.SelectedComputer.FaceDown())
		m.SelectedPlayer = nil
		m.SelectedComputer = nil

		if len(m.Deck) < warEscalationCost {
			// Reserve exhausted mid-war: the round is a push. Each side
			// reclaims its own stakes; no point is scored.
			m.State = domain.WarRoundSettling
			m.PlayerWon = append(m.PlayerWon, m.PlayerWarStack...)
			m.ComputerWon = append(m.ComputerWon, m.ComputerWarStack...)
			m.PlayerWarStack = nil
			m.ComputerWarStack = nil
			events = append(events,
				private(m.PlayerID, EventWarDeckEmpty, struct{}{}),
				s.roundSettled(m, "push", 0),
			)
			return "push", events
		}

		m.State = domain.WarEscalation
		m.WarRound++

		playerStake, _ := domain.DrawOne(&m.Deck)
		playerTiebreaker, _ := domain.DrawOne(&m.Deck)
		computerStake, _ := domain.DrawOne(&m.Deck)
		computerTiebreaker, _ := domain.DrawOne(&m.Deck)

		m.PlayerWarStack = append(m.PlayerWarStack, playerStake.FaceDown())
		m.ComputerWarStack = append(m.ComputerWarStack, computerStake.FaceDown())
		pt := playerTiebreaker.Revealed()
		ct := computerTiebreaker.Revealed()
		m.SelectedPlayer = &pt
		m.SelectedComputer = &ct

		events = append(events, private(m.PlayerID, EventWarTriggered, WarTriggeredPayload{
			WarRound:           m.WarRound,
			PlayerTiebreaker:   NewCardView(pt),
			ComputerTiebreaker: NewCardView(ct),
			StakeCards:         len(m.PlayerWarStack) + len(m.ComputerWarStack),
		}))
	}
}

// awardBonus reveals the bonus card and hands it to the winner of the
// first decisive round; a pushed round leaves it on the table for the
// next one. A twist-rank or joker bonus card is worth an extra point.
func (s *Service) awardBonus(m *domain.WarMatch, winner string) *Event {
	if m.BonusCard == nil || winner == "push" {
		return nil
	}

	card := m.BonusCard.Revealed()
	m.BonusCard = nil
	bonusPoint := card.Rank == domain.TwistRank || card.IsJoker()

	if winner == "player" {
		m.PlayerWon = append(m.PlayerWon, card)
		if bonusPoint {
			m.PlayerScore++
		}
	} else {
		m.ComputerWon = append(m.ComputerWon, card)
		if bonusPoint {
			m.ComputerScore++
		}
	}

	ev := private(m.PlayerID, EventBonusRevealed, BonusRevealedPayload{
		Card:       NewCardView(card),
		AwardedTo:  winner,
		BonusPoint: bonusPoint,
	})
	return &ev
}

// TickWar advances the authoritative clock by one second. The match
// completes when the clock reaches zero between rounds.
func (s *Service) TickWar(m *domain.WarMatch) ([]Event, error) {
	if m.State != domain.WarDealt {
		return nil, nil
	}

	m.TimeRemaining--
	if m.TimeRemaining <= 0 {
		m.TimeRemaining = 0
		return []Event{
			private(m.PlayerID, EventClockTick, ClockTickPayload{TimeRemaining: 0}),
			s.completeWar(m, true),
		}, nil
	}
	return []Event{private(m.PlayerID, EventClockTick, ClockTickPayload{TimeRemaining: m.TimeRemaining})}, nil
}

// ResetWar returns a completed match to the awaiting-bet state.
// Idempotent; rejected mid-match.
func (s *Service) ResetWar(m *domain.WarMatch) ([]Event, error) {
	if !m.Terminal() {
		return nil, domain.ErrInvalidAction
	}
	*m = *domain.NewWarMatch(m.PlayerID)
	return []Event{private(m.PlayerID, EventGameReset, GameResetPayload{Game: GameWar})}, nil
}

// completeWar marks the match terminal. The player wins on a strictly
// higher score, whether the match ended by exhaustion or timeout; an
// equal score is a loss.
func (s *Service) completeWar(m *domain.WarMatch, timedOut bool) Event {
	m.State = domain.WarComplete
	m.Won = m.PlayerScore > m.ComputerScore
	return private(m.PlayerID, EventMatchCompleted, MatchCompletedPayload{
		PlayerScore:   m.PlayerScore,
		ComputerScore: m.ComputerScore,
		Won:           m.Won,
		Payout:        WarPayout(m),
		TimedOut:      timedOut,
	})
}

func (s *Service) roundSettled(m *domain.WarMatch, winner string, awarded int) Event {
	return private(m.PlayerID, EventRoundSettled, RoundSettledPayload{
		Winner:        winner,
		PlayerScore:   m.PlayerScore,
		ComputerScore: m.ComputerScore,
		RoundsPlayed:  m.RoundsPlayed + 1,
		CardsAwarded:  awarded,
	})
}

// WarPayout is the amount credited at settlement: the configured multiple
// of the bet on a win, nothing otherwise.
func WarPayout(m *domain.WarMatch) int64 {
	if m.Won {
		return payout(m.Bet)
	}
	return 0
}
