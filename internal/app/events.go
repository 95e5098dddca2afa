package app

import "cardroom/internal/domain"

// EventKind identifies emitted engine effects for transport dispatch.
// Effects are ordered and timing-free; pacing belongs to the client.
type EventKind string

const (
	EventBetPlaced      EventKind = "bet_placed"
	EventBlackjackDealt EventKind = "blackjack_dealt"
	EventCardDrawn      EventKind = "card_drawn"
	EventDealerRevealed EventKind = "dealer_revealed"
	EventBlackjackEnded EventKind = "blackjack_ended"
	EventWarDealt       EventKind = "war_dealt"
	EventRoundStarted   EventKind = "round_started"
	EventWarTriggered   EventKind = "war_triggered"
	EventWarDeckEmpty   EventKind = "war_deck_empty"
	EventRoundSettled   EventKind = "round_settled"
	EventBonusRevealed  EventKind = "bonus_revealed"
	EventClockTick      EventKind = "clock_tick"
	EventMatchCompleted EventKind = "match_completed"
	EventPayoutIssued   EventKind = "payout_issued"
	EventGameReset      EventKind = "game_reset"
)

// Event is a discrete engine effect with optional targeted recipients.
type Event struct {
	Kind       EventKind
	Payload    any
	Recipients []string // player IDs; empty means broadcast
}

type BetPlacedPayload struct {
	Game   GameKind `json:"game"`
	Amount int64    `json:"amount"`
}

type BlackjackDealtPayload struct {
	PlayerHand  []CardView `json:"player_hand"`
	PlayerScore int        `json:"player_score"`
	DealerUp    CardView   `json:"dealer_up"`
	HiddenCards int        `json:"hidden_cards"`
}

// CardDrawnPayload reports a single draw into a visible hand.
type CardDrawnPayload struct {
	Target string   `json:"target"` // "player" or "dealer"
	Card   CardView `json:"card"`
	Score  int      `json:"score"`
}

type DealerRevealedPayload struct {
	Card        CardView `json:"card"`
	DealerScore int      `json:"dealer_score"`
}

type BlackjackEndedPayload struct {
	Outcome     domain.BlackjackOutcome `json:"outcome"`
	PlayerScore int                     `json:"player_score"`
	DealerScore int                     `json:"dealer_score"`
	Payout      int64                   `json:"payout"`
}

type WarDealtPayload struct {
	Pyramid       []PyramidView `json:"pyramid"`
	ComputerCards int           `json:"computer_cards"`
	ReserveCards  int           `json:"reserve_cards"`
	HasBonusCard  bool          `json:"has_bonus_card"`
	TimeRemaining int           `json:"time_remaining"`
}

type RoundStartedPayload struct {
	Round        int      `json:"round"`
	PlayerCard   CardView `json:"player_card"`
	ComputerCard CardView `json:"computer_card"`
}

// WarTriggeredPayload reports one escalation step. The tiebreaker cards
// are the new face-up actives; the face-down draws stay hidden.
type WarTriggeredPayload struct {
	WarRound           int      `json:"war_round"`
	PlayerTiebreaker   CardView `json:"player_tiebreaker"`
	ComputerTiebreaker CardView `json:"computer_tiebreaker"`
	StakeCards         int      `json:"stake_cards"`
}

type RoundSettledPayload struct {
	Winner        string `json:"winner"` // "player", "computer" or "push"
	PlayerScore   int    `json:"player_score"`
	ComputerScore int    `json:"computer_score"`
	RoundsPlayed  int    `json:"rounds_played"`
	CardsAwarded  int    `json:"cards_awarded"`
}

type BonusRevealedPayload struct {
	Card       CardView `json:"card"`
	AwardedTo  string   `json:"awarded_to"`
	BonusPoint bool     `json:"bonus_point"`
}

type ClockTickPayload struct {
	TimeRemaining int `json:"time_remaining"`
}

type MatchCompletedPayload struct {
	PlayerScore   int   `json:"player_score"`
	ComputerScore int   `json:"computer_score"`
	Won           bool  `json:"won"`
	Payout        int64 `json:"payout"`
	TimedOut      bool  `json:"timed_out"`
}

type PayoutIssuedPayload struct {
	Game   GameKind `json:"game"`
	Amount int64    `json:"amount"`
}

type GameResetPayload struct {
	Game GameKind `json:"game"`
}
