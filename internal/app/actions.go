package app

// GameKind selects which engine an action targets.
type GameKind string

const (
	GameBlackjack GameKind = "blackjack"
	GameWar       GameKind = "newwarorder"
)

// ActionKind is the closed set of player actions.
type ActionKind string

const (
	ActionPlaceBet   ActionKind = "place_bet"
	ActionHit        ActionKind = "hit"
	ActionStand      ActionKind = "stand"
	ActionSelectCard ActionKind = "select_card"
	ActionReset      ActionKind = "reset"
)

// Action is the tagged union consumed by Registry.Apply. Amount is only
// meaningful for place_bet, CardIndex only for select_card.
type Action struct {
	Kind      ActionKind `json:"kind"`
	Game      GameKind   `json:"game"`
	Amount    int64      `json:"amount,omitempty"`
	CardIndex int        `json:"card_index,omitempty"`
}
