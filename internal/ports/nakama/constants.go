package nakama

const (
	// MatchNameBlackjack is the handler name registered for the
	// blackjack table match.
	MatchNameBlackjack = "blackjack"
	// MatchNameWar is the handler name registered for the New War Order
	// battle match.
	MatchNameWar = "newwarorder"

	// MatchLabelKey_OpenSeats is the label key for open seats in a match.
	MatchLabelKey_OpenSeats = "open"
	// MatchLabelKey_Game is the label key carrying the game kind.
	MatchLabelKey_Game = "game"

	// maxSeats is the number of players one table match hosts. Each
	// player still plays solo against the house.
	maxSeats = 4

	// RpcFindMatch is the RPC id clients call to find or create a table.
	RpcFindMatch = "find_match"
)
