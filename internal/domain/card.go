package domain

import "fmt"

// Suit identifies a card suit. Jokers carry their own suit so a war deck
// card is fully described by (Suit, Rank) like any other card.
type Suit int32

const (
	Hearts Suit = iota
	Diamonds
	Clubs
	Spades
	JokerSuit
)

var suitNames = map[Suit]string{
	Hearts:    "H",
	Diamonds:  "D",
	Clubs:     "C",
	Spades:    "S",
	JokerSuit: "J",
}

// String returns the single-letter suit code used on the wire.
func (s Suit) String() string {
	if name, ok := suitNames[s]; ok {
		return name
	}
	return "?"
}

// Rank is the card rank. Numeric ranks map to themselves, then
// J=11, Q=12, K=13, A=14 and Joker=15. The same ordering doubles as the
// war comparison value, so no separate value table is needed.
type Rank int32

const (
	Two   Rank = 2
	Three Rank = 3
	Four  Rank = 4
	Five  Rank = 5
	Six   Rank = 6
	Seven Rank = 7
	Eight Rank = 8
	Nine  Rank = 9
	Ten   Rank = 10
	Jack  Rank = 11
	Queen Rank = 12
	King  Rank = 13
	Ace   Rank = 14
	Joker Rank = 15
)

// Card is an immutable playing card. FaceUp is a reveal flag owned by
// whichever hand or pile currently holds the card; deck cards ignore it.
type Card struct {
	Suit   Suit
	Rank   Rank
	FaceUp bool
}

// IsJoker reports whether the card is one of the war deck's three jokers.
func (c Card) IsJoker() bool {
	return c.Rank == Joker
}

// WarValue returns the comparison value for the war battle game.
// Jokers sit above the ace at 15.
func (c Card) WarValue() int {
	return int(c.Rank)
}

// String renders a card like "H7", "SA" or "Joker" for logs.
func (c Card) String() string {
	if c.IsJoker() {
		return "Joker"
	}
	return fmt.Sprintf("%s%d", c.Suit, c.Rank)
}

// FaceDown returns a copy of the card with the reveal flag cleared.
func (c Card) FaceDown() Card {
	c.FaceUp = false
	return c
}

// Revealed returns a copy of the card with the reveal flag set.
func (c Card) Revealed() Card {
	c.FaceUp = true
	return c
}

// standardSuits is every non-joker suit in deal order.
var standardSuits = []Suit{Hearts, Diamonds, Clubs, Spades}

// NewBlackjackShoe builds numDecks standard 52-card decks concatenated.
// numDecks below 1 is clamped to 1. Cards come out sorted; callers shuffle.
func NewBlackjackShoe(numDecks int) []Card {
	if numDecks < 1 {
		numDecks = 1
	}
	shoe := make([]Card, 0, numDecks*52)
	for d := 0; d < numDecks; d++ {
		for _, s := range standardSuits {
			for r := Two; r <= Ace; r++ {
				shoe = append(shoe, Card{Suit: s, Rank: r})
			}
		}
	}
	return shoe
}

// WarDeckSize is one standard deck plus three jokers.
const WarDeckSize = 55

// NewWarDeck builds the 55-card deck used by the war battle game.
func NewWarDeck() []Card {
	deck := make([]Card, 0, WarDeckSize)
	for _, s := range standardSuits {
		for r := Two; r <= Ace; r++ {
			deck = append(deck, Card{Suit: s, Rank: r})
		}
	}
	for i := 0; i < 3; i++ {
		deck = append(deck, Card{Suit: JokerSuit, Rank: Joker})
	}
	return deck
}
