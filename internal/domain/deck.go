package domain

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand"
)

// Shuffle permutes cards in place with Fisher-Yates driven by the given rng.
// Callers own the choice of source: production code passes NewCryptoRand,
// tests pass a seeded source for deterministic deals.
func Shuffle(cards []Card, rng *rand.Rand) {
	rng.Shuffle(len(cards), func(i, j int) { cards[i], cards[j] = cards[j], cards[i] })
}

// Draw removes n cards from the front of the deck. The deck is left
// untouched when fewer than n cards remain.
func Draw(deck *[]Card, n int) ([]Card, error) {
	if n > len(*deck) {
		return nil, ErrEmptyDeck
	}
	drawn := make([]Card, n)
	copy(drawn, (*deck)[:n])
	*deck = (*deck)[n:]
	return drawn, nil
}

// DrawOne removes the top card of the deck.
func DrawOne(deck *[]Card) (Card, error) {
	cards, err := Draw(deck, 1)
	if err != nil {
		return Card{}, err
	}
	return cards[0], nil
}

// cryptoSource adapts crypto/rand to math/rand's Source64 so the standard
// Fisher-Yates shuffle runs on unpredictable bytes. A wagering deck must
// not be shuffled from a seedable generator.
type cryptoSource struct{}

func (cryptoSource) Uint64() uint64 {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		// The platform CSPRNG failing is not recoverable mid-shuffle.
		panic("cardroom: crypto/rand read failed: " + err.Error())
	}
	return binary.LittleEndian.Uint64(b[:])
}

func (s cryptoSource) Int63() int64 {
	return int64(s.Uint64() >> 1)
}

func (cryptoSource) Seed(int64) {}

// NewCryptoRand returns a *rand.Rand backed by the platform CSPRNG.
func NewCryptoRand() *rand.Rand {
	return rand.New(cryptoSource{})
}
