package domain

import (
	"math/rand"
	"testing"
)

func TestShuffleConservesCards(t *testing.T) {
	deck := NewWarDeck()
	before := make(map[Card]int)
	for _, c := range deck {
		before[c]++
	}

	Shuffle(deck, rand.New(rand.NewSource(7)))

	after := make(map[Card]int)
	for _, c := range deck {
		after[c]++
	}
	if len(after) != len(before) {
		t.Fatalf("distinct cards changed: %d -> %d", len(before), len(after))
	}
	for c, n := range before {
		if after[c] != n {
			t.Fatalf("card %s count changed: %d -> %d", c, n, after[c])
		}
	}
}

func TestShuffleDeterministicPerSeed(t *testing.T) {
	a := NewWarDeck()
	b := NewWarDeck()
	Shuffle(a, rand.New(rand.NewSource(42)))
	Shuffle(b, rand.New(rand.NewSource(42)))
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("same seed diverged at index %d: %s vs %s", i, a[i], b[i])
		}
	}

	c := NewWarDeck()
	Shuffle(c, rand.New(rand.NewSource(43)))
	same := true
	for i := range a {
		if a[i] != c[i] {
			same = false
			break
		}
	}
	if same {
		t.Fatalf("different seeds produced identical order")
	}
}

// TestShuffleSpreadsFirstCard is a coarse uniformity check: over many
// shuffles of a small deck every card should land on top a reasonable
// share of the time.
func TestShuffleSpreadsFirstCard(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	const trials = 4000

	counts := make(map[Rank]int)
	for i := 0; i < trials; i++ {
		deck := []Card{
			{Suit: Hearts, Rank: Two},
			{Suit: Hearts, Rank: Three},
			{Suit: Hearts, Rank: Four},
			{Suit: Hearts, Rank: Five},
		}
		Shuffle(deck, rng)
		counts[deck[0].Rank]++
	}

	// Expected 1000 each; allow a wide band to keep the test stable.
	for rank, n := range counts {
		if n < 800 || n > 1200 {
			t.Fatalf("rank %d on top %d times out of %d, outside [800,1200]", rank, n, trials)
		}
	}
	if len(counts) != 4 {
		t.Fatalf("only %d of 4 cards ever reached the top", len(counts))
	}
}

// TestShuffleUniformOverPermutations counts every ordering of a four-card
// deck over many trials. A shuffle biased anywhere, not just in the top
// position, skews the permutation counts and inflates the chi-square
// statistic against the uniform expectation.
func TestShuffleUniformOverPermutations(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	const trials = 24000
	const perms = 24

	counts := make(map[string]int)
	for i := 0; i < trials; i++ {
		deck := []Card{
			{Suit: Hearts, Rank: Two},
			{Suit: Hearts, Rank: Three},
			{Suit: Hearts, Rank: Four},
			{Suit: Hearts, Rank: Five},
		}
		Shuffle(deck, rng)
		key := ""
		for _, c := range deck {
			key += c.String()
		}
		counts[key]++
	}

	if len(counts) != perms {
		t.Fatalf("saw %d orderings, want all %d", len(counts), perms)
	}

	expected := float64(trials) / perms
	chi := 0.0
	for _, n := range counts {
		d := float64(n) - expected
		chi += d * d / expected
	}
	// 49.7 is the 99.9th percentile of chi-square at 23 degrees of freedom.
	if chi > 49.7 {
		t.Fatalf("chi-square = %.1f over %d trials, want at most 49.7", chi, trials)
	}
}

func TestDrawLeavesDeckOnShortage(t *testing.T) {
	deck := []Card{{Suit: Hearts, Rank: Two}, {Suit: Clubs, Rank: Three}}

	if _, err := Draw(&deck, 3); err != ErrEmptyDeck {
		t.Fatalf("err = %v, want ErrEmptyDeck", err)
	}
	if len(deck) != 2 {
		t.Fatalf("deck mutated on failed draw: len = %d, want 2", len(deck))
	}

	drawn, err := Draw(&deck, 2)
	if err != nil {
		t.Fatalf("draw error: %v", err)
	}
	if len(drawn) != 2 || len(deck) != 0 {
		t.Fatalf("drawn = %d, remaining = %d, want 2 and 0", len(drawn), len(deck))
	}
}

func TestDrawOne(t *testing.T) {
	deck := []Card{{Suit: Spades, Rank: Ace}, {Suit: Hearts, Rank: Two}}
	c, err := DrawOne(&deck)
	if err != nil {
		t.Fatalf("draw error: %v", err)
	}
	if c.Rank != Ace || len(deck) != 1 {
		t.Fatalf("drew %s leaving %d cards, want S14 leaving 1", c, len(deck))
	}

	deck = nil
	if _, err := DrawOne(&deck); err != ErrEmptyDeck {
		t.Fatalf("err = %v, want ErrEmptyDeck", err)
	}
}

func TestNewCryptoRandShuffles(t *testing.T) {
	deck := NewWarDeck()
	Shuffle(deck, NewCryptoRand())
	if len(deck) != WarDeckSize {
		t.Fatalf("deck size = %d, want %d", len(deck), WarDeckSize)
	}
}
