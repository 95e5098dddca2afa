package bot

import (
	"math/rand"
	"testing"

	"cardroom/internal/domain"
)

func card(r domain.Rank) domain.Card {
	return domain.Card{Suit: domain.Spades, Rank: r}
}

func TestRandomBrainStaysInRange(t *testing.T) {
	brain := &RandomBrain{}
	rng := rand.New(rand.NewSource(1))
	hand := []domain.Card{card(domain.Two), card(domain.Nine), card(domain.Ace)}

	for i := 0; i < 200; i++ {
		idx := brain.SelectCard(View{Hand: hand}, rng)
		if idx < 0 || idx >= len(hand) {
			t.Fatalf("index %d out of range", idx)
		}
	}

	if idx := brain.SelectCard(View{}, rng); idx != -1 {
		t.Fatalf("empty hand index = %d, want -1", idx)
	}
}

func TestSharpBrainDumpsLowIntoTwistSeven(t *testing.T) {
	brain := &SharpBrain{}
	rng := rand.New(rand.NewSource(1))
	hand := []domain.Card{card(domain.King), card(domain.Two), card(domain.Nine)}

	idx := brain.SelectCard(View{Hand: hand, PlayerCard: card(domain.Seven)}, rng)
	if idx != 1 {
		t.Fatalf("index = %d, want the lowest card against a twist seven", idx)
	}
}

func TestSharpBrainSpendsStrengthWhenTrailing(t *testing.T) {
	brain := &SharpBrain{}
	rng := rand.New(rand.NewSource(1))
	hand := []domain.Card{card(domain.Four), card(domain.Ace), card(domain.Nine)}

	view := View{Hand: hand, PlayerCard: card(domain.Ten), ComputerScore: 1, PlayerScore: 3}
	if idx := brain.SelectCard(view, rng); idx != 1 {
		t.Fatalf("index = %d, want the highest card while trailing", idx)
	}

	view = View{Hand: hand, PlayerCard: card(domain.Ten), ComputerScore: 3, PlayerScore: 1}
	if idx := brain.SelectCard(view, rng); idx != 0 {
		t.Fatalf("index = %d, want the lowest card while ahead", idx)
	}
}

func TestSharpBrainEmptyHand(t *testing.T) {
	brain := &SharpBrain{}
	if idx := brain.SelectCard(View{}, rand.New(rand.NewSource(1))); idx != -1 {
		t.Fatalf("empty hand index = %d, want -1", idx)
	}
}

func TestNewBrainLevels(t *testing.T) {
	if _, err := NewBrain(LevelRandom); err != nil {
		t.Fatalf("random level error: %v", err)
	}
	if _, err := NewBrain(LevelSharp); err != nil {
		t.Fatalf("sharp level error: %v", err)
	}
	if _, err := NewBrain(Level(99)); err == nil {
		t.Fatalf("expected unknown level error")
	}
}
