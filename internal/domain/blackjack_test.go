package domain

import "testing"

func TestSettleOutcome(t *testing.T) {
	tests := []struct {
		name   string
		player []Card
		dealer []Card
		hit21  bool
		want   BlackjackOutcome
	}{
		{
			name:   "PlayerBustLosesEvenIfDealerBusts",
			player: []Card{up(Spades, King), up(Hearts, Queen), up(Clubs, Five)},
			dealer: []Card{up(Spades, Ten), up(Hearts, Nine), up(Clubs, Eight)},
			want:   OutcomeHouseWin,
		},
		{
			name:   "HitTwentyOneWins",
			player: []Card{up(Spades, King), up(Hearts, Five), up(Clubs, Six)},
			dealer: []Card{up(Spades, Ten), up(Hearts, Nine)},
			hit21:  true,
			want:   OutcomePlayerWin,
		},
		{
			name:   "HitTwentyOneAgainstDealerTwentyOnePushes",
			player: []Card{up(Spades, King), up(Hearts, Five), up(Clubs, Six)},
			dealer: []Card{up(Spades, Ace), up(Hearts, King)},
			hit21:  true,
			want:   OutcomePush,
		},
		{
			name:   "DealerBustPlayerWins",
			player: []Card{up(Spades, Ten), up(Hearts, Eight)},
			dealer: []Card{up(Spades, King), up(Hearts, Queen), up(Clubs, Five)},
			want:   OutcomePlayerWin,
		},
		{
			name:   "HigherScoreWins",
			player: []Card{up(Spades, Ten), up(Hearts, Nine)},
			dealer: []Card{up(Spades, Ten), up(Hearts, Eight)},
			want:   OutcomePlayerWin,
		},
		{
			name:   "StandTieGoesToHouse",
			player: []Card{up(Spades, Ten), up(Hearts, Nine)},
			dealer: []Card{up(Clubs, Ten), up(Diamonds, Nine)},
			want:   OutcomeHouseWin,
		},
		{
			name:   "LowerScoreLoses",
			player: []Card{up(Spades, Ten), up(Hearts, Six)},
			dealer: []Card{up(Clubs, Ten), up(Diamonds, Nine)},
			want:   OutcomeHouseWin,
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			g := NewBlackjackGame("p1")
			g.PlayerHand = test.player
			g.DealerHand = test.dealer

			if got := g.SettleOutcome(test.hit21); got != test.want {
				t.Fatalf("SettleOutcome() = %q, want %q", got, test.want)
			}
			if g.State != BlackjackEnded {
				t.Fatalf("state = %q, want %q", g.State, BlackjackEnded)
			}
		})
	}
}

func TestRevealDealer(t *testing.T) {
	g := NewBlackjackGame("p1")
	g.DealerHand = []Card{up(Spades, Ten), down(Hearts, Nine)}

	if _, ok := g.HoleCard(); !ok {
		t.Fatalf("expected a hidden hole card")
	}
	if g.DealerScore() != 10 {
		t.Fatalf("pre-reveal dealer score = %d, want 10", g.DealerScore())
	}

	card, ok := g.RevealDealer()
	if !ok || card.Rank != Nine || !card.FaceUp {
		t.Fatalf("RevealDealer() = %v, %t, want revealed H9", card, ok)
	}
	if g.DealerScore() != 19 {
		t.Fatalf("post-reveal dealer score = %d, want 19", g.DealerScore())
	}
	if _, ok := g.RevealDealer(); ok {
		t.Fatalf("second reveal should find nothing")
	}
}

func TestBlackjackTerminalStates(t *testing.T) {
	g := NewBlackjackGame("p1")
	if !g.Terminal() {
		t.Fatalf("waiting state should be terminal for betting")
	}
	g.State = BlackjackPlayerTurn
	if g.Terminal() {
		t.Fatalf("player turn is not terminal")
	}
	g.State = BlackjackError
	if !g.Terminal() {
		t.Fatalf("error state should accept a reset")
	}
}

func TestBlackjackCardConservation(t *testing.T) {
	g := NewBlackjackGame("p1")
	g.SetDeck(NewBlackjackShoe(1))
	if g.InitialCards() != 52 {
		t.Fatalf("initial cards = %d, want 52", g.InitialCards())
	}

	cards, err := Draw(&g.Deck, 4)
	if err != nil {
		t.Fatalf("draw error: %v", err)
	}
	g.PlayerHand = cards[:2]
	g.DealerHand = cards[2:]

	if g.CardCount() != g.InitialCards() {
		t.Fatalf("card count = %d, want %d", g.CardCount(), g.InitialCards())
	}
}
