package nakama

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"cardroom/internal/app"
	"cardroom/internal/domain"
	"cardroom/internal/ports"
)

func TestWireEventMapsOpcodes(t *testing.T) {
	ev := app.Event{Kind: app.EventBetPlaced, Payload: app.BetPlacedPayload{Game: app.GameWar, Amount: 10}}
	opCode, data, err := wireEvent(ev)
	if err != nil {
		t.Fatalf("wireEvent error: %v", err)
	}
	if opCode != OpBetPlaced {
		t.Fatalf("opcode = %d, want %d", opCode, OpBetPlaced)
	}

	var decoded app.BetPlacedPayload
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if decoded.Amount != 10 || decoded.Game != app.GameWar {
		t.Fatalf("payload = %+v", decoded)
	}
}

func TestWireEventRejectsUnknownKind(t *testing.T) {
	if _, _, err := wireEvent(app.Event{Kind: "mystery"}); err == nil {
		t.Fatalf("expected error for unknown kind")
	}
}

func TestEveryEventKindHasAnOpcode(t *testing.T) {
	kinds := []app.EventKind{
		app.EventBetPlaced, app.EventBlackjackDealt, app.EventCardDrawn,
		app.EventDealerRevealed, app.EventBlackjackEnded, app.EventWarDealt,
		app.EventRoundStarted, app.EventWarTriggered, app.EventWarDeckEmpty,
		app.EventRoundSettled, app.EventBonusRevealed, app.EventClockTick,
		app.EventMatchCompleted, app.EventPayoutIssued, app.EventGameReset,
	}
	seen := make(map[int64]app.EventKind)
	for _, kind := range kinds {
		opCode, ok := eventOpCodes[kind]
		if !ok {
			t.Fatalf("kind %q has no opcode", kind)
		}
		if prev, dup := seen[opCode]; dup {
			t.Fatalf("opcode %d shared by %q and %q", opCode, prev, kind)
		}
		seen[opCode] = kind
	}
}

func TestBuildSnapshotMessageMasksHiddenCards(t *testing.T) {
	snap := app.Snapshot{PlayerID: "p1", Game: app.GameWar, Cursor: 2}
	effects := []app.SequencedEvent{
		{Seq: 1, Event: app.Event{Kind: app.EventCardDrawn, Payload: app.CardDrawnPayload{
			Target: "player",
			Card:   app.NewCardView(domain.Card{Suit: domain.Hearts, Rank: domain.Nine}),
		}}},
	}

	data, err := buildSnapshotMessage(snap, effects, "tok")
	if err != nil {
		t.Fatalf("build error: %v", err)
	}

	var msg snapshotMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if msg.ResumeToken != "tok" || msg.Snapshot.Cursor != 2 {
		t.Fatalf("message = %+v", msg)
	}
	if len(msg.Effects) != 1 || msg.Effects[0].Seq != 1 || msg.Effects[0].OpCode != OpCardDrawn {
		t.Fatalf("effects = %+v", msg.Effects)
	}

	// The face-down card must serialize without identity.
	var payload app.CardDrawnPayload
	if err := json.Unmarshal(msg.Effects[0].Payload, &payload); err != nil {
		t.Fatalf("payload unmarshal error: %v", err)
	}
	if payload.Card.FaceUp || payload.Card.Suit != "" || payload.Card.Rank != 0 {
		t.Fatalf("hidden card leaked: %+v", payload.Card)
	}
}

func TestErrorCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{domain.ErrInvalidAction, 400},
		{ports.ErrInsufficientFunds, 402},
		{domain.ErrNotFound, 404},
		{domain.ErrGameInProgress, 409},
		{domain.ErrBetBelowMinimum, 422},
		{fmt.Errorf("wrapped: %w", domain.ErrInvalidAction), 400},
		{errors.New("boom"), 500},
	}
	for _, test := range tests {
		if got := errorCode(test.err); got != test.want {
			t.Fatalf("errorCode(%v) = %d, want %d", test.err, got, test.want)
		}
	}
}
