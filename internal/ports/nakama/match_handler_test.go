package nakama

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"cardroom/internal/app"
	"cardroom/internal/domain"
	"cardroom/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

// noopLogger implements runtime.Logger for tests that only need to satisfy the interface.
type noopLogger struct{}

func (noopLogger) Debug(string, ...interface{}) {}
func (noopLogger) Info(string, ...interface{})  {}
func (noopLogger) Warn(string, ...interface{})  {}
func (noopLogger) Error(string, ...interface{}) {}
func (noopLogger) WithField(string, interface{}) runtime.Logger {
	return noopLogger{}
}
func (noopLogger) WithFields(map[string]interface{}) runtime.Logger {
	return noopLogger{}
}
func (noopLogger) Fields() map[string]interface{} {
	return nil
}

type sentMessage struct {
	opCode     int64
	data       []byte
	recipients int
}

// mockDispatcher records match dispatcher calls for assertions.
type mockDispatcher struct {
	messages     []sentMessage
	labelUpdates int
}

func (md *mockDispatcher) BroadcastMessage(opCode int64, data []byte, presences []runtime.Presence, sender runtime.Presence, reliable bool) error {
	md.messages = append(md.messages, sentMessage{
		opCode:     opCode,
		data:       append([]byte(nil), data...),
		recipients: len(presences),
	})
	return nil
}

func (md *mockDispatcher) BroadcastMessageDeferred(opCode int64, data []byte, presences []runtime.Presence, sender runtime.Presence, reliable bool) error {
	return nil
}

func (md *mockDispatcher) MatchKick(presences []runtime.Presence) error {
	return nil
}

func (md *mockDispatcher) MatchLabelUpdate(label string) error {
	md.labelUpdates++
	return nil
}

func (md *mockDispatcher) opCodes() []int64 {
	out := make([]int64, len(md.messages))
	for i, m := range md.messages {
		out[i] = m.opCode
	}
	return out
}

// testPresence implements runtime.Presence for a connected user.
type testPresence struct {
	id string
}

func (p testPresence) GetUserId() string                 { return p.id }
func (p testPresence) GetSessionId() string              { return "session-" + p.id }
func (p testPresence) GetNodeId() string                 { return "node" }
func (p testPresence) GetHidden() bool                   { return false }
func (p testPresence) GetPersistence() bool              { return true }
func (p testPresence) GetUsername() string               { return p.id }
func (p testPresence) GetStatus() string                 { return "" }
func (p testPresence) GetReason() runtime.PresenceReason { return runtime.PresenceReasonUnknown }

// testMatchData is one inbound client message.
type testMatchData struct {
	testPresence
	opCode int64
	data   []byte
}

func (d testMatchData) GetOpCode() int64      { return d.opCode }
func (d testMatchData) GetData() []byte       { return d.data }
func (d testMatchData) GetReliable() bool     { return true }
func (d testMatchData) GetReceiveTime() int64 { return 0 }

// mockLedger is the in-memory wallet used by handler tests.
type mockLedger struct {
	balances      map[string]int64
	refuseCredits bool
}

func (m *mockLedger) Balance(ctx context.Context, playerID string) (int64, error) {
	return m.balances[playerID], nil
}

func (m *mockLedger) Debit(ctx context.Context, playerID string, amount int64, idemKey string) (ports.TxRef, error) {
	if m.balances[playerID] < amount {
		return "", ports.ErrInsufficientFunds
	}
	m.balances[playerID] -= amount
	return ports.TxRef(idemKey), nil
}

func (m *mockLedger) Credit(ctx context.Context, playerID string, amount int64, idemKey string) (ports.TxRef, error) {
	if m.refuseCredits {
		return "", errors.New("ledger unavailable")
	}
	m.balances[playerID] += amount
	return ports.TxRef(idemKey), nil
}

func testState(game app.GameKind, balances map[string]int64) *MatchState {
	return testStateWithLedger(game, &mockLedger{balances: balances})
}

func testStateWithLedger(game app.GameKind, ledger *mockLedger) *MatchState {
	svc := app.NewService(rand.New(rand.NewSource(1)), nil)
	return &MatchState{
		Game:           game,
		Presences:      make(map[string]runtime.Presence),
		PendingCursors: make(map[string]uint64),
		Registry:       app.NewRegistry(svc, ledger),
		Resume:         app.NewResumeTokenService("test-secret", "cardroom"),
	}
}

func TestMatchJoinAttemptRejectsFullTable(t *testing.T) {
	handler := &matchHandler{game: app.GameBlackjack}
	state := testState(app.GameBlackjack, nil)
	for i := 0; i < maxSeats; i++ {
		p := testPresence{id: string(rune('a' + i))}
		state.Presences[p.id] = p
	}

	_, allowed, reason := handler.MatchJoinAttempt(context.Background(), noopLogger{}, nil, nil, &mockDispatcher{}, 0, state, testPresence{id: "late"}, nil)
	if allowed {
		t.Fatalf("expected full table rejection")
	}
	if reason == "" {
		t.Fatalf("expected a rejection reason")
	}
}

func TestMatchJoinAttemptVerifiesResumeToken(t *testing.T) {
	handler := &matchHandler{game: app.GameWar}
	state := testState(app.GameWar, nil)

	_, allowed, _ := handler.MatchJoinAttempt(context.Background(), noopLogger{}, nil, nil, &mockDispatcher{}, 0, state, testPresence{id: "p1"}, map[string]string{"resume_token": "garbage"})
	if allowed {
		t.Fatalf("expected invalid token rejection")
	}

	token, err := state.Resume.Generate("p1", app.GameWar, 4)
	if err != nil {
		t.Fatalf("generate error: %v", err)
	}
	_, allowed, reason := handler.MatchJoinAttempt(context.Background(), noopLogger{}, nil, nil, &mockDispatcher{}, 0, state, testPresence{id: "p1"}, map[string]string{"resume_token": token})
	if !allowed {
		t.Fatalf("valid token rejected: %s", reason)
	}
	if state.PendingCursors["p1"] != 4 {
		t.Fatalf("pending cursor = %d, want 4", state.PendingCursors["p1"])
	}

	// A token minted for someone else is refused.
	_, allowed, _ = handler.MatchJoinAttempt(context.Background(), noopLogger{}, nil, nil, &mockDispatcher{}, 0, state, testPresence{id: "p2"}, map[string]string{"resume_token": token})
	if allowed {
		t.Fatalf("expected subject mismatch rejection")
	}
}

func TestMatchJoinSendsPrivateSnapshot(t *testing.T) {
	handler := &matchHandler{game: app.GameWar}
	state := testState(app.GameWar, nil)
	dispatcher := &mockDispatcher{}

	handler.MatchJoin(context.Background(), noopLogger{}, nil, nil, dispatcher, 0, state, []runtime.Presence{testPresence{id: "p1"}})

	if len(dispatcher.messages) != 1 || dispatcher.messages[0].opCode != OpSnapshot {
		t.Fatalf("messages = %v, want one snapshot", dispatcher.opCodes())
	}
	if dispatcher.messages[0].recipients != 1 {
		t.Fatalf("snapshot recipients = %d, want 1", dispatcher.messages[0].recipients)
	}
	if dispatcher.labelUpdates != 1 {
		t.Fatalf("label updates = %d, want 1", dispatcher.labelUpdates)
	}

	var msg snapshotMessage
	if err := json.Unmarshal(dispatcher.messages[0].data, &msg); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if msg.Snapshot.Game != app.GameWar || msg.Snapshot.PlayerID != "p1" {
		t.Fatalf("snapshot = %+v", msg.Snapshot)
	}
	if msg.ResumeToken == "" {
		t.Fatalf("expected a resume token")
	}
	// No session exists yet, so the snapshot carries no game state.
	if msg.Snapshot.War != nil || msg.Snapshot.Cursor != 0 {
		t.Fatalf("fresh snapshot = %+v, want empty state", msg.Snapshot)
	}
}

func TestHandleMessagePlaceBetBroadcastsEvents(t *testing.T) {
	handler := &matchHandler{game: app.GameBlackjack}
	state := testState(app.GameBlackjack, map[string]int64{"p1": 1000})
	state.Presences["p1"] = testPresence{id: "p1"}
	dispatcher := &mockDispatcher{}

	msg := testMatchData{testPresence: testPresence{id: "p1"}, opCode: OpPlaceBet, data: []byte(`{"amount":10}`)}
	handler.handleMessage(context.Background(), state, dispatcher, noopLogger{}, msg)

	got := dispatcher.opCodes()
	if len(got) != 2 || got[0] != OpBetPlaced || got[1] != OpBlackjackDealt {
		t.Fatalf("opcodes = %v, want [%d %d]", got, OpBetPlaced, OpBlackjackDealt)
	}
	for _, m := range dispatcher.messages {
		if m.recipients != 1 {
			t.Fatalf("event recipients = %d, want private delivery", m.recipients)
		}
	}
}

func TestHandleMessageRefusalSendsError(t *testing.T) {
	handler := &matchHandler{game: app.GameBlackjack}
	state := testState(app.GameBlackjack, map[string]int64{"p1": 5})
	state.Presences["p1"] = testPresence{id: "p1"}
	dispatcher := &mockDispatcher{}

	msg := testMatchData{testPresence: testPresence{id: "p1"}, opCode: OpPlaceBet, data: []byte(`{"amount":10}`)}
	handler.handleMessage(context.Background(), state, dispatcher, noopLogger{}, msg)

	if len(dispatcher.messages) != 1 || dispatcher.messages[0].opCode != OpGameError {
		t.Fatalf("opcodes = %v, want one game error", dispatcher.opCodes())
	}
	var payload GameErrorPayload
	if err := json.Unmarshal(dispatcher.messages[0].data, &payload); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if payload.Code != 402 {
		t.Fatalf("code = %d, want 402", payload.Code)
	}
}

func TestHandleMessageMalformedPayload(t *testing.T) {
	handler := &matchHandler{game: app.GameWar}
	state := testState(app.GameWar, map[string]int64{"p1": 1000})
	state.Presences["p1"] = testPresence{id: "p1"}
	dispatcher := &mockDispatcher{}

	msg := testMatchData{testPresence: testPresence{id: "p1"}, opCode: OpSelectCard, data: []byte(`{`)}
	handler.handleMessage(context.Background(), state, dispatcher, noopLogger{}, msg)

	if len(dispatcher.messages) != 1 || dispatcher.messages[0].opCode != OpGameError {
		t.Fatalf("opcodes = %v, want one game error", dispatcher.opCodes())
	}
}

func TestHandleMessageBroadcastsEventsBeforeErrorReply(t *testing.T) {
	handler := &matchHandler{game: app.GameWar}
	ledger := &mockLedger{balances: map[string]int64{"p1": 1000}, refuseCredits: true}
	state := testStateWithLedger(app.GameWar, ledger)
	state.Presences["p1"] = testPresence{id: "p1"}
	dispatcher := &mockDispatcher{}

	bet := testMatchData{testPresence: testPresence{id: "p1"}, opCode: OpPlaceBet, data: []byte(`{"amount":10}`)}
	handler.handleMessage(context.Background(), state, dispatcher, noopLogger{}, bet)

	for i := 0; i < domain.PyramidSize; i++ {
		msg := testMatchData{
			testPresence: testPresence{id: "p1"},
			opCode:       OpSelectCard,
			data:         []byte(fmt.Sprintf(`{"card_index":%d}`, i)),
		}
		handler.handleMessage(context.Background(), state, dispatcher, noopLogger{}, msg)
	}

	// The final round's effects reach the client even when the settlement
	// credit was refused; the error reply never replaces them.
	codes := dispatcher.opCodes()
	completedAt, errAt := -1, -1
	for i, c := range codes {
		if c == OpMatchCompleted {
			completedAt = i
		}
		if c == OpGameError && errAt == -1 {
			errAt = i
		}
	}
	if completedAt == -1 {
		t.Fatalf("opcodes = %v, want match_completed broadcast", codes)
	}
	if errAt != -1 && errAt < completedAt {
		t.Fatalf("error reply at %d preceded the final effects at %d: %v", errAt, completedAt, codes)
	}
}

func TestBroadcastEventDropsDisconnectedRecipients(t *testing.T) {
	handler := &matchHandler{game: app.GameWar}
	state := testState(app.GameWar, nil)
	dispatcher := &mockDispatcher{}

	ev := app.Event{
		Kind:       app.EventBetPlaced,
		Payload:    app.BetPlacedPayload{Game: app.GameWar, Amount: 10},
		Recipients: []string{"offline"},
	}
	handler.broadcastEvent(state, dispatcher, noopLogger{}, ev)

	if len(dispatcher.messages) != 0 {
		t.Fatalf("messages = %v, want none for a disconnected recipient", dispatcher.opCodes())
	}
}

func TestMatchLeaveTerminatesEmptyTable(t *testing.T) {
	handler := &matchHandler{game: app.GameBlackjack}
	state := testState(app.GameBlackjack, nil)
	state.Presences["p1"] = testPresence{id: "p1"}

	result := handler.MatchLeave(context.Background(), noopLogger{}, nil, nil, &mockDispatcher{}, 0, state, []runtime.Presence{testPresence{id: "p1"}})
	if result != nil {
		t.Fatalf("expected nil state to terminate the empty table")
	}
}

func TestMatchLabelMarshal(t *testing.T) {
	data, err := json.Marshal(matchLabel{Open: 3, Game: "newwarorder"})
	if err != nil {
		t.Fatalf("marshal error: %v", err)
	}
	want := `{"open":3,"game":"newwarorder"}`
	if string(data) != want {
		t.Fatalf("label = %s, want %s", data, want)
	}
}
