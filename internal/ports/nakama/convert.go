package nakama

import (
	"encoding/json"
	"errors"
	"fmt"

	"cardroom/internal/app"
	"cardroom/internal/domain"
	"cardroom/internal/ports"
)

// wireEvent marshals an engine effect into its opcode and JSON payload.
func wireEvent(ev app.Event) (int64, []byte, error) {
	opCode, ok := eventOpCodes[ev.Kind]
	if !ok {
		return 0, nil, fmt.Errorf("no opcode for event kind %q", ev.Kind)
	}
	data, err := json.Marshal(ev.Payload)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to marshal %s payload: %w", ev.Kind, err)
	}
	return opCode, data, nil
}

// wireEffect is one replayed effect inside a snapshot message.
type wireEffect struct {
	Seq     uint64          `json:"seq"`
	OpCode  int64           `json:"op_code"`
	Payload json.RawMessage `json:"payload"`
}

// snapshotMessage is the private message a player receives on join or
// resume: the current state, the effects past their cursor and a fresh
// resume token covering everything delivered so far.
type snapshotMessage struct {
	Snapshot    app.Snapshot `json:"snapshot"`
	Effects     []wireEffect `json:"effects"`
	ResumeToken string       `json:"resume_token,omitempty"`
}

func buildSnapshotMessage(snap app.Snapshot, effects []app.SequencedEvent, token string) ([]byte, error) {
	msg := snapshotMessage{Snapshot: snap, ResumeToken: token}
	for _, se := range effects {
		opCode, data, err := wireEvent(se.Event)
		if err != nil {
			return nil, err
		}
		msg.Effects = append(msg.Effects, wireEffect{Seq: se.Seq, OpCode: opCode, Payload: data})
	}
	return json.Marshal(msg)
}

// GameErrorPayload is sent privately on OpGameError when an action is
// refused.
type GameErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// errorCode maps engine errors to stable wire codes.
func errorCode(err error) int {
	switch {
	case errors.Is(err, ports.ErrInsufficientFunds):
		return 402
	case errors.Is(err, domain.ErrNotFound):
		return 404
	case errors.Is(err, domain.ErrGameInProgress):
		return 409
	case errors.Is(err, domain.ErrBetBelowMinimum):
		return 422
	case errors.Is(err, domain.ErrInvalidAction):
		return 400
	default:
		return 500
	}
}
