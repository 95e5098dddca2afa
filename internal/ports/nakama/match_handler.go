package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"sync"

	"cardroom/internal/app"
	"cardroom/internal/bot"
	"cardroom/internal/config"
	"cardroom/internal/domain"

	"github.com/heroiclabs/nakama-common/runtime"
)

// sharedRegistries holds one session registry per game kind for the whole
// runtime node. Every table match of a kind shares it, which is what
// enforces a single live instance per player across tables.
var sharedRegistries = struct {
	mu sync.Mutex
	m  map[app.GameKind]*app.Registry
}{m: make(map[app.GameKind]*app.Registry)}

func sharedRegistry(game app.GameKind, nk runtime.NakamaModule, brain bot.Brain) *app.Registry {
	sharedRegistries.mu.Lock()
	defer sharedRegistries.mu.Unlock()
	if r, ok := sharedRegistries.m[game]; ok {
		return r
	}
	r := app.NewRegistry(app.NewService(nil, brain), NewNakamaLedgerAdapter(nk))
	sharedRegistries.m[game] = r
	return r
}

// MatchState holds the authoritative runtime state for one casino table.
type MatchState struct {
	Game           app.GameKind                `json:"game"`
	Tick           int64                       `json:"tick"`
	Presences      map[string]runtime.Presence `json:"-"` // UserId -> Presence for targeted messaging
	PendingCursors map[string]uint64           `json:"-"` // verified resume cursors awaiting MatchJoin
	Registry       *app.Registry               `json:"-"`
	Resume         *app.ResumeTokenService     `json:"-"`
}

func (ms *MatchState) GetOpenSeatsCount() int {
	return maxSeats - len(ms.Presences)
}

// matchLabel is the listing label used by the find-match RPC.
type matchLabel struct {
	Open int    `json:"open"`
	Game string `json:"game"`
}

// NewMatch returns the factory function registered with Nakama for the
// given game kind.
func NewMatch(game app.GameKind) func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule) (runtime.Match, error) {
	return func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule) (runtime.Match, error) {
		return &matchHandler{game: game}, nil
	}
}

type matchHandler struct {
	game app.GameKind
}

// MatchInit is called when the match is created.
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	logger.Debug("MatchInit: Initializing %s table.", mh.game)

	// Load table configuration
	if err := config.LoadGameConfig("data/game_config.json"); err != nil {
		logger.Warn("MatchInit: Could not load game config: %v", err)
	}

	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)

	level := bot.LevelRandom
	if env["cardroom_bot_level"] == "sharp" {
		level = bot.LevelSharp
	}
	brain, err := bot.NewBrain(level)
	if err != nil {
		logger.Error("MatchInit: Failed to create opponent brain: %v", err)
		return nil, 0, ""
	}

	var resume *app.ResumeTokenService
	if secret := env["cardroom_resume_secret"]; secret != "" {
		resume = app.NewResumeTokenService(secret, "cardroom")
	} else {
		logger.Warn("MatchInit: cardroom_resume_secret not set; resume tokens disabled.")
	}

	state := &MatchState{
		Game:           mh.game,
		Presences:      make(map[string]runtime.Presence),
		PendingCursors: make(map[string]uint64),
		Registry:       sharedRegistry(mh.game, nk, brain),
		Resume:         resume,
	}

	labelBytes, err := json.Marshal(matchLabel{Open: state.GetOpenSeatsCount(), Game: string(mh.game)})
	if err != nil {
		logger.Error("MatchInit: Failed to marshal label: %v", err)
		return nil, 0, ""
	}

	tickRate := 1 // war clocks count in whole seconds
	return state, tickRate, string(labelBytes)
}

// MatchJoinAttempt admits a player while there is a free seat. A resume
// token offered in the join metadata is verified here so a forged or
// stale token rejects the join before any state is touched.
func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, false, "state not found"
	}

	if matchState.GetOpenSeatsCount() <= 0 {
		return state, false, "Match full"
	}

	if token := metadata["resume_token"]; token != "" {
		if matchState.Resume == nil {
			return state, false, "resume not available"
		}
		cursor, err := matchState.Resume.Verify(token, presence.GetUserId(), matchState.Game)
		if err != nil {
			logger.Warn("MatchJoinAttempt: Rejecting invalid resume token from %s: %v", presence.GetUserId(), err)
			return state, false, "invalid resume token"
		}
		matchState.PendingCursors[presence.GetUserId()] = cursor
	}

	return matchState, true, ""
}

// MatchJoin seats the players and sends each a private snapshot: current
// state, the effects past their resume cursor and a fresh token.
func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}

	for _, p := range presences {
		matchState.Presences[p.GetUserId()] = p
		cursor := matchState.PendingCursors[p.GetUserId()]
		delete(matchState.PendingCursors, p.GetUserId())
		mh.sendSnapshot(matchState, dispatcher, logger, p, cursor)
	}

	mh.updateLabel(matchState, dispatcher, logger)
	return matchState
}

// MatchLeave frees the seat. The player's game instance stays live in the
// registry; the clock keeps running and they may rejoin with their token.
func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}

	for _, p := range presences {
		delete(matchState.Presences, p.GetUserId())
		delete(matchState.PendingCursors, p.GetUserId())
	}

	if len(matchState.Presences) == 0 {
		logger.Info("MatchLeave: Terminating empty table.")
		return nil
	}

	mh.updateLabel(matchState, dispatcher, logger)
	return matchState
}

func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state
	}

	matchState.Tick = tick

	for _, msg := range messages {
		mh.handleMessage(ctx, matchState, dispatcher, logger, msg)
	}

	mh.tickClocks(ctx, matchState, dispatcher, logger)

	return matchState
}

// handleMessage decodes one client message into an engine action, applies
// it and fans out the resulting effects.
func (mh *matchHandler) handleMessage(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()

	act := app.Action{Game: state.Game}
	switch msg.GetOpCode() {
	case OpPlaceBet:
		var req placeBetRequest
		if err := json.Unmarshal(msg.GetData(), &req); err != nil {
			logger.Warn("MatchLoop: Invalid place_bet payload from %s: %v", senderID, err)
			mh.sendError(state, dispatcher, logger, senderID, 400, "invalid payload")
			return
		}
		act.Kind = app.ActionPlaceBet
		act.Amount = req.Amount
	case OpHit:
		act.Kind = app.ActionHit
	case OpStand:
		act.Kind = app.ActionStand
	case OpSelectCard:
		var req selectCardRequest
		if err := json.Unmarshal(msg.GetData(), &req); err != nil {
			logger.Warn("MatchLoop: Invalid select_card payload from %s: %v", senderID, err)
			mh.sendError(state, dispatcher, logger, senderID, 400, "invalid payload")
			return
		}
		act.Kind = app.ActionSelectCard
		act.CardIndex = req.CardIndex
	case OpReset:
		act.Kind = app.ActionReset
	default:
		logger.Warn("MatchLoop: Unknown opcode received: %d", msg.GetOpCode())
		return
	}

	// Effects produced before a failing step (such as a refused settlement
	// credit) are already in the session log and must still reach the table.
	_, events, err := state.Registry.Apply(ctx, senderID, act)
	for _, ev := range events {
		mh.broadcastEvent(state, dispatcher, logger, ev)
	}
	if err != nil {
		logger.Warn("MatchLoop: Action %s from %s refused: %v", act.Kind, senderID, err)
		mh.sendError(state, dispatcher, logger, senderID, errorCode(err), err.Error())
	}
}

// tickClocks advances the war clocks of the players seated at this table
// and retries any of their pending settlement credits.
func (mh *matchHandler) tickClocks(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	if len(state.Presences) == 0 {
		return
	}
	ids := make([]string, 0, len(state.Presences))
	for id := range state.Presences {
		ids = append(ids, id)
	}
	for _, events := range state.Registry.TickPresences(ctx, ids) {
		for _, ev := range events {
			mh.broadcastEvent(state, dispatcher, logger, ev)
		}
	}
}

type placeBetRequest struct {
	Amount int64 `json:"amount"`
}

type selectCardRequest struct {
	CardIndex int `json:"card_index"`
}

// sendSnapshot delivers the private join/resume message to one player.
func (mh *matchHandler) sendSnapshot(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, p runtime.Presence, cursor uint64) {
	playerID := p.GetUserId()

	snap, effects, err := state.Registry.Project(playerID, state.Game, cursor)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		logger.Error("MatchJoin: Failed to project session for %s: %v", playerID, err)
		return
	}
	if errors.Is(err, domain.ErrNotFound) {
		snap = app.Snapshot{PlayerID: playerID, Game: state.Game}
		effects = nil
	}

	token := ""
	if state.Resume != nil {
		token, err = state.Resume.Generate(playerID, state.Game, snap.Cursor)
		if err != nil {
			logger.Warn("MatchJoin: Failed to mint resume token for %s: %v", playerID, err)
			token = ""
		}
	}

	data, err := buildSnapshotMessage(snap, effects, token)
	if err != nil {
		logger.Error("MatchJoin: Failed to build snapshot for %s: %v", playerID, err)
		return
	}

	dispatcher.BroadcastMessage(OpSnapshot, data, []runtime.Presence{p}, nil, true)
}

// broadcastEvent converts one engine effect to its wire form and delivers
// it. Effects with intended recipients who are not connected are dropped
// rather than leaked to the table.
func (mh *matchHandler) broadcastEvent(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, ev app.Event) {
	opCode, data, err := wireEvent(ev)
	if err != nil {
		logger.Error("Failed to encode event %v: %v", ev.Kind, err)
		return
	}

	var recipients []runtime.Presence
	if len(ev.Recipients) > 0 {
		for _, uid := range ev.Recipients {
			if p, ok := state.Presences[uid]; ok {
				recipients = append(recipients, p)
			}
		}
		if len(recipients) == 0 {
			return
		}
	}

	dispatcher.BroadcastMessage(opCode, data, recipients, nil, true)
}

// sendError sends a GameErrorPayload to a specific user.
func (mh *matchHandler) sendError(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string, code int, message string) {
	data, err := json.Marshal(GameErrorPayload{Code: code, Message: message})
	if err != nil {
		logger.Error("Failed to marshal GameErrorPayload: %v", err)
		return
	}

	presence, ok := state.Presences[userID]
	if !ok {
		logger.Warn("Cannot send error to %s: Presence not found", userID)
		return
	}

	dispatcher.BroadcastMessage(OpGameError, data, []runtime.Presence{presence}, nil, true)
}

func (mh *matchHandler) updateLabel(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	labelBytes, err := json.Marshal(matchLabel{Open: state.GetOpenSeatsCount(), Game: string(state.Game)})
	if err != nil {
		logger.Error("UpdateLabel: Failed to marshal: %v", err)
		return
	}
	if err := dispatcher.MatchLabelUpdate(string(labelBytes)); err != nil {
		logger.Error("UpdateLabel: Failed to update: %v", err)
	}
}

func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, reason int) interface{} {
	logger.Debug("MatchTerminate: Match terminated for reason %d", reason)
	return state
}

func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	return state, ""
}
