package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"cardroom/internal/app"

	"github.com/heroiclabs/nakama-common/runtime"
)

// FindMatchRequest selects the game kind to join. An empty payload joins
// a blackjack table.
type FindMatchRequest struct {
	Game string `json:"game"`
}

// FindMatchResponse is the payload returned to clients when requesting a table.
type FindMatchResponse struct {
	MatchID string `json:"match_id"`
	IsNew   bool   `json:"is_new"`
}

// RegisterRPCs registers Nakama RPC endpoints.
func RegisterRPCs(initializer runtime.Initializer) error {
	return initializer.RegisterRpc(RpcFindMatch, rpcFindMatch)
}

// rpcFindMatch searches for a table of the requested game with an open
// seat, creating one when none exists.
func rpcFindMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userId, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)

	request := FindMatchRequest{Game: string(app.GameBlackjack)}
	if payload != "" {
		if err := json.Unmarshal([]byte(payload), &request); err != nil {
			return "", fmt.Errorf("invalid find_match payload: %w", err)
		}
	}

	moduleName := ""
	switch app.GameKind(request.Game) {
	case app.GameBlackjack:
		moduleName = MatchNameBlackjack
	case app.GameWar:
		moduleName = MatchNameWar
	default:
		return "", fmt.Errorf("unknown game %q", request.Game)
	}

	// Filter on open seats and game kind in the JSON label.
	limit := 1
	authoritative := true
	labelQuery := fmt.Sprintf("+label.%s:>=1 +label.%s:%s", MatchLabelKey_OpenSeats, MatchLabelKey_Game, request.Game)
	minSize := 0
	maxSize := maxSeats

	matches, err := nk.MatchList(ctx, limit, authoritative, "", &minSize, &maxSize, labelQuery)
	if err != nil {
		logger.Error("RpcFindMatch [User:%s]: Failed to list matches: %v", userId, err)
		return "", err
	}

	if len(matches) > 0 {
		matchId := matches[0].MatchId
		logger.Info("RpcFindMatch [User:%s]: Found existing %s table %s", userId, request.Game, matchId)
		resp, _ := json.Marshal(FindMatchResponse{MatchID: matchId, IsNew: false})
		return string(resp), nil
	}

	matchId, err := nk.MatchCreate(ctx, moduleName, nil)
	if err != nil {
		logger.Error("RpcFindMatch [User:%s]: Failed to create match: %v", userId, err)
		return "", err
	}

	logger.Info("RpcFindMatch [User:%s]: Created new %s table %s", userId, request.Game, matchId)
	resp, _ := json.Marshal(FindMatchResponse{MatchID: matchId, IsNew: true})
	return string(resp), nil
}
