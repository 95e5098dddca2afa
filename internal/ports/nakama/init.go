package nakama

import (
	"context"
	"database/sql"

	"cardroom/internal/app"

	"github.com/heroiclabs/nakama-common/runtime"
)

// InitModule wires RPCs, hooks and match handlers for the Nakama runtime.
func InitModule(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, initializer runtime.Initializer) error {
	if err := RegisterRPCs(initializer); err != nil {
		return err
	}

	if err := initializer.RegisterAfterAuthenticateDevice(AfterAuthenticateDevice); err != nil {
		return err
	}

	if err := initializer.RegisterMatch(MatchNameBlackjack, NewMatch(app.GameBlackjack)); err != nil {
		return err
	}
	if err := initializer.RegisterMatch(MatchNameWar, NewMatch(app.GameWar)); err != nil {
		return err
	}

	logger.Info("Cardroom Go module loaded.")
	return nil
}
