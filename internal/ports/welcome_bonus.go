package ports

import "context"

// WelcomeBonusPort grants the one-time starting chip stack for new players.
type WelcomeBonusPort interface {
	// GrantWelcomeBonusOnce credits the bonus at most once per player.
	// Returns false when the bonus was already granted.
	GrantWelcomeBonusOnce(ctx context.Context, playerID string, amount int64, metadata map[string]interface{}) (bool, error)
}
