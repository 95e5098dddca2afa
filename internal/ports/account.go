package ports

import "context"

// AccountPort defines the interface for updating account profiles.
type AccountPort interface {
	// UpdateProfile updates account profile fields for the given player.
	UpdateProfile(ctx context.Context, playerID, username, displayName string) error
}
