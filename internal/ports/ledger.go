package ports

import (
	"context"
	"errors"
)

// TxRef identifies an applied ledger transaction.
type TxRef string

// ErrInsufficientFunds is returned by Debit when the player's balance
// cannot cover the amount. The caller must not create a game instance.
var ErrInsufficientFunds = errors.New("insufficient funds")

// LedgerPort is the abstract wallet collaborator. Each bet debits at most
// once and each settlement credits at most once; idemKey carries the
// (instance id, phase) idempotency key so retries after a timeout are safe.
type LedgerPort interface {
	// Balance retrieves the current chip balance for a player.
	Balance(ctx context.Context, playerID string) (int64, error)

	// Debit withdraws amount from the player's balance.
	Debit(ctx context.Context, playerID string, amount int64, idemKey string) (TxRef, error)

	// Credit deposits amount into the player's balance.
	Credit(ctx context.Context, playerID string, amount int64, idemKey string) (TxRef, error)
}
