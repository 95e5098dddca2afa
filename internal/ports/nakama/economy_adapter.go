package nakama

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"cardroom/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

const (
	walletKeyChips   = "chips"
	ledgerCollection = "ledger_keys"
)

// NakamaLedgerAdapter implements ports.LedgerPort on Nakama's wallet
// system. Every movement writes a storage marker keyed by the caller's
// idempotency key in the same MultiUpdate as the wallet change, so a
// replayed debit or credit is detected and applied at most once.
type NakamaLedgerAdapter struct {
	nk runtime.NakamaModule
}

// NewNakamaLedgerAdapter creates a new ledger adapter.
func NewNakamaLedgerAdapter(nk runtime.NakamaModule) *NakamaLedgerAdapter {
	return &NakamaLedgerAdapter{nk: nk}
}

// Balance retrieves the current chip balance for a player.
func (a *NakamaLedgerAdapter) Balance(ctx context.Context, playerID string) (int64, error) {
	account, err := a.nk.AccountGetId(ctx, playerID)
	if err != nil {
		return 0, fmt.Errorf("failed to get account: %w", err)
	}

	var wallet map[string]int64
	if err := json.Unmarshal([]byte(account.Wallet), &wallet); err != nil {
		return 0, fmt.Errorf("failed to unmarshal wallet: %w", err)
	}

	return wallet[walletKeyChips], nil
}

// Debit removes chips from the player's wallet. A balance lower than the
// amount fails with ports.ErrInsufficientFunds and moves nothing.
func (a *NakamaLedgerAdapter) Debit(ctx context.Context, playerID string, amount int64, idemKey string) (ports.TxRef, error) {
	if amount <= 0 {
		return "", fmt.Errorf("debit amount must be positive")
	}

	balance, err := a.Balance(ctx, playerID)
	if err != nil {
		return "", err
	}
	if balance < amount {
		return "", ports.ErrInsufficientFunds
	}

	return a.apply(ctx, playerID, -amount, idemKey)
}

// Credit adds chips to the player's wallet.
func (a *NakamaLedgerAdapter) Credit(ctx context.Context, playerID string, amount int64, idemKey string) (ports.TxRef, error) {
	if amount <= 0 {
		return "", fmt.Errorf("credit amount must be positive")
	}
	return a.apply(ctx, playerID, amount, idemKey)
}

// apply writes the idempotency marker and the wallet change atomically.
// A rejected marker version means the movement was already applied, which
// reports success without touching the wallet again.
func (a *NakamaLedgerAdapter) apply(ctx context.Context, playerID string, amount int64, idemKey string) (ports.TxRef, error) {
	if idemKey == "" {
		return "", fmt.Errorf("idempotency key is required")
	}

	marker := map[string]interface{}{
		"amount":     amount,
		"applied_at": time.Now().UTC().Format(time.RFC3339),
	}
	value, err := json.Marshal(marker)
	if err != nil {
		return "", fmt.Errorf("failed to marshal ledger marker: %w", err)
	}

	storageWrites := []*runtime.StorageWrite{
		{
			Collection:      ledgerCollection,
			Key:             idemKey,
			UserID:          playerID,
			Value:           string(value),
			Version:         "*",
			PermissionRead:  runtime.STORAGE_PERMISSION_NO_READ,
			PermissionWrite: runtime.STORAGE_PERMISSION_NO_WRITE,
		},
	}

	walletUpdates := []*runtime.WalletUpdate{
		{
			UserID:    playerID,
			Changeset: map[string]int64{walletKeyChips: amount},
			Metadata:  map[string]interface{}{"ledger_key": idemKey},
		},
	}

	_, _, err = a.nk.MultiUpdate(ctx, nil, storageWrites, nil, walletUpdates, true)
	if err != nil {
		if errors.Is(err, runtime.ErrStorageRejectedVersion) {
			return ports.TxRef(idemKey), nil
		}
		return "", fmt.Errorf("failed to apply wallet change: %w", err)
	}

	return ports.TxRef(idemKey), nil
}

var _ ports.LedgerPort = (*NakamaLedgerAdapter)(nil)
