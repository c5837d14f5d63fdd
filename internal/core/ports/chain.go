package ports

import (
	"context"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/tdex-network/watchonly/internal/core/domain"
)

// SyncProgress reports how far a sync is in scanning a branch.
type SyncProgress struct {
	Branch           domain.Branch
	ScannedAddresses int
	UsedAddresses    int
}

// ProgressFunc is an optional sink for sync progress updates.
type ProgressFunc func(SyncProgress)

// ChainSyncer is the chain-data client a wallet session syncs through.
type ChainSyncer interface {
	// Params returns the chain params the client is configured for.
	Params() *chaincfg.Params
	// Sync fetches the whole chain state relevant to the given descriptors.
	// The returned state is complete, partial results are never returned.
	Sync(
		ctx context.Context,
		descriptors []domain.OutputDescriptor,
		progress ProgressFunc,
	) (*domain.WalletState, error)
}
