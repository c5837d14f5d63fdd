package ports

import (
	"context"

	"github.com/tdex-network/watchonly/internal/core/domain"
)

// WalletCache is the local, in-memory store of the state of a single wallet.
type WalletCache interface {
	// ReplaceState atomically swaps the cached state with the given one.
	ReplaceState(ctx context.Context, state domain.WalletState) error
	GetUtxos(ctx context.Context) ([]domain.Utxo, error)
	GetAddresses(
		ctx context.Context, branch domain.Branch,
	) ([]domain.AddressInfo, error)
	GetTipHeight(ctx context.Context) (uint32, error)
	Close()
}

// WalletCacheFactory returns a fresh, empty WalletCache.
type WalletCacheFactory func() (WalletCache, error)
