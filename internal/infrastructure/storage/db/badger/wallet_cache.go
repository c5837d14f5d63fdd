package dbbadger

import (
	"context"
	"fmt"
	"sort"

	"github.com/dgraph-io/badger/v3"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/watchonly/internal/core/domain"
	"github.com/tdex-network/watchonly/internal/core/ports"
	"github.com/timshannon/badgerhold/v4"
)

const tipHeightKey = "tip_height"

type tipHeight struct {
	Height uint32
}

// WalletCache is a ports.WalletCache backed by an in-memory badgerhold
// store. Nothing is written to disk.
type WalletCache struct {
	store *badgerhold.Store
}

// NewWalletCache opens a new in-memory badgerhold store.
func NewWalletCache(logger badger.Logger) (*WalletCache, error) {
	store, err := createInMemoryDb(logger)
	if err != nil {
		return nil, fmt.Errorf("opening wallet cache: %w", err)
	}
	return &WalletCache{store}, nil
}

// NewWalletCacheFactory returns a factory of badgerhold wallet caches.
func NewWalletCacheFactory(logger badger.Logger) ports.WalletCacheFactory {
	return func() (ports.WalletCache, error) {
		return NewWalletCache(logger)
	}
}

// ReplaceState swaps the whole cached state with the given one in a single
// badger transaction.
func (c *WalletCache) ReplaceState(
	_ context.Context, state domain.WalletState,
) error {
	tx := c.store.Badger().NewTransaction(true)
	defer tx.Discard()

	if err := c.store.TxDeleteMatching(tx, &domain.Utxo{}, nil); err != nil {
		return err
	}
	if err := c.store.TxDeleteMatching(tx, &domain.AddressInfo{}, nil); err != nil {
		return err
	}
	for _, u := range state.Utxos {
		if err := c.store.TxUpsert(tx, u.Key().String(), u); err != nil {
			return err
		}
	}
	for _, a := range state.Addresses {
		if err := c.store.TxUpsert(tx, addressKey(a), a); err != nil {
			return err
		}
	}
	if err := c.store.TxUpsert(
		tx, tipHeightKey, tipHeight{state.TipHeight},
	); err != nil {
		return err
	}

	return tx.Commit()
}

// GetUtxos returns all the cached unspents sorted by branch and index.
func (c *WalletCache) GetUtxos(_ context.Context) ([]domain.Utxo, error) {
	var utxos []domain.Utxo
	if err := c.store.Find(&utxos, nil); err != nil {
		return nil, err
	}
	sort.SliceStable(utxos, func(i, j int) bool {
		if utxos[i].Branch != utxos[j].Branch {
			return utxos[i].Branch < utxos[j].Branch
		}
		if utxos[i].Index != utxos[j].Index {
			return utxos[i].Index < utxos[j].Index
		}
		return utxos[i].Key().String() < utxos[j].Key().String()
	})
	return utxos, nil
}

// GetAddresses returns the cached addresses of the given branch sorted by
// index.
func (c *WalletCache) GetAddresses(
	_ context.Context, branch domain.Branch,
) ([]domain.AddressInfo, error) {
	var addresses []domain.AddressInfo
	if err := c.store.Find(
		&addresses, badgerhold.Where("Branch").Eq(branch),
	); err != nil {
		return nil, err
	}
	sort.SliceStable(addresses, func(i, j int) bool {
		return addresses[i].Index < addresses[j].Index
	})
	return addresses, nil
}

// GetTipHeight returns the chain height as of the last stored state.
func (c *WalletCache) GetTipHeight(_ context.Context) (uint32, error) {
	var tip tipHeight
	if err := c.store.Get(tipHeightKey, &tip); err != nil {
		if err == badgerhold.ErrNotFound {
			return 0, nil
		}
		return 0, err
	}
	return tip.Height, nil
}

// Close releases the underlying store.
func (c *WalletCache) Close() {
	if err := c.store.Close(); err != nil {
		log.WithError(err).Warn("failed to close wallet cache")
	}
}

func addressKey(a domain.AddressInfo) string {
	return fmt.Sprintf("%d/%d", a.Branch, a.Index)
}

func createInMemoryDb(logger badger.Logger) (*badgerhold.Store, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = logger

	return badgerhold.Open(badgerhold.Options{
		Encoder:          badgerhold.DefaultEncode,
		Decoder:          badgerhold.DefaultDecode,
		SequenceBandwith: 100,
		Options:          opts,
	})
}
