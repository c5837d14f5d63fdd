package inmemory

import (
	"context"
	"sort"
	"sync"

	"github.com/tdex-network/watchonly/internal/core/domain"
	"github.com/tdex-network/watchonly/internal/core/ports"
)

// WalletCache is an in memory implementation of ports.WalletCache.
type WalletCache struct {
	utxos     map[domain.UtxoKey]domain.Utxo
	addresses map[domain.Branch]map[uint32]domain.AddressInfo
	tipHeight uint32
	closed    bool
	lock      *sync.RWMutex
}

// NewWalletCache returns a new empty WalletCache.
func NewWalletCache() *WalletCache {
	return &WalletCache{
		utxos:     map[domain.UtxoKey]domain.Utxo{},
		addresses: map[domain.Branch]map[uint32]domain.AddressInfo{},
		lock:      &sync.RWMutex{},
	}
}

// NewWalletCacheFactory returns a factory of in memory wallet caches.
func NewWalletCacheFactory() ports.WalletCacheFactory {
	return func() (ports.WalletCache, error) {
		return NewWalletCache(), nil
	}
}

// ReplaceState swaps the whole cached state with the given one.
func (c *WalletCache) ReplaceState(
	_ context.Context, state domain.WalletState,
) error {
	utxos := make(map[domain.UtxoKey]domain.Utxo, len(state.Utxos))
	for _, u := range state.Utxos {
		utxos[u.Key()] = u
	}
	addresses := map[domain.Branch]map[uint32]domain.AddressInfo{}
	for _, a := range state.Addresses {
		if _, ok := addresses[a.Branch]; !ok {
			addresses[a.Branch] = map[uint32]domain.AddressInfo{}
		}
		addresses[a.Branch][a.Index] = a
	}

	c.lock.Lock()
	defer c.lock.Unlock()

	if c.closed {
		return ErrCacheClosed
	}
	c.utxos = utxos
	c.addresses = addresses
	c.tipHeight = state.TipHeight
	return nil
}

// GetUtxos returns all the cached unspents sorted by branch and index.
func (c *WalletCache) GetUtxos(_ context.Context) ([]domain.Utxo, error) {
	c.lock.RLock()
	defer c.lock.RUnlock()

	if c.closed {
		return nil, ErrCacheClosed
	}

	utxos := make([]domain.Utxo, 0, len(c.utxos))
	for _, u := range c.utxos {
		utxos = append(utxos, u)
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
	c.lock.RLock()
	defer c.lock.RUnlock()

	if c.closed {
		return nil, ErrCacheClosed
	}

	addresses := make([]domain.AddressInfo, 0, len(c.addresses[branch]))
	for _, a := range c.addresses[branch] {
		addresses = append(addresses, a)
	}
	sort.SliceStable(addresses, func(i, j int) bool {
		return addresses[i].Index < addresses[j].Index
	})
	return addresses, nil
}

// GetTipHeight returns the chain height as of the last stored state.
func (c *WalletCache) GetTipHeight(_ context.Context) (uint32, error) {
	c.lock.RLock()
	defer c.lock.RUnlock()

	if c.closed {
		return 0, ErrCacheClosed
	}
	return c.tipHeight, nil
}

// Close drops the cached state.
func (c *WalletCache) Close() {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.closed = true
	c.utxos = nil
	c.addresses = nil
}
