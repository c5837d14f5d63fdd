package explorer

import (
	"context"
	"errors"
)

// ErrUnexpectedStatus is returned when the explorer replies with a non-2xx
// status code.
var ErrUnexpectedStatus = errors.New("unexpected explorer response")

// Utxo represents an unspent transaction output in the bitcoin chain.
type Utxo interface {
	Hash() string
	Index() uint32
	Value() uint64
	Address() string
	IsConfirmed() bool
	BlockHeight() uint32
}

// AddressStats reports the on chain and mempool activity of an address.
type AddressStats interface {
	Address() string
	// TxCount is the number of confirmed and unconfirmed txs involving the
	// address.
	TxCount() int
	ConfirmedBalance() int64
	UnconfirmedBalance() int64
}

// Service is representation of an explorer that allows to fetch data from the
// blockchain.
type Service interface {
	// GetBlockHeight returns the height of the current chain tip.
	GetBlockHeight(ctx context.Context) (uint32, error)
	// GetAddressStats returns the activity of the given address.
	GetAddressStats(ctx context.Context, addr string) (AddressStats, error)
	// GetAddressesStats returns the activity of the given list of addresses,
	// in the same order.
	GetAddressesStats(
		ctx context.Context, addresses []string,
	) ([]AddressStats, error)
	// GetUnspents fetches the utxos locked by the given address.
	GetUnspents(ctx context.Context, addr string) ([]Utxo, error)
	// GetUnspentsForAddresses fetches the utxos of the given list of
	// addresses.
	GetUnspentsForAddresses(
		ctx context.Context, addresses []string,
	) ([]Utxo, error)
}
