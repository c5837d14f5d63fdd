package domain

import "fmt"

// UtxoKey identifies an unspent output by its txid and vout.
type UtxoKey struct {
	TxID string
	VOut uint32
}

func (k UtxoKey) String() string {
	return fmt.Sprintf("%s:%d", k.TxID, k.VOut)
}

// Utxo is an unspent output locked by one of the wallet's addresses.
type Utxo struct {
	TxID        string
	VOut        uint32
	Value       uint64
	Address     string
	Branch      Branch
	Index       uint32
	Confirmed   bool
	BlockHeight uint32
}

// Key returns the UtxoKey of the output.
func (u Utxo) Key() UtxoKey {
	return UtxoKey{u.TxID, u.VOut}
}

// AddressInfo is an address derived from one of the wallet's descriptors
// together with its usage on chain.
type AddressInfo struct {
	Address string
	Branch  Branch
	Index   uint32
	TxCount int
}

// IsUsed returns whether the address has ever been involved in a transaction.
func (a AddressInfo) IsUsed() bool {
	return a.TxCount > 0
}

// WalletState is the full chain state of a wallet produced by a sync. It
// replaces the cached state as a whole.
type WalletState struct {
	Addresses []AddressInfo
	Utxos     []Utxo
	TipHeight uint32
}

// Balance is the wallet balance split by confirmation status, in satoshis.
type Balance struct {
	Confirmed   uint64
	Unconfirmed uint64
}

// Total returns confirmed plus unconfirmed value.
func (b Balance) Total() uint64 {
	return b.Confirmed + b.Unconfirmed
}

// CalcBalance sums the value of the given utxos by confirmation status.
func CalcBalance(utxos []Utxo) Balance {
	var balance Balance
	for _, u := range utxos {
		if u.Confirmed {
			balance.Confirmed += u.Value
			continue
		}
		balance.Unconfirmed += u.Value
	}
	return balance
}

// NextUnusedIndex returns the index following the highest used one of the
// given branch, or 0 if none of its addresses has been used.
func NextUnusedIndex(addresses []AddressInfo, branch Branch) uint32 {
	var next uint32
	for _, a := range addresses {
		if a.Branch != branch || !a.IsUsed() {
			continue
		}
		if a.Index+1 > next {
			next = a.Index + 1
		}
	}
	return next
}
