package esplora

import "github.com/tdex-network/watchonly/pkg/explorer"

/**** UTXO *****/

type witnessUtxo struct {
	UHash    string `json:"txid"`
	UIndex   uint32 `json:"vout"`
	UValue   uint64 `json:"value"`
	UStatus  status `json:"status"`
	UAddress string `json:"-"`
}

type status struct {
	Confirmed   bool   `json:"confirmed"`
	BlockHeight uint32 `json:"block_height"`
	BlockHash   string `json:"block_hash"`
}

// NewWitnessUtxo is the factory for a witnessUtxo.
func NewWitnessUtxo(
	hash string, index uint32, value uint64, address string,
	confirmed bool, blockHeight uint32,
) explorer.Utxo {
	return witnessUtxo{
		UHash:    hash,
		UIndex:   index,
		UValue:   value,
		UAddress: address,
		UStatus:  status{Confirmed: confirmed, BlockHeight: blockHeight},
	}
}

func (wu witnessUtxo) Hash() string {
	return wu.UHash
}

func (wu witnessUtxo) Index() uint32 {
	return wu.UIndex
}

func (wu witnessUtxo) Value() uint64 {
	return wu.UValue
}

func (wu witnessUtxo) Address() string {
	return wu.UAddress
}

func (wu witnessUtxo) IsConfirmed() bool {
	return wu.UStatus.Confirmed
}

func (wu witnessUtxo) BlockHeight() uint32 {
	return wu.UStatus.BlockHeight
}

/**** ADDRESS *****/

type addressStats struct {
	Addr         string   `json:"address"`
	ChainStats   txoStats `json:"chain_stats"`
	MempoolStats txoStats `json:"mempool_stats"`
}

type txoStats struct {
	FundedTxoCount int   `json:"funded_txo_count"`
	FundedTxoSum   int64 `json:"funded_txo_sum"`
	SpentTxoCount  int   `json:"spent_txo_count"`
	SpentTxoSum    int64 `json:"spent_txo_sum"`
	TxCount        int   `json:"tx_count"`
}

func (s txoStats) balance() int64 {
	return s.FundedTxoSum - s.SpentTxoSum
}

// NewAddressStats is the factory for an addressStats.
func NewAddressStats(
	address string, confirmedTxs, unconfirmedTxs int,
) explorer.AddressStats {
	return addressStats{
		Addr:         address,
		ChainStats:   txoStats{TxCount: confirmedTxs},
		MempoolStats: txoStats{TxCount: unconfirmedTxs},
	}
}

func (s addressStats) Address() string {
	return s.Addr
}

func (s addressStats) TxCount() int {
	return s.ChainStats.TxCount + s.MempoolStats.TxCount
}

func (s addressStats) ConfirmedBalance() int64 {
	return s.ChainStats.balance()
}

func (s addressStats) UnconfirmedBalance() int64 {
	return s.MempoolStats.balance()
}
