package domain_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tdex-network/watchonly/internal/core/domain"
)

func TestCalcBalance(t *testing.T) {
	require.Zero(t, domain.CalcBalance(nil).Total())

	balance := domain.CalcBalance([]domain.Utxo{
		{TxID: "a", Value: 1000, Confirmed: true},
		{TxID: "b", Value: 2500, Confirmed: true},
		{TxID: "c", Value: 400},
	})
	require.Equal(t, uint64(3500), balance.Confirmed)
	require.Equal(t, uint64(400), balance.Unconfirmed)
	require.Equal(t, uint64(3900), balance.Total())
}

func TestNextUnusedIndex(t *testing.T) {
	require.Zero(t, domain.NextUnusedIndex(nil, domain.BranchExternal))

	addresses := []domain.AddressInfo{
		{Branch: domain.BranchExternal, Index: 0, TxCount: 2},
		{Branch: domain.BranchExternal, Index: 1},
		{Branch: domain.BranchExternal, Index: 3, TxCount: 1},
		{Branch: domain.BranchExternal, Index: 4},
		{Branch: domain.BranchChange, Index: 7, TxCount: 1},
	}
	require.Equal(t, uint32(4), domain.NextUnusedIndex(addresses, domain.BranchExternal))
	require.Equal(t, uint32(8), domain.NextUnusedIndex(addresses, domain.BranchChange))
}
