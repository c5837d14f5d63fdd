package esplorachain_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"github.com/tdex-network/watchonly/internal/core/domain"
	"github.com/tdex-network/watchonly/internal/core/ports"
	esplorachain "github.com/tdex-network/watchonly/internal/infrastructure/chain/esplora"
	"github.com/tdex-network/watchonly/pkg/explorer"
	"github.com/tdex-network/watchonly/pkg/explorer/esplora"
	"github.com/tdex-network/watchonly/pkg/stats"
	"github.com/tdex-network/watchonly/pkg/wallet"
)

const testGapLimit = 5

var (
	params       = &chaincfg.RegressionNetParams
	errExplorer  = errors.New("explorer is down")
	testTipBlock = uint32(150)
)

type mockExplorer struct {
	txCount  map[string]int
	unspents map[string][]explorer.Utxo
	failing  bool

	lock      sync.Mutex
	requested []string
}

func (m *mockExplorer) GetBlockHeight(context.Context) (uint32, error) {
	if m.failing {
		return 0, errExplorer
	}
	return testTipBlock, nil
}

func (m *mockExplorer) GetAddressStats(
	_ context.Context, addr string,
) (explorer.AddressStats, error) {
	m.lock.Lock()
	m.requested = append(m.requested, addr)
	m.lock.Unlock()
	return esplora.NewAddressStats(addr, m.txCount[addr], 0), nil
}

func (m *mockExplorer) GetAddressesStats(
	ctx context.Context, addresses []string,
) ([]explorer.AddressStats, error) {
	res := make([]explorer.AddressStats, 0, len(addresses))
	for _, addr := range addresses {
		st, _ := m.GetAddressStats(ctx, addr)
		res = append(res, st)
	}
	return res, nil
}

func (m *mockExplorer) GetUnspents(
	_ context.Context, addr string,
) ([]explorer.Utxo, error) {
	return m.unspents[addr], nil
}

func (m *mockExplorer) GetUnspentsForAddresses(
	ctx context.Context, addresses []string,
) ([]explorer.Utxo, error) {
	res := make([]explorer.Utxo, 0)
	for _, addr := range addresses {
		u, _ := m.GetUnspents(ctx, addr)
		res = append(res, u...)
	}
	return res, nil
}

func newTestDescriptors(t *testing.T) []domain.OutputDescriptor {
	seed := make([]byte, 32)
	for i := range seed {
		seed[i] = 0x0f
	}
	key, err := hdkeychain.NewMaster(seed, &chaincfg.TestNet3Params)
	require.NoError(t, err)

	path, err := wallet.ParseDerivationPath("m/84'/1'/0'")
	require.NoError(t, err)
	for _, step := range path {
		key, err = key.Derive(step)
		require.NoError(t, err)
	}
	xpub, err := key.Neuter()
	require.NoError(t, err)

	export := &domain.ExportDocument{
		Network:           domain.NetworkTest,
		MasterFingerprint: "0F056943",
		AccountXpub:       xpub.String(),
		DerivationPath:    path,
	}
	external, change, err := domain.DeriveDescriptors(export)
	require.NoError(t, err)
	return []domain.OutputDescriptor{*external, *change}
}

func deriveAddress(
	t *testing.T, desc domain.OutputDescriptor, index uint32,
) string {
	addr, err := desc.DeriveAddress(index, params)
	require.NoError(t, err)
	return addr
}

func TestSyncEmptyWallet(t *testing.T) {
	descriptors := newTestDescriptors(t)
	mock := &mockExplorer{}
	syncer, err := esplorachain.NewChainSyncer(mock, params, testGapLimit, nil)
	require.NoError(t, err)
	require.Equal(t, params, syncer.Params())

	state, err := syncer.Sync(context.Background(), descriptors, nil)
	require.NoError(t, err)
	require.NotNil(t, state)

	require.Equal(t, testTipBlock, state.TipHeight)
	require.Len(t, state.Addresses, 2*testGapLimit)
	require.Empty(t, state.Utxos)
	for _, a := range state.Addresses {
		require.False(t, a.IsUsed())
	}
}

func TestSyncGapLimit(t *testing.T) {
	descriptors := newTestDescriptors(t)
	external, change := descriptors[0], descriptors[1]

	ext2 := deriveAddress(t, external, 2)
	ext7 := deriveAddress(t, external, 7)
	chg0 := deriveAddress(t, change, 0)
	// beyond the gap of 5 unused addresses following index 7
	ext16 := deriveAddress(t, external, 16)

	mock := &mockExplorer{
		txCount: map[string]int{ext2: 2, ext7: 1, chg0: 1, ext16: 1},
		unspents: map[string][]explorer.Utxo{
			ext7: {esplora.NewWitnessUtxo("aa", 0, 10000, ext7, true, 140)},
			chg0: {esplora.NewWitnessUtxo("bb", 1, 2500, chg0, false, 0)},
		},
	}
	reg := prometheus.NewRegistry()
	metrics, err := stats.NewSyncMetrics(reg)
	require.NoError(t, err)

	syncer, err := esplorachain.NewChainSyncer(mock, params, testGapLimit, metrics)
	require.NoError(t, err)

	progress := make([]ports.SyncProgress, 0)
	state, err := syncer.Sync(
		context.Background(), descriptors,
		func(p ports.SyncProgress) { progress = append(progress, p) },
	)
	require.NoError(t, err)

	// external: [0,5) [5,10) [10,15), change: [0,5) [5,10)
	require.Len(t, state.Addresses, 25)
	require.Equal(t, uint32(8), domain.NextUnusedIndex(state.Addresses, domain.BranchExternal))
	require.Equal(t, uint32(1), domain.NextUnusedIndex(state.Addresses, domain.BranchChange))

	require.Len(t, state.Utxos, 2)
	require.Equal(t, domain.Utxo{
		TxID: "aa", VOut: 0, Value: 10000, Address: ext7,
		Branch: domain.BranchExternal, Index: 7, Confirmed: true, BlockHeight: 140,
	}, state.Utxos[0])
	require.Equal(t, domain.BranchChange, state.Utxos[1].Branch)
	require.Equal(t, uint32(0), state.Utxos[1].Index)
	require.False(t, state.Utxos[1].Confirmed)

	require.Equal(t, domain.Balance{Confirmed: 10000, Unconfirmed: 2500}, domain.CalcBalance(state.Utxos))

	require.Len(t, progress, 5)
	require.Equal(t, ports.SyncProgress{
		Branch: domain.BranchExternal, ScannedAddresses: 15, UsedAddresses: 2,
	}, progress[2])
	require.Equal(t, ports.SyncProgress{
		Branch: domain.BranchChange, ScannedAddresses: 10, UsedAddresses: 1,
	}, progress[4])

	require.NotContains(t, mock.requested, ext16)
	count, err := testutil.GatherAndCount(reg, "watchonly_syncs_total")
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestFailingSync(t *testing.T) {
	descriptors := newTestDescriptors(t)
	syncer, err := esplorachain.NewChainSyncer(
		&mockExplorer{failing: true}, params, testGapLimit, nil,
	)
	require.NoError(t, err)

	state, err := syncer.Sync(context.Background(), descriptors, nil)
	require.ErrorIs(t, err, errExplorer)
	require.Nil(t, state)
}

func TestNewChainSyncer(t *testing.T) {
	_, err := esplorachain.NewChainSyncer(nil, params, 0, nil)
	require.ErrorIs(t, err, esplorachain.ErrNullExplorer)

	_, err = esplorachain.NewChainSyncer(&mockExplorer{}, nil, 0, nil)
	require.ErrorIs(t, err, esplorachain.ErrNullParams)
}
