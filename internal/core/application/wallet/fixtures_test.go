package wallet_test

import (
	"bytes"
	"context"
	"sync"
	"testing"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/stretchr/testify/require"
	"github.com/tdex-network/watchonly/internal/core/domain"
	"github.com/tdex-network/watchonly/internal/core/ports"
	pkgwallet "github.com/tdex-network/watchonly/pkg/wallet"
)

var (
	testSeed   = bytes.Repeat([]byte{0x0f}, 32)
	testParams = &chaincfg.RegressionNetParams
)

type mockSyncer struct {
	params *chaincfg.Params

	lock  sync.Mutex
	state *domain.WalletState
	err   error
	// if not nil, Sync waits for it to be closed or for its context to be done
	block chan struct{}
	calls int
}

func newMockSyncer(params *chaincfg.Params) *mockSyncer {
	return &mockSyncer{
		params: params,
		state:  &domain.WalletState{},
	}
}

func (m *mockSyncer) Params() *chaincfg.Params {
	return m.params
}

func (m *mockSyncer) Sync(
	ctx context.Context, _ []domain.OutputDescriptor, _ ports.ProgressFunc,
) (*domain.WalletState, error) {
	m.lock.Lock()
	m.calls++
	state, err, block := m.state, m.err, m.block
	m.lock.Unlock()

	if block != nil {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-block:
		}
	}
	if err != nil {
		return nil, err
	}
	s := *state
	return &s, nil
}

func (m *mockSyncer) setResult(state *domain.WalletState, err error) {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.state = state
	m.err = err
}

func (m *mockSyncer) setBlock(block chan struct{}) {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.block = block
}

func (m *mockSyncer) numCalls() int {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.calls
}

// newTestExport returns an export of the account at the given path of the
// test seed.
func newTestExport(t *testing.T, accountPath string) *domain.ExportDocument {
	path, err := pkgwallet.ParseDerivationPath(accountPath)
	require.NoError(t, err)

	key, err := hdkeychain.NewMaster(testSeed, &chaincfg.TestNet3Params)
	require.NoError(t, err)
	for _, step := range path {
		key, err = key.Derive(step)
		require.NoError(t, err)
	}
	xpub, err := key.Neuter()
	require.NoError(t, err)

	return &domain.ExportDocument{
		Network:           domain.NetworkTest,
		MasterFingerprint: "0F056943",
		AccountXpub:       xpub.String(),
		DerivationPath:    path,
	}
}

func newTestDescriptors(
	t *testing.T, accountPath string,
) (domain.OutputDescriptor, domain.OutputDescriptor) {
	external, change, err := domain.DeriveDescriptors(newTestExport(t, accountPath))
	require.NoError(t, err)
	return *external, *change
}

func deriveAddress(
	t *testing.T, desc domain.OutputDescriptor, index uint32,
) string {
	addr, err := desc.DeriveAddress(index, testParams)
	require.NoError(t, err)
	return addr
}
