package importer_test

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/stretchr/testify/require"
	"github.com/tdex-network/watchonly/internal/core/application/wallet"
	"github.com/tdex-network/watchonly/internal/core/domain"
	"github.com/tdex-network/watchonly/internal/core/ports"
	"github.com/tdex-network/watchonly/internal/infrastructure/storage/db/inmemory"
	pkgwallet "github.com/tdex-network/watchonly/pkg/wallet"
)

var testParams = &chaincfg.RegressionNetParams

type mockSource struct {
	raw []byte
	err error
}

func (m mockSource) Select(context.Context) ([]byte, error) {
	return m.raw, m.err
}

type mockSyncer struct {
	lock  sync.Mutex
	err   error
	calls int
}

func (m *mockSyncer) Params() *chaincfg.Params {
	return testParams
}

func (m *mockSyncer) Sync(
	context.Context, []domain.OutputDescriptor, ports.ProgressFunc,
) (*domain.WalletState, error) {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return &domain.WalletState{TipHeight: 100}, nil
}

func (m *mockSyncer) setErr(err error) {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.err = err
}

func (m *mockSyncer) numCalls() int {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.calls
}

type failingOpener struct {
	err error
}

func (o failingOpener) Open(*domain.ExportDocument) (*wallet.Session, error) {
	return nil, o.err
}

func newTestXpub(t *testing.T) string {
	path, err := pkgwallet.ParseDerivationPath("m/84'/1'/0'")
	require.NoError(t, err)

	key, err := hdkeychain.NewMaster(
		bytes.Repeat([]byte{0x0f}, 32), &chaincfg.TestNet3Params,
	)
	require.NoError(t, err)
	for _, step := range path {
		key, err = key.Derive(step)
		require.NoError(t, err)
	}
	xpub, err := key.Neuter()
	require.NoError(t, err)
	return xpub.String()
}

func newTestExportJSON(t *testing.T, chain string) []byte {
	return []byte(fmt.Sprintf(`{
  "chain": %q,
  "xfp": "0F056943",
  "account": 0,
  "bip84": {
    "deriv": "m/84'/1'/0'",
    "first": "tb1qfirst",
    "xpub": %q
  }
}`, chain, newTestXpub(t)))
}

func newTestExport(t *testing.T) *domain.ExportDocument {
	export, err := domain.ParseExport(newTestExportJSON(t, "XTN"))
	require.NoError(t, err)
	return export
}

func newTestOpener(t *testing.T, syncer ports.ChainSyncer) *wallet.Opener {
	opener, err := wallet.NewOpener(
		syncer, inmemory.NewWalletCacheFactory(), wallet.Opts{},
	)
	require.NoError(t, err)
	return opener
}
