package domain_test

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/stretchr/testify/require"
	"github.com/tdex-network/watchonly/pkg/wallet"
)

var testSeed = bytes.Repeat([]byte{0x0f}, 32)

const testFingerprint = "0F056943"

func newTestMasterKey(t *testing.T, params *chaincfg.Params) *hdkeychain.ExtendedKey {
	master, err := hdkeychain.NewMaster(testSeed, params)
	require.NoError(t, err)
	return master
}

func deriveTestKey(
	t *testing.T, key *hdkeychain.ExtendedKey, path wallet.DerivationPath,
) *hdkeychain.ExtendedKey {
	var err error
	for _, step := range path {
		key, err = key.Derive(step)
		require.NoError(t, err)
	}
	return key
}

// newTestXpub returns the neutered account key at m/84'/1'/0' in base58.
func newTestXpub(t *testing.T, params *chaincfg.Params) string {
	path, err := wallet.ParseDerivationPath("m/84'/1'/0'")
	require.NoError(t, err)

	account := deriveTestKey(t, newTestMasterKey(t, params), path)
	xpub, err := account.Neuter()
	require.NoError(t, err)
	return xpub.String()
}

func newTestExportJSON(chain, deriv, first, xpub string) []byte {
	return []byte(fmt.Sprintf(`{
  "chain": %q,
  "xfp": %q,
  "xpub": %q,
  "account": 0,
  "bip84": {
    "name": "p2wpkh",
    "xfp": "5D4A3DA8",
    "deriv": %q,
    "first": %q,
    "_pub": "vpub-not-used",
    "xpub": %q
  },
  "unknown_field": {"ignored": true}
}`, chain, testFingerprint, xpub, deriv, first, xpub))
}
