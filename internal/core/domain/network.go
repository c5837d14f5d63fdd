package domain

import (
	"fmt"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/wire"
)

const (
	// ChainTagMain is the chain tag used by signing devices for mainnet.
	ChainTagMain = "BTC"
	// ChainTagTest is the chain tag used by signing devices for testnet.
	ChainTagTest = "XTN"
)

// Network is the network an export document targets.
type Network int

const (
	NetworkMain Network = iota
	NetworkTest
)

// ResolveNetwork maps the chain tag of an export document to a Network.
// Tags other than BTC and XTN are rejected with ErrUnsupportedNetwork.
func ResolveNetwork(chainTag string) (Network, error) {
	switch chainTag {
	case ChainTagMain:
		return NetworkMain, nil
	case ChainTagTest:
		return NetworkTest, nil
	default:
		return 0, fmt.Errorf("%w: chain tag %q", ErrUnsupportedNetwork, chainTag)
	}
}

func (n Network) String() string {
	switch n {
	case NetworkMain:
		return "main"
	case NetworkTest:
		return "test"
	default:
		return "unknown"
	}
}

// ChainTag returns the chain tag of the network as found in export files.
func (n Network) ChainTag() string {
	if n == NetworkMain {
		return ChainTagMain
	}
	return ChainTagTest
}

// HDParams returns the chain params whose BIP32 version bytes match the
// network's extended keys.
func (n Network) HDParams() *chaincfg.Params {
	if n == NetworkMain {
		return &chaincfg.MainNetParams
	}
	return &chaincfg.TestNet3Params
}

// IsCompatible returns whether addresses for the given chain params can be
// derived from keys of this network. Testnet, regtest and signet all share
// the test network's extended key versions.
func (n Network) IsCompatible(params *chaincfg.Params) bool {
	if params == nil {
		return false
	}
	isMain := params.Net == wire.MainNet
	return isMain == (n == NetworkMain)
}
