package domain

import (
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/tdex-network/watchonly/pkg/wallet"
)

// Branch identifies the external (receive) or internal (change) subtree of
// an account.
type Branch uint32

const (
	BranchExternal Branch = 0
	BranchChange   Branch = 1
)

func (b Branch) String() string {
	switch b {
	case BranchExternal:
		return "external"
	case BranchChange:
		return "change"
	default:
		return fmt.Sprintf("branch(%d)", uint32(b))
	}
}

func (b Branch) validate() error {
	if b != BranchExternal && b != BranchChange {
		return fmt.Errorf("unknown branch %d", uint32(b))
	}
	return nil
}

// DerivationRequest pairs an export with the branch to derive the
// descriptor for.
type DerivationRequest struct {
	Export *ExportDocument
	Branch Branch
}

// Derive is a shorthand for DeriveDescriptor(r.Export, r.Branch).
func (r DerivationRequest) Derive() (*OutputDescriptor, error) {
	return DeriveDescriptor(r.Export, r.Branch)
}

// OutputDescriptor is the public-key-only native segwit descriptor of one
// branch of an account, ie. wpkh([xfp/84'/1'/0']tpub.../0/*).
// Descriptors of the two branches of the same account differ only by Branch.
type OutputDescriptor struct {
	Xpub        string
	Fingerprint string
	AccountPath wallet.DerivationPath
	Branch      Branch
	Network     Network
}

// DeriveDescriptor builds the output descriptor for the given branch of the
// account described by the export.
// Only test network exports are supported at the moment, any other network
// is rejected with ErrUnsupportedNetwork.
func DeriveDescriptor(
	export *ExportDocument, branch Branch,
) (*OutputDescriptor, error) {
	if export == nil {
		return nil, fmt.Errorf("%w: missing export", ErrParse)
	}
	if err := branch.validate(); err != nil {
		return nil, err
	}
	if export.Network != NetworkTest {
		return nil, fmt.Errorf(
			"%w: only %s network exports can be imported, got %s",
			ErrUnsupportedNetwork, NetworkTest, export.Network,
		)
	}
	if len(export.DerivationPath) <= 0 {
		return nil, fmt.Errorf("%w: missing derivation path", ErrParse)
	}

	key, err := parseAccountKey(export.AccountXpub, export.Network)
	if err != nil {
		return nil, err
	}

	return &OutputDescriptor{
		Xpub:        key.String(),
		Fingerprint: strings.ToLower(export.MasterFingerprint),
		AccountPath: export.DerivationPath.Extend(),
		Branch:      branch,
		Network:     export.Network,
	}, nil
}

// DeriveDescriptors returns the external and change descriptors of the
// account described by the export.
func DeriveDescriptors(
	export *ExportDocument,
) (external, change *OutputDescriptor, err error) {
	external, err = DeriveDescriptor(export, BranchExternal)
	if err != nil {
		return nil, nil, err
	}
	change, err = DeriveDescriptor(export, BranchChange)
	if err != nil {
		return nil, nil, err
	}
	return external, change, nil
}

// Path returns the full derivation path of the branch, ie. m/84'/1'/0'/0.
func (d OutputDescriptor) Path() wallet.DerivationPath {
	return d.AccountPath.Extend(uint32(d.Branch))
}

// String returns the descriptor in its textual form, including checksum.
func (d OutputDescriptor) String() string {
	desc := fmt.Sprintf(
		"wpkh([%s/%s]%s/%d/*)",
		d.Fingerprint, d.AccountPath.DescriptorString(), d.Xpub, d.Branch,
	)
	return desc + "#" + descriptorChecksum(desc)
}

// SameAccount returns whether the other descriptor shares every field but
// the branch with this one.
func (d OutputDescriptor) SameAccount(other OutputDescriptor) bool {
	return d.Xpub == other.Xpub &&
		d.Fingerprint == other.Fingerprint &&
		d.Network == other.Network &&
		d.AccountPath.String() == other.AccountPath.String()
}

// DeriveAddress returns the P2WPKH address at the given index of the
// descriptor's branch, encoded for the given chain params.
func (d OutputDescriptor) DeriveAddress(
	index uint32, params *chaincfg.Params,
) (string, error) {
	if !d.Network.IsCompatible(params) {
		return "", fmt.Errorf(
			"chain params are not compatible with %s network", d.Network,
		)
	}
	if index >= hdkeychain.HardenedKeyStart {
		return "", fmt.Errorf("address index %d is out of range", index)
	}

	key, err := parseAccountKey(d.Xpub, d.Network)
	if err != nil {
		return "", err
	}
	branchKey, err := key.Derive(uint32(d.Branch))
	if err != nil {
		return "", err
	}
	addrKey, err := branchKey.Derive(index)
	if err != nil {
		return "", err
	}
	pubkey, err := addrKey.ECPubKey()
	if err != nil {
		return "", err
	}

	return p2wpkhAddress(pubkey, params)
}

func p2wpkhAddress(pubkey *btcec.PublicKey, params *chaincfg.Params) (string, error) {
	addr, err := btcutil.NewAddressWitnessPubKeyHash(
		btcutil.Hash160(pubkey.SerializeCompressed()), params,
	)
	if err != nil {
		return "", err
	}
	return addr.EncodeAddress(), nil
}

func parseAccountKey(xpub string, network Network) (*hdkeychain.ExtendedKey, error) {
	key, err := hdkeychain.NewKeyFromString(xpub)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrKeyParse, err)
	}
	if key.IsPrivate() {
		return nil, fmt.Errorf(
			"%w: watch-only wallets require an extended public key", ErrKeyParse,
		)
	}
	if !key.IsForNet(network.HDParams()) {
		return nil, fmt.Errorf(
			"%w: key version does not match %s network", ErrKeyParse, network,
		)
	}
	return key, nil
}
