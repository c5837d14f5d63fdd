package domain

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tdex-network/watchonly/pkg/wallet"
)

// fingerprintLen is the length in bytes of a BIP32 master key fingerprint.
const fingerprintLen = 4

// ExportDocument is the validated content of a signing device export
// describing the native segwit account of a HD wallet.
// It's created once at import time and never modified afterwards.
type ExportDocument struct {
	Network           Network
	MasterFingerprint string
	AccountXpub       string
	DerivationPath    wallet.DerivationPath
	// FirstAddress is the first receive address as displayed by the device.
	// It's advisory only and never used for derivation.
	FirstAddress string
	// Account and RootXpub are informational.
	Account  uint64
	RootXpub string
}

type exportJSON struct {
	Chain   string     `json:"chain"`
	Xfp     string     `json:"xfp"`
	Xpub    string     `json:"xpub"`
	Account *uint64    `json:"account"`
	Bip84   *bip84JSON `json:"bip84"`
}

type bip84JSON struct {
	Deriv string `json:"deriv"`
	First string `json:"first"`
	Xpub  string `json:"xpub"`
	Name  string `json:"name"`
	Xfp   string `json:"xfp"`
}

// ParseExport deserializes and validates a raw export document.
// Unknown fields are ignored, missing or malformed required ones make the
// document invalid.
func ParseExport(raw []byte) (*ExportDocument, error) {
	var doc exportJSON
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrParse, err)
	}
	if err := doc.validate(); err != nil {
		return nil, err
	}

	network, err := ResolveNetwork(doc.Chain)
	if err != nil {
		return nil, err
	}

	fingerprint, err := parseFingerprint(doc.Xfp)
	if err != nil {
		return nil, err
	}

	path, err := wallet.ParseDerivationPath(doc.Bip84.Deriv)
	if err != nil {
		return nil, fmt.Errorf("%w: derivation path %q: %s", ErrParse, doc.Bip84.Deriv, err)
	}

	var account uint64
	if doc.Account != nil {
		account = *doc.Account
	}

	return &ExportDocument{
		Network:           network,
		MasterFingerprint: fingerprint,
		AccountXpub:       strings.TrimSpace(doc.Bip84.Xpub),
		DerivationPath:    path,
		FirstAddress:      strings.TrimSpace(doc.Bip84.First),
		Account:           account,
		RootXpub:          doc.Xpub,
	}, nil
}

func (d exportJSON) validate() error {
	if d.Chain == "" {
		return missingField("chain")
	}
	if d.Xfp == "" {
		return missingField("xfp")
	}
	if d.Bip84 == nil {
		return missingField("bip84")
	}
	if d.Bip84.Deriv == "" {
		return missingField("bip84.deriv")
	}
	if d.Bip84.First == "" {
		return missingField("bip84.first")
	}
	if d.Bip84.Xpub == "" {
		return missingField("bip84.xpub")
	}
	return nil
}

func missingField(name string) error {
	return fmt.Errorf("%w: missing %s", ErrParse, name)
}

func parseFingerprint(xfp string) (string, error) {
	buf, err := hex.DecodeString(xfp)
	if err != nil || len(buf) != fingerprintLen {
		return "", fmt.Errorf(
			"%w: master fingerprint must be a %d-byte hex string, got %q",
			ErrParse, fingerprintLen, xfp,
		)
	}
	return strings.ToUpper(xfp), nil
}
