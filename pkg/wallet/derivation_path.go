package wallet

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
)

const (
	// MaxHardenedValue is the max value for hardened indexes of BIP32
	// derivation paths
	MaxHardenedValue = math.MaxUint32 - hdkeychain.HardenedKeyStart
)

var (
	// ErrNullDerivationPath ...
	ErrNullDerivationPath = errors.New("derivation path must not be null")
	// ErrMalformedDerivationPath ...
	ErrMalformedDerivationPath = errors.New(
		"path must not start or end with a '/' and " +
			"can optionally start with 'm/' for absolute paths",
	)
)

// DerivationPath is the internal representation of a BIP32 derivation path.
// Each step is a 32-bit child index, hardened when >= HardenedKeyStart.
type DerivationPath []uint32

// ParseDerivationPath converts a derivation path string to the
// internal binary representation.
// Hardened steps can be marked either with the "'" or the "h" suffix.
func ParseDerivationPath(strPath string) (DerivationPath, error) {
	var path DerivationPath

	elems := strings.Split(strPath, "/")
	switch {
	case strings.TrimSpace(strPath) == "":
		return nil, ErrNullDerivationPath
	case containsEmptyString(elems):
		return nil, ErrMalformedDerivationPath
	case len(elems) < 2:
		return nil, ErrMalformedDerivationPath
	}

	if strings.TrimSpace(elems[0]) == "m" {
		elems = elems[1:]
	}

	for _, elem := range elems {
		step, err := parseStep(elem)
		if err != nil {
			return nil, err
		}
		path = append(path, step)
	}

	return path, nil
}

func parseStep(elem string) (uint32, error) {
	elem = strings.TrimSpace(elem)

	hardened := strings.HasSuffix(elem, "'") || strings.HasSuffix(elem, "h")
	if hardened {
		elem = strings.TrimSpace(elem[:len(elem)-1])
	}

	if !isDecimal(elem) {
		return 0, fmt.Errorf("invalid elem '%s' in path", elem)
	}
	value, err := strconv.ParseUint(elem, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("elem %s must be in range [0, %d]", elem, uint32(math.MaxUint32))
	}

	if !hardened {
		return uint32(value), nil
	}
	if value > MaxHardenedValue {
		return 0, fmt.Errorf("elem %d must be in hardened range [0, %d]", value, MaxHardenedValue)
	}
	return hdkeychain.HardenedKeyStart + uint32(value), nil
}

func isDecimal(elem string) bool {
	if len(elem) <= 0 {
		return false
	}
	for _, c := range elem {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// Extend returns a new path made of the receiver followed by the given steps.
// The receiver is never modified.
func (path DerivationPath) Extend(steps ...uint32) DerivationPath {
	extended := make(DerivationPath, 0, len(path)+len(steps))
	extended = append(extended, path...)
	return append(extended, steps...)
}

// IsHardened returns whether the i-th step of the path is hardened.
func (path DerivationPath) IsHardened(i int) bool {
	return path[i] >= hdkeychain.HardenedKeyStart
}

// String converts a binary derivation path to its canonical representation
func (path DerivationPath) String() string {
	return path.format("m", "'")
}

// DescriptorString returns the path without the "m" prefix and with "'"
// markers, as used in key origin info of output descriptors, ie. 84'/1'/0'.
func (path DerivationPath) DescriptorString() string {
	return strings.TrimPrefix(path.format("", "'"), "/")
}

func (path DerivationPath) format(root, hardenedMarker string) string {
	if len(path) <= 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(root)
	for _, component := range path {
		hardened := component >= hdkeychain.HardenedKeyStart
		if hardened {
			component -= hdkeychain.HardenedKeyStart
		}
		fmt.Fprintf(&b, "/%d", component)
		if hardened {
			b.WriteString(hardenedMarker)
		}
	}
	return b.String()
}

func containsEmptyString(composedPath []string) bool {
	for _, s := range composedPath {
		if strings.TrimSpace(s) == "" {
			return true
		}
	}
	return false
}
