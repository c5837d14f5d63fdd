package domain

import "errors"

var (
	// ErrParse is returned when the export document or one of its fields, like
	// the derivation path, is missing or malformed.
	ErrParse = errors.New("malformed export document")
	// ErrUnsupportedNetwork is returned when the chain tag of the export is
	// not recognized or when the network is not allowed by the derivation
	// policy.
	ErrUnsupportedNetwork = errors.New("unsupported network")
	// ErrKeyParse is returned when the extended public key can't be parsed.
	ErrKeyParse = errors.New("invalid extended public key")
	// ErrWalletConstruction is returned when a watch-only wallet can't be
	// built from the given descriptors.
	ErrWalletConstruction = errors.New("failed to construct wallet")
	// ErrSync is returned when the wallet fails to sync with the chain source.
	// The previously cached state is retained.
	ErrSync = errors.New("failed to sync wallet")
	// ErrExportSource is returned when the export file can't be selected or
	// read.
	ErrExportSource = errors.New("failed to load export file")
	// ErrIllegalTransition is returned when an event is not allowed in the
	// current state of the import flow.
	ErrIllegalTransition = errors.New("illegal transition")
)
