package importer

import (
	"fmt"

	"github.com/tdex-network/watchonly/internal/core/application/wallet"
	"github.com/tdex-network/watchonly/internal/core/domain"
)

// State is the state of the import flow. It's one of AwaitingExport,
// ConfirmingExport or ActiveWallet.
type State interface {
	fmt.Stringer
	isState()
}

// AwaitingExport is the initial state, no wallet is loaded.
type AwaitingExport struct{}

// ConfirmingExport holds a parsed export waiting for the user to confirm or
// cancel the import.
type ConfirmingExport struct {
	Export *domain.ExportDocument
}

// ActiveWallet owns the session of the imported wallet.
type ActiveWallet struct {
	Session *wallet.Session
}

func (AwaitingExport) isState()   {}
func (ConfirmingExport) isState() {}
func (ActiveWallet) isState()     {}

func (AwaitingExport) String() string   { return "AwaitingExport" }
func (ConfirmingExport) String() string { return "ConfirmingExport" }
func (ActiveWallet) String() string     { return "ActiveWallet" }

// Event is something that happened, either requested by the user or
// produced by a completed background task.
type Event interface {
	fmt.Stringer
	isEvent()
}

// ExportRequested asks to select and load an export document.
type ExportRequested struct{}

// ExportLoaded carries the outcome of loading an export document.
type ExportLoaded struct {
	Export *domain.ExportDocument
	Err    error
}

// ImportConfirmed accepts the export being confirmed.
type ImportConfirmed struct{}

// ImportCancelled discards the export being confirmed.
type ImportCancelled struct{}

// SyncRequested asks to sync the active wallet.
type SyncRequested struct{}

// SyncCompleted carries the outcome of a sync of the given session.
type SyncCompleted struct {
	SessionID string
	Err       error
}

// WalletClosed closes the active wallet and restarts the import.
type WalletClosed struct{}

func (ExportRequested) isEvent() {}
func (ExportLoaded) isEvent()    {}
func (ImportConfirmed) isEvent() {}
func (ImportCancelled) isEvent() {}
func (SyncRequested) isEvent()   {}
func (SyncCompleted) isEvent()   {}
func (WalletClosed) isEvent()    {}

func (ExportRequested) String() string { return "ExportRequested" }
func (ExportLoaded) String() string    { return "ExportLoaded" }
func (ImportConfirmed) String() string { return "ImportConfirmed" }
func (ImportCancelled) String() string { return "ImportCancelled" }
func (SyncRequested) String() string   { return "SyncRequested" }
func (SyncCompleted) String() string   { return "SyncCompleted" }
func (WalletClosed) String() string    { return "WalletClosed" }

// Effect is a background task requested by a transition.
type Effect interface {
	isEffect()
}

// LoadExport selects and parses an export document.
type LoadExport struct{}

// SyncWallet syncs the given session.
type SyncWallet struct {
	Session *wallet.Session
}

// CloseWallet releases the given session.
type CloseWallet struct {
	Session *wallet.Session
}

func (LoadExport) isEffect()  {}
func (SyncWallet) isEffect()  {}
func (CloseWallet) isEffect() {}

// Update is published for every event processed by the machine.
type Update struct {
	State State
	Event Event
	// Err is the error reported by the event, if any.
	Err error
}
