package importer

import (
	"fmt"

	"github.com/tdex-network/watchonly/internal/core/application/wallet"
	"github.com/tdex-network/watchonly/internal/core/domain"
)

// WalletOpener opens a wallet session for a confirmed export.
type WalletOpener interface {
	Open(export *domain.ExportDocument) (*wallet.Session, error)
}

// Transition returns the state following the given event together with the
// background tasks to run. The returned error is the one to report for the
// event: a failed step leaves the state unchanged, while an event not
// allowed in the current state is rejected with ErrIllegalTransition.
func Transition(
	state State, event Event, opener WalletOpener,
) (State, []Effect, error) {
	switch s := state.(type) {
	case AwaitingExport:
		switch e := event.(type) {
		case ExportRequested:
			return s, []Effect{LoadExport{}}, nil
		case ExportLoaded:
			if e.Err != nil {
				return s, nil, e.Err
			}
			if e.Export == nil {
				return s, nil, fmt.Errorf("%w: missing export", domain.ErrParse)
			}
			return ConfirmingExport{e.Export}, nil, nil
		case SyncCompleted:
			// the session was closed before its sync returned
			return s, nil, nil
		}

	case ConfirmingExport:
		switch event.(type) {
		case ImportCancelled:
			return AwaitingExport{}, nil, nil
		case ImportConfirmed:
			if opener == nil {
				return s, nil, fmt.Errorf(
					"%w: missing wallet opener", domain.ErrWalletConstruction,
				)
			}
			session, err := opener.Open(s.Export)
			if err != nil {
				return s, nil, err
			}
			return ActiveWallet{session}, []Effect{SyncWallet{session}}, nil
		case SyncCompleted:
			return s, nil, nil
		}

	case ActiveWallet:
		switch e := event.(type) {
		case SyncRequested:
			return s, []Effect{SyncWallet{s.Session}}, nil
		case SyncCompleted:
			if e.SessionID != s.Session.ID() {
				return s, nil, nil
			}
			return s, nil, e.Err
		case WalletClosed:
			return AwaitingExport{}, []Effect{CloseWallet{s.Session}}, nil
		}
	}

	return state, nil, fmt.Errorf(
		"%w: %s in state %s", domain.ErrIllegalTransition, event, state,
	)
}
