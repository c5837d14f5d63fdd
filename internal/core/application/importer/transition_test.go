package importer_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tdex-network/watchonly/internal/core/application/importer"
	"github.com/tdex-network/watchonly/internal/core/domain"
)

func TestTransition(t *testing.T) {
	export := newTestExport(t)
	opener := newTestOpener(t, &mockSyncer{})

	t.Run("export_requested", func(t *testing.T) {
		next, effects, err := importer.Transition(
			importer.AwaitingExport{}, importer.ExportRequested{}, opener,
		)
		require.NoError(t, err)
		require.Equal(t, importer.AwaitingExport{}, next)
		require.Equal(t, []importer.Effect{importer.LoadExport{}}, effects)
	})

	t.Run("export_loaded", func(t *testing.T) {
		next, effects, err := importer.Transition(
			importer.AwaitingExport{}, importer.ExportLoaded{Export: export}, opener,
		)
		require.NoError(t, err)
		require.Equal(t, importer.ConfirmingExport{Export: export}, next)
		require.Empty(t, effects)
	})

	t.Run("export_load_failed", func(t *testing.T) {
		loadErr := errors.New("no file selected")
		next, effects, err := importer.Transition(
			importer.AwaitingExport{}, importer.ExportLoaded{Err: loadErr}, opener,
		)
		require.ErrorIs(t, err, loadErr)
		require.Equal(t, importer.AwaitingExport{}, next)
		require.Empty(t, effects)
	})

	t.Run("import_cancelled", func(t *testing.T) {
		next, effects, err := importer.Transition(
			importer.ConfirmingExport{Export: export}, importer.ImportCancelled{}, opener,
		)
		require.NoError(t, err)
		require.Equal(t, importer.AwaitingExport{}, next)
		require.Empty(t, effects)
	})

	t.Run("import_confirmed", func(t *testing.T) {
		next, effects, err := importer.Transition(
			importer.ConfirmingExport{Export: export}, importer.ImportConfirmed{}, opener,
		)
		require.NoError(t, err)
		active, ok := next.(importer.ActiveWallet)
		require.True(t, ok)
		require.NotNil(t, active.Session)
		defer active.Session.Close()
		require.Equal(t, []importer.Effect{importer.SyncWallet{Session: active.Session}}, effects)

		next, effects, err = importer.Transition(active, importer.SyncRequested{}, opener)
		require.NoError(t, err)
		require.Equal(t, active, next)
		require.Equal(t, []importer.Effect{importer.SyncWallet{Session: active.Session}}, effects)

		syncErr := errors.New("explorer is down")
		next, effects, err = importer.Transition(
			active,
			importer.SyncCompleted{SessionID: active.Session.ID(), Err: syncErr},
			opener,
		)
		require.ErrorIs(t, err, syncErr)
		require.Equal(t, active, next)
		require.Empty(t, effects)

		// completions of previous sessions are discarded
		next, _, err = importer.Transition(
			active, importer.SyncCompleted{SessionID: "old", Err: syncErr}, opener,
		)
		require.NoError(t, err)
		require.Equal(t, active, next)

		next, effects, err = importer.Transition(active, importer.WalletClosed{}, opener)
		require.NoError(t, err)
		require.Equal(t, importer.AwaitingExport{}, next)
		require.Equal(t, []importer.Effect{importer.CloseWallet{Session: active.Session}}, effects)
	})

	t.Run("import_confirmed_open_failed", func(t *testing.T) {
		state := importer.ConfirmingExport{Export: export}
		next, effects, err := importer.Transition(
			state, importer.ImportConfirmed{},
			failingOpener{domain.ErrWalletConstruction},
		)
		require.ErrorIs(t, err, domain.ErrWalletConstruction)
		require.Equal(t, state, next)
		require.Empty(t, effects)
	})

	t.Run("mainnet_export_confirmed", func(t *testing.T) {
		mainnetExport := *export
		mainnetExport.Network = domain.NetworkMain
		state := importer.ConfirmingExport{Export: &mainnetExport}

		next, effects, err := importer.Transition(state, importer.ImportConfirmed{}, opener)
		require.ErrorIs(t, err, domain.ErrUnsupportedNetwork)
		require.Equal(t, state, next)
		require.Empty(t, effects)
	})
}

func TestIllegalTransition(t *testing.T) {
	export := newTestExport(t)
	opener := newTestOpener(t, &mockSyncer{})
	session, err := opener.Open(export)
	require.NoError(t, err)
	defer session.Close()

	tests := []struct {
		state  importer.State
		events []importer.Event
	}{
		{
			state: importer.AwaitingExport{},
			events: []importer.Event{
				importer.ImportConfirmed{},
				importer.ImportCancelled{},
				importer.SyncRequested{},
				importer.WalletClosed{},
			},
		},
		{
			state: importer.ConfirmingExport{Export: export},
			events: []importer.Event{
				importer.ExportRequested{},
				importer.ExportLoaded{Export: export},
				importer.SyncRequested{},
				importer.WalletClosed{},
			},
		},
		{
			state: importer.ActiveWallet{Session: session},
			events: []importer.Event{
				importer.ExportRequested{},
				importer.ExportLoaded{Export: export},
				importer.ImportConfirmed{},
				importer.ImportCancelled{},
			},
		},
	}

	for _, tt := range tests {
		for _, event := range tt.events {
			t.Run(tt.state.String()+"/"+event.String(), func(t *testing.T) {
				next, effects, err := importer.Transition(tt.state, event, opener)
				require.ErrorIs(t, err, domain.ErrIllegalTransition)
				require.Equal(t, tt.state, next)
				require.Empty(t, effects)
			})
		}
	}
}
