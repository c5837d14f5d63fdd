package wallet

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/watchonly/internal/core/domain"
	"github.com/tdex-network/watchonly/internal/core/ports"
)

var (
	// ErrSessionClosed is returned when operating on a closed session.
	ErrSessionClosed = errors.New("wallet session is closed")
)

// Opts are the optional settings of a wallet session.
type Opts struct {
	// IncludeUnconfirmed makes Balance count unconfirmed outputs too.
	IncludeUnconfirmed bool
	// Progress, if defined, receives the progress of every sync.
	Progress ports.ProgressFunc
}

// Session is a watch-only wallet built from the external and change
// descriptors of an account. Its descriptors never change: a different
// wallet always means a new session.
type Session struct {
	id       string
	external domain.OutputDescriptor
	change   domain.OutputDescriptor
	params   *chaincfg.Params
	syncer   ports.ChainSyncer
	cache    ports.WalletCache
	opts     Opts

	// syncLock serializes syncs, lock guards the fields below it.
	syncLock *sync.Mutex
	lock     *sync.Mutex

	closed     bool
	syncSeq    uint64
	cancelSync context.CancelFunc
	lastSyncAt time.Time
}

// OpenSession builds a watch-only wallet from the given descriptors, syncing
// through the given client and keeping its state in the given cache.
func OpenSession(
	external, change domain.OutputDescriptor,
	syncer ports.ChainSyncer,
	cache ports.WalletCache,
	opts Opts,
) (*Session, error) {
	if syncer == nil {
		return nil, fmt.Errorf("%w: missing chain client", domain.ErrWalletConstruction)
	}
	if cache == nil {
		return nil, fmt.Errorf("%w: missing wallet cache", domain.ErrWalletConstruction)
	}
	if external.Branch != domain.BranchExternal {
		return nil, fmt.Errorf(
			"%w: expected external descriptor, got %s",
			domain.ErrWalletConstruction, external.Branch,
		)
	}
	if change.Branch != domain.BranchChange {
		return nil, fmt.Errorf(
			"%w: expected change descriptor, got %s",
			domain.ErrWalletConstruction, change.Branch,
		)
	}
	if !external.SameAccount(change) {
		return nil, fmt.Errorf(
			"%w: external and change descriptors belong to different accounts",
			domain.ErrWalletConstruction,
		)
	}

	params := syncer.Params()
	if !external.Network.IsCompatible(params) {
		name := "<nil>"
		if params != nil {
			name = params.Name
		}
		return nil, fmt.Errorf(
			"%w: descriptors target %s network, chain client is configured for %s",
			domain.ErrWalletConstruction, external.Network, name,
		)
	}
	for _, desc := range []domain.OutputDescriptor{external, change} {
		if _, err := desc.DeriveAddress(0, params); err != nil {
			return nil, fmt.Errorf(
				"%w: %s descriptor: %s", domain.ErrWalletConstruction, desc.Branch, err,
			)
		}
	}

	return &Session{
		id:       uuid.New().String(),
		external: external,
		change:   change,
		params:   params,
		syncer:   syncer,
		cache:    cache,
		opts:     opts,
		syncLock: &sync.Mutex{},
		lock:     &sync.Mutex{},
	}, nil
}

// ID returns the unique identifier of the session.
func (s *Session) ID() string {
	return s.id
}

// Descriptors returns the external and change descriptors of the wallet.
func (s *Session) Descriptors() (external, change domain.OutputDescriptor) {
	return s.external, s.change
}

// Params returns the chain params addresses are encoded for.
func (s *Session) Params() *chaincfg.Params {
	return s.params
}

// LastSyncAt returns the time of the last successful sync, zero if the
// wallet has never been synced.
func (s *Session) LastSyncAt() time.Time {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.lastSyncAt
}

// Sync fetches the chain state of the wallet and replaces the cached one.
// Syncs are serialized and a new one cancels any sync still in flight. On
// failure the previously cached state is left untouched.
func (s *Session) Sync(ctx context.Context) error {
	ctx, seq, err := s.beginSync(ctx)
	if err != nil {
		return err
	}
	defer s.endSync(seq)

	s.syncLock.Lock()
	defer s.syncLock.Unlock()

	// superseded while waiting for the previous sync to return
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %s", domain.ErrSync, err)
	}

	logger := log.WithField("session", s.id)
	logger.Debug("sync started")
	start := time.Now()

	state, err := s.syncer.Sync(
		ctx, []domain.OutputDescriptor{s.external, s.change}, s.opts.Progress,
	)
	if err != nil {
		logger.WithError(err).Warn("sync failed, keeping cached state")
		return fmt.Errorf("%w: %s", domain.ErrSync, err)
	}
	if err := ctx.Err(); err != nil {
		logger.Debug("sync superseded, discarding result")
		return fmt.Errorf("%w: %s", domain.ErrSync, err)
	}
	if err := s.cache.ReplaceState(ctx, *state); err != nil {
		return fmt.Errorf("%w: failed to update cache: %s", domain.ErrSync, err)
	}

	s.lock.Lock()
	s.lastSyncAt = time.Now()
	s.lock.Unlock()

	logger.WithFields(log.Fields{
		"addresses": len(state.Addresses),
		"utxos":     len(state.Utxos),
		"height":    state.TipHeight,
		"elapsed":   time.Since(start).String(),
	}).Info("sync completed")
	return nil
}

// Balance returns the value of the cached unspents of both branches.
// Unconfirmed ones are included only if the session is configured to.
func (s *Session) Balance(ctx context.Context) (btcutil.Amount, error) {
	balance, err := s.Balances(ctx)
	if err != nil {
		return 0, err
	}
	if s.opts.IncludeUnconfirmed {
		return btcutil.Amount(balance.Total()), nil
	}
	return btcutil.Amount(balance.Confirmed), nil
}

// Balances returns the confirmed and unconfirmed balance of the wallet.
func (s *Session) Balances(ctx context.Context) (domain.Balance, error) {
	if s.isClosed() {
		return domain.Balance{}, ErrSessionClosed
	}
	utxos, err := s.cache.GetUtxos(ctx)
	if err != nil {
		return domain.Balance{}, err
	}
	return domain.CalcBalance(utxos), nil
}

// Utxos returns the cached unspents of the wallet.
func (s *Session) Utxos(ctx context.Context) ([]domain.Utxo, error) {
	if s.isClosed() {
		return nil, ErrSessionClosed
	}
	return s.cache.GetUtxos(ctx)
}

// TipHeight returns the chain height as of the last sync.
func (s *Session) TipHeight(ctx context.Context) (uint32, error) {
	if s.isClosed() {
		return 0, ErrSessionClosed
	}
	return s.cache.GetTipHeight(ctx)
}

// NextReceiveAddress returns the external address following the last used
// one according to the cached state. Repeated calls between syncs return the
// same address.
func (s *Session) NextReceiveAddress(ctx context.Context) (string, error) {
	if s.isClosed() {
		return "", ErrSessionClosed
	}
	addresses, err := s.cache.GetAddresses(ctx, domain.BranchExternal)
	if err != nil {
		return "", err
	}
	index := domain.NextUnusedIndex(addresses, domain.BranchExternal)
	return s.external.DeriveAddress(index, s.params)
}

// Close cancels any sync in flight and releases the cache. A closed
// session can't be reopened.
func (s *Session) Close() {
	s.lock.Lock()
	if s.closed {
		s.lock.Unlock()
		return
	}
	s.closed = true
	if s.cancelSync != nil {
		s.cancelSync()
		s.cancelSync = nil
	}
	s.lock.Unlock()

	// wait for a sync in flight to give up before releasing the cache
	s.syncLock.Lock()
	s.cache.Close()
	s.syncLock.Unlock()

	log.WithField("session", s.id).Debug("session closed")
}

func (s *Session) beginSync(
	ctx context.Context,
) (context.Context, uint64, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.closed {
		return nil, 0, fmt.Errorf("%w: %s", domain.ErrSync, ErrSessionClosed)
	}
	if s.cancelSync != nil {
		s.cancelSync()
	}
	ctx, cancel := context.WithCancel(ctx)
	s.syncSeq++
	s.cancelSync = cancel
	return ctx, s.syncSeq, nil
}

func (s *Session) endSync(seq uint64) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.syncSeq == seq && s.cancelSync != nil {
		s.cancelSync()
		s.cancelSync = nil
	}
}

func (s *Session) isClosed() bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.closed
}
