package wallet

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/watchonly/internal/core/domain"
	"github.com/tdex-network/watchonly/internal/core/ports"
)

// Opener turns a confirmed export into a new wallet session. Every session
// gets its own, fresh cache.
type Opener struct {
	syncer   ports.ChainSyncer
	newCache ports.WalletCacheFactory
	opts     Opts
}

// NewOpener returns an Opener for sessions syncing through the given client.
func NewOpener(
	syncer ports.ChainSyncer, newCache ports.WalletCacheFactory, opts Opts,
) (*Opener, error) {
	if syncer == nil {
		return nil, fmt.Errorf("missing chain client")
	}
	if newCache == nil {
		return nil, fmt.Errorf("missing wallet cache factory")
	}
	return &Opener{syncer, newCache, opts}, nil
}

// Open derives the descriptors of the export and opens a session for them.
func (o *Opener) Open(export *domain.ExportDocument) (*Session, error) {
	external, change, err := domain.DeriveDescriptors(export)
	if err != nil {
		return nil, err
	}

	cache, err := o.newCache()
	if err != nil {
		return nil, fmt.Errorf(
			"%w: failed to create cache: %s", domain.ErrWalletConstruction, err,
		)
	}

	session, err := OpenSession(*external, *change, o.syncer, cache, o.opts)
	if err != nil {
		cache.Close()
		return nil, err
	}

	checkFirstAddress(session, export)
	return session, nil
}

// checkFirstAddress compares the first address shown by the device with the
// one derived from the external descriptor. A mismatch is only reported.
func checkFirstAddress(session *Session, export *domain.ExportDocument) {
	logger := log.WithField("session", session.ID())

	addr, err := session.external.DeriveAddress(0, export.Network.HDParams())
	if err != nil {
		logger.WithError(err).Warn("failed to derive first address")
		return
	}
	if addr != export.FirstAddress {
		logger.WithFields(log.Fields{
			"expected": export.FirstAddress,
			"derived":  addr,
		}).Warn("first address of export does not match the derived one")
		return
	}
	logger.Debug("first address of export verified")
}
