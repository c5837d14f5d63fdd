package esplorachain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/btcsuite/btcd/chaincfg"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/watchonly/internal/core/domain"
	"github.com/tdex-network/watchonly/internal/core/ports"
	"github.com/tdex-network/watchonly/pkg/explorer"
	"github.com/tdex-network/watchonly/pkg/stats"
)

// DefaultGapLimit is the number of consecutive unused addresses after which
// the scan of a branch stops.
const DefaultGapLimit = 20

var (
	// ErrNullExplorer ...
	ErrNullExplorer = errors.New("explorer service must not be null")
	// ErrNullParams ...
	ErrNullParams = errors.New("chain params must not be null")
)

type syncer struct {
	explorer explorer.Service
	params   *chaincfg.Params
	gapLimit uint32
	metrics  *stats.SyncMetrics
}

// NewChainSyncer returns a ports.ChainSyncer fetching wallet states from an
// esplora explorer. Metrics are optional.
func NewChainSyncer(
	explorerSvc explorer.Service, params *chaincfg.Params, gapLimit int,
	metrics *stats.SyncMetrics,
) (ports.ChainSyncer, error) {
	if explorerSvc == nil {
		return nil, ErrNullExplorer
	}
	if params == nil {
		return nil, ErrNullParams
	}
	if gapLimit <= 0 {
		gapLimit = DefaultGapLimit
	}
	return &syncer{explorerSvc, params, uint32(gapLimit), metrics}, nil
}

func (s *syncer) Params() *chaincfg.Params {
	return s.params
}

func (s *syncer) Sync(
	ctx context.Context,
	descriptors []domain.OutputDescriptor,
	progress ports.ProgressFunc,
) (state *domain.WalletState, err error) {
	start := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.ObserveSync(time.Since(start), err)
		}
	}()

	tipHeight, err := s.explorer.GetBlockHeight(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch chain tip: %w", err)
	}

	addresses := make([]domain.AddressInfo, 0)
	for _, desc := range descriptors {
		branchAddresses, err := s.scanBranch(ctx, desc, progress)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s branch: %w", desc.Branch, err)
		}
		addresses = append(addresses, branchAddresses...)
	}

	utxos, err := s.fetchUtxos(ctx, addresses)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch utxos: %w", err)
	}

	if s.metrics != nil {
		s.metrics.SetChainState(len(utxos), tipHeight)
	}

	return &domain.WalletState{
		Addresses: addresses,
		Utxos:     utxos,
		TipHeight: tipHeight,
	}, nil
}

// scanBranch looks up the activity of the addresses of the given descriptor
// in batches of gap-limit size, until gap-limit consecutive addresses are
// found unused.
func (s *syncer) scanBranch(
	ctx context.Context, desc domain.OutputDescriptor,
	progress ports.ProgressFunc,
) ([]domain.AddressInfo, error) {
	logger := log.WithField("branch", desc.Branch.String())

	infos := make([]domain.AddressInfo, 0, s.gapLimit)
	// index following the last used address
	var nextUnused uint32
	used := 0

	for start := uint32(0); ; start += s.gapLimit {
		batch := make([]string, 0, s.gapLimit)
		for i := start; i < start+s.gapLimit; i++ {
			addr, err := desc.DeriveAddress(i, s.params)
			if err != nil {
				return nil, err
			}
			batch = append(batch, addr)
		}

		addrStats, err := s.explorer.GetAddressesStats(ctx, batch)
		if err != nil {
			return nil, err
		}

		for i, st := range addrStats {
			index := start + uint32(i)
			info := domain.AddressInfo{
				Address: batch[i],
				Branch:  desc.Branch,
				Index:   index,
				TxCount: st.TxCount(),
			}
			if info.IsUsed() {
				used++
				nextUnused = index + 1
			}
			infos = append(infos, info)
		}

		scanned := int(start + s.gapLimit)
		logger.WithFields(log.Fields{
			"scanned": scanned,
			"used":    used,
		}).Debug("scanned addresses")
		if progress != nil {
			progress(ports.SyncProgress{
				Branch:           desc.Branch,
				ScannedAddresses: scanned,
				UsedAddresses:    used,
			})
		}

		if start+s.gapLimit-nextUnused >= s.gapLimit {
			if s.metrics != nil {
				s.metrics.SetBranchAddresses(desc.Branch.String(), scanned, used)
			}
			return infos, nil
		}
	}
}

// fetchUtxos returns the unspents locked by the used addresses.
func (s *syncer) fetchUtxos(
	ctx context.Context, addresses []domain.AddressInfo,
) ([]domain.Utxo, error) {
	infoByAddress := make(map[string]domain.AddressInfo)
	usedAddresses := make([]string, 0)
	for _, info := range addresses {
		if !info.IsUsed() {
			continue
		}
		infoByAddress[info.Address] = info
		usedAddresses = append(usedAddresses, info.Address)
	}
	if len(usedAddresses) <= 0 {
		return []domain.Utxo{}, nil
	}

	unspents, err := s.explorer.GetUnspentsForAddresses(ctx, usedAddresses)
	if err != nil {
		return nil, err
	}

	utxos := make([]domain.Utxo, 0, len(unspents))
	for _, u := range unspents {
		info, ok := infoByAddress[u.Address()]
		if !ok {
			return nil, fmt.Errorf(
				"explorer returned utxo %s:%d for unknown address %s",
				u.Hash(), u.Index(), u.Address(),
			)
		}
		utxos = append(utxos, domain.Utxo{
			TxID:        u.Hash(),
			VOut:        u.Index(),
			Value:       u.Value(),
			Address:     u.Address(),
			Branch:      info.Branch,
			Index:       info.Index,
			Confirmed:   u.IsConfirmed(),
			BlockHeight: u.BlockHeight(),
		})
	}
	return utxos, nil
}
