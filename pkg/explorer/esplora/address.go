package esplora

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tdex-network/watchonly/pkg/explorer"
	"golang.org/x/sync/errgroup"
)

func (e *esplora) GetAddressStats(
	ctx context.Context, addr string,
) (explorer.AddressStats, error) {
	resp, err := e.get(ctx, fmt.Sprintf("/address/%s", addr))
	if err != nil {
		return nil, err
	}

	stats := addressStats{}
	if err := json.Unmarshal([]byte(resp), &stats); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformedResponse, err)
	}
	if len(stats.Addr) <= 0 {
		stats.Addr = addr
	}
	return stats, nil
}

func (e *esplora) GetAddressesStats(
	ctx context.Context, addresses []string,
) ([]explorer.AddressStats, error) {
	stats := make([]explorer.AddressStats, len(addresses))

	eg, ctx := errgroup.WithContext(ctx)
	for i := range addresses {
		i := i
		eg.Go(func() error {
			s, err := e.GetAddressStats(ctx, addresses[i])
			if err != nil {
				return err
			}
			stats[i] = s
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	return stats, nil
}
