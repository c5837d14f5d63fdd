package esplora

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tdex-network/watchonly/pkg/explorer"
	"golang.org/x/sync/errgroup"
)

func (e *esplora) GetUnspents(
	ctx context.Context, addr string,
) ([]explorer.Utxo, error) {
	resp, err := e.get(ctx, fmt.Sprintf("/address/%s/utxo", addr))
	if err != nil {
		return nil, fmt.Errorf("error on retrieving utxos: %w", err)
	}

	var witnessOuts []witnessUtxo
	if err := json.Unmarshal([]byte(resp), &witnessOuts); err != nil {
		return nil, fmt.Errorf(
			"error on retrieving utxos: %w: %s", ErrMalformedResponse, err,
		)
	}

	unspents := make([]explorer.Utxo, 0, len(witnessOuts))
	for _, out := range witnessOuts {
		out.UAddress = addr
		unspents = append(unspents, out)
	}
	return unspents, nil
}

func (e *esplora) GetUnspentsForAddresses(
	ctx context.Context, addresses []string,
) ([]explorer.Utxo, error) {
	unspentsByAddress := make([][]explorer.Utxo, len(addresses))

	eg, ctx := errgroup.WithContext(ctx)
	for i := range addresses {
		i := i
		eg.Go(func() error {
			unspents, err := e.GetUnspents(ctx, addresses[i])
			if err != nil {
				return err
			}
			unspentsByAddress[i] = unspents
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	unspents := make([]explorer.Utxo, 0)
	for _, u := range unspentsByAddress {
		unspents = append(unspents, u...)
	}
	return unspents, nil
}
