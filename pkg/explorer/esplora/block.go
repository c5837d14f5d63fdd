package esplora

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

func (e *esplora) GetBlockHeight(ctx context.Context) (uint32, error) {
	resp, err := e.get(ctx, "/blocks/tip/height")
	if err != nil {
		return 0, err
	}

	blockHeight, err := strconv.ParseUint(strings.TrimSpace(resp), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", ErrMalformedResponse, err)
	}

	return uint32(blockHeight), nil
}
