package esplora

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"github.com/tdex-network/watchonly/pkg/circuitbreaker"
	"github.com/tdex-network/watchonly/pkg/explorer"
	"github.com/tdex-network/watchonly/pkg/httputil"
	"go.uber.org/ratelimit"
)

const (
	// DefaultRequestsPerSecond is the default cap of requests sent to the
	// explorer every second.
	DefaultRequestsPerSecond = 10
	// DefaultRequestTimeout ...
	DefaultRequestTimeout = 15 * time.Second
)

type esplora struct {
	apiURL  string
	client  *httputil.Client
	limiter ratelimit.Limiter
	cb      *gobreaker.CircuitBreaker
}

// NewService returns a new esplora service as an explorer.Service interface.
// Requests are capped at the given rate, a non positive value falls back to
// DefaultRequestsPerSecond.
func NewService(
	apiURL string, requestsPerSecond int, timeout time.Duration,
) (explorer.Service, error) {
	if len(apiURL) <= 0 {
		return nil, ErrMissingURL
	}
	if requestsPerSecond <= 0 {
		requestsPerSecond = DefaultRequestsPerSecond
	}
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	return &esplora{
		apiURL:  strings.TrimSuffix(apiURL, "/"),
		client:  httputil.NewClient(timeout),
		limiter: ratelimit.New(requestsPerSecond),
		cb:      circuitbreaker.NewCircuitBreaker("explorer"),
	}, nil
}

// get makes a rate limited GET request to the given esplora endpoint through
// the circuit breaker and returns the body of the response.
// Requests aborted by the caller's context are not counted as failures by
// the breaker.
func (e *esplora) get(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s%s", e.apiURL, path)

	var ctxErr error
	iResp, err := e.cb.Execute(func() (interface{}, error) {
		e.limiter.Take()
		if err := ctx.Err(); err != nil {
			ctxErr = err
			return nil, nil
		}

		status, resp, err := e.client.NewHTTPRequest(
			ctx, http.MethodGet, url, "", nil,
		)
		if err != nil {
			if ctx.Err() != nil {
				ctxErr = err
				return nil, nil
			}
			return nil, err
		}
		if status != http.StatusOK {
			return nil, fmt.Errorf(
				"%w: GET %s: %d %s",
				explorer.ErrUnexpectedStatus, path, status, strings.TrimSpace(resp),
			)
		}
		return resp, nil
	})
	if err != nil {
		return "", err
	}
	if ctxErr != nil {
		return "", ctxErr
	}
	return iResp.(string), nil
}
