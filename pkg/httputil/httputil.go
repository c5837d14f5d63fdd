package httputil

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultTimeout = 30 * time.Second

// Client wraps an *http.Client to make plain text requests.
type Client struct {
	client *http.Client
}

// NewClient returns a Client with the given request timeout. A zero timeout
// falls back to the default one.
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{&http.Client{Timeout: timeout}}
}

// NewHTTPRequest makes a request and returns status code and body of the
// response.
func (c *Client) NewHTTPRequest(
	ctx context.Context, method, url, bodyString string,
	header map[string]string,
) (int, string, error) {
	switch method {
	case http.MethodGet, http.MethodDelete:
		return c.do(ctx, method, url, nil, header)
	case http.MethodPost:
		return c.do(ctx, method, url, strings.NewReader(bodyString), header)
	default:
		return 0, "", fmt.Errorf("verb not supported %s", method)
	}
}

func (c *Client) do(
	ctx context.Context, method, url string, body io.Reader,
	header map[string]string,
) (int, string, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return 0, "", err
	}
	for key, value := range header {
		req.Header.Set(key, value)
	}

	rs, err := c.client.Do(req)
	if err != nil {
		return 0, "", err
	}
	defer rs.Body.Close()

	bodyBytes, err := io.ReadAll(rs.Body)
	if err != nil {
		return 0, "", err
	}

	return rs.StatusCode, string(bodyBytes), nil
}
