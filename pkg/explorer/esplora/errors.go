package esplora

import "errors"

var (
	// ErrMissingURL ...
	ErrMissingURL = errors.New("explorer url must not be empty")
	// ErrMalformedResponse is returned if the explorer response can't be
	// decoded.
	ErrMalformedResponse = errors.New("malformed explorer response")
)
