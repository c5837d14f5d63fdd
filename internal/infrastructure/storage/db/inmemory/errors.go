package inmemory

import "errors"

var (
	// ErrCacheClosed is returned when accessing a closed wallet cache.
	ErrCacheClosed = errors.New("wallet cache is closed")
)
