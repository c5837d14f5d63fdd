package ports

import "context"

// ExportSource provides the raw content of an export document, for example
// by letting the user pick a file.
type ExportSource interface {
	Select(ctx context.Context) ([]byte, error)
}
