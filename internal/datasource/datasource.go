package datasource

import (
	"context"
	"io"
)

// Source is anything that can open a byte stream of raw input data.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}
