package advisor

import (
	"context"

	"savewise/internal/domain/prediction"
)

// LatestReader reads the newest stored prediction
type LatestReader interface {
	ReadLatest(ctx context.Context) (*prediction.Record, bool)
}

// Resolver finds the record the advisor should talk about
type Resolver struct {
	reader LatestReader
}

// NewResolver creates a resolver over the persistence read path
func NewResolver(reader LatestReader) *Resolver {
	return &Resolver{reader: reader}
}

// Resolve returns the latest record. ok is false when nothing is stored anywhere.
func (r *Resolver) Resolve(ctx context.Context) (*prediction.Record, bool) {
	return r.reader.ReadLatest(ctx)
}
