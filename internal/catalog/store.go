package catalog

import "context"

// Store owns the product collection. Implementations assign ids themselves;
// List returns products in insertion order and never exposes internal state.
type Store interface {
	Ping(ctx context.Context) error
	List(ctx context.Context) ([]Product, error)
	Get(ctx context.Context, id int64) (Product, bool, error)
	Create(ctx context.Context, name string) (Product, error)
	Len(ctx context.Context) (int, error)
}
