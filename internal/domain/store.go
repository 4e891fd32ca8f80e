package domain

import "context"

// StockTx is one open transaction on the entity store. Reads made through it
// see, and lock, the rows that a later Apply in the same transaction writes.
type StockTx interface {
	GetProduct(ctx context.Context, id int64) (Product, error)
	GetOrder(ctx context.Context, id int64) (Order, error)
	ClientExists(ctx context.Context, id int64) (bool, error)
	// NextOrderIDHint is advisory only; it is not reserved.
	NextOrderIDHint(ctx context.Context) (int64, error)
	Apply(ctx context.Context, cs Changeset) (Order, error)
}
