package repos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"gestock/internal/domain"
)

// StockStore runs order operations as single transactions. On PostgreSQL the
// order and product rows read through a transaction are locked FOR UPDATE
// until it ends; on SQLite the single connection serializes transactions.
type StockStore struct {
	db   *sqlx.DB
	lock string
}

func NewStockStore(db *sqlx.DB) *StockStore {
	s := &StockStore{db: db}
	if !isSQLite(db) {
		s.lock = ` FOR UPDATE`
	}
	return s
}

// Atomically commits when fn returns nil and rolls back otherwise.
func (s *StockStore) Atomically(ctx context.Context, fn func(tx domain.StockTx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return classify(err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(&stockTx{tx: tx, lock: s.lock}); err != nil {
		return err
	}
	return classify(tx.Commit())
}

type stockTx struct {
	tx   *sqlx.Tx
	lock string
}

func (t *stockTx) GetProduct(ctx context.Context, id int64) (domain.Product, error) {
	var p domain.Product
	err := t.tx.GetContext(ctx, &p, t.tx.Rebind(`SELECT `+productColumns+` FROM products WHERE id = ?`+t.lock), id)
	return p, classify(err)
}

func (t *stockTx) GetOrder(ctx context.Context, id int64) (domain.Order, error) {
	var row orderRow
	if err := t.tx.GetContext(ctx, &row, t.tx.Rebind(`SELECT `+orderColumns+` FROM orders WHERE id = ?`+t.lock), id); err != nil {
		return domain.Order{}, classify(err)
	}
	return row.order()
}

func (t *stockTx) ClientExists(ctx context.Context, id int64) (bool, error) {
	var n int
	err := t.tx.GetContext(ctx, &n, t.tx.Rebind(`SELECT COUNT(*) FROM clients WHERE id = ?`), id)
	return n > 0, classify(err)
}

func (t *stockTx) NextOrderIDHint(ctx context.Context) (int64, error) {
	var next int64
	err := t.tx.GetContext(ctx, &next, `SELECT COALESCE(MAX(id), 0) + 1 FROM orders`)
	return next, classify(err)
}

// Apply writes the changeset. Products are written first so that a stock
// CHECK violation aborts before any order row changes.
func (t *stockTx) Apply(ctx context.Context, cs domain.Changeset) (domain.Order, error) {
	for _, p := range cs.Products {
		res, err := t.tx.ExecContext(ctx, t.tx.Rebind(`
			UPDATE products SET quantity_available = ?, total = ? WHERE id = ?`),
			p.QuantityAvailable, p.Total, p.ID)
		if err != nil {
			return domain.Order{}, classify(err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return domain.Order{}, ErrNotFound
		}
	}

	var out domain.Order
	switch {
	case cs.Create != nil:
		o := *cs.Create
		if err := t.tx.GetContext(ctx, &o.ID, t.tx.Rebind(`
			INSERT INTO orders(order_number, client_id, product_id, quantity_ordered, order_date)
			VALUES (?, ?, ?, ?, ?)
			RETURNING id`),
			o.OrderNumber, o.ClientID, o.ProductID, o.QuantityOrdered, formatDate(o.OrderDate)); err != nil {
			return domain.Order{}, classify(err)
		}
		out = o
	case cs.Update != nil:
		o := *cs.Update
		res, err := t.tx.ExecContext(ctx, t.tx.Rebind(`
			UPDATE orders
			SET order_number = ?, client_id = ?, product_id = ?, quantity_ordered = ?, order_date = ?
			WHERE id = ?`),
			o.OrderNumber, o.ClientID, o.ProductID, o.QuantityOrdered, formatDate(o.OrderDate), o.ID)
		if err != nil {
			return domain.Order{}, classify(err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return domain.Order{}, ErrNotFound
		}
		out = o
	}

	if cs.Delete != 0 {
		if _, err := t.tx.ExecContext(ctx, t.tx.Rebind(`DELETE FROM orders WHERE id = ?`), cs.Delete); err != nil {
			return domain.Order{}, classify(err)
		}
	}
	return out, nil
}
