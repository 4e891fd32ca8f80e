package repos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"gestock/internal/domain"
)

type OrderRepo struct{ db *sqlx.DB }

func NewOrderRepo(db *sqlx.DB) *OrderRepo { return &OrderRepo{db: db} }

const orderColumns = `id, order_number, client_id, product_id, quantity_ordered, order_date`

type orderRow struct {
	ID              int64  `db:"id"`
	OrderNumber     string `db:"order_number"`
	ClientID        int64  `db:"client_id"`
	ProductID       int64  `db:"product_id"`
	QuantityOrdered int64  `db:"quantity_ordered"`
	OrderDate       string `db:"order_date"`
}

// formatDate stores dates in UTC so the text column sorts chronologically.
func formatDate(t time.Time) string { return t.UTC().Format(time.RFC3339) }

func (r orderRow) order() (domain.Order, error) {
	d, err := time.Parse(time.RFC3339, r.OrderDate)
	if err != nil {
		return domain.Order{}, err
	}
	return domain.Order{
		ID:              r.ID,
		OrderNumber:     r.OrderNumber,
		ClientID:        r.ClientID,
		ProductID:       r.ProductID,
		QuantityOrdered: r.QuantityOrdered,
		OrderDate:       d,
	}, nil
}

func toOrders(rows []orderRow) ([]domain.Order, error) {
	out := make([]domain.Order, 0, len(rows))
	for _, row := range rows {
		o, err := row.order()
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

func (r *OrderRepo) Get(ctx context.Context, id int64) (domain.Order, error) {
	var row orderRow
	if err := r.db.GetContext(ctx, &row, r.db.Rebind(`SELECT `+orderColumns+` FROM orders WHERE id = ?`), id); err != nil {
		return domain.Order{}, classify(err)
	}
	return row.order()
}

// List returns orders newest first, limited to one client when clientID is set.
func (r *OrderRepo) List(ctx context.Context, clientID int64) ([]domain.Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders`
	args := []any{}
	if clientID != 0 {
		q += ` WHERE client_id = ?`
		args = append(args, clientID)
	}
	q += ` ORDER BY order_date DESC, id DESC`
	var rows []orderRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(q), args...); err != nil {
		return nil, classify(err)
	}
	return toOrders(rows)
}

// InvoiceLine is one order joined with its product, as billed.
type InvoiceLine struct {
	OrderID         int64  `db:"order_id"`
	OrderNumber     string `db:"order_number"`
	OrderDate       string `db:"order_date"`
	ProductName     string `db:"product_name"`
	QuantityOrdered int64  `db:"quantity_ordered"`
	UnitPrice       int64  `db:"unit_price"`
}

// LinesForClient returns every order of a client with its product's name and
// current unit price, oldest first.
func (r *OrderRepo) LinesForClient(ctx context.Context, clientID int64) ([]InvoiceLine, error) {
	out := []InvoiceLine{}
	err := r.db.SelectContext(ctx, &out, r.db.Rebind(`
		SELECT o.id AS order_id, o.order_number, o.order_date, p.name AS product_name,
		       o.quantity_ordered, p.unit_price
		FROM orders o
		JOIN products p ON p.id = o.product_id
		WHERE o.client_id = ?
		ORDER BY o.order_date, o.id
	`), clientID)
	return out, classify(err)
}
