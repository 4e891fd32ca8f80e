package repos

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"

	"gestock/internal/domain"
)

type ProductRepo struct{ db *sqlx.DB }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

const productColumns = `id, name, supplier_id, quantity_available, unit_price, total`

// List returns products ordered by name. A non-empty q filters on the name,
// a non-zero supplierID on the supplier.
func (r *ProductRepo) List(ctx context.Context, q string, supplierID int64) ([]domain.Product, error) {
	where := `1 = 1`
	args := []any{}
	if q = strings.TrimSpace(q); q != "" {
		where += ` AND LOWER(name) LIKE ?`
		args = append(args, "%"+strings.ToLower(q)+"%")
	}
	if supplierID != 0 {
		where += ` AND supplier_id = ?`
		args = append(args, supplierID)
	}
	out := []domain.Product{}
	err := r.db.SelectContext(ctx, &out, r.db.Rebind(`
	  SELECT `+productColumns+`
	  FROM products
	  WHERE `+where+`
	  ORDER BY name, id`), args...)
	return out, classify(err)
}

func (r *ProductRepo) Get(ctx context.Context, id int64) (domain.Product, error) {
	var p domain.Product
	err := r.db.GetContext(ctx, &p, r.db.Rebind(`SELECT `+productColumns+` FROM products WHERE id = ?`), id)
	return p, classify(err)
}

// Create inserts p and returns it with its generated id.
func (r *ProductRepo) Create(ctx context.Context, p domain.Product) (domain.Product, error) {
	err := r.db.GetContext(ctx, &p.ID, r.db.Rebind(`
	  INSERT INTO products(name, supplier_id, quantity_available, unit_price, total)
	  VALUES (?, ?, ?, ?, ?)
	  RETURNING id`),
		p.Name, p.SupplierID, p.QuantityAvailable, p.UnitPrice, p.Total)
	return p, classify(err)
}

// Modify loads the product inside a transaction, lets fn compute the new
// state, and writes it back before anyone else can change the row.
func (r *ProductRepo) Modify(ctx context.Context, id int64, fn func(domain.Product) (domain.Product, error)) (domain.Product, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return domain.Product{}, classify(err)
	}
	defer func() { _ = tx.Rollback() }()

	q := `SELECT ` + productColumns + ` FROM products WHERE id = ?`
	if !isSQLite(r.db) {
		q += ` FOR UPDATE`
	}
	var cur domain.Product
	if err := tx.GetContext(ctx, &cur, tx.Rebind(q), id); err != nil {
		return domain.Product{}, classify(err)
	}
	next, err := fn(cur)
	if err != nil {
		return domain.Product{}, err
	}
	next.ID = cur.ID
	if _, err := tx.ExecContext(ctx, tx.Rebind(`
	  UPDATE products
	  SET name = ?, supplier_id = ?, quantity_available = ?, unit_price = ?, total = ?
	  WHERE id = ?`),
		next.Name, next.SupplierID, next.QuantityAvailable, next.UnitPrice, next.Total, next.ID); err != nil {
		return domain.Product{}, classify(err)
	}
	return next, classify(tx.Commit())
}

// Delete removes the product; its orders go with it.
func (r *ProductRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM products WHERE id = ?`), id)
	if err != nil {
		return classify(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
