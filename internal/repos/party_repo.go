package repos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"gestock/internal/domain"
)

type ClientRepo struct{ db *sqlx.DB }

func NewClientRepo(db *sqlx.DB) *ClientRepo { return &ClientRepo{db: db} }

func (r *ClientRepo) Get(ctx context.Context, id int64) (domain.Client, error) {
	var c domain.Client
	err := r.db.GetContext(ctx, &c, r.db.Rebind(`
		SELECT id, last_name, first_name, address, phone, email, COALESCE(created_at,'') AS created_at
		FROM clients WHERE id = ?`), id)
	return c, classify(err)
}

func (r *ClientRepo) List(ctx context.Context) ([]domain.Client, error) {
	out := []domain.Client{}
	err := r.db.SelectContext(ctx, &out, `
		SELECT id, last_name, first_name, address, phone, email, COALESCE(created_at,'') AS created_at
		FROM clients ORDER BY last_name, first_name, id`)
	return out, classify(err)
}

// Create inserts a client record. Used by seeding and tests; client
// management itself lives outside this service.
func (r *ClientRepo) Create(ctx context.Context, c domain.Client) (domain.Client, error) {
	err := r.db.GetContext(ctx, &c.ID, r.db.Rebind(`
		INSERT INTO clients(last_name, first_name, address, phone, email, created_at)
		VALUES (?, ?, ?, ?, ?, ?) RETURNING id`),
		c.LastName, c.FirstName, c.Address, c.Phone, c.Email, now())
	return c, classify(err)
}

type SupplierRepo struct{ db *sqlx.DB }

func NewSupplierRepo(db *sqlx.DB) *SupplierRepo { return &SupplierRepo{db: db} }

func (r *SupplierRepo) Get(ctx context.Context, id int64) (domain.Supplier, error) {
	var s domain.Supplier
	err := r.db.GetContext(ctx, &s, r.db.Rebind(`
		SELECT id, name, phone, address, email, COALESCE(created_at,'') AS created_at
		FROM suppliers WHERE id = ?`), id)
	return s, classify(err)
}

func (r *SupplierRepo) Create(ctx context.Context, s domain.Supplier) (domain.Supplier, error) {
	err := r.db.GetContext(ctx, &s.ID, r.db.Rebind(`
		INSERT INTO suppliers(name, phone, address, email, created_at)
		VALUES (?, ?, ?, ?, ?) RETURNING id`),
		s.Name, s.Phone, s.Address, s.Email, now())
	return s, classify(err)
}

func (r *SupplierRepo) List(ctx context.Context) ([]domain.Supplier, error) {
	out := []domain.Supplier{}
	err := r.db.SelectContext(ctx, &out, `
		SELECT id, name, phone, address, email, COALESCE(created_at,'') AS created_at
		FROM suppliers ORDER BY name, id`)
	return out, classify(err)
}
