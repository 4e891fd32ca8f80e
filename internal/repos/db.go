package repos

import (
	"context"
	"errors"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"

	applog "gestock/internal/log"
)

const (
	DriverSQLite = "sqlite"
	DriverPgx    = "pgx"
)

func OpenDB(driver, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	if driver == DriverSQLite {
		// one writer at a time; also keeps ":memory:" a single database
		db.SetMaxOpenConns(1)
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}
	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	return db, nil
}

func isSQLite(db *sqlx.DB) bool { return db.DriverName() == DriverSQLite }

func ensureSchema(db *sqlx.DB) error {
	schema := sqliteSchema
	if !isSQLite(db) {
		schema = postgresSchema
	}
	_, err := db.Exec(schema)
	return err
}

const sqliteSchema = `
PRAGMA foreign_keys = ON;

CREATE TABLE IF NOT EXISTS suppliers(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL,
  phone TEXT NOT NULL DEFAULT '',
  address TEXT NOT NULL DEFAULT '',
  email TEXT NOT NULL DEFAULT '',
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS clients(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  last_name TEXT NOT NULL,
  first_name TEXT NOT NULL DEFAULT '',
  address TEXT NOT NULL DEFAULT '',
  phone TEXT NOT NULL DEFAULT '',
  email TEXT NOT NULL DEFAULT '',
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS products(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL,
  supplier_id INTEGER NOT NULL REFERENCES suppliers(id) ON DELETE CASCADE,
  quantity_available INTEGER NOT NULL CHECK (quantity_available >= 0),
  unit_price INTEGER NOT NULL CHECK (unit_price >= 0),
  total INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_products_supplier ON products(supplier_id);
CREATE INDEX IF NOT EXISTS idx_products_name ON products(LOWER(name));

CREATE TABLE IF NOT EXISTS orders(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  order_number TEXT NOT NULL,
  client_id INTEGER NOT NULL REFERENCES clients(id) ON DELETE CASCADE,
  product_id INTEGER NOT NULL REFERENCES products(id) ON DELETE CASCADE,
  quantity_ordered INTEGER NOT NULL CHECK (quantity_ordered > 0),
  order_date TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_orders_client ON orders(client_id);
CREATE INDEX IF NOT EXISTS idx_orders_product ON orders(product_id);

CREATE TABLE IF NOT EXISTS users(
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL CHECK (role IN ('USER','CLIENT','SUPPLIER','ADMIN')),
  client_id INTEGER NULL REFERENCES clients(id) ON DELETE SET NULL,
  supplier_id INTEGER NULL REFERENCES suppliers(id) ON DELETE SET NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS sessions(
  id TEXT PRIMARY KEY,
  user_id TEXT NULL REFERENCES users(id) ON DELETE SET NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  last_seen TEXT
);
CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id);
`

const postgresSchema = `
CREATE TABLE IF NOT EXISTS suppliers(
  id BIGSERIAL PRIMARY KEY,
  name TEXT NOT NULL,
  phone TEXT NOT NULL DEFAULT '',
  address TEXT NOT NULL DEFAULT '',
  email TEXT NOT NULL DEFAULT '',
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS clients(
  id BIGSERIAL PRIMARY KEY,
  last_name TEXT NOT NULL,
  first_name TEXT NOT NULL DEFAULT '',
  address TEXT NOT NULL DEFAULT '',
  phone TEXT NOT NULL DEFAULT '',
  email TEXT NOT NULL DEFAULT '',
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS products(
  id BIGSERIAL PRIMARY KEY,
  name TEXT NOT NULL,
  supplier_id BIGINT NOT NULL REFERENCES suppliers(id) ON DELETE CASCADE,
  quantity_available BIGINT NOT NULL CHECK (quantity_available >= 0),
  unit_price BIGINT NOT NULL CHECK (unit_price >= 0),
  total BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_products_supplier ON products(supplier_id);

CREATE TABLE IF NOT EXISTS orders(
  id BIGSERIAL PRIMARY KEY,
  order_number TEXT NOT NULL,
  client_id BIGINT NOT NULL REFERENCES clients(id) ON DELETE CASCADE,
  product_id BIGINT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
  quantity_ordered BIGINT NOT NULL CHECK (quantity_ordered > 0),
  order_date TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_orders_client ON orders(client_id);
CREATE INDEX IF NOT EXISTS idx_orders_product ON orders(product_id);

CREATE TABLE IF NOT EXISTS users(
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL CHECK (role IN ('USER','CLIENT','SUPPLIER','ADMIN')),
  client_id BIGINT NULL REFERENCES clients(id) ON DELETE SET NULL,
  supplier_id BIGINT NULL REFERENCES suppliers(id) ON DELETE SET NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS sessions(
  id TEXT PRIMARY KEY,
  user_id TEXT NULL REFERENCES users(id) ON DELETE SET NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  last_seen TEXT
);
CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id);
`

func now() string { return time.Now().UTC().Format(time.RFC3339) }

// Seed inserts demo suppliers, clients, products and users. Safe to run on
// every startup.
func Seed(ctx context.Context, db *sqlx.DB) error {
	if err := seedIfEmpty(ctx, db); err != nil {
		return err
	}
	return seedUsers(ctx, db)
}

func seedIfEmpty(ctx context.Context, db *sqlx.DB) error {
	var n int
	if err := db.GetContext(ctx, &n, `SELECT COUNT(*) FROM suppliers`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	applog.Info(nil, "seed.demo", map[string]any{"suppliers": 1, "clients": 2, "products": 3})

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var supplierID int64
	if err := tx.GetContext(ctx, &supplierID, tx.Rebind(`
		INSERT INTO suppliers(name, phone, address, email, created_at)
		VALUES (?, ?, ?, ?, ?) RETURNING id`),
		"Sahel Distribution", "+221 33 800 00 00", "Dakar", "contact@sahel.test", now()); err != nil {
		return err
	}

	clients := [][2]string{{"Diallo", "Awa"}, {"Ndiaye", "Moussa"}}
	for _, c := range clients {
		if _, err := tx.ExecContext(ctx, tx.Rebind(`
			INSERT INTO clients(last_name, first_name, created_at) VALUES (?, ?, ?)`),
			c[0], c[1], now()); err != nil {
			return err
		}
	}

	products := []struct {
		name       string
		qty, price int64
	}{
		{"Riz parfumé 25kg", 40, 15000},
		{"Huile 5L", 25, 6500},
		{"Sucre 1kg", 0, 800},
	}
	for _, p := range products {
		if _, err := tx.ExecContext(ctx, tx.Rebind(`
			INSERT INTO products(name, supplier_id, quantity_available, unit_price, total)
			VALUES (?, ?, ?, ?, ?)`),
			p.name, supplierID, p.qty, p.price, p.qty*p.price); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// seedUsers ensures an admin, a client and a supplier account exist.
func seedUsers(ctx context.Context, db *sqlx.DB) error {
	type u struct {
		ID, Email, Name, Role, Raw string
		ClientLast, SupplierName  string
	}
	users := []u{
		{ID: "u-admin", Email: "admin@gestock.test", Name: "Admin", Role: "ADMIN", Raw: "Passw0rd!"},
		{ID: "u-awa", Email: "awa@gestock.test", Name: "Awa Diallo", Role: "CLIENT", Raw: "Passw0rd!", ClientLast: "Diallo"},
		{ID: "u-sahel", Email: "sahel@gestock.test", Name: "Sahel", Role: "SUPPLIER", Raw: "Passw0rd!", SupplierName: "Sahel Distribution"},
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, x := range users {
		var exists int
		if err := tx.GetContext(ctx, &exists, tx.Rebind(`SELECT COUNT(*) FROM users WHERE email = ?`), x.Email); err != nil {
			return err
		}
		if exists > 0 {
			continue
		}
		h, err := bcrypt.GenerateFromPassword([]byte(x.Raw), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		var clientID, supplierID *int64
		if x.ClientLast != "" {
			clientID, err = lookupID(ctx, tx, `SELECT id FROM clients WHERE last_name = ? ORDER BY id LIMIT 1`, x.ClientLast)
			if err != nil {
				return err
			}
		}
		if x.SupplierName != "" {
			supplierID, err = lookupID(ctx, tx, `SELECT id FROM suppliers WHERE name = ? ORDER BY id LIMIT 1`, x.SupplierName)
			if err != nil {
				return err
			}
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(`
			INSERT INTO users(id, email, name, password_hash, role, client_id, supplier_id, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
			x.ID, x.Email, x.Name, string(h), x.Role, clientID, supplierID, now()); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func lookupID(ctx context.Context, tx *sqlx.Tx, q string, arg any) (*int64, error) {
	var id int64
	err := tx.GetContext(ctx, &id, tx.Rebind(q), arg)
	if errors.Is(err, errNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &id, nil
}
