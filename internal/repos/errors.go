package repos

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound = errors.New("no rows")
	// ErrConflict means the database gave up on the transaction because of a
	// concurrent one (serialization failure, deadlock, lock timeout).
	ErrConflict = errors.New("concurrent update conflict")
)

var errNoRows = sql.ErrNoRows

// classify maps driver errors onto the package sentinels, keeping the
// original error in the chain.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01", "55P03":
			return errors.Join(ErrConflict, err)
		}
	}
	return err
}
