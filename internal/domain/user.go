package domain

import "database/sql"

const (
	RoleUser     = "USER"
	RoleClient   = "CLIENT"
	RoleSupplier = "SUPPLIER"
	RoleAdmin    = "ADMIN"
)

type User struct {
	ID         string        `db:"id"`
	Email      string        `db:"email"`
	Name       string        `db:"name"`
	Hash       string        `db:"password_hash"`
	Role       string        `db:"role"`
	ClientID   sql.NullInt64 `db:"client_id"`
	SupplierID sql.NullInt64 `db:"supplier_id"`
}

// Profile is what a signed-in user acts as. It is one of BaseProfile,
// ClientProfile, SupplierProfile or AdminProfile.
type Profile interface {
	profile()
}

type BaseProfile struct{}

type ClientProfile struct{ ClientID int64 }

type SupplierProfile struct{ SupplierID int64 }

type AdminProfile struct{}

func (BaseProfile) profile()     {}
func (ClientProfile) profile()   {}
func (SupplierProfile) profile() {}
func (AdminProfile) profile()    {}

// Profile resolves the user's role. A client or supplier role without its
// linked record falls back to BaseProfile.
func (u User) Profile() Profile {
	switch u.Role {
	case RoleAdmin:
		return AdminProfile{}
	case RoleClient:
		if u.ClientID.Valid {
			return ClientProfile{ClientID: u.ClientID.Int64}
		}
	case RoleSupplier:
		if u.SupplierID.Valid {
			return SupplierProfile{SupplierID: u.SupplierID.Int64}
		}
	}
	return BaseProfile{}
}

func (u User) IsAdmin() bool {
	_, ok := u.Profile().(AdminProfile)
	return ok
}
