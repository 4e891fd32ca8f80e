package domain

import (
	"errors"
	"math"
	"time"
)

var (
	ErrNegativeStock = errors.New("stock cannot be negative")
	ErrNegativePrice = errors.New("unit price cannot be negative")
	ErrTotalOverflow = errors.New("stock value overflows")
)

type Supplier struct {
	ID        int64  `db:"id" json:"id"`
	Name      string `db:"name" json:"name"`
	Phone     string `db:"phone" json:"phone"`
	Address   string `db:"address" json:"address"`
	Email     string `db:"email" json:"email"`
	CreatedAt string `db:"created_at" json:"created_at"`
}

type Client struct {
	ID        int64  `db:"id" json:"id"`
	LastName  string `db:"last_name" json:"last_name"`
	FirstName string `db:"first_name" json:"first_name"`
	Address   string `db:"address" json:"address"`
	Phone     string `db:"phone" json:"phone"`
	Email     string `db:"email" json:"email"`
	CreatedAt string `db:"created_at" json:"created_at"`
}

// Product is a stocked item. Total is stored alongside the stock and must
// always equal QuantityAvailable * UnitPrice; use WithStock / WithPrice to
// change either side.
type Product struct {
	ID                int64  `db:"id" json:"id"`
	Name              string `db:"name" json:"name"`
	SupplierID        int64  `db:"supplier_id" json:"supplier_id"`
	QuantityAvailable int64  `db:"quantity_available" json:"quantity_available"`
	UnitPrice         int64  `db:"unit_price" json:"unit_price"`
	Total             int64  `db:"total" json:"total"`
}

// StockValue is the exact integer value of qty units at price.
func StockValue(qty, price int64) (int64, error) {
	if qty == 0 || price == 0 {
		return 0, nil
	}
	v := qty * price
	if v/qty != price {
		return 0, ErrTotalOverflow
	}
	return v, nil
}

// AddValue sums two stock values, failing instead of wrapping.
func AddValue(a, b int64) (int64, error) {
	if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
		return 0, ErrTotalOverflow
	}
	return a + b, nil
}

// WithStock returns a copy of p holding qty units with its total recomputed.
func (p Product) WithStock(qty int64) (Product, error) {
	if qty < 0 {
		return p, ErrNegativeStock
	}
	total, err := StockValue(qty, p.UnitPrice)
	if err != nil {
		return p, err
	}
	p.QuantityAvailable = qty
	p.Total = total
	return p, nil
}

// WithPrice returns a copy of p at the given unit price with its total recomputed.
func (p Product) WithPrice(price int64) (Product, error) {
	if price < 0 {
		return p, ErrNegativePrice
	}
	p.UnitPrice = price
	return p.WithStock(p.QuantityAvailable)
}

// Order holds QuantityOrdered units of its product for as long as it exists.
type Order struct {
	ID              int64     `json:"id"`
	OrderNumber     string    `json:"order_number"`
	ClientID        int64     `json:"client_id"`
	ProductID       int64     `json:"product_id"`
	QuantityOrdered int64     `json:"quantity_ordered"`
	OrderDate       time.Time `json:"order_date"`
}

// Changeset is every write one order operation needs, applied as a unit.
type Changeset struct {
	Products []Product
	Create   *Order
	Update   *Order
	Delete   int64
}

type Availability struct {
	Status string `json:"status"` // IN_STOCK | LOW_STOCK | OUT_OF_STOCK
	Qty    int64  `json:"qty"`
}
