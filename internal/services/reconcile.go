package services

import "gestock/internal/domain"

// Outcome is the result of planning an order operation: either Validated,
// carrying every write the operation needs, or Rejected with the reason.
// Only a Validated outcome is ever handed to the store.
type Outcome interface {
	outcome()
}

type Validated struct {
	Changes domain.Changeset
}

type Rejected struct {
	Reason error
}

func (Validated) outcome() {}
func (Rejected) outcome()  {}

// OrderChange lists the fields an update touches; nil means unchanged.
type OrderChange struct {
	Quantity    *int64
	ProductID   *int64
	ClientID    *int64
	OrderNumber *string
}

func (c OrderChange) swaps(o domain.Order) bool {
	return c.ProductID != nil && *c.ProductID != o.ProductID
}

// reserve takes qty units out of p.
func reserve(p domain.Product, qty int64) (domain.Product, error) {
	if qty > p.QuantityAvailable {
		return p, &StockError{ProductID: p.ID, Product: p.Name, Available: p.QuantityAvailable, Requested: qty}
	}
	return p.WithStock(p.QuantityAvailable - qty)
}

// release puts qty units back into p.
func release(p domain.Product, qty int64) (domain.Product, error) {
	return p.WithStock(p.QuantityAvailable + qty)
}

// PlanCreate reserves the new order's quantity on p.
func PlanCreate(p domain.Product, o domain.Order) Outcome {
	if o.QuantityOrdered <= 0 {
		return Rejected{Reason: invalid("quantity must be positive, got %d", o.QuantityOrdered)}
	}
	held, err := reserve(p, o.QuantityOrdered)
	if err != nil {
		return Rejected{Reason: err}
	}
	o.ProductID = p.ID
	return Validated{Changes: domain.Changeset{Products: []domain.Product{held}, Create: &o}}
}

// PlanUpdate applies ch to o. cur is the product o currently holds stock on;
// next is the product a swap moves it to and is only read when ch swaps.
//
// A swap releases the whole current hold on cur and reserves the (possibly
// new) quantity on next. Without a swap only the quantity difference moves.
func PlanUpdate(o domain.Order, cur domain.Product, next *domain.Product, ch OrderChange) Outcome {
	qty := o.QuantityOrdered
	if ch.Quantity != nil {
		if *ch.Quantity <= 0 {
			return Rejected{Reason: invalid("quantity must be positive, got %d", *ch.Quantity)}
		}
		qty = *ch.Quantity
	}

	updated := o
	var products []domain.Product
	switch {
	case ch.swaps(o):
		if next == nil {
			return Rejected{Reason: notFound("product", *ch.ProductID)}
		}
		refunded, err := release(cur, o.QuantityOrdered)
		if err != nil {
			return Rejected{Reason: err}
		}
		held, err := reserve(*next, qty)
		if err != nil {
			return Rejected{Reason: err}
		}
		products = []domain.Product{refunded, held}
		updated.ProductID = next.ID
	case qty != o.QuantityOrdered:
		delta := o.QuantityOrdered - qty
		if cur.QuantityAvailable+delta < 0 {
			return Rejected{Reason: &StockError{ProductID: cur.ID, Product: cur.Name, Available: cur.QuantityAvailable, Requested: -delta}}
		}
		p, err := cur.WithStock(cur.QuantityAvailable + delta)
		if err != nil {
			return Rejected{Reason: err}
		}
		products = []domain.Product{p}
	}
	updated.QuantityOrdered = qty

	if ch.ClientID != nil {
		updated.ClientID = *ch.ClientID
	}
	if ch.OrderNumber != nil {
		if *ch.OrderNumber == "" {
			return Rejected{Reason: invalid("order number cannot be empty")}
		}
		updated.OrderNumber = *ch.OrderNumber
	}
	return Validated{Changes: domain.Changeset{Products: products, Update: &updated}}
}

// PlanDelete returns the order's hold to p. p is nil when the product no
// longer exists; the order is then removed without a restock.
func PlanDelete(o domain.Order, p *domain.Product) Outcome {
	cs := domain.Changeset{Delete: o.ID}
	if p != nil {
		refunded, err := release(*p, o.QuantityOrdered)
		if err != nil {
			return Rejected{Reason: err}
		}
		cs.Products = []domain.Product{refunded}
	}
	return Validated{Changes: cs}
}
