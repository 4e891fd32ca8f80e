package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"gestock/internal/domain"
	"gestock/internal/repos"
)

// EntityStore runs fn inside one transaction, committing when it returns nil.
type EntityStore interface {
	Atomically(ctx context.Context, fn func(tx domain.StockTx) error) error
}

// OrderService keeps orders and product stock reconciled. Every operation
// reads, validates and writes inside a single store transaction.
type OrderService struct {
	Store  EntityStore
	Orders *repos.OrderRepo
	Now    func() time.Time
	Number func(hint int64) string
}

func NewOrderService(store EntityStore, orders *repos.OrderRepo) *OrderService {
	return &OrderService{Store: store, Orders: orders, Now: time.Now, Number: OrderNumber}
}

// OrderNumber builds COM-<hint>-<random 1000..99999>.
func OrderNumber(hint int64) string {
	return fmt.Sprintf("COM-%d-%d", hint, 1000+rand.IntN(99000))
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

type CreateOrder struct {
	ClientID    int64
	ProductID   int64
	Quantity    int64
	OrderNumber string
	OrderDate   *time.Time
}

type DeleteOutcome int

const (
	OrderDeleted DeleteOutcome = iota
	OrderDeletedWithoutRestock
	OrderAlreadyDeleted
)

func (d DeleteOutcome) String() string {
	switch d {
	case OrderDeleted:
		return "deleted"
	case OrderDeletedWithoutRestock:
		return "deleted_without_restock"
	case OrderAlreadyDeleted:
		return "already_deleted"
	}
	return "unknown"
}

func (s *OrderService) Create(ctx context.Context, req CreateOrder) (domain.Order, error) {
	if req.Quantity <= 0 {
		return domain.Order{}, invalid("quantity must be positive, got %d", req.Quantity)
	}
	var created domain.Order
	err := s.run(ctx, "create order", func(tx domain.StockTx) error {
		p, err := tx.GetProduct(ctx, req.ProductID)
		if err != nil {
			return lookupErr("create order", "product", req.ProductID, err)
		}
		if err := s.checkClient(ctx, tx, "create order", req.ClientID); err != nil {
			return err
		}

		o := domain.Order{
			OrderNumber:     req.OrderNumber,
			ClientID:        req.ClientID,
			QuantityOrdered: req.Quantity,
		}
		if o.OrderNumber == "" {
			hint, err := tx.NextOrderIDHint(ctx)
			if err != nil {
				return &PersistenceError{Op: "create order", Err: err}
			}
			o.OrderNumber = s.Number(hint)
		}
		if req.OrderDate != nil {
			o.OrderDate = *req.OrderDate
		} else {
			o.OrderDate = midnight(s.Now())
		}

		cs, err := accept(PlanCreate(p, o))
		if err != nil {
			return err
		}
		created, err = tx.Apply(ctx, cs)
		if err != nil {
			return &PersistenceError{Op: "create order", Err: err}
		}
		return nil
	})
	return created, err
}

func (s *OrderService) Update(ctx context.Context, id int64, ch OrderChange) (domain.Order, error) {
	if ch.Quantity != nil && *ch.Quantity <= 0 {
		return domain.Order{}, invalid("quantity must be positive, got %d", *ch.Quantity)
	}
	var updated domain.Order
	err := s.run(ctx, "update order", func(tx domain.StockTx) error {
		o, err := tx.GetOrder(ctx, id)
		if err != nil {
			return lookupErr("update order", "order", id, err)
		}
		cur, err := tx.GetProduct(ctx, o.ProductID)
		if err != nil {
			return lookupErr("update order", "product", o.ProductID, err)
		}
		var next *domain.Product
		if ch.swaps(o) {
			p, err := tx.GetProduct(ctx, *ch.ProductID)
			if err != nil {
				return lookupErr("update order", "product", *ch.ProductID, err)
			}
			next = &p
		}
		if ch.ClientID != nil && *ch.ClientID != o.ClientID {
			if err := s.checkClient(ctx, tx, "update order", *ch.ClientID); err != nil {
				return err
			}
		}

		cs, err := accept(PlanUpdate(o, cur, next, ch))
		if err != nil {
			return err
		}
		updated, err = tx.Apply(ctx, cs)
		if err != nil {
			return &PersistenceError{Op: "update order", Err: err}
		}
		return nil
	})
	return updated, err
}

// Delete removes the order and gives its quantity back to the product. An
// order that no longer exists is reported as OrderAlreadyDeleted with a nil
// error; an order whose product is gone is removed without a restock.
func (s *OrderService) Delete(ctx context.Context, id int64) (DeleteOutcome, error) {
	outcome := OrderDeleted
	err := s.run(ctx, "delete order", func(tx domain.StockTx) error {
		o, err := tx.GetOrder(ctx, id)
		if errors.Is(err, repos.ErrNotFound) {
			outcome = OrderAlreadyDeleted
			return nil
		}
		if err != nil {
			return &PersistenceError{Op: "delete order", Err: err}
		}

		var p *domain.Product
		switch cur, err := tx.GetProduct(ctx, o.ProductID); {
		case errors.Is(err, repos.ErrNotFound):
			outcome = OrderDeletedWithoutRestock
		case err != nil:
			return &PersistenceError{Op: "delete order", Err: err}
		default:
			p = &cur
		}

		cs, err := accept(PlanDelete(o, p))
		if err != nil {
			return err
		}
		if _, err := tx.Apply(ctx, cs); err != nil {
			return &PersistenceError{Op: "delete order", Err: err}
		}
		return nil
	})
	return outcome, err
}

func (s *OrderService) Get(ctx context.Context, id int64) (domain.Order, error) {
	o, err := s.Orders.Get(ctx, id)
	if err != nil {
		return domain.Order{}, lookupErr("load order", "order", id, err)
	}
	return o, nil
}

// List returns all orders, or one client's orders when clientID is non-zero.
func (s *OrderService) List(ctx context.Context, clientID int64) ([]domain.Order, error) {
	out, err := s.Orders.List(ctx, clientID)
	if err != nil {
		return nil, &PersistenceError{Op: "list orders", Err: err}
	}
	return out, nil
}

func (s *OrderService) checkClient(ctx context.Context, tx domain.StockTx, op string, id int64) error {
	ok, err := tx.ClientExists(ctx, id)
	if err != nil {
		return &PersistenceError{Op: op, Err: err}
	}
	if !ok {
		return notFound("client", id)
	}
	return nil
}

// run wraps begin and commit faults that fn never saw.
func (s *OrderService) run(ctx context.Context, op string, fn func(tx domain.StockTx) error) error {
	err := s.Store.Atomically(ctx, fn)
	if err == nil || isServiceErr(err) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}

func accept(o Outcome) (domain.Changeset, error) {
	switch o := o.(type) {
	case Validated:
		return o.Changes, nil
	case Rejected:
		if !isServiceErr(o.Reason) {
			// overflow or negative values from the domain helpers
			return domain.Changeset{}, fmt.Errorf("%w: %w", ErrInvalidInput, o.Reason)
		}
		return domain.Changeset{}, o.Reason
	}
	return domain.Changeset{}, fmt.Errorf("unexpected outcome %T", o)
}

func lookupErr(op, entity string, id int64, err error) error {
	if errors.Is(err, repos.ErrNotFound) {
		return notFound(entity, id)
	}
	return &PersistenceError{Op: op, Err: err}
}

func isServiceErr(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrInsufficientStock) ||
		errors.Is(err, ErrPersistence) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrForbidden)
}
