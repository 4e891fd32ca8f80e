package services

import (
	"context"
	"fmt"
	"time"

	"gestock/internal/domain"
	"gestock/internal/repos"
)

type InvoiceLine struct {
	OrderID     int64  `json:"order_id"`
	OrderNumber string `json:"order_number"`
	Product     string `json:"product"`
	Quantity    int64  `json:"quantity"`
	UnitPrice   int64  `json:"unit_price"`
	Total       int64  `json:"total"`
}

// Invoice bills every order a client placed on one day.
type Invoice struct {
	Number string        `json:"number"`
	Client domain.Client `json:"client"`
	Date   string        `json:"date"`
	Lines  []InvoiceLine `json:"lines"`
	Total  int64         `json:"total"`
}

type InvoiceService struct {
	Orders  *repos.OrderRepo
	Clients *repos.ClientRepo
}

func NewInvoiceService(orders *repos.OrderRepo, clients *repos.ClientRepo) *InvoiceService {
	return &InvoiceService{Orders: orders, Clients: clients}
}

// InvoiceNumber is FAC-<yyyymmdd>-<client id on 4 digits>.
func InvoiceNumber(clientID int64, day time.Time) string {
	return fmt.Sprintf("FAC-%s-%04d", day.Format("20060102"), clientID)
}

// ForDay builds the invoice of clientID for the calendar day of day, in
// day's location. Lines are priced at the product's current unit price.
func (s *InvoiceService) ForDay(ctx context.Context, clientID int64, day time.Time) (Invoice, error) {
	c, err := s.Clients.Get(ctx, clientID)
	if err != nil {
		return Invoice{}, lookupErr("load client", "client", clientID, err)
	}
	rows, err := s.Orders.LinesForClient(ctx, clientID)
	if err != nil {
		return Invoice{}, &PersistenceError{Op: "load invoice lines", Err: err}
	}

	want := day.Format(time.DateOnly)
	inv := Invoice{
		Number: InvoiceNumber(clientID, day),
		Client: c,
		Date:   want,
		Lines:  []InvoiceLine{},
	}
	for _, r := range rows {
		d, err := time.Parse(time.RFC3339, r.OrderDate)
		if err != nil {
			return Invoice{}, &PersistenceError{Op: "load invoice lines", Err: err}
		}
		if d.In(day.Location()).Format(time.DateOnly) != want {
			continue
		}
		total, err := domain.StockValue(r.QuantityOrdered, r.UnitPrice)
		if err != nil {
			return Invoice{}, invalid("order %d: %v", r.OrderID, err)
		}
		if inv.Total, err = domain.AddValue(inv.Total, total); err != nil {
			return Invoice{}, invalid("invoice %s: %v", inv.Number, err)
		}
		inv.Lines = append(inv.Lines, InvoiceLine{
			OrderID:     r.OrderID,
			OrderNumber: r.OrderNumber,
			Product:     r.ProductName,
			Quantity:    r.QuantityOrdered,
			UnitPrice:   r.UnitPrice,
			Total:       total,
		})
	}
	return inv, nil
}
