package services

import (
	"context"
	"errors"
	"strings"

	"gestock/internal/domain"
	"gestock/internal/repos"
)

const (
	InStock    = "IN_STOCK"
	LowStock   = "LOW_STOCK"
	OutOfStock = "OUT_OF_STOCK"
)

type ProductService struct {
	Products  *repos.ProductRepo
	Suppliers *repos.SupplierRepo
}

func NewProductService(products *repos.ProductRepo, suppliers *repos.SupplierRepo) *ProductService {
	return &ProductService{Products: products, Suppliers: suppliers}
}

type NewProduct struct {
	Name       string
	SupplierID int64
	Quantity   int64
	UnitPrice  int64
}

// ProductPatch lists the fields an update touches; nil means unchanged.
type ProductPatch struct {
	Name       *string
	SupplierID *int64
	Quantity   *int64
	UnitPrice  *int64
}

func (s *ProductService) Create(ctx context.Context, in NewProduct) (domain.Product, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return domain.Product{}, invalid("product name is required")
	}
	if err := s.checkSupplier(ctx, in.SupplierID); err != nil {
		return domain.Product{}, err
	}
	p, err := domain.Product{Name: name, SupplierID: in.SupplierID}.WithPrice(in.UnitPrice)
	if err == nil {
		p, err = p.WithStock(in.Quantity)
	}
	if err != nil {
		return domain.Product{}, invalid("%v", err)
	}
	p, err = s.Products.Create(ctx, p)
	if err != nil {
		return domain.Product{}, &PersistenceError{Op: "create product", Err: err}
	}
	return p, nil
}

// Update applies the patch under a row lock and recomputes the total.
func (s *ProductService) Update(ctx context.Context, id int64, patch ProductPatch) (domain.Product, error) {
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return domain.Product{}, invalid("product name cannot be empty")
	}
	if patch.SupplierID != nil {
		if err := s.checkSupplier(ctx, *patch.SupplierID); err != nil {
			return domain.Product{}, err
		}
	}
	p, err := s.Products.Modify(ctx, id, func(p domain.Product) (domain.Product, error) {
		if patch.Name != nil {
			p.Name = strings.TrimSpace(*patch.Name)
		}
		if patch.SupplierID != nil {
			p.SupplierID = *patch.SupplierID
		}
		if patch.UnitPrice != nil {
			if *patch.UnitPrice < 0 {
				return p, invalid("%v", domain.ErrNegativePrice)
			}
			p.UnitPrice = *patch.UnitPrice
		}
		qty := p.QuantityAvailable
		if patch.Quantity != nil {
			qty = *patch.Quantity
		}
		// total only from the final price and quantity
		next, err := p.WithStock(qty)
		if err != nil {
			return p, invalid("%v", err)
		}
		return next, nil
	})
	switch {
	case err == nil:
		return p, nil
	case errors.Is(err, ErrInvalidInput):
		return domain.Product{}, err
	default:
		return domain.Product{}, lookupErr("update product", "product", id, err)
	}
}

// Delete removes the product together with its orders.
func (s *ProductService) Delete(ctx context.Context, id int64) error {
	if err := s.Products.Delete(ctx, id); err != nil {
		return lookupErr("delete product", "product", id, err)
	}
	return nil
}

func (s *ProductService) Get(ctx context.Context, id int64) (domain.Product, error) {
	p, err := s.Products.Get(ctx, id)
	if err != nil {
		return domain.Product{}, lookupErr("load product", "product", id, err)
	}
	return p, nil
}

func (s *ProductService) List(ctx context.Context, q string, supplierID int64) ([]domain.Product, error) {
	out, err := s.Products.List(ctx, q, supplierID)
	if err != nil {
		return nil, &PersistenceError{Op: "list products", Err: err}
	}
	return out, nil
}

// Availability converts a product's stock to IN_STOCK / LOW_STOCK / OUT_OF_STOCK.
func (s *ProductService) Availability(ctx context.Context, id int64) (domain.Availability, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return domain.Availability{}, err
	}
	return availabilityOf(p.QuantityAvailable), nil
}

func availabilityOf(qty int64) domain.Availability {
	status := OutOfStock
	switch {
	case qty >= 5:
		status = InStock
	case qty > 0:
		status = LowStock
	}
	return domain.Availability{Status: status, Qty: qty}
}

func (s *ProductService) checkSupplier(ctx context.Context, id int64) error {
	if _, err := s.Suppliers.Get(ctx, id); err != nil {
		return lookupErr("load supplier", "supplier", id, err)
	}
	return nil
}
