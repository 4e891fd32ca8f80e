package handlers

import (
	"github.com/gofiber/fiber/v2"

	"gestock/internal/domain"
	"gestock/internal/log"
	"gestock/internal/services"
	"gestock/internal/validate"
)

type ProductHandler struct {
	Products *services.ProductService
}

type productRequest struct {
	Name              *string `json:"name"`
	SupplierID        *int64  `json:"supplier_id"`
	QuantityAvailable *int64  `json:"quantity_available"`
	UnitPrice         *int64  `json:"unit_price"`
}

func productID(c *fiber.Ctx) (int64, bool) {
	return validate.ID(c.Params("id"))
}

// List answers GET /api/products?q=&supplier_id=. Suppliers only see their
// own products.
func (h *ProductHandler) List(c *fiber.Ctx) error {
	q := c.Query("q")
	if q != "" {
		var ok bool
		if q, ok = validate.Q(q); !ok {
			return badRequest(c, "q", "invalid search query")
		}
	}
	var supplierID int64
	if s := c.Query("supplier_id"); s != "" {
		id, ok := validate.ID(s)
		if !ok {
			return badRequest(c, "supplier_id", "invalid supplier id")
		}
		supplierID = id
	}
	if p, ok := currentUser(c).Profile().(domain.SupplierProfile); ok {
		supplierID = p.SupplierID
	}
	list, err := h.Products.List(c.UserContext(), q, supplierID)
	if err != nil {
		return respondError(c, "product.list", err)
	}
	return c.JSON(list)
}

func (h *ProductHandler) Get(c *fiber.Ctx) error {
	id, ok := productID(c)
	if !ok {
		return badRequest(c, "id", "invalid product id")
	}
	p, err := h.Products.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, "product.get", err)
	}
	return c.JSON(p)
}

func (h *ProductHandler) Availability(c *fiber.Ctx) error {
	id, ok := productID(c)
	if !ok {
		return badRequest(c, "id", "invalid product id")
	}
	a, err := h.Products.Availability(c.UserContext(), id)
	if err != nil {
		return respondError(c, "product.availability", err)
	}
	return c.JSON(a)
}

func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var req productRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "body", "malformed product")
	}
	if req.Name == nil || req.SupplierID == nil {
		return badRequest(c, "name", "name and supplier_id are required")
	}
	name, ok := validate.Name(*req.Name)
	if !ok {
		return badRequest(c, "name", "name must be 1-30 characters")
	}
	in := services.NewProduct{Name: name, SupplierID: *req.SupplierID}
	if req.QuantityAvailable != nil {
		in.Quantity = *req.QuantityAvailable
	}
	if req.UnitPrice != nil {
		in.UnitPrice = *req.UnitPrice
	}
	if !validate.Stock(in.Quantity) || in.UnitPrice < 0 {
		return badRequest(c, "quantity_available", "quantity and price cannot be negative")
	}

	p, err := h.Products.Create(c.UserContext(), in)
	if err != nil {
		return respondError(c, "product.create", err)
	}
	c.Status(fiber.StatusCreated)
	log.Audit(c, "product.create", map[string]any{"product_id": p.ID, "qty": p.QuantityAvailable, "unit_price": p.UnitPrice})
	return c.JSON(p)
}

func (h *ProductHandler) Update(c *fiber.Ctx) error {
	id, ok := productID(c)
	if !ok {
		return badRequest(c, "id", "invalid product id")
	}
	var req productRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "body", "malformed product")
	}
	patch := services.ProductPatch{SupplierID: req.SupplierID, Quantity: req.QuantityAvailable, UnitPrice: req.UnitPrice}
	if req.Name != nil {
		name, ok := validate.Name(*req.Name)
		if !ok {
			return badRequest(c, "name", "name must be 1-30 characters")
		}
		patch.Name = &name
	}

	p, err := h.Products.Update(c.UserContext(), id, patch)
	if err != nil {
		return respondError(c, "product.update", err)
	}
	log.Audit(c, "product.update", map[string]any{"product_id": p.ID, "qty": p.QuantityAvailable, "unit_price": p.UnitPrice})
	return c.JSON(p)
}

func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	id, ok := productID(c)
	if !ok {
		return badRequest(c, "id", "invalid product id")
	}
	if err := h.Products.Delete(c.UserContext(), id); err != nil {
		return respondError(c, "product.delete", err)
	}
	log.Audit(c, "product.delete", map[string]any{"product_id": id})
	return c.SendStatus(fiber.StatusNoContent)
}
