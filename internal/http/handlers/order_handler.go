package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"gestock/internal/domain"
	applog "gestock/internal/log"
	"gestock/internal/services"
	"gestock/internal/validate"
)

type OrderHandler struct {
	Orders *services.OrderService
}

type createOrderRequest struct {
	ClientID    int64  `json:"client_id"`
	ProductID   int64  `json:"product_id"`
	Quantity    int64  `json:"quantity"`
	OrderNumber string `json:"order_number"`
	OrderDate   string `json:"order_date"`
}

type updateOrderRequest struct {
	ClientID    *int64  `json:"client_id"`
	ProductID   *int64  `json:"product_id"`
	Quantity    *int64  `json:"quantity"`
	OrderNumber *string `json:"order_number"`
}

// List answers GET /api/orders. Clients only see their own orders; other
// users may filter with ?client_id=.
func (h *OrderHandler) List(c *fiber.Ctx) error {
	clientID := ownClient(c)
	if clientID == 0 {
		if s := c.Query("client_id"); s != "" {
			id, ok := validate.ID(s)
			if !ok {
				return badRequest(c, "client_id", "invalid client id")
			}
			clientID = id
		}
	}
	list, err := h.Orders.List(c.UserContext(), clientID)
	if err != nil {
		return respondError(c, "order.list", err)
	}
	return c.JSON(list)
}

func (h *OrderHandler) Get(c *fiber.Ctx) error {
	o, err := h.visible(c)
	if err != nil {
		return respondError(c, "order.get", err)
	}
	return c.JSON(o)
}

func (h *OrderHandler) Create(c *fiber.Ctx) error {
	var req createOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "body", "malformed order")
	}
	if own := ownClient(c); own != 0 {
		if req.ClientID != 0 && req.ClientID != own {
			return respondError(c, "order.create", services.ErrForbidden)
		}
		req.ClientID = own
	}
	if req.ClientID <= 0 {
		return badRequest(c, "client_id", "client_id is required")
	}
	if req.ProductID <= 0 {
		return badRequest(c, "product_id", "product_id is required")
	}
	if !validate.Quantity(req.Quantity) {
		return badRequest(c, "quantity", "quantity must be a positive number")
	}

	in := services.CreateOrder{ClientID: req.ClientID, ProductID: req.ProductID, Quantity: req.Quantity}
	if req.OrderNumber != "" {
		n, ok := validate.OrderNumber(req.OrderNumber)
		if !ok {
			return badRequest(c, "order_number", "order_number must be 1-30 letters, digits, - or _")
		}
		in.OrderNumber = n
	}
	if req.OrderDate != "" {
		d, ok := validate.Date(req.OrderDate, time.Local)
		if !ok {
			return badRequest(c, "order_date", "order_date must be YYYY-MM-DD")
		}
		in.OrderDate = &d
	}

	o, err := h.Orders.Create(c.UserContext(), in)
	if err != nil {
		return respondError(c, "order.create", err)
	}
	c.Status(fiber.StatusCreated)
	applog.Audit(c, "order.create", map[string]any{
		"order_id":     o.ID,
		"order_number": o.OrderNumber,
		"client_id":    o.ClientID,
		"product_id":   o.ProductID,
		"qty":          o.QuantityOrdered,
	})
	return c.JSON(o)
}

func (h *OrderHandler) Update(c *fiber.Ctx) error {
	var req updateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "body", "malformed order")
	}
	before, err := h.visible(c)
	if err != nil {
		return respondError(c, "order.update", err)
	}
	if own := ownClient(c); own != 0 && req.ClientID != nil && *req.ClientID != own {
		return respondError(c, "order.update", services.ErrForbidden)
	}
	if req.Quantity != nil && !validate.Quantity(*req.Quantity) {
		return badRequest(c, "quantity", "quantity must be a positive number")
	}
	if req.OrderNumber != nil {
		n, ok := validate.OrderNumber(*req.OrderNumber)
		if !ok {
			return badRequest(c, "order_number", "order_number must be 1-30 letters, digits, - or _")
		}
		req.OrderNumber = &n
	}

	o, err := h.Orders.Update(c.UserContext(), before.ID, services.OrderChange{
		Quantity:    req.Quantity,
		ProductID:   req.ProductID,
		ClientID:    req.ClientID,
		OrderNumber: req.OrderNumber,
	})
	if err != nil {
		return respondError(c, "order.update", err)
	}
	applog.Audit(c, "order.update", map[string]any{
		"order_id":       o.ID,
		"product_id":     o.ProductID,
		"old_product_id": before.ProductID,
		"qty":            o.QuantityOrdered,
		"old_qty":        before.QuantityOrdered,
	})
	return c.JSON(o)
}

// Delete answers DELETE /api/orders/:id. Deleting an order that is already
// gone succeeds with outcome "already_deleted".
func (h *OrderHandler) Delete(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "id", "invalid order id")
	}
	switch o, err := h.Orders.Get(c.UserContext(), id); {
	case errors.Is(err, services.ErrNotFound):
		// reported as already deleted below
	case err != nil:
		return respondError(c, "order.delete", err)
	case !owns(c, o):
		return respondError(c, "order.delete", hidden(c, id))
	}

	outcome, err := h.Orders.Delete(c.UserContext(), id)
	if err != nil {
		return respondError(c, "order.delete", err)
	}
	fields := map[string]any{"order_id": id, "outcome": outcome.String()}
	switch outcome {
	case services.OrderDeletedWithoutRestock:
		applog.Security(c, "order.delete.orphan", fields)
	case services.OrderAlreadyDeleted:
		applog.Info(c, "order.delete.missing", fields)
	default:
		applog.Audit(c, "order.delete", fields)
	}
	return c.JSON(fiber.Map{"id": id, "outcome": outcome.String()})
}

// visible loads the order named by :id, hiding other clients' orders from a
// client-profile user as if they did not exist.
func (h *OrderHandler) visible(c *fiber.Ctx) (domain.Order, error) {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return domain.Order{}, services.ErrInvalidInput
	}
	o, err := h.Orders.Get(c.UserContext(), id)
	if err != nil {
		return domain.Order{}, err
	}
	if !owns(c, o) {
		return domain.Order{}, hidden(c, id)
	}
	return o, nil
}

func owns(c *fiber.Ctx, o domain.Order) bool {
	own := ownClient(c)
	return own == 0 || o.ClientID == own
}

func hidden(c *fiber.Ctx, id int64) error {
	applog.Security(c, "access.denied.order", map[string]any{"order_id": id})
	return &services.NotFoundError{Entity: "order", ID: id}
}
