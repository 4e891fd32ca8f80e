package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"gestock/internal/services"
	"gestock/internal/validate"
)

type InvoiceHandler struct {
	Invoices *services.InvoiceService
}

// load resolves :clientId and ?date= (today when absent) into an invoice.
func (h *InvoiceHandler) load(c *fiber.Ctx) (services.Invoice, error) {
	clientID, ok := validate.ID(c.Params("clientId"))
	if !ok {
		return services.Invoice{}, fiber.NewError(fiber.StatusBadRequest, "invalid client id")
	}
	if own := ownClient(c); own != 0 && own != clientID {
		return services.Invoice{}, services.ErrForbidden
	}
	day := time.Now()
	if s := c.Query("date"); s != "" {
		if day, ok = validate.Date(s, time.Local); !ok {
			return services.Invoice{}, fiber.NewError(fiber.StatusBadRequest, "date must be YYYY-MM-DD")
		}
	}
	return h.Invoices.ForDay(c.UserContext(), clientID, day)
}

// JSON answers GET /api/invoices/:clientId?date=YYYY-MM-DD.
func (h *InvoiceHandler) JSON(c *fiber.Ctx) error {
	inv, err := h.load(c)
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return badRequest(c, "invoice", fe.Message)
	}
	if err != nil {
		return respondError(c, "invoice.get", err)
	}
	return c.JSON(inv)
}

// Page renders the printable invoice.
func (h *InvoiceHandler) Page(c *fiber.Ctx) error {
	inv, err := h.load(c)
	if err != nil {
		var code int
		switch {
		case errors.Is(err, services.ErrNotFound):
			code = fiber.StatusNotFound
		case errors.Is(err, services.ErrForbidden):
			code = fiber.StatusForbidden
		default:
			// bad input and store faults go through ErrorHandler
			return err
		}
		return c.Status(code).Render("notfound", fiber.Map{"Message": "Invoice not available"})
	}
	return render(c, "invoice", fiber.Map{"Invoice": inv})
}
