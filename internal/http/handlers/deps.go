package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"
	"github.com/jmoiron/sqlx"

	"gestock/internal/config"
	applog "gestock/internal/log"
	"gestock/internal/repos"
	"gestock/internal/services"
)

type Deps struct {
	AuthSvc  *services.AuthService
	Auth     *AuthHandler
	Products *ProductHandler
	Orders   *OrderHandler
	Invoices *InvoiceHandler
}

func NewDeps(db *sqlx.DB) *Deps {
	prodRepo := repos.NewProductRepo(db)
	orderRepo := repos.NewOrderRepo(db)
	supplierRepo := repos.NewSupplierRepo(db)
	clientRepo := repos.NewClientRepo(db)

	authSvc := services.NewAuthService(repos.NewUserRepo(db))
	productSvc := services.NewProductService(prodRepo, supplierRepo)
	orderSvc := services.NewOrderService(repos.NewStockStore(db), orderRepo)
	invoiceSvc := services.NewInvoiceService(orderRepo, clientRepo)

	return &Deps{
		AuthSvc:  authSvc,
		Auth:     &AuthHandler{Auth: authSvc},
		Products: &ProductHandler{Products: productSvc},
		Orders:   &OrderHandler{Orders: orderSvc},
		Invoices: &InvoiceHandler{Invoices: invoiceSvc},
	}
}

// NewApp builds the fiber application: middleware stack, routes and the
// error handler.
func NewApp(cfg config.Config, db *sqlx.DB) *fiber.App {
	engine := html.New(cfg.TemplatesDir, ".html")

	app := fiber.New(fiber.Config{
		Views:        engine,
		BodyLimit:    cfg.BodyLimit,
		ErrorHandler: ErrorHandler,
	})

	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New())

	Register(app, NewDeps(db), cfg)
	return app
}

func Register(app *fiber.App, d *Deps, cfg config.Config) {
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })

	api := app.Group("/api")
	api.Post("/login", limiter.New(limiter.Config{
		Max:        cfg.LoginRateMax,
		Expiration: cfg.LoginRateWindow,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "Too many attempts. Please try again later."})
		},
	}), d.Auth.Login)
	api.Post("/logout", d.Auth.Logout)

	user := RequireUser(d.AuthSvc)
	admin := RequireAdmin(d.AuthSvc)

	api.Get("/me", user, d.Auth.Me)

	api.Get("/products", user, d.Products.List)
	api.Get("/products/:id", user, d.Products.Get)
	api.Get("/products/:id/availability", user, d.Products.Availability)
	api.Post("/products", admin, d.Products.Create)
	api.Patch("/products/:id", admin, d.Products.Update)
	api.Delete("/products/:id", admin, d.Products.Delete)

	api.Get("/orders", user, d.Orders.List)
	api.Get("/orders/:id", user, d.Orders.Get)
	api.Post("/orders", user, d.Orders.Create)
	api.Patch("/orders/:id", user, d.Orders.Update)
	api.Delete("/orders/:id", user, d.Orders.Delete)

	api.Get("/invoices/:clientId", user, d.Invoices.JSON)
	app.Get("/invoices/:clientId", user, d.Invoices.Page)

	app.Use(func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, "Page not found")
	})
}
