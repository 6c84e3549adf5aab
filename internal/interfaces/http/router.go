package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/rechnungsverwaltung/internal/application/auth"
	"github.com/jhoicas/rechnungsverwaltung/internal/application/billing"
	"github.com/jhoicas/rechnungsverwaltung/internal/application/export"
	"github.com/jhoicas/rechnungsverwaltung/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AppName     string
	CustomerUC  *billing.CustomerUseCase
	ProviderUC  *billing.ProviderUseCase
	PositionUC  *billing.PositionUseCase
	InvoiceUC   *billing.InvoiceUseCase
	SearchUC    *billing.SearchUseCase
	AuthUC      *auth.AuthUseCase
	Exporter    *export.Service
	JWTSecret   string
	Logger      zerolog.Logger
	// Authentication exige Bearer token en /api (salvo login).
	Authentication bool
	// Authorization comprueba permisos por ruta; requiere Authentication.
	Authorization  bool
	ExportOnCreate bool
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": deps.AppName})
	})

	api := app.Group("/api")

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC)
	api.Post("/auth/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token si la autenticación está activa)
	protected := api
	if deps.Authentication {
		protected = api.Group("/", AuthMiddleware(deps.JWTSecret))
	}
	checkPerms := deps.Authentication && deps.Authorization
	perm := func(name string) fiber.Handler {
		return RequirePermission(name, deps.AuthUC, checkPerms)
	}
	read := perm(entity.PermInvoicesRead)
	master := perm(entity.PermMasterData)
	write := perm(entity.PermInvoicesWrite)
	exp := perm(entity.PermInvoicesExport)
	admin := perm(entity.PermUsersManage)

	// Customers
	customers := protected.Group("/customers")
	customerHandler := NewCustomerHandler(deps.CustomerUC)
	customers.Post("/", master, customerHandler.Create)
	customers.Get("/", read, customerHandler.List)
	customers.Get("/:id", read, customerHandler.Get)
	customers.Delete("/:id", master, customerHandler.Delete)

	// Providers
	providers := protected.Group("/providers")
	providerHandler := NewProviderHandler(deps.ProviderUC)
	providers.Post("/", master, providerHandler.Create)
	providers.Get("/", read, providerHandler.List)
	providers.Get("/:id", read, providerHandler.Get)
	providers.Delete("/:id", master, providerHandler.Delete)
	providers.Get("/:id/logo", read, providerHandler.Logo)
	providers.Delete("/:id/ceos/:taxnr", master, providerHandler.UnlinkCEO)

	// Positions
	positions := protected.Group("/positions")
	positionHandler := NewPositionHandler(deps.PositionUC)
	positions.Post("/", write, positionHandler.Create)
	positions.Get("/", read, positionHandler.List)
	positions.Get("/:id", read, positionHandler.Get)
	positions.Get("/:id/invoices", read, positionHandler.Invoices)
	positions.Delete("/:id", write, positionHandler.Delete)

	// Invoices
	invoices := protected.Group("/invoices")
	invoiceHandler := NewInvoiceHandler(deps.InvoiceUC, deps.Exporter, deps.ExportOnCreate, deps.Logger)
	invoices.Post("/", write, invoiceHandler.Create)
	invoices.Get("/", read, invoiceHandler.List)
	invoices.Get("/:nr", read, invoiceHandler.Get)
	invoices.Delete("/:nr", write, invoiceHandler.Delete)
	invoices.Post("/:nr/positions/detach", write, invoiceHandler.DetachPositions)
	invoices.Get("/:nr/pdf", exp, invoiceHandler.PDF)
	invoices.Get("/:nr/xml", exp, invoiceHandler.XML)
	invoices.Post("/:nr/bundle", exp, invoiceHandler.Bundle)
	invoices.Post("/:nr/export", exp, invoiceHandler.Export)

	// Exportaciones en lote
	exports := protected.Group("/exports")
	exportHandler := NewExportHandler(deps.Exporter)
	exports.Post("/missing", exp, exportHandler.Missing)
	exports.Get("/register", exp, exportHandler.Register)

	// Search
	searchHandler := NewSearchHandler(deps.SearchUC)
	protected.Get("/search/:view", read, searchHandler.Search)

	// Users
	users := protected.Group("/users")
	users.Get("/", admin, authHandler.ListUsers)
	users.Post("/", admin, authHandler.CreateUser)
	users.Put("/:id", admin, authHandler.UpdateUser)
	users.Delete("/:id", admin, authHandler.DeleteUser)
	protected.Get("/permissions", admin, authHandler.ListPermissions)
}
