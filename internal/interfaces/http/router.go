// Package http wires the Fiber routes, middleware and handlers.
package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/fatoora-app/invoicing-api/internal/application/auth"
	"github.com/fatoora-app/invoicing-api/internal/application/billing"
	"github.com/fatoora-app/invoicing-api/internal/application/purchase"
	"github.com/fatoora-app/invoicing-api/internal/application/settings"
	"github.com/fatoora-app/invoicing-api/internal/domain/entity"
)

// RouterDeps carries the router dependencies.
type RouterDeps struct {
	AuthUC     *auth.AuthUseCase
	InvoiceUC  *billing.InvoiceUseCase
	InvoicePDF *billing.PDFUseCase
	ClientUC   *billing.ClientUseCase
	PurchaseUC *purchase.PurchaseUseCase
	SettingsUC *settings.SettingsUseCase
	JWTSecret  string
}

// Router registers the API routes.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (public)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Protected routes (Bearer token required)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Invoices
	invoices := protected.Group("/invoices")
	invoiceHandler := NewInvoiceHandler(deps.InvoiceUC, deps.InvoicePDF)
	invoices.Post("/", invoiceHandler.Create)
	invoices.Get("/", invoiceHandler.List)
	invoices.Get("/:id", invoiceHandler.GetByID)
	invoices.Put("/:id", invoiceHandler.Update)
	invoices.Delete("/:id", RequireRole(entity.RoleAdmin), invoiceHandler.Delete)
	invoices.Get("/:id/pdf", invoiceHandler.DownloadPDF)
	invoices.Post("/:id/report", invoiceHandler.Report)

	// Clients
	clients := protected.Group("/clients")
	clientHandler := NewClientHandler(deps.ClientUC)
	clients.Post("/", clientHandler.Create)
	clients.Get("/", clientHandler.List)
	clients.Get("/:id", clientHandler.GetByID)
	clients.Put("/:id", clientHandler.Update)
	clients.Delete("/:id", RequireRole(entity.RoleAdmin), clientHandler.Delete)

	// Purchases
	purchases := protected.Group("/purchases")
	purchaseHandler := NewPurchaseHandler(deps.PurchaseUC)
	purchases.Post("/", purchaseHandler.Create)
	purchases.Get("/", purchaseHandler.List)
	purchases.Get("/:id", purchaseHandler.GetByID)
	purchases.Put("/:id", purchaseHandler.Update)
	purchases.Delete("/:id", RequireRole(entity.RoleAdmin), purchaseHandler.Delete)

	// Settings (seller profile, admin only for writes)
	settingsGroup := protected.Group("/settings")
	settingsHandler := NewSettingsHandler(deps.SettingsUC)
	settingsGroup.Get("/", settingsHandler.Get)
	settingsGroup.Put("/", RequireRole(entity.RoleAdmin), settingsHandler.Save)
	settingsGroup.Post("/logo", RequireRole(entity.RoleAdmin), settingsHandler.UploadLogo)
}
