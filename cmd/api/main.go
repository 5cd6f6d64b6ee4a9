package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	_ "github.com/fatoora-app/invoicing-api/docs"
	"github.com/fatoora-app/invoicing-api/internal/application/auth"
	"github.com/fatoora-app/invoicing-api/internal/application/billing"
	"github.com/fatoora-app/invoicing-api/internal/application/purchase"
	"github.com/fatoora-app/invoicing-api/internal/application/settings"
	infrapdf "github.com/fatoora-app/invoicing-api/internal/infrastructure/pdf"
	"github.com/fatoora-app/invoicing-api/internal/infrastructure/postgres"
	"github.com/fatoora-app/invoicing-api/internal/infrastructure/qr"
	"github.com/fatoora-app/invoicing-api/internal/infrastructure/storage"
	infrazatca "github.com/fatoora-app/invoicing-api/internal/infrastructure/zatca"
	httpRouter "github.com/fatoora-app/invoicing-api/internal/interfaces/http"
	"github.com/fatoora-app/invoicing-api/pkg/config"
	"github.com/fatoora-app/invoicing-api/pkg/logger"
)

// @title        Fatoora Invoicing API
// @version      1.0
// @description  ZATCA-compliant invoicing API: QR TLV encoding, UBL XML generation and invoice finalization.
// @BasePath     /
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("load configuration: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("starting application")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("PostgreSQL connection")
	}
	defer pool.Close()

	userRepo := postgres.NewUserRepository(pool)
	clientRepo := postgres.NewClientRepository(pool)
	invoiceRepo := postgres.NewInvoiceRepository(pool)
	settingsRepo := postgres.NewSettingsRepository(pool)
	purchaseRepo := postgres.NewPurchaseRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	xmlBuilder := infrazatca.NewXMLBuilderService()
	rasterizer := qr.NewRasterizer()
	fileStore := storage.NewPublicFileStore(cfg.Files.PublicDir)

	// Reporting client — only submits when device credentials are configured.
	// Finalization never calls it; invoices always get their QR and XML.
	reporter := infrazatca.NewReportingClient(infrazatca.ReportingConfig{
		URL:         cfg.ZATCA.ReportingURL,
		DeviceUUID:  cfg.ZATCA.DeviceUUID,
		CertPath:    cfg.ZATCA.CertPath,
		CertKeyPath: cfg.ZATCA.CertKeyPath,
	})

	invoiceUC := billing.NewInvoiceUseCase(
		txRunner, invoiceRepo, clientRepo, settingsRepo,
		xmlBuilder, rasterizer, fileStore, reporter,
	)
	clientUC := billing.NewClientUseCase(clientRepo)
	purchaseUC := purchase.NewPurchaseUseCase(purchaseRepo)
	settingsUC := settings.NewSettingsUseCase(settingsRepo, fileStore)

	// PDF: printable rendering of the finalized invoice, embedding the stored
	// QR image so print and record match.
	pdfGenerator := infrapdf.NewMarotoPDFGenerator()
	invoicePDFUC := billing.NewPDFUseCase(invoiceRepo, settingsRepo, pdfGenerator)

	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Fatoora Invoicing API",
	}))

	// QR images and logos
	app.Static("/public", cfg.Files.PublicDir)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:     authUC,
		InvoiceUC:  invoiceUC,
		InvoicePDF: invoicePDFUC,
		ClientUC:   clientUC,
		PurchaseUC: purchaseUC,
		SettingsUC: settingsUC,
		JWTSecret:  cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("HTTP server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutdown signal received, stopping server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}

	log.Info().Msg("application stopped")
}
