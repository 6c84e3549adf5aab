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

	"github.com/jhoicas/rechnungsverwaltung/internal/application/auth"
	"github.com/jhoicas/rechnungsverwaltung/internal/application/billing"
	"github.com/jhoicas/rechnungsverwaltung/internal/application/export"
	"github.com/jhoicas/rechnungsverwaltung/internal/infrastructure/bundle"
	"github.com/jhoicas/rechnungsverwaltung/internal/infrastructure/filestore"
	infrapdf "github.com/jhoicas/rechnungsverwaltung/internal/infrastructure/pdf"
	"github.com/jhoicas/rechnungsverwaltung/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/rechnungsverwaltung/internal/interfaces/http"
	"github.com/jhoicas/rechnungsverwaltung/pkg/config"
	"github.com/jhoicas/rechnungsverwaltung/pkg/logger"
)

const swaggerFile = "./docs/swagger.json"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Bool("validation", cfg.Features.Validation).
		Bool("authentication", cfg.Features.Authentication).
		Bool("authorization", cfg.Features.Authorization).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool, log.Component("migrate")); err != nil {
		log.Fatal().Err(err).Msg("migraciones")
	}

	customerRepo := postgres.NewCustomerRepository(pool)
	providerRepo := postgres.NewServiceProviderRepository(pool)
	ceoRepo := postgres.NewCEORepository(pool)
	positionRepo := postgres.NewPositionRepository(pool)
	invoiceRepo := postgres.NewInvoiceRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	searchRepo := postgres.NewSearchRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	opts := billing.Options{Validate: cfg.Features.Validation}
	customerUC := billing.NewCustomerUseCase(txRunner, customerRepo, opts)
	providerUC := billing.NewProviderUseCase(txRunner, providerRepo, ceoRepo, opts)
	positionUC := billing.NewPositionUseCase(positionRepo, opts)
	invoiceUC := billing.NewInvoiceUseCase(txRunner, invoiceRepo, opts)
	searchUC := billing.NewSearchUseCase(searchRepo)

	store, err := filestore.New(cfg.Export.Dir)
	if err != nil {
		log.Fatal().Err(err).Msg("directorio de exportación")
	}
	exporter := export.NewService(export.Deps{
		Invoices:          invoiceRepo,
		Customers:         customerRepo,
		Providers:         providerRepo,
		Renderer:          infrapdf.NewInvoiceRenderer(cfg.Export.FooterNote),
		Bundler:           bundle.NewZipWriter(),
		Store:             store,
		Report:            infrapdf.NewRegisterReport(cfg.App.Name),
		MinPasswordLength: cfg.Export.MinPasswordLength,
		Logger:            log.Zerolog(),
	})

	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	}, cfg.Export.MinPasswordLength, log.Zerolog())
	if err := authUC.EnsureAdmin(ctx, cfg.Admin.Username, cfg.Admin.Password); err != nil {
		log.Fatal().Err(err).Msg("usuario administrador inicial")
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		BodyLimit:    16 * 1024 * 1024, // logos en base64
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "Rechnungsverwaltung API",
		}))
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		AppName:        cfg.App.Name,
		CustomerUC:     customerUC,
		ProviderUC:     providerUC,
		PositionUC:     positionUC,
		InvoiceUC:      invoiceUC,
		SearchUC:       searchUC,
		AuthUC:         authUC,
		Exporter:       exporter,
		JWTSecret:      cfg.JWT.Secret,
		Logger:         log.Component("http"),
		Authentication: cfg.Features.Authentication,
		Authorization:  cfg.Features.Authorization,
		ExportOnCreate: cfg.Export.OnCreate,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
