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

	"github.com/jhoicas/stock-ledger/internal/application/analytics"
	"github.com/jhoicas/stock-ledger/internal/application/stock"
	"github.com/jhoicas/stock-ledger/internal/application/transfer"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/cache"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/jobs"
	infrapdf "github.com/jhoicas/stock-ledger/internal/infrastructure/pdf"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/stock-ledger/internal/interfaces/http"
	"github.com/jhoicas/stock-ledger/pkg/config"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// @title Stock Ledger API
// @version 1.0
// @BasePath /
// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
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
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if cfg.DB.AutoMigrate {
		if err := postgres.Migrate(pool, log); err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
	}

	// Redis es opcional: sin él los reportes se calculan siempre contra la base
	// y la foto diaria sólo se refresca por el endpoint o el cron del worker.
	var (
		reportCache analytics.Cache
		observers   []transfer.PostingObserver
	)
	if cfg.Redis.Enabled() {
		client, err := cache.New(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer client.Close()

		rc := cache.NewReportCache(client, cfg.Redis.CacheTTL)
		reportCache = rc

		jobClient := jobs.NewClient(jobs.RedisOpt(cfg.Redis), log)
		defer jobClient.Close()

		observers = append(observers, rc, jobClient)
	}

	txRunner := postgres.NewTxRunner(pool, cfg.DB.StatementTimeout)
	orchestrator := transfer.NewOrchestrator(txRunner, log, observers...)

	ledgerRepo := postgres.NewLedgerRepository(pool)
	analyticsRepo := postgres.NewAnalyticsRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	locationRepo := postgres.NewLocationRepository(pool)
	resolver := stock.NewResolver(ledgerRepo)
	reportsUC := analytics.NewReportsUseCase(analytics.Deps{
		Analytics: analyticsRepo,
		History:   ledgerRepo,
		Summaries: analyticsRepo,
		Products:  productRepo,
		Locations: locationRepo,
		Cache:     reportCache,
		PDF:       infrapdf.NewMarotoPDFGenerator(cfg.App.Name),
		Config:    cfg.Reports,
		Logger:    log,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI: http://localhost:<port>/docs (sólo si existe el JSON generado)
	if _, err := os.Stat(cfg.HTTP.SwaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: cfg.HTTP.SwaggerFile,
			Path:     "docs",
			Title:    "Stock Ledger API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		if err := pool.Ping(c.UserContext()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "service": cfg.App.Name})
		}
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Transfers: orchestrator,
		Stock:     resolver,
		Reports:   reportsUC,
		JWTSecret: cfg.JWT.Secret,

		Products:   productRepo,
		Locations:  locationRepo,
		Transports: postgres.NewTransportRepository(pool),
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
