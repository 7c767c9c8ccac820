// worker procesa la cola de trabajos: refresca la foto diaria de stock
// cuando la API la encola tras un movimiento y una vez al día por cron.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/jhoicas/stock-ledger/internal/application/analytics"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/jobs"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/stock-ledger/pkg/config"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	if !cfg.Redis.Enabled() {
		log.Fatal().Msg("REDIS_ADDR es obligatorio para el worker")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	analyticsRepo := postgres.NewAnalyticsRepository(pool)
	reportsUC := analytics.NewReportsUseCase(analytics.Deps{
		Analytics: analyticsRepo,
		History:   postgres.NewLedgerRepository(pool),
		Summaries: analyticsRepo,
		Products:  postgres.NewProductRepository(pool),
		Locations: postgres.NewLocationRepository(pool),
		Config:    cfg.Reports,
		Logger:    log,
	})
	summaryJob := jobs.NewDailySummaryJob(reportsUC, log)

	// Sin fecha en el payload el handler toma el día en curso (UTC).
	cronTask, err := jobs.NewDailySummaryTask(time.Time{})
	if err != nil {
		log.Fatal().Err(err).Msg("tarea cron")
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts:   jobs.RedisOpt(cfg.Redis),
		Concurrency: cfg.Worker.Concurrency,
		Logger:      log,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskDailySummary, Handler: summaryJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: cfg.Worker.SummaryCron, Task: cronTask, Options: []asynq.Option{asynq.Queue(jobs.QueueDefault), asynq.MaxRetry(5)}},
		},
	})
	if err != nil {
		log.Fatal().Err(err).Msg("configurar worker")
	}

	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("worker finalizado con error")
		os.Exit(1)
	}
	log.Info().Msg("worker detenido")
}
