// seed carga el catálogo de referencia (bodegas, casas de distribución,
// productos y transportes) desde un CSV, en una sola transacción.
//
// Uso: go run ./cmd/seed [-latin1] catalogo.csv
// Las filas se insertan o actualizan por código, SKU o número de vehículo.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/stock-ledger/pkg/config"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

func main() {
	latin1 := flag.Bool("latin1", false, "el CSV está en ISO-8859-1")
	flag.Parse()
	csvPath := "catalogo.csv"
	if flag.NArg() > 0 {
		csvPath = flag.Arg(0)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	f, err := os.Open(csvPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", csvPath).Msg("abrir CSV")
	}
	defer f.Close()

	cat, err := parseCatalog(f, *latin1)
	if err != nil {
		log.Fatal().Err(err).Msg("leer catálogo")
	}

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

	err = pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		locations := postgres.NewLocationRepository(tx)
		for _, l := range cat.locations {
			if err := locations.Upsert(ctx, l); err != nil {
				return fmt.Errorf("%s %s: %w", l.Type, l.Code, err)
			}
		}
		products := postgres.NewProductRepository(tx)
		for _, p := range cat.products {
			if err := products.Upsert(ctx, p); err != nil {
				return fmt.Errorf("producto %s: %w", p.SKU, err)
			}
		}
		transports := postgres.NewTransportRepository(tx)
		for _, t := range cat.transports {
			if err := transports.Upsert(ctx, t); err != nil {
				return fmt.Errorf("transporte %s: %w", t.VehicleNumber, err)
			}
		}
		return nil
	})
	if err != nil {
		log.Fatal().Err(err).Msg("cargar catálogo")
	}

	log.Info().
		Int("ubicaciones", len(cat.locations)).
		Int("productos", len(cat.products)).
		Int("transportes", len(cat.transports)).
		Msg("catálogo cargado")
}
