package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	"github.com/jhoicas/stock-ledger/internal/application/transfer"
)

var _ transfer.TxRunner = (*TxRunner)(nil)

var tracer = otel.Tracer("stock-ledger/postgres")

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
// READ COMMITTED: tras el advisory lock, cada lectura ve lo confirmado por el traslado anterior.
type TxRunner struct {
	pool             *pgxpool.Pool
	statementTimeout time.Duration
}

// NewTxRunner construye el runner con el pool. statementTimeout 0 = sin límite.
func NewTxRunner(pool *pgxpool.Pool, statementTimeout time.Duration) *TxRunner {
	return &TxRunner{pool: pool, statementTimeout: statementTimeout}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(ctx context.Context, repos transfer.Repos) error) (err error) {
	ctx, span := tracer.Start(ctx, "postgres.TxRunner.Run")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return storeErr("begin transaction", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if r.statementTimeout > 0 {
		// SET LOCAL no admite parámetros
		stmt := fmt.Sprintf("SET LOCAL statement_timeout = %d", r.statementTimeout.Milliseconds())
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return storeErr("statement timeout", err)
		}
	}

	repos := transfer.Repos{
		Ledger:     NewLedgerRepository(tx),
		Products:   NewProductRepository(tx),
		Locations:  NewLocationRepository(tx),
		Transports: NewTransportRepository(tx),
	}
	if err := fn(ctx, repos); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return storeErr("commit transaction", err)
	}
	return nil
}
