package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var (
	_ repository.LedgerRepository    = (*LedgerRepo)(nil)
	_ repository.LedgerHistoryReader = (*LedgerRepo)(nil)
)

var ledgerColumns = []string{
	"id", "location_id", "product_id", "date",
	"opening_stock", "stock_in", "stock_out", "closing_stock",
	"reference_type", "reference_id", "transport_id", "unit_price",
	"batch_number", "expiry_date", "notes", "created_by", "created_at",
}

// LedgerRepo libros de stock por nivel sobre PostgreSQL (usable con pool o tx).
// Las tablas son sólo-inserción: no existe Update ni Delete.
type LedgerRepo struct {
	q Querier
}

// NewLedgerRepository construye el adaptador del libro. Pasar pool o tx (Querier).
func NewLedgerRepository(q Querier) *LedgerRepo {
	return &LedgerRepo{q: q}
}

// Latest devuelve la entrada con mayor id de la clave.
func (r *LedgerRepo) Latest(ctx context.Context, key entity.StockKey) (*entity.LedgerEntry, error) {
	table, err := ledgerTable(key.LocationType)
	if err != nil {
		return nil, err
	}
	query, args, err := psql.Select(ledgerColumns...).
		From(table).
		Where(squirrel.Eq{"location_id": key.LocationID, "product_id": key.ProductID}).
		OrderBy("id DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build latest: %w", err)
	}

	var e entity.LedgerEntry
	if err := pgxscan.Get(ctx, r.q, &e, query, args...); err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, storeErr("latest ledger entry", err)
	}
	e.LocationType = key.LocationType
	return &e, nil
}

// BalancesForLocation último cierre por producto en la ubicación.
func (r *LedgerRepo) BalancesForLocation(ctx context.Context, tier entity.LocationType, locationID string) ([]entity.Balance, error) {
	table, err := ledgerTable(tier)
	if err != nil {
		return nil, err
	}
	query, args, err := psql.Select("DISTINCT ON (product_id) location_id", "product_id", "closing_stock AS quantity", "id AS last_entry_id").
		From(table).
		Where(squirrel.Eq{"location_id": locationID}).
		OrderBy("product_id", "id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build balances: %w", err)
	}

	var balances []entity.Balance
	if err := pgxscan.Select(ctx, r.q, &balances, query, args...); err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, storeErr("balances for location", err)
	}
	for i := range balances {
		balances[i].LocationType = tier
	}
	return balances, nil
}

// Lock toma un advisory lock de transacción por clave, en el orden recibido.
// Se libera solo en commit o rollback; fuera de una tx no tiene efecto útil.
func (r *LedgerRepo) Lock(ctx context.Context, keys ...entity.StockKey) error {
	for _, k := range keys {
		if _, err := r.q.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, k.String()); err != nil {
			return storeErr("lock "+k.String(), err)
		}
	}
	return nil
}

// Append inserta la entrada y completa ID y CreatedAt.
func (r *LedgerRepo) Append(ctx context.Context, e *entity.LedgerEntry) error {
	table, err := ledgerTable(e.LocationType)
	if err != nil {
		return err
	}
	query, args, err := psql.Insert(table).
		Columns(
			"location_id", "product_id", "date",
			"opening_stock", "stock_in", "stock_out", "closing_stock",
			"reference_type", "reference_id", "transport_id", "unit_price",
			"batch_number", "expiry_date", "notes", "created_by",
		).
		Values(
			e.LocationID, e.ProductID, e.Date,
			e.OpeningStock, e.StockIn, e.StockOut, e.ClosingStock,
			string(e.ReferenceType), e.ReferenceID, e.TransportID, e.UnitPrice,
			e.BatchNumber, e.ExpiryDate, e.Notes, e.CreatedBy,
		).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build append: %w", err)
	}
	if err := r.q.QueryRow(ctx, query, args...).Scan(&e.ID, &e.CreatedAt); err != nil {
		return storeErr("insert ledger entry", err)
	}
	return nil
}

// History entradas del nivel filtradas, más recientes primero.
func (r *LedgerRepo) History(ctx context.Context, f repository.MovementFilter) ([]entity.LedgerEntry, error) {
	table, err := ledgerTable(f.LocationType)
	if err != nil {
		return nil, err
	}
	qb := psql.Select(ledgerColumns...).From(table).OrderBy("id DESC")
	if f.LocationID != "" {
		qb = qb.Where(squirrel.Eq{"location_id": f.LocationID})
	}
	if f.ProductID != "" {
		qb = qb.Where(squirrel.Eq{"product_id": f.ProductID})
	}
	if len(f.ReferenceTypes) > 0 {
		refs := make([]string, len(f.ReferenceTypes))
		for i, t := range f.ReferenceTypes {
			refs[i] = string(t)
		}
		qb = qb.Where(squirrel.Eq{"reference_type": refs})
	}
	if f.ReferenceID != "" {
		qb = qb.Where(squirrel.Eq{"reference_id": f.ReferenceID})
	}
	if f.From != nil {
		qb = qb.Where(squirrel.GtOrEq{"date": *f.From})
	}
	if f.To != nil {
		qb = qb.Where(squirrel.LtOrEq{"date": *f.To})
	}
	if f.Limit > 0 {
		qb = qb.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		qb = qb.Offset(uint64(f.Offset))
	}
	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build history: %w", err)
	}

	var entries []entity.LedgerEntry
	if err := pgxscan.Select(ctx, r.q, &entries, query, args...); err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, storeErr("ledger history", err)
	}
	for i := range entries {
		entries[i].LocationType = f.LocationType
	}
	return entries, nil
}
