package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var (
	_ repository.AnalyticsRepository = (*AnalyticsRepo)(nil)
	_ repository.DailySummaryWriter  = (*AnalyticsRepo)(nil)
)

// AnalyticsRepo consultas de solo lectura sobre los libros y la foto diaria.
type AnalyticsRepo struct {
	q Querier
}

// NewAnalyticsRepository construye el adaptador de analítica.
func NewAnalyticsRepository(q Querier) *AnalyticsRepo {
	return &AnalyticsRepo{q: q}
}

// fromLedger SELECT base sobre el libro del nivel unido a products (para filtrar por categoría).
func fromLedger(tier entity.LocationType, f repository.ReportFilter, columns ...string) (squirrel.SelectBuilder, error) {
	table, err := ledgerTable(tier)
	if err != nil {
		return squirrel.SelectBuilder{}, err
	}
	qb := psql.Select(columns...).
		From(table + " l").
		Join("products p ON p.id = l.product_id")
	if f.LocationID != "" {
		qb = qb.Where(squirrel.Eq{"l.location_id": f.LocationID})
	}
	if f.ProductID != "" {
		qb = qb.Where(squirrel.Eq{"l.product_id": f.ProductID})
	}
	if f.Category != "" {
		qb = qb.Where(squirrel.Eq{"p.category": f.Category})
	}
	return qb, nil
}

func withPeriod(qb squirrel.SelectBuilder, f repository.ReportFilter) squirrel.SelectBuilder {
	if f.From != nil {
		qb = qb.Where(squirrel.GtOrEq{"l.date": *f.From})
	}
	if f.To != nil {
		qb = qb.Where(squirrel.LtOrEq{"l.date": *f.To})
	}
	return qb
}

// Balances último cierre por (ubicación, producto).
func (r *AnalyticsRepo) Balances(ctx context.Context, tier entity.LocationType, f repository.ReportFilter) ([]entity.Balance, error) {
	qb, err := fromLedger(tier, f,
		"DISTINCT ON (l.location_id, l.product_id) l.location_id",
		"l.product_id", "l.closing_stock AS quantity", "l.id AS last_entry_id")
	if err != nil {
		return nil, err
	}
	var out []entity.Balance
	if err := r.selectInto(ctx, &out, qb.OrderBy("l.location_id", "l.product_id", "l.id DESC")); err != nil {
		return nil, storeErr("analytics balances", err)
	}
	for i := range out {
		out[i].LocationType = tier
	}
	return out, nil
}

// MovementTotals agregados por clave en el período; las salidas cuentan sólo outTypes.
func (r *AnalyticsRepo) MovementTotals(ctx context.Context, tier entity.LocationType, f repository.ReportFilter, outTypes []entity.ReferenceType) ([]repository.MovementTotals, error) {
	qb, err := fromLedger(tier, f,
		"l.location_id", "l.product_id",
		"COALESCE(SUM(l.stock_in), 0) AS units_in",
		"COALESCE(AVG(l.closing_stock), 0) AS average_closing",
		"COUNT(*) AS movement_count",
		"MAX(l.date) AS last_movement")
	if err != nil {
		return nil, err
	}
	if len(outTypes) > 0 {
		refs := make([]string, len(outTypes))
		for i, t := range outTypes {
			refs[i] = string(t)
		}
		qb = qb.Column(squirrel.Expr("COALESCE(SUM(l.stock_out) FILTER (WHERE l.reference_type = ANY(?)), 0) AS units_out", refs))
	} else {
		qb = qb.Column("COALESCE(SUM(l.stock_out), 0) AS units_out")
	}
	qb = withPeriod(qb, f)
	if f.Bucket != "" {
		qb = qb.Column(squirrel.Expr("date_trunc(?, l.date::timestamp)::date AS bucket_start", f.Bucket)).
			GroupBy("l.location_id", "l.product_id", "bucket_start").
			OrderBy("bucket_start", "l.location_id", "l.product_id")
	} else {
		qb = qb.GroupBy("l.location_id", "l.product_id").OrderBy("l.location_id", "l.product_id")
	}

	var out []repository.MovementTotals
	if err := r.selectInto(ctx, &out, qb); err != nil {
		return nil, storeErr("analytics movement totals", err)
	}
	return out, nil
}

// FirstReceipts fecha de la primera entrada de crédito por clave.
func (r *AnalyticsRepo) FirstReceipts(ctx context.Context, tier entity.LocationType, f repository.ReportFilter) ([]repository.KeyDate, error) {
	qb, err := fromLedger(tier, f, "l.location_id", "l.product_id", "MIN(l.date) AS date")
	if err != nil {
		return nil, err
	}
	qb = qb.Where("l.stock_in > 0").GroupBy("l.location_id", "l.product_id")

	var out []repository.KeyDate
	if err := r.selectInto(ctx, &out, qb); err != nil {
		return nil, storeErr("analytics first receipts", err)
	}
	return out, nil
}

// CostLayers entradas de crédito en orden de inserción.
func (r *AnalyticsRepo) CostLayers(ctx context.Context, tier entity.LocationType, f repository.ReportFilter) ([]repository.CostLayerRow, error) {
	qb, err := fromLedger(tier, f, "l.location_id", "l.product_id", "l.stock_in AS quantity", "l.unit_price")
	if err != nil {
		return nil, err
	}
	qb = withPeriod(qb, repository.ReportFilter{To: f.To}).Where("l.stock_in > 0").OrderBy("l.id")

	var out []repository.CostLayerRow
	if err := r.selectInto(ctx, &out, qb); err != nil {
		return nil, storeErr("analytics cost layers", err)
	}
	return out, nil
}

// DailySummary lee la foto diaria materializada.
func (r *AnalyticsRepo) DailySummary(ctx context.Context, f repository.SummaryFilter) ([]entity.DailySummary, error) {
	qb := psql.Select("date", "location_type", "location_id", "product_id", "stock_in", "stock_out", "closing_stock", "updated_at").
		From("stock_daily_summary").
		OrderBy("date", "location_type", "location_id", "product_id")
	if f.LocationType != "" {
		qb = qb.Where(squirrel.Eq{"location_type": string(f.LocationType)})
	}
	if f.LocationID != "" {
		qb = qb.Where(squirrel.Eq{"location_id": f.LocationID})
	}
	if f.ProductID != "" {
		qb = qb.Where(squirrel.Eq{"product_id": f.ProductID})
	}
	if f.From != nil {
		qb = qb.Where(squirrel.GtOrEq{"date": *f.From})
	}
	if f.To != nil {
		qb = qb.Where(squirrel.LtOrEq{"date": *f.To})
	}
	var out []entity.DailySummary
	if err := r.selectInto(ctx, &out, qb); err != nil {
		return nil, storeErr("daily summary", err)
	}
	return out, nil
}

// RefreshDailySummary recalcula la foto de un día: movimientos del día y último
// cierre con fecha de negocio <= date. Idempotente; devuelve las filas escritas.
func (r *AnalyticsRepo) RefreshDailySummary(ctx context.Context, tier entity.LocationType, date time.Time) (int64, error) {
	table, err := ledgerTable(tier)
	if err != nil {
		return 0, err
	}
	query := fmt.Sprintf(`
		INSERT INTO stock_daily_summary (date, location_type, location_id, product_id, stock_in, stock_out, closing_stock, updated_at)
		SELECT $1::date, $2, k.location_id, k.product_id,
		       COALESCE(d.stock_in, 0), COALESCE(d.stock_out, 0), k.closing_stock, now()
		FROM (
		    SELECT DISTINCT ON (location_id, product_id) location_id, product_id, closing_stock
		    FROM %[1]s
		    WHERE date <= $1::date
		    ORDER BY location_id, product_id, id DESC
		) k
		LEFT JOIN (
		    SELECT location_id, product_id, SUM(stock_in) AS stock_in, SUM(stock_out) AS stock_out
		    FROM %[1]s
		    WHERE date = $1::date
		    GROUP BY location_id, product_id
		) d USING (location_id, product_id)
		ON CONFLICT (date, location_type, location_id, product_id) DO UPDATE SET
		    stock_in = EXCLUDED.stock_in,
		    stock_out = EXCLUDED.stock_out,
		    closing_stock = EXCLUDED.closing_stock,
		    updated_at = now()`, table)

	tag, err := r.q.Exec(ctx, query, date, string(tier))
	if err != nil {
		return 0, storeErr("refresh daily summary", err)
	}
	return tag.RowsAffected(), nil
}

func (r *AnalyticsRepo) selectInto(ctx context.Context, dst any, qb squirrel.SelectBuilder) error {
	query, args, err := qb.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	return pgxscan.Select(ctx, r.q, dst, query, args...)
}
