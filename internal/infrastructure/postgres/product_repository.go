package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

var productColumns = []string{
	"id", "sku", "name", "category", "unit_measure", "cost_price",
	"min_stock_level", "max_stock_level", "is_active", "created_at", "updated_at",
}

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// Upsert crea o actualiza un producto por SKU (carga inicial del catálogo).
func (r *ProductRepo) Upsert(ctx context.Context, p *entity.Product) error {
	query := `
		INSERT INTO products (id, sku, name, category, unit_measure, cost_price, min_stock_level, max_stock_level, is_active, created_at, updated_at)
		VALUES (COALESCE(NULLIF($1::text, '')::uuid, gen_random_uuid()), $2, $3, $4, $5, $6, $7, $8, $9, now(), now())
		ON CONFLICT (sku) DO UPDATE SET
			name = EXCLUDED.name, category = EXCLUDED.category, unit_measure = EXCLUDED.unit_measure,
			cost_price = EXCLUDED.cost_price, min_stock_level = EXCLUDED.min_stock_level,
			max_stock_level = EXCLUDED.max_stock_level, is_active = EXCLUDED.is_active, updated_at = now()
		RETURNING id, created_at, updated_at`
	err := r.q.QueryRow(ctx, query,
		p.ID, p.SKU, p.Name, p.Category, p.UnitMeasure, p.CostPrice,
		p.MinStockLevel, p.MaxStockLevel, p.IsActive,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: sku %s", domain.ErrInvalidInput, p.SKU)
		}
		return storeErr("upsert product", err)
	}
	return nil
}

// GetByID obtiene un producto por ID.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	query, args, err := psql.Select(productColumns...).From("products").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build product: %w", err)
	}
	var p entity.Product
	if err := pgxscan.Get(ctx, r.q, &p, query, args...); err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, storeErr("get product", err)
	}
	return &p, nil
}

// ListByIDs obtiene los productos existentes entre los ids dados.
func (r *ProductRepo) ListByIDs(ctx context.Context, ids []string) ([]*entity.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query, args, err := psql.Select(productColumns...).From("products").Where(squirrel.Eq{"id": ids}).OrderBy("name").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build products: %w", err)
	}
	var list []*entity.Product
	if err := pgxscan.Select(ctx, r.q, &list, query, args...); err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, storeErr("list products", err)
	}
	return list, nil
}
