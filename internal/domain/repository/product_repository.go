package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// ProductRepository puerto de lectura del catálogo de productos.
// GetByID devuelve nil, nil si no existe.
type ProductRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	ListByIDs(ctx context.Context, ids []string) ([]*entity.Product, error)
}
