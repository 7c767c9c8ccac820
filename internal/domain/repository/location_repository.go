package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// LocationRepository puerto de lectura de bodegas y casas de distribución.
// GetByID devuelve nil, nil si no existe.
type LocationRepository interface {
	GetByID(ctx context.Context, tier entity.LocationType, id string) (*entity.Location, error)
	ListByIDs(ctx context.Context, tier entity.LocationType, ids []string) ([]*entity.Location, error)
}

// TransportRepository puerto de lectura de transportes.
type TransportRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Transport, error)
}
