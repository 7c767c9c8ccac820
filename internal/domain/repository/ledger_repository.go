package repository

import (
	"context"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// LedgerReader lecturas de saldo sobre el libro. El saldo es el cierre de la
// entrada con mayor ID de la clave; nunca se ordena por fecha de negocio.
type LedgerReader interface {
	// Latest devuelve la última entrada de la clave o nil si no hay.
	Latest(ctx context.Context, key entity.StockKey) (*entity.LedgerEntry, error)
	// BalancesForLocation devuelve un saldo por producto presente en la ubicación.
	BalancesForLocation(ctx context.Context, tier entity.LocationType, locationID string) ([]entity.Balance, error)
}

// LedgerRepository operaciones de escritura; sólo se usa atado a una transacción.
type LedgerRepository interface {
	LedgerReader
	// Lock serializa el acceso a las claves hasta el fin de la transacción.
	// Las claves se bloquean en el orden recibido; el llamador debe ordenarlas.
	Lock(ctx context.Context, keys ...entity.StockKey) error
	// Append inserta la entrada y completa ID y CreatedAt.
	Append(ctx context.Context, entry *entity.LedgerEntry) error
}

// MovementFilter predicados tipados para listar entradas del libro.
// LocationType es obligatorio; Limit 0 = sin límite.
type MovementFilter struct {
	LocationType   entity.LocationType
	LocationID     string
	ProductID      string
	ReferenceTypes []entity.ReferenceType
	ReferenceID    string
	From           *time.Time
	To             *time.Time
	Limit          int
	Offset         int
}

// LedgerHistoryReader historial crudo del libro.
type LedgerHistoryReader interface {
	History(ctx context.Context, filter MovementFilter) ([]entity.LedgerEntry, error)
}
