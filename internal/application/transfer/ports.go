package transfer

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// Repos repositorios atados a la misma transacción.
type Repos struct {
	Ledger     repository.LedgerRepository
	Products   repository.ProductRepository
	Locations  repository.LocationRepository
	Transports repository.TransportRepository
}

// TxRunner ejecuta fn dentro de una transacción de BD y hace Commit si fn
// devuelve nil o Rollback en cualquier otro caso. Garantiza que el libro
// nunca observe un traslado aplicado a medias.
type TxRunner interface {
	Run(ctx context.Context, fn func(ctx context.Context, repos Repos) error) error
}

// PostingObserver recibe cada traslado confirmado (después del Commit).
// Un error aquí se registra pero no revierte el traslado.
type PostingObserver interface {
	Posted(ctx context.Context, receipt *Receipt) error
}
