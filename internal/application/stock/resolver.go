// Package stock resuelve saldos a partir del libro inmutable.
package stock

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// Resolver deriva saldos del libro; nunca mantiene contadores propios.
// Construido sobre un lector atado a una transacción, observa la misma foto que las escrituras.
type Resolver struct {
	ledger repository.LedgerReader
}

// NewResolver construye el resolver.
func NewResolver(ledger repository.LedgerReader) *Resolver {
	return &Resolver{ledger: ledger}
}

// CurrentStock devuelve el cierre de la última entrada de la clave, o 0 si no hay entradas.
func (r *Resolver) CurrentStock(ctx context.Context, tier entity.LocationType, locationID, productID string) (decimal.Decimal, error) {
	if !tier.Valid() || locationID == "" || productID == "" {
		return decimal.Zero, domain.Invalid("clave de stock incompleta")
	}
	last, err := r.ledger.Latest(ctx, entity.StockKey{LocationType: tier, LocationID: locationID, ProductID: productID})
	if err != nil {
		return decimal.Zero, err
	}
	if last == nil {
		return decimal.Zero, nil
	}
	return last.ClosingStock, nil
}

// CurrentStockForLocation devuelve un saldo por producto presente en la ubicación.
func (r *Resolver) CurrentStockForLocation(ctx context.Context, tier entity.LocationType, locationID string) ([]entity.Balance, error) {
	if !tier.Valid() || locationID == "" {
		return nil, domain.Invalid("ubicación incompleta")
	}
	balances, err := r.ledger.BalancesForLocation(ctx, tier, locationID)
	if err != nil {
		return nil, err
	}
	for i := range balances {
		balances[i].LocationType = tier
		balances[i].LocationID = locationID
	}
	return balances, nil
}
