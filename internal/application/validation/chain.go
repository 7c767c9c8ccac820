// Package validation agrupa chequeos reutilizables que se ejecutan antes de
// agregar filas al libro. Cada chequeo lee a través de los repositorios que
// recibe; atados a la transacción, ven la misma foto que las escrituras.
package validation

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// Check un chequeo; nil si pasa.
type Check func(ctx context.Context) error

// Chain chequeos ejecutados en orden; el primero que falla corta la cadena.
type Chain []Check

// Add agrega chequeos al final.
func (c *Chain) Add(checks ...Check) {
	*c = append(*c, checks...)
}

// Run ejecuta la cadena y devuelve el primer error.
func (c Chain) Run(ctx context.Context) error {
	for _, check := range c {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := check(ctx); err != nil {
			return err
		}
	}
	return nil
}

// NonEmptyItems exige al menos una línea.
func NonEmptyItems(n int) Check {
	return func(context.Context) error {
		if n == 0 {
			return domain.Invalid("la lista de ítems está vacía")
		}
		return nil
	}
}

// DistinctLocations rechaza traslados con origen igual a destino.
func DistinctLocations(src, dst entity.LocationRef) Check {
	return func(context.Context) error {
		if src == dst {
			return domain.Invalid("origen y destino son la misma ubicación (%s %s)", src.Type, src.ID)
		}
		return nil
	}
}

// LocationActive exige que la ubicación exista y esté activa.
func LocationActive(repo repository.LocationRepository, ref entity.LocationRef) Check {
	return func(ctx context.Context) error {
		loc, err := repo.GetByID(ctx, ref.Type, ref.ID)
		if err != nil {
			return err
		}
		if loc == nil {
			return fmt.Errorf("%w: %s %s", domain.ErrNotFound, ref.Type, ref.ID)
		}
		if !loc.IsActive {
			return fmt.Errorf("%w: %s %s", domain.ErrInactive, ref.Type, ref.ID)
		}
		return nil
	}
}

// TransportActive exige que el transporte exista y esté activo; sin transporte no valida nada.
func TransportActive(repo repository.TransportRepository, id *string) Check {
	return func(ctx context.Context) error {
		if id == nil || *id == "" {
			return nil
		}
		t, err := repo.GetByID(ctx, *id)
		if err != nil {
			return err
		}
		if t == nil {
			return fmt.Errorf("%w: transporte %s", domain.ErrNotFound, *id)
		}
		if !t.IsActive {
			return fmt.Errorf("%w: transporte %s", domain.ErrInactive, *id)
		}
		return nil
	}
}

// ProductActive exige que el producto exista y esté activo.
func ProductActive(repo repository.ProductRepository, id string) Check {
	return func(ctx context.Context) error {
		p, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if p == nil {
			return fmt.Errorf("%w: producto %s", domain.ErrNotFound, id)
		}
		if !p.IsActive {
			return fmt.Errorf("%w: producto %s", domain.ErrInactive, id)
		}
		return nil
	}
}

// PositiveQuantity exige cantidad estrictamente positiva.
func PositiveQuantity(productID string, qty decimal.Decimal) Check {
	return func(context.Context) error {
		if !qty.IsPositive() {
			return domain.Invalid("cantidad de %s debe ser mayor a 0", productID)
		}
		return nil
	}
}

// Cantidades y precios se guardan como NUMERIC(18,4).
const (
	AmountScale     = 4
	amountPrecision = 18
)

var maxAmount = decimal.New(1, amountPrecision-AmountScale)

// AmountFits exige que el monto quepa en la columna sin redondeo: a lo sumo
// AmountScale decimales y menos de 10^14 en valor absoluto.
func AmountFits(field string, amount decimal.Decimal) Check {
	return func(context.Context) error {
		if !amount.Equal(amount.Truncate(AmountScale)) {
			return domain.Invalid("%s admite a lo sumo %d decimales", field, AmountScale)
		}
		if amount.Abs().GreaterThanOrEqual(maxAmount) {
			return domain.Invalid("%s excede el máximo permitido", field)
		}
		return nil
	}
}

// SufficientBalance exige available >= requested para la clave.
func SufficientBalance(key entity.StockKey, available, requested decimal.Decimal) Check {
	return func(context.Context) error {
		if available.LessThan(requested) {
			return &domain.InsufficientStockError{
				LocationType: string(key.LocationType),
				LocationID:   key.LocationID,
				ProductID:    key.ProductID,
				Available:    available,
				Requested:    requested,
			}
		}
		return nil
	}
}
