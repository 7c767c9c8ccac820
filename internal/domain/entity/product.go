package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del catálogo. El libro sólo lo lee:
// IsActive controla si puede participar en un movimiento nuevo y
// Min/MaxStockLevel y CostPrice alimentan la analítica.
type Product struct {
	ID            string
	SKU           string
	Name          string
	Category      string
	UnitMeasure   string
	CostPrice     decimal.Decimal
	MinStockLevel decimal.NullDecimal // vacío = usar el mínimo por defecto
	MaxStockLevel decimal.NullDecimal // vacío = usar el máximo por defecto
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
