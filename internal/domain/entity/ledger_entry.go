package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerEntry fila inmutable del libro de stock de un nivel.
// Invariante: ClosingStock = OpeningStock + StockIn - StockOut.
// El orden real es ID (inserción); Date es la fecha de negocio y puede ser retroactiva.
type LedgerEntry struct {
	ID            int64
	LocationType  LocationType
	LocationID    string
	ProductID     string
	Date          time.Time
	OpeningStock  decimal.Decimal
	StockIn       decimal.Decimal
	StockOut      decimal.Decimal
	ClosingStock  decimal.Decimal
	ReferenceType ReferenceType
	ReferenceID   string
	TransportID   *string
	UnitPrice     decimal.NullDecimal
	BatchNumber   *string
	ExpiryDate    *time.Time
	Notes         string
	CreatedBy     string
	CreatedAt     time.Time
}

// Key devuelve la clave de saldo de la entrada.
func (e LedgerEntry) Key() StockKey {
	return StockKey{LocationType: e.LocationType, LocationID: e.LocationID, ProductID: e.ProductID}
}

// DailySummary foto diaria del último saldo conocido por clave.
type DailySummary struct {
	Date         time.Time
	LocationType LocationType
	LocationID   string
	ProductID    string
	StockIn      decimal.Decimal
	StockOut     decimal.Decimal
	ClosingStock decimal.Decimal
	UpdatedAt    time.Time
}
