package entity

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// StockKey identifica un saldo rastreado: (nivel, ubicación, producto).
type StockKey struct {
	LocationType LocationType
	LocationID   string
	ProductID    string
}

// String se usa como clave de bloqueo y de mapas; es estable.
func (k StockKey) String() string {
	return fmt.Sprintf("%s:%s:%s", k.LocationType, k.LocationID, k.ProductID)
}

// Balance saldo actual de un producto en una ubicación, derivado de la última entrada del libro.
type Balance struct {
	LocationType LocationType
	LocationID   string
	ProductID    string
	Quantity     decimal.Decimal
	LastEntryID  int64
}
