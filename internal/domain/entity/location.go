package entity

import "time"

// LocationType identifica el nivel de ubicación; cada nivel tiene su propio libro de stock.
type LocationType string

const (
	LocationWarehouse         LocationType = "warehouse"
	LocationDistributionHouse LocationType = "distribution-house"
)

// LocationTypes lista los niveles en orden estable.
var LocationTypes = []LocationType{LocationWarehouse, LocationDistributionHouse}

// Valid indica si el nivel es conocido.
func (t LocationType) Valid() bool {
	return t == LocationWarehouse || t == LocationDistributionHouse
}

// Location representa una bodega o una casa de distribución (datos de referencia).
type Location struct {
	ID        string
	Type      LocationType
	Name      string
	Code      string
	Address   string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// LocationRef referencia una ubicación concreta dentro de un nivel.
type LocationRef struct {
	Type LocationType
	ID   string
}
