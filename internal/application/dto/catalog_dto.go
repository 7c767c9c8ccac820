package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductResponse salida de un producto del catálogo.
type ProductResponse struct {
	ID            string           `json:"id"`
	SKU           string           `json:"sku"`
	Name          string           `json:"name"`
	Category      string           `json:"category"`
	UnitMeasure   string           `json:"unit_measure"`
	CostPrice     decimal.Decimal  `json:"cost_price"`
	MinStockLevel *decimal.Decimal `json:"min_stock_level,omitempty"`
	MaxStockLevel *decimal.Decimal `json:"max_stock_level,omitempty"`
	IsActive      bool             `json:"is_active"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// LocationResponse salida de una bodega o casa de distribución.
type LocationResponse struct {
	ID           string    `json:"id"`
	LocationType string    `json:"location_type"`
	Code         string    `json:"code"`
	Name         string    `json:"name"`
	Address      string    `json:"address,omitempty"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TransportResponse salida de un vehículo de transporte.
type TransportResponse struct {
	ID            string    `json:"id"`
	VehicleNumber string    `json:"vehicle_number"`
	DriverName    string    `json:"driver_name"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
}
