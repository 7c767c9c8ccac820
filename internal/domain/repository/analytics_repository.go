package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// ReportFilter filtros comunes de los reportes; cada consulta se ejecuta sobre un nivel.
type ReportFilter struct {
	LocationID string
	ProductID  string
	Category   string
	From       *time.Time
	To         *time.Time
	// Bucket unidad de date_trunc (day, week, month, quarter); vacío agrega todo el período.
	Bucket string
}

// MovementTotals agregados de movimientos de una clave en el período.
type MovementTotals struct {
	LocationID     string
	ProductID      string
	UnitsIn        decimal.Decimal
	UnitsOut       decimal.Decimal
	AverageClosing decimal.Decimal
	MovementCount  int64
	LastMovement   time.Time
	// BucketStart inicio del tramo cuando el filtro pide Bucket.
	BucketStart time.Time
}

// KeyDate fecha asociada a una clave (p. ej. primera recepción).
type KeyDate struct {
	LocationID string
	ProductID  string
	Date       time.Time
}

// CostLayerRow una entrada de crédito con su precio unitario (si lo tiene).
type CostLayerRow struct {
	LocationID string
	ProductID  string
	Quantity   decimal.Decimal
	UnitPrice  decimal.NullDecimal
}

// SummaryFilter filtro para la foto diaria.
type SummaryFilter struct {
	LocationType entity.LocationType
	LocationID   string
	ProductID    string
	From         *time.Time
	To           *time.Time
}

// AnalyticsRepository consultas de solo lectura sobre el libro y la foto diaria.
type AnalyticsRepository interface {
	// Balances último cierre por (ubicación, producto) del nivel.
	Balances(ctx context.Context, tier entity.LocationType, f ReportFilter) ([]entity.Balance, error)
	// MovementTotals entradas/salidas agrupadas por clave entre From y To (fecha de negocio).
	// Las salidas sólo cuentan los tipos indicados en outTypes.
	MovementTotals(ctx context.Context, tier entity.LocationType, f ReportFilter, outTypes []entity.ReferenceType) ([]MovementTotals, error)
	// FirstReceipts fecha de la primera entrada de crédito por clave.
	FirstReceipts(ctx context.Context, tier entity.LocationType, f ReportFilter) ([]KeyDate, error)
	// CostLayers entradas de crédito en orden de inserción.
	CostLayers(ctx context.Context, tier entity.LocationType, f ReportFilter) ([]CostLayerRow, error)
	// DailySummary lee la foto diaria materializada.
	DailySummary(ctx context.Context, f SummaryFilter) ([]entity.DailySummary, error)
}

// DailySummaryWriter materializa la foto diaria (fuera de la ruta de escritura del libro).
type DailySummaryWriter interface {
	RefreshDailySummary(ctx context.Context, tier entity.LocationType, date time.Time) (int64, error)
}
