package dto

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain/ledger"
)

// ── Query parameters ──────────────────────────────────────────────────────────

// ReportRequest filtros comunes de GET /api/reports/*.
// Sin location_type el reporte cubre ambos niveles.
type ReportRequest struct {
	LocationType string `query:"location_type" validate:"omitempty,oneof=warehouse distribution-house"`
	LocationID   string `query:"location_id"`
	ProductID    string `query:"product_id"`
	Category     string `query:"category"`
	StartDate    string `query:"start_date"` // YYYY-MM-DD
	EndDate      string `query:"end_date"`   // YYYY-MM-DD
	// Period agrupa la rotación por tramos; vacío = todo el rango.
	Period string `query:"period" validate:"omitempty,oneof=daily weekly monthly quarterly"`
}

// MovementsRequest parámetros para GET /api/reports/movements.
type MovementsRequest struct {
	LocationType   string `query:"location_type" validate:"required,oneof=warehouse distribution-house"`
	LocationID     string `query:"location_id"`
	ProductID      string `query:"product_id"`
	ReferenceTypes string `query:"reference_type"` // separados por coma
	ReferenceID    string `query:"reference_id"`
	StartDate      string `query:"start_date"`
	EndDate        string `query:"end_date"`
	PageRequest
}

// ReconciliationRequest parámetros para GET /api/reports/reconciliation.
type ReconciliationRequest struct {
	LocationType string `query:"location_type" validate:"required,oneof=warehouse distribution-house"`
	LocationID   string `query:"location_id" validate:"required"`
	ProductID    string `query:"product_id" validate:"required"`
	StartDate    string `query:"start_date"`
	EndDate      string `query:"end_date"`
}

// ── Stock actual ──────────────────────────────────────────────────────────────

// StockItemDTO saldo enriquecido con nombres de producto y ubicación.
type StockItemDTO struct {
	LocationType string          `json:"location_type"`
	LocationID   string          `json:"location_id"`
	LocationName string          `json:"location_name"`
	ProductID    string          `json:"product_id"`
	SKU          string          `json:"sku"`
	ProductName  string          `json:"product_name"`
	Category     string          `json:"category,omitempty"`
	UnitMeasure  string          `json:"unit_measure,omitempty"`
	Quantity     decimal.Decimal `json:"quantity"`
	LastEntryID  int64           `json:"last_entry_id"`
}

// CurrentStockReportDTO respuesta de GET /api/reports/current-stock.
type CurrentStockReportDTO struct {
	Items         []StockItemDTO  `json:"items"`
	TotalItems    int             `json:"total_items"`
	TotalQuantity decimal.Decimal `json:"total_quantity"`
}

// ── Historial y foto diaria ───────────────────────────────────────────────────

// MovementHistoryDTO respuesta de GET /api/reports/movements.
type MovementHistoryDTO struct {
	Items []LedgerEntryDTO `json:"items"`
	Page  PageResponse     `json:"page"`
}

// DailySummaryDTO una fila de la foto diaria.
type DailySummaryDTO struct {
	Date         string          `json:"date"`
	LocationType string          `json:"location_type"`
	LocationID   string          `json:"location_id"`
	ProductID    string          `json:"product_id"`
	StockIn      decimal.Decimal `json:"stock_in"`
	StockOut     decimal.Decimal `json:"stock_out"`
	ClosingStock decimal.Decimal `json:"closing_stock"`
}

// RefreshSummaryRequest body de POST /api/reports/daily-summary/refresh.
type RefreshSummaryRequest struct {
	Date string `json:"date"` // YYYY-MM-DD; por defecto hoy
}

// RefreshSummaryDTO filas recalculadas por nivel.
type RefreshSummaryDTO struct {
	Date string           `json:"date"`
	Rows map[string]int64 `json:"rows"`
}

// ── Alertas ───────────────────────────────────────────────────────────────────

// AlertDTO alerta de stock bajo o sobre-stock.
type AlertDTO struct {
	LocationType string          `json:"location_type"`
	LocationID   string          `json:"location_id"`
	LocationName string          `json:"location_name"`
	ProductID    string          `json:"product_id"`
	SKU          string          `json:"sku"`
	ProductName  string          `json:"product_name"`
	Type         string          `json:"type"`     // low-stock | over-stock
	Severity     string          `json:"severity"` // high | medium | low
	CurrentStock decimal.Decimal `json:"current_stock"`
	Threshold    decimal.Decimal `json:"threshold"`
}

// AlertsReportDTO respuesta de GET /api/reports/alerts.
type AlertsReportDTO struct {
	Items  []AlertDTO `json:"items"`
	Total  int        `json:"total"`
	High   int        `json:"high"`
	Medium int        `json:"medium"`
	Low    int        `json:"low"`
}

// ── Rotación ──────────────────────────────────────────────────────────────────

// TurnoverItemDTO rotación de una clave.
// Fórmula: rate = unidades salidas / saldo promedio; days = 365 / rate.
type TurnoverItemDTO struct {
	LocationType     string          `json:"location_type"`
	LocationID       string          `json:"location_id"`
	ProductID        string          `json:"product_id"`
	SKU              string          `json:"sku"`
	ProductName      string          `json:"product_name"`
	PeriodStart      string          `json:"period_start,omitempty"` // sólo con period
	UnitsOut         decimal.Decimal `json:"units_out"`
	CostOfGoodsMoved decimal.Decimal `json:"cost_of_goods_moved"` // UnitsOut * costo
	AverageBalance   decimal.Decimal `json:"average_balance"`
	TurnoverRate     decimal.Decimal `json:"turnover_rate"`
	TurnoverDays     decimal.Decimal `json:"turnover_days"`
}

// TurnoverReportDTO respuesta de GET /api/reports/turnover.
type TurnoverReportDTO struct {
	Period   PeriodDTO         `json:"period"`
	Grouping string            `json:"grouping,omitempty"`
	Items    []TurnoverItemDTO `json:"items"`
}

// ── Antigüedad ────────────────────────────────────────────────────────────────

// AgingItemDTO antigüedad de una clave con saldo positivo.
type AgingItemDTO struct {
	LocationType string          `json:"location_type"`
	LocationID   string          `json:"location_id"`
	ProductID    string          `json:"product_id"`
	SKU          string          `json:"sku"`
	ProductName  string          `json:"product_name"`
	Quantity     decimal.Decimal `json:"quantity"`
	Value        decimal.Decimal `json:"value"`
	FirstReceipt string          `json:"first_receipt"`
	AgeDays      int             `json:"age_days"`
	Bucket       string          `json:"bucket"`
}

// AgingBucketDTO totales de un rango de antigüedad.
type AgingBucketDTO struct {
	Label    string          `json:"label"`
	Items    int             `json:"items"`
	Quantity decimal.Decimal `json:"quantity"`
	Value    decimal.Decimal `json:"value"`
}

// AgingReportDTO respuesta de GET /api/reports/aging.
type AgingReportDTO struct {
	AsOf    string           `json:"as_of"`
	Buckets []AgingBucketDTO `json:"buckets"`
	Items   []AgingItemDTO   `json:"items"`
}

// ── Valorización ──────────────────────────────────────────────────────────────

// ValuationItemDTO valor del saldo de una clave.
type ValuationItemDTO struct {
	LocationType string          `json:"location_type"`
	LocationID   string          `json:"location_id"`
	ProductID    string          `json:"product_id"`
	SKU          string          `json:"sku"`
	ProductName  string          `json:"product_name"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	TotalValue   decimal.Decimal `json:"total_value"`
}

// ValuationReportDTO respuesta de GET /api/reports/valuation.
type ValuationReportDTO struct {
	Method        string             `json:"method"`
	AsOf          string             `json:"as_of"`
	TotalQuantity decimal.Decimal    `json:"total_quantity"`
	TotalValue    decimal.Decimal    `json:"total_value"`
	Items         []ValuationItemDTO `json:"items"`
}

// ── Productos de alta y baja rotación ─────────────────────────────────────────

// MoverDTO actividad de una clave en el período.
type MoverDTO struct {
	LocationType      string          `json:"location_type"`
	LocationID        string          `json:"location_id"`
	ProductID         string          `json:"product_id"`
	SKU               string          `json:"sku"`
	ProductName       string          `json:"product_name"`
	UnitsIn           decimal.Decimal `json:"units_in"`
	UnitsOut          decimal.Decimal `json:"units_out"`
	MovementCount     int64           `json:"movement_count"`
	LastMovement      string          `json:"last_movement"`
	DaysSinceMovement int             `json:"days_since_movement"`
}

// MoversReportDTO respuesta de GET /api/reports/fast-moving y /slow-moving.
type MoversReportDTO struct {
	Period PeriodDTO  `json:"period"`
	Items  []MoverDTO `json:"items"`
}

// ── Conciliación ──────────────────────────────────────────────────────────────

// ReconciliationDTO respuesta de GET /api/reports/reconciliation.
type ReconciliationDTO struct {
	LocationType  string               `json:"location_type"`
	LocationID    string               `json:"location_id"`
	ProductID     string               `json:"product_id"`
	Period        PeriodDTO            `json:"period"`
	OpeningStock  decimal.Decimal      `json:"opening_stock"`
	TotalIn       decimal.Decimal      `json:"total_in"`
	TotalOut      decimal.Decimal      `json:"total_out"`
	ClosingStock  decimal.Decimal      `json:"closing_stock"`
	Transactions  int                  `json:"transactions"`
	Balanced      bool                 `json:"balanced"`
	Discrepancies []ledger.Discrepancy `json:"discrepancies"`
}
