package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// LocationRefRequest ubicación de origen o destino.
type LocationRefRequest struct {
	Type string `json:"type" validate:"required,oneof=warehouse distribution-house"`
	ID   string `json:"id" validate:"required"`
}

// TransferItemRequest una línea del traslado.
type TransferItemRequest struct {
	ProductID   string           `json:"product_id" validate:"required"`
	Quantity    decimal.Decimal  `json:"quantity"`
	UnitPrice   *decimal.Decimal `json:"unit_price,omitempty"`
	BatchNumber string           `json:"batch_number,omitempty" validate:"max=100"`
	ExpiryDate  string           `json:"expiry_date,omitempty"` // YYYY-MM-DD
}

// TransferRequest body para POST /api/transfers/:kind.
// Qué ubicaciones son obligatorias depende del tipo de movimiento.
type TransferRequest struct {
	Source              *LocationRefRequest   `json:"source,omitempty"`
	Destination         *LocationRefRequest   `json:"destination,omitempty"`
	TransportID         string                `json:"transport_id,omitempty"`
	Date                string                `json:"date,omitempty"` // YYYY-MM-DD; por defecto hoy
	Items               []TransferItemRequest `json:"items" validate:"required,min=1,dive"`
	OrderNumber         string                `json:"order_number,omitempty" validate:"max=100"`
	OriginalOrderNumber string                `json:"original_order_number,omitempty" validate:"max=100"`
	Counterparty        string                `json:"counterparty,omitempty" validate:"max=200"`
	Reason              string                `json:"reason,omitempty" validate:"max=500"`
	Notes               string                `json:"notes,omitempty" validate:"max=1000"`
}

// LedgerEntryDTO fila del libro.
type LedgerEntryDTO struct {
	ID            int64            `json:"id"`
	LocationType  string           `json:"location_type"`
	LocationID    string           `json:"location_id"`
	ProductID     string           `json:"product_id"`
	Date          string           `json:"date"`
	OpeningStock  decimal.Decimal  `json:"opening_stock"`
	StockIn       decimal.Decimal  `json:"stock_in"`
	StockOut      decimal.Decimal  `json:"stock_out"`
	ClosingStock  decimal.Decimal  `json:"closing_stock"`
	ReferenceType string           `json:"reference_type"`
	ReferenceID   string           `json:"reference_id"`
	TransportID   *string          `json:"transport_id,omitempty"`
	UnitPrice     *decimal.Decimal `json:"unit_price,omitempty"`
	BatchNumber   *string          `json:"batch_number,omitempty"`
	ExpiryDate    *string          `json:"expiry_date,omitempty"`
	Notes         string           `json:"notes,omitempty"`
	CreatedBy     string           `json:"created_by"`
	CreatedAt     time.Time        `json:"created_at"`
}

// TransferResponse acuse de un traslado confirmado.
type TransferResponse struct {
	ReferenceID string           `json:"reference_id"`
	Kind        string           `json:"kind"`
	Date        string           `json:"date"`
	Entries     []LedgerEntryDTO `json:"entries"`
}

// BalanceDTO saldo de una clave.
type BalanceDTO struct {
	LocationType string          `json:"location_type"`
	LocationID   string          `json:"location_id"`
	ProductID    string          `json:"product_id"`
	Quantity     decimal.Decimal `json:"quantity"`
}

const dateLayout = "2006-01-02"

// NewLedgerEntryDTO convierte una fila del libro a su forma de respuesta.
func NewLedgerEntryDTO(e entity.LedgerEntry) LedgerEntryDTO {
	out := LedgerEntryDTO{
		ID:            e.ID,
		LocationType:  string(e.LocationType),
		LocationID:    e.LocationID,
		ProductID:     e.ProductID,
		Date:          e.Date.Format(dateLayout),
		OpeningStock:  e.OpeningStock,
		StockIn:       e.StockIn,
		StockOut:      e.StockOut,
		ClosingStock:  e.ClosingStock,
		ReferenceType: string(e.ReferenceType),
		ReferenceID:   e.ReferenceID,
		TransportID:   e.TransportID,
		BatchNumber:   e.BatchNumber,
		Notes:         e.Notes,
		CreatedBy:     e.CreatedBy,
		CreatedAt:     e.CreatedAt,
	}
	if e.UnitPrice.Valid {
		price := e.UnitPrice.Decimal
		out.UnitPrice = &price
	}
	if e.ExpiryDate != nil {
		s := e.ExpiryDate.Format(dateLayout)
		out.ExpiryDate = &s
	}
	return out
}

// NewLedgerEntryDTOs convierte una lista de filas.
func NewLedgerEntryDTOs(entries []entity.LedgerEntry) []LedgerEntryDTO {
	out := make([]LedgerEntryDTO, len(entries))
	for i, e := range entries {
		out[i] = NewLedgerEntryDTO(e)
	}
	return out
}
