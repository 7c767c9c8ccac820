package transfer

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/unicode/norm"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// Item una línea de un traslado.
type Item struct {
	ProductID   string
	Quantity    decimal.Decimal
	UnitPrice   decimal.NullDecimal
	BatchNumber *string
	ExpiryDate  *time.Time
}

// Document datos del documento de origen; se componen en las notas del libro.
type Document struct {
	OrderNumber         string // orden de producción, compra o venta; número de devolución
	OriginalOrderNumber string // venta original en devoluciones de cliente
	Counterparty        string // proveedor o cliente
	Reason              string
}

// Command entrada común a todos los tipos de movimiento.
type Command struct {
	Kind        Kind
	Source      *entity.LocationRef
	Destination *entity.LocationRef
	TransportID *string
	Items       []Item
	Date        time.Time // fecha de negocio; puede ser retroactiva
	Notes       string
	Document    Document
	CreatedBy   string
}

// Receipt resultado de un traslado confirmado.
type Receipt struct {
	ReferenceID string
	Kind        Kind
	Date        time.Time
	Entries     []entity.LedgerEntry
}

// ComposeNotes une orden, orden original, contraparte, motivo y notas con " - ",
// omitiendo los vacíos, en forma Unicode NFC.
func ComposeNotes(doc Document, notes string) string {
	parts := make([]string, 0, 5)
	for _, p := range []string{doc.OrderNumber, doc.OriginalOrderNumber, doc.Counterparty, doc.Reason, notes} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return norm.NFC.String(strings.Join(parts, " - "))
}
