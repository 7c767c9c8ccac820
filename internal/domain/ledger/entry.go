// Package ledger contiene la aritmética pura del libro de stock: cálculo de
// entradas, verificación de la cadena apertura/cierre, alertas, rotación,
// antigüedad y valorización. No depende de infraestructura.
package ledger

import (
	"fmt"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// Movement importes de una entrada nueva.
type Movement struct {
	Opening decimal.Decimal
	In      decimal.Decimal
	Out     decimal.Decimal
	Closing decimal.Decimal
}

// Next calcula la entrada que sigue a un saldo de apertura.
// La apertura es el cierre de la última entrada de la clave (0 si no hay).
func Next(opening decimal.Decimal, ref entity.ReferenceType, qty decimal.Decimal) (Movement, error) {
	if !qty.IsPositive() {
		return Movement{}, domain.Invalid("cantidad debe ser mayor a 0 (%s)", qty.String())
	}
	m := Movement{Opening: opening, In: decimal.Zero, Out: decimal.Zero}
	switch {
	case ref.IsCredit():
		m.In = qty
	case ref.IsDebit():
		m.Out = qty
	default:
		return Movement{}, domain.Invalid("tipo de referencia desconocido %q", ref)
	}
	m.Closing = opening.Add(m.In).Sub(m.Out)
	if m.Closing.IsNegative() {
		return Movement{}, domain.ErrInsufficientStock
	}
	return m, nil
}

// Apply rellena los importes de e a partir de la apertura.
func Apply(e *entity.LedgerEntry, opening, qty decimal.Decimal) error {
	m, err := Next(opening, e.ReferenceType, qty)
	if err != nil {
		return err
	}
	e.OpeningStock = m.Opening
	e.StockIn = m.In
	e.StockOut = m.Out
	e.ClosingStock = m.Closing
	return nil
}

// Discrepancy tipos de ruptura de la cadena.
const (
	DiscrepancyArithmetic = "arithmetic" // cierre != apertura + entrada - salida
	DiscrepancyContinuity = "continuity" // apertura != cierre de la entrada anterior
)

// Discrepancy una ruptura detectada en la secuencia de una clave.
type Discrepancy struct {
	EntryID  int64           `json:"entry_id"`
	Kind     string          `json:"kind"`
	Expected decimal.Decimal `json:"expected"`
	Actual   decimal.Decimal `json:"actual"`
}

func (d Discrepancy) String() string {
	return fmt.Sprintf("entrada %d: %s (esperado %s, encontrado %s)", d.EntryID, d.Kind, d.Expected, d.Actual)
}

// VerifyChain recorre las entradas de UNA clave ordenadas por ID y devuelve
// todas las rupturas. startOpening es el cierre anterior a la primera entrada
// (0 si la secuencia empieza en el origen).
func VerifyChain(entries []entity.LedgerEntry, startOpening decimal.Decimal) []Discrepancy {
	var out []Discrepancy
	prev := startOpening
	for _, e := range entries {
		if !e.OpeningStock.Equal(prev) {
			out = append(out, Discrepancy{EntryID: e.ID, Kind: DiscrepancyContinuity, Expected: prev, Actual: e.OpeningStock})
		}
		want := e.OpeningStock.Add(e.StockIn).Sub(e.StockOut)
		if !e.ClosingStock.Equal(want) {
			out = append(out, Discrepancy{EntryID: e.ID, Kind: DiscrepancyArithmetic, Expected: want, Actual: e.ClosingStock})
		}
		prev = e.ClosingStock
	}
	return out
}
