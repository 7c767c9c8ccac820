package ledger_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/ledger"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// ──────────────────────────────────────────────────────────────────────────────
// Next / Apply
// ──────────────────────────────────────────────────────────────────────────────

func TestNext_CreditSumaAlCierre(t *testing.T) {
	m, err := ledger.Next(d("0"), entity.RefPurchase, d("100"))
	require.NoError(t, err)
	assert.True(t, m.Opening.Equal(d("0")))
	assert.True(t, m.In.Equal(d("100")))
	assert.True(t, m.Out.IsZero())
	assert.True(t, m.Closing.Equal(d("100")))
}

func TestNext_DebitRestaDelCierre(t *testing.T) {
	m, err := ledger.Next(d("100"), entity.RefTransferOut, d("40.5"))
	require.NoError(t, err)
	assert.True(t, m.Out.Equal(d("40.5")))
	assert.True(t, m.Closing.Equal(d("59.5")))
	assert.True(t, m.Closing.Equal(m.Opening.Add(m.In).Sub(m.Out)), "cierre = apertura + entrada - salida")
}

func TestNext_DebitMayorAlSaldoFalla(t *testing.T) {
	_, err := ledger.Next(d("10"), entity.RefSale, d("10.0001"))
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
}

func TestNext_CantidadNoPositivaEsInvalida(t *testing.T) {
	for _, q := range []string{"0", "-1"} {
		_, err := ledger.Next(d("10"), entity.RefPurchase, d(q))
		assert.True(t, errors.Is(err, domain.ErrInvalidInput), "cantidad %s debe rechazarse", q)
	}
}

func TestNext_TipoDesconocidoEsInvalido(t *testing.T) {
	_, err := ledger.Next(d("10"), entity.ReferenceType("x"), d("1"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestApply_RellenaImportes(t *testing.T) {
	e := entity.LedgerEntry{ReferenceType: entity.RefTransferIn}
	require.NoError(t, ledger.Apply(&e, d("60"), d("40")))
	assert.True(t, e.OpeningStock.Equal(d("60")))
	assert.True(t, e.ClosingStock.Equal(d("100")))
}

// ──────────────────────────────────────────────────────────────────────────────
// VerifyChain
// ──────────────────────────────────────────────────────────────────────────────

func entry(id int64, open, in, out, close string) entity.LedgerEntry {
	return entity.LedgerEntry{ID: id, OpeningStock: d(open), StockIn: d(in), StockOut: d(out), ClosingStock: d(close)}
}

func TestVerifyChain_SecuenciaValida(t *testing.T) {
	entries := []entity.LedgerEntry{
		entry(1, "0", "100", "0", "100"),
		entry(2, "100", "0", "40", "60"),
		entry(5, "60", "5", "0", "65"),
	}
	assert.Empty(t, ledger.VerifyChain(entries, decimal.Zero))
}

func TestVerifyChain_DetectaRupturas(t *testing.T) {
	entries := []entity.LedgerEntry{
		entry(1, "0", "100", "0", "100"),
		entry(2, "90", "0", "40", "50"), // apertura no coincide
		entry(3, "50", "0", "10", "41"), // aritmética rota
	}
	got := ledger.VerifyChain(entries, decimal.Zero)
	require.Len(t, got, 2)
	assert.Equal(t, int64(2), got[0].EntryID)
	assert.Equal(t, ledger.DiscrepancyContinuity, got[0].Kind)
	assert.True(t, got[0].Expected.Equal(d("100")))
	assert.Equal(t, int64(3), got[1].EntryID)
	assert.Equal(t, ledger.DiscrepancyArithmetic, got[1].Kind)
	assert.True(t, got[1].Expected.Equal(d("40")))
}

// ──────────────────────────────────────────────────────────────────────────────
// Alertas
// ──────────────────────────────────────────────────────────────────────────────

func TestEvaluateAlert(t *testing.T) {
	cases := []struct {
		name     string
		balance  string
		min, max string
		typ      ledger.AlertType
		severity ledger.Severity
	}{
		{"bajo alta (4 de min 10)", "4", "10", "100", ledger.AlertLowStock, ledger.SeverityHigh},
		{"bajo alta en el límite 50%", "5", "10", "100", ledger.AlertLowStock, ledger.SeverityHigh},
		{"bajo media", "8", "10", "100", ledger.AlertLowStock, ledger.SeverityMedium},
		{"bajo baja", "10", "10", "100", ledger.AlertLowStock, ledger.SeverityLow},
		{"exceso baja", "120", "10", "100", ledger.AlertOverStock, ledger.SeverityLow},
		{"exceso media", "130", "10", "100", ledger.AlertOverStock, ledger.SeverityMedium},
		{"exceso alta", "150", "10", "100", ledger.AlertOverStock, ledger.SeverityHigh},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := ledger.EvaluateAlert(d(tc.balance), d(tc.min), d(tc.max))
			require.NotNil(t, a)
			assert.Equal(t, tc.typ, a.Type)
			assert.Equal(t, tc.severity, a.Severity)
		})
	}
}

func TestEvaluateAlert_SinAlerta(t *testing.T) {
	assert.Nil(t, ledger.EvaluateAlert(d("50"), d("10"), d("100")))
	assert.Nil(t, ledger.EvaluateAlert(d("119.99"), d("10"), d("100")))
	assert.Nil(t, ledger.EvaluateAlert(d("0"), d("0"), d("0")), "umbrales en cero desactivan alertas")
}

// ──────────────────────────────────────────────────────────────────────────────
// Rotación, antigüedad, valorización
// ──────────────────────────────────────────────────────────────────────────────

func TestTurnover(t *testing.T) {
	rate, days := ledger.Turnover(d("120"), d("60"))
	assert.True(t, rate.Equal(d("2")))
	assert.True(t, days.Equal(d("182.5")))

	rate, days = ledger.Turnover(d("120"), decimal.Zero)
	assert.True(t, rate.IsZero(), "saldo promedio cero no divide")
	assert.True(t, days.IsZero())

	rate, days = ledger.Turnover(decimal.Zero, d("10"))
	assert.True(t, rate.IsZero())
	assert.True(t, days.IsZero())
}

func TestAgingBuckets(t *testing.T) {
	buckets, err := ledger.BuildAgingBuckets(nil)
	require.NoError(t, err)
	require.Len(t, buckets, 5)
	assert.Equal(t, "0-30", buckets[0].Label)
	assert.Equal(t, ">180", buckets[4].Label)

	assert.Equal(t, 0, ledger.BucketFor(buckets, 0))
	assert.Equal(t, 0, ledger.BucketFor(buckets, 30))
	assert.Equal(t, 1, ledger.BucketFor(buckets, 31))
	assert.Equal(t, 3, ledger.BucketFor(buckets, 180))
	assert.Equal(t, 4, ledger.BucketFor(buckets, 181))

	_, err = ledger.BuildAgingBuckets([]int{60, 30})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestValuate(t *testing.T) {
	layers := []ledger.CostLayer{
		{Quantity: d("10"), UnitCost: d("1")},
		{Quantity: d("10"), UnitCost: d("2")},
	}

	unit, total := ledger.Valuate(ledger.ValuationFIFO, d("15"), layers, d("9"))
	assert.True(t, total.Equal(d("25")), "FIFO conserva las capas recientes: 10*2 + 5*1")
	assert.True(t, unit.Equal(d("1.6667")))

	_, total = ledger.Valuate(ledger.ValuationLIFO, d("15"), layers, d("9"))
	assert.True(t, total.Equal(d("20")), "LIFO conserva las capas antiguas: 10*1 + 5*2")

	unit, total = ledger.Valuate(ledger.ValuationWeightedAverage, d("15"), layers, d("9"))
	assert.True(t, unit.Equal(d("1.5")))
	assert.True(t, total.Equal(d("22.5")))

	_, total = ledger.Valuate(ledger.ValuationFIFO, d("25"), layers, d("9"))
	assert.True(t, total.Equal(d("75")), "faltante valorado al costo de respaldo: 30 + 5*9")

	unit, total = ledger.Valuate(ledger.ValuationWeightedAverage, d("3"), nil, d("4"))
	assert.True(t, unit.Equal(d("4")))
	assert.True(t, total.Equal(d("12")))
}

func TestParseValuationMethod(t *testing.T) {
	m, err := ledger.ParseValuationMethod("")
	require.NoError(t, err)
	assert.Equal(t, ledger.ValuationWeightedAverage, m)
	m, err = ledger.ParseValuationMethod("fifo")
	require.NoError(t, err)
	assert.Equal(t, ledger.ValuationFIFO, m)
	_, err = ledger.ParseValuationMethod("random")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
