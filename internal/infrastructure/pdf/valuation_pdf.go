// Package pdf genera la versión imprimible de la valorización de inventario.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Título + método         │  Fecha de corte          │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Ubicación | SKU | Producto | Cant | Costo | Valor    │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Cantidad / VALOR TOTAL                             │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

var tierLabels = map[string]string{
	"warehouse":          "Bodega",
	"distribution-house": "Casa dist.",
}

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoPDFGenerator implementa analytics.PDFRenderer usando Maroto v2.
type MarotoPDFGenerator struct {
	author string
}

// NewMarotoPDFGenerator construye el generador; author va en los metadatos del PDF.
func NewMarotoPDFGenerator(author string) *MarotoPDFGenerator {
	return &MarotoPDFGenerator{author: author}
}

// RenderValuation genera el PDF y devuelve sus bytes.
func (g *MarotoPDFGenerator) RenderValuation(report *dto.ValuationReportDTO) ([]byte, error) {
	if report == nil {
		return nil, fmt.Errorf("pdf: reporte vacío")
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Valorización de inventario", true).
		WithAuthor(nonEmpty(g.author, "stock-ledger"), true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(report))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	m.AddRows(tableHeaderRow())
	m.AddRows(tableDetailRows(report.Items)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(report))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(report *dto.ValuationReportDTO) core.Row {
	return row.New(16).Add(
		col.New(8).Add(
			text.New("VALORIZACIÓN DE INVENTARIO", props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Método: "+report.Method, props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(4).Add(
			text.New("Corte: "+report.AsOf, props.Text{
				Style: fontstyle.Bold, Size: 9, Align: align.Right, Top: 3,
			}),
			text.New(fmt.Sprintf("%d ítems", len(report.Items)), props.Text{
				Size: 8, Align: align.Right, Top: 9, Color: colorGray,
			}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Ubicación", 2, align.Left),
		h("SKU", 2, align.Left),
		h("Producto", 3, align.Left),
		h("Cant.", 1, align.Right),
		h("Costo unit.", 2, align.Right),
		h("Valor", 2, align.Right),
	)
}

// tableDetailRows una fila por clave valorizada.
func tableDetailRows(items []dto.ValuationItemDTO) []core.Row {
	result := make([]core.Row, 0, len(items))
	cell := func(s string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(s, props.Text{Size: 8, Align: a, Top: 1, Left: 1, Right: 1}))
	}
	for _, it := range items {
		result = append(result, row.New(7).Add(
			cell(nonEmpty(tierLabels[it.LocationType], it.LocationType)+" "+shortID(it.LocationID), 2, align.Left),
			cell(nonEmpty(it.SKU, "-"), 2, align.Left),
			cell(nonEmpty(it.ProductName, shortID(it.ProductID)), 3, align.Left),
			cell(formatMoney(it.Quantity.StringFixed(2)), 1, align.Right),
			cell("$"+formatMoney(it.UnitCost.StringFixed(2)), 2, align.Right),
			cell("$"+formatMoney(it.TotalValue.StringFixed(2)), 2, align.Right),
		))
	}
	return result
}

func totalsRow(report *dto.ValuationReportDTO) core.Row {
	label := func(s string) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 2, Top: 2,
		})
	}
	return row.New(12).Add(
		col.New(4),
		col.New(4).Add(label("Cantidad: "+formatMoney(report.TotalQuantity.StringFixed(2)))),
		col.New(4).Add(label("VALOR TOTAL: $"+formatMoney(report.TotalValue.StringFixed(2)))),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// shortID primeros 8 caracteres de un UUID.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// formatMoney inserta puntos de miles y usa coma decimal.
// Ej: "25000.50" → "25.000,50", "-1000000" → "-1.000.000"
func formatMoney(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, hasFrac := strings.Cut(s, ".")
	n := len(intPart)
	buf := make([]byte, 0, n+n/3+len(frac)+1)
	for i, c := range []byte(intPart) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	if hasFrac {
		buf = append(buf, ',')
		buf = append(buf, frac...)
	}
	return sign + string(buf)
}
