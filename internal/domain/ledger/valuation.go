package ledger

import (
	"strings"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/shopspring/decimal"
)

// ValuationMethod método de valorización del saldo.
type ValuationMethod string

const (
	ValuationFIFO            ValuationMethod = "FIFO"
	ValuationLIFO            ValuationMethod = "LIFO"
	ValuationWeightedAverage ValuationMethod = "weighted-average"
)

// ParseValuationMethod acepta FIFO, LIFO o weighted-average (por defecto).
func ParseValuationMethod(s string) (ValuationMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "weighted-average", "average", "avg":
		return ValuationWeightedAverage, nil
	case "fifo":
		return ValuationFIFO, nil
	case "lifo":
		return ValuationLIFO, nil
	}
	return "", domain.Invalid("método de valorización desconocido %q", s)
}

// CostLayer una entrada al stock con su costo unitario, en orden de inserción.
type CostLayer struct {
	Quantity decimal.Decimal
	UnitCost decimal.Decimal
}

// WeightedAverageCost costo promedio ponderado incremental:
// ((stockActual * costoActual) + (cantEntrada * costoEntrada)) / (stockActual + cantEntrada)
func WeightedAverageCost(currentQty, currentCost, inQty, inCost decimal.Decimal) decimal.Decimal {
	sum := currentQty.Add(inQty)
	if sum.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	num := currentQty.Mul(currentCost).Add(inQty.Mul(inCost))
	return num.Div(sum)
}

// Valuate valoriza balance según el método. Las capas no cubiertas se valoran a fallbackCost.
// FIFO: el saldo remanente son las capas más recientes. LIFO: las más antiguas.
func Valuate(method ValuationMethod, balance decimal.Decimal, layers []CostLayer, fallbackCost decimal.Decimal) (unitCost, total decimal.Decimal) {
	if !balance.IsPositive() {
		return decimal.Zero, decimal.Zero
	}
	switch method {
	case ValuationFIFO, ValuationLIFO:
		remaining := balance
		total = decimal.Zero
		for i := range layers {
			idx := i
			if method == ValuationFIFO {
				idx = len(layers) - 1 - i
			}
			if !remaining.IsPositive() {
				break
			}
			l := layers[idx]
			take := decimal.Min(remaining, l.Quantity)
			total = total.Add(take.Mul(l.UnitCost))
			remaining = remaining.Sub(take)
		}
		if remaining.IsPositive() {
			total = total.Add(remaining.Mul(fallbackCost))
		}
		return total.Div(balance).Round(4), total.Round(2)
	default:
		avg := decimal.Zero
		qty := decimal.Zero
		for _, l := range layers {
			avg = WeightedAverageCost(qty, avg, l.Quantity, l.UnitCost)
			qty = qty.Add(l.Quantity)
		}
		if qty.IsZero() {
			avg = fallbackCost
		}
		return avg.Round(4), balance.Mul(avg).Round(2)
	}
}
