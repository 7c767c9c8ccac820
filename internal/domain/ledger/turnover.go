package ledger

import "github.com/shopspring/decimal"

var daysPerYear = decimal.NewFromInt(365)

// Turnover devuelve tasa de rotación (salidas / saldo promedio) y días de rotación (365 / tasa).
// Con saldo promedio o tasa en cero devuelve 0 en lugar de dividir por cero.
func Turnover(moved, averageBalance decimal.Decimal) (rate, days decimal.Decimal) {
	if !averageBalance.IsPositive() {
		return decimal.Zero, decimal.Zero
	}
	rate = moved.Div(averageBalance)
	if !rate.IsPositive() {
		return decimal.Zero, decimal.Zero
	}
	return rate.Round(4), daysPerYear.Div(rate).Round(2)
}
