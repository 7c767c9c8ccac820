package ledger

import "github.com/shopspring/decimal"

// AlertType tipo de alerta de stock.
type AlertType string

// Severity severidad de una alerta.
type Severity string

const (
	AlertLowStock  AlertType = "low-stock"
	AlertOverStock AlertType = "over-stock"

	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

var (
	lowHigh    = decimal.NewFromFloat(0.5)
	lowMedium  = decimal.NewFromFloat(0.8)
	overLow    = decimal.NewFromFloat(1.2)
	overMedium = decimal.NewFromFloat(1.3)
	overHigh   = decimal.NewFromFloat(1.5)
)

// Alert resultado de comparar un saldo contra los umbrales del producto.
type Alert struct {
	Type      AlertType
	Severity  Severity
	Threshold decimal.Decimal
}

// EvaluateAlert compara balance contra min/max.
//
//	bajo:   balance <= min       (alta <= 0.5*min, media <= 0.8*min, si no baja)
//	exceso: balance >= 1.2*max   (alta >= 1.5*max, media >= 1.3*max, si no baja)
//
// Un umbral <= 0 desactiva su alerta. Devuelve nil si no hay alerta.
func EvaluateAlert(balance, min, max decimal.Decimal) *Alert {
	if min.IsPositive() && balance.LessThanOrEqual(min) {
		sev := SeverityLow
		switch {
		case balance.LessThanOrEqual(min.Mul(lowHigh)):
			sev = SeverityHigh
		case balance.LessThanOrEqual(min.Mul(lowMedium)):
			sev = SeverityMedium
		}
		return &Alert{Type: AlertLowStock, Severity: sev, Threshold: min}
	}
	if max.IsPositive() && balance.GreaterThanOrEqual(max.Mul(overLow)) {
		sev := SeverityLow
		switch {
		case balance.GreaterThanOrEqual(max.Mul(overHigh)):
			sev = SeverityHigh
		case balance.GreaterThanOrEqual(max.Mul(overMedium)):
			sev = SeverityMedium
		}
		return &Alert{Type: AlertOverStock, Severity: sev, Threshold: max}
	}
	return nil
}
