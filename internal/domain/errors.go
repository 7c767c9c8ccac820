package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Errores de dominio del motor de inventario.
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInactive          = errors.New("recurso inactivo")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrUnavailable       = errors.New("almacenamiento no disponible")
)

// InsufficientStockError detalla qué clave de stock no alcanza para el débito solicitado.
type InsufficientStockError struct {
	LocationType string
	LocationID   string
	ProductID    string
	Available    decimal.Decimal
	Requested    decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("%s: producto %s en %s %s (disponible %s, solicitado %s)",
		ErrInsufficientStock.Error(), e.ProductID, e.LocationType, e.LocationID,
		e.Available.String(), e.Requested.String())
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// Invalid envuelve ErrInvalidInput con un detalle legible.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
