package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// psql builder con placeholders $n.
var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return strings.Contains(err.Error(), "23505")
}

// isNotFound sin filas, o un id que no es uuid válido (22P02): para el libro es lo mismo.
func isNotFound(err error) bool {
	if errors.Is(err, pgx.ErrNoRows) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "22P02"
}

// isUnavailable errores de conexión, cancelación por timeout o servidor saturado.
func isUnavailable(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || pgconn.Timeout(err) {
		return true
	}
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case strings.HasPrefix(pgErr.Code, "08"): // connection_exception
			return true
		case pgErr.Code == "57P01", pgErr.Code == "57P03", pgErr.Code == "53300", pgErr.Code == "57014":
			return true
		}
	}
	return false
}

// storeErr envuelve err con la operación; los fallos de infraestructura quedan como ErrUnavailable.
func storeErr(op string, err error) error {
	if isUnavailable(err) {
		return fmt.Errorf("%s: %w: %w", op, domain.ErrUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// ledgerTable tabla del libro de cada nivel.
func ledgerTable(tier entity.LocationType) (string, error) {
	switch tier {
	case entity.LocationWarehouse:
		return "warehouse_stock_ledger", nil
	case entity.LocationDistributionHouse:
		return "distribution_house_stock_ledger", nil
	}
	return "", domain.Invalid("nivel de ubicación desconocido %q", tier)
}

// locationTable tabla de referencia de cada nivel.
func locationTable(tier entity.LocationType) (string, error) {
	switch tier {
	case entity.LocationWarehouse:
		return "warehouses", nil
	case entity.LocationDistributionHouse:
		return "distribution_houses", nil
	}
	return "", domain.Invalid("nivel de ubicación desconocido %q", tier)
}
