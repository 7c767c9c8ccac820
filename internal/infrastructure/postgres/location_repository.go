package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var (
	_ repository.LocationRepository  = (*LocationRepo)(nil)
	_ repository.TransportRepository = (*TransportRepo)(nil)
)

var locationColumns = []string{"id", "name", "code", "address", "is_active", "created_at", "updated_at"}

// LocationRepo bodegas y casas de distribución; una tabla por nivel.
type LocationRepo struct {
	q Querier
}

// NewLocationRepository construye el adaptador de ubicaciones. Pasar pool o tx (Querier).
func NewLocationRepository(q Querier) *LocationRepo {
	return &LocationRepo{q: q}
}

// Upsert crea o actualiza la ubicación por código.
func (r *LocationRepo) Upsert(ctx context.Context, l *entity.Location) error {
	table, err := locationTable(l.Type)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(`
		INSERT INTO %s (id, name, code, address, is_active, created_at, updated_at)
		VALUES (COALESCE(NULLIF($1::text, '')::uuid, gen_random_uuid()), $2, $3, $4, $5, now(), now())
		ON CONFLICT (code) DO UPDATE SET
			name = EXCLUDED.name, address = EXCLUDED.address, is_active = EXCLUDED.is_active, updated_at = now()
		RETURNING id, created_at, updated_at`, table)
	if err := r.q.QueryRow(ctx, query, l.ID, l.Name, l.Code, l.Address, l.IsActive).
		Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt); err != nil {
		return storeErr("upsert location", err)
	}
	return nil
}

// GetByID obtiene la ubicación del nivel indicado.
func (r *LocationRepo) GetByID(ctx context.Context, tier entity.LocationType, id string) (*entity.Location, error) {
	table, err := locationTable(tier)
	if err != nil {
		return nil, err
	}
	query, args, err := psql.Select(locationColumns...).From(table).Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build location: %w", err)
	}
	var l entity.Location
	if err := pgxscan.Get(ctx, r.q, &l, query, args...); err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, storeErr("get location", err)
	}
	l.Type = tier
	return &l, nil
}

// ListByIDs obtiene las ubicaciones existentes del nivel entre los ids dados.
func (r *LocationRepo) ListByIDs(ctx context.Context, tier entity.LocationType, ids []string) ([]*entity.Location, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	table, err := locationTable(tier)
	if err != nil {
		return nil, err
	}
	query, args, err := psql.Select(locationColumns...).From(table).Where(squirrel.Eq{"id": ids}).OrderBy("name").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build locations: %w", err)
	}
	var list []*entity.Location
	if err := pgxscan.Select(ctx, r.q, &list, query, args...); err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, storeErr("list locations", err)
	}
	for _, l := range list {
		l.Type = tier
	}
	return list, nil
}

// TransportRepo vehículos de transporte.
type TransportRepo struct {
	q Querier
}

// NewTransportRepository construye el adaptador de transportes. Pasar pool o tx (Querier).
func NewTransportRepository(q Querier) *TransportRepo {
	return &TransportRepo{q: q}
}

// Upsert crea o actualiza el transporte por número de vehículo.
func (r *TransportRepo) Upsert(ctx context.Context, t *entity.Transport) error {
	query := `
		INSERT INTO transports (id, vehicle_number, driver_name, is_active, created_at)
		VALUES (COALESCE(NULLIF($1::text, '')::uuid, gen_random_uuid()), $2, $3, $4, now())
		ON CONFLICT (vehicle_number) DO UPDATE SET driver_name = EXCLUDED.driver_name, is_active = EXCLUDED.is_active
		RETURNING id, created_at`
	if err := r.q.QueryRow(ctx, query, t.ID, t.VehicleNumber, t.DriverName, t.IsActive).Scan(&t.ID, &t.CreatedAt); err != nil {
		return storeErr("upsert transport", err)
	}
	return nil
}

// GetByID obtiene el transporte.
func (r *TransportRepo) GetByID(ctx context.Context, id string) (*entity.Transport, error) {
	var t entity.Transport
	err := pgxscan.Get(ctx, r.q, &t,
		`SELECT id, vehicle_number, driver_name, is_active, created_at FROM transports WHERE id = $1`, id)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, storeErr("get transport", err)
	}
	return &t, nil
}
