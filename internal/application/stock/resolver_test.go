package stock_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/stock"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

type fakeReader struct {
	latest   map[entity.StockKey]*entity.LedgerEntry
	balances []entity.Balance
	err      error
}

func (f *fakeReader) Latest(_ context.Context, key entity.StockKey) (*entity.LedgerEntry, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.latest[key], nil
}

func (f *fakeReader) BalancesForLocation(_ context.Context, _ entity.LocationType, _ string) ([]entity.Balance, error) {
	return f.balances, f.err
}

func TestCurrentStock(t *testing.T) {
	key := entity.StockKey{LocationType: entity.LocationWarehouse, LocationID: "W1", ProductID: "P1"}
	r := stock.NewResolver(&fakeReader{latest: map[entity.StockKey]*entity.LedgerEntry{
		key: {ID: 7, ClosingStock: decimal.NewFromInt(60)},
	}})

	got, err := r.CurrentStock(context.Background(), entity.LocationWarehouse, "W1", "P1")
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.NewFromInt(60)))

	// Sin entradas el saldo es 0
	got, err = r.CurrentStock(context.Background(), entity.LocationWarehouse, "W2", "P1")
	require.NoError(t, err)
	assert.True(t, got.IsZero())
}

func TestCurrentStock_ClaveInvalida(t *testing.T) {
	r := stock.NewResolver(&fakeReader{})
	_, err := r.CurrentStock(context.Background(), "store", "W1", "P1")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = r.CurrentStock(context.Background(), entity.LocationWarehouse, "", "P1")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCurrentStock_PropagaErrorDeAlmacenamiento(t *testing.T) {
	r := stock.NewResolver(&fakeReader{err: domain.ErrUnavailable})
	_, err := r.CurrentStock(context.Background(), entity.LocationDistributionHouse, "D1", "P1")
	assert.True(t, errors.Is(err, domain.ErrUnavailable))
}

func TestCurrentStockForLocation(t *testing.T) {
	r := stock.NewResolver(&fakeReader{balances: []entity.Balance{
		{ProductID: "P1", Quantity: decimal.NewFromInt(3)},
		{ProductID: "P2", Quantity: decimal.Zero},
	}})
	got, err := r.CurrentStockForLocation(context.Background(), entity.LocationDistributionHouse, "D1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	for _, b := range got {
		assert.Equal(t, entity.LocationDistributionHouse, b.LocationType)
		assert.Equal(t, "D1", b.LocationID)
	}
}
