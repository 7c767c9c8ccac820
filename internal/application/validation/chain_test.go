package validation_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/validation"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// ─── fakes ───────────────────────────────────────────────────────────────────

type locRepo map[entity.LocationRef]*entity.Location

func (r locRepo) GetByID(_ context.Context, tier entity.LocationType, id string) (*entity.Location, error) {
	return r[entity.LocationRef{Type: tier, ID: id}], nil
}

func (r locRepo) ListByIDs(context.Context, entity.LocationType, []string) ([]*entity.Location, error) {
	return nil, nil
}

type transportRepo map[string]*entity.Transport

func (r transportRepo) GetByID(_ context.Context, id string) (*entity.Transport, error) {
	return r[id], nil
}

type productRepo struct {
	products map[string]*entity.Product
	err      error
}

func (r productRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	return r.products[id], r.err
}

func (r productRepo) ListByIDs(context.Context, []string) ([]*entity.Product, error) {
	return nil, nil
}

// ─── Chain ───────────────────────────────────────────────────────────────────

func TestChain_CortaEnElPrimerError(t *testing.T) {
	first := errors.New("primero")
	var ran []int
	var chain validation.Chain
	chain.Add(
		func(context.Context) error { ran = append(ran, 1); return nil },
		func(context.Context) error { ran = append(ran, 2); return first },
		func(context.Context) error { ran = append(ran, 3); return errors.New("nunca") },
	)
	assert.ErrorIs(t, chain.Run(context.Background()), first)
	assert.Equal(t, []int{1, 2}, ran)
}

func TestChain_ContextoCancelado(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	chain := validation.Chain{func(context.Context) error { return nil }}
	assert.ErrorIs(t, chain.Run(ctx), context.Canceled)
}

// ─── Chequeos ────────────────────────────────────────────────────────────────

func TestLocationActive(t *testing.T) {
	w1 := entity.LocationRef{Type: entity.LocationWarehouse, ID: "W1"}
	off := entity.LocationRef{Type: entity.LocationWarehouse, ID: "W2"}
	repo := locRepo{
		w1:  {ID: "W1", IsActive: true},
		off: {ID: "W2", IsActive: false},
	}
	ctx := context.Background()

	assert.NoError(t, validation.LocationActive(repo, w1)(ctx))
	assert.ErrorIs(t, validation.LocationActive(repo, off)(ctx), domain.ErrInactive)
	// Misma id en otro nivel no existe
	dh := entity.LocationRef{Type: entity.LocationDistributionHouse, ID: "W1"}
	assert.ErrorIs(t, validation.LocationActive(repo, dh)(ctx), domain.ErrNotFound)
}

func TestTransportActive(t *testing.T) {
	repo := transportRepo{"T1": {ID: "T1", IsActive: true}, "T2": {ID: "T2"}}
	ctx := context.Background()
	id := func(s string) *string { return &s }

	assert.NoError(t, validation.TransportActive(repo, nil)(ctx))
	assert.NoError(t, validation.TransportActive(repo, id("T1"))(ctx))
	assert.ErrorIs(t, validation.TransportActive(repo, id("T2"))(ctx), domain.ErrInactive)
	assert.ErrorIs(t, validation.TransportActive(repo, id("T3"))(ctx), domain.ErrNotFound)
}

func TestProductActive(t *testing.T) {
	ctx := context.Background()
	repo := productRepo{products: map[string]*entity.Product{
		"P1": {ID: "P1", IsActive: true},
		"P2": {ID: "P2"},
	}}
	assert.NoError(t, validation.ProductActive(repo, "P1")(ctx))
	assert.ErrorIs(t, validation.ProductActive(repo, "P2")(ctx), domain.ErrInactive)
	assert.ErrorIs(t, validation.ProductActive(repo, "P9")(ctx), domain.ErrNotFound)

	broken := productRepo{err: domain.ErrUnavailable}
	assert.ErrorIs(t, validation.ProductActive(broken, "P1")(ctx), domain.ErrUnavailable)
}

func TestChequeosDeForma(t *testing.T) {
	ctx := context.Background()
	w1 := entity.LocationRef{Type: entity.LocationWarehouse, ID: "W1"}
	d1 := entity.LocationRef{Type: entity.LocationDistributionHouse, ID: "W1"}

	assert.ErrorIs(t, validation.NonEmptyItems(0)(ctx), domain.ErrInvalidInput)
	assert.NoError(t, validation.NonEmptyItems(1)(ctx))
	assert.ErrorIs(t, validation.DistinctLocations(w1, w1)(ctx), domain.ErrInvalidInput)
	assert.NoError(t, validation.DistinctLocations(w1, d1)(ctx))
	assert.ErrorIs(t, validation.PositiveQuantity("P1", decimal.Zero)(ctx), domain.ErrInvalidInput)
	assert.ErrorIs(t, validation.PositiveQuantity("P1", decimal.NewFromInt(-2))(ctx), domain.ErrInvalidInput)
	assert.NoError(t, validation.PositiveQuantity("P1", decimal.RequireFromString("0.001"))(ctx))
}

func TestAmountFits(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		amount string
		ok     bool
	}{
		{"1", true},
		{"0.0001", true},
		{"1.50000", true},
		{"99999999999999.9999", true},
		{"0.99996", false},
		{"0.00001", false},
		{"100000000000000", false},
		{"-100000000000000", false},
	}
	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			err := validation.AmountFits("cantidad", decimal.RequireFromString(tt.amount))(ctx)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestSufficientBalance(t *testing.T) {
	key := entity.StockKey{LocationType: entity.LocationWarehouse, LocationID: "W1", ProductID: "P1"}
	ctx := context.Background()

	assert.NoError(t, validation.SufficientBalance(key, decimal.NewFromInt(60), decimal.NewFromInt(60))(ctx))

	err := validation.SufficientBalance(key, decimal.NewFromInt(60), decimal.NewFromInt(61))(ctx)
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	var stockErr *domain.InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, "P1", stockErr.ProductID)
	assert.True(t, stockErr.Available.Equal(decimal.NewFromInt(60)))
}
