package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/analytics"
	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/transfer"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	apphttp "github.com/jhoicas/stock-ledger/internal/interfaces/http"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes
// ──────────────────────────────────────────────────────────────────────────────

type fakePoster struct {
	got *transfer.Command
	err error
}

func (f *fakePoster) Post(_ context.Context, cmd transfer.Command) (*transfer.Receipt, error) {
	f.got = &cmd
	if f.err != nil {
		return nil, f.err
	}
	return &transfer.Receipt{
		ReferenceID: "ref-1",
		Kind:        cmd.Kind,
		Date:        time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC),
		Entries: []entity.LedgerEntry{{
			ID: 1, LocationType: entity.LocationWarehouse, LocationID: "W1", ProductID: "P1",
			StockIn: decimal.NewFromInt(100), ClosingStock: decimal.NewFromInt(100),
			ReferenceType: entity.RefPurchase, ReferenceID: "ref-1", CreatedBy: cmd.CreatedBy,
		}},
	}, nil
}

type fakeBalances struct{ err error }

func (f fakeBalances) CurrentStock(_ context.Context, _ entity.LocationType, _, _ string) (decimal.Decimal, error) {
	return decimal.NewFromInt(60), f.err
}

func (f fakeBalances) CurrentStockForLocation(_ context.Context, tier entity.LocationType, loc string) ([]entity.Balance, error) {
	return []entity.Balance{{LocationType: tier, LocationID: loc, ProductID: "P1", Quantity: decimal.NewFromInt(7)}}, f.err
}

type fakeReports struct {
	err      error
	pdf      []byte
	lastReq  dto.ReportRequest
	lastTopN int
}

func (f *fakeReports) CurrentStock(_ context.Context, req dto.ReportRequest) (*dto.CurrentStockReportDTO, error) {
	f.lastReq = req
	return &dto.CurrentStockReportDTO{Items: []dto.StockItemDTO{}}, f.err
}

func (f *fakeReports) MovementHistory(_ context.Context, req dto.MovementsRequest) (*dto.MovementHistoryDTO, error) {
	return &dto.MovementHistoryDTO{Page: dto.PageResponse{Limit: req.Limit, Offset: req.Offset}}, f.err
}

func (f *fakeReports) DailySummary(context.Context, dto.ReportRequest) ([]dto.DailySummaryDTO, error) {
	return []dto.DailySummaryDTO{}, f.err
}

func (f *fakeReports) RefreshDailySummary(_ context.Context, date string) (*dto.RefreshSummaryDTO, error) {
	return &dto.RefreshSummaryDTO{Date: date}, f.err
}

func (f *fakeReports) Alerts(context.Context, dto.ReportRequest) (*dto.AlertsReportDTO, error) {
	return &dto.AlertsReportDTO{}, f.err
}

func (f *fakeReports) Turnover(_ context.Context, req dto.ReportRequest) (*dto.TurnoverReportDTO, error) {
	f.lastReq = req
	return &dto.TurnoverReportDTO{}, f.err
}

func (f *fakeReports) Aging(context.Context, dto.ReportRequest) (*dto.AgingReportDTO, error) {
	return &dto.AgingReportDTO{}, f.err
}

func (f *fakeReports) Valuation(_ context.Context, _ dto.ReportRequest, method string) (*dto.ValuationReportDTO, error) {
	return &dto.ValuationReportDTO{Method: method}, f.err
}

func (f *fakeReports) ValuationPDF(context.Context, dto.ReportRequest, string) ([]byte, error) {
	return f.pdf, f.err
}

func (f *fakeReports) FastMovers(_ context.Context, _ dto.ReportRequest, topN int) (*dto.MoversReportDTO, error) {
	f.lastTopN = topN
	return &dto.MoversReportDTO{}, f.err
}

func (f *fakeReports) SlowMovers(context.Context, dto.ReportRequest, int, int64) (*dto.MoversReportDTO, error) {
	return &dto.MoversReportDTO{}, f.err
}

func (f *fakeReports) Reconciliation(_ context.Context, req dto.ReconciliationRequest) (*dto.ReconciliationDTO, error) {
	return &dto.ReconciliationDTO{LocationID: req.LocationID, Balanced: true}, f.err
}

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

func newAPI(poster *fakePoster, balances fakeBalances, reports *fakeReports) *fiber.App {
	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		Transfers: poster,
		Stock:     balances,
		Reports:   reports,
		JWTSecret: testJWTSecret,
	})
	return app
}

func call(t *testing.T, app *fiber.App, method, path, role, body string) (*http.Response, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", tokenForRole(t, role))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]any
	_ = json.Unmarshal(raw, &out)
	return resp, out
}

const purchaseBody = `{
	"destination": {"type": "warehouse", "id": "W1"},
	"date": "2024-06-30",
	"order_number": "PO-77",
	"counterparty": "Proveedor Ñandú",
	"items": [{"product_id": "P1", "quantity": "100", "unit_price": "2.5", "batch_number": "L-1", "expiry_date": "2025-01-31"}]
}`

// ──────────────────────────────────────────────────────────────────────────────
// Traslados
// ──────────────────────────────────────────────────────────────────────────────

func TestTransfer_CompraCreada(t *testing.T) {
	poster := &fakePoster{}
	app := newAPI(poster, fakeBalances{}, &fakeReports{})

	resp, body := call(t, app, http.MethodPost, "/api/transfers/purchase", "bodeguero", purchaseBody)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "ref-1", body["reference_id"])
	assert.Equal(t, "2024-06-30", body["date"])
	assert.Len(t, body["entries"], 1)

	cmd := poster.got
	require.NotNil(t, cmd)
	assert.Equal(t, transfer.KindPurchase, cmd.Kind)
	assert.Equal(t, testUserID, cmd.CreatedBy, "el usuario del token es el creador")
	assert.Nil(t, cmd.Source)
	assert.Nil(t, cmd.TransportID)
	require.NotNil(t, cmd.Destination)
	assert.Equal(t, entity.LocationRef{Type: entity.LocationWarehouse, ID: "W1"}, *cmd.Destination)
	assert.Equal(t, "PO-77", cmd.Document.OrderNumber)
	assert.Equal(t, time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC), cmd.Date)

	require.Len(t, cmd.Items, 1)
	item := cmd.Items[0]
	assert.True(t, item.Quantity.Equal(decimal.NewFromInt(100)))
	assert.True(t, item.UnitPrice.Valid)
	assert.True(t, item.UnitPrice.Decimal.Equal(decimal.RequireFromString("2.5")))
	require.NotNil(t, item.BatchNumber)
	assert.Equal(t, "L-1", *item.BatchNumber)
	require.NotNil(t, item.ExpiryDate)
	assert.Equal(t, "2025-01-31", item.ExpiryDate.Format("2006-01-02"))
}

func TestTransfer_TipoDesconocido(t *testing.T) {
	app := newAPI(&fakePoster{}, fakeBalances{}, &fakeReports{})
	resp, body := call(t, app, http.MethodPost, "/api/transfers/teleport", "admin", purchaseBody)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "UNKNOWN_KIND", body["code"])

	msg, _ := body["message"].(string)
	assert.Contains(t, msg, "teleport")
	for _, k := range transfer.Kinds() {
		assert.Contains(t, msg, string(k), "el error lista los tipos válidos")
	}
}

func TestTransfer_ValidacionDelBody(t *testing.T) {
	poster := &fakePoster{}
	app := newAPI(poster, fakeBalances{}, &fakeReports{})

	tests := []struct {
		name string
		body string
	}{
		{"sin items", `{"destination": {"type": "warehouse", "id": "W1"}, "items": []}`},
		{"nivel desconocido", `{"destination": {"type": "store", "id": "W1"}, "items": [{"product_id": "P1", "quantity": 1}]}`},
		{"fecha inválida", `{"destination": {"type": "warehouse", "id": "W1"}, "date": "30/06/2024", "items": [{"product_id": "P1", "quantity": 1}]}`},
		{"precio negativo", `{"destination": {"type": "warehouse", "id": "W1"}, "items": [{"product_id": "P1", "quantity": 1, "unit_price": -1}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := call(t, app, http.MethodPost, "/api/transfers/purchase", "admin", tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, "VALIDATION", body["code"])
		})
	}
	assert.Nil(t, poster.got, "ningún comando inválido llega al orquestador")
}

func TestTransfer_MapeoDeErrores(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{domain.Invalid("cantidad"), http.StatusBadRequest, "VALIDATION"},
		{fmt.Errorf("producto P9: %w", domain.ErrNotFound), http.StatusNotFound, "NOT_FOUND"},
		{fmt.Errorf("bodega W-OFF: %w", domain.ErrInactive), http.StatusUnprocessableEntity, "INACTIVE"},
		{&domain.InsufficientStockError{ProductID: "P1", Available: decimal.NewFromInt(60), Requested: decimal.NewFromInt(200)}, http.StatusConflict, "INSUFFICIENT_STOCK"},
		{fmt.Errorf("libro: %w", domain.ErrUnavailable), http.StatusServiceUnavailable, "UNAVAILABLE"},
		{fmt.Errorf("inesperado"), http.StatusInternalServerError, "INTERNAL"},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			app := newAPI(&fakePoster{err: tt.err}, fakeBalances{}, &fakeReports{})
			resp, body := call(t, app, http.MethodPost, "/api/transfers/purchase", "admin", purchaseBody)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, tt.code, body["code"])
		})
	}
}

func TestTransfer_StockInsuficienteIncluyeDetalle(t *testing.T) {
	err := &domain.InsufficientStockError{
		LocationType: "warehouse", LocationID: "W1", ProductID: "P1",
		Available: decimal.NewFromInt(60), Requested: decimal.NewFromInt(200),
	}
	app := newAPI(&fakePoster{err: err}, fakeBalances{}, &fakeReports{})
	_, body := call(t, app, http.MethodPost, "/api/transfers/sale", "admin", `{"source": {"type": "warehouse", "id": "W1"}, "items": [{"product_id": "P1", "quantity": 200}]}`)
	msg, _ := body["message"].(string)
	assert.Contains(t, msg, "disponible 60")
	assert.Contains(t, msg, "solicitado 200")
}

func TestTransfer_VendedorNoRegistraMovimientos(t *testing.T) {
	poster := &fakePoster{}
	app := newAPI(poster, fakeBalances{}, &fakeReports{})
	resp, _ := call(t, app, http.MethodPost, "/api/transfers/purchase", "vendedor", purchaseBody)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Nil(t, poster.got)
}

// ──────────────────────────────────────────────────────────────────────────────
// Saldos
// ──────────────────────────────────────────────────────────────────────────────

func TestStock_SaldoDeClave(t *testing.T) {
	app := newAPI(&fakePoster{}, fakeBalances{}, &fakeReports{})
	resp, body := call(t, app, http.MethodGet, "/api/stock/warehouse/W1/P1", "vendedor", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "60", body["quantity"])
	assert.Equal(t, "P1", body["product_id"])
}

func TestStock_SaldosDeUbicacion(t *testing.T) {
	app := newAPI(&fakePoster{}, fakeBalances{}, &fakeReports{})
	req := httptest.NewRequest(http.MethodGet, "/api/stock/distribution-house/D1", nil)
	req.Header.Set("Authorization", tokenForRole(t, "vendedor"))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out []dto.BalanceDTO
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Len(t, out, 1)
	assert.Equal(t, "distribution-house", out[0].LocationType)
	assert.True(t, out[0].Quantity.Equal(decimal.NewFromInt(7)))
}

func TestStock_NoDisponible(t *testing.T) {
	app := newAPI(&fakePoster{}, fakeBalances{err: domain.ErrUnavailable}, &fakeReports{})
	resp, body := call(t, app, http.MethodGet, "/api/stock/warehouse/W1/P1", "admin", "")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "UNAVAILABLE", body["code"])
}

// ──────────────────────────────────────────────────────────────────────────────
// Reportes
// ──────────────────────────────────────────────────────────────────────────────

func TestReports_QueryParams(t *testing.T) {
	reports := &fakeReports{}
	app := newAPI(&fakePoster{}, fakeBalances{}, reports)

	resp, _ := call(t, app, http.MethodGet, "/api/reports/turnover?location_type=warehouse&start_date=2024-06-01&category=harinas", "vendedor", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "warehouse", reports.lastReq.LocationType)
	assert.Equal(t, "2024-06-01", reports.lastReq.StartDate)
	assert.Equal(t, "harinas", reports.lastReq.Category)

	resp, _ = call(t, app, http.MethodGet, "/api/reports/turnover?period=monthly", "vendedor", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "monthly", reports.lastReq.Period)

	resp, body := call(t, app, http.MethodGet, "/api/reports/turnover?period=yearly", "vendedor", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", body["code"])

	resp, _ = call(t, app, http.MethodGet, "/api/reports/fast-moving?top_n=5", "vendedor", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 5, reports.lastTopN)

	resp, body = call(t, app, http.MethodGet, "/api/reports/valuation?method=LIFO", "vendedor", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "LIFO", body["method"])
}

func TestReports_ValidacionDeFiltros(t *testing.T) {
	app := newAPI(&fakePoster{}, fakeBalances{}, &fakeReports{})

	resp, body := call(t, app, http.MethodGet, "/api/reports/current-stock?location_type=store", "admin", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", body["code"])

	resp, _ = call(t, app, http.MethodGet, "/api/reports/movements", "admin", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "location_type es obligatorio")

	resp, _ = call(t, app, http.MethodGet, "/api/reports/reconciliation?location_type=warehouse&location_id=W1", "admin", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "product_id es obligatorio")

	resp, body = call(t, app, http.MethodGet, "/api/reports/reconciliation?location_type=warehouse&location_id=W1&product_id=P1", "admin", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["balanced"])
}

func TestReports_MovimientosPaginados(t *testing.T) {
	app := newAPI(&fakePoster{}, fakeBalances{}, &fakeReports{})
	resp, body := call(t, app, http.MethodGet, "/api/reports/movements?location_type=warehouse&limit=20&offset=40", "admin", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	page, _ := body["page"].(map[string]any)
	assert.EqualValues(t, 20, page["limit"])
	assert.EqualValues(t, 40, page["offset"])
}

func TestReports_ValuationPDF(t *testing.T) {
	app := newAPI(&fakePoster{}, fakeBalances{}, &fakeReports{pdf: []byte("%PDF-1.3 fake")})
	req := httptest.NewRequest(http.MethodGet, "/api/reports/valuation.pdf?method=FIFO", nil)
	req.Header.Set("Authorization", tokenForRole(t, "admin"))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	raw, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "%PDF-1.3 fake", string(raw))

	app = newAPI(&fakePoster{}, fakeBalances{}, &fakeReports{err: analytics.ErrNoPDF})
	resp2, body := call(t, app, http.MethodGet, "/api/reports/valuation.pdf", "admin", "")
	assert.Equal(t, http.StatusNotImplemented, resp2.StatusCode)
	assert.Equal(t, "PDF_DISABLED", body["code"])
}

func TestReports_RefreshSoloAdmin(t *testing.T) {
	app := newAPI(&fakePoster{}, fakeBalances{}, &fakeReports{})

	resp, _ := call(t, app, http.MethodPost, "/api/reports/daily-summary/refresh", "bodeguero", `{"date":"2024-06-30"}`)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body := call(t, app, http.MethodPost, "/api/reports/daily-summary/refresh", "admin", `{"date":"2024-06-30"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "2024-06-30", body["date"])
}

func TestReports_SinToken(t *testing.T) {
	app := newAPI(&fakePoster{}, fakeBalances{}, &fakeReports{})
	req := httptest.NewRequest(http.MethodGet, "/api/reports/alerts", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
