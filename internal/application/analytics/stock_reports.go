package analytics

import (
	"context"
	"sort"
	"sync"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/ledger"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// CurrentStock saldo actual por (ubicación, producto) con nombres.
func (uc *ReportsUseCase) CurrentStock(ctx context.Context, req dto.ReportRequest) (*dto.CurrentStockReportDTO, error) {
	tiers, err := tiersFor(req.LocationType)
	if err != nil {
		return nil, err
	}
	filter := repository.ReportFilter{LocationID: req.LocationID, ProductID: req.ProductID, Category: req.Category}
	balances, err := collect(ctx, tiers, func(ctx context.Context, tier entity.LocationType) ([]entity.Balance, error) {
		return uc.deps.Analytics.Balances(ctx, tier, filter)
	})
	if err != nil {
		return nil, wrapReport("current stock", err)
	}
	cat, err := uc.loadCatalog(ctx, balanceKeys(balances))
	if err != nil {
		return nil, wrapReport("current stock", err)
	}

	report := &dto.CurrentStockReportDTO{Items: make([]dto.StockItemDTO, 0, len(balances)), TotalQuantity: decimal.Zero}
	for _, b := range balances {
		p := cat.product(b.ProductID)
		report.Items = append(report.Items, dto.StockItemDTO{
			LocationType: string(b.LocationType),
			LocationID:   b.LocationID,
			LocationName: cat.locationName(b.LocationType, b.LocationID),
			ProductID:    b.ProductID,
			SKU:          p.SKU,
			ProductName:  p.Name,
			Category:     p.Category,
			UnitMeasure:  p.UnitMeasure,
			Quantity:     b.Quantity,
			LastEntryID:  b.LastEntryID,
		})
		report.TotalQuantity = report.TotalQuantity.Add(b.Quantity)
	}
	sort.SliceStable(report.Items, func(i, j int) bool {
		a, b := report.Items[i], report.Items[j]
		if a.LocationType != b.LocationType {
			return a.LocationType > b.LocationType // warehouse primero
		}
		if a.LocationName != b.LocationName {
			return a.LocationName < b.LocationName
		}
		return a.ProductName < b.ProductName
	})
	report.TotalItems = len(report.Items)
	return report, nil
}

// MovementHistory filas crudas del libro de un nivel, más recientes primero.
func (uc *ReportsUseCase) MovementHistory(ctx context.Context, req dto.MovementsRequest) (*dto.MovementHistoryDTO, error) {
	tier, err := parseTier(req.LocationType)
	if err != nil {
		return nil, err
	}
	from, to, err := parseOptionalPeriod(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}
	refs, err := parseReferenceTypes(req.ReferenceTypes)
	if err != nil {
		return nil, err
	}
	page := req.PageRequest
	page.DefaultPage()

	entries, err := uc.deps.History.History(ctx, repository.MovementFilter{
		LocationType:   tier,
		LocationID:     req.LocationID,
		ProductID:      req.ProductID,
		ReferenceTypes: refs,
		ReferenceID:    req.ReferenceID,
		From:           from,
		To:             to,
		Limit:          page.Limit,
		Offset:         page.Offset,
	})
	if err != nil {
		return nil, wrapReport("movement history", err)
	}
	return &dto.MovementHistoryDTO{
		Items: dto.NewLedgerEntryDTOs(entries),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// DailySummary lee la foto diaria materializada.
func (uc *ReportsUseCase) DailySummary(ctx context.Context, req dto.ReportRequest) ([]dto.DailySummaryDTO, error) {
	if req.LocationType != "" {
		if _, err := parseTier(req.LocationType); err != nil {
			return nil, err
		}
	}
	from, to, err := parseOptionalPeriod(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}
	rows, err := uc.deps.Analytics.DailySummary(ctx, repository.SummaryFilter{
		LocationType: entity.LocationType(req.LocationType),
		LocationID:   req.LocationID,
		ProductID:    req.ProductID,
		From:         from,
		To:           to,
	})
	if err != nil {
		return nil, wrapReport("daily summary", err)
	}
	out := make([]dto.DailySummaryDTO, len(rows))
	for i, r := range rows {
		out[i] = dto.DailySummaryDTO{
			Date:         r.Date.Format(dateLayout),
			LocationType: string(r.LocationType),
			LocationID:   r.LocationID,
			ProductID:    r.ProductID,
			StockIn:      r.StockIn,
			StockOut:     r.StockOut,
			ClosingStock: r.ClosingStock,
		}
	}
	return out, nil
}

// RefreshDailySummary recalcula la foto del día en ambos niveles. Sin fecha = hoy.
func (uc *ReportsUseCase) RefreshDailySummary(ctx context.Context, date string) (*dto.RefreshSummaryDTO, error) {
	if uc.deps.Summaries == nil {
		return nil, domain.Invalid("foto diaria no configurada")
	}
	day := uc.today()
	if date != "" {
		var err error
		if day, err = parseDate("date", date); err != nil {
			return nil, err
		}
	}

	var mu sync.Mutex
	rows := make(map[string]int64, len(entity.LocationTypes))
	g, gctx := errgroup.WithContext(ctx)
	for _, tier := range entity.LocationTypes {
		tier := tier
		g.Go(func() error {
			n, err := uc.deps.Summaries.RefreshDailySummary(gctx, tier, day)
			if err != nil {
				return err
			}
			mu.Lock()
			rows[string(tier)] = n
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, wrapReport("refresh daily summary", err)
	}
	uc.log.Info().Str("date", day.Format(dateLayout)).Interface("rows", rows).Msg("foto diaria recalculada")
	return &dto.RefreshSummaryDTO{Date: day.Format(dateLayout), Rows: rows}, nil
}

var severityRank = map[string]int{
	string(ledger.SeverityHigh):   0,
	string(ledger.SeverityMedium): 1,
	string(ledger.SeverityLow):    2,
}

// Alerts compara cada saldo con los umbrales del producto; se recalcula en cada llamada.
// Sin umbral en el producto se usa el valor por defecto configurado.
func (uc *ReportsUseCase) Alerts(ctx context.Context, req dto.ReportRequest) (*dto.AlertsReportDTO, error) {
	tiers, err := tiersFor(req.LocationType)
	if err != nil {
		return nil, err
	}
	filter := repository.ReportFilter{LocationID: req.LocationID, ProductID: req.ProductID, Category: req.Category}
	balances, err := collect(ctx, tiers, func(ctx context.Context, tier entity.LocationType) ([]entity.Balance, error) {
		return uc.deps.Analytics.Balances(ctx, tier, filter)
	})
	if err != nil {
		return nil, wrapReport("alerts", err)
	}
	cat, err := uc.loadCatalog(ctx, balanceKeys(balances))
	if err != nil {
		return nil, wrapReport("alerts", err)
	}

	defMin := decimal.NewFromInt(uc.deps.Config.DefaultMinStock)
	defMax := decimal.NewFromInt(uc.deps.Config.DefaultMaxStock)
	report := &dto.AlertsReportDTO{Items: []dto.AlertDTO{}}
	for _, b := range balances {
		p := cat.product(b.ProductID)
		minLevel, maxLevel := defMin, defMax
		if p.MinStockLevel.Valid {
			minLevel = p.MinStockLevel.Decimal
		}
		if p.MaxStockLevel.Valid {
			maxLevel = p.MaxStockLevel.Decimal
		}
		alert := ledger.EvaluateAlert(b.Quantity, minLevel, maxLevel)
		if alert == nil {
			continue
		}
		report.Items = append(report.Items, dto.AlertDTO{
			LocationType: string(b.LocationType),
			LocationID:   b.LocationID,
			LocationName: cat.locationName(b.LocationType, b.LocationID),
			ProductID:    b.ProductID,
			SKU:          p.SKU,
			ProductName:  p.Name,
			Type:         string(alert.Type),
			Severity:     string(alert.Severity),
			CurrentStock: b.Quantity,
			Threshold:    alert.Threshold,
		})
		switch alert.Severity {
		case ledger.SeverityHigh:
			report.High++
		case ledger.SeverityMedium:
			report.Medium++
		default:
			report.Low++
		}
	}
	sort.SliceStable(report.Items, func(i, j int) bool {
		return severityRank[report.Items[i].Severity] < severityRank[report.Items[j].Severity]
	})
	report.Total = len(report.Items)
	return report, nil
}

// Reconciliation apertura y cierre de la clave en el período, totales y rupturas de la cadena.
// La cadena se verifica sobre todo el historial de la clave (orden de id).
func (uc *ReportsUseCase) Reconciliation(ctx context.Context, req dto.ReconciliationRequest) (*dto.ReconciliationDTO, error) {
	tier, err := parseTier(req.LocationType)
	if err != nil {
		return nil, err
	}
	if req.LocationID == "" || req.ProductID == "" {
		return nil, domain.Invalid("location_id y product_id son obligatorios")
	}
	from, to, err := uc.parsePeriod(req.StartDate, req.EndDate, firstOfMonth)
	if err != nil {
		return nil, err
	}

	desc, err := uc.deps.History.History(ctx, repository.MovementFilter{
		LocationType: tier,
		LocationID:   req.LocationID,
		ProductID:    req.ProductID,
	})
	if err != nil {
		return nil, wrapReport("reconciliation", err)
	}
	entries := make([]entity.LedgerEntry, len(desc))
	for i, e := range desc {
		entries[len(desc)-1-i] = e
	}

	out := &dto.ReconciliationDTO{
		LocationType:  string(tier),
		LocationID:    req.LocationID,
		ProductID:     req.ProductID,
		Period:        dto.PeriodDTO{StartDate: from.Format(dateLayout), EndDate: to.Format(dateLayout)},
		OpeningStock:  decimal.Zero,
		TotalIn:       decimal.Zero,
		TotalOut:      decimal.Zero,
		ClosingStock:  decimal.Zero,
		Discrepancies: ledger.VerifyChain(entries, decimal.Zero),
	}
	if out.Discrepancies == nil {
		out.Discrepancies = []ledger.Discrepancy{}
	}

	var before *entity.LedgerEntry
	first := true
	for i := range entries {
		e := &entries[i]
		switch {
		case e.Date.Before(from):
			before = e
		case e.Date.After(to):
		default:
			if first {
				out.OpeningStock = e.OpeningStock
				first = false
			}
			out.TotalIn = out.TotalIn.Add(e.StockIn)
			out.TotalOut = out.TotalOut.Add(e.StockOut)
			out.ClosingStock = e.ClosingStock
			out.Transactions++
		}
	}
	if out.Transactions == 0 && before != nil {
		out.OpeningStock = before.ClosingStock
		out.ClosingStock = before.ClosingStock
	}
	out.Balanced = len(out.Discrepancies) == 0
	return out, nil
}
