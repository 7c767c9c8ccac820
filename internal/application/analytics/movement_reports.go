package analytics

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/ledger"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

func totalsKeys(rows []tierTotals) []entity.StockKey {
	keys := make([]entity.StockKey, len(rows))
	for i, r := range rows {
		keys[i] = entity.StockKey{LocationType: r.tier, LocationID: r.LocationID, ProductID: r.ProductID}
	}
	return keys
}

// tierTotals agregados con el nivel al que pertenecen.
type tierTotals struct {
	repository.MovementTotals
	tier entity.LocationType
}

func (uc *ReportsUseCase) movementTotals(ctx context.Context, tiers []entity.LocationType, f repository.ReportFilter) ([]tierTotals, error) {
	return collect(ctx, tiers, func(ctx context.Context, tier entity.LocationType) ([]tierTotals, error) {
		rows, err := uc.deps.Analytics.MovementTotals(ctx, tier, f, entity.DebitReferenceTypes())
		if err != nil {
			return nil, err
		}
		out := make([]tierTotals, len(rows))
		for i, r := range rows {
			out[i] = tierTotals{MovementTotals: r, tier: tier}
		}
		return out, nil
	})
}

// turnoverBuckets period de la consulta a unidad de date_trunc.
var turnoverBuckets = map[string]string{
	"daily":     "day",
	"weekly":    "week",
	"monthly":   "month",
	"quarterly": "quarter",
}

func reportFilter(req dto.ReportRequest, from, to *time.Time) repository.ReportFilter {
	return repository.ReportFilter{
		LocationID: req.LocationID,
		ProductID:  req.ProductID,
		Category:   req.Category,
		From:       from,
		To:         to,
	}
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

// Turnover rotación por clave en el período: salidas sobre saldo promedio.
// Con period la rotación se calcula por tramo (día, semana, mes o trimestre).
func (uc *ReportsUseCase) Turnover(ctx context.Context, req dto.ReportRequest) (*dto.TurnoverReportDTO, error) {
	tiers, err := tiersFor(req.LocationType)
	if err != nil {
		return nil, err
	}
	from, to, err := uc.parsePeriod(req.StartDate, req.EndDate, firstOfMonth)
	if err != nil {
		return nil, err
	}
	bucket, ok := turnoverBuckets[req.Period]
	if !ok && req.Period != "" {
		return nil, domain.Invalid("period inválido: %q (daily, weekly, monthly, quarterly)", req.Period)
	}
	key := append([]string{"turnover"}, filterKey(req, from.Format(dateLayout), to.Format(dateLayout), req.Period)...)
	return cached(ctx, uc, key, func(ctx context.Context) (*dto.TurnoverReportDTO, error) {
		filter := reportFilter(req, &from, &to)
		filter.Bucket = bucket
		rows, err := uc.movementTotals(ctx, tiers, filter)
		if err != nil {
			return nil, wrapReport("turnover", err)
		}
		cat, err := uc.loadCatalog(ctx, totalsKeys(rows))
		if err != nil {
			return nil, wrapReport("turnover", err)
		}

		report := &dto.TurnoverReportDTO{
			Period:   dto.PeriodDTO{StartDate: from.Format(dateLayout), EndDate: to.Format(dateLayout)},
			Grouping: req.Period,
			Items:    make([]dto.TurnoverItemDTO, 0, len(rows)),
		}
		for _, r := range rows {
			p := cat.product(r.ProductID)
			rate, days := ledger.Turnover(r.UnitsOut, r.AverageClosing)
			var periodStart string
			if bucket != "" {
				// date_trunc puede caer antes del inicio pedido (semana, trimestre).
				periodStart = maxTime(r.BucketStart, from).Format(dateLayout)
			}
			report.Items = append(report.Items, dto.TurnoverItemDTO{
				LocationType:     string(r.tier),
				LocationID:       r.LocationID,
				ProductID:        r.ProductID,
				SKU:              p.SKU,
				ProductName:      p.Name,
				PeriodStart:      periodStart,
				UnitsOut:         r.UnitsOut,
				CostOfGoodsMoved: r.UnitsOut.Mul(p.CostPrice).Round(2),
				AverageBalance:   r.AverageClosing.Round(4),
				TurnoverRate:     rate,
				TurnoverDays:     days,
			})
		}
		sort.SliceStable(report.Items, func(i, j int) bool {
			a, b := report.Items[i], report.Items[j]
			if a.PeriodStart != b.PeriodStart {
				return a.PeriodStart < b.PeriodStart
			}
			return a.TurnoverRate.GreaterThan(b.TurnoverRate)
		})
		return report, nil
	})
}

// Aging antigüedad de los saldos positivos: días desde la primera recepción de la clave.
func (uc *ReportsUseCase) Aging(ctx context.Context, req dto.ReportRequest) (*dto.AgingReportDTO, error) {
	tiers, err := tiersFor(req.LocationType)
	if err != nil {
		return nil, err
	}
	buckets, err := ledger.BuildAgingBuckets(uc.deps.Config.AgingBuckets)
	if err != nil {
		return nil, err
	}
	asOf := uc.today()
	if req.EndDate != "" {
		if asOf, err = parseDate("end_date", req.EndDate); err != nil {
			return nil, err
		}
	}
	filter := reportFilter(req, nil, nil)
	var balances []entity.Balance
	var receipts []tierKeyDate
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		balances, err = collect(gctx, tiers, func(ctx context.Context, tier entity.LocationType) ([]entity.Balance, error) {
			return uc.deps.Analytics.Balances(ctx, tier, filter)
		})
		return err
	})
	g.Go(func() error {
		var err error
		receipts, err = collect(gctx, tiers, func(ctx context.Context, tier entity.LocationType) ([]tierKeyDate, error) {
			rows, err := uc.deps.Analytics.FirstReceipts(ctx, tier, filter)
			out := make([]tierKeyDate, len(rows))
			for i, r := range rows {
				out[i] = tierKeyDate{KeyDate: r, tier: tier}
			}
			return out, err
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, wrapReport("aging", err)
	}

	firstReceipt := make(map[entity.StockKey]time.Time, len(receipts))
	for _, r := range receipts {
		firstReceipt[entity.StockKey{LocationType: r.tier, LocationID: r.LocationID, ProductID: r.ProductID}] = r.Date
	}
	cat, err := uc.loadCatalog(ctx, balanceKeys(balances))
	if err != nil {
		return nil, wrapReport("aging", err)
	}

	report := &dto.AgingReportDTO{
		AsOf:    asOf.Format(dateLayout),
		Buckets: make([]dto.AgingBucketDTO, len(buckets)),
		Items:   []dto.AgingItemDTO{},
	}
	for i, b := range buckets {
		report.Buckets[i] = dto.AgingBucketDTO{Label: b.Label, Quantity: decimal.Zero, Value: decimal.Zero}
	}
	for _, b := range balances {
		if !b.Quantity.IsPositive() {
			continue
		}
		key := entity.StockKey{LocationType: b.LocationType, LocationID: b.LocationID, ProductID: b.ProductID}
		received, ok := firstReceipt[key]
		if !ok {
			received = asOf
		}
		age := daysBetween(received, asOf)
		idx := ledger.BucketFor(buckets, age)
		p := cat.product(b.ProductID)
		value := b.Quantity.Mul(p.CostPrice).Round(2)

		report.Items = append(report.Items, dto.AgingItemDTO{
			LocationType: string(b.LocationType),
			LocationID:   b.LocationID,
			ProductID:    b.ProductID,
			SKU:          p.SKU,
			ProductName:  p.Name,
			Quantity:     b.Quantity,
			Value:        value,
			FirstReceipt: received.Format(dateLayout),
			AgeDays:      age,
			Bucket:       buckets[idx].Label,
		})
		bucket := &report.Buckets[idx]
		bucket.Items++
		bucket.Quantity = bucket.Quantity.Add(b.Quantity)
		bucket.Value = bucket.Value.Add(value)
	}
	sort.SliceStable(report.Items, func(i, j int) bool { return report.Items[i].AgeDays > report.Items[j].AgeDays })
	return report, nil
}

type tierKeyDate struct {
	repository.KeyDate
	tier entity.LocationType
}

// Valuation valor del saldo actual de cada clave con el método de costeo indicado.
// Las capas son las entradas de crédito; sin precio unitario se usa el costo del producto.
func (uc *ReportsUseCase) Valuation(ctx context.Context, req dto.ReportRequest, method string) (*dto.ValuationReportDTO, error) {
	tiers, err := tiersFor(req.LocationType)
	if err != nil {
		return nil, err
	}
	m, err := ledger.ParseValuationMethod(method)
	if err != nil {
		return nil, err
	}
	asOf := uc.today()
	filter := reportFilter(req, nil, nil)
	var balances []entity.Balance
	var layers []tierLayer
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		balances, err = collect(gctx, tiers, func(ctx context.Context, tier entity.LocationType) ([]entity.Balance, error) {
			return uc.deps.Analytics.Balances(ctx, tier, filter)
		})
		return err
	})
	g.Go(func() error {
		var err error
		layers, err = collect(gctx, tiers, func(ctx context.Context, tier entity.LocationType) ([]tierLayer, error) {
			rows, err := uc.deps.Analytics.CostLayers(ctx, tier, filter)
			out := make([]tierLayer, len(rows))
			for i, r := range rows {
				out[i] = tierLayer{CostLayerRow: r, tier: tier}
			}
			return out, err
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, wrapReport("valuation", err)
	}
	cat, err := uc.loadCatalog(ctx, balanceKeys(balances))
	if err != nil {
		return nil, wrapReport("valuation", err)
	}

	byKey := make(map[entity.StockKey][]ledger.CostLayer)
	for _, l := range layers {
		key := entity.StockKey{LocationType: l.tier, LocationID: l.LocationID, ProductID: l.ProductID}
		cost := cat.product(l.ProductID).CostPrice
		if l.UnitPrice.Valid {
			cost = l.UnitPrice.Decimal
		}
		byKey[key] = append(byKey[key], ledger.CostLayer{Quantity: l.Quantity, UnitCost: cost})
	}

	report := &dto.ValuationReportDTO{
		Method:        string(m),
		AsOf:          asOf.Format(dateLayout),
		TotalQuantity: decimal.Zero,
		TotalValue:    decimal.Zero,
		Items:         []dto.ValuationItemDTO{},
	}
	for _, b := range balances {
		if !b.Quantity.IsPositive() {
			continue
		}
		p := cat.product(b.ProductID)
		key := entity.StockKey{LocationType: b.LocationType, LocationID: b.LocationID, ProductID: b.ProductID}
		unitCost, total := ledger.Valuate(m, b.Quantity, byKey[key], p.CostPrice)
		report.Items = append(report.Items, dto.ValuationItemDTO{
			LocationType: string(b.LocationType),
			LocationID:   b.LocationID,
			ProductID:    b.ProductID,
			SKU:          p.SKU,
			ProductName:  p.Name,
			Quantity:     b.Quantity,
			UnitCost:     unitCost,
			TotalValue:   total,
		})
		report.TotalQuantity = report.TotalQuantity.Add(b.Quantity)
		report.TotalValue = report.TotalValue.Add(total)
	}
	sort.SliceStable(report.Items, func(i, j int) bool {
		return report.Items[i].TotalValue.GreaterThan(report.Items[j].TotalValue)
	})
	return report, nil
}

type tierLayer struct {
	repository.CostLayerRow
	tier entity.LocationType
}

// ValuationPDF la valorización renderizada como PDF.
func (uc *ReportsUseCase) ValuationPDF(ctx context.Context, req dto.ReportRequest, method string) ([]byte, error) {
	if uc.deps.PDF == nil {
		return nil, ErrNoPDF
	}
	report, err := uc.Valuation(ctx, req, method)
	if err != nil {
		return nil, err
	}
	return uc.deps.PDF.RenderValuation(report)
}

// FastMovers las topN claves con más unidades salidas en el período.
func (uc *ReportsUseCase) FastMovers(ctx context.Context, req dto.ReportRequest, topN int) (*dto.MoversReportDTO, error) {
	tiers, err := tiersFor(req.LocationType)
	if err != nil {
		return nil, err
	}
	from, to, err := uc.parsePeriod(req.StartDate, req.EndDate, firstOfMonth)
	if err != nil {
		return nil, err
	}
	topN = clampTopN(topN, uc.deps.Config.FastMovingTopN)
	parts := filterKey(req, from.Format(dateLayout), to.Format(dateLayout))
	return cached(ctx, uc, append([]string{"fast-moving", itoa(topN)}, parts...), func(ctx context.Context) (*dto.MoversReportDTO, error) {
		rows, err := uc.movementTotals(ctx, tiers, reportFilter(req, &from, &to))
		if err != nil {
			return nil, wrapReport("fast movers", err)
		}
		moving := rows[:0]
		for _, r := range rows {
			if r.UnitsOut.IsPositive() {
				moving = append(moving, r)
			}
		}
		sort.SliceStable(moving, func(i, j int) bool { return moving[i].UnitsOut.GreaterThan(moving[j].UnitsOut) })
		if len(moving) > topN {
			moving = moving[:topN]
		}
		return uc.moversReport(ctx, from, to, to, moving)
	})
}

// SlowMovers claves con saldo positivo cuyo último movimiento supera thresholdDays
// o cuyas salidas en esa ventana no llegan a minSold. Cero = valor configurado.
func (uc *ReportsUseCase) SlowMovers(ctx context.Context, req dto.ReportRequest, thresholdDays int, minSold int64) (*dto.MoversReportDTO, error) {
	tiers, err := tiersFor(req.LocationType)
	if err != nil {
		return nil, err
	}
	if thresholdDays <= 0 {
		thresholdDays = uc.deps.Config.SlowMovingDays
	}
	if minSold <= 0 {
		minSold = uc.deps.Config.SlowMovingSold
	}
	asOf := uc.today()
	if req.EndDate != "" {
		if asOf, err = parseDate("end_date", req.EndDate); err != nil {
			return nil, err
		}
	}
	from := asOf.AddDate(0, 0, -thresholdDays)
	parts := filterKey(req, asOf.Format(dateLayout), itoa(thresholdDays), itoa(int(minSold)))
	return cached(ctx, uc, append([]string{"slow-moving"}, parts...), func(ctx context.Context) (*dto.MoversReportDTO, error) {
		var balances []entity.Balance
		var all, window []tierTotals
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			balances, err = collect(gctx, tiers, func(ctx context.Context, tier entity.LocationType) ([]entity.Balance, error) {
				return uc.deps.Analytics.Balances(ctx, tier, reportFilter(req, nil, nil))
			})
			return err
		})
		g.Go(func() error {
			var err error
			all, err = uc.movementTotals(gctx, tiers, reportFilter(req, nil, &asOf))
			return err
		})
		g.Go(func() error {
			var err error
			window, err = uc.movementTotals(gctx, tiers, reportFilter(req, &from, &asOf))
			return err
		})
		if err := g.Wait(); err != nil {
			return nil, wrapReport("slow movers", err)
		}

		lastMovement := make(map[entity.StockKey]tierTotals, len(all))
		for _, r := range all {
			lastMovement[entity.StockKey{LocationType: r.tier, LocationID: r.LocationID, ProductID: r.ProductID}] = r
		}
		sold := make(map[entity.StockKey]tierTotals, len(window))
		for _, r := range window {
			sold[entity.StockKey{LocationType: r.tier, LocationID: r.LocationID, ProductID: r.ProductID}] = r
		}

		threshold := decimal.NewFromInt(minSold)
		var slow []tierTotals
		for _, b := range balances {
			if !b.Quantity.IsPositive() {
				continue
			}
			key := entity.StockKey{LocationType: b.LocationType, LocationID: b.LocationID, ProductID: b.ProductID}
			last, ok := lastMovement[key]
			if !ok {
				continue
			}
			inWindow := sold[key]
			stale := daysBetween(last.LastMovement, asOf) > thresholdDays
			if stale || inWindow.UnitsOut.LessThan(threshold) {
				row := last
				row.UnitsIn = decimal.Zero
				row.UnitsOut = decimal.Zero
				row.MovementCount = 0
				if inWindow.tier != "" {
					row.UnitsIn = inWindow.UnitsIn
					row.UnitsOut = inWindow.UnitsOut
					row.MovementCount = inWindow.MovementCount
				}
				slow = append(slow, row)
			}
		}
		sort.SliceStable(slow, func(i, j int) bool { return slow[i].LastMovement.Before(slow[j].LastMovement) })
		return uc.moversReport(ctx, from, asOf, asOf, slow)
	})
}

func (uc *ReportsUseCase) moversReport(ctx context.Context, from, to, asOf time.Time, rows []tierTotals) (*dto.MoversReportDTO, error) {
	cat, err := uc.loadCatalog(ctx, totalsKeys(rows))
	if err != nil {
		return nil, wrapReport("movers", err)
	}
	report := &dto.MoversReportDTO{
		Period: dto.PeriodDTO{StartDate: from.Format(dateLayout), EndDate: to.Format(dateLayout)},
		Items:  make([]dto.MoverDTO, 0, len(rows)),
	}
	for _, r := range rows {
		p := cat.product(r.ProductID)
		report.Items = append(report.Items, dto.MoverDTO{
			LocationType:      string(r.tier),
			LocationID:        r.LocationID,
			ProductID:         r.ProductID,
			SKU:               p.SKU,
			ProductName:       p.Name,
			UnitsIn:           r.UnitsIn,
			UnitsOut:          r.UnitsOut,
			MovementCount:     r.MovementCount,
			LastMovement:      r.LastMovement.Format(dateLayout),
			DaysSinceMovement: daysBetween(r.LastMovement, asOf),
		})
	}
	return report, nil
}
