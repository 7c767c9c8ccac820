// Package analytics contiene los reportes de solo lectura sobre los libros de stock:
// saldos, historial, alertas, rotación, antigüedad, valorización y conciliación.
package analytics

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/pkg/config"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

const (
	dateLayout  = "2006-01-02"
	maxTopN     = 200
	hoursPerDay = 24
	cachePrefix = "v1"
)

// Cache caché de reportes agregados (ver infrastructure/cache).
type Cache interface {
	BuildKey(ctx context.Context, parts ...string) (string, error)
	FetchJSON(ctx context.Context, key string, dest any, loader func(context.Context) (any, error)) error
}

// PDFRenderer genera el PDF de la valorización.
type PDFRenderer interface {
	RenderValuation(report *dto.ValuationReportDTO) ([]byte, error)
}

// Deps dependencias del caso de uso; Cache y PDF son opcionales.
type Deps struct {
	Analytics repository.AnalyticsRepository
	History   repository.LedgerHistoryReader
	Summaries repository.DailySummaryWriter
	Products  repository.ProductRepository
	Locations repository.LocationRepository
	Cache     Cache
	PDF       PDFRenderer
	Config    config.ReportsConfig
	Logger    *logger.Logger
}

// ReportsUseCase arma los reportes. Cada consulta por nivel corre en paralelo;
// si el almacenamiento falla el reporte falla con el error (nunca datos parciales).
type ReportsUseCase struct {
	deps Deps
	log  *logger.Logger
	now  func() time.Time
}

// NewReportsUseCase construye el caso de uso.
func NewReportsUseCase(deps Deps) *ReportsUseCase {
	log := deps.Logger
	if log == nil {
		log = logger.Nop()
	}
	return &ReportsUseCase{deps: deps, log: log.Named("reports"), now: time.Now}
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func (uc *ReportsUseCase) today() time.Time {
	return truncateDay(uc.now())
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func parseDate(field, s string) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, domain.Invalid("%s inválido: %q", field, s)
	}
	return t, nil
}

// parsePeriod rango inclusivo [start, end] en días UTC. Sin end = hoy;
// sin start = defaultStart(end).
func (uc *ReportsUseCase) parsePeriod(startStr, endStr string, defaultStart func(end time.Time) time.Time) (start, end time.Time, err error) {
	end = uc.today()
	if endStr != "" {
		if end, err = parseDate("end_date", endStr); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	start = defaultStart(end)
	if startStr != "" {
		if start, err = parseDate("start_date", startStr); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	if start.After(end) {
		return time.Time{}, time.Time{}, domain.Invalid("start_date no puede ser posterior a end_date")
	}
	return start, end, nil
}

// parseOptionalPeriod como parsePeriod pero sin valores por defecto.
func parseOptionalPeriod(startStr, endStr string) (start, end *time.Time, err error) {
	if startStr != "" {
		t, err := parseDate("start_date", startStr)
		if err != nil {
			return nil, nil, err
		}
		start = &t
	}
	if endStr != "" {
		t, err := parseDate("end_date", endStr)
		if err != nil {
			return nil, nil, err
		}
		end = &t
	}
	if start != nil && end != nil && start.After(*end) {
		return nil, nil, domain.Invalid("start_date no puede ser posterior a end_date")
	}
	return start, end, nil
}

func firstOfMonth(end time.Time) time.Time {
	return time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / hoursPerDay)
}

func parseTier(s string) (entity.LocationType, error) {
	t := entity.LocationType(s)
	if !t.Valid() {
		return "", domain.Invalid("location_type desconocido %q", s)
	}
	return t, nil
}

// tiersFor "" = ambos niveles.
func tiersFor(s string) ([]entity.LocationType, error) {
	if s == "" {
		return entity.LocationTypes, nil
	}
	t, err := parseTier(s)
	if err != nil {
		return nil, err
	}
	return []entity.LocationType{t}, nil
}

// collect ejecuta fn por nivel en paralelo y concatena en el orden de tiers.
func collect[T any](ctx context.Context, tiers []entity.LocationType, fn func(context.Context, entity.LocationType) ([]T, error)) ([]T, error) {
	parts := make([][]T, len(tiers))
	g, gctx := errgroup.WithContext(ctx)
	for i, tier := range tiers {
		i, tier := i, tier
		g.Go(func() error {
			rows, err := fn(gctx, tier)
			if err != nil {
				return err
			}
			parts[i] = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	var out []T
	for _, p := range parts {
		out = append(out, p...)
	}
	return out, nil
}

// cached resuelve el reporte desde la caché; si Redis falla se calcula directo.
func cached[T any](ctx context.Context, uc *ReportsUseCase, parts []string, load func(context.Context) (*T, error)) (*T, error) {
	if uc.deps.Cache == nil {
		return load(ctx)
	}
	key, err := uc.deps.Cache.BuildKey(ctx, append([]string{cachePrefix}, parts...)...)
	if err != nil {
		uc.log.Warn().Err(err).Msg("caché no disponible")
		return load(ctx)
	}
	var loadErr error
	out := new(T)
	err = uc.deps.Cache.FetchJSON(ctx, key, out, func(ctx context.Context) (any, error) {
		v, err := load(ctx)
		loadErr = err
		return v, err
	})
	if loadErr != nil {
		return nil, loadErr
	}
	if err != nil {
		uc.log.Warn().Err(err).Str("key", key).Msg("caché no disponible")
		return load(ctx)
	}
	return out, nil
}

func filterKey(req dto.ReportRequest, extra ...string) []string {
	parts := []string{req.LocationType, req.LocationID, req.ProductID, req.Category, req.StartDate, req.EndDate}
	parts = append(parts, extra...)
	for i, p := range parts {
		if p == "" {
			parts[i] = "-"
		}
	}
	return parts
}

// ── Catálogo ──────────────────────────────────────────────────────────────────

// catalog nombres de productos y ubicaciones para enriquecer los reportes.
type catalog struct {
	products  map[string]*entity.Product
	locations map[entity.LocationRef]*entity.Location
}

func (c *catalog) product(id string) *entity.Product {
	if p := c.products[id]; p != nil {
		return p
	}
	return &entity.Product{ID: id}
}

func (c *catalog) locationName(tier entity.LocationType, id string) string {
	if l := c.locations[entity.LocationRef{Type: tier, ID: id}]; l != nil {
		return l.Name
	}
	return ""
}

// loadCatalog consulta productos y ubicaciones de las claves en paralelo.
func (uc *ReportsUseCase) loadCatalog(ctx context.Context, keys []entity.StockKey) (*catalog, error) {
	productIDs := make(map[string]struct{})
	locationIDs := make(map[entity.LocationType]map[string]struct{})
	for _, k := range keys {
		productIDs[k.ProductID] = struct{}{}
		if locationIDs[k.LocationType] == nil {
			locationIDs[k.LocationType] = make(map[string]struct{})
		}
		locationIDs[k.LocationType][k.LocationID] = struct{}{}
	}

	cat := &catalog{
		products:  make(map[string]*entity.Product, len(productIDs)),
		locations: make(map[entity.LocationRef]*entity.Location),
	}
	if len(keys) == 0 {
		return cat, nil
	}

	var products []*entity.Product
	locs := make([][]*entity.Location, len(entity.LocationTypes))
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		products, err = uc.deps.Products.ListByIDs(gctx, setToSlice(productIDs))
		return err
	})
	for i, tier := range entity.LocationTypes {
		i, tier := i, tier
		ids := locationIDs[tier]
		if len(ids) == 0 {
			continue
		}
		g.Go(func() error {
			list, err := uc.deps.Locations.ListByIDs(gctx, tier, setToSlice(ids))
			locs[i] = list
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, p := range products {
		cat.products[p.ID] = p
	}
	for i, list := range locs {
		for _, l := range list {
			cat.locations[entity.LocationRef{Type: entity.LocationTypes[i], ID: l.ID}] = l
		}
	}
	return cat, nil
}

func setToSlice(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func balanceKeys(balances []entity.Balance) []entity.StockKey {
	keys := make([]entity.StockKey, len(balances))
	for i, b := range balances {
		keys[i] = entity.StockKey{LocationType: b.LocationType, LocationID: b.LocationID, ProductID: b.ProductID}
	}
	return keys
}

func parseReferenceTypes(raw string) ([]entity.ReferenceType, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var out []entity.ReferenceType
	for _, part := range strings.Split(raw, ",") {
		ref := entity.ReferenceType(strings.TrimSpace(part))
		if !ref.Valid() {
			return nil, domain.Invalid("reference_type desconocido %q", ref)
		}
		out = append(out, ref)
	}
	return out, nil
}

func clampTopN(n, def int) int {
	if n <= 0 {
		n = def
	}
	if n <= 0 {
		n = 10
	}
	if n > maxTopN {
		n = maxTopN
	}
	return n
}

func itoa(n int) string { return strconv.Itoa(n) }

// ErrNoPDF no hay generador PDF configurado.
var ErrNoPDF = errors.New("generador PDF no configurado")

func wrapReport(name string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", name, err)
}
