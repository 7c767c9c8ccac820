package transfer

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/stock-ledger/internal/application/stock"
	"github.com/jhoicas/stock-ledger/internal/application/validation"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/ledger"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

var tracer = otel.Tracer("stock-ledger/transfer")

// Orchestrator registra movimientos de stock como una única unidad de trabajo.
// Todos los tipos pasan por Post: validación, bloqueo de claves, resolución de
// saldos y alta de una o dos filas por línea bajo un mismo ReferenceID.
type Orchestrator struct {
	txRunner  TxRunner
	observers []PostingObserver
	log       *logger.Logger
	now       func() time.Time
	newID     func() string
}

// NewOrchestrator construye el orquestador.
func NewOrchestrator(txRunner TxRunner, log *logger.Logger, observers ...PostingObserver) *Orchestrator {
	if log == nil {
		log = logger.Nop()
	}
	return &Orchestrator{
		txRunner:  txRunner,
		observers: observers,
		log:       log,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// Post valida y registra el comando. Falla con el primer error encontrado;
// si falla no queda ninguna fila persistida.
func (o *Orchestrator) Post(ctx context.Context, cmd Command) (*Receipt, error) {
	ctx, span := tracer.Start(ctx, "transfer.Post",
		trace.WithAttributes(
			attribute.String("transfer.kind", string(cmd.Kind)),
			attribute.Int("transfer.items", len(cmd.Items)),
		))
	defer span.End()

	receipt, err := o.post(ctx, cmd)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.String("transfer.reference_id", receipt.ReferenceID))

	o.log.Info().
		Str("kind", string(receipt.Kind)).
		Str("reference_id", receipt.ReferenceID).
		Int("items", len(cmd.Items)).
		Int("entries", len(receipt.Entries)).
		Str("created_by", cmd.CreatedBy).
		Msg("traslado registrado")

	for _, obs := range o.observers {
		if err := obs.Posted(ctx, receipt); err != nil {
			o.log.Warn().Err(err).Str("reference_id", receipt.ReferenceID).Msg("observador post-commit falló")
		}
	}
	return receipt, nil
}

func (o *Orchestrator) post(ctx context.Context, cmd Command) (*Receipt, error) {
	rule, ok := kinds[cmd.Kind]
	if !ok {
		return nil, domain.Invalid("tipo de movimiento desconocido %q", cmd.Kind)
	}
	if err := rule.checkShape(cmd.Kind, cmd); err != nil {
		return nil, err
	}
	if cmd.CreatedBy == "" {
		return nil, domain.Invalid("usuario creador requerido")
	}

	date := cmd.Date
	if date.IsZero() {
		date = o.now()
	}
	date = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)

	receipt := &Receipt{
		ReferenceID: o.newID(),
		Kind:        cmd.Kind,
		Date:        date,
	}
	notes := ComposeNotes(cmd.Document, cmd.Notes)
	legs := rule.legs(cmd)

	err := o.txRunner.Run(ctx, func(ctx context.Context, repos Repos) error {
		// 1-2) Ubicaciones, transporte, productos y cantidades.
		if err := buildChain(repos, rule, cmd).Run(ctx); err != nil {
			return err
		}

		// Serializa contra traslados concurrentes sobre las mismas claves.
		keys := touchedKeys(legs, cmd.Items)
		if err := repos.Ledger.Lock(ctx, keys...); err != nil {
			return err
		}

		// 3) Saldos leídos después del bloqueo; se acumulan línea a línea.
		resolver := stock.NewResolver(repos.Ledger)
		running := make(map[entity.StockKey]decimal.Decimal, len(keys))
		for _, k := range keys {
			bal, err := resolver.CurrentStock(ctx, k.LocationType, k.LocationID, k.ProductID)
			if err != nil {
				return err
			}
			running[k] = bal
		}

		plan := make([]entity.LedgerEntry, 0, len(cmd.Items)*len(legs))
		for _, item := range cmd.Items {
			for _, l := range legs {
				key := entity.StockKey{LocationType: l.location.Type, LocationID: l.location.ID, ProductID: item.ProductID}
				if l.ref.IsDebit() {
					if err := validation.SufficientBalance(key, running[key], item.Quantity)(ctx); err != nil {
						return err
					}
				}
				e := entity.LedgerEntry{
					LocationType:  key.LocationType,
					LocationID:    key.LocationID,
					ProductID:     key.ProductID,
					Date:          date,
					ReferenceType: l.ref,
					ReferenceID:   receipt.ReferenceID,
					TransportID:   cmd.TransportID,
					UnitPrice:     item.UnitPrice,
					BatchNumber:   item.BatchNumber,
					ExpiryDate:    item.ExpiryDate,
					Notes:         notes,
					CreatedBy:     cmd.CreatedBy,
				}
				if err := ledger.Apply(&e, running[key], item.Quantity); err != nil {
					return err
				}
				running[key] = e.ClosingStock
				plan = append(plan, e)
			}
		}

		// 4) Alta de filas; sólo se llega aquí si todas las líneas pasaron.
		for i := range plan {
			if err := repos.Ledger.Append(ctx, &plan[i]); err != nil {
				return fmt.Errorf("registrar entrada %s: %w", plan[i].Key(), err)
			}
		}
		receipt.Entries = plan
		return nil
	})
	if err != nil {
		return nil, err
	}
	return receipt, nil
}

// buildChain arma la cadena en el orden: ítems, ubicaciones, transporte, productos y cantidades.
func buildChain(repos Repos, rule kindRule, cmd Command) validation.Chain {
	var chain validation.Chain
	chain.Add(validation.NonEmptyItems(len(cmd.Items)))
	if rule.debits() && rule.credits() {
		chain.Add(validation.DistinctLocations(*cmd.Source, *cmd.Destination))
	}
	if cmd.Source != nil {
		chain.Add(validation.LocationActive(repos.Locations, *cmd.Source))
	}
	if cmd.Destination != nil {
		chain.Add(validation.LocationActive(repos.Locations, *cmd.Destination))
	}
	chain.Add(validation.TransportActive(repos.Transports, cmd.TransportID))

	seen := make(map[string]bool, len(cmd.Items))
	for _, item := range cmd.Items {
		if !seen[item.ProductID] {
			seen[item.ProductID] = true
			chain.Add(validation.ProductActive(repos.Products, item.ProductID))
		}
		chain.Add(
			validation.PositiveQuantity(item.ProductID, item.Quantity),
			validation.AmountFits("cantidad de "+item.ProductID, item.Quantity),
		)
		if item.UnitPrice.Valid {
			chain.Add(validation.AmountFits("precio unitario de "+item.ProductID, item.UnitPrice.Decimal))
		}
	}
	return chain
}

// touchedKeys claves únicas en orden estable (evita interbloqueos entre traslados).
func touchedKeys(legs []leg, items []Item) []entity.StockKey {
	set := make(map[entity.StockKey]struct{}, len(items)*len(legs))
	for _, item := range items {
		for _, l := range legs {
			set[entity.StockKey{LocationType: l.location.Type, LocationID: l.location.ID, ProductID: item.ProductID}] = struct{}{}
		}
	}
	keys := make([]entity.StockKey, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
	return keys
}
