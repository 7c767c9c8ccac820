package transfer

import (
	"slices"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// Kind tipo de movimiento. Todos comparten la misma aritmética; sólo cambian
// las ubicaciones tocadas y el tipo de referencia de cada fila.
type Kind string

const (
	KindWarehouseTransfer         Kind = "warehouse-transfer"
	KindDistributionHouseTransfer Kind = "distribution-house-transfer"
	KindDispatchToWarehouse       Kind = "dispatch-to-warehouse"
	KindReturnToDistributionHouse Kind = "return-to-distribution-house"
	KindProduction                Kind = "production"
	KindPurchase                  Kind = "purchase"
	KindSale                      Kind = "sale"
	KindCustomerReturn            Kind = "customer-return"
	KindAdjustmentIn              Kind = "adjustment-in"
	KindAdjustmentOut             Kind = "adjustment-out"
)

var (
	warehouseOnly = []entity.LocationType{entity.LocationWarehouse}
	dhOnly        = []entity.LocationType{entity.LocationDistributionHouse}
	anyTier       = entity.LocationTypes
)

// kindRule describe qué lado debita (sources) y qué lado acredita (destinations).
// Un lado nil no participa.
type kindRule struct {
	sources      []entity.LocationType
	destinations []entity.LocationType
	debitRef     entity.ReferenceType
	creditRef    entity.ReferenceType
}

var kinds = map[Kind]kindRule{
	KindWarehouseTransfer: {
		sources: warehouseOnly, destinations: warehouseOnly,
		debitRef: entity.RefTransferOut, creditRef: entity.RefTransferIn,
	},
	KindDistributionHouseTransfer: {
		sources: dhOnly, destinations: dhOnly,
		debitRef: entity.RefTransferOut, creditRef: entity.RefTransferIn,
	},
	KindDispatchToWarehouse: {
		sources: dhOnly, destinations: warehouseOnly,
		debitRef: entity.RefDispatchToWarehouse, creditRef: entity.RefReceiptFromDistributionHouse,
	},
	KindReturnToDistributionHouse: {
		sources: warehouseOnly, destinations: dhOnly,
		debitRef: entity.RefReturnToDistributionHouse, creditRef: entity.RefReturnFromWarehouse,
	},
	KindProduction:     {destinations: dhOnly, creditRef: entity.RefProduction},
	KindPurchase:       {destinations: anyTier, creditRef: entity.RefPurchase},
	KindCustomerReturn: {destinations: anyTier, creditRef: entity.RefCustomerReturn},
	KindAdjustmentIn:   {destinations: anyTier, creditRef: entity.RefAdjustmentIn},
	KindSale:           {sources: anyTier, debitRef: entity.RefSale},
	KindAdjustmentOut:  {sources: anyTier, debitRef: entity.RefAdjustmentOut},
}

// Kinds lista los tipos soportados.
func Kinds() []Kind {
	out := make([]Kind, 0, len(kinds))
	for k := range kinds {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// Valid indica si el tipo está soportado.
func (k Kind) Valid() bool {
	_, ok := kinds[k]
	return ok
}

func (s kindRule) debits() bool  { return s.sources != nil }
func (s kindRule) credits() bool { return s.destinations != nil }

// checkShape valida que las ubicaciones del comando correspondan al tipo.
func (s kindRule) checkShape(k Kind, cmd Command) error {
	if err := checkSide(k, "origen", s.sources, cmd.Source); err != nil {
		return err
	}
	if err := checkSide(k, "destino", s.destinations, cmd.Destination); err != nil {
		return err
	}
	return nil
}

func checkSide(k Kind, side string, allowed []entity.LocationType, ref *entity.LocationRef) error {
	if allowed == nil {
		if ref != nil {
			return domain.Invalid("%s no admite %s", k, side)
		}
		return nil
	}
	if ref == nil || ref.ID == "" {
		return domain.Invalid("%s requiere %s", k, side)
	}
	if !slices.Contains(allowed, ref.Type) {
		return domain.Invalid("%s no admite %s de tipo %q", k, side, ref.Type)
	}
	return nil
}

// leg una fila del libro a generar por cada línea.
type leg struct {
	location entity.LocationRef
	ref      entity.ReferenceType
}

// legs devuelve primero el débito y luego el crédito, según aplique.
func (s kindRule) legs(cmd Command) []leg {
	out := make([]leg, 0, 2)
	if s.debits() {
		out = append(out, leg{location: *cmd.Source, ref: s.debitRef})
	}
	if s.credits() {
		out = append(out, leg{location: *cmd.Destination, ref: s.creditRef})
	}
	return out
}
