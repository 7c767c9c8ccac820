package entity

// ReferenceType describe la causa de una entrada del libro.
type ReferenceType string

const (
	RefTransferOut                  ReferenceType = "transfer-out"
	RefTransferIn                   ReferenceType = "transfer-in"
	RefDispatchToWarehouse          ReferenceType = "dispatch-to-warehouse"
	RefReceiptFromDistributionHouse ReferenceType = "receipt-from-distribution-house"
	RefReturnToDistributionHouse    ReferenceType = "return-to-distribution-house"
	RefReturnFromWarehouse          ReferenceType = "return-from-warehouse"
	RefProduction                   ReferenceType = "production"
	RefPurchase                     ReferenceType = "purchase"
	RefSale                         ReferenceType = "sale"
	RefCustomerReturn               ReferenceType = "customer-return"
	RefAdjustmentIn                 ReferenceType = "adjustment-in"
	RefAdjustmentOut                ReferenceType = "adjustment-out"
)

var (
	debitRefs  = refSet(DebitReferenceTypes())
	creditRefs = refSet(CreditReferenceTypes())
)

func refSet(refs []ReferenceType) map[ReferenceType]bool {
	m := make(map[ReferenceType]bool, len(refs))
	for _, r := range refs {
		m[r] = true
	}
	return m
}

// IsDebit indica si el movimiento disminuye el saldo.
func (r ReferenceType) IsDebit() bool { return debitRefs[r] }

// IsCredit indica si el movimiento aumenta el saldo.
func (r ReferenceType) IsCredit() bool { return creditRefs[r] }

// Valid indica si el tipo es conocido.
func (r ReferenceType) Valid() bool { return r.IsDebit() || r.IsCredit() }

// DebitReferenceTypes devuelve los tipos que disminuyen saldo (para filtros de salidas).
func DebitReferenceTypes() []ReferenceType {
	return []ReferenceType{RefTransferOut, RefDispatchToWarehouse, RefReturnToDistributionHouse, RefSale, RefAdjustmentOut}
}

// CreditReferenceTypes devuelve los tipos que aumentan saldo.
func CreditReferenceTypes() []ReferenceType {
	return []ReferenceType{
		RefTransferIn, RefReceiptFromDistributionHouse, RefReturnFromWarehouse,
		RefProduction, RefPurchase, RefCustomerReturn, RefAdjustmentIn,
	}
}
