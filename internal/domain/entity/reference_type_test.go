package entity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

func TestReferenceType_Lados(t *testing.T) {
	for _, r := range entity.DebitReferenceTypes() {
		assert.True(t, r.IsDebit(), r)
		assert.False(t, r.IsCredit(), r)
	}
	for _, r := range entity.CreditReferenceTypes() {
		assert.True(t, r.IsCredit(), r)
		assert.False(t, r.IsDebit(), r)
	}
	assert.Len(t, entity.DebitReferenceTypes(), 5)
	assert.Len(t, entity.CreditReferenceTypes(), 7)

	assert.False(t, entity.ReferenceType("transferencia").Valid())
	assert.True(t, entity.RefSale.Valid())
}
