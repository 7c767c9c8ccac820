package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

const sampleCSV = `# tipo,código,nombre,...
warehouse,BOD-01,Bodega Central,Calle 10 # 5-20
distribution-house,CD-01,Casa Norte
product,SKU-1,Harina,Granos,kg,2.50,10,200
product,SKU-2,Aceite,Líquidos,lt,5
transport,ABC123,Pedro Gómez
`

func TestParseCatalog(t *testing.T) {
	cat, err := parseCatalog(strings.NewReader(sampleCSV), false)
	require.NoError(t, err)

	require.Len(t, cat.locations, 2)
	assert.Equal(t, entity.LocationWarehouse, cat.locations[0].Type)
	assert.Equal(t, "BOD-01", cat.locations[0].Code)
	assert.Equal(t, "Calle 10 # 5-20", cat.locations[0].Address)
	assert.Equal(t, entity.LocationDistributionHouse, cat.locations[1].Type)
	assert.Empty(t, cat.locations[1].Address)

	require.Len(t, cat.products, 2)
	assert.Equal(t, "2.5", cat.products[0].CostPrice.String())
	assert.True(t, cat.products[0].MinStockLevel.Valid)
	assert.Equal(t, "200", cat.products[0].MaxStockLevel.Decimal.String())
	assert.False(t, cat.products[1].MinStockLevel.Valid, "sin umbral usa el valor por defecto")

	require.Len(t, cat.transports, 1)
	assert.Equal(t, "Pedro Gómez", cat.transports[0].DriverName)
}

func TestParseCatalog_Latin1(t *testing.T) {
	encoded, err := charmap.ISO8859_1.NewEncoder().String("product,SKU-3,Azúcar morena,Dulces,kg,3\n")
	require.NoError(t, err)

	cat, err := parseCatalog(bytes.NewBufferString(encoded), true)
	require.NoError(t, err)
	require.Len(t, cat.products, 1)
	assert.Equal(t, "Azúcar morena", cat.products[0].Name)
}

func TestParseCatalog_Errores(t *testing.T) {
	tests := map[string]string{
		"tipo desconocido":    "store,X,Y\n",
		"costo inválido":      "product,SKU,N,C,kg,abc\n",
		"producto incompleto": "product,SKU,N\n",
		"umbral inválido":     "product,SKU,N,C,kg,1,x\n",
	}
	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := parseCatalog(strings.NewReader(in), false)
			assert.Error(t, err)
		})
	}
}
