package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// catalog filas de referencia leídas del CSV.
type catalog struct {
	locations  []*entity.Location
	products   []*entity.Product
	transports []*entity.Transport
}

// parseCatalog lee el CSV de catálogo. El primer campo indica el tipo de fila:
//
//	warehouse,<code>,<name>[,<address>]
//	distribution-house,<code>,<name>[,<address>]
//	product,<sku>,<name>,<category>,<unit>,<cost_price>[,<min>[,<max>]]
//	transport,<vehicle_number>,<driver_name>
//
// Las líneas que empiezan con # se ignoran. latin1 decodifica ISO-8859-1.
func parseCatalog(r io.Reader, latin1 bool) (*catalog, error) {
	if latin1 {
		r = transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	}
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	out := &catalog{}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		line, _ := cr.FieldPos(0)
		if err := out.add(rec); err != nil {
			return nil, fmt.Errorf("línea %d: %w", line, err)
		}
	}
}

func (c *catalog) add(rec []string) error {
	for i := range rec {
		rec[i] = strings.TrimSpace(rec[i])
	}
	kind := rec[0]
	switch kind {
	case string(entity.LocationWarehouse), string(entity.LocationDistributionHouse):
		if len(rec) < 3 {
			return fmt.Errorf("%s requiere código y nombre", kind)
		}
		c.locations = append(c.locations, &entity.Location{
			Type:     entity.LocationType(kind),
			Code:     rec[1],
			Name:     rec[2],
			Address:  field(rec, 3),
			IsActive: true,
		})
	case "product":
		if len(rec) < 6 {
			return fmt.Errorf("product requiere sku, nombre, categoría, unidad y costo")
		}
		cost, err := decimal.NewFromString(rec[5])
		if err != nil {
			return fmt.Errorf("costo inválido %q", rec[5])
		}
		p := &entity.Product{
			SKU:         rec[1],
			Name:        rec[2],
			Category:    rec[3],
			UnitMeasure: rec[4],
			CostPrice:   cost,
			IsActive:    true,
		}
		if p.MinStockLevel, err = optionalLevel(field(rec, 6)); err != nil {
			return err
		}
		if p.MaxStockLevel, err = optionalLevel(field(rec, 7)); err != nil {
			return err
		}
		c.products = append(c.products, p)
	case "transport":
		if len(rec) < 3 {
			return fmt.Errorf("transport requiere vehículo y conductor")
		}
		c.transports = append(c.transports, &entity.Transport{VehicleNumber: rec[1], DriverName: rec[2], IsActive: true})
	default:
		return fmt.Errorf("tipo de fila desconocido %q", kind)
	}
	return nil
}

func field(rec []string, i int) string {
	if i < len(rec) {
		return rec[i]
	}
	return ""
}

func optionalLevel(s string) (decimal.NullDecimal, error) {
	if s == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("umbral inválido %q", s)
	}
	return decimal.NewNullDecimal(d), nil
}
