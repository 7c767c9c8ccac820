package http

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// ProductReader lectura de productos (nil, nil si no existe).
type ProductReader interface {
	GetByID(ctx context.Context, id string) (*entity.Product, error)
}

// LocationReader lectura de ubicaciones (nil, nil si no existe).
type LocationReader interface {
	GetByID(ctx context.Context, tier entity.LocationType, id string) (*entity.Location, error)
}

// TransportReader lectura de transportes (nil, nil si no existe).
type TransportReader interface {
	GetByID(ctx context.Context, id string) (*entity.Transport, error)
}

// CatalogHandler consulta de datos de referencia (protegido, sólo lectura).
// El alta y la edición del catálogo se hacen con cmd/seed.
type CatalogHandler struct {
	products   ProductReader
	locations  LocationReader
	transports TransportReader
}

// NewCatalogHandler construye el handler.
func NewCatalogHandler(products ProductReader, locations LocationReader, transports TransportReader) *CatalogHandler {
	return &CatalogHandler{products: products, locations: locations, transports: transports}
}

// GetProduct godoc
// @Summary      Obtener producto por ID
// @Tags         catalog
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "UUID del producto"
// @Success      200  {object}  dto.ProductResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/catalog/products/{id} [get]
func (h *CatalogHandler) GetProduct(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	p, err := h.products.GetByID(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	if p == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "producto no encontrado"})
	}
	return c.JSON(dto.ProductResponse{
		ID:            p.ID,
		SKU:           p.SKU,
		Name:          p.Name,
		Category:      p.Category,
		UnitMeasure:   p.UnitMeasure,
		CostPrice:     p.CostPrice,
		MinStockLevel: nullDecimal(p.MinStockLevel),
		MaxStockLevel: nullDecimal(p.MaxStockLevel),
		IsActive:      p.IsActive,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	})
}

// GetLocation godoc
// @Summary      Obtener bodega o casa de distribución
// @Tags         catalog
// @Security     Bearer
// @Produce      json
// @Param        locationType  path  string  true  "warehouse | distribution-house"
// @Param        id            path  string  true  "UUID de la ubicación"
// @Success      200  {object}  dto.LocationResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/catalog/locations/{locationType}/{id} [get]
func (h *CatalogHandler) GetLocation(c *fiber.Ctx) error {
	tier := entity.LocationType(c.Params("locationType"))
	if !tier.Valid() {
		return writeError(c, domain.Invalid("tipo de ubicación inválido %q", tier))
	}
	id, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	l, err := h.locations.GetByID(c.UserContext(), tier, id)
	if err != nil {
		return writeError(c, err)
	}
	if l == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "ubicación no encontrada"})
	}
	return c.JSON(dto.LocationResponse{
		ID:           l.ID,
		LocationType: string(l.Type),
		Code:         l.Code,
		Name:         l.Name,
		Address:      l.Address,
		IsActive:     l.IsActive,
		CreatedAt:    l.CreatedAt,
		UpdatedAt:    l.UpdatedAt,
	})
}

// GetTransport godoc
// @Summary      Obtener transporte por ID
// @Tags         catalog
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "UUID del transporte"
// @Success      200  {object}  dto.TransportResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/catalog/transports/{id} [get]
func (h *CatalogHandler) GetTransport(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	t, err := h.transports.GetByID(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	if t == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "transporte no encontrado"})
	}
	return c.JSON(dto.TransportResponse{
		ID:            t.ID,
		VehicleNumber: t.VehicleNumber,
		DriverName:    t.DriverName,
		IsActive:      t.IsActive,
		CreatedAt:     t.CreatedAt,
	})
}

func pathID(c *fiber.Ctx, name string) (string, error) {
	raw := c.Params(name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", domain.Invalid("%s debe ser un UUID", name)
	}
	return id.String(), nil
}

func nullDecimal(d decimal.NullDecimal) *decimal.Decimal {
	if !d.Valid {
		return nil
	}
	v := d.Decimal
	return &v
}
