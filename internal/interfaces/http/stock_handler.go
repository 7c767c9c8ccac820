package http

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// BalanceReader saldos derivados del libro (ver stock.Resolver).
type BalanceReader interface {
	CurrentStock(ctx context.Context, tier entity.LocationType, locationID, productID string) (decimal.Decimal, error)
	CurrentStockForLocation(ctx context.Context, tier entity.LocationType, locationID string) ([]entity.Balance, error)
}

// StockHandler consultas de saldo puntuales (protegido).
type StockHandler struct {
	balances BalanceReader
}

// NewStockHandler construye el handler.
func NewStockHandler(balances BalanceReader) *StockHandler {
	return &StockHandler{balances: balances}
}

// GetLocation godoc
// @Summary      Saldos de una ubicación
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        locationType  path  string  true  "warehouse | distribution-house"
// @Param        locationId    path  string  true  "UUID de la ubicación"
// @Success      200  {array}   dto.BalanceDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/stock/{locationType}/{locationId} [get]
func (h *StockHandler) GetLocation(c *fiber.Ctx) error {
	tier := entity.LocationType(c.Params("locationType"))
	balances, err := h.balances.CurrentStockForLocation(c.UserContext(), tier, c.Params("locationId"))
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.BalanceDTO, len(balances))
	for i, b := range balances {
		out[i] = dto.BalanceDTO{
			LocationType: string(b.LocationType),
			LocationID:   b.LocationID,
			ProductID:    b.ProductID,
			Quantity:     b.Quantity,
		}
	}
	return c.JSON(out)
}

// GetKey godoc
// @Summary      Saldo de un producto en una ubicación
// @Description  Cierre de la última entrada del libro; 0 si nunca hubo movimientos.
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        locationType  path  string  true  "warehouse | distribution-house"
// @Param        locationId    path  string  true  "UUID de la ubicación"
// @Param        productId     path  string  true  "UUID del producto"
// @Success      200  {object}  dto.BalanceDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/stock/{locationType}/{locationId}/{productId} [get]
func (h *StockHandler) GetKey(c *fiber.Ctx) error {
	tier := entity.LocationType(c.Params("locationType"))
	locationID, productID := c.Params("locationId"), c.Params("productId")
	qty, err := h.balances.CurrentStock(c.UserContext(), tier, locationID, productID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.BalanceDTO{
		LocationType: string(tier),
		LocationID:   locationID,
		ProductID:    productID,
		Quantity:     qty,
	})
}
