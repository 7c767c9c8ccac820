package http

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/transfer"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

const dateLayout = "2006-01-02"

// TransferPoster registra movimientos (ver transfer.Orchestrator).
type TransferPoster interface {
	Post(ctx context.Context, cmd transfer.Command) (*transfer.Receipt, error)
}

// TransferHandler maneja POST /api/transfers/:kind (protegido).
type TransferHandler struct {
	poster TransferPoster
}

// NewTransferHandler construye el handler.
func NewTransferHandler(poster TransferPoster) *TransferHandler {
	return &TransferHandler{poster: poster}
}

// Post godoc
// @Summary      Registrar movimiento de stock
// @Description  Traslados, despachos, devoluciones, producción, compras, ventas y ajustes.
//
//	Todas las líneas se registran en una sola transacción bajo un mismo reference_id.
//
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        kind  path  string               true  "warehouse-transfer, distribution-house-transfer, dispatch-to-warehouse, return-to-distribution-house, production, purchase, sale, customer-return, adjustment-in, adjustment-out"
// @Param        body  body  dto.TransferRequest  true  "source/destination según el tipo, items, transport_id, date"
// @Success      201   {object}  dto.TransferResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/transfers/{kind} [post]
func (h *TransferHandler) Post(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	kind := transfer.Kind(c.Params("kind"))
	if !kind.Valid() {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Code:    "UNKNOWN_KIND",
			Message: fmt.Sprintf("tipo de movimiento desconocido: %s (válidos: %s)", kind, joinKinds(transfer.Kinds())),
		})
	}

	var in dto.TransferRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := validateStruct(in); err != nil {
		return writeError(c, err)
	}
	cmd, err := toCommand(kind, userID, in)
	if err != nil {
		return writeError(c, err)
	}

	receipt, err := h.poster.Post(c.UserContext(), cmd)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.TransferResponse{
		ReferenceID: receipt.ReferenceID,
		Kind:        string(receipt.Kind),
		Date:        receipt.Date.Format(dateLayout),
		Entries:     dto.NewLedgerEntryDTOs(receipt.Entries),
	})
}

// toCommand convierte el body al comando del orquestador.
func toCommand(kind transfer.Kind, userID string, in dto.TransferRequest) (transfer.Command, error) {
	cmd := transfer.Command{
		Kind:        kind,
		Source:      toLocationRef(in.Source),
		Destination: toLocationRef(in.Destination),
		TransportID: optionalString(in.TransportID),
		Notes:       in.Notes,
		CreatedBy:   userID,
		Document: transfer.Document{
			OrderNumber:         in.OrderNumber,
			OriginalOrderNumber: in.OriginalOrderNumber,
			Counterparty:        in.Counterparty,
			Reason:              in.Reason,
		},
		Items: make([]transfer.Item, 0, len(in.Items)),
	}
	if in.Date != "" {
		d, err := time.Parse(dateLayout, in.Date)
		if err != nil {
			return transfer.Command{}, domain.Invalid("date inválido: %q", in.Date)
		}
		cmd.Date = d
	}
	for _, it := range in.Items {
		item := transfer.Item{
			ProductID:   it.ProductID,
			Quantity:    it.Quantity,
			BatchNumber: optionalString(it.BatchNumber),
		}
		if it.UnitPrice != nil {
			if it.UnitPrice.IsNegative() {
				return transfer.Command{}, domain.Invalid("unit_price negativo para producto %s", it.ProductID)
			}
			item.UnitPrice = decimal.NewNullDecimal(*it.UnitPrice)
		}
		if it.ExpiryDate != "" {
			exp, err := time.Parse(dateLayout, it.ExpiryDate)
			if err != nil {
				return transfer.Command{}, domain.Invalid("expiry_date inválido: %q", it.ExpiryDate)
			}
			item.ExpiryDate = &exp
		}
		cmd.Items = append(cmd.Items, item)
	}
	return cmd, nil
}

func toLocationRef(in *dto.LocationRefRequest) *entity.LocationRef {
	if in == nil {
		return nil
	}
	return &entity.LocationRef{Type: entity.LocationType(in.Type), ID: in.ID}
}

func optionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func joinKinds(kinds []transfer.Kind) string {
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}
	return strings.Join(names, ", ")
}
