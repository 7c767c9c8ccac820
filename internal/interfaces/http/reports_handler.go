package http

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/analytics"
	"github.com/jhoicas/stock-ledger/internal/application/dto"
)

// ReportsService reportes de solo lectura (ver analytics.ReportsUseCase).
type ReportsService interface {
	CurrentStock(ctx context.Context, req dto.ReportRequest) (*dto.CurrentStockReportDTO, error)
	MovementHistory(ctx context.Context, req dto.MovementsRequest) (*dto.MovementHistoryDTO, error)
	DailySummary(ctx context.Context, req dto.ReportRequest) ([]dto.DailySummaryDTO, error)
	RefreshDailySummary(ctx context.Context, date string) (*dto.RefreshSummaryDTO, error)
	Alerts(ctx context.Context, req dto.ReportRequest) (*dto.AlertsReportDTO, error)
	Turnover(ctx context.Context, req dto.ReportRequest) (*dto.TurnoverReportDTO, error)
	Aging(ctx context.Context, req dto.ReportRequest) (*dto.AgingReportDTO, error)
	Valuation(ctx context.Context, req dto.ReportRequest, method string) (*dto.ValuationReportDTO, error)
	ValuationPDF(ctx context.Context, req dto.ReportRequest, method string) ([]byte, error)
	FastMovers(ctx context.Context, req dto.ReportRequest, topN int) (*dto.MoversReportDTO, error)
	SlowMovers(ctx context.Context, req dto.ReportRequest, thresholdDays int, minSold int64) (*dto.MoversReportDTO, error)
	Reconciliation(ctx context.Context, req dto.ReconciliationRequest) (*dto.ReconciliationDTO, error)
}

// ReportsHandler maneja GET /api/reports/* (protegido).
type ReportsHandler struct {
	uc ReportsService
}

// NewReportsHandler construye el handler.
func NewReportsHandler(uc ReportsService) *ReportsHandler {
	return &ReportsHandler{uc: uc}
}

// bindQuery lee y valida los query params en dst. Si falla ya respondió y ok es false.
func bindQuery(c *fiber.Ctx, dst any) (ok bool, err error) {
	if err := c.QueryParser(dst); err != nil {
		return false, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Code: "INVALID_PARAMS", Message: "parámetros de consulta inválidos",
		})
	}
	if err := validateStruct(dst); err != nil {
		return false, writeError(c, err)
	}
	return true, nil
}

func respond[T any](c *fiber.Ctx, out T, err error) error {
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// CurrentStock godoc
// @Summary      Stock actual por ubicación y producto
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        location_type  query  string  false  "warehouse | distribution-house (vacío = ambos)"
// @Param        location_id    query  string  false  "UUID de la ubicación"
// @Param        product_id     query  string  false  "UUID del producto"
// @Param        category       query  string  false  "Categoría del producto"
// @Success      200  {object}  dto.CurrentStockReportDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/reports/current-stock [get]
func (h *ReportsHandler) CurrentStock(c *fiber.Ctx) error {
	var req dto.ReportRequest
	if ok, err := bindQuery(c, &req); !ok {
		return err
	}
	out, err := h.uc.CurrentStock(c.UserContext(), req)
	return respond(c, out, err)
}

// Movements godoc
// @Summary      Historial de movimientos del libro
// @Description  Filas crudas del libro de un nivel, más recientes primero.
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        location_type   query  string  true   "warehouse | distribution-house"
// @Param        location_id     query  string  false  "UUID de la ubicación"
// @Param        product_id      query  string  false  "UUID del producto"
// @Param        reference_type  query  string  false  "Tipos de referencia separados por coma"
// @Param        reference_id    query  string  false  "ID de correlación del traslado"
// @Param        start_date      query  string  false  "YYYY-MM-DD"
// @Param        end_date        query  string  false  "YYYY-MM-DD"
// @Param        limit           query  int     false  "Default 50, máx. 500"
// @Param        offset          query  int     false  "Desplazamiento"
// @Success      200  {object}  dto.MovementHistoryDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/reports/movements [get]
func (h *ReportsHandler) Movements(c *fiber.Ctx) error {
	var req dto.MovementsRequest
	if ok, err := bindQuery(c, &req); !ok {
		return err
	}
	out, err := h.uc.MovementHistory(c.UserContext(), req)
	return respond(c, out, err)
}

// DailySummary godoc
// @Summary      Foto diaria materializada
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        location_type  query  string  false  "warehouse | distribution-house"
// @Param        start_date     query  string  false  "YYYY-MM-DD"
// @Param        end_date       query  string  false  "YYYY-MM-DD"
// @Success      200  {array}   dto.DailySummaryDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/reports/daily-summary [get]
func (h *ReportsHandler) DailySummary(c *fiber.Ctx) error {
	var req dto.ReportRequest
	if ok, err := bindQuery(c, &req); !ok {
		return err
	}
	out, err := h.uc.DailySummary(c.UserContext(), req)
	return respond(c, out, err)
}

// RefreshDailySummary godoc
// @Summary      Recalcular la foto diaria
// @Description  Recalcula el día indicado (por defecto hoy) en ambos niveles. Solo admin.
// @Tags         reports
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RefreshSummaryRequest  false  "date YYYY-MM-DD"
// @Success      200  {object}  dto.RefreshSummaryDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/reports/daily-summary/refresh [post]
func (h *ReportsHandler) RefreshDailySummary(c *fiber.Ctx) error {
	var in dto.RefreshSummaryRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
		}
	}
	out, err := h.uc.RefreshDailySummary(c.UserContext(), in.Date)
	return respond(c, out, err)
}

// Alerts godoc
// @Summary      Alertas de stock bajo y sobre-stock
// @Description  Umbrales del producto; sin umbral se usan los valores por defecto (10 / 100).
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        location_type  query  string  false  "warehouse | distribution-house"
// @Success      200  {object}  dto.AlertsReportDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/reports/alerts [get]
func (h *ReportsHandler) Alerts(c *fiber.Ctx) error {
	var req dto.ReportRequest
	if ok, err := bindQuery(c, &req); !ok {
		return err
	}
	out, err := h.uc.Alerts(c.UserContext(), req)
	return respond(c, out, err)
}

// Turnover godoc
// @Summary      Rotación de inventario
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        start_date  query  string  false  "YYYY-MM-DD. Default: primer día del mes."
// @Param        end_date    query  string  false  "YYYY-MM-DD. Default: hoy."
// @Param        period      query  string  false  "Tramos: daily, weekly, monthly o quarterly."
// @Success      200  {object}  dto.TurnoverReportDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/reports/turnover [get]
func (h *ReportsHandler) Turnover(c *fiber.Ctx) error {
	var req dto.ReportRequest
	if ok, err := bindQuery(c, &req); !ok {
		return err
	}
	out, err := h.uc.Turnover(c.UserContext(), req)
	return respond(c, out, err)
}

// Aging godoc
// @Summary      Antigüedad del inventario
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        end_date  query  string  false  "Fecha de corte YYYY-MM-DD. Default: hoy."
// @Success      200  {object}  dto.AgingReportDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/reports/aging [get]
func (h *ReportsHandler) Aging(c *fiber.Ctx) error {
	var req dto.ReportRequest
	if ok, err := bindQuery(c, &req); !ok {
		return err
	}
	out, err := h.uc.Aging(c.UserContext(), req)
	return respond(c, out, err)
}

// Valuation godoc
// @Summary      Valorización del inventario
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        method  query  string  false  "FIFO | LIFO | weighted-average (default)"
// @Success      200  {object}  dto.ValuationReportDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/reports/valuation [get]
func (h *ReportsHandler) Valuation(c *fiber.Ctx) error {
	var req dto.ReportRequest
	if ok, err := bindQuery(c, &req); !ok {
		return err
	}
	out, err := h.uc.Valuation(c.UserContext(), req, c.Query("method"))
	return respond(c, out, err)
}

// ValuationPDF godoc
// @Summary      Valorización del inventario en PDF
// @Tags         reports
// @Security     Bearer
// @Produce      application/pdf
// @Param        method  query  string  false  "FIFO | LIFO | weighted-average (default)"
// @Success      200  {file}    binary
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      501  {object}  dto.ErrorResponse
// @Router       /api/reports/valuation.pdf [get]
func (h *ReportsHandler) ValuationPDF(c *fiber.Ctx) error {
	var req dto.ReportRequest
	if ok, err := bindQuery(c, &req); !ok {
		return err
	}
	pdf, err := h.uc.ValuationPDF(c.UserContext(), req, c.Query("method"))
	if errors.Is(err, analytics.ErrNoPDF) {
		return c.Status(fiber.StatusNotImplemented).JSON(dto.ErrorResponse{Code: "PDF_DISABLED", Message: err.Error()})
	}
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="valuation.pdf"`)
	return c.Send(pdf)
}

// FastMoving godoc
// @Summary      Productos de alta rotación
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        top_n  query  int  false  "Máx. ítems (default 10, máx. 200)"
// @Success      200  {object}  dto.MoversReportDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/reports/fast-moving [get]
func (h *ReportsHandler) FastMoving(c *fiber.Ctx) error {
	var req dto.ReportRequest
	if ok, err := bindQuery(c, &req); !ok {
		return err
	}
	out, err := h.uc.FastMovers(c.UserContext(), req, c.QueryInt("top_n"))
	return respond(c, out, err)
}

// SlowMoving godoc
// @Summary      Productos de baja rotación
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        threshold_days  query  int  false  "Días sin movimiento (default 90)"
// @Param        min_sold        query  int  false  "Salidas mínimas en la ventana (default 10)"
// @Success      200  {object}  dto.MoversReportDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/reports/slow-moving [get]
func (h *ReportsHandler) SlowMoving(c *fiber.Ctx) error {
	var req dto.ReportRequest
	if ok, err := bindQuery(c, &req); !ok {
		return err
	}
	out, err := h.uc.SlowMovers(c.UserContext(), req, c.QueryInt("threshold_days"), int64(c.QueryInt("min_sold")))
	return respond(c, out, err)
}

// Reconciliation godoc
// @Summary      Conciliación de una clave de stock
// @Description  Apertura, cierre, totales y rupturas de la cadena del libro.
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        location_type  query  string  true   "warehouse | distribution-house"
// @Param        location_id    query  string  true   "UUID de la ubicación"
// @Param        product_id     query  string  true   "UUID del producto"
// @Success      200  {object}  dto.ReconciliationDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/reports/reconciliation [get]
func (h *ReportsHandler) Reconciliation(c *fiber.Ctx) error {
	var req dto.ReconciliationRequest
	if ok, err := bindQuery(c, &req); !ok {
		return err
	}
	out, err := h.uc.Reconciliation(c.UserContext(), req)
	return respond(c, out, err)
}
