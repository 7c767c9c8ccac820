package http

import (
	"github.com/gofiber/fiber/v2"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Transfers TransferPoster
	Stock     BalanceReader
	Reports   ReportsService
	JWTSecret string

	// Catálogo de sólo lectura; si Products es nil no se monta /api/catalog.
	Products   ProductReader
	Locations  LocationReader
	Transports TransportReader
}

// Router registra las rutas de la API. Todas requieren Bearer Token.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	// Movimientos: sólo quien opera bodegas
	transferHandler := NewTransferHandler(deps.Transfers)
	api.Post("/transfers/:kind", RequireRole(RoleAdmin, RoleBodeguero), transferHandler.Post)

	// Saldos puntuales
	stockHandler := NewStockHandler(deps.Stock)
	stock := api.Group("/stock")
	stock.Get("/:locationType/:locationId", stockHandler.GetLocation)
	stock.Get("/:locationType/:locationId/:productId", stockHandler.GetKey)

	// Reportes
	reportsHandler := NewReportsHandler(deps.Reports)
	reports := api.Group("/reports")
	reports.Get("/current-stock", reportsHandler.CurrentStock)
	reports.Get("/movements", reportsHandler.Movements)
	reports.Get("/daily-summary", reportsHandler.DailySummary)
	reports.Post("/daily-summary/refresh", RequireRole(RoleAdmin), reportsHandler.RefreshDailySummary)
	reports.Get("/alerts", reportsHandler.Alerts)
	reports.Get("/turnover", reportsHandler.Turnover)
	reports.Get("/aging", reportsHandler.Aging)
	reports.Get("/valuation", reportsHandler.Valuation)
	reports.Get("/valuation.pdf", reportsHandler.ValuationPDF)
	reports.Get("/fast-moving", reportsHandler.FastMoving)
	reports.Get("/slow-moving", reportsHandler.SlowMoving)
	reports.Get("/reconciliation", reportsHandler.Reconciliation)

	if deps.Products != nil {
		catalogHandler := NewCatalogHandler(deps.Products, deps.Locations, deps.Transports)
		catalog := api.Group("/catalog")
		catalog.Get("/products/:id", catalogHandler.GetProduct)
		catalog.Get("/locations/:locationType/:id", catalogHandler.GetLocation)
		catalog.Get("/transports/:id", catalogHandler.GetTransport)
	}
}
