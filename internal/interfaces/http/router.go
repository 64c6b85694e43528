package http

import (
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/inventario-produccion/internal/application/inventory"
	"github.com/jhoicas/inventario-produccion/internal/application/production"
	"github.com/jhoicas/inventario-produccion/internal/application/purchasing"
)

// AppConfig opciones del servidor HTTP.
type AppConfig struct {
	Name        string
	SwaggerFile string // vacío = sin /docs
	MetricsPath string // vacío = sin métricas
}

// NewApp crea la aplicación Fiber con recover, health, métricas y Swagger opcional.
// Immutable: los parámetros de ruta se guardan en el almacén en memoria y no pueden apuntar al buffer de fasthttp.
func NewApp(cfg AppConfig) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      cfg.Name,
		Immutable:    true,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	if cfg.SwaggerFile != "" {
		// Swagger UI: http://localhost:<port>/docs
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: cfg.SwaggerFile,
			Path:     "docs",
			Title:    "Inventario y Producción API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.Name})
	})
	if cfg.MetricsPath != "" {
		app.Get(cfg.MetricsPath, adaptor.HTTPHandler(promhttp.Handler()))
	}
	return app
}

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Ledger        *inventory.StockLedger
	Adjustments   *inventory.AdjustmentUseCase
	Replenishment *inventory.ReplenishmentUseCase
	BOM           *production.BOMUseCase
	Planner       *production.PlannerUseCase
	Conferencer   *production.ColorStockConferencer
	Orders        *production.OrderUseCase
	Receiving     *purchasing.ReceivingUseCase
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	inventoryHandler := NewInventoryHandler(deps.Ledger, deps.Adjustments, deps.Replenishment)
	inv := api.Group("/inventory")
	inv.Get("/movements", inventoryHandler.ListMovements)
	inv.Post("/adjustments", inventoryHandler.Adjust)
	inv.Post("/outbound", inventoryHandler.Outbound)
	inv.Post("/reconciliations", inventoryHandler.Reconcile)
	inv.Get("/low-stock", inventoryHandler.LowStock)
	inv.Get("/items/:id/balance", inventoryHandler.Balance)
	inv.Get("/items/:id/balances-by-color", inventoryHandler.BalancesByColor)
	inv.Get("/items/:id/audit", inventoryHandler.Audit)
	inv.Get("/items/:id/replenishment", inventoryHandler.SuggestThresholds)

	productionHandler := NewProductionHandler(deps.BOM, deps.Planner, deps.Conferencer, deps.Orders)
	bom := api.Group("/bom")
	bom.Get("/:item_id", productionHandler.GetBOM)
	bom.Put("/:item_id/lines/:ingredient_id", productionHandler.SetBOMLine)
	bom.Delete("/:item_id/lines/:ingredient_id", productionHandler.RemoveBOMLine)

	prod := api.Group("/production")
	prod.Get("/items/:id/producible", productionHandler.Producible)
	prod.Post("/color-check", productionHandler.ColorCheck)
	prod.Post("/orders", productionHandler.CreateOrder)
	prod.Get("/orders/:id", productionHandler.GetOrder)
	prod.Get("/orders/:id/items", productionHandler.ListOrderItems)
	prod.Get("/orders/:id/color-check", productionHandler.OrderColorCheck)
	prod.Post("/orders/:id/execute", productionHandler.ExecuteOrder)

	purchaseHandler := NewPurchaseHandler(deps.Receiving)
	purchases := api.Group("/purchase-orders")
	purchases.Post("/", purchaseHandler.Create)
	purchases.Get("/:id", purchaseHandler.GetByID)
	purchases.Post("/:id/receipts", purchaseHandler.Receive)
}
