package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/gmz-api/internal/application/auth"
	"github.com/jhoicas/gmz-api/internal/application/ledger"
	"github.com/jhoicas/gmz-api/internal/application/report"
	"github.com/jhoicas/gmz-api/internal/application/usecase"
	"github.com/jhoicas/gmz-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ItemUC     *usecase.ItemUseCase
	MaterialUC *usecase.MaterialUseCase
	CategoryUC *usecase.CategoryUseCase
	SupplierUC *usecase.SupplierUseCase
	OrderUC    *usecase.OrderUseCase
	Ledger     *ledger.Service
	Sales      *report.SalesUseCase
	Documents  *report.DocumentsUseCase
	AuthUC     *auth.AuthUseCase
	JWTSecret  string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC)
	api.Post("/auth/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	anyRole := RequireRole(entity.RoleSystemAdmin, entity.RoleSalesAdmin)
	admin := RequireRole(entity.RoleSystemAdmin)

	// Items: lectura para ambos roles, escritura solo system_admin
	itemHandler := NewItemHandler(deps.ItemUC, deps.Ledger)
	items := protected.Group("/items")
	items.Get("/", anyRole, itemHandler.List)
	items.Get("/:id", anyRole, itemHandler.GetByID)
	items.Get("/:id/batches", anyRole, itemHandler.Batches)
	items.Post("/", admin, itemHandler.Create)
	items.Put("/:id", admin, itemHandler.Update)
	items.Delete("/:id", admin, itemHandler.Delete)

	// Materias primas. /batches va antes de /:id
	materialHandler := NewMaterialHandler(deps.MaterialUC, deps.Ledger)
	materials := protected.Group("/materials", admin)
	materials.Get("/batches", materialHandler.AllBatches)
	materials.Get("/", materialHandler.List)
	materials.Post("/", materialHandler.Create)
	materials.Get("/:id", materialHandler.GetByID)
	materials.Put("/:id", materialHandler.Update)
	materials.Delete("/:id", materialHandler.Delete)
	materials.Get("/:id/batches", materialHandler.Batches)

	categoryHandler := NewCategoryHandler(deps.CategoryUC)
	categories := protected.Group("/categories")
	categories.Get("/", anyRole, categoryHandler.List)
	categories.Post("/", admin, categoryHandler.Create)

	supplierHandler := NewSupplierHandler(deps.SupplierUC)
	suppliers := protected.Group("/suppliers", admin)
	suppliers.Get("/", supplierHandler.List)
	suppliers.Post("/", supplierHandler.Create)
	suppliers.Get("/:id", supplierHandler.GetByID)
	suppliers.Put("/:id", supplierHandler.Update)
	suppliers.Delete("/:id", supplierHandler.Delete)
	suppliers.Get("/:id/materials", supplierHandler.Materials)

	// Ledger: producción, entregas y bitácoras de consumo
	productionHandler := NewProductionHandler(deps.Ledger)
	productions := protected.Group("/productions", admin)
	productions.Get("/", productionHandler.List)
	productions.Post("/", productionHandler.Create)
	productions.Get("/:id", productionHandler.GetByID)
	productions.Put("/:id", productionHandler.Update)
	productions.Delete("/:id", productionHandler.Delete)

	deliveryHandler := NewDeliveryHandler(deps.Ledger)
	deliveries := protected.Group("/deliveries", admin)
	deliveries.Get("/", deliveryHandler.List)
	deliveries.Post("/", deliveryHandler.Create)
	deliveries.Get("/:id", deliveryHandler.GetByID)
	deliveries.Put("/:id", deliveryHandler.Update)
	deliveries.Delete("/:id", deliveryHandler.Delete)

	consumptionHandler := NewConsumptionHandler(deps.Ledger)
	logs := protected.Group("/consumption-logs", admin)
	logs.Get("/", consumptionHandler.List)
	logs.Post("/", consumptionHandler.Create)
	logs.Get("/:id", consumptionHandler.GetByID)
	logs.Put("/:id", consumptionHandler.Update)
	logs.Delete("/:id", consumptionHandler.Delete)

	ledgerHandler := NewLedgerHandler(deps.Ledger)
	protected.Get("/ledger/reconcile", admin, ledgerHandler.Reconcile)

	// Pedidos
	orderHandler := NewOrderHandler(deps.OrderUC, deps.Documents)
	orders := protected.Group("/orders", anyRole)
	orders.Get("/", orderHandler.List)
	orders.Post("/", orderHandler.Create)
	orders.Get("/:id", orderHandler.GetByID)
	orders.Put("/:id", orderHandler.Update)
	orders.Delete("/:id", orderHandler.Delete)
	orders.Patch("/:id/status", orderHandler.UpdateStatus)
	orders.Get("/:id/receipt", orderHandler.Receipt)

	reportHandler := NewReportHandler(deps.Sales, deps.Documents)
	reports := protected.Group("/reports", anyRole)
	reports.Get("/sales-summary", reportHandler.SalesSummary)
	reports.Get("/dashboard", reportHandler.Dashboard)
	reports.Get("/stock.xlsx", reportHandler.StockExport)

	userHandler := NewUserHandler(deps.AuthUC)
	protected.Get("/users/me", anyRole, userHandler.Me)
	protected.Post("/users", admin, userHandler.Create)
}
