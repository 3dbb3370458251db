// Package v1 provides HTTP API version 1.
package v1

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"stockerp/internal/core/tx"
	"stockerp/internal/domain/audit"
	"stockerp/internal/domain/auth"
	"stockerp/internal/domain/catalogs/category"
	"stockerp/internal/domain/catalogs/customer"
	"stockerp/internal/domain/catalogs/goods"
	"stockerp/internal/domain/catalogs/supplier"
	"stockerp/internal/domain/catalogs/unit"
	"stockerp/internal/domain/catalogs/warehouse"
	"stockerp/internal/domain/documents/adjustment"
	"stockerp/internal/domain/documents/payment"
	"stockerp/internal/domain/documents/purchase"
	"stockerp/internal/domain/documents/sale"
	"stockerp/internal/domain/documents/transfer"
	"stockerp/internal/domain/inventory"
	"stockerp/internal/domain/reports"
	"stockerp/internal/infrastructure/http/v1/handlers"
	"stockerp/internal/infrastructure/http/v1/middleware"
	"stockerp/internal/infrastructure/storage/postgres"
	"stockerp/internal/infrastructure/storage/postgres/catalog_repo"
	"stockerp/internal/infrastructure/storage/postgres/document_repo"
	"stockerp/internal/infrastructure/storage/postgres/inventory_repo"
	"stockerp/internal/infrastructure/storage/postgres/report_repo"
	"stockerp/pkg/logger"
	"stockerp/pkg/numerator"
)

// RouterConfig holds router configuration.
type RouterConfig struct {
	// Pool is the database connection pool.
	Pool *postgres.Pool

	// Logger for request logging.
	Logger *logger.Logger

	// JWTValidator for token validation.
	JWTValidator middleware.JWTValidator

	// AuthService for authentication endpoints.
	AuthService *auth.Service

	// IdempotencyTTL is how long completed idempotency keys are replayed.
	// Zero disables the idempotency middleware.
	IdempotencyTTL time.Duration
}

// deps holds the shared infrastructure every route group builds on.
type deps struct {
	txm       tx.Manager
	numerator *numerator.Service
	recorder  audit.Recorder
	stock     *inventory.Service
	auditor   *inventory.Auditor
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) (*gin.Engine, error) {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no auth required)
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	healthHandler.RegisterRoutes(router.Group("/health"))

	// Shared infrastructure
	txm := postgres.NewTxManager(cfg.Pool)
	auditStore, err := postgres.NewAuditStore(txm)
	if err != nil {
		return nil, fmt.Errorf("create audit store: %w", err)
	}
	movementEvents := postgres.NewMovementEvents(postgres.NewOutboxPublisher(txm))

	stockRepo := inventory_repo.NewStockRepo(txm)
	d := deps{
		txm:       txm,
		numerator: numerator.New(cfg.Pool),
		recorder:  auditStore,
		stock:     inventory.NewService(txm, stockRepo, movementEvents),
		auditor:   inventory.NewAuditor(txm, stockRepo, auditStore),
	}

	// API v1
	v1 := router.Group("/api/v1")

	registerAuthRoutes(v1, cfg)

	protected := v1.Group("")
	protected.Use(middleware.Auth(cfg.JWTValidator))
	if cfg.IdempotencyTTL > 0 {
		store := postgres.NewIdempotencyStore(txm, cfg.IdempotencyTTL)
		protected.Use(middleware.Idempotency(store))
	}

	registerCatalogRoutes(protected, d)
	registerDocumentRoutes(protected, d)
	registerStockRoutes(protected, d)
	registerReportRoutes(protected, d)
	registerAuditRoutes(protected, auditStore)

	return router, nil
}

// registerAuthRoutes registers authentication endpoints.
func registerAuthRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	if cfg.AuthService == nil {
		return
	}

	baseHandler := handlers.NewBaseHandler()
	authHandler := handlers.NewAuthHandler(baseHandler, cfg.AuthService)

	// Public auth endpoints (no JWT required)
	publicAuth := rg.Group("/auth")

	// Protected auth endpoints (JWT required)
	protectedAuth := rg.Group("/auth")
	protectedAuth.Use(middleware.Auth(cfg.JWTValidator))

	authHandler.RegisterRoutes(publicAuth, protectedAuth)
}

// registerCatalogRoutes registers catalog endpoints.
func registerCatalogRoutes(rg *gin.RouterGroup, d deps) {
	catalogs := rg.Group("/catalog")
	baseHandler := handlers.NewBaseHandler()

	{
		repo := catalog_repo.NewUnitRepo(d.txm)
		service := unit.NewService(repo, d.numerator, d.txm, d.recorder)
		handler := handlers.NewUnitHandler(baseHandler, service)
		RegisterCatalogRoutes(catalogs.Group("/units"), handler, "catalog:unit")
	}

	{
		repo := catalog_repo.NewCategoryRepo(d.txm)
		service := category.NewService(repo, d.numerator, d.txm, d.recorder)
		handler := handlers.NewCategoryHandler(baseHandler, service)
		RegisterCatalogRoutes(catalogs.Group("/categories"), handler, "catalog:category")
	}

	{
		repo := catalog_repo.NewGoodsRepo(d.txm)
		service := goods.NewService(repo, d.numerator, d.txm, d.recorder)
		handler := handlers.NewGoodsHandler(baseHandler, service)
		RegisterCatalogRoutes(catalogs.Group("/goods"), handler, "catalog:goods")
	}

	{
		repo := catalog_repo.NewWarehouseRepo(d.txm)
		service := warehouse.NewService(repo, d.numerator, d.txm, d.recorder)
		handler := handlers.NewWarehouseHandler(baseHandler, service)
		RegisterCatalogRoutes(catalogs.Group("/warehouses"), handler, "catalog:warehouse")
	}

	{
		repo := catalog_repo.NewSupplierRepo(d.txm)
		service := supplier.NewService(repo, d.numerator, d.txm, d.recorder)
		handler := handlers.NewSupplierHandler(baseHandler, service)
		RegisterCatalogRoutes(catalogs.Group("/suppliers"), handler, "catalog:supplier")
	}

	{
		repo := catalog_repo.NewCustomerRepo(d.txm)
		service := customer.NewService(repo, d.numerator, d.txm, d.recorder)
		handler := handlers.NewCustomerHandler(baseHandler, service)
		RegisterCatalogRoutes(catalogs.Group("/customers"), handler, "catalog:customer")
	}
}

// registerDocumentRoutes registers document endpoints.
func registerDocumentRoutes(rg *gin.RouterGroup, d deps) {
	docs := rg.Group("/document")
	baseHandler := handlers.NewBaseHandler()

	{
		repo := document_repo.NewPurchaseOrderRepo(d.txm)
		service := purchase.NewService(repo, d.stock, d.numerator, d.txm, d.recorder)
		handler := handlers.NewPurchaseOrderHandler(baseHandler, service)
		RegisterDocumentRoutes(docs.Group("/purchase-orders"), handler, "document:purchase_order")
	}

	{
		repo := document_repo.NewSaleOrderRepo(d.txm)
		service := sale.NewService(repo, d.stock, d.numerator, d.txm, d.recorder)
		handler := handlers.NewSaleOrderHandler(baseHandler, service)
		RegisterDocumentRoutes(docs.Group("/sale-orders"), handler, "document:sale_order")
	}

	{
		repo := document_repo.NewAdjustmentRepo(d.txm)
		service := adjustment.NewService(repo, d.stock, d.numerator, d.txm, d.recorder)
		handler := handlers.NewStockAdjustmentHandler(baseHandler, service)
		RegisterDocumentRoutes(docs.Group("/stock-adjustments"), handler, "document:stock_adjustment")
	}

	{
		repo := document_repo.NewTransferRepo(d.txm)
		service := transfer.NewService(repo, d.stock, d.numerator, d.txm, d.recorder)
		handler := handlers.NewStockTransferHandler(baseHandler, service)
		RegisterDocumentRoutes(docs.Group("/stock-transfers"), handler, "document:stock_transfer")
	}

	{
		repo := document_repo.NewPaymentRepo(d.txm)
		service := payment.NewService(repo, d.numerator, d.txm, d.recorder)
		handler := handlers.NewPaymentHandler(baseHandler, service)
		RegisterDocumentRoutes(docs.Group("/payments"), handler, "document:payment")
	}
}

// registerStockRoutes registers stock ledger endpoints.
func registerStockRoutes(rg *gin.RouterGroup, d deps) {
	baseHandler := handlers.NewBaseHandler()
	handler := handlers.NewStockHandler(baseHandler, d.stock, d.auditor)

	stock := rg.Group("/stock")
	stock.GET("/balance", middleware.RequirePermission("stock:read"), handler.GetBalance)
	stock.GET("/balances", middleware.RequirePermission("stock:read"), handler.ListBalances)
	stock.GET("/movements", middleware.RequireAnyPermission("stock:read", "stock:audit"), handler.ListMovements)
	stock.GET("/movements/by-ref", middleware.RequireAnyPermission("stock:read", "stock:audit"), handler.ListMovementsByRef)
	stock.POST("/receipts", middleware.RequirePermission("stock:mutate"), handler.StockIn)
	stock.POST("/issues", middleware.RequirePermission("stock:mutate"), handler.StockOut)
	stock.POST("/transfers", middleware.RequirePermission("stock:mutate"), handler.Transfer)
	stock.GET("/consistency", middleware.RequirePermission("stock:audit"), handler.CheckConsistency)
	stock.POST("/consistency/fix", middleware.RequireAllPermissions("stock:audit", "stock:mutate"), handler.FixDiscrepancy)
}

// registerReportRoutes registers report endpoints.
func registerReportRoutes(rg *gin.RouterGroup, d deps) {
	baseHandler := handlers.NewBaseHandler()
	service := reports.NewService(report_repo.NewReportRepo(d.txm))
	handler := handlers.NewReportsHandler(baseHandler, service)

	rep := rg.Group("/reports")
	rep.GET("/stock-status", middleware.RequirePermission("report:stock:read"), handler.GetStockStatus)
	rep.GET("/stock-warnings", middleware.RequirePermission("report:stock:read"), handler.GetStockWarnings)
	rep.GET("/inventory/:id", middleware.RequirePermission("report:stock:read"), handler.GetInventoryDetail)
	rep.GET("/stock-summary", middleware.RequirePermission("report:stock:read"), handler.GetStockSummary)
	rep.GET("/stock-turnover", middleware.RequirePermission("report:stock:read"), handler.GetStockTurnover)
	rep.GET("/document-journal", middleware.RequirePermission("report:documents:read"), handler.GetDocumentJournal)
}

// registerAuditRoutes registers audit trail endpoints.
func registerAuditRoutes(rg *gin.RouterGroup, store *postgres.AuditStore) {
	handler := handlers.NewAuditHandler(handlers.NewBaseHandler(), store)

	trail := rg.Group("/audit")
	trail.GET("/:entityType/:entityId", middleware.RequireRole("admin"), handler.GetEntityHistory)
}
