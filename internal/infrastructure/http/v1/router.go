// Package v1 provides HTTP API version 1.
package v1

import (
	"context"

	"github.com/gin-gonic/gin"

	"factura/internal/core/series"
	"factura/internal/domain"
	"factura/internal/domain/catalogs/customer"
	"factura/internal/domain/catalogs/provider"
	"factura/internal/domain/documents/billing"
	"factura/internal/infrastructure/http/v1/handlers"
	"factura/internal/infrastructure/http/v1/middleware"
	"factura/internal/infrastructure/storage/postgres"
	"factura/internal/infrastructure/storage/postgres/catalog_repo"
	"factura/internal/infrastructure/storage/postgres/document_repo"
	"factura/pkg/logger"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	// Pool is the database connection pool (for health checks)
	Pool *postgres.Pool

	// TxManager manages database transactions
	TxManager *postgres.TxManager

	// Logger for request logging
	Logger *logger.Logger

	// JWTValidator for token validation
	JWTValidator middleware.JWTValidator

	// Registry reserves document numbers per (provider, series)
	Registry series.Registry

	// Audit records entity changes; nil disables audit trails
	Audit *postgres.AuditService

	// Billing holds billing document service configuration
	Billing billing.Config
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no auth required)
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	// API v1. Auth is optional: with no validator configured the API runs open
	// (local development, trusted network deployments).
	api := router.Group("/api/v1")
	if cfg.JWTValidator != nil {
		api.Use(middleware.Auth(cfg.JWTValidator))
	}

	baseHandler := handlers.NewBaseHandler()

	// --- CATALOGS ---

	providerRepo := catalog_repo.NewProviderRepo(cfg.TxManager)
	providerService := provider.NewService(providerRepo)
	providerHandler := handlers.NewProviderHandler(baseHandler, providerService)
	providerHandler.RegisterRoutes(api.Group("/providers"))

	customerRepo := catalog_repo.NewCustomerRepo(cfg.TxManager)
	customerService := customer.NewService(customerRepo)
	customerHandler := handlers.NewCustomerHandler(baseHandler, customerService)
	customerHandler.RegisterRoutes(api.Group("/customers"))

	// --- BILLING DOCUMENTS ---

	billingRepo := document_repo.NewBillingRepo(cfg.TxManager)
	billingService := billing.NewService(
		billingRepo,
		providerService,
		customerService,
		cfg.Registry,
		providerService,
		cfg.TxManager,
		cfg.Billing,
	)

	if cfg.Audit != nil {
		registerBillingAuditHooks(billingService, cfg.Audit)
	}

	billingHandler := handlers.NewBillingHandler(baseHandler, billingService)

	proformas := api.Group("/proformas")
	billingHandler.RegisterRoutes(proformas, series.KindProforma)

	invoices := api.Group("/invoices")
	billingHandler.RegisterRoutes(invoices, series.KindInvoice)

	if cfg.Audit != nil {
		auditHandler := handlers.NewAuditHandler(baseHandler, cfg.Audit)
		proformas.GET("/:id/history", auditHandler.History)
		invoices.GET("/:id/history", auditHandler.History)
	}

	return router
}

// registerBillingAuditHooks wires the audit trail into the billing document
// lifecycle. Hooks run inside the document transaction, so the audit entry
// commits or rolls back together with the change it describes.
func registerBillingAuditHooks(service *billing.Service, audit *postgres.AuditService) {
	const entityType = "billing_document"

	service.Hooks().On(domain.AfterCreate, func(ctx context.Context, doc *billing.Document) error {
		return audit.LogChange(ctx, entityType, doc.ID, postgres.AuditActionCreate, map[string]any{
			"kind":   doc.Kind,
			"series": doc.Series,
			"status": doc.Status,
		})
	})

	service.Hooks().On(domain.AfterTransition, func(ctx context.Context, doc *billing.Document) error {
		changes := map[string]any{
			"status": doc.Status,
		}
		if doc.Number != nil {
			changes["number"] = *doc.Number
		}
		return audit.LogChange(ctx, entityType, doc.ID,
			postgres.AuditActionForStatus(string(doc.Status)), changes)
	})

	service.Hooks().On(domain.AfterDelete, func(ctx context.Context, doc *billing.Document) error {
		return audit.LogChange(ctx, entityType, doc.ID, postgres.AuditActionDelete, map[string]any{
			"kind":   doc.Kind,
			"series": doc.Series,
		})
	})
}
