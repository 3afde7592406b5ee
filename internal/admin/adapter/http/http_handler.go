package http

import (
	"mongo-admin/internal/admin/config"
	"mongo-admin/internal/admin/usecase"
	"mongo-admin/internal/shared/eventbus"
	"mongo-admin/internal/shared/logger"

	"github.com/gofiber/fiber/v2"
)

// HTTPHandler serves the tenant-scoped admin REST API.
type HTTPHandler struct {
	AdminUC usecase.AdminUsecase
	Auth    config.AuthConfig
	Log     logger.Logger
	Feed    *ChangeFeedHandler
}

// NewAdminHTTPHandler creates the REST handler. bus may be nil, in which case
// the websocket change feed is not mounted.
func NewAdminHTTPHandler(adminUC usecase.AdminUsecase, auth config.AuthConfig, bus eventbus.EventBusInterface, log logger.Logger) *HTTPHandler {
	if log == nil {
		log = logger.NewNopLogger()
	}
	h := &HTTPHandler{
		AdminUC: adminUC,
		Auth:    auth,
		Log:     log.WithComponent("admin_http"),
	}
	if bus != nil {
		h.Feed = NewChangeFeedHandler(bus, h.Log)
	}
	return h
}

func (h *HTTPHandler) RegisterRoutes(router fiber.Router) {
	tenant := TenantMiddleware(h.Auth, h.Log)

	api := router.Group("/api/v1", tenant)

	// Catalog
	api.Get("/collections", h.ListCollections)
	api.Post("/collections", h.CreateCollection)
	api.Delete("/collections/:collection", h.DeleteCollection)

	// Documents
	api.Get("/collections/:collection/documents", h.ListDocuments)
	api.Post("/collections/:collection/documents", h.InsertDocument)
	api.Put("/collections/:collection/documents", h.UpdateDocuments)
	api.Delete("/collections/:collection/documents", h.DeleteDocuments)
	api.Get("/collections/:collection/documents/:id", h.GetDocument)
	api.Put("/collections/:collection/documents/:id", h.UpdateDocument)
	api.Delete("/collections/:collection/documents/:id", h.DeleteDocument)
	api.Post("/collections/:collection/import", h.ImportDocuments)

	// Read-side helpers
	api.Get("/collections/:collection/schema", h.GetSchema)
	api.Post("/collections/:collection/aggregate", h.Aggregate)
	api.Get("/collections/:collection/export", h.Export)

	api.Get("/audit", h.RecentAudit)

	if h.Feed != nil {
		h.Feed.RegisterRoutes(router, tenant)
	}
}
