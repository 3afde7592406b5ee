package http

import (
	"mongo-admin/internal/admin/domain/service"
	"mongo-admin/internal/admin/usecase"
	"mongo-admin/internal/shared/errors"

	"github.com/gofiber/fiber/v2"
)

// ListCollections returns the tenant's live collections plus the metadata hint.
func (h *HTTPHandler) ListCollections(c *fiber.Ctx) error {
	withSchema := c.QueryBool("schema", false)

	listing, err := h.AdminUC.ListCollections(c.UserContext(), withSchema)
	if err != nil {
		return h.fail(c, err, "list collections")
	}
	return c.JSON(listing)
}

func (h *HTTPHandler) CreateCollection(c *fiber.Ctx) error {
	var req usecase.CreateCollectionRequest
	if err := decodeBody(c, &req); err != nil {
		return h.fail(c, err, "create collection")
	}
	if req.CollectionName == "" {
		return h.fail(c, errors.NewValidationError("collectionName is required").WithDetail("field", "collectionName"), "create collection")
	}

	resp, err := h.AdminUC.CreateCollection(c.UserContext(), req)
	if err != nil {
		return h.fail(c, err, "create collection")
	}

	h.Log.WithContext(c.UserContext()).Infof("Collection %s created", resp.FullName)
	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (h *HTTPHandler) DeleteCollection(c *fiber.Ctx) error {
	name := c.Params("collection")
	if err := h.AdminUC.DeleteCollection(c.UserContext(), name); err != nil {
		return h.fail(c, err, "delete collection")
	}
	return c.JSON(fiber.Map{"success": true, "name": name})
}

// GetSchema returns the inferred schema, or its OpenAPI rendering with
// format=openapi.
func (h *HTTPHandler) GetSchema(c *fiber.Ctx) error {
	schema, err := h.AdminUC.GetSchema(c.UserContext(), c.Params("collection"))
	if err != nil {
		return h.fail(c, err, "infer schema")
	}

	switch c.Query("format") {
	case "", "native":
		return c.JSON(fiber.Map{"collection": c.Params("collection"), "schema": schema})
	case "openapi":
		return c.JSON(service.OpenAPISchema(schema).Value)
	default:
		return h.fail(c, errors.NewValidationError("unsupported schema format").WithDetail("format", c.Query("format")), "infer schema")
	}
}

// RecentAudit lists the tenant's latest change events, newest first.
func (h *HTTPHandler) RecentAudit(c *fiber.Ctx) error {
	limit := int64(c.QueryInt("limit", int(usecase.DefaultAuditLimit)))

	entries, err := h.AdminUC.RecentAudit(c.UserContext(), limit)
	if err != nil {
		return h.fail(c, err, "read audit log")
	}
	return c.JSON(fiber.Map{"entries": entries, "count": len(entries)})
}
