package http

import (
	"strings"

	"mongo-admin/internal/admin/domain/model"
	"mongo-admin/internal/admin/domain/service"
	"mongo-admin/internal/admin/usecase"
	"mongo-admin/internal/shared/errors"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson"
)

// queryParams copies the raw paging inputs; the planner validates them.
func queryParams(c *fiber.Ctx) model.QueryParams {
	return model.QueryParams{
		Page:      c.Query("page"),
		Limit:     c.Query("limit"),
		SortBy:    c.Query("sortBy"),
		SortOrder: c.Query("sortOrder"),
		Search:    c.Query("search"),
		Sort:      c.Query("sort"),
		Filter:    c.Query("filter"),
		Tabular:   c.Query("view") == "table",
	}
}

func (h *HTTPHandler) ListDocuments(c *fiber.Ctx) error {
	page, err := h.AdminUC.GetPage(c.UserContext(), c.Params("collection"), queryParams(c))
	if err != nil {
		return h.fail(c, err, "list documents")
	}
	return c.JSON(page)
}

func (h *HTTPHandler) GetDocument(c *fiber.Ctx) error {
	doc, err := h.AdminUC.GetDocument(c.UserContext(), c.Params("collection"), c.Params("id"))
	if err != nil {
		return h.fail(c, err, "get document")
	}
	return c.JSON(doc)
}

func (h *HTTPHandler) InsertDocument(c *fiber.Ctx) error {
	var doc bson.D
	if err := decodeBody(c, &doc); err != nil {
		return h.fail(c, err, "insert document")
	}

	res, err := h.AdminUC.InsertDocument(c.UserContext(), c.Params("collection"), doc)
	if err != nil {
		return h.fail(c, err, "insert document")
	}
	return c.Status(fiber.StatusCreated).JSON(res)
}

// UpdateDocument patches exactly one document by id. The whole body is the
// patch, so fields named bulk or filter are ordinary data here. Zero matches
// is a 404.
func (h *HTTPHandler) UpdateDocument(c *fiber.Ctx) error {
	var patch bson.D
	if err := decodeBody(c, &patch); err != nil {
		return h.fail(c, err, "update document")
	}

	res, err := h.AdminUC.UpdateDocument(c.UserContext(), c.Params("collection"), c.Params("id"), patch)
	if err != nil {
		return h.fail(c, err, "update document")
	}
	if res.MatchedCount == 0 {
		return writeError(c, errors.NewNotFoundError("document"))
	}
	return c.JSON(res)
}

// UpdateDocuments is the collection-level PUT. It only updates by filter when
// the body explicitly sets bulk:true; a missing id is never widened to a
// filter.
func (h *HTTPHandler) UpdateDocuments(c *fiber.Ctx) error {
	var body bson.D
	if err := decodeBody(c, &body); err != nil {
		return h.fail(c, err, "bulk update")
	}
	bulk, filter, patch, err := splitBulk(body)
	if err != nil {
		return h.fail(c, err, "bulk update")
	}
	if !bulk {
		return h.fail(c, errors.NewValidationError("document id is required unless bulk is true").WithDetail("field", "id"), "bulk update")
	}
	if filter == nil {
		return h.fail(c, errors.NewValidationError("bulk update requires a filter").WithDetail("field", "filter"), "bulk update")
	}

	res, err := h.AdminUC.BulkUpdate(c.UserContext(), c.Params("collection"), filter, patch)
	if err != nil {
		return h.fail(c, err, "bulk update")
	}
	return c.JSON(res)
}

// DeleteDocument removes exactly one document by id. Zero deletions is a 404.
func (h *HTTPHandler) DeleteDocument(c *fiber.Ctx) error {
	res, err := h.AdminUC.DeleteDocument(c.UserContext(), c.Params("collection"), c.Params("id"))
	if err != nil {
		return h.fail(c, err, "delete document")
	}
	if res.DeletedCount == 0 {
		return writeError(c, errors.NewNotFoundError("document"))
	}
	return c.JSON(res)
}

// DeleteDocuments deletes by filter, only with bulk=true and a filter that
// parses. Unlike the read path a malformed filter is rejected rather than
// treated as match-all.
func (h *HTTPHandler) DeleteDocuments(c *fiber.Ctx) error {
	if !c.QueryBool("bulk", false) {
		return h.fail(c, errors.NewValidationError("document id is required unless bulk is true").WithDetail("field", "id"), "bulk delete")
	}
	raw := strings.TrimSpace(c.Query("filter"))
	if raw == "" {
		return h.fail(c, errors.NewValidationError("bulk delete requires a filter").WithDetail("field", "filter"), "bulk delete")
	}
	filter, ok := service.ParseStructured(raw)
	if !ok {
		return h.fail(c, errors.NewValidationError("filter is not a valid JSON object").WithDetail("field", "filter"), "bulk delete")
	}

	res, err := h.AdminUC.BulkDelete(c.UserContext(), c.Params("collection"), filter)
	if err != nil {
		return h.fail(c, err, "bulk delete")
	}
	return c.JSON(res)
}

func (h *HTTPHandler) ImportDocuments(c *fiber.Ctx) error {
	var req usecase.ImportRequest
	if err := decodeBody(c, &req); err != nil {
		return h.fail(c, err, "import documents")
	}

	res, err := h.AdminUC.ImportDocuments(c.UserContext(), c.Params("collection"), req.Data)
	if err != nil {
		return h.fail(c, err, "import documents")
	}
	return c.Status(fiber.StatusCreated).JSON(res)
}

func (h *HTTPHandler) Aggregate(c *fiber.Ctx) error {
	var req usecase.AggregateRequest
	if err := decodeBody(c, &req); err != nil {
		return h.fail(c, err, "aggregate")
	}

	results, err := h.AdminUC.Aggregate(c.UserContext(), c.Params("collection"), req.Pipeline)
	if err != nil {
		return h.fail(c, err, "aggregate")
	}
	return c.JSON(fiber.Map{"data": results, "count": len(results)})
}
