package http

import (
	"bytes"
	"net/http"

	"mongo-admin/internal/shared/errors"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson"
)

// writeError renders err as {"error", "code"} with the status its kind maps to.
// Infrastructure causes are never part of the body.
func writeError(c *fiber.Ctx, err error) error {
	status := errors.HTTPStatus(err)
	body := fiber.Map{
		"error": errors.PublicMessage(err),
		"code":  errors.PublicCode(err),
	}
	if appErr, ok := errors.AsAppError(err); ok && status < http.StatusInternalServerError && len(appErr.Details) > 0 {
		body["details"] = appErr.Details
	}
	return c.Status(status).JSON(body)
}

// fail logs server-side failures and renders err.
func (h *HTTPHandler) fail(c *fiber.Ctx, err error, action string) error {
	log := h.Log.WithContext(c.UserContext())
	if errors.HTTPStatus(err) >= http.StatusInternalServerError {
		log.Errorf("Failed to %s: %v", action, err)
	} else {
		log.Debugf("Rejected %s: %v", action, err)
	}
	return writeError(c, err)
}

// decodeBody parses the request body as relaxed Extended JSON so typed
// literals such as {"$oid": ...} and {"$date": ...} reach the store intact.
func decodeBody(c *fiber.Ctx, out interface{}) error {
	body := bytes.TrimSpace(c.Body())
	if len(body) == 0 {
		return errors.NewValidationError("request body is required")
	}
	if body[0] != '{' {
		return errors.NewValidationError("request body must be a JSON object")
	}
	if err := bson.UnmarshalExtJSON(body, false, out); err != nil {
		return errors.NewValidationError("invalid JSON body").WithCause(err)
	}
	return nil
}

// splitBulk pulls the bulk marker and filter out of an update body. The rest
// of the document is the patch.
func splitBulk(body bson.D) (bulk bool, filter bson.D, patch bson.D, err error) {
	patch = make(bson.D, 0, len(body))
	for _, e := range body {
		switch e.Key {
		case "bulk":
			b, ok := e.Value.(bool)
			if !ok {
				return false, nil, nil, errors.NewValidationError("bulk must be a boolean").WithDetail("field", "bulk")
			}
			bulk = b
		case "filter":
			d, ok := e.Value.(bson.D)
			if !ok {
				return false, nil, nil, errors.NewValidationError("filter must be an object").WithDetail("field", "filter")
			}
			filter = d
		default:
			patch = append(patch, e)
		}
	}
	return bulk, filter, patch, nil
}
