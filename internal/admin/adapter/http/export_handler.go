package http

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"mongo-admin/internal/admin/domain/model"
	"mongo-admin/internal/shared/errors"

	"github.com/gofiber/fiber/v2"
	fiberutils "github.com/gofiber/fiber/v2/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Export downloads every document matching the page filter and sort, as a
// JSON array (default) or CSV.
func (h *HTTPHandler) Export(c *fiber.Ctx) error {
	ctx := c.UserContext()
	// The JSON stream writer runs after the handler returns and fiber recycles
	// its request buffers.
	collection := fiberutils.CopyString(c.Params("collection"))
	params := copyParams(queryParams(c))
	format := c.Query("format", "json")

	pn, err := h.AdminUC.Resolve(ctx, collection)
	if err != nil {
		return h.fail(c, err, "export")
	}

	switch format {
	case "csv":
		// The header is the union of all keys, so rows are collected first.
		var docs []bson.D
		err := h.AdminUC.Export(ctx, collection, params, func(doc bson.D) error {
			docs = append(docs, doc)
			return nil
		})
		if err != nil {
			return h.fail(c, err, "export")
		}
		var buf bytes.Buffer
		if err := writeCSV(&buf, docs); err != nil {
			return h.fail(c, errors.NewInternalError("failed to encode csv").WithCause(err), "export")
		}
		c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s.csv"`, pn.Logical()))
		return c.Send(buf.Bytes())

	case "json":
		log := h.Log.WithContext(ctx)
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s.json"`, pn.Logical()))
		c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
			n := 0
			w.WriteString("[")
			err := h.AdminUC.Export(ctx, collection, params, func(doc bson.D) error {
				b, err := bson.MarshalExtJSON(doc, false, false)
				if err != nil {
					return err
				}
				if n > 0 {
					w.WriteString(",")
				}
				n++
				_, err = w.Write(b)
				return err
			})
			w.WriteString("]")
			if err != nil {
				log.Errorf("Export of %s aborted after %d documents: %v", pn, n, err)
			}
			if err := w.Flush(); err != nil {
				log.Warnf("Export of %s not fully delivered: %v", pn, err)
			}
		})
		return nil

	default:
		return h.fail(c, errors.NewValidationError("unsupported export format").WithDetail("format", format), "export")
	}
}

func copyParams(p model.QueryParams) model.QueryParams {
	p.Page = fiberutils.CopyString(p.Page)
	p.Limit = fiberutils.CopyString(p.Limit)
	p.SortBy = fiberutils.CopyString(p.SortBy)
	p.SortOrder = fiberutils.CopyString(p.SortOrder)
	p.Search = fiberutils.CopyString(p.Search)
	p.Sort = fiberutils.CopyString(p.Sort)
	p.Filter = fiberutils.CopyString(p.Filter)
	return p
}

// writeCSV writes one row per document. Columns are every key seen, in
// first-seen order; missing fields are empty cells.
func writeCSV(buf *bytes.Buffer, docs []bson.D) error {
	var header []string
	seen := map[string]int{}
	for _, doc := range docs {
		for _, e := range doc {
			if _, ok := seen[e.Key]; !ok {
				seen[e.Key] = len(header)
				header = append(header, e.Key)
			}
		}
	}

	w := csv.NewWriter(buf)
	if err := w.Write(header); err != nil {
		return err
	}
	row := make([]string, len(header))
	for _, doc := range docs {
		for i := range row {
			row[i] = ""
		}
		for _, e := range doc {
			row[seen[e.Key]] = cellValue(e.Value)
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func cellValue(v interface{}) string {
	switch t := v.(type) {
	case nil, primitive.Null, primitive.Undefined:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case int64:
		return strconv.FormatInt(t, 10)
	case int:
		return strconv.Itoa(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case primitive.ObjectID:
		return t.Hex()
	case primitive.DateTime:
		return t.Time().UTC().Format(time.RFC3339Nano)
	case primitive.Decimal128:
		return t.String()
	default:
		return relaxedJSON(v)
	}
}

// relaxedJSON renders a nested value as relaxed Extended JSON.
func relaxedJSON(v interface{}) string {
	b, err := bson.MarshalExtJSON(bson.D{{Key: "v", Value: v}}, false, false)
	if err != nil {
		return fmt.Sprint(v)
	}
	b = bytes.TrimPrefix(b, []byte(`{"v":`))
	b = bytes.TrimSuffix(b, []byte(`}`))
	return string(b)
}
