package handlers

import (
	"context"
	"fmt"
	"mime"
	"strconv"
	"strings"

	"github.com/arzan03/ConsultCMS/internal/apperr"
	"github.com/arzan03/ConsultCMS/internal/middleware"
	"github.com/arzan03/ConsultCMS/internal/resource"
	"github.com/arzan03/ConsultCMS/internal/services"
	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
)

// reserved query parameters that are never treated as filters
var listParams = map[string]bool{"id": true, "page": true, "limit": true, "search": true}

// ResourceHandler serves GET, POST, PUT and DELETE on /api/:resource for every schema.
type ResourceHandler struct {
	resources *resource.Service
	uploads   *services.UploadService
}

func NewResourceHandler(resources *resource.Service, uploads *services.UploadService) *ResourceHandler {
	return &ResourceHandler{resources: resources, uploads: uploads}
}

func (h *ResourceHandler) Handle(c *fiber.Ctx) error {
	name := c.Params("resource")
	schema, ok := h.resources.Registry().Get(name)
	if !ok {
		return &apperr.Error{Kind: apperr.KindNotFound, Message: fmt.Sprintf("Resource %q not found", name)}
	}

	switch c.Method() {
	case fiber.MethodGet, fiber.MethodPost, fiber.MethodPut, fiber.MethodDelete:
	default:
		return apperr.MethodNotAllowed(c.Method())
	}

	if err := authorize(c, schema); err != nil {
		return err
	}

	switch c.Method() {
	case fiber.MethodGet:
		return h.read(c, schema)
	case fiber.MethodPost:
		return h.create(c, schema)
	case fiber.MethodPut:
		return h.update(c, schema)
	default:
		return h.delete(c, schema)
	}
}

// authorize applies the access rules of a schema to the current method.
func authorize(c *fiber.Ctx, schema *resource.Schema) error {
	session, signedIn := middleware.SessionFrom(c)

	public := (c.Method() == fiber.MethodGet && schema.PublicRead) ||
		(c.Method() == fiber.MethodPost && schema.PublicCreate)
	if public && !schema.AdminOnly {
		return nil
	}
	if !signedIn {
		return apperr.Unauthorized("Authorization required")
	}
	if schema.AdminOnly && !session.IsAdmin() {
		return apperr.Forbidden("Access denied. Admins only.")
	}
	return nil
}

func (h *ResourceHandler) read(c *fiber.Ctx, schema *resource.Schema) error {
	ctx := c.UserContext()

	if id := c.Query("id"); id != "" {
		doc, err := h.resources.Get(ctx, schema, id)
		if err != nil {
			return err
		}
		return respond(c, fiber.StatusOK, schema.Label+" retrieved successfully", doc)
	}

	params, err := listParamsFrom(c)
	if err != nil {
		return err
	}
	_, signedIn := middleware.SessionFrom(c)
	params.Anonymous = !signedIn

	result, err := h.resources.List(ctx, schema, params)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(Envelope{
		Success:    true,
		Message:    schema.Label + " list retrieved successfully",
		Data:       result.Items,
		Pagination: result.Pagination,
	})
}

func (h *ResourceHandler) create(c *fiber.Ctx, schema *resource.Schema) error {
	ctx := c.UserContext()
	input, uploaded, err := h.parseInput(ctx, c, schema)
	if err != nil {
		return err
	}

	doc, err := h.resources.Create(ctx, schema, input)
	if err != nil {
		h.discard(ctx, uploaded)
		return err
	}
	return respond(c, fiber.StatusCreated, schema.Label+" created successfully", doc)
}

func (h *ResourceHandler) update(c *fiber.Ctx, schema *resource.Schema) error {
	ctx := c.UserContext()
	input, uploaded, err := h.parseInput(ctx, c, schema)
	if err != nil {
		return err
	}

	id := requestID(c, input)
	if id == "" {
		h.discard(ctx, uploaded)
		return apperr.Validation("id is required")
	}

	doc, err := h.resources.Update(ctx, schema, id, input)
	if err != nil {
		h.discard(ctx, uploaded)
		return err
	}
	return respond(c, fiber.StatusOK, schema.Label+" updated successfully", doc)
}

func (h *ResourceHandler) delete(c *fiber.Ctx, schema *resource.Schema) error {
	ctx := c.UserContext()
	id := c.Query("id")
	if id == "" && len(c.Body()) > 0 {
		input, _, err := h.parseInput(ctx, c, nil)
		if err != nil {
			return err
		}
		id = requestID(c, input)
	}
	if id == "" {
		return apperr.Validation("id is required")
	}

	if err := h.resources.Delete(ctx, schema, id); err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, schema.Label+" deleted successfully", nil)
}

func (h *ResourceHandler) discard(ctx context.Context, names []string) {
	for _, name := range names {
		h.uploads.Discard(ctx, name)
	}
}

// requestID reads the record identifier from the query string or the body.
func requestID(c *fiber.Ctx, input map[string]any) string {
	if id := c.Query("id"); id != "" {
		return id
	}
	for _, key := range []string{"id", "_id"} {
		if id, ok := input[key].(string); ok && strings.TrimSpace(id) != "" {
			return strings.TrimSpace(id)
		}
	}
	return ""
}

func listParamsFrom(c *fiber.Ctx) (resource.ListParams, error) {
	params := resource.ListParams{
		Filters: map[string]string{},
		Search:  strings.TrimSpace(c.Query("search")),
	}

	var err error
	if params.Page, err = positiveInt(c.Query("page"), "page"); err != nil {
		return params, err
	}
	if params.Limit, err = positiveInt(c.Query("limit"), "limit"); err != nil {
		return params, err
	}

	c.Context().QueryArgs().VisitAll(func(key, value []byte) {
		if k := string(key); !listParams[k] {
			params.Filters[k] = string(value)
		}
	})
	return params, nil
}

func positiveInt(raw, name string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, apperr.Validation("%s must be a positive integer", name)
	}
	return n, nil
}

// parseInput reads a JSON, urlencoded or multipart body. File parts matching a file field of
// schema are uploaded and replaced by their URL; the stored names are returned for cleanup.
func (h *ResourceHandler) parseInput(ctx context.Context, c *fiber.Ctx, schema *resource.Schema) (map[string]any, []string, error) {
	input := map[string]any{}
	body := c.Body()
	mediaType, _, _ := mime.ParseMediaType(string(c.Request().Header.ContentType()))

	switch {
	case mediaType == fiber.MIMEMultipartForm:
		form, err := c.MultipartForm()
		if err != nil {
			return nil, nil, apperr.Validation("Invalid multipart body")
		}
		for key, values := range form.Value {
			input[key] = formValue(values)
		}
		if schema == nil {
			return input, nil, nil
		}

		var uploaded []string
		for key, headers := range form.File {
			field, ok := schema.Field(key)
			if !ok || field.Kind != resource.File || len(headers) == 0 {
				continue
			}
			file, err := h.uploads.UploadFile(ctx, headers[0])
			if err != nil {
				h.discard(ctx, uploaded)
				return nil, nil, err
			}
			uploaded = append(uploaded, file.Name)
			input[key] = file.URL
		}
		return input, uploaded, nil

	case mediaType == fiber.MIMEApplicationForm:
		values := map[string][]string{}
		c.Request().PostArgs().VisitAll(func(key, value []byte) {
			values[string(key)] = append(values[string(key)], string(value))
		})
		for key, v := range values {
			input[key] = formValue(v)
		}
		return input, nil, nil

	case len(body) == 0:
		return input, nil, nil

	default:
		if err := json.Unmarshal(body, &input); err != nil {
			return nil, nil, apperr.Validation("Invalid request body")
		}
		return input, nil, nil
	}
}

func formValue(values []string) any {
	if len(values) == 1 {
		return values[0]
	}
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
