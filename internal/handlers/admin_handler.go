package handlers

import (
	"github.com/arzan03/ConsultCMS/internal/apperr"
	"github.com/arzan03/ConsultCMS/internal/resource"
	"github.com/arzan03/ConsultCMS/internal/services"
	"github.com/arzan03/ConsultCMS/internal/storage"
	"github.com/gofiber/fiber/v2"
)

// AdminHandler serves the dashboard overview and upload housekeeping. Routes are admin-only.
type AdminHandler struct {
	resources *resource.Service
	uploads   *services.UploadService
}

func NewAdminHandler(resources *resource.Service, uploads *services.UploadService) *AdminHandler {
	return &AdminHandler{resources: resources, uploads: uploads}
}

// Stats returns the record count of every resource.
func (h *AdminHandler) Stats(c *fiber.Ctx) error {
	counts, err := h.resources.Count(c.UserContext())
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Stats retrieved successfully", counts)
}

// DeleteUpload removes a stored file that is no longer referenced. Unknown names are a 404.
func (h *AdminHandler) DeleteUpload(c *fiber.Ctx) error {
	name := c.Params("name")
	if !storage.ValidName(name) {
		return apperr.Validation("invalid file name")
	}
	if err := h.uploads.Remove(c.UserContext(), name); err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "File deleted successfully", nil)
}
