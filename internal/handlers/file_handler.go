package handlers

import (
	"github.com/arzan03/ConsultCMS/internal/apperr"
	"github.com/arzan03/ConsultCMS/internal/services"
	"github.com/gofiber/fiber/v2"
)

type UploadHandler struct {
	uploads *services.UploadService
}

func NewUploadHandler(uploads *services.UploadService) *UploadHandler {
	return &UploadHandler{uploads: uploads}
}

// Upload stores the multipart part "file" and returns its public URL.
func (h *UploadHandler) Upload(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return apperr.Validation("file is required")
	}

	file, err := h.uploads.UploadFile(c.UserContext(), fileHeader)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusCreated, "File uploaded successfully", file)
}
