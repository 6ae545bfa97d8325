package handlers

import (
	"github.com/arzan03/ConsultCMS/internal/apperr"
	"github.com/arzan03/ConsultCMS/internal/middleware"
	"github.com/arzan03/ConsultCMS/internal/services"
	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	auth *services.AuthService
}

func NewAuthHandler(auth *services.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Login accepts email and password as JSON or form fields.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var request struct {
		Email    string `json:"email" form:"email"`
		Password string `json:"password" form:"password"`
	}

	if err := c.BodyParser(&request); err != nil {
		return apperr.Validation("Invalid request body")
	}

	result, err := h.auth.Login(c.UserContext(), request.Email, request.Password)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Login successful", result)
}

// Session returns the verified session of the caller.
func (h *AuthHandler) Session(c *fiber.Ctx) error {
	session, ok := middleware.SessionFrom(c)
	if !ok {
		return apperr.Unauthorized("Authorization required")
	}
	return respond(c, fiber.StatusOK, "Session is valid", session)
}

// Logout revokes the caller's token.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	session, ok := middleware.SessionFrom(c)
	if !ok {
		return apperr.Unauthorized("Authorization required")
	}
	if err := h.auth.Logout(c.UserContext(), session); err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Logged out successfully", nil)
}
