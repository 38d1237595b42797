package server

import (
	"ripple/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// parseUUIDParam reads a path parameter and parses it as a UUID. On failure
// it writes a validation error response and returns ok=false.
func parseUUIDParam(c *fiber.Ctx, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		appErr := models.NewValidationError("Invalid " + name)
		_ = models.RespondWithError(c, models.StatusFor(appErr), appErr)
		return uuid.Nil, false
	}
	return id, true
}

// currentUserID returns the authenticated user's id set by AuthRequired.
func currentUserID(c *fiber.Ctx) (uuid.UUID, bool) {
	id, ok := c.Locals("userID").(uuid.UUID)
	if !ok {
		appErr := models.NewUnauthenticatedError("Authorization required")
		_ = models.RespondWithError(c, models.StatusFor(appErr), appErr)
		return uuid.Nil, false
	}
	return id, true
}

// respondError maps an application error to its HTTP status and writes it.
func respondError(c *fiber.Ctx, err error) error {
	return models.RespondWithError(c, models.StatusFor(err), err)
}
