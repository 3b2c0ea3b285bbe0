package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// responseStatus reports the status a request will end with. Middleware runs
// before the app's ErrorHandler, so a returned error decides it.
func responseStatus(c *fiber.Ctx, err error) int {
	if err == nil {
		return c.Response().StatusCode()
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return fiber.StatusInternalServerError
}
