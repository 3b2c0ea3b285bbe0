package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"docgate/internal/http/middleware"
	"docgate/internal/schema"
	"docgate/internal/service"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// requestIDFromCtx extracts request_id previously stored by middleware.RequestID.
func requestIDFromCtx(c *fiber.Ctx) string {
	if v := c.Locals(middleware.RequestIDLocalKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// writeError writes a standardized JSON error response without leaking internal errors.
//
// Parameters:
// - status: HTTP status code to return
// - code: machine-readable short error code (e.g., "INVALID_ID", "NOT_FOUND", "INTERNAL_ERROR")
// - message: human-readable safe message (no internal details)
func writeError(c *fiber.Ctx, status int, code, message string) error {
	return writeErrorDetails(c, status, code, message, nil)
}

func writeErrorDetails(c *fiber.Ctx, status int, code, message string, details any) error {
	res := errorPayload{
		RequestID: requestIDFromCtx(c),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
	return c.Status(status).JSON(res)
}

// writeServiceError maps errors returned by the service layer onto HTTP responses.
// Unclassified errors are logged and reported as INTERNAL_ERROR.
func writeServiceError(c *fiber.Ctx, err error) error {
	var (
		ve *schema.ValidationError
		pe *schema.ParseError
	)
	switch {
	case errors.As(err, &ve):
		return writeErrorDetails(c, fiber.StatusBadRequest, "VALIDATION_FAILED",
			"document does not match schema "+ve.Schema, ve.Fields)
	case errors.As(err, &pe):
		return writeError(c, fiber.StatusBadRequest, "INVALID_SCHEMA_FORMAT", pe.Error())
	case errors.Is(err, schema.ErrInvalidName):
		return writeError(c, fiber.StatusBadRequest, "INVALID_NAME", err.Error())
	case errors.Is(err, service.ErrIDRequired):
		return writeError(c, fiber.StatusBadRequest, "ID_REQUIRED", "id is required")
	case errors.Is(err, service.ErrInvalidID):
		return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
	case errors.Is(err, service.ErrInvalidPagination):
		return writeError(c, fiber.StatusBadRequest, "INVALID_PAGINATION", err.Error())
	case errors.Is(err, service.ErrEmptyDocument):
		return writeError(c, fiber.StatusBadRequest, "EMPTY_DOCUMENT", "document is empty")
	case errors.Is(err, service.ErrNoSchemaFiles):
		return writeError(c, fiber.StatusBadRequest, "FILES_REQUIRED", err.Error())
	case errors.Is(err, service.ErrNotFound):
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "document not found")
	case errors.Is(err, service.ErrNotModified):
		return writeError(c, fiber.StatusNotFound, "NOT_MODIFIED", "no document updated")
	case errors.Is(err, service.ErrNoSchemas):
		return writeError(c, fiber.StatusNotFound, "SCHEMAS_NOT_FOUND", err.Error())
	case errors.Is(err, schema.ErrNotFound):
		return writeError(c, fiber.StatusNotFound, "SCHEMA_NOT_FOUND", "schema not found")
	case errors.Is(err, service.ErrAlreadyExists):
		return writeError(c, fiber.StatusConflict, "ALREADY_EXISTS", "resource already exists")
	}

	middleware.LoggerFrom(c).Error("request failed",
		zap.String("route", c.Route().Path),
		zap.Error(err),
	)
	return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		if e, ok := err.(*fiber.Error); ok {
			status = e.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		case fiber.StatusRequestEntityTooLarge:
			return writeError(c, status, "PAYLOAD_TOO_LARGE", "request body too large")
		default:
			middleware.LoggerFrom(c).Error("unhandled error", zap.Error(err))
			return writeError(c, status, "INTERNAL_ERROR", "internal server error")
		}
	}
}
