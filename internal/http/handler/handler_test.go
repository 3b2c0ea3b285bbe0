package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"docgate/internal/http/middleware"
	repoMocks "docgate/internal/repository/mocks"
	"docgate/internal/schema"
	"docgate/internal/service"
	serviceMocks "docgate/internal/service/mocks"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newApp() *fiber.App {
	return fiber.New(fiber.Config{ErrorHandler: ErrorHandler(), JSONDecoder: DecodeJSON})
}

func decodeError(t *testing.T, resp *http.Response) errorPayload {
	t.Helper()
	var body errorPayload
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestHealthCheck(t *testing.T) {
	engine := new(repoMocks.MockDocumentRepository)
	app := fiber.New()
	app.Get("/health", HealthCheck(engine))

	t.Run("healthy", func(t *testing.T) {
		engine.On("Ping", mock.Anything).Return(nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]string
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "healthy", body["status"])
	})

	t.Run("unhealthy", func(t *testing.T) {
		engine.On("Ping", mock.Anything).Return(errors.New("db error")).Once()

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		assert.Equal(t, "SERVICE_UNAVAILABLE", decodeError(t, resp).Error.Code)
	})

	engine.AssertExpectations(t)
}

func TestLivenessProbe(t *testing.T) {
	app := fiber.New()
	app.Get("/healthz", LivenessProbe())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestWriteServiceError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"validation", &schema.ValidationError{Schema: "p.yaml", Fields: []schema.FieldError{{Field: "age", Reason: "exceeds maximum 120"}}}, 400, "VALIDATION_FAILED"},
		{"schema format", &schema.ParseError{Name: "p.yaml", Err: errors.New("bad")}, 400, "INVALID_SCHEMA_FORMAT"},
		{"invalid name", fmt.Errorf("%w: %q", schema.ErrInvalidName, ".."), 400, "INVALID_NAME"},
		{"id required", service.ErrIDRequired, 400, "ID_REQUIRED"},
		{"invalid id", fmt.Errorf("%w: not hex", service.ErrInvalidID), 400, "INVALID_ID"},
		{"pagination", service.ErrInvalidPagination, 400, "INVALID_PAGINATION"},
		{"empty document", service.ErrEmptyDocument, 400, "EMPTY_DOCUMENT"},
		{"no files", service.ErrNoSchemaFiles, 400, "FILES_REQUIRED"},
		{"document not found", service.ErrNotFound, 404, "NOT_FOUND"},
		{"not modified", service.ErrNotModified, 404, "NOT_MODIFIED"},
		{"no schemas", service.ErrNoSchemas, 404, "SCHEMAS_NOT_FOUND"},
		{"schema not found", fmt.Errorf("delete: %w", schema.ErrNotFound), 404, "SCHEMA_NOT_FOUND"},
		{"conflict", fmt.Errorf("create: %w", service.ErrAlreadyExists), 409, "ALREADY_EXISTS"},
		{"storage", &schema.StorageError{Op: "list", Key: "a/b", Err: errors.New("reset")}, 500, "INTERNAL_ERROR"},
		{"unclassified", errors.New("boom"), 500, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newApp()
			app.Use(middleware.RequestID())
			app.Get("/x", func(c *fiber.Ctx) error { return writeServiceError(c, tt.err) })

			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			req.Header.Set(middleware.RequestIDHeader, "rid-42")
			resp, err := app.Test(req)
			require.NoError(t, err)

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			body := decodeError(t, resp)
			assert.Equal(t, tt.wantCode, body.Error.Code)
			assert.Equal(t, "rid-42", body.RequestID)
		})
	}
}

func TestWriteServiceError_ValidationDetails(t *testing.T) {
	app := newApp()
	app.Get("/x", func(c *fiber.Ctx) error {
		return writeServiceError(c, &schema.ValidationError{
			Schema: "person.yaml",
			Fields: []schema.FieldError{{Field: "age", Reason: "exceeds maximum 120"}},
		})
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/x", nil))
	require.NoError(t, err)

	var body struct {
		Error struct {
			Code    string              `json:"code"`
			Details []schema.FieldError `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, []schema.FieldError{{Field: "age", Reason: "exceeds maximum 120"}}, body.Error.Details)
}

func TestWriteServiceError_LogsInternal(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	app := newApp()
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(zap.New(core)))
	app.Get("/x", func(c *fiber.Ctx) error { return writeServiceError(c, errors.New("secret dsn")) })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/x", nil))
	require.NoError(t, err)

	raw, _ := io.ReadAll(resp.Body)
	assert.NotContains(t, string(raw), "secret dsn")
	entries := logs.FilterMessage("request failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "secret dsn", entries[0].ContextMap()["error"])
}

func TestRouting(t *testing.T) {
	app := newApp()

	docs := new(serviceMocks.MockDocumentService)
	dbs := new(serviceMocks.MockDatabaseService)
	schemas := new(serviceMocks.MockSchemaService)
	RegisterRoutes(app, Deps{
		Engine:    new(repoMocks.MockDocumentRepository),
		Databases: dbs,
		Documents: docs,
		Schemas:   schemas,
		Gatherer:  prometheus.NewRegistry(),
	})

	t.Run("not found route", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/non-existent", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "NOT_FOUND", decodeError(t, resp).Error.Code)
	})

	t.Run("method not allowed", func(t *testing.T) {
		// Health endpoint only allows GET
		req := httptest.NewRequest(http.MethodPost, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
		assert.Equal(t, "METHOD_NOT_ALLOWED", decodeError(t, resp).Error.Code)
	})

	t.Run("metrics", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("item routes do not shadow each other", func(t *testing.T) {
		docs.On("List", mock.Anything, "shop", "people", mock.Anything).Return(nil, nil).Once()
		docs.On("Get", mock.Anything, "shop", "people", "abc").Return(nil, service.ErrNotFound).Once()
		schemas.On("Delete", mock.Anything, "shop", "people", "p.yaml").Return(nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodPost, "/shop/get_items/people/", nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		resp, _ = app.Test(httptest.NewRequest(http.MethodGet, "/shop/get_item/people/abc/", nil))
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)

		resp, _ = app.Test(httptest.NewRequest(http.MethodDelete, "/delete_schema/shop/people/p.yaml/", nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		docs.AssertExpectations(t)
		schemas.AssertExpectations(t)
	})

	t.Run("create collection reads the query", func(t *testing.T) {
		dbs.On("CreateCollection", mock.Anything, "shop", "people").Return(nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodPost, "/shop/create_collection/?collection_name=people", strings.NewReader("")))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		dbs.AssertExpectations(t)
	})
}
