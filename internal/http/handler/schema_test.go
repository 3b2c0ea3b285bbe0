package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"docgate/internal/schema"
	"docgate/internal/service"
	serviceMocks "docgate/internal/service/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func multipartRequest(t *testing.T, target, field string, files map[string]string) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for name, content := range files {
		part, err := writer.CreateFormFile(field, name)
		require.NoError(t, err)
		part.Write([]byte(content))
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, target, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestUploadSchema(t *testing.T) {
	mockSvc := new(serviceMocks.MockSchemaService)
	app := newApp()
	app.Post("/upload_schema/:db_name/:collection_name/", UploadSchema(mockSvc))

	t.Run("success", func(t *testing.T) {
		want := []service.SchemaFile{{Name: "person.yaml", Content: []byte("age:\n  type: int\n")}}
		mockSvc.On("Upload", mock.Anything, "shop", "people", want).Return([]string{"person.yaml"}, nil).Once()

		req := multipartRequest(t, "/upload_schema/shop/people/", "files", map[string]string{"person.yaml": "age:\n  type: int\n"})
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var body map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "Schemas for collection 'people' in database 'shop' uploaded successfully.", body["message"])
		assert.Equal(t, []any{"person.yaml"}, body["schemas"])
		mockSvc.AssertExpectations(t)
	})

	t.Run("wrong field name", func(t *testing.T) {
		req := multipartRequest(t, "/upload_schema/shop/people/", "file", map[string]string{"person.yaml": "a: {}"})
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "FILES_REQUIRED", decodeError(t, resp).Error.Code)
	})

	t.Run("not multipart", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodPost, "/upload_schema/shop/people/", nil))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("malformed schema", func(t *testing.T) {
		mockSvc.On("Upload", mock.Anything, "shop", "people", mock.Anything).
			Return(nil, &schema.ParseError{Name: "bad.yaml", Err: errors.New("yaml: line 1")}).Once()

		req := multipartRequest(t, "/upload_schema/shop/people/", "files", map[string]string{"bad.yaml": "age: ["})
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		body := decodeError(t, resp)
		assert.Equal(t, "INVALID_SCHEMA_FORMAT", body.Error.Code)
		assert.Contains(t, body.Error.Message, "bad.yaml")
		mockSvc.AssertExpectations(t)
	})
}

func TestGetSchemas(t *testing.T) {
	mockSvc := new(serviceMocks.MockSchemaService)
	app := newApp()
	app.Get("/get_schemas/:db_name/:collection_name/", GetSchemas(mockSvc))

	t.Run("success", func(t *testing.T) {
		mockSvc.On("Get", mock.Anything, "shop", "people").Return(map[string]map[string]any{
			"person.yaml": {"age": map[string]any{"type": "int", "le": 120}},
		}, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/get_schemas/shop/people/", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var body struct {
			Schemas map[string]map[string]map[string]any `json:"schemas"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "int", body.Schemas["person.yaml"]["age"]["type"])
	})

	t.Run("none", func(t *testing.T) {
		mockSvc.On("Get", mock.Anything, "shop", "empty").Return(nil, service.ErrNoSchemas).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/get_schemas/shop/empty/", nil))

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "SCHEMAS_NOT_FOUND", decodeError(t, resp).Error.Code)
	})

	mockSvc.AssertExpectations(t)
}

func TestDeleteSchema(t *testing.T) {
	mockSvc := new(serviceMocks.MockSchemaService)
	app := newApp()
	app.Delete("/delete_schema/:db_name/:collection_name/:schema_name/", DeleteSchema(mockSvc))

	mockSvc.On("Delete", mock.Anything, "shop", "people", "person.yaml").Return(nil).Once()
	mockSvc.On("Delete", mock.Anything, "shop", "people", "gone.yaml").Return(schema.ErrNotFound).Once()

	resp, _ := app.Test(httptest.NewRequest(http.MethodDelete, "/delete_schema/shop/people/person.yaml/", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = app.Test(httptest.NewRequest(http.MethodDelete, "/delete_schema/shop/people/gone.yaml/", nil))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "SCHEMA_NOT_FOUND", decodeError(t, resp).Error.Code)

	mockSvc.AssertExpectations(t)
}
