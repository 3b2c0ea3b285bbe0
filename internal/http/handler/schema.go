package handler

import (
	"fmt"
	"io"

	"github.com/gofiber/fiber/v2"

	"docgate/internal/service"
)

// maxSchemaFileSize bounds a single uploaded schema file.
const maxSchemaFileSize = 1 << 20

// UploadSchema godoc
// @Summary Upload YAML schemas for a collection
// @Description Multipart upload, field name: files. Every file is checked before any is stored.
// @Tags schemas
// @Accept mpfd
// @Produce json
// @Param db_name path string true "database"
// @Param collection_name path string true "collection"
// @Param files formData file true "schema files"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} errorPayload
// @Router /upload_schema/{db_name}/{collection_name}/ [post]
func UploadSchema(svc service.SchemaService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		form, err := c.MultipartForm()
		if err != nil || len(form.File["files"]) == 0 {
			return writeError(c, fiber.StatusBadRequest, "FILES_REQUIRED", "at least one file is required in field files")
		}

		files := make([]service.SchemaFile, 0, len(form.File["files"]))
		for _, fh := range form.File["files"] {
			if fh.Size > maxSchemaFileSize {
				return writeError(c, fiber.StatusRequestEntityTooLarge, "FILE_TOO_LARGE",
					fmt.Sprintf("schema file %q exceeds %d bytes", fh.Filename, maxSchemaFileSize))
			}
			f, err := fh.Open()
			if err != nil {
				return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
			}
			content, err := io.ReadAll(io.LimitReader(f, maxSchemaFileSize))
			f.Close()
			if err != nil {
				return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot read uploaded file")
			}
			files = append(files, service.SchemaFile{Name: fh.Filename, Content: content})
		}

		db, coll := c.Params("db_name"), c.Params("collection_name")
		names, err := svc.Upload(c.UserContext(), db, coll, files)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{
			"message": fmt.Sprintf("Schemas for collection '%s' in database '%s' uploaded successfully.", coll, db),
			"schemas": names,
		})
	}
}

// GetSchemas godoc
// @Summary Show the schemas of a collection
// @Tags schemas
// @Produce json
// @Param db_name path string true "database"
// @Param collection_name path string true "collection"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} errorPayload
// @Router /get_schemas/{db_name}/{collection_name}/ [get]
func GetSchemas(svc service.SchemaService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		schemas, err := svc.Get(c.UserContext(), c.Params("db_name"), c.Params("collection_name"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"schemas": schemas})
	}
}

// DeleteSchema godoc
// @Summary Delete one schema file
// @Tags schemas
// @Produce json
// @Param db_name path string true "database"
// @Param collection_name path string true "collection"
// @Param schema_name path string true "schema file name"
// @Success 200 {object} map[string]string
// @Failure 404 {object} errorPayload
// @Router /delete_schema/{db_name}/{collection_name}/{schema_name}/ [delete]
func DeleteSchema(svc service.SchemaService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		name := c.Params("schema_name")
		if err := svc.Delete(c.UserContext(), c.Params("db_name"), c.Params("collection_name"), name); err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"message": fmt.Sprintf("Schema '%s' deleted successfully.", name)})
	}
}
