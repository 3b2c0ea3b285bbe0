package handler

import (
	"bytes"
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"docgate/internal/model"
	"docgate/internal/service"
)

var errEmptyBody = errors.New("empty body")

// decodeJSON decodes the request body with the app's configured JSON decoder.
func decodeJSON(c *fiber.Ctx, v any) error {
	body := c.Body()
	if len(bytes.TrimSpace(body)) == 0 {
		return errEmptyBody
	}
	return c.App().Config().JSONDecoder(body, v)
}

// decodeFilter reads an optional JSON object body. An empty body or null means no filter.
func decodeFilter(c *fiber.Ctx) (model.Filter, error) {
	var f model.Filter
	if err := decodeJSON(c, &f); err != nil {
		if errors.Is(err, errEmptyBody) {
			return nil, nil
		}
		return nil, err
	}
	return f, nil
}

// AddItem godoc
// @Summary Add a document
// @Description Inserts a JSON document. When validation is enabled the collection schema is applied first and defaults are filled in.
// @Tags documents
// @Accept json
// @Produce json
// @Param db_name path string true "database"
// @Param collection_name path string true "collection"
// @Success 200 {object} map[string]string
// @Failure 400 {object} errorPayload
// @Router /{db_name}/{collection_name}/add_item/ [post]
func AddItem(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var doc model.Document
		if err := decodeJSON(c, &doc); err != nil || doc == nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "body must be a JSON object")
		}
		id, err := svc.Add(c.UserContext(), c.Params("db_name"), c.Params("collection_name"), doc)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"message": "Item added successfully.", "id": id})
	}
}

// GetItems godoc
// @Summary List documents
// @Description Returns every document matching the optional JSON filter body.
// @Tags documents
// @Accept json
// @Produce json
// @Param db_name path string true "database"
// @Param collection_name path string true "collection"
// @Success 200 {array} map[string]interface{}
// @Router /{db_name}/get_items/{collection_name}/ [post]
func GetItems(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		filter, err := decodeFilter(c)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_FILTER", "filter must be a JSON object")
		}
		docs, err := svc.List(c.UserContext(), c.Params("db_name"), c.Params("collection_name"), filter)
		if err != nil {
			return writeServiceError(c, err)
		}
		if docs == nil {
			docs = []model.Document{}
		}
		return c.JSON(docs)
	}
}

// GetItem godoc
// @Summary Get a document by id
// @Tags documents
// @Produce json
// @Param db_name path string true "database"
// @Param collection_name path string true "collection"
// @Param item_id path string true "document id"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} errorPayload
// @Router /{db_name}/get_item/{collection_name}/{item_id}/ [get]
func GetItem(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		doc, err := svc.Get(c.UserContext(), c.Params("db_name"), c.Params("collection_name"), c.Params("item_id"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(doc)
	}
}

// UpdateItem godoc
// @Summary Update fields of a document
// @Tags documents
// @Accept json
// @Produce json
// @Param db_name path string true "database"
// @Param collection_name path string true "collection"
// @Param item_id path string true "document id"
// @Success 200 {object} map[string]string
// @Failure 404 {object} errorPayload
// @Router /{db_name}/update_item/{collection_name}/{item_id}/ [put]
func UpdateItem(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var fields model.Document
		if err := decodeJSON(c, &fields); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "body must be a JSON object")
		}
		err := svc.Update(c.UserContext(), c.Params("db_name"), c.Params("collection_name"), c.Params("item_id"), fields)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"message": "Item updated successfully."})
	}
}

// DeleteItem godoc
// @Summary Delete a document
// @Tags documents
// @Produce json
// @Param db_name path string true "database"
// @Param collection_name path string true "collection"
// @Param item_id path string true "document id"
// @Success 200 {object} map[string]string
// @Failure 404 {object} errorPayload
// @Router /{db_name}/delete_item/{collection_name}/{item_id}/ [delete]
func DeleteItem(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.Delete(c.UserContext(), c.Params("db_name"), c.Params("collection_name"), c.Params("item_id")); err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"message": "Item deleted successfully."})
	}
}

// SearchItems godoc
// @Summary Search documents with pagination
// @Tags documents
// @Accept json
// @Produce json
// @Param db_name path string true "database"
// @Param collection_name path string true "collection"
// @Param skip query int false "documents to skip" default(0)
// @Param size query int false "page size" default(10)
// @Success 200 {object} model.SearchResult
// @Failure 400 {object} errorPayload
// @Router /{db_name}/{collection_name}/search [post]
func SearchItems(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		skip, err := strconv.Atoi(c.Query("skip", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_SKIP", "invalid skip")
		}
		size, err := strconv.Atoi(c.Query("size", "10"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_SIZE", "invalid size")
		}
		filter, err := decodeFilter(c)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_FILTER", "filter must be a JSON object")
		}

		res, err := svc.Search(c.UserContext(), c.Params("db_name"), c.Params("collection_name"), filter, skip, size)
		if err != nil {
			return writeServiceError(c, err)
		}
		if res.Results == nil {
			res.Results = []model.Document{}
		}
		return c.JSON(res)
	}
}
