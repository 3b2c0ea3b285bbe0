package handler

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"docgate/internal/service"
)

// createDatabaseRequest mirrors the credentials body of the original API.
// Only db_name is used; the engine connection is configured server side.
type createDatabaseRequest struct {
	DBName   string `json:"db_name"`
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
	Host     string `json:"host,omitempty"`
	Port     int    `json:"port,omitempty"`
}

// CreateDatabase godoc
// @Summary Create a database
// @Tags databases
// @Accept json
// @Produce json
// @Param body body createDatabaseRequest true "database"
// @Success 200 {object} map[string]string
// @Failure 400 {object} errorPayload
// @Router /create_database/ [post]
func CreateDatabase(svc service.DatabaseService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req createDatabaseRequest
		if err := decodeJSON(c, &req); err != nil || req.DBName == "" {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "db_name is required")
		}
		if err := svc.CreateDatabase(c.UserContext(), req.DBName); err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{
			"message": fmt.Sprintf("Database '%s' created and connected successfully.", req.DBName),
		})
	}
}

// ListDatabases godoc
// @Summary List databases
// @Tags databases
// @Produce json
// @Success 200 {object} map[string][]string
// @Router /list_databases/ [get]
func ListDatabases(svc service.DatabaseService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		names, err := svc.ListDatabases(c.UserContext())
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"databases": nonNil(names)})
	}
}

// DeleteDatabase godoc
// @Summary Drop a database
// @Tags databases
// @Produce json
// @Param db_name path string true "database"
// @Success 200 {object} map[string]string
// @Router /delete_database/{db_name}/ [delete]
func DeleteDatabase(svc service.DatabaseService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		db := c.Params("db_name")
		if err := svc.DropDatabase(c.UserContext(), db); err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"message": fmt.Sprintf("Database '%s' deleted successfully.", db)})
	}
}

// CreateCollection godoc
// @Summary Create a collection
// @Tags collections
// @Produce json
// @Param db_name path string true "database"
// @Param collection_name query string true "collection"
// @Success 200 {object} map[string]string
// @Failure 409 {object} errorPayload
// @Router /{db_name}/create_collection/ [post]
func CreateCollection(svc service.DatabaseService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		db := c.Params("db_name")
		coll := c.Query("collection_name")
		if coll == "" {
			return writeError(c, fiber.StatusBadRequest, "COLLECTION_REQUIRED", "collection_name is required")
		}
		if err := svc.CreateCollection(c.UserContext(), db, coll); err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{
			"message": fmt.Sprintf("Collection '%s' created successfully in database '%s'.", coll, db),
		})
	}
}

// ListCollections godoc
// @Summary List collections of a database
// @Tags collections
// @Produce json
// @Param db_name path string true "database"
// @Success 200 {object} map[string][]string
// @Router /{db_name}/list_collections/ [get]
func ListCollections(svc service.DatabaseService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		names, err := svc.ListCollections(c.UserContext(), c.Params("db_name"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"collections": nonNil(names)})
	}
}

// DeleteCollection godoc
// @Summary Drop a collection
// @Tags collections
// @Produce json
// @Param db_name path string true "database"
// @Param collection_name path string true "collection"
// @Success 200 {object} map[string]string
// @Router /{db_name}/delete_collection/{collection_name}/ [delete]
func DeleteCollection(svc service.DatabaseService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		db, coll := c.Params("db_name"), c.Params("collection_name")
		if err := svc.DropCollection(c.UserContext(), db, coll); err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{
			"message": fmt.Sprintf("Collection '%s' deleted successfully from database '%s'.", coll, db),
		})
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
