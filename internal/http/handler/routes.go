package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"docgate/docs"
	"docgate/internal/service"
)

// Deps are the collaborators the HTTP layer is built from.
type Deps struct {
	Engine    Pinger
	Databases service.DatabaseService
	Documents service.DocumentService
	Schemas   service.SchemaService
	// Gatherer backs /metrics; nil disables the endpoint.
	Gatherer prometheus.Gatherer
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Paths keep the layout of the original document API, trailing slashes included.
func RegisterRoutes(app *fiber.App, d Deps) {
	app.Get("/health", HealthCheck(d.Engine))
	app.Get("/healthz", LivenessProbe())

	if d.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	// Databases and collections
	app.Post("/create_database/", CreateDatabase(d.Databases))
	app.Get("/list_databases/", ListDatabases(d.Databases))
	app.Delete("/delete_database/:db_name/", DeleteDatabase(d.Databases))
	app.Post("/:db_name/create_collection/", CreateCollection(d.Databases))
	app.Get("/:db_name/list_collections/", ListCollections(d.Databases))
	app.Delete("/:db_name/delete_collection/:collection_name/", DeleteCollection(d.Databases))

	// Schemas
	app.Post("/upload_schema/:db_name/:collection_name/", UploadSchema(d.Schemas))
	app.Get("/get_schemas/:db_name/:collection_name/", GetSchemas(d.Schemas))
	app.Delete("/delete_schema/:db_name/:collection_name/:schema_name/", DeleteSchema(d.Schemas))

	// Documents
	app.Post("/:db_name/:collection_name/add_item/", AddItem(d.Documents))
	app.Post("/:db_name/get_items/:collection_name/", GetItems(d.Documents))
	app.Get("/:db_name/get_item/:collection_name/:item_id/", GetItem(d.Documents))
	app.Put("/:db_name/update_item/:collection_name/:item_id/", UpdateItem(d.Documents))
	app.Delete("/:db_name/delete_item/:collection_name/:item_id/", DeleteItem(d.Documents))
	app.Post("/:db_name/:collection_name/search", SearchItems(d.Documents))
}
