package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/taller-api/internal/application/catalog"
	"github.com/jhoicas/taller-api/internal/application/ledger"
	"github.com/jhoicas/taller-api/pkg/jwt"
	"github.com/jhoicas/taller-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Materials *catalog.MaterialUseCase
	Projects  *ledger.ProjectUseCase
	// JWTSecret vacío deja todas las rutas abiertas.
	JWTSecret string
	Logger    *logger.Logger
}

// Router registra las rutas de la API. Las rutas fijas van antes de /:id.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Logger
	if log == nil {
		log = logger.Nop()
	}
	api := app.Group("/api")

	// Catálogo: escritura solo admin
	catalogWrite := writeGuard(deps.JWTSecret, jwt.RoleAdmin)
	mh := NewMaterialHandler(deps.Materials, log)
	materials := api.Group("/materials")
	materials.Get("/stats", mh.Stats)
	materials.Get("/low-stock", mh.LowStock)
	materials.Get("/export", mh.Export)
	materials.Get("/category/:category", mh.ListByCategory)
	materials.Post("/calculate-cost", mh.CalculateCost)
	materials.Get("/", mh.List)
	materials.Post("/", guarded(catalogWrite, mh.Create)...)
	materials.Get("/:id", mh.GetByID)
	materials.Put("/:id", guarded(catalogWrite, mh.Update)...)
	materials.Delete("/:id", guarded(catalogWrite, mh.Deactivate)...)
	materials.Post("/:id/stock", guarded(catalogWrite, mh.AdjustStock)...)
	materials.Get("/:id/stock/history", mh.StockHistory)

	// Proyectos: escritura admin o maker
	projectWrite := writeGuard(deps.JWTSecret, jwt.RoleAdmin, jwt.RoleMaker)
	ph := NewProjectHandler(deps.Projects, log)
	projects := api.Group("/projects")
	projects.Get("/stats", ph.Stats)
	projects.Get("/startable", ph.Startable)
	projects.Get("/", ph.List)
	projects.Post("/", guarded(projectWrite, ph.Create)...)
	projects.Get("/:id", ph.GetByID)
	projects.Put("/:id", guarded(projectWrite, ph.Update)...)
	projects.Delete("/:id", guarded(projectWrite, ph.Delete)...)
	projects.Post("/:id/start", guarded(projectWrite, ph.Start)...)
	projects.Post("/:id/recalculate-cost", guarded(projectWrite, ph.RecalculateCost)...)
	projects.Get("/:id/report", ph.Report)
}

func guarded(guard []fiber.Handler, h fiber.Handler) []fiber.Handler {
	out := make([]fiber.Handler, 0, len(guard)+1)
	out = append(out, guard...)
	return append(out, h)
}
