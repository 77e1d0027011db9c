package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/taller-api/internal/application/dto"
	"github.com/jhoicas/taller-api/internal/application/ledger"
	"github.com/jhoicas/taller-api/internal/domain/entity"
	"github.com/jhoicas/taller-api/internal/domain/repository"
	"github.com/jhoicas/taller-api/pkg/logger"
)

// ProjectHandler maneja las peticiones HTTP del libro de proyectos.
type ProjectHandler struct {
	uc  *ledger.ProjectUseCase
	log *logger.Logger
}

// NewProjectHandler construye el handler.
func NewProjectHandler(uc *ledger.ProjectUseCase, log *logger.Logger) *ProjectHandler {
	return &ProjectHandler{uc: uc, log: log}
}

// Create godoc
// @Summary      Crear proyecto
// @Description  Los precios de las líneas se toman del catálogo al momento de crear.
// @Tags         projects
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateProjectRequest  true  "Datos del proyecto"
// @Success      201   {object}  dto.ProjectDetailResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/projects [post]
func (h *ProjectHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateProjectRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener proyecto con sus materiales
// @Tags         projects
// @Produce      json
// @Param        id   path  string  true  "ID del proyecto"
// @Success      200  {object}  dto.ProjectDetailResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/projects/{id} [get]
func (h *ProjectHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar proyectos
// @Tags         projects
// @Produce      json
// @Param        search      query  string  false  "Texto en título o descripción"
// @Param        difficulty  query  string  false  "Dificultad"
// @Param        category    query  string  false  "Categoría"
// @Param        status      query  string  false  "Estado"
// @Param        min_hours   query  number  false  "Horas mínimas"
// @Param        max_hours   query  number  false  "Horas máximas"
// @Param        min_cost    query  number  false  "Costo mínimo"
// @Param        max_cost    query  number  false  "Costo máximo"
// @Param        limit       query  int     false  "Límite"  default(20)
// @Param        offset      query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.ProjectListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/projects [get]
func (h *ProjectHandler) List(c *fiber.Ctx) error {
	f, err := projectFilterFromQuery(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	out, err := h.uc.List(c.UserContext(), f)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar proyecto (parcial)
// @Description  Si se envía materials, reemplaza todas las líneas y recalcula el costo estimado.
// @Tags         projects
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                    true  "ID del proyecto"
// @Param        body  body  dto.UpdateProjectRequest  true  "Campos a cambiar"
// @Success      200   {object}  dto.ProjectDetailResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/projects/{id} [put]
func (h *ProjectHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateProjectRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar proyecto
// @Tags         projects
// @Security     Bearer
// @Param        id   path  string  true  "ID del proyecto"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/projects/{id} [delete]
func (h *ProjectHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Start godoc
// @Summary      Iniciar proyecto
// @Description  Reserva el stock de todas las líneas y pasa el proyecto de planning a in_progress (todo o nada).
// @Tags         projects
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del proyecto"
// @Success      200  {object}  dto.ProjectDetailResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/projects/{id}/start [post]
func (h *ProjectHandler) Start(c *fiber.Ctx) error {
	out, err := h.uc.Start(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// RecalculateCost godoc
// @Summary      Recalcular costo
// @Description  Recotiza las líneas con los precios actuales del catálogo.
// @Tags         projects
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del proyecto"
// @Success      200  {object}  dto.ProjectDetailResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/projects/{id}/recalculate-cost [post]
func (h *ProjectHandler) RecalculateCost(c *fiber.Ctx) error {
	out, err := h.uc.RecalculateCost(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// Startable godoc
// @Summary      Proyectos que se pueden iniciar
// @Description  Proyectos en planning cuyo stock disponible cubre todas las líneas.
// @Tags         projects
// @Produce      json
// @Success      200  {array}   dto.ProjectDetailResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/projects/startable [get]
func (h *ProjectHandler) Startable(c *fiber.Ctx) error {
	out, err := h.uc.GetStartable(c.UserContext())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// Stats godoc
// @Summary      Estadísticas de proyectos
// @Tags         projects
// @Produce      json
// @Success      200  {object}  dto.ProjectStatsResponse
// @Router       /api/projects/stats [get]
func (h *ProjectHandler) Stats(c *fiber.Ctx) error {
	out, err := h.uc.Stats(c.UserContext())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// Report godoc
// @Summary      Lista de materiales en PDF
// @Tags         projects
// @Produce      application/pdf
// @Param        id   path  string  true  "ID del proyecto"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/projects/{id}/report [get]
func (h *ProjectHandler) Report(c *fiber.Ctx) error {
	data, filename, err := h.uc.Report(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Send(data)
}

func projectFilterFromQuery(c *fiber.Ctx) (repository.ProjectFilter, error) {
	f := repository.ProjectFilter{
		Search:     c.Query("search"),
		Difficulty: entity.Difficulty(c.Query("difficulty")),
		Category:   entity.ProjectCategory(c.Query("category")),
		Status:     entity.ProjectStatus(c.Query("status")),
	}
	var err error
	if f.MinHours, err = queryDecimal(c, "min_hours"); err != nil {
		return f, err
	}
	if f.MaxHours, err = queryDecimal(c, "max_hours"); err != nil {
		return f, err
	}
	if f.MinCost, err = queryDecimal(c, "min_cost"); err != nil {
		return f, err
	}
	if f.MaxCost, err = queryDecimal(c, "max_cost"); err != nil {
		return f, err
	}
	f.Limit, f.Offset, err = queryPage(c)
	return f, err
}
