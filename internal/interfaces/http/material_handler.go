package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/taller-api/internal/application/catalog"
	"github.com/jhoicas/taller-api/internal/application/dto"
	"github.com/jhoicas/taller-api/internal/domain/entity"
	"github.com/jhoicas/taller-api/internal/domain/repository"
	"github.com/jhoicas/taller-api/pkg/logger"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// MaterialHandler maneja las peticiones HTTP del catálogo de materiales.
type MaterialHandler struct {
	uc  *catalog.MaterialUseCase
	log *logger.Logger
}

// NewMaterialHandler construye el handler.
func NewMaterialHandler(uc *catalog.MaterialUseCase, log *logger.Logger) *MaterialHandler {
	return &MaterialHandler{uc: uc, log: log}
}

// Create godoc
// @Summary      Crear material
// @Description  Si stock_quantity > 0 se registra el ajuste inicial en el historial.
// @Tags         materials
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateMaterialRequest  true  "Datos del material"
// @Success      201   {object}  dto.MaterialResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/materials [post]
func (h *MaterialHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateMaterialRequest
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
// @Summary      Obtener material por ID
// @Tags         materials
// @Produce      json
// @Param        id   path  string  true  "ID del material"
// @Success      200  {object}  dto.MaterialResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/materials/{id} [get]
func (h *MaterialHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar materiales
// @Tags         materials
// @Produce      json
// @Param        search     query  string  false  "Texto en nombre o descripción"
// @Param        category   query  string  false  "Categoría"
// @Param        unit       query  string  false  "Unidad"
// @Param        min_price  query  number  false  "Precio mínimo"
// @Param        max_price  query  number  false  "Precio máximo"
// @Param        has_stock  query  bool    false  "Solo con stock"
// @Param        low_stock  query  bool    false  "Solo con stock bajo"
// @Param        supplier   query  string  false  "Proveedor"
// @Param        limit      query  int     false  "Límite"  default(20)
// @Param        offset     query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.MaterialListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/materials [get]
func (h *MaterialHandler) List(c *fiber.Ctx) error {
	f, err := materialFilterFromQuery(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	out, err := h.uc.List(c.UserContext(), f)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// ListByCategory godoc
// @Summary      Listar materiales de una categoría
// @Tags         materials
// @Produce      json
// @Param        category  path   string  true   "Categoría"
// @Param        limit     query  int     false  "Límite"  default(20)
// @Param        offset    query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.MaterialListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/materials/category/{category} [get]
func (h *MaterialHandler) ListByCategory(c *fiber.Ctx) error {
	limit, offset, err := queryPage(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	out, err := h.uc.ListByCategory(c.UserContext(), c.Params("category"), limit, offset)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar material (parcial)
// @Description  El stock no se modifica aquí; usar POST /api/materials/{id}/stock.
// @Tags         materials
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                     true  "ID del material"
// @Param        body  body  dto.UpdateMaterialRequest  true  "Campos a cambiar"
// @Success      200   {object}  dto.MaterialResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/materials/{id} [put]
func (h *MaterialHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateMaterialRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// Deactivate godoc
// @Summary      Desactivar material
// @Tags         materials
// @Security     Bearer
// @Param        id   path  string  true  "ID del material"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/materials/{id} [delete]
func (h *MaterialHandler) Deactivate(c *fiber.Ctx) error {
	if err := h.uc.Deactivate(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AdjustStock godoc
// @Summary      Ajustar stock
// @Description  quantity_change con signo. Registra el ajuste en el historial.
// @Tags         materials
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                  true  "ID del material"
// @Param        body  body  dto.AdjustStockRequest  true  "Ajuste"
// @Success      200   {object}  dto.AdjustStockResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/materials/{id}/stock [post]
func (h *MaterialHandler) AdjustStock(c *fiber.Ctx) error {
	var in dto.AdjustStockRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.AdjustStock(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// StockHistory godoc
// @Summary      Historial de stock
// @Description  Últimos 50 ajustes, más recientes primero.
// @Tags         materials
// @Produce      json
// @Param        id   path  string  true  "ID del material"
// @Success      200  {array}   dto.StockAdjustmentResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/materials/{id}/stock/history [get]
func (h *MaterialHandler) StockHistory(c *fiber.Ctx) error {
	out, err := h.uc.StockHistory(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// CalculateCost godoc
// @Summary      Cotizar materiales
// @Description  Calcula precios y disponibilidad sin persistir nada.
// @Tags         materials
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CalculateCostRequest  true  "Materiales y cantidades"
// @Success      200   {object}  dto.CalculateCostResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/materials/calculate-cost [post]
func (h *MaterialHandler) CalculateCost(c *fiber.Ctx) error {
	var in dto.CalculateCostRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.CalculateCost(c.UserContext(), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// LowStock godoc
// @Summary      Materiales con stock bajo
// @Description  0 < stock <= mínimo. Los agotados no aparecen.
// @Tags         materials
// @Produce      json
// @Success      200  {array}  dto.MaterialResponse
// @Router       /api/materials/low-stock [get]
func (h *MaterialHandler) LowStock(c *fiber.Ctx) error {
	out, err := h.uc.LowStock(c.UserContext())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// Stats godoc
// @Summary      Estadísticas del catálogo
// @Tags         materials
// @Produce      json
// @Success      200  {object}  dto.MaterialStatsResponse
// @Router       /api/materials/stats [get]
func (h *MaterialHandler) Stats(c *fiber.Ctx) error {
	out, err := h.uc.Stats(c.UserContext())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// Export godoc
// @Summary      Exportar catálogo a Excel
// @Tags         materials
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success      200  {file}  binary
// @Router       /api/materials/export [get]
func (h *MaterialHandler) Export(c *fiber.Ctx) error {
	data, err := h.uc.Export(c.UserContext())
	if err != nil {
		return respondError(c, h.log, err)
	}
	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="materiales.xlsx"`)
	return c.Send(data)
}

func materialFilterFromQuery(c *fiber.Ctx) (repository.MaterialFilter, error) {
	f := repository.MaterialFilter{
		Search:   c.Query("search"),
		Category: entity.MaterialCategory(c.Query("category")),
		Unit:     entity.Unit(c.Query("unit")),
		Supplier: c.Query("supplier"),
	}
	var err error
	if f.MinPrice, err = queryDecimal(c, "min_price"); err != nil {
		return f, err
	}
	if f.MaxPrice, err = queryDecimal(c, "max_price"); err != nil {
		return f, err
	}
	if f.HasStock, err = queryBool(c, "has_stock"); err != nil {
		return f, err
	}
	if f.LowStock, err = queryBool(c, "low_stock"); err != nil {
		return f, err
	}
	f.Limit, f.Offset, err = queryPage(c)
	return f, err
}
