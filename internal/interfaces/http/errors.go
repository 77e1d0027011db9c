package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/taller-api/internal/application/dto"
	"github.com/jhoicas/taller-api/internal/domain"
	"github.com/jhoicas/taller-api/pkg/logger"
)

// errorMapping orden de evaluación: los errores más específicos primero
// (MaterialError envuelve ErrMaterialNotFound, que no debe caer en ErrNotFound).
var errorMapping = []struct {
	err    error
	status int
	code   string
}{
	{domain.ErrMaterialNotFound, fiber.StatusNotFound, "MATERIAL_NOT_FOUND"},
	{domain.ErrInsufficientStock, fiber.StatusConflict, "INSUFFICIENT_STOCK"},
	{domain.ErrNoMaterials, fiber.StatusUnprocessableEntity, "NO_MATERIALS"},
	{domain.ErrCatalogUnavailable, fiber.StatusServiceUnavailable, "CATALOG_UNAVAILABLE"},
	{domain.ErrNoFieldsToUpdate, fiber.StatusBadRequest, "NO_FIELDS"},
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED"},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN"},
}

// respondError traduce un error de dominio a {code, message}. Los errores no mapeados
// se registran y se responden como 500 sin exponer el detalle.
func respondError(c *fiber.Ctx, log *logger.Logger, err error) error {
	for _, m := range errorMapping {
		if !errors.Is(err, m.err) {
			continue
		}
		body := dto.ErrorResponse{Code: m.code, Message: err.Error()}
		var matErr *domain.MaterialError
		if errors.As(err, &matErr) {
			body.MaterialID = matErr.MaterialID
		}
		return c.Status(m.status).JSON(body)
	}
	log.Error().Err(err).
		Str("method", c.Method()).
		Str("path", c.Path()).
		Msg("error interno")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno del servidor"})
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}
