package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/taller-api/internal/domain"
	"github.com/shopspring/decimal"
)

// queryDecimal lee un parámetro decimal opcional. nil si no viene.
func queryDecimal(c *fiber.Ctx, key string) (*decimal.Decimal, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, domain.Invalid(key, "debe ser numérico")
	}
	return &d, nil
}

// queryBool acepta true/false/1/0. Ausente es false.
func queryBool(c *fiber.Ctx, key string) (bool, error) {
	raw := c.Query(key)
	if raw == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, domain.Invalid(key, "debe ser true o false")
	}
	return b, nil
}

// queryPage lee limit y offset. Los valores por defecto y el tope los aplica el caso de uso.
func queryPage(c *fiber.Ctx) (limit, offset int, err error) {
	if raw := c.Query("limit"); raw != "" {
		if limit, err = strconv.Atoi(raw); err != nil || limit < 0 {
			return 0, 0, domain.Invalid("limit", "debe ser un entero no negativo")
		}
	}
	if raw := c.Query("offset"); raw != "" {
		if offset, err = strconv.Atoi(raw); err != nil || offset < 0 {
			return 0, 0, domain.Invalid("offset", "debe ser un entero no negativo")
		}
	}
	return limit, offset, nil
}
