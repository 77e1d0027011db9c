package inventory

import (
	"math"

	"github.com/jhoicas/taller-api/internal/domain"
	"github.com/shopspring/decimal"
)

// Límites de las columnas: INTEGER para cantidades, NUMERIC(12,2) para dinero y
// NUMERIC(8,2) para horas.
const (
	MaxQuantity = math.MaxInt32
	MoneyScale  = 2
)

var (
	MaxMoney = decimal.RequireFromString("9999999999.99")
	MaxHours = decimal.RequireFromString("999999.99")
)

// CheckQuantity valida una cantidad no negativa que cabe en INTEGER.
func CheckQuantity(field string, q int) error {
	if q < 0 {
		return domain.Invalid(field, "no puede ser negativo")
	}
	if q > MaxQuantity {
		return domain.Invalid(field, "excede el máximo permitido")
	}
	return nil
}

// CheckMoney valida un importe: no negativo, como mucho dos decimales y dentro de NUMERIC(12,2).
func CheckMoney(field string, d decimal.Decimal) error {
	return checkDecimal(field, d, MaxMoney)
}

// CheckHours igual que CheckMoney con el tope de NUMERIC(8,2).
func CheckHours(field string, d decimal.Decimal) error {
	return checkDecimal(field, d, MaxHours)
}

func checkDecimal(field string, d, limit decimal.Decimal) error {
	if d.IsNegative() {
		return domain.Invalid(field, "no puede ser negativo")
	}
	if !d.Equal(d.Truncate(MoneyScale)) {
		return domain.Invalid(field, "admite como mucho dos decimales")
	}
	if d.GreaterThan(limit) {
		return domain.Invalid(field, "excede el máximo permitido")
	}
	return nil
}
