package inventory

import (
	"github.com/jhoicas/taller-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// LineTotal implementa el costo de una línea (servicio de dominio).
// Total = Cantidad × PrecioUnitario
func LineTotal(quantity int, unitPrice decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}

// PriceLine fija precio unitario y total de la línea a partir del precio del catálogo.
func PriceLine(line *entity.ProjectMaterial, unitPrice decimal.Decimal) {
	line.UnitPrice = unitPrice
	line.TotalPrice = LineTotal(line.Quantity, unitPrice)
}

// EstimatedCost suma los totales de las líneas.
func EstimatedCost(lines []*entity.ProjectMaterial) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.TotalPrice)
	}
	return sum
}

// Covered indica si el stock disponible cubre todas las líneas.
// Líneas del mismo material se acumulan antes de comparar. Un material ausente
// de pricing nunca está cubierto.
func Covered(lines []*entity.ProjectMaterial, pricing map[string]entity.MaterialPricing) bool {
	if len(lines) == 0 {
		return false
	}
	needed := make(map[string]int, len(lines))
	for _, l := range lines {
		needed[l.MaterialID] += l.Quantity
	}
	for id, qty := range needed {
		p, ok := pricing[id]
		if !ok || p.AvailableQuantity < qty {
			return false
		}
	}
	return true
}
