package inventory

import (
	"time"

	"github.com/jhoicas/taller-api/internal/domain"
	"github.com/jhoicas/taller-api/internal/domain/entity"
)

// ApplyStockChange calcula el nuevo stock y el registro de auditoría correspondiente.
// NuevoStock = StockActual + Delta; falla con ErrInsufficientStock si queda negativo
// y con ErrInvalidInput si el delta o el resultado no caben en INTEGER.
// No asigna ID al registro: lo hace el repositorio al persistir.
func ApplyStockChange(m *entity.Material, delta int, reason string, now time.Time) (*entity.StockAdjustment, error) {
	if delta > MaxQuantity || delta < -MaxQuantity {
		return nil, domain.Invalid("quantity_change", "excede el máximo permitido")
	}
	after := m.StockQuantity + delta
	if after > MaxQuantity {
		return nil, domain.Invalid("quantity_change", "el stock resultante excede el máximo permitido")
	}
	if after < 0 {
		return nil, domain.NewMaterialError(m.ID, domain.ErrInsufficientStock)
	}
	adj := &entity.StockAdjustment{
		MaterialID:     m.ID,
		QuantityBefore: m.StockQuantity,
		QuantityChange: delta,
		QuantityAfter:  after,
		Reason:         reason,
		CreatedAt:      now,
	}
	m.StockQuantity = after
	m.UpdatedAt = now
	return adj, nil
}
