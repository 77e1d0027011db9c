package repository

import (
	"context"

	"github.com/jhoicas/taller-api/internal/domain/entity"
)

// StockAdjustmentRepository puerto del log de auditoría de stock (solo inserción y lectura).
type StockAdjustmentRepository interface {
	Create(ctx context.Context, adj *entity.StockAdjustment) error
	// ListByMaterial devuelve los últimos `limit` ajustes, más recientes primero.
	ListByMaterial(ctx context.Context, materialID string, limit int) ([]*entity.StockAdjustment, error)
}
