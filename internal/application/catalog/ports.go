package catalog

import (
	"context"

	"github.com/jhoicas/taller-api/internal/domain/entity"
	"github.com/jhoicas/taller-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Garantiza atomicidad para los cambios de stock y su registro de auditoría.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		materialRepo repository.MaterialRepository,
		adjustmentRepo repository.StockAdjustmentRepository,
	) error) error
}

// MaterialExporter genera una hoja de cálculo con el catálogo.
type MaterialExporter interface {
	ExportMaterials(ctx context.Context, materials []*entity.Material) ([]byte, error)
}
