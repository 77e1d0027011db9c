package ledger

import (
	"context"
	"time"

	"github.com/jhoicas/taller-api/internal/domain/entity"
	"github.com/jhoicas/taller-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción con repos del catálogo y del libro de proyectos.
type TxRunner interface {
	RunLedger(ctx context.Context, fn func(
		materialRepo repository.MaterialRepository,
		adjustmentRepo repository.StockAdjustmentRepository,
		projectRepo repository.ProjectRepository,
		lineRepo repository.ProjectMaterialRepository,
	) error) error
}

// MaterialCatalog puerto hacia el catálogo de materiales. El libro de proyectos nunca
// toca las tablas del catálogo directamente.
//
// Un error de GetPricing se trata como catálogo no disponible (domain.ErrCatalogUnavailable);
// un id ausente del mapa es domain.ErrMaterialNotFound.
type MaterialCatalog interface {
	GetPricing(ctx context.Context, ids []string) (map[string]entity.MaterialPricing, error)
	// GetPricingInTx igual que GetPricing pero con el repositorio del caller (misma transacción).
	GetPricingInTx(ctx context.Context, materialRepo repository.MaterialRepository, ids []string) (map[string]entity.MaterialPricing, error)
	// ReserveInTx descuenta stock usando los repositorios del caller (misma transacción).
	ReserveInTx(
		ctx context.Context,
		materialRepo repository.MaterialRepository,
		adjustmentRepo repository.StockAdjustmentRepository,
		items []entity.Reservation,
		now time.Time,
	) error
}

// ReportGenerator genera el PDF con la lista de materiales de un proyecto.
type ReportGenerator interface {
	GenerateProjectReport(ctx context.Context, project *entity.Project) ([]byte, error)
}
