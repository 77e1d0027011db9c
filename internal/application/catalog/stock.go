package catalog

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/jhoicas/taller-api/internal/application/dto"
	"github.com/jhoicas/taller-api/internal/domain"
	"github.com/jhoicas/taller-api/internal/domain/entity"
	"github.com/jhoicas/taller-api/internal/domain/inventory"
	"github.com/jhoicas/taller-api/internal/domain/repository"
)

const defaultAdjustReason = "ajuste manual"

// AdjustStock inicia una transacción, bloquea la fila del material (SELECT FOR UPDATE),
// aplica el delta y guarda el registro de auditoría. Si el stock quedaría negativo
// devuelve ErrInsufficientStock y no escribe nada.
func (uc *MaterialUseCase) AdjustStock(ctx context.Context, id string, in dto.AdjustStockRequest) (*dto.AdjustStockResponse, error) {
	if in.QuantityChange == 0 {
		return nil, domain.Invalid("quantity_change", "debe ser distinto de cero")
	}
	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		reason = defaultAdjustReason
	}

	var (
		material *entity.Material
		adj      *entity.StockAdjustment
	)
	err := uc.txRunner.Run(ctx, func(
		materialRepo repository.MaterialRepository,
		adjustmentRepo repository.StockAdjustmentRepository,
	) error {
		m, err := materialRepo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if m == nil || !m.IsActive {
			return domain.ErrNotFound
		}
		a, err := applyAndRecord(ctx, materialRepo, adjustmentRepo, m, in.QuantityChange, reason, time.Now())
		if err != nil {
			return err
		}
		material, adj = m, a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &dto.AdjustStockResponse{
		Material:   *toMaterialResponse(material),
		Adjustment: toAdjustmentResponse(adj),
	}, nil
}

// StockHistory últimos HistoryLimit ajustes del material, más recientes primero.
func (uc *MaterialUseCase) StockHistory(ctx context.Context, id string) ([]dto.StockAdjustmentResponse, error) {
	material, err := uc.materialRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if material == nil {
		return nil, domain.ErrNotFound
	}
	list, err := uc.adjustmentRepo.ListByMaterial(ctx, id, HistoryLimit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.StockAdjustmentResponse, 0, len(list))
	for _, a := range list {
		out = append(out, toAdjustmentResponse(a))
	}
	return out, nil
}

// GetPricing consulta interna de precio y disponibilidad. Los ids sin material activo
// no aparecen en el mapa: el llamador debe tratarlos como desconocidos.
func (uc *MaterialUseCase) GetPricing(ctx context.Context, ids []string) (map[string]entity.MaterialPricing, error) {
	unique := uniqueIDs(ids)
	if len(unique) == 0 {
		return map[string]entity.MaterialPricing{}, nil
	}
	return uc.materialRepo.GetPricing(ctx, unique)
}

// GetPricingInTx igual que GetPricing usando el repositorio de la transacción del caller.
func (uc *MaterialUseCase) GetPricingInTx(ctx context.Context, materialRepo repository.MaterialRepository, ids []string) (map[string]entity.MaterialPricing, error) {
	unique := uniqueIDs(ids)
	if len(unique) == 0 {
		return map[string]entity.MaterialPricing{}, nil
	}
	return materialRepo.GetPricing(ctx, unique)
}

// Reserve descuenta stock para todas las reservas en una sola transacción:
// si alguna falla no queda ninguna aplicada.
func (uc *MaterialUseCase) Reserve(ctx context.Context, items []entity.Reservation) error {
	return uc.txRunner.Run(ctx, func(
		materialRepo repository.MaterialRepository,
		adjustmentRepo repository.StockAdjustmentRepository,
	) error {
		return uc.ReserveInTx(ctx, materialRepo, adjustmentRepo, items, time.Now())
	})
}

// ReserveInTx aplica las reservas usando los repositorios del caller (misma transacción).
// Bloquea las filas en orden de id para evitar interbloqueos entre reservas concurrentes.
// Si retorna error (ErrInsufficientStock, ErrMaterialNotFound) el caller debe hacer rollback.
func (uc *MaterialUseCase) ReserveInTx(
	ctx context.Context,
	materialRepo repository.MaterialRepository,
	adjustmentRepo repository.StockAdjustmentRepository,
	items []entity.Reservation,
	now time.Time,
) error {
	if len(items) == 0 {
		return domain.ErrNoMaterials
	}
	ordered := make([]entity.Reservation, len(items))
	copy(ordered, items)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].MaterialID < ordered[j].MaterialID })

	for _, it := range ordered {
		if it.Quantity <= 0 {
			return domain.Invalid("quantity", "debe ser mayor que cero")
		}
		m, err := materialRepo.GetForUpdate(ctx, it.MaterialID)
		if err != nil {
			return err
		}
		if m == nil || !m.IsActive {
			return domain.NewMaterialError(it.MaterialID, domain.ErrMaterialNotFound)
		}
		if _, err := applyAndRecord(ctx, materialRepo, adjustmentRepo, m, -it.Quantity, it.Reason, now); err != nil {
			return err
		}
	}
	return nil
}

// applyAndRecord actualiza el stock de m (ya bloqueado) y agrega el registro de auditoría.
func applyAndRecord(
	ctx context.Context,
	materialRepo repository.MaterialRepository,
	adjustmentRepo repository.StockAdjustmentRepository,
	m *entity.Material,
	delta int,
	reason string,
	now time.Time,
) (*entity.StockAdjustment, error) {
	adj, err := inventory.ApplyStockChange(m, delta, reason, now)
	if err != nil {
		return nil, err
	}
	if err := materialRepo.UpdateStock(ctx, m.ID, m.StockQuantity, now); err != nil {
		return nil, err
	}
	if err := adjustmentRepo.Create(ctx, adj); err != nil {
		return nil, err
	}
	return adj, nil
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
