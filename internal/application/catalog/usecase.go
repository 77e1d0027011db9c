package catalog

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/taller-api/internal/application/dto"
	"github.com/jhoicas/taller-api/internal/domain"
	"github.com/jhoicas/taller-api/internal/domain/entity"
	"github.com/jhoicas/taller-api/internal/domain/inventory"
	"github.com/jhoicas/taller-api/internal/domain/repository"
)

// HistoryLimit cantidad de registros de auditoría devueltos por StockHistory.
const HistoryLimit = 50

// MaterialUseCase casos de uso del catálogo de materiales.
// El stock solo cambia vía AdjustStock/Reserve, siempre en transacción y con registro de auditoría.
type MaterialUseCase struct {
	txRunner       TxRunner
	materialRepo   repository.MaterialRepository
	adjustmentRepo repository.StockAdjustmentRepository
	exporter       MaterialExporter
}

// NewMaterialUseCase construye el caso de uso.
func NewMaterialUseCase(
	txRunner TxRunner,
	materialRepo repository.MaterialRepository,
	adjustmentRepo repository.StockAdjustmentRepository,
	exporter MaterialExporter,
) *MaterialUseCase {
	return &MaterialUseCase{
		txRunner:       txRunner,
		materialRepo:   materialRepo,
		adjustmentRepo: adjustmentRepo,
		exporter:       exporter,
	}
}

// Create crea un material. Si el stock inicial es > 0 registra un ajuste con before=0
// en la misma transacción.
func (uc *MaterialUseCase) Create(ctx context.Context, in dto.CreateMaterialRequest) (*dto.MaterialResponse, error) {
	if err := validateCreate(in); err != nil {
		return nil, err
	}
	now := time.Now()
	material := &entity.Material{
		ID:             uuid.New().String(),
		Name:           strings.TrimSpace(in.Name),
		Description:    in.Description,
		Category:       entity.MaterialCategory(in.Category),
		Unit:           entity.Unit(in.Unit),
		PricePerUnit:   in.PricePerUnit,
		StockQuantity:  in.StockQuantity,
		MinStockLevel:  in.MinStockLevel,
		Supplier:       supplierFromDTO(in.Supplier),
		Specifications: specificationsFromMap(in.Specifications),
		Tags:           entity.NormalizeTags(in.Tags),
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	err := uc.txRunner.Run(ctx, func(
		materialRepo repository.MaterialRepository,
		adjustmentRepo repository.StockAdjustmentRepository,
	) error {
		if err := materialRepo.Create(ctx, material); err != nil {
			return err
		}
		if material.StockQuantity == 0 {
			return nil
		}
		return adjustmentRepo.Create(ctx, &entity.StockAdjustment{
			MaterialID:     material.ID,
			QuantityBefore: 0,
			QuantityChange: material.StockQuantity,
			QuantityAfter:  material.StockQuantity,
			Reason:         entity.ReasonInitialStock,
			CreatedAt:      now,
		})
	})
	if err != nil {
		return nil, err
	}
	return uc.GetByID(ctx, material.ID)
}

// GetByID obtiene un material activo. ErrNotFound si no existe o está desactivado.
func (uc *MaterialUseCase) GetByID(ctx context.Context, id string) (*dto.MaterialResponse, error) {
	material, err := uc.activeMaterial(ctx, id)
	if err != nil {
		return nil, err
	}
	return toMaterialResponse(material), nil
}

// List lista materiales activos filtrados, ordenados por nombre.
func (uc *MaterialUseCase) List(ctx context.Context, f repository.MaterialFilter) (*dto.MaterialListResponse, error) {
	if err := validateFilter(f); err != nil {
		return nil, err
	}
	page := dto.PageRequest{Limit: f.Limit, Offset: f.Offset}
	page.DefaultPage()
	f.Limit, f.Offset = page.Limit, page.Offset

	list, total, err := uc.materialRepo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	items := make([]dto.MaterialResponse, 0, len(list))
	for _, m := range list {
		items = append(items, *toMaterialResponse(m))
	}
	return &dto.MaterialListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: f.Limit, Offset: f.Offset, Total: total},
	}, nil
}

// ListByCategory lista materiales activos de una categoría.
func (uc *MaterialUseCase) ListByCategory(ctx context.Context, category string, limit, offset int) (*dto.MaterialListResponse, error) {
	if err := validateCategory(category); err != nil {
		return nil, err
	}
	return uc.List(ctx, repository.MaterialFilter{
		Category: entity.MaterialCategory(category),
		Limit:    limit,
		Offset:   offset,
	})
}

// LowStock materiales con 0 < stock <= mínimo (los agotados quedan fuera).
func (uc *MaterialUseCase) LowStock(ctx context.Context) ([]dto.MaterialResponse, error) {
	list, _, err := uc.materialRepo.List(ctx, repository.MaterialFilter{LowStock: true})
	if err != nil {
		return nil, err
	}
	items := make([]dto.MaterialResponse, 0, len(list))
	for _, m := range list {
		items = append(items, *toMaterialResponse(m))
	}
	return items, nil
}

// Update aplica solo los campos presentes y refresca updated_at. Lee y escribe la fila
// bloqueada dentro de una transacción, así dos parches concurrentes no se pisan.
// ErrNoFieldsToUpdate si no se envió ningún campo.
func (uc *MaterialUseCase) Update(ctx context.Context, id string, in dto.UpdateMaterialRequest) (*dto.MaterialResponse, error) {
	if in.IsEmpty() {
		return nil, domain.ErrNoFieldsToUpdate
	}
	if err := validateUpdate(in); err != nil {
		return nil, err
	}
	err := uc.txRunner.Run(ctx, func(
		materialRepo repository.MaterialRepository,
		_ repository.StockAdjustmentRepository,
	) error {
		material, err := materialRepo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if material == nil || !material.IsActive {
			return domain.ErrNotFound
		}
		applyMaterialPatch(material, in)
		material.UpdatedAt = time.Now()
		return materialRepo.Update(ctx, material)
	})
	if err != nil {
		return nil, err
	}
	return uc.GetByID(ctx, id)
}

func applyMaterialPatch(m *entity.Material, in dto.UpdateMaterialRequest) {
	if in.Name != nil {
		m.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		m.Description = *in.Description
	}
	if in.Category != nil {
		m.Category = entity.MaterialCategory(*in.Category)
	}
	if in.Unit != nil {
		m.Unit = entity.Unit(*in.Unit)
	}
	if in.PricePerUnit != nil {
		m.PricePerUnit = *in.PricePerUnit
	}
	if in.MinStockLevel != nil {
		m.MinStockLevel = *in.MinStockLevel
	}
	if in.Supplier != nil {
		m.Supplier = supplierFromDTO(*in.Supplier)
	}
	if in.Specifications != nil {
		m.Specifications = specificationsFromMap(*in.Specifications)
	}
	if in.Tags != nil {
		m.Tags = entity.NormalizeTags(*in.Tags)
	}
}

// Deactivate desactiva el material. Las líneas de proyectos que lo referencian no cambian.
func (uc *MaterialUseCase) Deactivate(ctx context.Context, id string) error {
	if _, err := uc.activeMaterial(ctx, id); err != nil {
		return err
	}
	return uc.materialRepo.SetActive(ctx, id, false, time.Now())
}

// Stats agregados del catálogo activo. Todas las categorías aparecen en el histograma.
func (uc *MaterialUseCase) Stats(ctx context.Context) (*dto.MaterialStatsResponse, error) {
	stats, err := uc.materialRepo.Stats(ctx)
	if err != nil {
		return nil, err
	}
	byCategory := make(map[string]int, len(entity.MaterialCategories))
	for _, c := range entity.MaterialCategories {
		byCategory[string(c)] = stats.ByCategory[c]
	}
	return &dto.MaterialStatsResponse{
		TotalMaterials:      stats.TotalMaterials,
		TotalInventoryValue: stats.TotalInventoryValue,
		LowStockCount:       stats.LowStockCount,
		OutOfStockCount:     stats.OutOfStockCount,
		TotalStockUnits:     stats.TotalStockUnits,
		ByCategory:          byCategory,
	}, nil
}

// CalculateCost cotiza una lista de materiales sin persistir nada.
// ErrMaterialNotFound si algún id no corresponde a un material activo.
func (uc *MaterialUseCase) CalculateCost(ctx context.Context, in dto.CalculateCostRequest) (*dto.CalculateCostResponse, error) {
	if err := validateCostItems(in.Materials); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(in.Materials))
	lines := make([]*entity.ProjectMaterial, 0, len(in.Materials))
	for _, it := range in.Materials {
		ids = append(ids, it.MaterialID)
		lines = append(lines, &entity.ProjectMaterial{MaterialID: it.MaterialID, Quantity: it.Quantity})
	}
	pricing, err := uc.GetPricing(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := &dto.CalculateCostResponse{Items: make([]dto.CostItemResponse, 0, len(lines))}
	for _, line := range lines {
		p, ok := pricing[line.MaterialID]
		if !ok {
			return nil, domain.NewMaterialError(line.MaterialID, domain.ErrMaterialNotFound)
		}
		inventory.PriceLine(line, p.Price)
		out.Items = append(out.Items, dto.CostItemResponse{
			MaterialID:        line.MaterialID,
			Quantity:          line.Quantity,
			UnitPrice:         line.UnitPrice,
			TotalPrice:        line.TotalPrice,
			InStock:           p.InStock,
			AvailableQuantity: p.AvailableQuantity,
			Sufficient:        p.AvailableQuantity >= line.Quantity,
		})
	}
	out.TotalCost = inventory.EstimatedCost(lines)
	out.AllAvailable = inventory.Covered(lines, pricing)
	return out, nil
}

// Export genera la hoja de cálculo con todos los materiales activos.
func (uc *MaterialUseCase) Export(ctx context.Context) ([]byte, error) {
	list, _, err := uc.materialRepo.List(ctx, repository.MaterialFilter{})
	if err != nil {
		return nil, err
	}
	return uc.exporter.ExportMaterials(ctx, list)
}

func (uc *MaterialUseCase) activeMaterial(ctx context.Context, id string) (*entity.Material, error) {
	material, err := uc.materialRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if material == nil || !material.IsActive {
		return nil, domain.ErrNotFound
	}
	return material, nil
}
