package catalog

import (
	"github.com/jhoicas/taller-api/internal/application/dto"
	"github.com/jhoicas/taller-api/internal/domain/entity"
)

func toMaterialResponse(m *entity.Material) *dto.MaterialResponse {
	if m == nil {
		return nil
	}
	specs := make(map[string]string, len(m.Specifications))
	for k, v := range m.Specifications {
		specs[k] = v
	}
	tags := make([]string, 0, len(m.Tags))
	tags = append(tags, m.Tags...)
	return &dto.MaterialResponse{
		ID:            m.ID,
		Name:          m.Name,
		Description:   m.Description,
		Category:      string(m.Category),
		Unit:          string(m.Unit),
		PricePerUnit:  m.PricePerUnit,
		StockQuantity: m.StockQuantity,
		MinStockLevel: m.MinStockLevel,
		LowStock:      m.IsLowStock(),
		Supplier: dto.SupplierDTO{
			Name: m.Supplier.Name,
			SKU:  m.Supplier.SKU,
			URL:  m.Supplier.URL,
		},
		Specifications: specs,
		Tags:           tags,
		IsActive:       m.IsActive,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

func toAdjustmentResponse(a *entity.StockAdjustment) dto.StockAdjustmentResponse {
	return dto.StockAdjustmentResponse{
		ID:             a.ID,
		MaterialID:     a.MaterialID,
		QuantityBefore: a.QuantityBefore,
		QuantityChange: a.QuantityChange,
		QuantityAfter:  a.QuantityAfter,
		Reason:         a.Reason,
		CreatedAt:      a.CreatedAt,
	}
}
