package catalog

import (
	"strings"

	"github.com/jhoicas/taller-api/internal/application/dto"
	"github.com/jhoicas/taller-api/internal/domain"
	"github.com/jhoicas/taller-api/internal/domain/entity"
	"github.com/jhoicas/taller-api/internal/domain/inventory"
	"github.com/jhoicas/taller-api/internal/domain/repository"
)

func validateCreate(in dto.CreateMaterialRequest) error {
	if strings.TrimSpace(in.Name) == "" {
		return domain.Invalid("name", "es requerido")
	}
	if err := validateCategory(in.Category); err != nil {
		return err
	}
	if err := validateUnit(in.Unit); err != nil {
		return err
	}
	if err := inventory.CheckMoney("price_per_unit", in.PricePerUnit); err != nil {
		return err
	}
	if err := inventory.CheckQuantity("stock_quantity", in.StockQuantity); err != nil {
		return err
	}
	return inventory.CheckQuantity("min_stock_level", in.MinStockLevel)
}

func validateUpdate(in dto.UpdateMaterialRequest) error {
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return domain.Invalid("name", "no puede estar vacío")
	}
	if in.Category != nil {
		if err := validateCategory(*in.Category); err != nil {
			return err
		}
	}
	if in.Unit != nil {
		if err := validateUnit(*in.Unit); err != nil {
			return err
		}
	}
	if in.PricePerUnit != nil {
		if err := inventory.CheckMoney("price_per_unit", *in.PricePerUnit); err != nil {
			return err
		}
	}
	if in.MinStockLevel != nil {
		return inventory.CheckQuantity("min_stock_level", *in.MinStockLevel)
	}
	return nil
}

func validateCategory(c string) error {
	if !entity.MaterialCategory(c).Valid() {
		return domain.Invalid("category", "valor no permitido: "+c)
	}
	return nil
}

func validateUnit(u string) error {
	if !entity.Unit(u).Valid() {
		return domain.Invalid("unit", "valor no permitido: "+u)
	}
	return nil
}

func validateFilter(f repository.MaterialFilter) error {
	if f.Category != "" && !f.Category.Valid() {
		return domain.Invalid("category", "valor no permitido: "+string(f.Category))
	}
	if f.Unit != "" && !f.Unit.Valid() {
		return domain.Invalid("unit", "valor no permitido: "+string(f.Unit))
	}
	if f.MinPrice != nil && f.MinPrice.IsNegative() {
		return domain.Invalid("min_price", "no puede ser negativo")
	}
	if f.MinPrice != nil && f.MaxPrice != nil && f.MinPrice.GreaterThan(*f.MaxPrice) {
		return domain.Invalid("min_price", "mayor que max_price")
	}
	return nil
}

func validateCostItems(items []dto.CostItemRequest) error {
	if len(items) == 0 {
		return domain.Invalid("materials", "debe incluir al menos un material")
	}
	for _, it := range items {
		if it.MaterialID == "" {
			return domain.Invalid("material_id", "es requerido")
		}
		if it.Quantity <= 0 {
			return domain.Invalid("quantity", "debe ser mayor que cero")
		}
	}
	return nil
}

func supplierFromDTO(s dto.SupplierDTO) entity.Supplier {
	return entity.Supplier{
		Name: strings.TrimSpace(s.Name),
		SKU:  strings.TrimSpace(s.SKU),
		URL:  strings.TrimSpace(s.URL),
	}
}

// specificationsFromMap copia el mapa descartando claves vacías. Nunca devuelve nil.
func specificationsFromMap(in map[string]string) entity.Specifications {
	out := make(entity.Specifications, len(in))
	for k, v := range in {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		out[k] = v
	}
	return out
}
