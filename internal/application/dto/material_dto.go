package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// SupplierDTO datos del proveedor.
type SupplierDTO struct {
	Name string `json:"name,omitempty"`
	SKU  string `json:"sku,omitempty"`
	URL  string `json:"url,omitempty"`
}

// CreateMaterialRequest entrada para crear un material.
type CreateMaterialRequest struct {
	Name           string            `json:"name" validate:"required,min=1,max=200"`
	Description    string            `json:"description"`
	Category       string            `json:"category" validate:"required"`
	Unit           string            `json:"unit" validate:"required"`
	PricePerUnit   decimal.Decimal   `json:"price_per_unit"`
	StockQuantity  int               `json:"stock_quantity"`
	MinStockLevel  int               `json:"min_stock_level"`
	Supplier       SupplierDTO       `json:"supplier"`
	Specifications map[string]string `json:"specifications"`
	Tags           []string          `json:"tags"`
}

// UpdateMaterialRequest entrada parcial; solo se aplican los campos presentes.
// El stock no se actualiza aquí (POST /materials/:id/stock).
type UpdateMaterialRequest struct {
	Name           *string            `json:"name" validate:"omitempty,min=1,max=200"`
	Description    *string            `json:"description"`
	Category       *string            `json:"category"`
	Unit           *string            `json:"unit"`
	PricePerUnit   *decimal.Decimal   `json:"price_per_unit"`
	MinStockLevel  *int               `json:"min_stock_level"`
	Supplier       *SupplierDTO       `json:"supplier"`
	Specifications *map[string]string `json:"specifications"`
	Tags           *[]string          `json:"tags"`
}

// IsEmpty indica que no se envió ningún campo.
func (r UpdateMaterialRequest) IsEmpty() bool {
	return r.Name == nil && r.Description == nil && r.Category == nil && r.Unit == nil &&
		r.PricePerUnit == nil && r.MinStockLevel == nil && r.Supplier == nil &&
		r.Specifications == nil && r.Tags == nil
}

// MaterialResponse salida de un material.
type MaterialResponse struct {
	ID             string            `json:"id"`
	Name           string            `json:"name"`
	Description    string            `json:"description"`
	Category       string            `json:"category"`
	Unit           string            `json:"unit"`
	PricePerUnit   decimal.Decimal   `json:"price_per_unit"`
	StockQuantity  int               `json:"stock_quantity"`
	MinStockLevel  int               `json:"min_stock_level"`
	LowStock       bool              `json:"low_stock"`
	Supplier       SupplierDTO       `json:"supplier"`
	Specifications map[string]string `json:"specifications"`
	Tags           []string          `json:"tags"`
	IsActive       bool              `json:"is_active"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// MaterialListResponse lista paginada de materiales.
type MaterialListResponse struct {
	Items []MaterialResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// AdjustStockRequest body de POST /materials/:id/stock. QuantityChange con signo.
type AdjustStockRequest struct {
	QuantityChange int    `json:"quantity_change"`
	Reason         string `json:"reason"`
}

// StockAdjustmentResponse registro de auditoría.
type StockAdjustmentResponse struct {
	ID             string    `json:"id"`
	MaterialID     string    `json:"material_id"`
	QuantityBefore int       `json:"quantity_before"`
	QuantityChange int       `json:"quantity_change"`
	QuantityAfter  int       `json:"quantity_after"`
	Reason         string    `json:"reason"`
	CreatedAt      time.Time `json:"created_at"`
}

// AdjustStockResponse material actualizado + registro generado.
type AdjustStockResponse struct {
	Material   MaterialResponse        `json:"material"`
	Adjustment StockAdjustmentResponse `json:"adjustment"`
}

// CostItemRequest material y cantidad a cotizar.
type CostItemRequest struct {
	MaterialID string `json:"material_id"`
	Quantity   int    `json:"quantity"`
}

// CalculateCostRequest body de POST /materials/calculate-cost.
type CalculateCostRequest struct {
	Materials []CostItemRequest `json:"materials"`
}

// CostItemResponse cotización de una línea.
type CostItemResponse struct {
	MaterialID        string          `json:"material_id"`
	Quantity          int             `json:"quantity"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	TotalPrice        decimal.Decimal `json:"total_price"`
	InStock           bool            `json:"in_stock"`
	AvailableQuantity int             `json:"available_quantity"`
	Sufficient        bool            `json:"sufficient"`
}

// CalculateCostResponse cotización completa (no se persiste nada).
type CalculateCostResponse struct {
	Items        []CostItemResponse `json:"items"`
	TotalCost    decimal.Decimal    `json:"total_cost"`
	AllAvailable bool               `json:"all_available"`
}

// MaterialStatsResponse agregados del catálogo.
type MaterialStatsResponse struct {
	TotalMaterials      int             `json:"total_materials"`
	TotalInventoryValue decimal.Decimal `json:"total_inventory_value"`
	LowStockCount       int             `json:"low_stock_count"`
	OutOfStockCount     int             `json:"out_of_stock_count"`
	TotalStockUnits     int             `json:"total_stock_units"`
	ByCategory          map[string]int  `json:"by_category"`
}
