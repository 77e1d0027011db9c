package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Material representa un insumo comprable del catálogo.
// El stock solo cambia vía ajustes (StockAdjustment); nunca se borra físicamente, se desactiva.
type Material struct {
	ID             string
	Name           string
	Description    string
	Category       MaterialCategory
	Unit           Unit
	PricePerUnit   decimal.Decimal // >= 0
	StockQuantity  int             // >= 0
	MinStockLevel  int             // umbral de stock bajo
	Supplier       Supplier
	Specifications Specifications
	Tags           Tags
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Supplier datos del proveedor (JSONB en materials.supplier).
type Supplier struct {
	Name string `json:"name,omitempty"`
	SKU  string `json:"sku,omitempty"`
	URL  string `json:"url,omitempty"`
}

// Specifications atributos libres clave→valor (JSONB en materials.specifications).
type Specifications map[string]string

// InStock indica si hay al menos una unidad disponible.
func (m *Material) InStock() bool { return m.StockQuantity > 0 }

// IsLowStock: 0 < stock <= mínimo. Un material agotado no cuenta como stock bajo.
func (m *Material) IsLowStock() bool {
	return m.StockQuantity > 0 && m.StockQuantity <= m.MinStockLevel
}

// InventoryValue precio × stock.
func (m *Material) InventoryValue() decimal.Decimal {
	return m.PricePerUnit.Mul(decimal.NewFromInt(int64(m.StockQuantity)))
}

// Pricing proyección usada por el libro de proyectos.
func (m *Material) Pricing() MaterialPricing {
	return MaterialPricing{
		MaterialID:        m.ID,
		Price:             m.PricePerUnit,
		InStock:           m.InStock(),
		AvailableQuantity: m.StockQuantity,
	}
}

// MaterialPricing respuesta de la consulta interna de precios.
// Un id ausente del mapa significa "material desconocido", nunca costo cero.
type MaterialPricing struct {
	MaterialID        string
	Price             decimal.Decimal
	InStock           bool
	AvailableQuantity int
}

// Reservation descuento de stock solicitado por un proyecto.
type Reservation struct {
	MaterialID string
	Quantity   int
	Reason     string
}

// MaterialStats agregados del catálogo (solo materiales activos).
type MaterialStats struct {
	TotalMaterials      int
	TotalInventoryValue decimal.Decimal
	LowStockCount       int
	OutOfStockCount     int
	TotalStockUnits     int
	ByCategory          map[MaterialCategory]int
}
