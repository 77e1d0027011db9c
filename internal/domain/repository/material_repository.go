package repository

import (
	"context"
	"time"

	"github.com/jhoicas/taller-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// MaterialFilter filtros conjuntivos para listar materiales activos.
// Limit <= 0 significa sin límite (exportaciones).
type MaterialFilter struct {
	Search   string // nombre + descripción
	Category entity.MaterialCategory
	Unit     entity.Unit
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	HasStock bool // stock_quantity > 0
	LowStock bool // 0 < stock_quantity <= min_stock_level
	Supplier string
	Limit    int
	Offset   int
}

// MaterialRepository define el puerto de persistencia para Material (DIP).
// GetByID devuelve (nil, nil) si no existe; incluye materiales inactivos.
type MaterialRepository interface {
	Create(ctx context.Context, m *entity.Material) error
	GetByID(ctx context.Context, id string) (*entity.Material, error)
	// GetForUpdate bloquea la fila (SELECT FOR UPDATE); solo tiene efecto dentro de una tx.
	GetForUpdate(ctx context.Context, id string) (*entity.Material, error)
	// List devuelve la página y el total de coincidencias (independiente de la paginación).
	List(ctx context.Context, f MaterialFilter) ([]*entity.Material, int, error)
	// Update persiste los campos editables. No toca stock_quantity (se maneja vía ajustes).
	Update(ctx context.Context, m *entity.Material) error
	UpdateStock(ctx context.Context, id string, quantity int, updatedAt time.Time) error
	SetActive(ctx context.Context, id string, active bool, updatedAt time.Time) error
	// GetPricing devuelve precio y disponibilidad de los ids activos; los demás no aparecen.
	GetPricing(ctx context.Context, ids []string) (map[string]entity.MaterialPricing, error)
	Stats(ctx context.Context) (*entity.MaterialStats, error)
}
