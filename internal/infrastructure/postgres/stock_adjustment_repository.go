package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jhoicas/taller-api/internal/domain/entity"
	"github.com/jhoicas/taller-api/internal/domain/repository"
)

var _ repository.StockAdjustmentRepository = (*StockAdjustmentRepo)(nil)

// StockAdjustmentRepo log de auditoría de stock. Solo inserta y lee.
type StockAdjustmentRepo struct {
	q Querier
}

// NewStockAdjustmentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockAdjustmentRepository(q Querier) *StockAdjustmentRepo {
	return &StockAdjustmentRepo{q: q}
}

// Create inserta el registro. Asigna ID si viene vacío.
func (r *StockAdjustmentRepo) Create(ctx context.Context, adj *entity.StockAdjustment) error {
	if adj.ID == "" {
		adj.ID = uuid.New().String()
	}
	query := `
		INSERT INTO stock_adjustments (id, material_id, quantity_before, quantity_change, quantity_after, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query,
		adj.ID, adj.MaterialID, adj.QuantityBefore, adj.QuantityChange, adj.QuantityAfter, adj.Reason, adj.CreatedAt,
	)
	if err != nil {
		return translateError("insert stock adjustment", err)
	}
	return nil
}

// ListByMaterial últimos `limit` ajustes del material, más recientes primero.
func (r *StockAdjustmentRepo) ListByMaterial(ctx context.Context, materialID string, limit int) ([]*entity.StockAdjustment, error) {
	list := make([]*entity.StockAdjustment, 0)
	if !validID(materialID) {
		return list, nil
	}
	query := `
		SELECT id, material_id, quantity_before, quantity_change, quantity_after, reason, created_at
		FROM stock_adjustments WHERE material_id = $1
		ORDER BY created_at DESC, seq DESC LIMIT $2`
	rows, err := r.q.Query(ctx, query, materialID, limit)
	if err != nil {
		return nil, fmt.Errorf("list stock adjustments: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var a entity.StockAdjustment
		if err := rows.Scan(&a.ID, &a.MaterialID, &a.QuantityBefore, &a.QuantityChange, &a.QuantityAfter, &a.Reason, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan stock adjustment: %w", err)
		}
		list = append(list, &a)
	}
	return list, rows.Err()
}
