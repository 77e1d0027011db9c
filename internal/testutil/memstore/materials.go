package memstore

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/taller-api/internal/domain"
	"github.com/jhoicas/taller-api/internal/domain/entity"
	"github.com/jhoicas/taller-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var (
	_ repository.MaterialRepository        = (*MaterialRepo)(nil)
	_ repository.StockAdjustmentRepository = (*AdjustmentRepo)(nil)
)

// MaterialRepo repositorio de materiales en memoria.
type MaterialRepo struct{ s *Store }

func (r *MaterialRepo) Create(_ context.Context, m *entity.Material) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("materials.Create"); err != nil {
		return err
	}
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if _, ok := r.s.data.materials[m.ID]; ok {
		return domain.ErrInvalidInput
	}
	r.s.data.materials[m.ID] = cloneMaterial(*m)
	return nil
}

func (r *MaterialRepo) GetByID(_ context.Context, id string) (*entity.Material, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.data.materials[id]
	if !ok {
		return nil, nil
	}
	out := cloneMaterial(m)
	return &out, nil
}

// GetForUpdate no necesita bloqueo propio: Store serializa las transacciones.
func (r *MaterialRepo) GetForUpdate(ctx context.Context, id string) (*entity.Material, error) {
	return r.GetByID(ctx, id)
}

func (r *MaterialRepo) List(_ context.Context, f repository.MaterialFilter) ([]*entity.Material, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	search := strings.ToLower(strings.TrimSpace(f.Search))
	supplier := strings.ToLower(strings.TrimSpace(f.Supplier))

	var matched []*entity.Material
	for _, m := range r.s.data.materials {
		if !m.IsActive {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(m.Name), search) &&
			!strings.Contains(strings.ToLower(m.Description), search) {
			continue
		}
		if f.Category != "" && m.Category != f.Category {
			continue
		}
		if f.Unit != "" && m.Unit != f.Unit {
			continue
		}
		if f.MinPrice != nil && m.PricePerUnit.LessThan(*f.MinPrice) {
			continue
		}
		if f.MaxPrice != nil && m.PricePerUnit.GreaterThan(*f.MaxPrice) {
			continue
		}
		if f.HasStock && !m.InStock() {
			continue
		}
		if f.LowStock && !m.IsLowStock() {
			continue
		}
		if supplier != "" && !strings.Contains(strings.ToLower(m.Supplier.Name), supplier) {
			continue
		}
		c := cloneMaterial(m)
		matched = append(matched, &c)
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].Name != matched[j].Name {
			return matched[i].Name < matched[j].Name
		}
		return matched[i].ID < matched[j].ID
	})
	return paginate(matched, f.Limit, f.Offset), len(matched), nil
}

func (r *MaterialRepo) Update(_ context.Context, m *entity.Material) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("materials.Update"); err != nil {
		return err
	}
	current, ok := r.s.data.materials[m.ID]
	if !ok {
		return domain.ErrNotFound
	}
	updated := cloneMaterial(*m)
	updated.StockQuantity = current.StockQuantity
	updated.IsActive = current.IsActive
	updated.CreatedAt = current.CreatedAt
	r.s.data.materials[m.ID] = updated
	return nil
}

func (r *MaterialRepo) UpdateStock(_ context.Context, id string, quantity int, updatedAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("materials.UpdateStock"); err != nil {
		return err
	}
	m, ok := r.s.data.materials[id]
	if !ok {
		return domain.ErrNotFound
	}
	if quantity < 0 {
		return domain.ErrInvalidInput
	}
	m.StockQuantity = quantity
	m.UpdatedAt = updatedAt
	r.s.data.materials[id] = m
	return nil
}

func (r *MaterialRepo) SetActive(_ context.Context, id string, active bool, updatedAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.data.materials[id]
	if !ok {
		return domain.ErrNotFound
	}
	m.IsActive = active
	m.UpdatedAt = updatedAt
	r.s.data.materials[id] = m
	return nil
}

func (r *MaterialRepo) GetPricing(_ context.Context, ids []string) (map[string]entity.MaterialPricing, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("materials.GetPricing"); err != nil {
		return nil, err
	}
	out := make(map[string]entity.MaterialPricing, len(ids))
	for _, id := range ids {
		m, ok := r.s.data.materials[id]
		if !ok || !m.IsActive {
			continue
		}
		out[id] = m.Pricing()
	}
	return out, nil
}

func (r *MaterialRepo) Stats(_ context.Context) (*entity.MaterialStats, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stats := &entity.MaterialStats{
		TotalInventoryValue: decimal.Zero,
		ByCategory:          map[entity.MaterialCategory]int{},
	}
	for _, m := range r.s.data.materials {
		if !m.IsActive {
			continue
		}
		stats.TotalMaterials++
		stats.TotalInventoryValue = stats.TotalInventoryValue.Add(m.InventoryValue())
		stats.TotalStockUnits += m.StockQuantity
		if m.IsLowStock() {
			stats.LowStockCount++
		}
		if !m.InStock() {
			stats.OutOfStockCount++
		}
		stats.ByCategory[m.Category]++
	}
	return stats, nil
}

// AdjustmentRepo log de ajustes en memoria.
type AdjustmentRepo struct{ s *Store }

func (r *AdjustmentRepo) Create(_ context.Context, adj *entity.StockAdjustment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("adjustments.Create"); err != nil {
		return err
	}
	if adj.ID == "" {
		adj.ID = uuid.New().String()
	}
	r.s.data.adjustments = append(r.s.data.adjustments, *adj)
	return nil
}

func (r *AdjustmentRepo) ListByMaterial(_ context.Context, materialID string, limit int) ([]*entity.StockAdjustment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.StockAdjustment
	for i := len(r.s.data.adjustments) - 1; i >= 0; i-- {
		a := r.s.data.adjustments[i]
		if a.MaterialID != materialID {
			continue
		}
		out = append(out, &a)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
