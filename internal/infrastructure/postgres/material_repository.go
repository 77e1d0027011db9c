package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/taller-api/internal/domain"
	"github.com/jhoicas/taller-api/internal/domain/entity"
	"github.com/jhoicas/taller-api/internal/domain/repository"
)

var _ repository.MaterialRepository = (*MaterialRepo)(nil)

const materialColumns = `id, name, description, category, unit, price_per_unit, stock_quantity,
	min_stock_level, supplier, specifications, tags, is_active, created_at, updated_at`

// MaterialRepo implementación del puerto MaterialRepository sobre PostgreSQL (usable con pool o tx).
type MaterialRepo struct {
	q Querier
}

// NewMaterialRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMaterialRepository(q Querier) *MaterialRepo {
	return &MaterialRepo{q: q}
}

// Create persiste un nuevo material.
func (r *MaterialRepo) Create(ctx context.Context, m *entity.Material) error {
	query := `
		INSERT INTO materials (` + materialColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.Name, m.Description, string(m.Category), string(m.Unit), m.PricePerUnit,
		m.StockQuantity, m.MinStockLevel, m.Supplier, specificationsOrEmpty(m.Specifications),
		stringsOrEmpty(m.Tags), m.IsActive, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		return translateError("insert material", err)
	}
	return nil
}

// GetByID obtiene un material por ID (activo o no). (nil, nil) si no existe.
func (r *MaterialRepo) GetByID(ctx context.Context, id string) (*entity.Material, error) {
	return r.get(ctx, `SELECT `+materialColumns+` FROM materials WHERE id = $1`, id)
}

// GetForUpdate igual que GetByID pero bloquea la fila hasta el fin de la transacción.
func (r *MaterialRepo) GetForUpdate(ctx context.Context, id string) (*entity.Material, error) {
	return r.get(ctx, `SELECT `+materialColumns+` FROM materials WHERE id = $1 FOR UPDATE`, id)
}

func (r *MaterialRepo) get(ctx context.Context, query, id string) (*entity.Material, error) {
	if !validID(id) {
		return nil, nil
	}
	m, err := scanMaterial(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get material: %w", err)
	}
	return m, nil
}

// List lista materiales activos filtrados, ORDER BY name. El total ignora la paginación.
func (r *MaterialRepo) List(ctx context.Context, f repository.MaterialFilter) ([]*entity.Material, int, error) {
	var c conditions
	c.raw("is_active")
	if f.Search != "" {
		c.add("(name ILIKE $%[1]d OR description ILIKE $%[1]d)", likePattern(f.Search))
	}
	if f.Category != "" {
		c.add("category = $%d", string(f.Category))
	}
	if f.Unit != "" {
		c.add("unit = $%d", string(f.Unit))
	}
	if f.MinPrice != nil {
		c.add("price_per_unit >= $%d", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		c.add("price_per_unit <= $%d", *f.MaxPrice)
	}
	if f.HasStock {
		c.raw("stock_quantity > 0")
	}
	if f.LowStock {
		c.raw("stock_quantity > 0 AND stock_quantity <= min_stock_level")
	}
	if f.Supplier != "" {
		c.add("supplier->>'name' ILIKE $%d", likePattern(f.Supplier))
	}

	where := c.where()
	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM materials`+where, c.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count materials: %w", err)
	}

	query := `SELECT ` + materialColumns + ` FROM materials` + where + ` ORDER BY name ASC, id ASC` + c.page(f.Limit, f.Offset)
	rows, err := r.q.Query(ctx, query, c.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list materials: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.Material, 0)
	for rows.Next() {
		m, err := scanMaterial(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan material: %w", err)
		}
		list = append(list, m)
	}
	return list, total, rows.Err()
}

// Update actualiza las columnas editables (ver materialEditable). No toca el stock.
func (r *MaterialRepo) Update(ctx context.Context, m *entity.Material) error {
	query, args := updateStatement("materials", materialEditable, m.ID, m)
	cmd, err := r.q.Exec(ctx, query, args...)
	if err != nil {
		return translateError("update material", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateStock fija la cantidad en stock (usado por ajustes y reservas, con la fila ya bloqueada).
func (r *MaterialRepo) UpdateStock(ctx context.Context, id string, quantity int, updatedAt time.Time) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE materials SET stock_quantity = $2, updated_at = $3 WHERE id = $1`,
		id, quantity, updatedAt,
	)
	if err != nil {
		return translateError("update material stock", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SetActive activa o desactiva el material.
func (r *MaterialRepo) SetActive(ctx context.Context, id string, active bool, updatedAt time.Time) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE materials SET is_active = $2, updated_at = $3 WHERE id = $1`,
		id, active, updatedAt,
	)
	if err != nil {
		return translateError("set material active", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetPricing precio y disponibilidad de los materiales activos pedidos, en una sola consulta.
func (r *MaterialRepo) GetPricing(ctx context.Context, ids []string) (map[string]entity.MaterialPricing, error) {
	out := make(map[string]entity.MaterialPricing, len(ids))
	valid := validIDs(ids)
	if len(valid) == 0 {
		return out, nil
	}
	rows, err := r.q.Query(ctx,
		`SELECT id, price_per_unit, stock_quantity FROM materials WHERE id = ANY($1::uuid[]) AND is_active`,
		valid,
	)
	if err != nil {
		return nil, fmt.Errorf("get material pricing: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var p entity.MaterialPricing
		if err := rows.Scan(&p.MaterialID, &p.Price, &p.AvailableQuantity); err != nil {
			return nil, fmt.Errorf("scan material pricing: %w", err)
		}
		p.InStock = p.AvailableQuantity > 0
		out[p.MaterialID] = p
	}
	return out, rows.Err()
}

// Stats agregados de los materiales activos.
func (r *MaterialRepo) Stats(ctx context.Context) (*entity.MaterialStats, error) {
	query := `
		SELECT COUNT(*),
			COALESCE(SUM(price_per_unit * stock_quantity), 0),
			COUNT(*) FILTER (WHERE stock_quantity > 0 AND stock_quantity <= min_stock_level),
			COUNT(*) FILTER (WHERE stock_quantity = 0),
			COALESCE(SUM(stock_quantity), 0)
		FROM materials WHERE is_active`
	stats := &entity.MaterialStats{ByCategory: map[entity.MaterialCategory]int{}}
	err := r.q.QueryRow(ctx, query).Scan(
		&stats.TotalMaterials, &stats.TotalInventoryValue, &stats.LowStockCount,
		&stats.OutOfStockCount, &stats.TotalStockUnits,
	)
	if err != nil {
		return nil, fmt.Errorf("material stats: %w", err)
	}
	counts, err := countBy(ctx, r.q, `SELECT category, COUNT(*) FROM materials WHERE is_active GROUP BY category`)
	if err != nil {
		return nil, fmt.Errorf("material stats by category: %w", err)
	}
	for k, n := range counts {
		stats.ByCategory[entity.MaterialCategory(k)] = n
	}
	return stats, nil
}

func scanMaterial(row pgx.Row) (*entity.Material, error) {
	var (
		m              entity.Material
		category, unit string
		tags           []string
	)
	err := row.Scan(
		&m.ID, &m.Name, &m.Description, &category, &unit, &m.PricePerUnit, &m.StockQuantity,
		&m.MinStockLevel, &m.Supplier, &m.Specifications, &tags, &m.IsActive, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	m.Category = entity.MaterialCategory(category)
	m.Unit = entity.Unit(unit)
	m.Tags = entity.Tags(tags)
	if m.Tags == nil {
		m.Tags = entity.Tags{}
	}
	return &m, nil
}

// countBy ejecuta un "SELECT clave, COUNT(*) ... GROUP BY clave".
func countBy(ctx context.Context, q Querier, query string, args ...any) (map[string]int, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[string]int{}
	for rows.Next() {
		var (
			key string
			n   int
		)
		if err := rows.Scan(&key, &n); err != nil {
			return nil, err
		}
		out[key] = n
	}
	return out, rows.Err()
}
