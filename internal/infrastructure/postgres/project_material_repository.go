package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/taller-api/internal/domain"
	"github.com/jhoicas/taller-api/internal/domain/entity"
	"github.com/jhoicas/taller-api/internal/domain/repository"
)

var _ repository.ProjectMaterialRepository = (*ProjectMaterialRepo)(nil)

// Las lecturas traen nombre y unidad actuales del material solo para mostrar;
// los precios son los guardados en la línea.
const projectMaterialSelect = `
	SELECT pm.id, pm.project_id, pm.material_id, pm.quantity, pm.unit_price, pm.total_price, pm.notes,
		COALESCE(m.name, ''), COALESCE(m.unit, '')
	FROM project_materials pm
	LEFT JOIN materials m ON m.id = pm.material_id`

// ProjectMaterialRepo líneas de material de los proyectos.
type ProjectMaterialRepo struct {
	q Querier
}

// NewProjectMaterialRepository construye el adaptador. Pasar pool o tx (Querier).
func NewProjectMaterialRepository(q Querier) *ProjectMaterialRepo {
	return &ProjectMaterialRepo{q: q}
}

// CreateBatch inserta todas las líneas en un solo round-trip (pgx.Batch). position conserva el orden.
func (r *ProjectMaterialRepo) CreateBatch(ctx context.Context, lines []*entity.ProjectMaterial) error {
	if len(lines) == 0 {
		return nil
	}
	query := `
		INSERT INTO project_materials (id, project_id, material_id, quantity, unit_price, total_price, notes, position)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	batch := &pgx.Batch{}
	for i, l := range lines {
		if l.ID == "" {
			l.ID = uuid.New().String()
		}
		batch.Queue(query, l.ID, l.ProjectID, l.MaterialID, l.Quantity, l.UnitPrice, l.TotalPrice, l.Notes, i)
	}
	br := r.q.SendBatch(ctx, batch)
	defer br.Close()
	for range lines {
		if _, err := br.Exec(); err != nil {
			return translateError("insert project material", err)
		}
	}
	return nil
}

// ListByProject líneas de un proyecto en el orden en que se cargaron.
func (r *ProjectMaterialRepo) ListByProject(ctx context.Context, projectID string) ([]*entity.ProjectMaterial, error) {
	if !validID(projectID) {
		return []*entity.ProjectMaterial{}, nil
	}
	rows, err := r.q.Query(ctx, projectMaterialSelect+` WHERE pm.project_id = $1 ORDER BY pm.position, pm.id`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list project materials: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.ProjectMaterial, 0)
	for rows.Next() {
		l, err := scanProjectMaterial(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, l)
	}
	return list, rows.Err()
}

// ListByProjects líneas de varios proyectos en una sola consulta, agrupadas por proyecto.
func (r *ProjectMaterialRepo) ListByProjects(ctx context.Context, projectIDs []string) (map[string][]*entity.ProjectMaterial, error) {
	out := make(map[string][]*entity.ProjectMaterial, len(projectIDs))
	valid := validIDs(projectIDs)
	if len(valid) == 0 {
		return out, nil
	}
	rows, err := r.q.Query(ctx,
		projectMaterialSelect+` WHERE pm.project_id = ANY($1::uuid[]) ORDER BY pm.project_id, pm.position, pm.id`,
		valid,
	)
	if err != nil {
		return nil, fmt.Errorf("list project materials: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		l, err := scanProjectMaterial(rows)
		if err != nil {
			return nil, err
		}
		out[l.ProjectID] = append(out[l.ProjectID], l)
	}
	return out, rows.Err()
}

// UpdatePrice sobrescribe precio unitario y total de la línea.
func (r *ProjectMaterialRepo) UpdatePrice(ctx context.Context, line *entity.ProjectMaterial) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE project_materials SET unit_price = $2, total_price = $3 WHERE id = $1`,
		line.ID, line.UnitPrice, line.TotalPrice,
	)
	if err != nil {
		return translateError("update project material price", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteByProject elimina todas las líneas del proyecto.
func (r *ProjectMaterialRepo) DeleteByProject(ctx context.Context, projectID string) error {
	if !validID(projectID) {
		return nil
	}
	if _, err := r.q.Exec(ctx, `DELETE FROM project_materials WHERE project_id = $1`, projectID); err != nil {
		return fmt.Errorf("delete project materials: %w", err)
	}
	return nil
}

func scanProjectMaterial(row pgx.Row) (*entity.ProjectMaterial, error) {
	var (
		l    entity.ProjectMaterial
		unit string
	)
	if err := row.Scan(&l.ID, &l.ProjectID, &l.MaterialID, &l.Quantity, &l.UnitPrice, &l.TotalPrice, &l.Notes,
		&l.MaterialName, &unit); err != nil {
		return nil, fmt.Errorf("scan project material: %w", err)
	}
	l.MaterialUnit = entity.Unit(unit)
	return &l, nil
}
