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
	"github.com/shopspring/decimal"
)

var _ repository.ProjectRepository = (*ProjectRepo)(nil)

const projectColumns = `id, title, description, difficulty, category, estimated_hours, estimated_cost,
	actual_cost, status, instructions, image_urls, tags, created_at, updated_at, completed_at`

// ProjectRepo implementación del puerto ProjectRepository sobre PostgreSQL.
type ProjectRepo struct {
	q Querier
}

// NewProjectRepository construye el adaptador. Pasar pool o tx (Querier).
func NewProjectRepository(q Querier) *ProjectRepo {
	return &ProjectRepo{q: q}
}

// Create persiste el proyecto (sin líneas).
func (r *ProjectRepo) Create(ctx context.Context, p *entity.Project) error {
	query := `
		INSERT INTO projects (` + projectColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.Title, p.Description, string(p.Difficulty), string(p.Category), p.EstimatedHours,
		p.EstimatedCost, p.ActualCost, string(p.Status), stringsOrEmpty(p.Instructions),
		stringsOrEmpty(p.ImageURLs), stringsOrEmpty(p.Tags), p.CreatedAt, p.UpdatedAt, p.CompletedAt,
	)
	if err != nil {
		return translateError("insert project", err)
	}
	return nil
}

// GetByID obtiene un proyecto. (nil, nil) si no existe.
func (r *ProjectRepo) GetByID(ctx context.Context, id string) (*entity.Project, error) {
	return r.get(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = $1`, id)
}

// GetForUpdate bloquea la fila del proyecto hasta el fin de la transacción.
func (r *ProjectRepo) GetForUpdate(ctx context.Context, id string) (*entity.Project, error) {
	return r.get(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = $1 FOR UPDATE`, id)
}

func (r *ProjectRepo) get(ctx context.Context, query, id string) (*entity.Project, error) {
	if !validID(id) {
		return nil, nil
	}
	p, err := scanProject(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get project: %w", err)
	}
	return p, nil
}

// List lista proyectos filtrados, más recientes primero.
func (r *ProjectRepo) List(ctx context.Context, f repository.ProjectFilter) ([]*entity.Project, int, error) {
	var c conditions
	if f.Search != "" {
		c.add("(title ILIKE $%[1]d OR description ILIKE $%[1]d)", likePattern(f.Search))
	}
	if f.Difficulty != "" {
		c.add("difficulty = $%d", string(f.Difficulty))
	}
	if f.Category != "" {
		c.add("category = $%d", string(f.Category))
	}
	if f.Status != "" {
		c.add("status = $%d", string(f.Status))
	}
	if f.MinHours != nil {
		c.add("estimated_hours >= $%d", *f.MinHours)
	}
	if f.MaxHours != nil {
		c.add("estimated_hours <= $%d", *f.MaxHours)
	}
	if f.MinCost != nil {
		c.add("estimated_cost >= $%d", *f.MinCost)
	}
	if f.MaxCost != nil {
		c.add("estimated_cost <= $%d", *f.MaxCost)
	}

	where := c.where()
	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM projects`+where, c.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count projects: %w", err)
	}
	query := `SELECT ` + projectColumns + ` FROM projects` + where + ` ORDER BY created_at DESC, id DESC` + c.page(f.Limit, f.Offset)
	list, err := r.query(ctx, query, c.args...)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// ListByStatus todos los proyectos en el estado dado, sin paginar.
func (r *ProjectRepo) ListByStatus(ctx context.Context, status entity.ProjectStatus) ([]*entity.Project, error) {
	return r.query(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE status = $1 ORDER BY created_at DESC, id DESC`,
		string(status),
	)
}

func (r *ProjectRepo) query(ctx context.Context, query string, args ...any) ([]*entity.Project, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.Project, 0)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// Update escribe las columnas editables (ver projectEditable).
func (r *ProjectRepo) Update(ctx context.Context, p *entity.Project) error {
	query, args := updateStatement("projects", projectEditable, p.ID, p)
	cmd, err := r.q.Exec(ctx, query, args...)
	if err != nil {
		return translateError("update project", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateEstimatedCost actualiza solo el costo estimado (recálculo de precios).
func (r *ProjectRepo) UpdateEstimatedCost(ctx context.Context, id string, cost decimal.Decimal, updatedAt time.Time) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE projects SET estimated_cost = $2, updated_at = $3 WHERE id = $1`,
		id, cost, updatedAt,
	)
	if err != nil {
		return translateError("update project cost", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina el proyecto. false si no existía.
func (r *ProjectRepo) Delete(ctx context.Context, id string) (bool, error) {
	if !validID(id) {
		return false, nil
	}
	cmd, err := r.q.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete project: %w", err)
	}
	return cmd.RowsAffected() > 0, nil
}

// Stats agregados de todos los proyectos.
func (r *ProjectRepo) Stats(ctx context.Context) (*entity.ProjectStats, error) {
	query := `
		SELECT COUNT(*),
			COALESCE(AVG(EXTRACT(EPOCH FROM (completed_at - created_at))::numeric / 3600)
				FILTER (WHERE status = 'completed' AND completed_at IS NOT NULL), 0),
			COALESCE(SUM(estimated_cost), 0),
			COALESCE(SUM(actual_cost), 0)
		FROM projects`
	stats := &entity.ProjectStats{
		ByDifficulty: map[entity.Difficulty]int{},
		ByStatus:     map[entity.ProjectStatus]int{},
		ByCategory:   map[entity.ProjectCategory]int{},
	}
	err := r.q.QueryRow(ctx, query).Scan(
		&stats.TotalProjects, &stats.AverageCompletionHours, &stats.TotalEstimatedCost, &stats.TotalActualCost,
	)
	if err != nil {
		return nil, fmt.Errorf("project stats: %w", err)
	}

	byDifficulty, err := countBy(ctx, r.q, `SELECT difficulty, COUNT(*) FROM projects GROUP BY difficulty`)
	if err != nil {
		return nil, fmt.Errorf("project stats by difficulty: %w", err)
	}
	for k, n := range byDifficulty {
		stats.ByDifficulty[entity.Difficulty(k)] = n
	}
	byStatus, err := countBy(ctx, r.q, `SELECT status, COUNT(*) FROM projects GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("project stats by status: %w", err)
	}
	for k, n := range byStatus {
		stats.ByStatus[entity.ProjectStatus(k)] = n
	}
	byCategory, err := countBy(ctx, r.q, `SELECT category, COUNT(*) FROM projects GROUP BY category`)
	if err != nil {
		return nil, fmt.Errorf("project stats by category: %w", err)
	}
	for k, n := range byCategory {
		stats.ByCategory[entity.ProjectCategory(k)] = n
	}
	return stats, nil
}

func scanProject(row pgx.Row) (*entity.Project, error) {
	var (
		p                             entity.Project
		difficulty, category, status  string
		instructions, imageURLs, tags []string
	)
	err := row.Scan(
		&p.ID, &p.Title, &p.Description, &difficulty, &category, &p.EstimatedHours, &p.EstimatedCost,
		&p.ActualCost, &status, &instructions, &imageURLs, &tags, &p.CreatedAt, &p.UpdatedAt, &p.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Difficulty = entity.Difficulty(difficulty)
	p.Category = entity.ProjectCategory(category)
	p.Status = entity.ProjectStatus(status)
	p.Instructions = stringsOrEmpty(instructions)
	p.ImageURLs = stringsOrEmpty(imageURLs)
	p.Tags = entity.Tags(stringsOrEmpty(tags))
	return &p, nil
}
