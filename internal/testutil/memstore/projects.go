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
	_ repository.ProjectRepository         = (*ProjectRepo)(nil)
	_ repository.ProjectMaterialRepository = (*LineRepo)(nil)
)

// ProjectRepo repositorio de proyectos en memoria.
type ProjectRepo struct{ s *Store }

func (r *ProjectRepo) Create(_ context.Context, p *entity.Project) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("projects.Create"); err != nil {
		return err
	}
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if _, ok := r.s.data.projects[p.ID]; ok {
		return domain.ErrInvalidInput
	}
	r.s.data.seq++
	r.s.data.projects[p.ID] = cloneProject(*p)
	r.s.data.projectSeq[p.ID] = r.s.data.seq
	return nil
}

func (r *ProjectRepo) GetByID(_ context.Context, id string) (*entity.Project, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.data.projects[id]
	if !ok {
		return nil, nil
	}
	out := cloneProject(p)
	return &out, nil
}

func (r *ProjectRepo) GetForUpdate(ctx context.Context, id string) (*entity.Project, error) {
	return r.GetByID(ctx, id)
}

func (r *ProjectRepo) List(_ context.Context, f repository.ProjectFilter) ([]*entity.Project, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	search := strings.ToLower(strings.TrimSpace(f.Search))

	var matched []*entity.Project
	for _, p := range r.s.data.projects {
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Title), search) &&
			!strings.Contains(strings.ToLower(p.Description), search) {
			continue
		}
		if f.Difficulty != "" && p.Difficulty != f.Difficulty {
			continue
		}
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		if !inRange(p.EstimatedHours, f.MinHours, f.MaxHours) || !inRange(p.EstimatedCost, f.MinCost, f.MaxCost) {
			continue
		}
		c := cloneProject(p)
		matched = append(matched, &c)
	}
	r.sortNewestFirst(matched)
	return paginate(matched, f.Limit, f.Offset), len(matched), nil
}

func (r *ProjectRepo) ListByStatus(_ context.Context, status entity.ProjectStatus) ([]*entity.Project, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Project
	for _, p := range r.s.data.projects {
		if p.Status == status {
			c := cloneProject(p)
			out = append(out, &c)
		}
	}
	r.sortNewestFirst(out)
	return out, nil
}

func (r *ProjectRepo) Update(_ context.Context, p *entity.Project) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("projects.Update"); err != nil {
		return err
	}
	current, ok := r.s.data.projects[p.ID]
	if !ok {
		return domain.ErrNotFound
	}
	updated := cloneProject(*p)
	updated.CreatedAt = current.CreatedAt
	r.s.data.projects[p.ID] = updated
	return nil
}

func (r *ProjectRepo) UpdateEstimatedCost(_ context.Context, id string, cost decimal.Decimal, updatedAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.data.projects[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.EstimatedCost = cost
	p.UpdatedAt = updatedAt
	r.s.data.projects[id] = p
	return nil
}

func (r *ProjectRepo) Delete(_ context.Context, id string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.projects[id]; !ok {
		return false, nil
	}
	delete(r.s.data.projects, id)
	delete(r.s.data.projectSeq, id)
	return true, nil
}

func (r *ProjectRepo) Stats(_ context.Context) (*entity.ProjectStats, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stats := &entity.ProjectStats{
		AverageCompletionHours: decimal.Zero,
		TotalEstimatedCost:     decimal.Zero,
		TotalActualCost:        decimal.Zero,
		ByDifficulty:           map[entity.Difficulty]int{},
		ByStatus:               map[entity.ProjectStatus]int{},
		ByCategory:             map[entity.ProjectCategory]int{},
	}
	var (
		completed int64
		hours     = decimal.Zero
	)
	for _, p := range r.s.data.projects {
		stats.TotalProjects++
		stats.TotalEstimatedCost = stats.TotalEstimatedCost.Add(p.EstimatedCost)
		if p.ActualCost != nil {
			stats.TotalActualCost = stats.TotalActualCost.Add(*p.ActualCost)
		}
		stats.ByDifficulty[p.Difficulty]++
		stats.ByStatus[p.Status]++
		stats.ByCategory[p.Category]++
		if p.Status == entity.StatusCompleted && p.CompletedAt != nil {
			completed++
			hours = hours.Add(decimal.NewFromFloat(p.CompletedAt.Sub(p.CreatedAt).Hours()))
		}
	}
	if completed > 0 {
		stats.AverageCompletionHours = hours.Div(decimal.NewFromInt(completed))
	}
	return stats, nil
}

// sortNewestFirst ordena por created_at desc; a igual fecha gana el insertado después.
func (r *ProjectRepo) sortNewestFirst(list []*entity.Project) {
	seq := r.s.data.projectSeq
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return seq[list[i].ID] > seq[list[j].ID]
	})
}

func inRange(v decimal.Decimal, lo, hi *decimal.Decimal) bool {
	if lo != nil && v.LessThan(*lo) {
		return false
	}
	if hi != nil && v.GreaterThan(*hi) {
		return false
	}
	return true
}

// LineRepo líneas de material en memoria. Las lecturas completan nombre y unidad
// del material como lo haría el LEFT JOIN.
type LineRepo struct{ s *Store }

func (r *LineRepo) CreateBatch(_ context.Context, lines []*entity.ProjectMaterial) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("lines.CreateBatch"); err != nil {
		return err
	}
	for _, l := range lines {
		if _, ok := r.s.data.projects[l.ProjectID]; !ok {
			return domain.ErrInvalidInput
		}
		if l.Quantity <= 0 {
			return domain.ErrInvalidInput
		}
		if l.ID == "" {
			l.ID = uuid.New().String()
		}
	}
	for _, l := range lines {
		r.s.data.lines = append(r.s.data.lines, *l)
	}
	return nil
}

func (r *LineRepo) ListByProject(_ context.Context, projectID string) ([]*entity.ProjectMaterial, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*entity.ProjectMaterial, 0)
	for _, l := range r.s.data.lines {
		if l.ProjectID == projectID {
			out = append(out, r.joined(l))
		}
	}
	return out, nil
}

func (r *LineRepo) ListByProjects(_ context.Context, projectIDs []string) (map[string][]*entity.ProjectMaterial, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	wanted := make(map[string]struct{}, len(projectIDs))
	for _, id := range projectIDs {
		wanted[id] = struct{}{}
	}
	out := make(map[string][]*entity.ProjectMaterial, len(projectIDs))
	for _, l := range r.s.data.lines {
		if _, ok := wanted[l.ProjectID]; ok {
			out[l.ProjectID] = append(out[l.ProjectID], r.joined(l))
		}
	}
	return out, nil
}

func (r *LineRepo) UpdatePrice(_ context.Context, line *entity.ProjectMaterial) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("lines.UpdatePrice"); err != nil {
		return err
	}
	for i := range r.s.data.lines {
		if r.s.data.lines[i].ID == line.ID {
			r.s.data.lines[i].UnitPrice = line.UnitPrice
			r.s.data.lines[i].TotalPrice = line.TotalPrice
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *LineRepo) DeleteByProject(_ context.Context, projectID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	kept := make([]entity.ProjectMaterial, 0, len(r.s.data.lines))
	for _, l := range r.s.data.lines {
		if l.ProjectID != projectID {
			kept = append(kept, l)
		}
	}
	r.s.data.lines = kept
	return nil
}

// joined debe llamarse con s.mu tomado.
func (r *LineRepo) joined(l entity.ProjectMaterial) *entity.ProjectMaterial {
	if m, ok := r.s.data.materials[l.MaterialID]; ok {
		l.MaterialName = m.Name
		l.MaterialUnit = m.Unit
	}
	return &l
}
