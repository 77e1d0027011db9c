package repository

import (
	"context"
	"time"

	"github.com/jhoicas/taller-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// ProjectFilter filtros conjuntivos para listar proyectos.
type ProjectFilter struct {
	Search     string // título + descripción
	Difficulty entity.Difficulty
	Category   entity.ProjectCategory
	Status     entity.ProjectStatus
	MinHours   *decimal.Decimal
	MaxHours   *decimal.Decimal
	MinCost    *decimal.Decimal
	MaxCost    *decimal.Decimal
	Limit      int
	Offset     int
}

// ProjectRepository define el puerto de persistencia para Project.
// Las lecturas no llenan Materials; eso lo hace ProjectMaterialRepository.
type ProjectRepository interface {
	Create(ctx context.Context, p *entity.Project) error
	GetByID(ctx context.Context, id string) (*entity.Project, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Project, error)
	List(ctx context.Context, f ProjectFilter) ([]*entity.Project, int, error)
	ListByStatus(ctx context.Context, status entity.ProjectStatus) ([]*entity.Project, error)
	Update(ctx context.Context, p *entity.Project) error
	UpdateEstimatedCost(ctx context.Context, id string, cost decimal.Decimal, updatedAt time.Time) error
	// Delete devuelve false si el proyecto no existía.
	Delete(ctx context.Context, id string) (bool, error)
	Stats(ctx context.Context) (*entity.ProjectStats, error)
}

// ProjectMaterialRepository puerto de las líneas de material de un proyecto.
type ProjectMaterialRepository interface {
	CreateBatch(ctx context.Context, lines []*entity.ProjectMaterial) error
	ListByProject(ctx context.Context, projectID string) ([]*entity.ProjectMaterial, error)
	// ListByProjects agrupa las líneas de varios proyectos en una sola consulta.
	ListByProjects(ctx context.Context, projectIDs []string) (map[string][]*entity.ProjectMaterial, error)
	UpdatePrice(ctx context.Context, line *entity.ProjectMaterial) error
	DeleteByProject(ctx context.Context, projectID string) error
}
