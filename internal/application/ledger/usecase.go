package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/taller-api/internal/application/dto"
	"github.com/jhoicas/taller-api/internal/domain"
	"github.com/jhoicas/taller-api/internal/domain/entity"
	"github.com/jhoicas/taller-api/internal/domain/inventory"
	"github.com/jhoicas/taller-api/internal/domain/repository"
)

// ProjectUseCase casos de uso del libro de proyectos. Precios y reservas pasan siempre
// por el puerto MaterialCatalog; las operaciones de varias sentencias corren en una sola transacción.
type ProjectUseCase struct {
	txRunner       TxRunner
	catalog        MaterialCatalog
	projectRepo    repository.ProjectRepository
	lineRepo       repository.ProjectMaterialRepository
	report         ReportGenerator
	catalogTimeout time.Duration
}

// NewProjectUseCase construye el caso de uso. catalogTimeout <= 0 desactiva el límite por llamada.
func NewProjectUseCase(
	txRunner TxRunner,
	catalog MaterialCatalog,
	projectRepo repository.ProjectRepository,
	lineRepo repository.ProjectMaterialRepository,
	report ReportGenerator,
	catalogTimeout time.Duration,
) *ProjectUseCase {
	return &ProjectUseCase{
		txRunner:       txRunner,
		catalog:        catalog,
		projectRepo:    projectRepo,
		lineRepo:       lineRepo,
		report:         report,
		catalogTimeout: catalogTimeout,
	}
}

// Create cotiza cada línea en el catálogo, calcula el costo estimado y guarda proyecto y líneas
// en una transacción. ErrMaterialNotFound si algún material no está en el catálogo.
func (uc *ProjectUseCase) Create(ctx context.Context, in dto.CreateProjectRequest) (*dto.ProjectDetailResponse, error) {
	if err := validateCreate(in); err != nil {
		return nil, err
	}
	now := time.Now()
	project := &entity.Project{
		ID:             uuid.New().String(),
		Title:          strings.TrimSpace(in.Title),
		Description:    in.Description,
		Difficulty:     entity.Difficulty(in.Difficulty),
		Category:       entity.ProjectCategory(in.Category),
		EstimatedHours: in.EstimatedHours,
		ActualCost:     in.ActualCost,
		Status:         entity.StatusPlanning,
		Instructions:   stringList(in.Instructions),
		ImageURLs:      stringList(in.ImageURLs),
		Tags:           entity.NormalizeTags(in.Tags),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if in.Status != "" {
		project.SetStatus(entity.ProjectStatus(in.Status), now)
	}

	lines, err := uc.priceLines(ctx, project.ID, in.Materials)
	if err != nil {
		return nil, err
	}
	if err := checkLineCosts(lines); err != nil {
		return nil, err
	}
	project.EstimatedCost = inventory.EstimatedCost(lines)

	err = uc.txRunner.RunLedger(ctx, func(
		_ repository.MaterialRepository,
		_ repository.StockAdjustmentRepository,
		projectRepo repository.ProjectRepository,
		lineRepo repository.ProjectMaterialRepository,
	) error {
		if err := projectRepo.Create(ctx, project); err != nil {
			return err
		}
		if len(lines) == 0 {
			return nil
		}
		return lineRepo.CreateBatch(ctx, lines)
	})
	if err != nil {
		return nil, err
	}
	return uc.GetByID(ctx, project.ID)
}

// GetByID obtiene el proyecto con sus líneas de material.
func (uc *ProjectUseCase) GetByID(ctx context.Context, id string) (*dto.ProjectDetailResponse, error) {
	project, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return toProjectDetail(project), nil
}

// List lista proyectos filtrados, más recientes primero. No incluye líneas de material.
func (uc *ProjectUseCase) List(ctx context.Context, f repository.ProjectFilter) (*dto.ProjectListResponse, error) {
	if err := validateFilter(f); err != nil {
		return nil, err
	}
	page := dto.PageRequest{Limit: f.Limit, Offset: f.Offset}
	page.DefaultPage()
	f.Limit, f.Offset = page.Limit, page.Offset

	list, total, err := uc.projectRepo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProjectResponse, 0, len(list))
	for _, p := range list {
		items = append(items, toProjectResponse(p))
	}
	return &dto.ProjectListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: f.Limit, Offset: f.Offset, Total: total},
	}, nil
}

// Update aplica los campos presentes. Si Materials está presente es un reemplazo total:
// se recotiza cada línea, se recalcula el costo y se sustituyen todas las líneas, todo en
// la misma transacción que el resto de cambios.
func (uc *ProjectUseCase) Update(ctx context.Context, id string, in dto.UpdateProjectRequest) (*dto.ProjectDetailResponse, error) {
	if in.IsEmpty() {
		return nil, domain.ErrNoFieldsToUpdate
	}
	if err := validateUpdate(in); err != nil {
		return nil, err
	}
	existing, err := uc.projectRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, domain.ErrNotFound
	}

	var lines []*entity.ProjectMaterial
	if in.Materials != nil {
		if lines, err = uc.priceLines(ctx, id, *in.Materials); err != nil {
			return nil, err
		}
		if err := checkLineCosts(lines); err != nil {
			return nil, err
		}
	}

	err = uc.txRunner.RunLedger(ctx, func(
		_ repository.MaterialRepository,
		_ repository.StockAdjustmentRepository,
		projectRepo repository.ProjectRepository,
		lineRepo repository.ProjectMaterialRepository,
	) error {
		project, err := projectRepo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if project == nil {
			return domain.ErrNotFound
		}
		now := time.Now()
		applyProjectPatch(project, in, now)
		if in.Materials != nil {
			if err := lineRepo.DeleteByProject(ctx, id); err != nil {
				return err
			}
			if len(lines) > 0 {
				if err := lineRepo.CreateBatch(ctx, lines); err != nil {
					return err
				}
			}
			project.EstimatedCost = inventory.EstimatedCost(lines)
		}
		project.UpdatedAt = now
		return projectRepo.Update(ctx, project)
	})
	if err != nil {
		return nil, err
	}
	return uc.GetByID(ctx, id)
}

// Delete elimina las líneas y luego el proyecto. Los materiales referenciados no cambian.
func (uc *ProjectUseCase) Delete(ctx context.Context, id string) error {
	return uc.txRunner.RunLedger(ctx, func(
		_ repository.MaterialRepository,
		_ repository.StockAdjustmentRepository,
		projectRepo repository.ProjectRepository,
		lineRepo repository.ProjectMaterialRepository,
	) error {
		if err := lineRepo.DeleteByProject(ctx, id); err != nil {
			return err
		}
		deleted, err := projectRepo.Delete(ctx, id)
		if err != nil {
			return err
		}
		if !deleted {
			return domain.ErrNotFound
		}
		return nil
	})
}

// Start reserva el stock de todas las líneas y pasa el proyecto a in_progress en una sola
// transacción: o se aplican todas las reservas y el cambio de estado, o nada.
// Solo parte de planning, así un reintento no reserva dos veces.
// ErrNoMaterials si el proyecto no tiene líneas.
func (uc *ProjectUseCase) Start(ctx context.Context, id string) (*dto.ProjectDetailResponse, error) {
	err := uc.txRunner.RunLedger(ctx, func(
		materialRepo repository.MaterialRepository,
		adjustmentRepo repository.StockAdjustmentRepository,
		projectRepo repository.ProjectRepository,
		lineRepo repository.ProjectMaterialRepository,
	) error {
		project, err := projectRepo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if project == nil {
			return domain.ErrNotFound
		}
		if project.Status != entity.StatusPlanning {
			return domain.Invalid("status", "solo se puede iniciar un proyecto en planning, estado actual: "+string(project.Status))
		}
		lines, err := lineRepo.ListByProject(ctx, id)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return domain.ErrNoMaterials
		}
		reason := fmt.Sprintf("reserva proyecto %s (%s)", project.Title, project.ID)
		items := make([]entity.Reservation, 0, len(lines))
		for _, l := range lines {
			items = append(items, entity.Reservation{MaterialID: l.MaterialID, Quantity: l.Quantity, Reason: reason})
		}
		now := time.Now()
		if err := uc.catalog.ReserveInTx(ctx, materialRepo, adjustmentRepo, items, now); err != nil {
			return err
		}
		project.SetStatus(entity.StatusInProgress, now)
		project.UpdatedAt = now
		return projectRepo.Update(ctx, project)
	})
	if err != nil {
		return nil, err
	}
	return uc.GetByID(ctx, id)
}

// RecalculateCost recotiza las líneas existentes con los precios actuales del catálogo y
// sobrescribe precios de línea y costo estimado. ErrMaterialNotFound si algún material ya no existe.
// Los precios se leen con los repos de la transacción: no pide una segunda conexión al pool.
func (uc *ProjectUseCase) RecalculateCost(ctx context.Context, id string) (*dto.ProjectDetailResponse, error) {
	err := uc.txRunner.RunLedger(ctx, func(
		materialRepo repository.MaterialRepository,
		_ repository.StockAdjustmentRepository,
		projectRepo repository.ProjectRepository,
		lineRepo repository.ProjectMaterialRepository,
	) error {
		project, err := projectRepo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if project == nil {
			return domain.ErrNotFound
		}
		lines, err := lineRepo.ListByProject(ctx, id)
		if err != nil {
			return err
		}
		ids := make([]string, 0, len(lines))
		for _, l := range lines {
			ids = append(ids, l.MaterialID)
		}
		pricing, err := uc.lookupPricingInTx(ctx, materialRepo, ids)
		if err != nil {
			return err
		}
		for _, l := range lines {
			p, ok := pricing[l.MaterialID]
			if !ok {
				return domain.NewMaterialError(l.MaterialID, domain.ErrMaterialNotFound)
			}
			inventory.PriceLine(l, p.Price)
		}
		if err := checkLineCosts(lines); err != nil {
			return err
		}
		for _, l := range lines {
			if err := lineRepo.UpdatePrice(ctx, l); err != nil {
				return err
			}
		}
		return projectRepo.UpdateEstimatedCost(ctx, id, inventory.EstimatedCost(lines), time.Now())
	})
	if err != nil {
		return nil, err
	}
	return uc.GetByID(ctx, id)
}

// GetStartable devuelve los proyectos en planning cuyas líneas están todas cubiertas por el
// stock disponible. Líneas y precios de todos los proyectos se consultan en una sola llamada.
func (uc *ProjectUseCase) GetStartable(ctx context.Context) ([]dto.ProjectDetailResponse, error) {
	projects, err := uc.projectRepo.ListByStatus(ctx, entity.StatusPlanning)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProjectDetailResponse, 0)
	if len(projects) == 0 {
		return out, nil
	}
	projectIDs := make([]string, 0, len(projects))
	for _, p := range projects {
		projectIDs = append(projectIDs, p.ID)
	}
	linesByProject, err := uc.lineRepo.ListByProjects(ctx, projectIDs)
	if err != nil {
		return nil, err
	}
	var materialIDs []string
	for _, lines := range linesByProject {
		for _, l := range lines {
			materialIDs = append(materialIDs, l.MaterialID)
		}
	}
	pricing, err := uc.lookupPricing(ctx, materialIDs)
	if err != nil {
		return nil, err
	}
	for _, p := range projects {
		lines := linesByProject[p.ID]
		if !inventory.Covered(lines, pricing) {
			continue
		}
		p.Materials = lines
		out = append(out, *toProjectDetail(p))
	}
	return out, nil
}

// Stats agregados del libro de proyectos. Todos los valores enumerados aparecen en los histogramas.
func (uc *ProjectUseCase) Stats(ctx context.Context) (*dto.ProjectStatsResponse, error) {
	stats, err := uc.projectRepo.Stats(ctx)
	if err != nil {
		return nil, err
	}
	out := &dto.ProjectStatsResponse{
		TotalProjects:          stats.TotalProjects,
		AverageCompletionHours: stats.AverageCompletionHours.Round(2),
		TotalEstimatedCost:     stats.TotalEstimatedCost,
		TotalActualCost:        stats.TotalActualCost,
		ByDifficulty:           make(map[string]int, len(entity.Difficulties)),
		ByStatus:               make(map[string]int, len(entity.ProjectStatuses)),
		ByCategory:             make(map[string]int, len(entity.ProjectCategories)),
	}
	for _, d := range entity.Difficulties {
		out.ByDifficulty[string(d)] = stats.ByDifficulty[d]
	}
	for _, s := range entity.ProjectStatuses {
		out.ByStatus[string(s)] = stats.ByStatus[s]
	}
	for _, c := range entity.ProjectCategories {
		out.ByCategory[string(c)] = stats.ByCategory[c]
	}
	return out, nil
}

// Report genera el PDF con la lista de materiales y devuelve bytes y nombre de archivo.
func (uc *ProjectUseCase) Report(ctx context.Context, id string) ([]byte, string, error) {
	project, err := uc.load(ctx, id)
	if err != nil {
		return nil, "", err
	}
	pdf, err := uc.report.GenerateProjectReport(ctx, project)
	if err != nil {
		return nil, "", err
	}
	return pdf, fmt.Sprintf("proyecto-%s.pdf", project.ID), nil
}

// load obtiene el proyecto con sus líneas. ErrNotFound si no existe.
func (uc *ProjectUseCase) load(ctx context.Context, id string) (*entity.Project, error) {
	project, err := uc.projectRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, domain.ErrNotFound
	}
	lines, err := uc.lineRepo.ListByProject(ctx, id)
	if err != nil {
		return nil, err
	}
	project.Materials = lines
	return project, nil
}

// priceLines construye las líneas del proyecto con el precio actual de cada material.
func (uc *ProjectUseCase) priceLines(ctx context.Context, projectID string, in []dto.ProjectMaterialInput) ([]*entity.ProjectMaterial, error) {
	if len(in) == 0 {
		return nil, nil
	}
	ids := make([]string, 0, len(in))
	for _, l := range in {
		ids = append(ids, l.MaterialID)
	}
	pricing, err := uc.lookupPricing(ctx, ids)
	if err != nil {
		return nil, err
	}
	lines := make([]*entity.ProjectMaterial, 0, len(in))
	for _, l := range in {
		p, ok := pricing[l.MaterialID]
		if !ok {
			return nil, domain.NewMaterialError(l.MaterialID, domain.ErrMaterialNotFound)
		}
		line := &entity.ProjectMaterial{
			ID:         uuid.New().String(),
			ProjectID:  projectID,
			MaterialID: l.MaterialID,
			Quantity:   l.Quantity,
			Notes:      strings.TrimSpace(l.Notes),
		}
		inventory.PriceLine(line, p.Price)
		lines = append(lines, line)
	}
	return lines, nil
}

// lookupPricing llama al catálogo con el timeout configurado. Cualquier fallo del puerto
// se reporta como ErrCatalogUnavailable, distinto de "material no encontrado".
func (uc *ProjectUseCase) lookupPricing(ctx context.Context, ids []string) (map[string]entity.MaterialPricing, error) {
	return uc.withCatalog(ctx, ids, uc.catalog.GetPricing)
}

// lookupPricingInTx igual que lookupPricing pero leyendo con el repo de la transacción en curso.
func (uc *ProjectUseCase) lookupPricingInTx(ctx context.Context, materialRepo repository.MaterialRepository, ids []string) (map[string]entity.MaterialPricing, error) {
	return uc.withCatalog(ctx, ids, func(ctx context.Context, ids []string) (map[string]entity.MaterialPricing, error) {
		return uc.catalog.GetPricingInTx(ctx, materialRepo, ids)
	})
}

func (uc *ProjectUseCase) withCatalog(
	ctx context.Context,
	ids []string,
	get func(ctx context.Context, ids []string) (map[string]entity.MaterialPricing, error),
) (map[string]entity.MaterialPricing, error) {
	if len(ids) == 0 {
		return map[string]entity.MaterialPricing{}, nil
	}
	if uc.catalogTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, uc.catalogTimeout)
		defer cancel()
	}
	pricing, err := get(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCatalogUnavailable, err)
	}
	return pricing, nil
}

func applyProjectPatch(p *entity.Project, in dto.UpdateProjectRequest, now time.Time) {
	if in.Title != nil {
		p.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Difficulty != nil {
		p.Difficulty = entity.Difficulty(*in.Difficulty)
	}
	if in.Category != nil {
		p.Category = entity.ProjectCategory(*in.Category)
	}
	if in.EstimatedHours != nil {
		p.EstimatedHours = *in.EstimatedHours
	}
	if in.ActualCost != nil {
		cost := *in.ActualCost
		p.ActualCost = &cost
	}
	if in.Status != nil {
		p.SetStatus(entity.ProjectStatus(*in.Status), now)
	}
	if in.Instructions != nil {
		p.Instructions = stringList(*in.Instructions)
	}
	if in.ImageURLs != nil {
		p.ImageURLs = stringList(*in.ImageURLs)
	}
	if in.Tags != nil {
		p.Tags = entity.NormalizeTags(*in.Tags)
	}
}
