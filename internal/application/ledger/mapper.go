package ledger

import (
	"github.com/jhoicas/taller-api/internal/application/dto"
	"github.com/jhoicas/taller-api/internal/domain/entity"
)

func toProjectResponse(p *entity.Project) dto.ProjectResponse {
	return dto.ProjectResponse{
		ID:             p.ID,
		Title:          p.Title,
		Description:    p.Description,
		Difficulty:     string(p.Difficulty),
		Category:       string(p.Category),
		EstimatedHours: p.EstimatedHours,
		EstimatedCost:  p.EstimatedCost,
		ActualCost:     p.ActualCost,
		Status:         string(p.Status),
		Instructions:   nonNil(p.Instructions),
		ImageURLs:      nonNil(p.ImageURLs),
		Tags:           nonNil(p.Tags),
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
		CompletedAt:    p.CompletedAt,
	}
}

func toProjectDetail(p *entity.Project) *dto.ProjectDetailResponse {
	out := &dto.ProjectDetailResponse{
		ProjectResponse: toProjectResponse(p),
		Materials:       make([]dto.ProjectMaterialResponse, 0, len(p.Materials)),
	}
	for _, l := range p.Materials {
		out.Materials = append(out.Materials, dto.ProjectMaterialResponse{
			ID:           l.ID,
			MaterialID:   l.MaterialID,
			MaterialName: l.MaterialName,
			Unit:         string(l.MaterialUnit),
			Quantity:     l.Quantity,
			UnitPrice:    l.UnitPrice,
			TotalPrice:   l.TotalPrice,
			Notes:        l.Notes,
		})
	}
	return out
}

func nonNil[T ~[]string](in T) []string {
	if in == nil {
		return []string{}
	}
	return []string(in)
}
