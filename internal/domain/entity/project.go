package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Project proyecto DIY con sus líneas de materiales.
// EstimatedCost es derivado: Σ cantidad × precio unitario capturado en cada línea.
type Project struct {
	ID             string
	Title          string
	Description    string
	Difficulty     Difficulty
	Category       ProjectCategory
	EstimatedHours decimal.Decimal
	EstimatedCost  decimal.Decimal
	ActualCost     *decimal.Decimal
	Status         ProjectStatus
	Instructions   []string
	ImageURLs      []string
	Tags           Tags
	CreatedAt      time.Time
	UpdatedAt      time.Time
	CompletedAt    *time.Time

	// Materials solo se llena en lecturas individuales (Get); los listados no lo incluyen.
	Materials []*ProjectMaterial
}

// SetStatus cambia el estado. Pasar a completed sella CompletedAt; salir de completed lo limpia.
func (p *Project) SetStatus(status ProjectStatus, now time.Time) {
	if status == StatusCompleted && p.Status != StatusCompleted {
		t := now
		p.CompletedAt = &t
	}
	if status != StatusCompleted {
		p.CompletedAt = nil
	}
	p.Status = status
}

// ProjectMaterial línea de material de un proyecto. UnitPrice y TotalPrice son una
// foto del precio al crear o recalcular, no un join en vivo.
type ProjectMaterial struct {
	ID         string
	ProjectID  string
	MaterialID string
	Quantity   int // > 0
	UnitPrice  decimal.Decimal
	TotalPrice decimal.Decimal
	Notes      string

	// Solo lectura: nombre y unidad actuales del material (LEFT JOIN).
	MaterialName string
	MaterialUnit Unit
}

// ProjectStats agregados del libro de proyectos.
type ProjectStats struct {
	TotalProjects          int
	AverageCompletionHours decimal.Decimal
	TotalEstimatedCost     decimal.Decimal
	TotalActualCost        decimal.Decimal
	ByDifficulty           map[Difficulty]int
	ByStatus               map[ProjectStatus]int
	ByCategory             map[ProjectCategory]int
}
