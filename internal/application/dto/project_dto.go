package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProjectMaterialInput línea solicitada para un proyecto.
type ProjectMaterialInput struct {
	MaterialID string `json:"material_id"`
	Quantity   int    `json:"quantity"`
	Notes      string `json:"notes"`
}

// CreateProjectRequest entrada para crear un proyecto. Los precios los fija el catálogo.
type CreateProjectRequest struct {
	Title          string                 `json:"title" validate:"required,min=1,max=200"`
	Description    string                 `json:"description"`
	Difficulty     string                 `json:"difficulty" validate:"required"`
	Category       string                 `json:"category" validate:"required"`
	EstimatedHours decimal.Decimal        `json:"estimated_hours"`
	ActualCost     *decimal.Decimal       `json:"actual_cost"`
	Status         string                 `json:"status"`
	Instructions   []string               `json:"instructions"`
	ImageURLs      []string               `json:"image_urls"`
	Tags           []string               `json:"tags"`
	Materials      []ProjectMaterialInput `json:"materials"`
}

// UpdateProjectRequest entrada parcial. Si Materials está presente reemplaza todas las líneas.
type UpdateProjectRequest struct {
	Title          *string                 `json:"title" validate:"omitempty,min=1,max=200"`
	Description    *string                 `json:"description"`
	Difficulty     *string                 `json:"difficulty"`
	Category       *string                 `json:"category"`
	EstimatedHours *decimal.Decimal        `json:"estimated_hours"`
	ActualCost     *decimal.Decimal        `json:"actual_cost"`
	Status         *string                 `json:"status"`
	Instructions   *[]string               `json:"instructions"`
	ImageURLs      *[]string               `json:"image_urls"`
	Tags           *[]string               `json:"tags"`
	Materials      *[]ProjectMaterialInput `json:"materials"`
}

// IsEmpty indica que no se envió ningún campo.
func (r UpdateProjectRequest) IsEmpty() bool {
	return r.Title == nil && r.Description == nil && r.Difficulty == nil && r.Category == nil &&
		r.EstimatedHours == nil && r.ActualCost == nil && r.Status == nil &&
		r.Instructions == nil && r.ImageURLs == nil && r.Tags == nil && r.Materials == nil
}

// ProjectMaterialResponse línea de material con precios capturados.
type ProjectMaterialResponse struct {
	ID           string          `json:"id"`
	MaterialID   string          `json:"material_id"`
	MaterialName string          `json:"material_name,omitempty"`
	Unit         string          `json:"unit,omitempty"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	TotalPrice   decimal.Decimal `json:"total_price"`
	Notes        string          `json:"notes"`
}

// ProjectResponse salida de un proyecto sin líneas (listados).
type ProjectResponse struct {
	ID             string           `json:"id"`
	Title          string           `json:"title"`
	Description    string           `json:"description"`
	Difficulty     string           `json:"difficulty"`
	Category       string           `json:"category"`
	EstimatedHours decimal.Decimal  `json:"estimated_hours"`
	EstimatedCost  decimal.Decimal  `json:"estimated_cost"`
	ActualCost     *decimal.Decimal `json:"actual_cost"`
	Status         string           `json:"status"`
	Instructions   []string         `json:"instructions"`
	ImageURLs      []string         `json:"image_urls"`
	Tags           []string         `json:"tags"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
	CompletedAt    *time.Time       `json:"completed_at"`
}

// ProjectDetailResponse proyecto con sus líneas de material.
type ProjectDetailResponse struct {
	ProjectResponse
	Materials []ProjectMaterialResponse `json:"materials"`
}

// ProjectListResponse lista paginada de proyectos (sin líneas).
type ProjectListResponse struct {
	Items []ProjectResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// ProjectStatsResponse agregados del libro de proyectos.
type ProjectStatsResponse struct {
	TotalProjects          int             `json:"total_projects"`
	AverageCompletionHours decimal.Decimal `json:"average_completion_hours"`
	TotalEstimatedCost     decimal.Decimal `json:"total_estimated_cost"`
	TotalActualCost        decimal.Decimal `json:"total_actual_cost"`
	ByDifficulty           map[string]int  `json:"by_difficulty"`
	ByStatus               map[string]int  `json:"by_status"`
	ByCategory             map[string]int  `json:"by_category"`
}
