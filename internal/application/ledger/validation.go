package ledger

import (
	"strings"

	"github.com/jhoicas/taller-api/internal/application/dto"
	"github.com/jhoicas/taller-api/internal/domain"
	"github.com/jhoicas/taller-api/internal/domain/entity"
	"github.com/jhoicas/taller-api/internal/domain/inventory"
	"github.com/jhoicas/taller-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

func validateCreate(in dto.CreateProjectRequest) error {
	if strings.TrimSpace(in.Title) == "" {
		return domain.Invalid("title", "es requerido")
	}
	if err := validateDifficulty(in.Difficulty); err != nil {
		return err
	}
	if err := validateCategory(in.Category); err != nil {
		return err
	}
	if in.Status != "" {
		if err := validateStatus(in.Status); err != nil {
			return err
		}
	}
	if err := inventory.CheckHours("estimated_hours", in.EstimatedHours); err != nil {
		return err
	}
	if err := validateActualCost(in.ActualCost); err != nil {
		return err
	}
	return validateLines(in.Materials)
}

func validateUpdate(in dto.UpdateProjectRequest) error {
	if in.Title != nil && strings.TrimSpace(*in.Title) == "" {
		return domain.Invalid("title", "no puede estar vacío")
	}
	if in.Difficulty != nil {
		if err := validateDifficulty(*in.Difficulty); err != nil {
			return err
		}
	}
	if in.Category != nil {
		if err := validateCategory(*in.Category); err != nil {
			return err
		}
	}
	if in.Status != nil {
		if err := validateStatus(*in.Status); err != nil {
			return err
		}
	}
	if in.EstimatedHours != nil {
		if err := inventory.CheckHours("estimated_hours", *in.EstimatedHours); err != nil {
			return err
		}
	}
	if err := validateActualCost(in.ActualCost); err != nil {
		return err
	}
	if in.Materials != nil {
		return validateLines(*in.Materials)
	}
	return nil
}

func validateLines(lines []dto.ProjectMaterialInput) error {
	for _, l := range lines {
		if l.MaterialID == "" {
			return domain.Invalid("material_id", "es requerido")
		}
		if l.Quantity <= 0 {
			return domain.Invalid("quantity", "debe ser mayor que cero")
		}
		if err := inventory.CheckQuantity("quantity", l.Quantity); err != nil {
			return err
		}
	}
	return nil
}

// checkLineCosts rechaza líneas cuyo total o cuya suma no caben en NUMERIC(12,2).
func checkLineCosts(lines []*entity.ProjectMaterial) error {
	for _, l := range lines {
		if l.TotalPrice.GreaterThan(inventory.MaxMoney) {
			return domain.Invalid("quantity", "el total de la línea del material "+l.MaterialID+" excede el máximo permitido")
		}
	}
	if inventory.EstimatedCost(lines).GreaterThan(inventory.MaxMoney) {
		return domain.Invalid("materials", "el costo estimado excede el máximo permitido")
	}
	return nil
}

func validateActualCost(c *decimal.Decimal) error {
	if c == nil {
		return nil
	}
	return inventory.CheckMoney("actual_cost", *c)
}

func validateDifficulty(d string) error {
	if !entity.Difficulty(d).Valid() {
		return domain.Invalid("difficulty", "valor no permitido: "+d)
	}
	return nil
}

func validateCategory(c string) error {
	if !entity.ProjectCategory(c).Valid() {
		return domain.Invalid("category", "valor no permitido: "+c)
	}
	return nil
}

func validateStatus(s string) error {
	if !entity.ProjectStatus(s).Valid() {
		return domain.Invalid("status", "valor no permitido: "+s)
	}
	return nil
}

func validateFilter(f repository.ProjectFilter) error {
	if f.Difficulty != "" && !f.Difficulty.Valid() {
		return domain.Invalid("difficulty", "valor no permitido: "+string(f.Difficulty))
	}
	if f.Category != "" && !f.Category.Valid() {
		return domain.Invalid("category", "valor no permitido: "+string(f.Category))
	}
	if f.Status != "" && !f.Status.Valid() {
		return domain.Invalid("status", "valor no permitido: "+string(f.Status))
	}
	if f.MinHours != nil && f.MaxHours != nil && f.MinHours.GreaterThan(*f.MaxHours) {
		return domain.Invalid("min_hours", "mayor que max_hours")
	}
	if f.MinCost != nil && f.MaxCost != nil && f.MinCost.GreaterThan(*f.MaxCost) {
		return domain.Invalid("min_cost", "mayor que max_cost")
	}
	return nil
}

// stringList copia la lista descartando entradas vacías. Nunca devuelve nil.
func stringList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
