package postgres

import (
	"fmt"
	"strings"

	"github.com/jhoicas/taller-api/internal/domain/entity"
)

// column asocia una columna con el campo de la entidad que la alimenta.
// Las tablas de abajo son la única fuente del mapeo campo→columna para los UPDATE.
type column[T any] struct {
	name  string
	value func(*T) any
}

// materialEditable columnas que Update escribe. stock_quantity e is_active quedan fuera:
// solo cambian vía UpdateStock/SetActive.
var materialEditable = []column[entity.Material]{
	{"name", func(m *entity.Material) any { return m.Name }},
	{"description", func(m *entity.Material) any { return m.Description }},
	{"category", func(m *entity.Material) any { return string(m.Category) }},
	{"unit", func(m *entity.Material) any { return string(m.Unit) }},
	{"price_per_unit", func(m *entity.Material) any { return m.PricePerUnit }},
	{"min_stock_level", func(m *entity.Material) any { return m.MinStockLevel }},
	{"supplier", func(m *entity.Material) any { return m.Supplier }},
	{"specifications", func(m *entity.Material) any { return specificationsOrEmpty(m.Specifications) }},
	{"tags", func(m *entity.Material) any { return stringsOrEmpty(m.Tags) }},
	{"updated_at", func(m *entity.Material) any { return m.UpdatedAt }},
}

// projectEditable columnas que Update escribe. created_at nunca cambia.
var projectEditable = []column[entity.Project]{
	{"title", func(p *entity.Project) any { return p.Title }},
	{"description", func(p *entity.Project) any { return p.Description }},
	{"difficulty", func(p *entity.Project) any { return string(p.Difficulty) }},
	{"category", func(p *entity.Project) any { return string(p.Category) }},
	{"estimated_hours", func(p *entity.Project) any { return p.EstimatedHours }},
	{"estimated_cost", func(p *entity.Project) any { return p.EstimatedCost }},
	{"actual_cost", func(p *entity.Project) any { return p.ActualCost }},
	{"status", func(p *entity.Project) any { return string(p.Status) }},
	{"instructions", func(p *entity.Project) any { return stringsOrEmpty(p.Instructions) }},
	{"image_urls", func(p *entity.Project) any { return stringsOrEmpty(p.ImageURLs) }},
	{"tags", func(p *entity.Project) any { return stringsOrEmpty(p.Tags) }},
	{"updated_at", func(p *entity.Project) any { return p.UpdatedAt }},
	{"completed_at", func(p *entity.Project) any { return p.CompletedAt }},
}

// updateStatement arma "UPDATE table SET c1 = $2, ... WHERE id = $1" y sus argumentos.
func updateStatement[T any](table string, cols []column[T], id string, v *T) (string, []any) {
	sets := make([]string, 0, len(cols))
	args := make([]any, 0, len(cols)+1)
	args = append(args, id)
	for i, c := range cols {
		sets = append(sets, fmt.Sprintf("%s = $%d", c.name, i+2))
		args = append(args, c.value(v))
	}
	return fmt.Sprintf("UPDATE %s SET %s WHERE id = $1", table, strings.Join(sets, ", ")), args
}

func specificationsOrEmpty(s entity.Specifications) entity.Specifications {
	if s == nil {
		return entity.Specifications{}
	}
	return s
}

// stringsOrEmpty evita NULL en columnas TEXT[] NOT NULL.
func stringsOrEmpty[S ~[]string](s S) []string {
	if s == nil {
		return []string{}
	}
	return []string(s)
}
