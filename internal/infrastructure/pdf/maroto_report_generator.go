// Package pdf genera la lista de materiales (bill of materials) de un proyecto.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Título del proyecto      │  Estado + Fecha          │
//	│  Dificultad / Categoría / Horas estimadas                    │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Cant | Material | Unidad | P.Unit | Total            │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Costo estimado / Costo real                        │
//	│  INSTRUCCIONES numeradas                                     │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/taller-api/internal/application/ledger"
	"github.com/jhoicas/taller-api/internal/domain/entity"
)

var _ ledger.ReportGenerator = (*MarotoReportGenerator)(nil)

var (
	colorPrimary = &props.Color{Red: 46, Green: 94, Blue: 62}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// MarotoReportGenerator implementa ledger.ReportGenerator usando Maroto v2.
type MarotoReportGenerator struct {
	now func() time.Time
}

// NewMarotoReportGenerator construye el generador.
func NewMarotoReportGenerator() *MarotoReportGenerator {
	return &MarotoReportGenerator{now: time.Now}
}

// GenerateProjectReport genera el PDF y devuelve sus bytes.
func (g *MarotoReportGenerator) GenerateProjectReport(_ context.Context, project *entity.Project) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Lista de materiales: "+project.Title, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(project, g.now()))
	m.AddRows(summaryRow(project))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	m.AddRows(tableHeaderRow())
	m.AddRows(materialRows(project.Materials)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(project))

	if len(project.Instructions) > 0 {
		m.AddRows(line.NewRow(3))
		m.AddRows(instructionRows(project.Instructions)...)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// headerRow: título (izq) y estado + fecha de emisión (der).
func headerRow(p *entity.Project, now time.Time) core.Row {
	return row.New(16).Add(
		col.New(8).Add(
			text.New(p.Title, props.Text{Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1}),
		),
		col.New(4).Add(
			text.New("LISTA DE MATERIALES", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New("Estado: "+string(p.Status), props.Text{Size: 8, Align: align.Right, Top: 6}),
			text.New("Emitido: "+now.Format("02/01/2006"), props.Text{
				Size: 8, Align: align.Right, Top: 11, Color: colorGray,
			}),
		),
	)
}

func summaryRow(p *entity.Project) core.Row {
	return row.New(10).Add(
		col.New(12).Add(
			text.New(fmt.Sprintf("Dificultad: %s   |   Categoría: %s   |   Horas estimadas: %s",
				p.Difficulty, p.Category, p.EstimatedHours.StringFixed(1),
			), props.Text{Size: 8, Top: 2, Color: colorGray}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Cant.", 1, align.Center),
		h("Material", 5, align.Left),
		h("Unidad", 2, align.Left),
		h("Precio Unit.", 2, align.Right),
		h("Total", 2, align.Right),
	)
}

// materialRows: una fila por línea; usa el precio guardado en la línea, no el actual.
func materialRows(lines []*entity.ProjectMaterial) []core.Row {
	if len(lines) == 0 {
		return []core.Row{row.New(7).Add(col.New(12).Add(
			text.New("Sin materiales asignados", props.Text{Size: 8, Align: align.Center, Top: 1, Color: colorGray}),
		))}
	}
	result := make([]core.Row, 0, len(lines))
	for _, l := range lines {
		name := nonEmpty(l.MaterialName, l.MaterialID)
		if l.Notes != "" {
			name += " (" + l.Notes + ")"
		}
		result = append(result, row.New(7).Add(
			col.New(1).Add(text.New(fmt.Sprint(l.Quantity), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(5).Add(text.New(name, props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1})),
			col.New(2).Add(text.New(nonEmpty(string(l.MaterialUnit), "-"), props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(2).Add(text.New(formatMoney(l.UnitPrice), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(2).Add(text.New(formatMoney(l.TotalPrice), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return result
}

func totalsRow(p *entity.Project) core.Row {
	actual := "-"
	if p.ActualCost != nil {
		actual = formatMoney(*p.ActualCost)
	}
	label := func(s string) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2})
	}
	value := func(s string, top float64) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1, Top: top})
	}
	return row.New(14).Add(
		col.New(6),
		col.New(3).Add(
			label("Costo estimado:"),
			text.New("Costo real:", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2, Top: 6}),
		),
		col.New(3).Add(
			value(formatMoney(p.EstimatedCost), 0),
			value(actual, 6),
		),
	)
}

func instructionRows(steps []string) []core.Row {
	rows := []core.Row{row.New(6).Add(col.New(12).Add(
		text.New("INSTRUCCIONES", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
	))}
	for i, s := range steps {
		rows = append(rows, row.New(6).Add(col.New(12).Add(
			text.New(fmt.Sprintf("%d. %s", i+1, strings.TrimSpace(s)), props.Text{Size: 8, Top: 1, Left: 2}),
		)))
	}
	return rows
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// formatMoney "$1.234,50": puntos de miles y coma decimal.
func formatMoney(d decimal.Decimal) string {
	s := d.StringFixed(2)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, _ := strings.Cut(s, ".")
	n := len(intPart)
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(intPart) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return sign + "$" + string(buf) + "," + frac
}
