// Package spreadsheet exporta el catálogo de materiales a xlsx con excelize.
package spreadsheet

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/taller-api/internal/application/catalog"
	"github.com/jhoicas/taller-api/internal/domain/entity"
)

var _ catalog.MaterialExporter = (*ExcelMaterialExporter)(nil)

// SheetName hoja donde se escribe el catálogo.
const SheetName = "Materiales"

var materialHeaders = []string{
	"ID", "Nombre", "Categoría", "Unidad", "Precio unitario", "Stock", "Stock mínimo",
	"Stock bajo", "Valor inventario", "Proveedor", "SKU proveedor", "Etiquetas",
}

// ExcelMaterialExporter implementa catalog.MaterialExporter.
type ExcelMaterialExporter struct{}

// NewExcelMaterialExporter construye el exportador.
func NewExcelMaterialExporter() *ExcelMaterialExporter { return &ExcelMaterialExporter{} }

// ExportMaterials escribe una fila por material más una fila de totales y devuelve el xlsx.
func (e *ExcelMaterialExporter) ExportMaterials(_ context.Context, materials []*entity.Material) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, fmt.Errorf("xlsx: renombrar hoja: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true, Size: 11},
		Fill:   excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9EAD3"}},
		Border: []excelize.Border{{Type: "bottom", Color: "000000", Style: 1}},
	})
	if err != nil {
		return nil, fmt.Errorf("xlsx: estilo: %w", err)
	}
	moneyStyle, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		return nil, fmt.Errorf("xlsx: estilo: %w", err)
	}

	for i, h := range materialHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(SheetName, cell, h); err != nil {
			return nil, fmt.Errorf("xlsx: encabezado: %w", err)
		}
	}
	lastCol, _ := excelize.ColumnNumberToName(len(materialHeaders))
	_ = f.SetCellStyle(SheetName, "A1", lastCol+"1", headerStyle)

	totalValue := decimal.Zero
	for i, m := range materials {
		r := i + 2
		price, _ := m.PricePerUnit.Float64()
		value, _ := m.InventoryValue().Float64()
		totalValue = totalValue.Add(m.InventoryValue())
		lowStock := "no"
		if m.IsLowStock() {
			lowStock = "sí"
		}
		values := []any{
			m.ID, m.Name, string(m.Category), string(m.Unit), price, m.StockQuantity, m.MinStockLevel,
			lowStock, value, m.Supplier.Name, m.Supplier.SKU, strings.Join(m.Tags, ", "),
		}
		cell, _ := excelize.CoordinatesToCellName(1, r)
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return nil, fmt.Errorf("xlsx: fila %d: %w", r, err)
		}
		_ = f.SetCellStyle(SheetName, fmt.Sprintf("E%d", r), fmt.Sprintf("E%d", r), moneyStyle)
		_ = f.SetCellStyle(SheetName, fmt.Sprintf("I%d", r), fmt.Sprintf("I%d", r), moneyStyle)
	}

	summary := len(materials) + 2
	_ = f.SetCellValue(SheetName, fmt.Sprintf("A%d", summary), "Total")
	_ = f.SetCellValue(SheetName, fmt.Sprintf("B%d", summary), fmt.Sprintf("%d materiales", len(materials)))
	total, _ := totalValue.Float64()
	_ = f.SetCellValue(SheetName, fmt.Sprintf("I%d", summary), total)
	boldStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}, NumFmt: 4})
	_ = f.SetCellStyle(SheetName, fmt.Sprintf("A%d", summary), fmt.Sprintf("%s%d", lastCol, summary), boldStyle)

	widths := []float64{38, 28, 12, 14, 14, 8, 12, 10, 16, 20, 16, 30}
	for i, w := range widths {
		c, _ := excelize.ColumnNumberToName(i + 1)
		_ = f.SetColWidth(SheetName, c, c, w)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx: escribir: %w", err)
	}
	return buf.Bytes(), nil
}
