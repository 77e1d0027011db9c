package spreadsheet

import (
	"bytes"
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/taller-api/internal/domain/entity"
)

func TestExportMaterials(t *testing.T) {
	materials := []*entity.Material{
		{
			ID: "m-1", Name: "Tabla de pino", Category: entity.CategoryWood, Unit: entity.UnitPiece,
			PricePerUnit: decimal.RequireFromString("12.99"), StockQuantity: 3, MinStockLevel: 5,
			Supplier: entity.Supplier{Name: "Maderas SA", SKU: "TP-01"}, Tags: entity.Tags{"pino", "tabla"},
		},
		{
			ID: "m-2", Name: "Tornillos", Category: entity.CategoryHardware, Unit: entity.UnitBox,
			PricePerUnit: decimal.RequireFromString("4.50"), StockQuantity: 10,
		},
	}

	out, err := NewExcelMaterialExporter().ExportMaterials(context.Background(), materials)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 4) // encabezado + 2 materiales + totales

	assert.Equal(t, "Nombre", rows[0][1])
	assert.Equal(t, "Tabla de pino", rows[1][1])
	assert.Equal(t, "sí", rows[1][7])
	assert.Equal(t, "pino, tabla", rows[1][11])
	assert.Equal(t, "no", rows[2][7])
	assert.Equal(t, "Total", rows[3][0])

	total, err := f.GetCellValue(SheetName, "I4", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "83.97", total)
}

func TestExportMaterials_Empty(t *testing.T) {
	out, err := NewExcelMaterialExporter().ExportMaterials(context.Background(), nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}
