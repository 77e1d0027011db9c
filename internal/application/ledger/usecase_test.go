package ledger_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/taller-api/internal/application/catalog"
	"github.com/jhoicas/taller-api/internal/application/dto"
	"github.com/jhoicas/taller-api/internal/application/ledger"
	"github.com/jhoicas/taller-api/internal/domain"
	"github.com/jhoicas/taller-api/internal/domain/entity"
	"github.com/jhoicas/taller-api/internal/domain/inventory"
	"github.com/jhoicas/taller-api/internal/domain/repository"
	"github.com/jhoicas/taller-api/internal/infrastructure/pdf"
	"github.com/jhoicas/taller-api/internal/infrastructure/spreadsheet"
	"github.com/jhoicas/taller-api/internal/testutil/memstore"
)

var errBoom = errors.New("boom")

type fixture struct {
	store     *memstore.Store
	materials *catalog.MaterialUseCase
	projects  *ledger.ProjectUseCase
	wood      *dto.MaterialResponse // 12.99, stock 10
	glue      *dto.MaterialResponse // 17.00, stock 1
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memstore.New()
	materials := catalog.NewMaterialUseCase(store, store.Materials(), store.Adjustments(), spreadsheet.NewExcelMaterialExporter())
	f := &fixture{
		store:     store,
		materials: materials,
		projects:  ledger.NewProjectUseCase(store, materials, store.Projects(), store.Lines(), pdf.NewMarotoReportGenerator(), time.Second),
	}
	f.wood = f.material(t, "Tabla de pino", "12.99", 10)
	f.glue = f.material(t, "Cola vinílica", "17.00", 1)
	return f
}

func (f *fixture) material(t *testing.T, name, price string, stock int) *dto.MaterialResponse {
	t.Helper()
	m, err := f.materials.Create(context.Background(), dto.CreateMaterialRequest{
		Name:          name,
		Category:      string(entity.CategoryWood),
		Unit:          string(entity.UnitPiece),
		PricePerUnit:  decimal.RequireFromString(price),
		StockQuantity: stock,
	})
	require.NoError(t, err)
	return m
}

func (f *fixture) stock(t *testing.T, id string) int {
	t.Helper()
	m, err := f.materials.GetByID(context.Background(), id)
	require.NoError(t, err)
	return m.StockQuantity
}

func projectRequest(title string, lines ...dto.ProjectMaterialInput) dto.CreateProjectRequest {
	return dto.CreateProjectRequest{
		Title:          title,
		Difficulty:     string(entity.DifficultyBeginner),
		Category:       string(entity.ProjectWoodworking),
		EstimatedHours: decimal.NewFromInt(3),
		Materials:      lines,
	}
}

func line(materialID string, qty int) dto.ProjectMaterialInput {
	return dto.ProjectMaterialInput{MaterialID: materialID, Quantity: qty}
}

func TestCreate_CotizaLineasYCalculaCosto(t *testing.T) {
	f := newFixture(t)

	p, err := f.projects.Create(context.Background(), projectRequest("Repisa", line(f.wood.ID, 2), line(f.glue.ID, 1)))
	require.NoError(t, err)
	assert.Equal(t, string(entity.StatusPlanning), p.Status)
	assert.True(t, decimal.RequireFromString("42.98").Equal(p.EstimatedCost), p.EstimatedCost.String())
	require.Len(t, p.Materials, 2)
	assert.Equal(t, f.wood.ID, p.Materials[0].MaterialID)
	assert.True(t, decimal.RequireFromString("25.98").Equal(p.Materials[0].TotalPrice))
	assert.Equal(t, "Tabla de pino", p.Materials[0].MaterialName)
	assert.Nil(t, p.CompletedAt)
}

func TestCreate_MaterialDesconocidoNoPersiste(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.projects.Create(ctx, projectRequest("Mesa", line(f.wood.ID, 1), line("no-existe", 1)))
	require.ErrorIs(t, err, domain.ErrMaterialNotFound)
	var matErr *domain.MaterialError
	require.ErrorAs(t, err, &matErr)
	assert.Equal(t, "no-existe", matErr.MaterialID)

	list, err := f.projects.List(ctx, repository.ProjectFilter{})
	require.NoError(t, err)
	assert.Zero(t, list.Page.Total)
	assert.Zero(t, f.store.LineCount())
}

func TestCreate_FallaEnLineasRevierteProyecto(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.store.FailAfter("lines.CreateBatch", 0, errBoom)

	_, err := f.projects.Create(ctx, projectRequest("Mesa", line(f.wood.ID, 1)))
	require.ErrorIs(t, err, errBoom)

	list, err := f.projects.List(ctx, repository.ProjectFilter{})
	require.NoError(t, err)
	assert.Zero(t, list.Page.Total)
}

func TestCreate_Validacion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	bad := projectRequest("Mesa")
	bad.Difficulty = "facil"
	_, err := f.projects.Create(ctx, bad)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.projects.Create(ctx, projectRequest("Mesa", line(f.wood.ID, 0)))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.projects.Create(ctx, projectRequest("   "))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestUpdate_ReemplazaMaterialesYEstado(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p, err := f.projects.Create(ctx, projectRequest("Repisa", line(f.wood.ID, 2), line(f.glue.ID, 1)))
	require.NoError(t, err)

	replacement := []dto.ProjectMaterialInput{line(f.wood.ID, 3)}
	out, err := f.projects.Update(ctx, p.ID, dto.UpdateProjectRequest{Materials: &replacement})
	require.NoError(t, err)
	require.Len(t, out.Materials, 1)
	assert.Equal(t, 3, out.Materials[0].Quantity)
	assert.True(t, decimal.RequireFromString("38.97").Equal(out.EstimatedCost))
	assert.Equal(t, "Repisa", out.Title)
	assert.Equal(t, 1, f.store.LineCount())

	completed := string(entity.StatusCompleted)
	out, err = f.projects.Update(ctx, p.ID, dto.UpdateProjectRequest{Status: &completed})
	require.NoError(t, err)
	require.NotNil(t, out.CompletedAt)

	planning := string(entity.StatusPlanning)
	out, err = f.projects.Update(ctx, p.ID, dto.UpdateProjectRequest{Status: &planning})
	require.NoError(t, err)
	assert.Nil(t, out.CompletedAt)
}

func TestUpdate_ErroresNoModificanNada(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p, err := f.projects.Create(ctx, projectRequest("Repisa", line(f.wood.ID, 2)))
	require.NoError(t, err)

	_, err = f.projects.Update(ctx, p.ID, dto.UpdateProjectRequest{})
	assert.ErrorIs(t, err, domain.ErrNoFieldsToUpdate)

	title := "Otra"
	_, err = f.projects.Update(ctx, "no-existe", dto.UpdateProjectRequest{Title: &title})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	replacement := []dto.ProjectMaterialInput{line("desconocido", 1)}
	_, err = f.projects.Update(ctx, p.ID, dto.UpdateProjectRequest{Title: &title, Materials: &replacement})
	assert.ErrorIs(t, err, domain.ErrMaterialNotFound)

	f.store.FailAfter("projects.Update", 0, errBoom)
	replacement = []dto.ProjectMaterialInput{line(f.glue.ID, 1)}
	_, err = f.projects.Update(ctx, p.ID, dto.UpdateProjectRequest{Title: &title, Materials: &replacement})
	require.ErrorIs(t, err, errBoom)

	got, err := f.projects.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Repisa", got.Title)
	require.Len(t, got.Materials, 1)
	assert.Equal(t, f.wood.ID, got.Materials[0].MaterialID)
}

func TestDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p, err := f.projects.Create(ctx, projectRequest("Repisa", line(f.wood.ID, 2)))
	require.NoError(t, err)

	require.NoError(t, f.projects.Delete(ctx, p.ID))
	assert.Zero(t, f.store.LineCount())
	_, err = f.projects.GetByID(ctx, p.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, f.projects.Delete(ctx, p.ID), domain.ErrNotFound)
	assert.Equal(t, 10, f.stock(t, f.wood.ID))
}

func TestStart_ReservaYCambiaEstado(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p, err := f.projects.Create(ctx, projectRequest("Repisa", line(f.wood.ID, 2), line(f.glue.ID, 1)))
	require.NoError(t, err)

	out, err := f.projects.Start(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, string(entity.StatusInProgress), out.Status)
	assert.Equal(t, 8, f.stock(t, f.wood.ID))
	assert.Equal(t, 0, f.stock(t, f.glue.ID))

	adjustments := f.store.AdjustmentsFor(f.wood.ID)
	require.Len(t, adjustments, 2)
	last := adjustments[1]
	assert.Equal(t, -2, last.QuantityChange)
	assert.True(t, strings.Contains(last.Reason, "Repisa"), last.Reason)
}

func TestStart_SinMateriales(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p, err := f.projects.Create(ctx, projectRequest("Vacío"))
	require.NoError(t, err)

	_, err = f.projects.Start(ctx, p.ID)
	require.ErrorIs(t, err, domain.ErrNoMaterials)
	got, err := f.projects.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, string(entity.StatusPlanning), got.Status)

	_, err = f.projects.Start(ctx, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStart_StockInsuficienteRevierteTodo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p, err := f.projects.Create(ctx, projectRequest("Banco", line(f.wood.ID, 4), line(f.glue.ID, 2)))
	require.NoError(t, err)

	_, err = f.projects.Start(ctx, p.ID)
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	var matErr *domain.MaterialError
	require.ErrorAs(t, err, &matErr)
	assert.Equal(t, f.glue.ID, matErr.MaterialID)

	assert.Equal(t, 10, f.stock(t, f.wood.ID))
	assert.Equal(t, 1, f.stock(t, f.glue.ID))
	assert.Len(t, f.store.AdjustmentsFor(f.wood.ID), 1)
	got, err := f.projects.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, string(entity.StatusPlanning), got.Status)
}

func TestStart_FallaAlGuardarEstadoRevierteReservas(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p, err := f.projects.Create(ctx, projectRequest("Repisa", line(f.wood.ID, 2)))
	require.NoError(t, err)
	f.store.FailAfter("projects.Update", 0, errBoom)

	_, err = f.projects.Start(ctx, p.ID)
	require.ErrorIs(t, err, errBoom)
	assert.Equal(t, 10, f.stock(t, f.wood.ID))
	assert.Len(t, f.store.AdjustmentsFor(f.wood.ID), 1)
}

func TestRecalculateCost(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p, err := f.projects.Create(ctx, projectRequest("Repisa", line(f.wood.ID, 2), line(f.glue.ID, 1)))
	require.NoError(t, err)

	price := decimal.RequireFromString("15.00")
	_, err = f.materials.Update(ctx, f.wood.ID, dto.UpdateMaterialRequest{PricePerUnit: &price})
	require.NoError(t, err)

	out, err := f.projects.RecalculateCost(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("47").Equal(out.EstimatedCost), out.EstimatedCost.String())
	assert.True(t, price.Equal(out.Materials[0].UnitPrice))

	require.NoError(t, f.materials.Deactivate(ctx, f.glue.ID))
	_, err = f.projects.RecalculateCost(ctx, p.ID)
	require.ErrorIs(t, err, domain.ErrMaterialNotFound)

	got, err := f.projects.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("47").Equal(got.EstimatedCost), "un recálculo fallido no cambia precios")
}

func TestRecalculateCost_NoAfectaOtrosProyectos(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a, err := f.projects.Create(ctx, projectRequest("Repisa", line(f.wood.ID, 2)))
	require.NoError(t, err)
	b, err := f.projects.Create(ctx, projectRequest("Caja", line(f.wood.ID, 1)))
	require.NoError(t, err)

	price := decimal.RequireFromString("20.00")
	_, err = f.materials.Update(ctx, f.wood.ID, dto.UpdateMaterialRequest{PricePerUnit: &price})
	require.NoError(t, err)

	out, err := f.projects.RecalculateCost(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("40").Equal(out.EstimatedCost), out.EstimatedCost.String())

	other, err := f.projects.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("12.99").Equal(other.EstimatedCost), other.EstimatedCost.String())
	require.Len(t, other.Materials, 1)
	assert.True(t, decimal.RequireFromString("12.99").Equal(other.Materials[0].UnitPrice))
	assert.True(t, decimal.RequireFromString("12.99").Equal(other.Materials[0].TotalPrice))
}

func TestRecalculateCost_CotizaDentroDeLaTransaccion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p, err := f.projects.Create(ctx, projectRequest("Repisa", line(f.wood.ID, 2)))
	require.NoError(t, err)
	price := decimal.RequireFromString("15.00")
	_, err = f.materials.Update(ctx, f.wood.ID, dto.UpdateMaterialRequest{PricePerUnit: &price})
	require.NoError(t, err)

	uc := ledger.NewProjectUseCase(f.store, txOnlyCatalog{f.materials}, f.store.Projects(), f.store.Lines(), pdf.NewMarotoReportGenerator(), 0)
	out, err := uc.RecalculateCost(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("30").Equal(out.EstimatedCost), out.EstimatedCost.String())
}

func TestStart_SoloDesdePlanning(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p, err := f.projects.Create(ctx, projectRequest("Repisa", line(f.wood.ID, 2)))
	require.NoError(t, err)

	_, err = f.projects.Start(ctx, p.ID)
	require.NoError(t, err)
	_, err = f.projects.Start(ctx, p.ID)
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, 8, f.stock(t, f.wood.ID), "un reintento no reserva dos veces")
	assert.Len(t, f.store.AdjustmentsFor(f.wood.ID), 2)

	for _, status := range []entity.ProjectStatus{entity.StatusCompleted, entity.StatusCancelled, entity.StatusPaused} {
		req := projectRequest("Otro", line(f.wood.ID, 1))
		req.Status = string(status)
		q, err := f.projects.Create(ctx, req)
		require.NoError(t, err)
		_, err = f.projects.Start(ctx, q.ID)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, string(status))
	}
	assert.Equal(t, 8, f.stock(t, f.wood.ID))
}

func TestCreate_ImportesFueraDeRango(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	huge := f.material(t, "Torno", "9999999999.99", 5)

	_, err := f.projects.Create(ctx, projectRequest("Taller", line(huge.ID, 2)))
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.projects.Create(ctx, projectRequest("Taller", line(huge.ID, 1), line(f.wood.ID, 1)))
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.projects.Create(ctx, projectRequest("Taller", line(f.wood.ID, inventory.MaxQuantity+1)))
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	req := projectRequest("Taller", line(f.wood.ID, 1))
	cost := decimal.RequireFromString("10.005")
	req.ActualCost = &cost
	_, err = f.projects.Create(ctx, req)
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	req = projectRequest("Taller", line(f.wood.ID, 1))
	req.EstimatedHours = decimal.RequireFromString("1000000")
	_, err = f.projects.Create(ctx, req)
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	assert.Zero(t, f.store.LineCount())

	p, err := f.projects.Create(ctx, projectRequest("Taller", line(huge.ID, 1)))
	require.NoError(t, err)
	assert.True(t, inventory.MaxMoney.Equal(p.EstimatedCost))
}

func TestGetStartable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ok, err := f.projects.Create(ctx, projectRequest("Cubierto", line(f.wood.ID, 5), line(f.glue.ID, 1)))
	require.NoError(t, err)
	_, err = f.projects.Create(ctx, projectRequest("Sin stock", line(f.glue.ID, 2)))
	require.NoError(t, err)
	_, err = f.projects.Create(ctx, projectRequest("Sin líneas"))
	require.NoError(t, err)
	// dos líneas del mismo material se suman antes de comparar
	_, err = f.projects.Create(ctx, projectRequest("Acumulado", line(f.wood.ID, 6), line(f.wood.ID, 6)))
	require.NoError(t, err)
	started, err := f.projects.Create(ctx, projectRequest("Ya iniciado", line(f.wood.ID, 1)))
	require.NoError(t, err)
	inProgress := string(entity.StatusInProgress)
	_, err = f.projects.Update(ctx, started.ID, dto.UpdateProjectRequest{Status: &inProgress})
	require.NoError(t, err)

	out, err := f.projects.GetStartable(ctx)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, ok.ID, out[0].ID)
	assert.Len(t, out[0].Materials, 2)
}

// unavailableCatalog simula un catálogo caído.
type unavailableCatalog struct{ ledger.MaterialCatalog }

func (unavailableCatalog) GetPricing(context.Context, []string) (map[string]entity.MaterialPricing, error) {
	return nil, errors.New("connection refused")
}

func (unavailableCatalog) GetPricingInTx(context.Context, repository.MaterialRepository, []string) (map[string]entity.MaterialPricing, error) {
	return nil, errors.New("connection refused")
}

// txOnlyCatalog falla si se consulta fuera de la transacción, como un pool sin conexiones libres.
type txOnlyCatalog struct{ ledger.MaterialCatalog }

func (txOnlyCatalog) GetPricing(context.Context, []string) (map[string]entity.MaterialPricing, error) {
	return nil, errors.New("pool agotado")
}

func TestCatalogoNoDisponible(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p, err := f.projects.Create(ctx, projectRequest("Repisa", line(f.wood.ID, 1)))
	require.NoError(t, err)

	uc := ledger.NewProjectUseCase(f.store, unavailableCatalog{f.materials}, f.store.Projects(), f.store.Lines(), pdf.NewMarotoReportGenerator(), time.Second)

	_, err = uc.Create(ctx, projectRequest("Mesa", line(f.wood.ID, 1)))
	assert.ErrorIs(t, err, domain.ErrCatalogUnavailable)
	assert.NotErrorIs(t, err, domain.ErrMaterialNotFound)

	_, err = uc.GetStartable(ctx)
	assert.ErrorIs(t, err, domain.ErrCatalogUnavailable)

	_, err = uc.RecalculateCost(ctx, p.ID)
	assert.ErrorIs(t, err, domain.ErrCatalogUnavailable)

	// Start no consulta precios: reserva con los repos de la transacción
	_, err = uc.Start(ctx, p.ID)
	require.NoError(t, err)
}

func TestStats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cost := decimal.RequireFromString("30")
	req := projectRequest("Repisa", line(f.wood.ID, 2))
	req.ActualCost = &cost
	req.Status = string(entity.StatusCompleted)
	_, err := f.projects.Create(ctx, req)
	require.NoError(t, err)
	_, err = f.projects.Create(ctx, projectRequest("Banco", line(f.glue.ID, 1)))
	require.NoError(t, err)

	stats, err := f.projects.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalProjects)
	assert.True(t, decimal.RequireFromString("42.98").Equal(stats.TotalEstimatedCost), stats.TotalEstimatedCost.String())
	assert.True(t, cost.Equal(stats.TotalActualCost))
	assert.Equal(t, 1, stats.ByStatus["completed"])
	assert.Equal(t, 1, stats.ByStatus["planning"])
	assert.Equal(t, 0, stats.ByStatus["cancelled"])
	assert.Len(t, stats.ByDifficulty, len(entity.Difficulties))
	assert.Equal(t, 2, stats.ByCategory["woodworking"])
}

func TestReport(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p, err := f.projects.Create(ctx, projectRequest("Repisa", line(f.wood.ID, 2)))
	require.NoError(t, err)

	data, filename, err := f.projects.Report(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
	assert.Equal(t, "proyecto-"+p.ID+".pdf", filename)

	_, _, err = f.projects.Report(ctx, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
