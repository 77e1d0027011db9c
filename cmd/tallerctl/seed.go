package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/taller-api/internal/application/catalog"
	"github.com/jhoicas/taller-api/internal/application/dto"
	"github.com/jhoicas/taller-api/internal/application/ledger"
	"github.com/jhoicas/taller-api/internal/domain/repository"
	infrapdf "github.com/jhoicas/taller-api/internal/infrastructure/pdf"
	"github.com/jhoicas/taller-api/internal/infrastructure/postgres"
	"github.com/jhoicas/taller-api/internal/infrastructure/spreadsheet"
	"github.com/jhoicas/taller-api/pkg/config"
	"github.com/jhoicas/taller-api/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v3"
)

type seedMaterial struct {
	key string
	req dto.CreateMaterialRequest
}

var seedMaterials = []seedMaterial{
	{"pino", dto.CreateMaterialRequest{
		Name: "Tabla de pino 1x4", Category: "wood", Unit: "piece",
		PricePerUnit: decimal.RequireFromString("12.99"), StockQuantity: 40, MinStockLevel: 10,
		Supplier: dto.SupplierDTO{Name: "Maderas del Norte", SKU: "PIN-1X4"},
		Specifications: map[string]string{"largo": "2.4 m", "espesor": "19 mm"},
		Tags: []string{"pino", "tabla"},
	}},
	{"tornillos", dto.CreateMaterialRequest{
		Name: "Tornillos para madera 1 5/8\"", Category: "hardware", Unit: "box",
		PricePerUnit: decimal.RequireFromString("8.49"), StockQuantity: 12, MinStockLevel: 3,
		Tags: []string{"tornillería"},
	}},
	{"cola", dto.CreateMaterialRequest{
		Name: "Cola vinílica", Category: "adhesive", Unit: "liter",
		PricePerUnit: decimal.RequireFromString("17.00"), StockQuantity: 2, MinStockLevel: 2,
		Tags: []string{"adhesivo", "carpintería"},
	}},
	{"barniz", dto.CreateMaterialRequest{
		Name: "Barniz al agua satinado", Category: "paint", Unit: "liter",
		PricePerUnit: decimal.RequireFromString("24.50"), StockQuantity: 0, MinStockLevel: 1,
		Tags: []string{"acabado"},
	}},
	{"cable", dto.CreateMaterialRequest{
		Name: "Cable eléctrico 2x1.5 mm²", Category: "electrical", Unit: "meter",
		PricePerUnit: decimal.RequireFromString("1.35"), StockQuantity: 100, MinStockLevel: 20,
		Tags: []string{"electricidad"},
	}},
}

func seedCommand() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "Carga materiales y proyectos de ejemplo",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "force", Usage: "cargar aunque el catálogo no esté vacío"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return withPool(ctx, func(cfg *config.Config, log *logger.Logger, pool *pgxpool.Pool) error {
				return seed(ctx, cfg, log, pool, c.Bool("force"))
			})
		},
	}
}

func seed(ctx context.Context, cfg *config.Config, log *logger.Logger, pool *pgxpool.Pool, force bool) error {
	start := time.Now()
	txRunner := postgres.NewTxRunner(pool)
	materials := catalog.NewMaterialUseCase(
		txRunner, postgres.NewMaterialRepository(pool), postgres.NewStockAdjustmentRepository(pool),
		spreadsheet.NewExcelMaterialExporter(),
	)
	projects := ledger.NewProjectUseCase(
		txRunner, materials, postgres.NewProjectRepository(pool), postgres.NewProjectMaterialRepository(pool),
		infrapdf.NewMarotoReportGenerator(), cfg.Catalog.Timeout,
	)

	existing, err := materials.List(ctx, repository.MaterialFilter{Limit: 1})
	if err != nil {
		return err
	}
	if existing.Page.Total > 0 && !force {
		log.Warn().Int("materials", existing.Page.Total).Msg("el catálogo ya tiene datos; usar --force para cargar igual")
		return nil
	}

	ids := make(map[string]string, len(seedMaterials))
	for _, s := range seedMaterials {
		m, err := materials.Create(ctx, s.req)
		if err != nil {
			return fmt.Errorf("material %s: %w", s.key, err)
		}
		ids[s.key] = m.ID
	}

	seedProjects := []dto.CreateProjectRequest{
		{
			Title: "Repisa flotante", Difficulty: "beginner", Category: "woodworking",
			EstimatedHours: decimal.NewFromInt(3),
			Instructions:   []string{"Cortar las tablas a medida", "Lijar", "Atornillar el soporte oculto", "Barnizar"},
			Tags:           []string{"estantería"},
			Materials: []dto.ProjectMaterialInput{
				{MaterialID: ids["pino"], Quantity: 2},
				{MaterialID: ids["tornillos"], Quantity: 1},
				{MaterialID: ids["cola"], Quantity: 1},
			},
		},
		{
			Title: "Lámpara de escritorio", Difficulty: "intermediate", Category: "electronics",
			EstimatedHours: decimal.RequireFromString("4.5"),
			Materials: []dto.ProjectMaterialInput{
				{MaterialID: ids["pino"], Quantity: 1},
				{MaterialID: ids["cable"], Quantity: 3, Notes: "con interruptor de paso"},
				{MaterialID: ids["barniz"], Quantity: 1},
			},
		},
	}
	for _, in := range seedProjects {
		p, err := projects.Create(ctx, in)
		if err != nil {
			return fmt.Errorf("proyecto %q: %w", in.Title, err)
		}
		log.Info().Str("id", p.ID).Str("title", p.Title).Str("estimated_cost", p.EstimatedCost.String()).Msg("proyecto creado")
	}
	log.Info().Int("materials", len(seedMaterials)).Int("projects", len(seedProjects)).
		Dur("took", time.Since(start)).Msg("datos de ejemplo cargados")
	return nil
}
