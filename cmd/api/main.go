// @title           Taller API
// @version         1.0
// @description     Catálogo de materiales y libro de proyectos de bricolaje.
// @BasePath        /
// @securityDefinitions.apikey Bearer
// @in              header
// @name            Authorization
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/jhoicas/taller-api/docs"
	"github.com/jhoicas/taller-api/internal/application/catalog"
	"github.com/jhoicas/taller-api/internal/application/ledger"
	infrapdf "github.com/jhoicas/taller-api/internal/infrastructure/pdf"
	"github.com/jhoicas/taller-api/internal/infrastructure/postgres"
	"github.com/jhoicas/taller-api/internal/infrastructure/spreadsheet"
	httpRouter "github.com/jhoicas/taller-api/internal/interfaces/http"
	"github.com/jhoicas/taller-api/pkg/config"
	"github.com/jhoicas/taller-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if cfg.DB.AutoMigrate {
		if err := postgres.Migrate(ctx, pool, postgres.MigrateUp); err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
		log.Info().Msg("migraciones aplicadas")
	}

	txRunner := postgres.NewTxRunner(pool)
	materialRepo := postgres.NewMaterialRepository(pool)
	adjustmentRepo := postgres.NewStockAdjustmentRepository(pool)
	projectRepo := postgres.NewProjectRepository(pool)
	lineRepo := postgres.NewProjectMaterialRepository(pool)

	materialUC := catalog.NewMaterialUseCase(txRunner, materialRepo, adjustmentRepo, spreadsheet.NewExcelMaterialExporter())
	// El libro de proyectos solo ve el catálogo a través del puerto MaterialCatalog.
	projectUC := ledger.NewProjectUseCase(
		txRunner, materialUC, projectRepo, lineRepo,
		infrapdf.NewMarotoReportGenerator(), cfg.Catalog.Timeout,
	)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(httpRouter.RequestLogger(log.Component("http")))

	// Swagger UI: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    docs.SwaggerInfo.Title,
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		status, code := "ok", fiber.StatusOK
		if err := pool.Ping(c.UserContext()); err != nil {
			status, code = "degraded", fiber.StatusServiceUnavailable
		}
		return c.Status(code).JSON(fiber.Map{"status": status, "service": cfg.App.Name})
	})

	if !cfg.JWT.Enabled() {
		log.Warn().Msg("JWT_SECRET vacío: las rutas de escritura no requieren token")
	}
	httpRouter.Router(app, httpRouter.RouterDeps{
		Materials: materialUC,
		Projects:  projectUC,
		JWTSecret: cfg.JWT.Secret,
		Logger:    log.Component("api"),
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
