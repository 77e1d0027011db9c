// tallerctl tareas de operación: migraciones, datos de ejemplo y emisión de tokens.
//
// Uso:
//
//	go run ./cmd/tallerctl migrate up|down|status
//	go run ./cmd/tallerctl seed [--force]
//	go run ./cmd/tallerctl token --subject ana --role maker
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/taller-api/internal/infrastructure/postgres"
	"github.com/jhoicas/taller-api/pkg/config"
	"github.com/jhoicas/taller-api/pkg/logger"
	"github.com/urfave/cli/v3"
)

func main() {
	args := os.Args
	if len(args) == 1 {
		args = append(args, "--help")
	}

	root := &cli.Command{
		Name:  "tallerctl",
		Usage: "Tareas de operación de taller-api",
		Commands: []*cli.Command{
			migrateCommand(),
			seedCommand(),
			tokenCommand(),
		},
	}
	if err := root.Run(context.Background(), args); err != nil {
		fmt.Fprintf(os.Stderr, "tallerctl: %v\n", err)
		os.Exit(1)
	}
}

func migrateCommand() *cli.Command {
	sub := func(name, usage string) *cli.Command {
		return &cli.Command{
			Name:  name,
			Usage: usage,
			Action: func(ctx context.Context, _ *cli.Command) error {
				return withPool(ctx, func(cfg *config.Config, log *logger.Logger, pool *pgxpool.Pool) error {
					if err := postgres.Migrate(ctx, pool, name); err != nil {
						return err
					}
					log.Info().Str("command", name).Msg("migración completada")
					return nil
				})
			},
		}
	}
	return &cli.Command{
		Name:  "migrate",
		Usage: "Migraciones de esquema (goose)",
		Commands: []*cli.Command{
			sub(postgres.MigrateUp, "aplica las migraciones pendientes"),
			sub(postgres.MigrateDown, "revierte la última migración"),
			sub(postgres.MigrateStatus, "muestra el estado de las migraciones"),
		},
	}
}

// withPool carga configuración, logger y pool, y los libera al terminar fn.
func withPool(ctx context.Context, fn func(cfg *config.Config, log *logger.Logger, pool *pgxpool.Pool) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("cargar configuración: %w", err)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return fmt.Errorf("conexión a PostgreSQL: %w", err)
	}
	defer pool.Close()
	return fn(cfg, log, pool)
}
