package postgres

import (
	"context"
	"embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Comandos soportados por Migrate.
const (
	MigrateUp     = "up"
	MigrateDown   = "down"
	MigrateStatus = "status"
)

// Migrate ejecuta las migraciones embebidas con goose sobre una conexión database/sql
// abierta a partir del pool.
func Migrate(ctx context.Context, pool *pgxpool.Pool, command string) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	goose.SetBaseFS(migrationsFS)

	switch command {
	case MigrateUp:
		return goose.UpContext(ctx, db, "migrations")
	case MigrateDown:
		return goose.DownContext(ctx, db, "migrations")
	case MigrateStatus:
		return goose.StatusContext(ctx, db, "migrations")
	default:
		return fmt.Errorf("comando de migración desconocido: %q", command)
	}
}
