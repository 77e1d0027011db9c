package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/taller-api/internal/application/catalog"
	"github.com/jhoicas/taller-api/internal/application/ledger"
	"github.com/jhoicas/taller-api/internal/domain/repository"
)

// Ensure TxRunner implements catalog.TxRunner and ledger.TxRunner.
var _ catalog.TxRunner = (*TxRunner)(nil)
var _ ledger.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción con los repos del catálogo y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(
	materialRepo repository.MaterialRepository,
	adjustmentRepo repository.StockAdjustmentRepository,
) error) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		return fn(NewMaterialRepository(tx), NewStockAdjustmentRepository(tx))
	})
}

// RunLedger inicia una transacción con repos del catálogo y del libro de proyectos
// (Start reserva stock y cambia el estado del proyecto en la misma tx).
func (r *TxRunner) RunLedger(ctx context.Context, fn func(
	materialRepo repository.MaterialRepository,
	adjustmentRepo repository.StockAdjustmentRepository,
	projectRepo repository.ProjectRepository,
	lineRepo repository.ProjectMaterialRepository,
) error) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		return fn(
			NewMaterialRepository(tx),
			NewStockAdjustmentRepository(tx),
			NewProjectRepository(tx),
			NewProjectMaterialRepository(tx),
		)
	})
}

func (r *TxRunner) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
