package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/costeo-api/internal/application/costing"
)

var _ costing.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con la unidad de trabajo atada a la tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(uow costing.UnitOfWork) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewUnitOfWork(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// NewUnitOfWork repositorios del motor sobre q (pool o tx).
func NewUnitOfWork(q Querier) costing.UnitOfWork {
	return costing.UnitOfWork{
		CostComponents:   NewCostComponentRepository(q),
		AverageCosts:     NewAverageCostRepository(q),
		Assocs:           NewProductAssocRepository(q),
		SupplierProducts: NewSupplierProductRepository(q),
		Routing:          NewRoutingRepository(q),
		CostCalcs:        NewCostCalcRepository(q),
		InventoryItems:   NewInventoryItemRepository(q),
		Facilities:       NewFacilityRepository(q),
		Converter:        NewUomConversionRepository(q),
	}
}
