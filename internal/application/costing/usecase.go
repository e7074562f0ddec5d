package costing

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/costeo-api/internal/domain/entity"
)

// UseCaseConfig valores por defecto cuando la entrada no trae moneda o prefijo.
type UseCaseConfig struct {
	DefaultCurrency string
	DefaultPrefix   string
}

// CostingUseCase ejecuta cada operación del motor dentro de una transacción (TxRunner) y serializa
// los escritores por clave (Locker). Es la entrada usada por HTTP y CLI.
type CostingUseCase struct {
	txRunner TxRunner
	locker   Locker
	engine   *Engine
	cfg      UseCaseConfig
	log      zerolog.Logger
	renderer CostSheetRenderer
}

// NewCostingUseCase construye el caso de uso.
func NewCostingUseCase(txRunner TxRunner, locker Locker, engine *Engine, cfg UseCaseConfig, log zerolog.Logger) *CostingUseCase {
	if locker == nil {
		locker = NewKeyedLocker()
	}
	return &CostingUseCase{txRunner: txRunner, locker: locker, engine: engine, cfg: cfg, log: log}
}

// Defaults moneda y prefijo aplicados cuando la entrada los trae vacíos.
func (uc *CostingUseCase) Defaults() UseCaseConfig { return uc.cfg }

func (uc *CostingUseCase) currency(c string) string {
	if c == "" {
		return uc.cfg.DefaultCurrency
	}
	return c
}

func (uc *CostingUseCase) prefix(p string) string {
	if p == "" {
		return uc.cfg.DefaultPrefix
	}
	return p
}

// GetProductCost resuelve el costo de un producto (solo lectura).
func (uc *CostingUseCase) GetProductCost(ctx context.Context, productID, currencyUomID, prefix string) (decimal.Decimal, error) {
	var out decimal.Decimal
	err := uc.txRunner.Run(ctx, func(uow UnitOfWork) error {
		var err error
		out, err = uc.engine.Resolver.GetProductCost(ctx, uow, productID, uc.currency(currencyUomID), uc.prefix(prefix))
		return err
	})
	return out, err
}

// CalculateProductCosts recalcula y persiste los costos del producto bajo bloqueo por (producto, prefijo, moneda).
func (uc *CostingUseCase) CalculateProductCosts(ctx context.Context, productID, currencyUomID, prefix string) (decimal.Decimal, error) {
	currencyUomID, prefix = uc.currency(currencyUomID), uc.prefix(prefix)
	unlock, err := uc.locker.Lock(ctx, RecomputeKey(productID, prefix, currencyUomID))
	if err != nil {
		return decimal.Zero, err
	}
	defer unlock()

	var out decimal.Decimal
	err = uc.txRunner.Run(ctx, func(uow UnitOfWork) error {
		var err error
		out, err = uc.engine.Orchestrator.CalculateProductCosts(ctx, uow, productID, currencyUomID, prefix)
		return err
	})
	if err != nil {
		uc.log.Error().Err(err).Str("product_id", productID).Msg("recálculo de costos abortado")
		return decimal.Zero, err
	}
	return out, nil
}

// SimulateBomCost proyección de costo de fabricar una cantidad (no escribe).
func (uc *CostingUseCase) SimulateBomCost(ctx context.Context, in SimulationInput) ([]BomNode, error) {
	in.CurrencyUomID = uc.currency(in.CurrencyUomID)
	var out []BomNode
	err := uc.txRunner.Run(ctx, func(uow UnitOfWork) error {
		var err error
		out, err = uc.engine.Bom.SimulateBomCost(ctx, uow, in)
		return err
	})
	return out, err
}

// GetEstimatedTaskTime tiempo estimado de una tarea.
func (uc *CostingUseCase) GetEstimatedTaskTime(ctx context.Context, in TaskTimeInput) (*TaskTime, error) {
	var out *TaskTime
	err := uc.txRunner.Run(ctx, func(uow UnitOfWork) error {
		var err error
		out, err = uc.engine.Routing.GetEstimatedTaskTime(ctx, uow, in)
		return err
	})
	return out, err
}

// GetTaskCost costo de una tarea de ruta.
func (uc *CostingUseCase) GetTaskCost(ctx context.Context, workEffortID, currencyUomID, productID, routingID string) (*TaskCost, error) {
	var out *TaskCost
	err := uc.txRunner.Run(ctx, func(uow UnitOfWork) error {
		var err error
		out, err = uc.engine.Routing.GetTaskCost(ctx, uow, workEffortID, uc.currency(currencyUomID), productID, routingID)
		return err
	})
	return out, err
}

// UpdateAverageCostOnReceipt recalcula el costo promedio al recibir inventario, bajo bloqueo por (producto, bodega).
func (uc *CostingUseCase) UpdateAverageCostOnReceipt(ctx context.Context, in ReceiptInput) (*entity.ProductAverageCost, error) {
	unlock, err := uc.locker.Lock(ctx, ReceiptKey(in.ProductID, in.FacilityID))
	if err != nil {
		return nil, err
	}
	defer unlock()

	var out *entity.ProductAverageCost
	err = uc.txRunner.Run(ctx, func(uow UnitOfWork) error {
		var err error
		out, err = uc.engine.AverageCosts.UpdateAverageCostOnReceipt(ctx, uow, in)
		return err
	})
	if err != nil {
		uc.log.Error().Err(err).Str("product_id", in.ProductID).Str("inventory_item_id", in.InventoryItemID).Msg("recálculo de costo promedio abortado")
		return nil, err
	}
	return out, nil
}
