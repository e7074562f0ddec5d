package costing

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/costeo-api/internal/domain"
	"github.com/jhoicas/costeo-api/internal/domain/costformula"
	"github.com/jhoicas/costeo-api/internal/domain/entity"
)

// TaskTimeInput parámetros de la estimación de tiempo. Quantity <= 0 se toma como 1.
type TaskTimeInput struct {
	WorkEffortID string
	ProductID    string
	RoutingID    string
	Quantity     decimal.Decimal
}

// TaskTime tiempos estimados en milisegundos.
type TaskTime struct {
	EstimatedTaskTime decimal.Decimal
	SetupTime         decimal.Decimal
	TaskUnitTime      decimal.Decimal
}

// CostBucket costo acumulado de un tipo (CostComponentTypeID sin prefijo).
type CostBucket struct {
	CostComponentTypeID string
	Cost                decimal.Decimal
}

// TaskCost resultado del costo de una tarea.
type TaskCost struct {
	WorkEffortID string
	TaskCost     decimal.Decimal
	CostsByType  []CostBucket
	Time         TaskTime
}

// RoutingCalculator calcula tiempo y costo de una tarea de ruta a partir de las tarifas del activo fijo
// y de las fórmulas WorkEffortCostCalc asociadas.
type RoutingCalculator struct {
	formulas *FormulaRegistry
	settings Settings
}

// NewRoutingCalculator construye la calculadora.
func NewRoutingCalculator(formulas *FormulaRegistry, s Settings) *RoutingCalculator {
	return &RoutingCalculator{formulas: formulas, settings: s}
}

// GetEstimatedTaskTime estimado = unitario * cantidad + alistamiento. Si la tarea declara un método de
// estimación y se conocen producto y ruta, el resultado del método reemplaza el total.
func (c *RoutingCalculator) GetEstimatedTaskTime(ctx context.Context, uow UnitOfWork, in TaskTimeInput) (*TaskTime, error) {
	task, err := c.task(ctx, uow, in.WorkEffortID)
	if err != nil {
		return nil, err
	}
	return c.estimate(ctx, task, in)
}

func (c *RoutingCalculator) task(ctx context.Context, uow UnitOfWork, workEffortID string) (*entity.WorkEffort, error) {
	task, err := uow.Routing.GetWorkEffort(ctx, workEffortID)
	if err != nil {
		return nil, fmt.Errorf("obtener work_effort: %w", err)
	}
	if task == nil {
		return nil, domain.NewNotFound("work_effort", workEffortID)
	}
	return task, nil
}

func (c *RoutingCalculator) estimate(ctx context.Context, task *entity.WorkEffort, in TaskTimeInput) (*TaskTime, error) {
	qty := in.Quantity
	if !qty.IsPositive() {
		qty = decimal.NewFromInt(1)
	}
	out := &TaskTime{
		EstimatedTaskTime: costformula.BaseTaskEstimate(task.EstimatedMilliSeconds, qty, task.EstimatedSetupMillis),
		SetupTime:         task.EstimatedSetupMillis,
		TaskUnitTime:      task.EstimatedMilliSeconds,
	}
	if task.EstimateCalcMethod == nil || *task.EstimateCalcMethod == "" {
		return out, nil
	}
	if in.ProductID == "" || in.RoutingID == "" {
		c.settings.Log.Debug().Str("work_effort_id", task.ID).Msg("método de estimación sin producto o ruta; se usa el estimado base")
		return out, nil
	}
	total, err := c.formulas.InvokeTaskTime(ctx, *task.EstimateCalcMethod, TaskTimeContext{
		Task:         task,
		ProductID:    in.ProductID,
		RoutingID:    in.RoutingID,
		Quantity:     qty,
		BaseEstimate: out.EstimatedTaskTime,
	})
	if err != nil {
		return nil, err
	}
	out.EstimatedTaskTime = total
	return out, nil
}

// GetTaskCost costo de la tarea en currencyUomID:
// (USAGE_COST * (tiempo - alistamiento) + SETUP_COST * alistamiento) / 3.600.000,
// más un bucket por cada WorkEffortCostCalc vigente.
func (c *RoutingCalculator) GetTaskCost(ctx context.Context, uow UnitOfWork, workEffortID, currencyUomID, productID, routingID string) (*TaskCost, error) {
	return c.taskCostAt(ctx, uow, workEffortID, currencyUomID, productID, routingID, c.settings.now())
}

func (c *RoutingCalculator) taskCostAt(ctx context.Context, uow UnitOfWork, workEffortID, currencyUomID, productID, routingID string, asOf time.Time) (*TaskCost, error) {
	task, err := c.task(ctx, uow, workEffortID)
	if err != nil {
		return nil, err
	}
	tt, err := c.estimate(ctx, task, TaskTimeInput{WorkEffortID: workEffortID, ProductID: productID, RoutingID: routingID})
	if err != nil {
		return nil, err
	}
	out := &TaskCost{WorkEffortID: workEffortID, TaskCost: decimal.Zero, Time: *tt}

	if task.FixedAssetID != "" {
		cost, err := c.fixedAssetCost(ctx, uow, task.FixedAssetID, currencyUomID, tt, asOf)
		if err != nil {
			return nil, err
		}
		out.TaskCost = cost
	}

	calcs, err := uow.Routing.FindWorkEffortCostCalcs(ctx, workEffortID, asOf)
	if err != nil {
		return nil, fmt.Errorf("work_effort_cost_calc de %s: %w", workEffortID, err)
	}
	index := make(map[string]int)
	for _, wc := range calcs {
		cost, ok, err := c.bucketCost(ctx, uow, wc, currencyUomID, tt.EstimatedTaskTime, asOf)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		if i, found := index[wc.CostComponentTypeID]; found {
			out.CostsByType[i].Cost = out.CostsByType[i].Cost.Add(cost)
			continue
		}
		index[wc.CostComponentTypeID] = len(out.CostsByType)
		out.CostsByType = append(out.CostsByType, CostBucket{CostComponentTypeID: wc.CostComponentTypeID, Cost: cost})
	}
	return out, nil
}

func (c *RoutingCalculator) fixedAssetCost(ctx context.Context, uow UnitOfWork, fixedAssetID, currencyUomID string, tt *TaskTime, asOf time.Time) (decimal.Decimal, error) {
	asset, err := uow.Routing.GetFixedAsset(ctx, fixedAssetID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("obtener fixed_asset: %w", err)
	}
	if asset == nil {
		return decimal.Zero, domain.NewNotFound("fixed_asset", fixedAssetID)
	}
	rate := func(typeID string) (decimal.Decimal, error) {
		std, err := uow.Routing.FindFixedAssetStdCost(ctx, asset.ID, typeID, currencyUomID, asOf)
		if err != nil {
			return decimal.Zero, fmt.Errorf("fixed_asset_std_cost %s: %w", typeID, err)
		}
		if std == nil {
			return decimal.Zero, nil
		}
		return std.Amount, nil
	}
	setupRate, err := rate(entity.FixedAssetSetupCost)
	if err != nil {
		return decimal.Zero, err
	}
	usageRate, err := rate(entity.FixedAssetUsageCost)
	if err != nil {
		return decimal.Zero, err
	}
	return costformula.FixedAssetTaskCost(usageRate, setupRate, tt.EstimatedTaskTime, tt.SetupTime), nil
}

// bucketCost ok=false cuando el bucket se omite (método personalizado o sin conversión de moneda).
func (c *RoutingCalculator) bucketCost(ctx context.Context, uow UnitOfWork, wc *entity.WorkEffortCostCalc, currencyUomID string, totalMillis decimal.Decimal, asOf time.Time) (decimal.Decimal, bool, error) {
	log := c.settings.Log.With().Str("work_effort_id", wc.WorkEffortID).Str("cost_component_calc_id", wc.CostComponentCalcID).Logger()

	calc, err := uow.CostCalcs.GetCostComponentCalc(ctx, wc.CostComponentCalcID)
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("obtener cost_component_calc: %w", err)
	}
	if calc == nil {
		return decimal.Zero, false, domain.NewNotFound("cost_component_calc", wc.CostComponentCalcID)
	}
	if calc.HasCustomMethod() {
		// Fórmulas personalizadas aún no soportadas para costos estándar de tareas.
		log.Warn().Str("method", *calc.CostCustomMethodID).Msg("método personalizado en work_effort_cost_calc no soportado; se omite el bucket")
		return decimal.Zero, false, nil
	}
	cost, linear := costformula.LinearCalcCost(totalMillis, calc.PerMilliSecond, calc.VariableCost, calc.FixedCost)
	if !linear {
		log.Warn().Msg("per_milli_second en cero; solo se aplica el costo fijo")
	}
	if calc.CurrencyUomID != "" && calc.CurrencyUomID != currencyUomID {
		converted, err := uow.Converter.Convert(ctx, calc.CurrencyUomID, currencyUomID, asOf, cost)
		if err != nil || converted.IsZero() {
			log.Warn().Err(err).Str("from", calc.CurrencyUomID).Str("to", currencyUomID).Msg("sin tasa de conversión; se omite el bucket")
			return decimal.Zero, false, nil
		}
		cost = converted
	}
	return cost, true, nil
}
