package costing

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/costeo-api/internal/domain"
	"github.com/jhoicas/costeo-api/internal/domain/costformula"
	"github.com/jhoicas/costeo-api/internal/domain/entity"
)

// FormulaProductCostPercentage fórmula incluida: porcentaje (VariableCost) del costo base más FixedCost.
const FormulaProductCostPercentage = "PRODUCT_COST_PERCENTAGE"

// CostFormulaContext entrada de una fórmula de ajuste de costo de producto.
type CostFormulaContext struct {
	ProductID     string
	Calc          *entity.CostComponentCalc
	CurrencyUomID string
	Prefix        string
	BaseCost      decimal.Decimal
}

// CostFormula calcula el ajuste de una ProductCostComponentCalc con método personalizado.
type CostFormula interface {
	Compute(ctx context.Context, fc CostFormulaContext) (decimal.Decimal, error)
}

// CostFormulaFunc adapta una función a CostFormula.
type CostFormulaFunc func(ctx context.Context, fc CostFormulaContext) (decimal.Decimal, error)

func (f CostFormulaFunc) Compute(ctx context.Context, fc CostFormulaContext) (decimal.Decimal, error) {
	return f(ctx, fc)
}

// TaskTimeContext entrada de un método personalizado de estimación de tiempo de tarea.
type TaskTimeContext struct {
	Task         *entity.WorkEffort
	ProductID    string
	RoutingID    string
	Quantity     decimal.Decimal
	BaseEstimate decimal.Decimal
}

// TaskTimeFormula devuelve el tiempo total estimado (ms) que reemplaza al estimado base.
type TaskTimeFormula interface {
	Estimate(ctx context.Context, tc TaskTimeContext) (decimal.Decimal, error)
}

// TaskTimeFormulaFunc adapta una función a TaskTimeFormula.
type TaskTimeFormulaFunc func(ctx context.Context, tc TaskTimeContext) (decimal.Decimal, error)

func (f TaskTimeFormulaFunc) Estimate(ctx context.Context, tc TaskTimeContext) (decimal.Decimal, error) {
	return f(ctx, tc)
}

// FormulaRegistry mapea id de fórmula -> handler. Se registra una vez al arrancar.
type FormulaRegistry struct {
	mu       sync.RWMutex
	cost     map[string]CostFormula
	taskTime map[string]TaskTimeFormula
}

// NewFormulaRegistry registro vacío.
func NewFormulaRegistry() *FormulaRegistry {
	return &FormulaRegistry{
		cost:     make(map[string]CostFormula),
		taskTime: make(map[string]TaskTimeFormula),
	}
}

// RegisterCost registra una fórmula de costo. Panic si el id está vacío o ya existe.
func (r *FormulaRegistry) RegisterCost(id string, f CostFormula) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id == "" || f == nil {
		panic("costing: fórmula de costo sin id o nil")
	}
	if _, dup := r.cost[id]; dup {
		panic("costing: fórmula de costo duplicada " + id)
	}
	r.cost[id] = f
}

// RegisterTaskTime registra un método de estimación de tiempo. Panic si el id está vacío o ya existe.
func (r *FormulaRegistry) RegisterTaskTime(id string, f TaskTimeFormula) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id == "" || f == nil {
		panic("costing: fórmula de tiempo sin id o nil")
	}
	if _, dup := r.taskTime[id]; dup {
		panic("costing: fórmula de tiempo duplicada " + id)
	}
	r.taskTime[id] = f
}

// InvokeCost ejecuta la fórmula id. UnknownFormulaError si no está registrada.
func (r *FormulaRegistry) InvokeCost(ctx context.Context, id string, fc CostFormulaContext) (decimal.Decimal, error) {
	r.mu.RLock()
	f, ok := r.cost[id]
	r.mu.RUnlock()
	if !ok {
		return decimal.Zero, &domain.UnknownFormulaError{MethodID: id}
	}
	v, err := f.Compute(ctx, fc)
	if err != nil {
		return decimal.Zero, fmt.Errorf("fórmula %s: %w", id, err)
	}
	return v, nil
}

// InvokeTaskTime ejecuta el método de estimación id. UnknownFormulaError si no está registrado.
func (r *FormulaRegistry) InvokeTaskTime(ctx context.Context, id string, tc TaskTimeContext) (decimal.Decimal, error) {
	r.mu.RLock()
	f, ok := r.taskTime[id]
	r.mu.RUnlock()
	if !ok {
		return decimal.Zero, &domain.UnknownFormulaError{MethodID: id}
	}
	v, err := f.Estimate(ctx, tc)
	if err != nil {
		return decimal.Zero, fmt.Errorf("estimación %s: %w", id, err)
	}
	return v, nil
}

// RegisterBuiltins registra las fórmulas incluidas en el motor.
func RegisterBuiltins(r *FormulaRegistry) {
	r.RegisterCost(FormulaProductCostPercentage, CostFormulaFunc(func(_ context.Context, fc CostFormulaContext) (decimal.Decimal, error) {
		if fc.Calc == nil {
			return decimal.Zero, domain.ErrInvalidInput
		}
		return costformula.PercentageOfBase(fc.BaseCost, fc.Calc.VariableCost, fc.Calc.FixedCost), nil
	}))
}
