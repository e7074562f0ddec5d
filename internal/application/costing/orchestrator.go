package costing

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/costeo-api/internal/domain"
	"github.com/jhoicas/costeo-api/internal/domain/costformula"
	"github.com/jhoicas/costeo-api/internal/domain/entity"
)

// Orchestrator recalcula el costo estándar de un producto: material (BOM) + ruta + buckets por tipo
// + ajustes por fórmula, y persiste los nuevos hechos en el ledger.
type Orchestrator struct {
	resolver *Resolver
	routing  *RoutingCalculator
	ledger   *Ledger
	formulas *FormulaRegistry
	settings Settings
}

// NewOrchestrator construye el orquestador con sus colaboradores.
func NewOrchestrator(resolver *Resolver, routing *RoutingCalculator, ledger *Ledger, formulas *FormulaRegistry, s Settings) *Orchestrator {
	return &Orchestrator{resolver: resolver, routing: routing, ledger: ledger, formulas: formulas, settings: s}
}

// CalculateProductCosts ejecuta el recálculo completo y devuelve el costo total.
// Cualquier error aborta: el caller debe hacer Rollback de la unidad de trabajo.
func (o *Orchestrator) CalculateProductCosts(ctx context.Context, uow UnitOfWork, productID, currencyUomID, costComponentTypePrefix string) (decimal.Decimal, error) {
	if productID == "" || currencyUomID == "" || costComponentTypePrefix == "" {
		return decimal.Zero, domain.ErrInvalidInput
	}
	now := o.settings.now()
	scale := o.settings.scale()
	prefix := costComponentTypePrefix
	log := o.settings.Log.With().Str("product_id", productID).Str("currency", currencyUomID).Str("prefix", prefix).Logger()

	routeType := costformula.TypeID(prefix, entity.CostTypeRouteSuffix)
	matType := costformula.TypeID(prefix, entity.CostTypeMatSuffix)

	// 1. Expirar los hechos estándar vigentes.
	if _, err := o.ledger.Cancel(ctx, uow, productID, currencyUomID, now, routeType, matType); err != nil {
		return decimal.Zero, err
	}

	// 2. Costo de material.
	materialCost, err := o.materialCost(ctx, uow, productID, currencyUomID, now)
	if err != nil {
		return decimal.Zero, err
	}
	materialCost = materialCost.Round(scale)

	// 3. Costo de ruta.
	totalTaskCost := decimal.Zero
	var buckets []CostBucket
	bucketIndex := make(map[string]int)
	routing, err := uow.Routing.FindRouting(ctx, productID, now)
	if err != nil {
		return decimal.Zero, fmt.Errorf("ruta de %s: %w", productID, err)
	}
	if routing != nil {
		for _, task := range routing.Tasks {
			tc, err := o.routing.taskCostAt(ctx, uow, task.ID, currencyUomID, productID, routing.ID, now)
			if err != nil {
				return decimal.Zero, err
			}
			totalTaskCost = totalTaskCost.Add(tc.TaskCost)
			for _, b := range tc.CostsByType {
				if i, ok := bucketIndex[b.CostComponentTypeID]; ok {
					buckets[i].Cost = buckets[i].Cost.Add(b.Cost)
					continue
				}
				bucketIndex[b.CostComponentTypeID] = len(buckets)
				buckets = append(buckets, b)
			}
		}
	}
	totalTaskCost = totalTaskCost.Round(scale)

	// 4. Total.
	totalCost := materialCost.Add(totalTaskCost)
	for i := range buckets {
		buckets[i].Cost = buckets[i].Cost.Round(scale)
		totalCost = totalCost.Add(buckets[i].Cost)
	}

	// 5. Acumular por tipo final: ruta, material y buckets pueden coincidir en el mismo tipo.
	pending := newFactAccumulator()
	pending.add(routeType, totalTaskCost, nil, false)
	pending.add(matType, materialCost, nil, false)
	for _, b := range buckets {
		pending.add(costformula.TypeID(prefix, b.CostComponentTypeID), b.Cost, nil, false)
	}

	// 6. Ajustes por fórmula del producto, en orden de secuencia.
	calcs, err := uow.CostCalcs.FindProductCostComponentCalcs(ctx, productID, now)
	if err != nil {
		return decimal.Zero, fmt.Errorf("product_cost_component_calc de %s: %w", productID, err)
	}
	sort.SliceStable(calcs, func(i, j int) bool { return calcs[i].SequenceNum < calcs[j].SequenceNum })
	for _, pc := range calcs {
		calc, err := uow.CostCalcs.GetCostComponentCalc(ctx, pc.CostComponentCalcID)
		if err != nil {
			return decimal.Zero, fmt.Errorf("obtener cost_component_calc: %w", err)
		}
		if calc == nil {
			return decimal.Zero, domain.NewNotFound("cost_component_calc", pc.CostComponentCalcID)
		}
		if !calc.HasCustomMethod() {
			log.Warn().Str("cost_component_calc_id", calc.ID).Msg("calc de producto sin método personalizado; se omite")
			continue
		}
		adjustment, err := o.formulas.InvokeCost(ctx, *calc.CostCustomMethodID, CostFormulaContext{
			ProductID:     productID,
			Calc:          calc,
			CurrencyUomID: currencyUomID,
			Prefix:        prefix,
			BaseCost:      totalCost,
		})
		if err != nil {
			return decimal.Zero, err
		}
		adjustment = adjustment.Round(scale)
		calcID := calc.ID
		pending.add(costformula.TypeID(prefix, pc.CostComponentTypeID), adjustment, &calcID, true)
		totalCost = totalCost.Add(adjustment)
	}

	// 7. Un hecho por tipo; la suma de los hechos escritos es totalCost.
	for _, p := range pending.list {
		if p.cost.IsZero() && !p.keepZero {
			continue
		}
		if p.sources > 1 {
			log.Debug().Str("type", p.typeID).Int("sources", p.sources).Msg("montos del mismo tipo consolidados")
		}
		if err := o.ledger.Record(ctx, uow, &entity.CostComponent{
			ProductID:           productID,
			CostComponentTypeID: p.typeID,
			CostUomID:           currencyUomID,
			Cost:                p.cost,
			CostComponentCalcID: p.calcID,
		}, now); err != nil {
			return decimal.Zero, err
		}
	}

	log.Info().
		Str("material_cost", materialCost.String()).
		Str("task_cost", totalTaskCost.String()).
		Str("total_cost", totalCost.String()).
		Msg("costos del producto recalculados")
	return totalCost, nil
}

// materialCost suma cantidad * costo EST_STD_MAT de cada componente directo; sin BOM usa el propio producto.
func (o *Orchestrator) materialCost(ctx context.Context, uow UnitOfWork, productID, currencyUomID string, now time.Time) (decimal.Decimal, error) {
	edges, err := uow.Assocs.FindBomComponents(ctx, productID, now)
	if err != nil {
		return decimal.Zero, fmt.Errorf("componentes de %s: %w", productID, err)
	}
	if len(edges) == 0 {
		return o.resolver.productCostAt(ctx, uow, productID, currencyUomID, entity.CostCategoryStdMat, now)
	}
	total := decimal.Zero
	for _, e := range edges {
		if e.ProductIDTo == productID {
			continue
		}
		unit, err := o.resolver.productCostAt(ctx, uow, e.ProductIDTo, currencyUomID, entity.CostCategoryStdMat, now)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(e.Quantity.Mul(unit))
	}
	return total, nil
}

type pendingFact struct {
	typeID   string
	cost     decimal.Decimal
	calcID   *string
	keepZero bool
	sources  int
}

// factAccumulator suma montos por tipo de costo conservando el orden de primera aparición.
type factAccumulator struct {
	list  []*pendingFact
	index map[string]*pendingFact
}

func newFactAccumulator() *factAccumulator {
	return &factAccumulator{index: make(map[string]*pendingFact)}
}

// add suma cost al tipo. El primer calcID no nulo queda como referencia del hecho.
// keepZero marca montos que se persisten aunque sumen cero (ajustes por fórmula).
func (a *factAccumulator) add(typeID string, cost decimal.Decimal, calcID *string, keepZero bool) {
	p, ok := a.index[typeID]
	if !ok {
		p = &pendingFact{typeID: typeID}
		a.index[typeID] = p
		a.list = append(a.list, p)
	}
	p.cost = p.cost.Add(cost)
	if p.calcID == nil {
		p.calcID = calcID
	}
	p.keepZero = p.keepZero || keepZero
	p.sources++
}
