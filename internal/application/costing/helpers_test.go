package costing_test

import (
	"bytes"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/costeo-api/internal/application/costing"
	"github.com/jhoicas/costeo-api/internal/domain/entity"
	"github.com/jhoicas/costeo-api/internal/infrastructure/memory"
)

const (
	usd    = "USD"
	eur    = "EUR"
	prefix = "EST_STD"
)

var t0 = time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ptr[T any](v T) *T { return &v }

// tickingClock avanza un minuto en cada lectura para distinguir ejecuciones sucesivas.
type tickingClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *tickingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Minute)
	return c.now
}

// Current devuelve la hora actual del reloj sin avanzarlo.
func (c *tickingClock) Current() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

type fixture struct {
	store    *memory.Store
	clock    *tickingClock
	formulas *costing.FormulaRegistry
	engine   *costing.Engine
	uc       *costing.CostingUseCase
	logs     *bytes.Buffer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logs := &bytes.Buffer{}
	clock := &tickingClock{now: t0}
	formulas := costing.NewFormulaRegistry()
	costing.RegisterBuiltins(formulas)
	log := zerolog.New(logs)
	engine := costing.NewEngine(formulas, costing.Settings{Now: clock.Now, Log: log, Decimals: 6})
	store := memory.NewStore()
	uc := costing.NewCostingUseCase(store, costing.NewKeyedLocker(), engine,
		costing.UseCaseConfig{DefaultCurrency: usd, DefaultPrefix: prefix}, log)
	return &fixture{store: store, clock: clock, formulas: formulas, engine: engine, uc: uc, logs: logs}
}

// fact hecho vigente desde el día anterior a t0.
func fact(productID, typeID, currency, cost string) entity.CostComponent {
	return entity.CostComponent{
		ID:                  productID + "-" + typeID + "-" + currency,
		ProductID:           productID,
		CostComponentTypeID: typeID,
		CostUomID:           currency,
		Cost:                d(cost),
		FromDate:            t0.Add(-24 * time.Hour),
	}
}

func bomEdge(parent, component, qty string, seq int) entity.ProductAssoc {
	return entity.ProductAssoc{
		ProductID:          parent,
		ProductIDTo:        component,
		ProductAssocTypeID: entity.AssocManufComponent,
		Quantity:           d(qty),
		SequenceNum:        seq,
		FromDate:           t0.Add(-24 * time.Hour),
	}
}

func variantEdge(parent, variant string) entity.ProductAssoc {
	return entity.ProductAssoc{
		ProductID:          parent,
		ProductIDTo:        variant,
		ProductAssocTypeID: entity.AssocProductVariant,
		FromDate:           t0.Add(-24 * time.Hour),
	}
}

// seedMesa carga una mesa con BOM (tablero + 4 patas) y una ruta de una tarea con activo fijo:
// material 30 + 4*2.5 = 40; tarea (36*0.5h + 10*0.5h) = 23; bucket OTHER_COST (1h/1h)*5 + 2 = 7; total 70.
func seedMesa(f *fixture) {
	s := f.store
	s.AddAssoc(bomEdge("MESA", "TABLERO", "1", 10))
	s.AddAssoc(bomEdge("MESA", "PATA", "4", 20))
	s.AddCostComponent(fact("TABLERO", "EST_STD_MAT_COST", usd, "30"))
	s.AddCostComponent(fact("PATA", "EST_STD_MAT_COST", usd, "2.5"))

	s.AddFixedAsset(entity.FixedAsset{ID: "SIERRA", Name: "Sierra de banco"})
	s.AddFixedAssetStdCost(entity.FixedAssetStdCost{
		FixedAssetID: "SIERRA", FixedAssetStdCostTypeID: entity.FixedAssetUsageCost,
		AmountUomID: usd, Amount: d("36"), FromDate: t0.Add(-24 * time.Hour),
	})
	s.AddFixedAssetStdCost(entity.FixedAssetStdCost{
		FixedAssetID: "SIERRA", FixedAssetStdCostTypeID: entity.FixedAssetSetupCost,
		AmountUomID: usd, Amount: d("10"), FromDate: t0.Add(-24 * time.Hour),
	})
	s.SetRouting("MESA", entity.Routing{ID: "RUTA-MESA", Tasks: []*entity.WorkEffort{{
		ID:                    "CORTE",
		FixedAssetID:          "SIERRA",
		EstimatedMilliSeconds: d("1800000"),
		EstimatedSetupMillis:  d("1800000"),
		SequenceNum:           1,
	}}})
	s.AddCostComponentCalc(entity.CostComponentCalc{
		ID: "CALC-ENERGIA", FixedCost: d("2"), VariableCost: d("5"), PerMilliSecond: d("3600000"),
	})
	s.AddWorkEffortCostCalc(entity.WorkEffortCostCalc{
		WorkEffortID: "CORTE", CostComponentTypeID: "OTHER_COST", CostComponentCalcID: "CALC-ENERGIA",
		FromDate: t0.Add(-24 * time.Hour),
	})
}
