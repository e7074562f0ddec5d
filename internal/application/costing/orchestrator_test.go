package costing_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/costeo-api/internal/application/costing"
	"github.com/jhoicas/costeo-api/internal/domain"
	"github.com/jhoicas/costeo-api/internal/domain/entity"
)

// activeByType hechos vigentes del producto indexados por tipo.
func activeByType(f *fixture, productID string) map[string]entity.CostComponent {
	out := make(map[string]entity.CostComponent)
	for _, c := range f.store.ActiveCostComponents(productID, f.clock.Current()) {
		out[c.CostComponentTypeID] = c
	}
	return out
}

func TestCalculateProductCosts_MaterialRutaYBuckets(t *testing.T) {
	f := newFixture(t)
	seedMesa(f)

	total, err := f.uc.CalculateProductCosts(context.Background(), "MESA", usd, prefix)
	require.NoError(t, err)
	assert.True(t, d("70").Equal(total), "40 + 23 + 7, obtuvo %s", total)

	facts := activeByType(f, "MESA")
	require.Len(t, facts, 3)
	assert.True(t, d("40").Equal(facts["EST_STD_MAT_COST"].Cost))
	assert.True(t, d("23").Equal(facts["EST_STD_ROUTE_COST"].Cost))
	assert.True(t, d("7").Equal(facts["EST_STD_OTHER_COST"].Cost))
	for _, c := range facts {
		assert.Equal(t, usd, c.CostUomID)
		assert.Nil(t, c.ThruDate)
		assert.NotEmpty(t, c.ID)
	}
}

func TestCalculateProductCosts_RecalculoIdempotente(t *testing.T) {
	f := newFixture(t)
	seedMesa(f)
	ctx := context.Background()

	first, err := f.uc.CalculateProductCosts(ctx, "MESA", usd, prefix)
	require.NoError(t, err)
	firstFacts := activeByType(f, "MESA")

	second, err := f.uc.CalculateProductCosts(ctx, "MESA", usd, prefix)
	require.NoError(t, err)
	assert.True(t, first.Equal(second), "dos recálculos sin cambios deben dar el mismo total")

	secondFacts := activeByType(f, "MESA")
	require.Len(t, secondFacts, len(firstFacts), "un solo hecho vigente por tipo")
	for typeID, c := range secondFacts {
		prev := firstFacts[typeID]
		assert.True(t, prev.Cost.Equal(c.Cost), "tipo %s", typeID)
		assert.NotEqual(t, prev.ID, c.ID, "el hecho vigente debe ser nuevo")
	}

	// Los hechos de la primera ejecución quedan expirados, nunca borrados.
	var mesa int
	for _, c := range f.store.CostComponents() {
		if c.ProductID != "MESA" {
			continue
		}
		mesa++
		if _, wasFirst := firstFacts[c.CostComponentTypeID]; wasFirst && c.ID == firstFacts[c.CostComponentTypeID].ID {
			require.NotNil(t, c.ThruDate, "hecho %s debe estar expirado", c.ID)
		}
	}
	assert.Equal(t, 6, mesa)
}

func TestCalculateProductCosts_SinBOMUsaCostoPropio(t *testing.T) {
	f := newFixture(t)
	f.store.AddSupplierProduct(entity.SupplierProduct{
		ProductID: "RESINA", PartyID: "PROV-A", CurrencyUomID: usd,
		LastPrice: ptr(d("5")), SupplierPreferenceOrder: 1, AvailableFromDate: t0.Add(-48 * time.Hour),
	})

	total, err := f.uc.CalculateProductCosts(context.Background(), "RESINA", usd, prefix)
	require.NoError(t, err)
	assert.True(t, d("5").Equal(total))
	facts := activeByType(f, "RESINA")
	require.Contains(t, facts, "EST_STD_MAT_COST")
	assert.NotContains(t, facts, "EST_STD_ROUTE_COST", "costo de ruta cero no se persiste")
}

func TestCalculateProductCosts_AjustePorcentualDelProducto(t *testing.T) {
	f := newFixture(t)
	seedMesa(f)
	f.store.AddCostComponentCalc(entity.CostComponentCalc{
		ID: "CALC-GASTOS", VariableCost: d("10"), CostCustomMethodID: ptr(costing.FormulaProductCostPercentage),
	})
	f.store.AddProductCostComponentCalc(entity.ProductCostComponentCalc{
		ProductID: "MESA", CostComponentTypeID: "OVERHEAD_COST", CostComponentCalcID: "CALC-GASTOS",
		SequenceNum: 1, FromDate: t0.Add(-24 * time.Hour),
	})

	total, err := f.uc.CalculateProductCosts(context.Background(), "MESA", usd, prefix)
	require.NoError(t, err)
	assert.True(t, d("77").Equal(total), "70 + 10%%, obtuvo %s", total)

	overhead := activeByType(f, "MESA")["EST_STD_OVERHEAD_COST"]
	assert.True(t, d("7").Equal(overhead.Cost))
	require.NotNil(t, overhead.CostComponentCalcID)
	assert.Equal(t, "CALC-GASTOS", *overhead.CostComponentCalcID)
}

// sumActive suma los hechos vigentes del producto.
func sumActive(f *fixture, productID string) decimal.Decimal {
	total := decimal.Zero
	for _, c := range activeByType(f, productID) {
		total = total.Add(c.Cost)
	}
	return total
}

func TestCalculateProductCosts_AjusteDelMismoTipoQueUnBucketSeAcumula(t *testing.T) {
	f := newFixture(t)
	seedMesa(f)
	f.store.AddCostComponentCalc(entity.CostComponentCalc{
		ID: "CALC-GASTOS", VariableCost: d("10"), CostCustomMethodID: ptr(costing.FormulaProductCostPercentage),
	})
	f.store.AddProductCostComponentCalc(entity.ProductCostComponentCalc{
		ProductID: "MESA", CostComponentTypeID: "OTHER_COST", CostComponentCalcID: "CALC-GASTOS",
		SequenceNum: 1, FromDate: t0.Add(-24 * time.Hour),
	})

	total, err := f.uc.CalculateProductCosts(context.Background(), "MESA", usd, prefix)
	require.NoError(t, err)
	assert.True(t, d("77").Equal(total), "obtuvo %s", total)

	facts := activeByType(f, "MESA")
	require.Len(t, facts, 3)
	other := facts["EST_STD_OTHER_COST"]
	assert.True(t, d("14").Equal(other.Cost), "bucket 7 + ajuste 7, obtuvo %s", other.Cost)
	require.NotNil(t, other.CostComponentCalcID)
	assert.Equal(t, "CALC-GASTOS", *other.CostComponentCalcID)
	assert.True(t, total.Equal(sumActive(f, "MESA")), "los hechos vigentes deben sumar el total")
}

func TestCalculateProductCosts_BucketConTipoDeMaterialSeAcumula(t *testing.T) {
	f := newFixture(t)
	seedMesa(f)
	f.store.AddCostComponentCalc(entity.CostComponentCalc{ID: "CALC-INSUMO", FixedCost: d("1")})
	f.store.AddWorkEffortCostCalc(entity.WorkEffortCostCalc{
		WorkEffortID: "CORTE", CostComponentTypeID: entity.CostTypeMatSuffix, CostComponentCalcID: "CALC-INSUMO",
		FromDate: t0.Add(-24 * time.Hour),
	})
	ctx := context.Background()

	total, err := f.uc.CalculateProductCosts(ctx, "MESA", usd, prefix)
	require.NoError(t, err)
	assert.True(t, d("71").Equal(total), "obtuvo %s", total)

	facts := activeByType(f, "MESA")
	assert.True(t, d("41").Equal(facts["EST_STD_MAT_COST"].Cost), "material 40 + bucket 1")
	assert.True(t, d("23").Equal(facts["EST_STD_ROUTE_COST"].Cost))
	assert.True(t, total.Equal(sumActive(f, "MESA")))

	again, err := f.uc.CalculateProductCosts(ctx, "MESA", usd, prefix)
	require.NoError(t, err)
	assert.True(t, total.Equal(again))
	assert.True(t, again.Equal(sumActive(f, "MESA")))
}

func TestCalculateProductCosts_CalcSinMetodoSeOmite(t *testing.T) {
	f := newFixture(t)
	seedMesa(f)
	f.store.AddCostComponentCalc(entity.CostComponentCalc{ID: "CALC-VACIO", FixedCost: d("100")})
	f.store.AddProductCostComponentCalc(entity.ProductCostComponentCalc{
		ProductID: "MESA", CostComponentTypeID: "OVERHEAD_COST", CostComponentCalcID: "CALC-VACIO",
		FromDate: t0.Add(-24 * time.Hour),
	})

	total, err := f.uc.CalculateProductCosts(context.Background(), "MESA", usd, prefix)
	require.NoError(t, err)
	assert.True(t, d("70").Equal(total))
	assert.Contains(t, f.logs.String(), "sin método personalizado")
}

func TestCalculateProductCosts_FormulaNoRegistradaNoModificaElLedger(t *testing.T) {
	f := newFixture(t)
	seedMesa(f)
	f.store.AddCostComponent(fact("MESA", "EST_STD_MAT_COST", usd, "99"))
	f.store.AddWorkEffort(corteCon("NO_EXISTE"))
	before := f.store.CostComponents()

	_, err := f.uc.CalculateProductCosts(context.Background(), "MESA", usd, prefix)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnknownFormula))
	assert.Equal(t, before, f.store.CostComponents(), "el rollback deja el ledger intacto")

	facts := activeByType(f, "MESA")
	assert.True(t, d("99").Equal(facts["EST_STD_MAT_COST"].Cost), "el hecho previo sigue vigente")
}

func TestCalculateProductCosts_CalcDeProductoNoRegistradoAborta(t *testing.T) {
	f := newFixture(t)
	seedMesa(f)
	f.store.AddCostComponentCalc(entity.CostComponentCalc{ID: "CALC-X", CostCustomMethodID: ptr("FORMULA_X")})
	f.store.AddProductCostComponentCalc(entity.ProductCostComponentCalc{
		ProductID: "MESA", CostComponentTypeID: "OVERHEAD_COST", CostComponentCalcID: "CALC-X",
		FromDate: t0.Add(-24 * time.Hour),
	})
	before := f.store.CostComponents()

	_, err := f.uc.CalculateProductCosts(context.Background(), "MESA", usd, prefix)
	assert.ErrorIs(t, err, domain.ErrUnknownFormula)
	assert.Equal(t, before, f.store.CostComponents())
}

func TestCalculateProductCosts_FalloDePersistenciaAborta(t *testing.T) {
	f := newFixture(t)
	seedMesa(f)
	boom := errors.New("disco lleno")
	f.store.SetInsertHook(func(fact *entity.CostComponent) error {
		if fact.CostComponentTypeID == "EST_STD_OTHER_COST" {
			return boom
		}
		return nil
	})
	before := f.store.CostComponents()

	_, err := f.uc.CalculateProductCosts(context.Background(), "MESA", usd, prefix)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrPersistence)
	assert.ErrorIs(t, err, boom)
	var pe *domain.PersistenceError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, before, f.store.CostComponents(), "ninguna escritura parcial queda publicada")
	assert.Contains(t, f.logs.String(), "recálculo de costos abortado")
}

func TestCalculateProductCosts_EntradaInvalida(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.CalculateProductCosts(context.Background(), "", usd, prefix)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCalculateProductCosts_UsaMonedaYPrefijoPorDefecto(t *testing.T) {
	f := newFixture(t)
	seedMesa(f)

	total, err := f.uc.CalculateProductCosts(context.Background(), "MESA", "", "")
	require.NoError(t, err)
	assert.True(t, d("70").Equal(total))
	assert.Contains(t, activeByType(f, "MESA"), "EST_STD_ROUTE_COST")
}
