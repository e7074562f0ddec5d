package costing_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/costeo-api/internal/application/costing"
	"github.com/jhoicas/costeo-api/internal/domain"
	"github.com/jhoicas/costeo-api/internal/domain/entity"
)

func TestGetProductCost_SinDatosDevuelveCero(t *testing.T) {
	f := newFixture(t)
	cost, err := f.uc.GetProductCost(context.Background(), "NADA", usd, "EST_STD_MAT")
	require.NoError(t, err)
	assert.True(t, cost.IsZero(), "sin datos el costo debe ser cero, obtuvo %s", cost)
}

func TestGetProductCost_SumaHechosVigentesDeLaCategoria(t *testing.T) {
	f := newFixture(t)
	f.store.AddCostComponent(fact("P1", "EST_STD_MAT_COST", usd, "10"))
	f.store.AddCostComponent(fact("P1", "EST_STD_MAT_FLETE", usd, "2.5"))
	// Otra moneda, otra categoría y un hecho cerrado no cuentan.
	f.store.AddCostComponent(fact("P1", "EST_STD_MAT_COST", eur, "99"))
	f.store.AddCostComponent(fact("P1", "EST_STD_ROUTE_COST", usd, "99"))
	closed := fact("P1", "EST_STD_MAT_VIEJO", usd, "99")
	closed.ThruDate = ptr(t0.Add(-time.Hour))
	f.store.AddCostComponent(closed)

	cost, err := f.uc.GetProductCost(context.Background(), "P1", usd, "EST_STD_MAT")
	require.NoError(t, err)
	assert.True(t, d("12.5").Equal(cost), "esperado 12.5, obtuvo %s", cost)
}

func TestGetProductCost_HeredaDelPadreVirtual(t *testing.T) {
	f := newFixture(t)
	f.store.AddAssoc(variantEdge("CAMISA", "CAMISA-ROJA-M"))
	f.store.AddCostComponent(fact("CAMISA", "EST_STD_MAT_COST", usd, "12.50"))

	cost, err := f.uc.GetProductCost(context.Background(), "CAMISA-ROJA-M", usd, "EST_STD_MAT")
	require.NoError(t, err)
	assert.True(t, d("12.50").Equal(cost), "la variante debe heredar 12.50, obtuvo %s", cost)
}

func TestGetProductCost_CicloDeVariantesTermina(t *testing.T) {
	f := newFixture(t)
	f.store.AddAssoc(variantEdge("V1", "V2"))
	f.store.AddAssoc(variantEdge("V2", "V1"))

	done := make(chan struct{})
	go func() {
		defer close(done)
		cost, err := f.uc.GetProductCost(context.Background(), "V1", usd, "EST_STD_MAT")
		assert.NoError(t, err)
		assert.True(t, cost.IsZero())
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("la resolución con ciclo de variantes no terminó")
	}
}

func TestGetProductCost_PrecioProveedorPorPreferencia(t *testing.T) {
	f := newFixture(t)
	from := t0.Add(-48 * time.Hour)
	f.store.AddSupplierProduct(entity.SupplierProduct{
		ProductID: "TORNILLO", PartyID: "PROV-B", CurrencyUomID: usd,
		LastPrice: ptr(d("5")), SupplierPreferenceOrder: 2, AvailableFromDate: from,
	})
	f.store.AddSupplierProduct(entity.SupplierProduct{
		ProductID: "TORNILLO", PartyID: "PROV-A", CurrencyUomID: usd,
		LastPrice: ptr(d("9")), SupplierPreferenceOrder: 1, AvailableFromDate: from,
	})
	// Preferido sin precio: se salta.
	f.store.AddSupplierProduct(entity.SupplierProduct{
		ProductID: "TORNILLO", PartyID: "PROV-C", CurrencyUomID: usd,
		SupplierPreferenceOrder: 0, AvailableFromDate: from,
	})

	cost, err := f.uc.GetProductCost(context.Background(), "TORNILLO", usd, "EST_STD_MAT")
	require.NoError(t, err)
	assert.True(t, d("9").Equal(cost), "debe ganar el proveedor preferido con precio, obtuvo %s", cost)
}

func TestGetProductCost_PrecioProveedorConvertido(t *testing.T) {
	f := newFixture(t)
	f.store.AddSupplierProduct(entity.SupplierProduct{
		ProductID: "TUERCA", PartyID: "PROV-EU", CurrencyUomID: eur,
		LastPrice: ptr(d("10")), SupplierPreferenceOrder: 1, AvailableFromDate: t0.Add(-48 * time.Hour),
	})
	f.store.SetRate(eur, usd, d("1.1"))

	cost, err := f.uc.GetProductCost(context.Background(), "TUERCA", usd, "EST_STD_MAT")
	require.NoError(t, err)
	assert.True(t, d("11").Equal(cost), "esperado 11, obtuvo %s", cost)
}

func TestGetProductCost_SinTasaDeConversionDevuelveCeroConAviso(t *testing.T) {
	f := newFixture(t)
	f.store.AddSupplierProduct(entity.SupplierProduct{
		ProductID: "TUERCA", PartyID: "PROV-EU", CurrencyUomID: eur,
		LastPrice: ptr(d("10")), SupplierPreferenceOrder: 1, AvailableFromDate: t0.Add(-48 * time.Hour),
	})

	cost, err := f.uc.GetProductCost(context.Background(), "TUERCA", usd, "EST_STD_MAT")
	require.NoError(t, err)
	assert.True(t, cost.IsZero())
	assert.Contains(t, f.logs.String(), "sin tasa de conversión")
}

func TestGetProductCost_MonedaVaciaEsInvalida(t *testing.T) {
	f := newFixture(t)
	f.store.AddSupplierProduct(entity.SupplierProduct{
		ProductID: "TUERCA", PartyID: "PROV-EU", CurrencyUomID: eur,
		LastPrice: ptr(d("10")), SupplierPreferenceOrder: 1, AvailableFromDate: t0.Add(-48 * time.Hour),
	})
	// Sin moneda por defecto la moneda vacía llega al resolver.
	uc := costing.NewCostingUseCase(f.store, costing.NewKeyedLocker(), f.engine,
		costing.UseCaseConfig{DefaultPrefix: "EST_STD_MAT"}, zerolog.Nop())

	cost, err := uc.GetProductCost(context.Background(), "TUERCA", "", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.True(t, cost.IsZero(), "no debe devolver el precio en EUR sin convertir")

	_, err = uc.GetProductCost(context.Background(), "", usd, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
