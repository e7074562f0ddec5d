package inventory_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/costeo-api/internal/domain/inventory"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// 10.00 sobre 100 unidades + 50 unidades a 16.00 => (1000 + 800) / 150 = 12.00
func TestWeightedAverage_Ponderado(t *testing.T) {
	got := inventory.WeightedAverage(d("100"), d("10.00"), d("50"), d("16.00"), 6)
	assert.True(t, got.Equal(d("12")), "promedio ponderado esperado 12, obtenido %s", got)
}

func TestAverageOnReceipt_UsaTotalEnMano(t *testing.T) {
	got := inventory.AverageOnReceipt(d("10.00"), d("150"), d("50"), d("16.00"), 6)
	assert.True(t, got.Equal(d("12")), "obtenido %s", got)
}

// No es un promedio simple de costos unitarios: (10 + 16) / 2 = 13 sería incorrecto.
func TestAverageOnReceipt_NoEsPromedioSimple(t *testing.T) {
	got := inventory.AverageOnReceipt(d("10.00"), d("150"), d("50"), d("16.00"), 6)
	assert.False(t, got.Equal(d("13")))
}

func TestWeightedAverage_TotalCeroDevuelveCostoRecibido(t *testing.T) {
	got := inventory.WeightedAverage(d("0"), d("10"), d("0"), d("7.5"), 6)
	assert.True(t, got.Equal(d("7.5")))
}

func TestWeightedAverage_RedondeoHalfUp(t *testing.T) {
	// (1*1 + 2*2) / 3 = 1.6666... -> 1.67 con scale 2
	got := inventory.WeightedAverage(d("1"), d("1"), d("2"), d("2"), 2)
	assert.Equal(t, "1.67", got.StringFixed(2))
}
