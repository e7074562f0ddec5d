// Package costformula agrupa las fórmulas puras del motor de costeo (sin acceso a datos).
package costformula

import (
	"strings"

	"github.com/shopspring/decimal"
)

// MillisPerHour convierte milisegundos a horas: las tarifas de activos fijos son por hora.
var MillisPerHour = decimal.NewFromInt(3_600_000)

var hundred = decimal.NewFromInt(100)

// BaseTaskEstimate tiempo estimado base de una tarea: unitario * cantidad + alistamiento.
func BaseTaskEstimate(unitMillis, quantity, setupMillis decimal.Decimal) decimal.Decimal {
	return unitMillis.Mul(quantity).Add(setupMillis)
}

// FixedAssetTaskCost costo de una tarea con tarifas por hora del activo:
// (uso * (tiempoTotal - alistamiento) + alistamientoTarifa * alistamiento) / 3.600.000
func FixedAssetTaskCost(usageRate, setupRate, estimatedMillis, setupMillis decimal.Decimal) decimal.Decimal {
	usage := usageRate.Mul(estimatedMillis.Sub(setupMillis))
	setup := setupRate.Mul(setupMillis)
	return usage.Add(setup).Div(MillisPerHour)
}

// LinearCalcCost fórmula lineal de una CostComponentCalc: (tiempoTotal / perMilliSecond) * variable + fijo.
// Cuando perMilliSecond es cero solo aplica el fijo y ok es false.
func LinearCalcCost(totalMillis, perMilliSecond, variableCost, fixedCost decimal.Decimal) (cost decimal.Decimal, ok bool) {
	if perMilliSecond.IsZero() {
		return fixedCost, false
	}
	return totalMillis.Div(perMilliSecond).Mul(variableCost).Add(fixedCost), true
}

// PercentageOfBase ajuste porcentual sobre un costo base: base * porcentaje / 100 + fijo.
func PercentageOfBase(baseCost, percentage, fixedCost decimal.Decimal) decimal.Decimal {
	return baseCost.Mul(percentage).Div(hundred).Add(fixedCost)
}

// TypeID compone el tipo persistido: prefijo + "_" + sufijo.
func TypeID(prefix, suffix string) string {
	return prefix + "_" + suffix
}

// MatchesPrefix indica si un tipo pertenece a la categoría prefix (prefix + "_...").
func MatchesPrefix(costComponentTypeID, prefix string) bool {
	return strings.HasPrefix(costComponentTypeID, prefix+"_")
}
