package inventory

import "github.com/shopspring/decimal"

// WeightedAverage implementa el costo promedio ponderado al recibir inventario (servicio de dominio).
// NuevoCosto = ((CantAnterior * CostoAnterior) + (CantRecibida * CostoRecibido)) / (CantAnterior + CantRecibida)
// El resultado se redondea (half-up) a scale decimales. Si la cantidad total no es positiva devuelve costoRecibido.
func WeightedAverage(cantAnterior, costoAnterior, cantRecibida, costoRecibido decimal.Decimal, scale int32) decimal.Decimal {
	sum := cantAnterior.Add(cantRecibida)
	if sum.LessThanOrEqual(decimal.Zero) {
		return costoRecibido
	}
	num := cantAnterior.Mul(costoAnterior).Add(cantRecibida.Mul(costoRecibido))
	return num.DivRound(sum, scale)
}

// AverageOnReceipt calcula el promedio a partir del total en mano después de la recepción:
// cantAnterior = totalEnMano - cantRecibida.
func AverageOnReceipt(costoAnterior, totalEnMano, cantRecibida, costoRecibido decimal.Decimal, scale int32) decimal.Decimal {
	cantAnterior := totalEnMano.Sub(cantRecibida)
	if totalEnMano.LessThanOrEqual(decimal.Zero) {
		return costoRecibido
	}
	return WeightedAverage(cantAnterior, costoAnterior, cantRecibida, costoRecibido, scale)
}
