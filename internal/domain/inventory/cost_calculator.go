package inventory

import "github.com/shopspring/decimal"

// WeightedAverageCost recalcula el costo unitario promedio ponderado de una materia prima al recibir una entrega.
// NuevoCosto = ((StockActual * CostoActual) + (CantEntrada * CostoEntrada)) / (StockActual + CantEntrada)
func WeightedAverageCost(stockActual, costoActual, cantEntrada, costoEntrada decimal.Decimal) decimal.Decimal {
	sum := stockActual.Add(cantEntrada)
	if sum.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	num := stockActual.Mul(costoActual).Add(cantEntrada.Mul(costoEntrada))
	return num.Div(sum).Round(4)
}

// RemoveFromAverage revierte el aporte de una entrega al promedio ponderado (al editarla o eliminarla).
// Si no queda stock, o el resultado sería negativo, el costo conserva el valor actual.
func RemoveFromAverage(stockActual, costoActual, cantSalida, costoSalida decimal.Decimal) decimal.Decimal {
	rest := stockActual.Sub(cantSalida)
	if rest.LessThanOrEqual(decimal.Zero) {
		return costoActual
	}
	num := stockActual.Mul(costoActual).Sub(cantSalida.Mul(costoSalida))
	if num.LessThan(decimal.Zero) {
		return costoActual
	}
	return num.Div(rest).Round(4)
}
