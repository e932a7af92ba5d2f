package inventory_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/gmz-api/internal/domain/inventory"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestWeightedAverageCost_PrimeraEntrada(t *testing.T) {
	got := inventory.WeightedAverageCost(decimal.Zero, decimal.Zero, d("10"), d("2.5"))
	assert.True(t, got.Equal(d("2.5")), "sin stock previo el costo es el de la entrada, got %s", got)
}

func TestWeightedAverageCost_Pondera(t *testing.T) {
	// 10 u a 2 + 30 u a 4 = 140 / 40 = 3.5
	got := inventory.WeightedAverageCost(d("10"), d("2"), d("30"), d("4"))
	assert.True(t, got.Equal(d("3.5")), "got %s", got)
}

func TestWeightedAverageCost_SumaCero(t *testing.T) {
	got := inventory.WeightedAverageCost(decimal.Zero, d("5"), decimal.Zero, d("7"))
	assert.True(t, got.IsZero())
}

func TestRemoveFromAverage_RevierteEntrada(t *testing.T) {
	avg := inventory.WeightedAverageCost(d("10"), d("2"), d("30"), d("4"))
	got := inventory.RemoveFromAverage(d("40"), avg, d("30"), d("4"))
	assert.True(t, got.Equal(d("2")), "got %s", got)
}

func TestRemoveFromAverage_SinStockConservaCosto(t *testing.T) {
	got := inventory.RemoveFromAverage(d("10"), d("3"), d("10"), d("3"))
	assert.True(t, got.Equal(d("3")))
}
