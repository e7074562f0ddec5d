package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// CurrencyConverter convierte montos entre monedas (UOM) a una fecha.
// Devuelve cero cuando no hay tasa disponible.
type CurrencyConverter interface {
	Convert(ctx context.Context, fromUomID, toUomID string, asOf time.Time, amount decimal.Decimal) (decimal.Decimal, error)
}
