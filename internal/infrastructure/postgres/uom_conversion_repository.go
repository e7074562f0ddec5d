package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/costeo-api/internal/domain/repository"
)

var _ repository.CurrencyConverter = (*UomConversionRepo)(nil)

// UomConversionRepo conversión de monedas con tasas fechadas (uom_conversions_dated).
type UomConversionRepo struct {
	q Querier
}

// NewUomConversionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewUomConversionRepository(q Querier) *UomConversionRepo {
	return &UomConversionRepo{q: q}
}

// Convert usa la tasa directa vigente o, si no existe, la inversa. Sin tasa devuelve cero.
func (r *UomConversionRepo) Convert(ctx context.Context, fromUomID, toUomID string, asOf time.Time, amount decimal.Decimal) (decimal.Decimal, error) {
	if fromUomID == toUomID {
		return amount, nil
	}
	factor, ok, err := r.factor(ctx, fromUomID, toUomID, asOf)
	if err != nil {
		return decimal.Zero, err
	}
	if ok {
		return amount.Mul(factor), nil
	}
	factor, ok, err = r.factor(ctx, toUomID, fromUomID, asOf)
	if err != nil {
		return decimal.Zero, err
	}
	if ok && !factor.IsZero() {
		return amount.Div(factor), nil
	}
	return decimal.Zero, nil
}

func (r *UomConversionRepo) factor(ctx context.Context, from, to string, asOf time.Time) (decimal.Decimal, bool, error) {
	var f decimal.Decimal
	err := r.q.QueryRow(ctx, `
		SELECT conversion_factor FROM uom_conversions_dated
		WHERE uom_id = $1 AND uom_id_to = $2 AND `+activeAt("", "$3")+`
		ORDER BY from_date DESC LIMIT 1`, from, to, asOf).Scan(&f)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, false, nil
		}
		return decimal.Zero, false, fmt.Errorf("get uom conversion %s->%s: %w", from, to, err)
	}
	return f, true, nil
}
