package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/costeo-api/internal/domain/entity"
	"github.com/jhoicas/costeo-api/internal/domain/repository"
)

var _ repository.CostCalcRepository = (*CostCalcRepo)(nil)

// CostCalcRepo parámetros de fórmulas de costo y su asociación a productos.
type CostCalcRepo struct {
	q Querier
}

// NewCostCalcRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCostCalcRepository(q Querier) *CostCalcRepo {
	return &CostCalcRepo{q: q}
}

func (r *CostCalcRepo) GetCostComponentCalc(ctx context.Context, id string) (*entity.CostComponentCalc, error) {
	var c entity.CostComponentCalc
	err := r.q.QueryRow(ctx, `
		SELECT id, description, COALESCE(currency_uom_id, ''), fixed_cost, variable_cost, per_milli_second, cost_custom_method_id
		FROM cost_component_calcs WHERE id = $1`, id).Scan(
		&c.ID, &c.Description, &c.CurrencyUomID, &c.FixedCost, &c.VariableCost, &c.PerMilliSecond, &c.CostCustomMethodID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cost component calc: %w", err)
	}
	return &c, nil
}

func (r *CostCalcRepo) FindProductCostComponentCalcs(ctx context.Context, productID string, asOf time.Time) ([]*entity.ProductCostComponentCalc, error) {
	rows, err := r.q.Query(ctx, `
		SELECT product_id, cost_component_type_id, cost_component_calc_id, sequence_num, from_date, thru_date
		FROM product_cost_component_calcs
		WHERE product_id = $1 AND `+activeAt("", "$2")+`
		ORDER BY sequence_num`, productID, asOf)
	if err != nil {
		return nil, fmt.Errorf("find product cost component calcs: %w", err)
	}
	defer rows.Close()
	var list []*entity.ProductCostComponentCalc
	for rows.Next() {
		var p entity.ProductCostComponentCalc
		if err := rows.Scan(&p.ProductID, &p.CostComponentTypeID, &p.CostComponentCalcID, &p.SequenceNum, &p.FromDate, &p.ThruDate); err != nil {
			return nil, fmt.Errorf("scan product cost component calc: %w", err)
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}
