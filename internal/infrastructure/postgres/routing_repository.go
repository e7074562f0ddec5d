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

var _ repository.RoutingRepository = (*RoutingRepo)(nil)

// RoutingRepo rutas de manufactura, tareas, activos fijos y sus tarifas.
type RoutingRepo struct {
	q Querier
}

// NewRoutingRepository construye el adaptador. Pasar pool o tx (Querier).
func NewRoutingRepository(q Querier) *RoutingRepo {
	return &RoutingRepo{q: q}
}

const workEffortColumns = `w.id, w.name, COALESCE(w.fixed_asset_id, ''), w.estimated_milli_seconds, w.estimated_setup_millis, w.estimate_calc_method`

// FindRouting ruta vigente más reciente del producto. Las tareas salen en el orden de routing_tasks.
func (r *RoutingRepo) FindRouting(ctx context.Context, productID string, asOf time.Time) (*entity.Routing, error) {
	var rt entity.Routing
	err := r.q.QueryRow(ctx, `
		SELECT ro.id, ro.name
		FROM product_routings pr
		JOIN routings ro ON ro.id = pr.routing_id
		WHERE pr.product_id = $1 AND `+activeAt("pr", "$2")+`
		ORDER BY pr.from_date DESC LIMIT 1`, productID, asOf).Scan(&rt.ID, &rt.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find routing: %w", err)
	}

	rows, err := r.q.Query(ctx, `
		SELECT `+workEffortColumns+`, rt.sequence_num
		FROM routing_tasks rt
		JOIN work_efforts w ON w.id = rt.work_effort_id
		WHERE rt.routing_id = $1 AND `+activeAt("rt", "$2")+`
		ORDER BY rt.sequence_num, w.id`, rt.ID, asOf)
	if err != nil {
		return nil, fmt.Errorf("find routing tasks: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		task, err := scanWorkEffort(rows)
		if err != nil {
			return nil, fmt.Errorf("scan routing task: %w", err)
		}
		rt.Tasks = append(rt.Tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("find routing tasks: %w", err)
	}
	return &rt, nil
}

func (r *RoutingRepo) GetWorkEffort(ctx context.Context, workEffortID string) (*entity.WorkEffort, error) {
	row := r.q.QueryRow(ctx, `SELECT `+workEffortColumns+`, w.sequence_num FROM work_efforts w WHERE w.id = $1`, workEffortID)
	task, err := scanWorkEffort(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get work effort: %w", err)
	}
	return task, nil
}

func scanWorkEffort(row pgx.Row) (*entity.WorkEffort, error) {
	var w entity.WorkEffort
	if err := row.Scan(&w.ID, &w.Name, &w.FixedAssetID, &w.EstimatedMilliSeconds, &w.EstimatedSetupMillis,
		&w.EstimateCalcMethod, &w.SequenceNum); err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *RoutingRepo) GetFixedAsset(ctx context.Context, fixedAssetID string) (*entity.FixedAsset, error) {
	var f entity.FixedAsset
	err := r.q.QueryRow(ctx, `SELECT id, name FROM fixed_assets WHERE id = $1`, fixedAssetID).Scan(&f.ID, &f.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get fixed asset: %w", err)
	}
	return &f, nil
}

// FindFixedAssetStdCost tarifa vigente más reciente del tipo y la moneda pedidos.
func (r *RoutingRepo) FindFixedAssetStdCost(ctx context.Context, fixedAssetID, costTypeID, currencyUomID string, asOf time.Time) (*entity.FixedAssetStdCost, error) {
	var f entity.FixedAssetStdCost
	err := r.q.QueryRow(ctx, `
		SELECT fixed_asset_id, fixed_asset_std_cost_type_id, amount_uom_id, amount, from_date, thru_date
		FROM fixed_asset_std_costs
		WHERE fixed_asset_id = $1 AND fixed_asset_std_cost_type_id = $2 AND amount_uom_id = $3
		  AND `+activeAt("", "$4")+`
		ORDER BY from_date DESC LIMIT 1`, fixedAssetID, costTypeID, currencyUomID, asOf).Scan(
		&f.FixedAssetID, &f.FixedAssetStdCostTypeID, &f.AmountUomID, &f.Amount, &f.FromDate, &f.ThruDate,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find fixed asset std cost: %w", err)
	}
	return &f, nil
}

func (r *RoutingRepo) FindWorkEffortCostCalcs(ctx context.Context, workEffortID string, asOf time.Time) ([]*entity.WorkEffortCostCalc, error) {
	rows, err := r.q.Query(ctx, `
		SELECT work_effort_id, cost_component_type_id, cost_component_calc_id, from_date, thru_date
		FROM work_effort_cost_calcs
		WHERE work_effort_id = $1 AND `+activeAt("", "$2")+`
		ORDER BY from_date, cost_component_type_id`, workEffortID, asOf)
	if err != nil {
		return nil, fmt.Errorf("find work effort cost calcs: %w", err)
	}
	defer rows.Close()
	var list []*entity.WorkEffortCostCalc
	for rows.Next() {
		var w entity.WorkEffortCostCalc
		if err := rows.Scan(&w.WorkEffortID, &w.CostComponentTypeID, &w.CostComponentCalcID, &w.FromDate, &w.ThruDate); err != nil {
			return nil, fmt.Errorf("scan work effort cost calc: %w", err)
		}
		list = append(list, &w)
	}
	return list, rows.Err()
}
