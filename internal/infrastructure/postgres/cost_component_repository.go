package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/costeo-api/internal/domain"
	"github.com/jhoicas/costeo-api/internal/domain/entity"
	"github.com/jhoicas/costeo-api/internal/domain/repository"
)

var _ repository.CostComponentRepository = (*CostComponentRepo)(nil)

// CostComponentRepo ledger de hechos de costo sobre PostgreSQL (usable con pool o tx).
type CostComponentRepo struct {
	q Querier
}

// NewCostComponentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCostComponentRepository(q Querier) *CostComponentRepo {
	return &CostComponentRepo{q: q}
}

const costComponentColumns = `id, product_id, cost_component_type_id, cost_uom_id, cost, from_date, thru_date, work_effort_id, cost_component_calc_id`

// FindActive hechos vigentes cuyo tipo empieza por typePrefix (se compara literal, sin comodines de LIKE).
func (r *CostComponentRepo) FindActive(ctx context.Context, productID, typePrefix, currencyUomID string, asOf time.Time) ([]*entity.CostComponent, error) {
	query := `
		SELECT ` + costComponentColumns + `
		FROM cost_components
		WHERE product_id = $1 AND starts_with(cost_component_type_id, $2) AND cost_uom_id = $3
		  AND ` + activeAt("", "$4") + `
		ORDER BY from_date`
	rows, err := r.q.Query(ctx, query, productID, typePrefix, currencyUomID, asOf)
	if err != nil {
		return nil, fmt.Errorf("find active cost components: %w", err)
	}
	defer rows.Close()
	var list []*entity.CostComponent
	for rows.Next() {
		c, err := scanCostComponent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan cost component: %w", err)
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

// Expire cierra un hecho vigente. Un hecho ya cerrado (o inexistente) es un error: nunca se reescribe.
func (r *CostComponentRepo) Expire(ctx context.Context, id string, thruDate time.Time) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE cost_components SET thru_date = $2
		WHERE id = $1 AND (thru_date IS NULL OR thru_date > $2)`, id, thruDate)
	if err != nil {
		return fmt.Errorf("expire cost component: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("expire cost component %s: %w", id, domain.ErrConflict)
	}
	return nil
}

func (r *CostComponentRepo) Insert(ctx context.Context, fact *entity.CostComponent) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO cost_components (`+costComponentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		fact.ID, fact.ProductID, fact.CostComponentTypeID, fact.CostUomID, fact.Cost,
		fact.FromDate, fact.ThruDate, fact.WorkEffortID, fact.CostComponentCalcID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert cost component %s: %w", fact.ID, domain.ErrConflict)
		}
		return fmt.Errorf("insert cost component: %w", err)
	}
	return nil
}

func scanCostComponent(row pgx.Row) (*entity.CostComponent, error) {
	var c entity.CostComponent
	err := row.Scan(&c.ID, &c.ProductID, &c.CostComponentTypeID, &c.CostUomID, &c.Cost,
		&c.FromDate, &c.ThruDate, &c.WorkEffortID, &c.CostComponentCalcID)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
