package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/costeo-api/internal/domain"
	"github.com/jhoicas/costeo-api/internal/domain/entity"
	"github.com/jhoicas/costeo-api/internal/domain/repository"
)

var _ repository.AverageCostRepository = (*AverageCostRepo)(nil)

// AverageCostRepo costos promedio por producto, bodega y organización.
type AverageCostRepo struct {
	q Querier
}

// NewAverageCostRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAverageCostRepository(q Querier) *AverageCostRepo {
	return &AverageCostRepo{q: q}
}

func (r *AverageCostRepo) FindActive(ctx context.Context, productID, facilityID, organizationPartyID, averageCostTypeID string, asOf time.Time) ([]*entity.ProductAverageCost, error) {
	query := `
		SELECT id, product_id, facility_id, organization_party_id, average_cost_type_id, average_cost, from_date, thru_date
		FROM product_average_costs
		WHERE product_id = $1 AND facility_id = $2 AND organization_party_id = $3 AND average_cost_type_id = $4
		  AND ` + activeAt("", "$5") + `
		ORDER BY from_date DESC`
	rows, err := r.q.Query(ctx, query, productID, facilityID, organizationPartyID, averageCostTypeID, asOf)
	if err != nil {
		return nil, fmt.Errorf("find active average costs: %w", err)
	}
	defer rows.Close()
	var list []*entity.ProductAverageCost
	for rows.Next() {
		var a entity.ProductAverageCost
		if err := rows.Scan(&a.ID, &a.ProductID, &a.FacilityID, &a.OrganizationPartyID, &a.AverageCostTypeID,
			&a.AverageCost, &a.FromDate, &a.ThruDate); err != nil {
			return nil, fmt.Errorf("scan average cost: %w", err)
		}
		list = append(list, &a)
	}
	return list, rows.Err()
}

func (r *AverageCostRepo) Expire(ctx context.Context, id string, thruDate time.Time) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE product_average_costs SET thru_date = $2
		WHERE id = $1 AND (thru_date IS NULL OR thru_date > $2)`, id, thruDate)
	if err != nil {
		return fmt.Errorf("expire average cost: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("expire average cost %s: %w", id, domain.ErrConflict)
	}
	return nil
}

func (r *AverageCostRepo) Insert(ctx context.Context, a *entity.ProductAverageCost) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO product_average_costs (id, product_id, facility_id, organization_party_id, average_cost_type_id, average_cost, from_date, thru_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		a.ID, a.ProductID, a.FacilityID, a.OrganizationPartyID, a.AverageCostTypeID, a.AverageCost, a.FromDate, a.ThruDate,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert average cost %s: %w", a.ID, domain.ErrConflict)
		}
		return fmt.Errorf("insert average cost: %w", err)
	}
	return nil
}
