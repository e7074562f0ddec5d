package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/costeo-api/internal/domain/entity"
	"github.com/jhoicas/costeo-api/internal/domain/repository"
)

var (
	_ repository.InventoryItemRepository = (*InventoryItemRepo)(nil)
	_ repository.FacilityRepository      = (*FacilityRepo)(nil)
)

// InventoryItemRepo items de inventario (solo lectura para el motor).
type InventoryItemRepo struct {
	q Querier
}

// NewInventoryItemRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryItemRepository(q Querier) *InventoryItemRepo {
	return &InventoryItemRepo{q: q}
}

func (r *InventoryItemRepo) GetByID(ctx context.Context, id string) (*entity.InventoryItem, error) {
	var i entity.InventoryItem
	err := r.q.QueryRow(ctx, `
		SELECT id, product_id, facility_id, COALESCE(owner_party_id, ''), COALESCE(currency_uom_id, ''), unit_cost,
		       quantity_on_hand_total, available_to_promise_total, accounting_quantity_total
		FROM inventory_items WHERE id = $1`, id).Scan(
		&i.ID, &i.ProductID, &i.FacilityID, &i.OwnerPartyID, &i.CurrencyUomID, &i.UnitCost,
		&i.QuantityOnHandTotal, &i.AvailableToPromiseTotal, &i.AccountingQuantityTotal,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get inventory item: %w", err)
	}
	return &i, nil
}

// SumQuantityOnHand facilityID u ownerPartyID vacíos no filtran.
func (r *InventoryItemRepo) SumQuantityOnHand(ctx context.Context, productID, facilityID, ownerPartyID string) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.q.QueryRow(ctx, `
		SELECT COALESCE(SUM(quantity_on_hand_total), 0)
		FROM inventory_items
		WHERE product_id = $1
		  AND ($2::text = '' OR facility_id = $2)
		  AND ($3::text = '' OR owner_party_id = $3)`, productID, facilityID, ownerPartyID).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum quantity on hand: %w", err)
	}
	return total, nil
}

// FacilityRepo bodegas.
type FacilityRepo struct {
	q Querier
}

// NewFacilityRepository construye el adaptador. Pasar pool o tx (Querier).
func NewFacilityRepository(q Querier) *FacilityRepo {
	return &FacilityRepo{q: q}
}

func (r *FacilityRepo) GetByID(ctx context.Context, id string) (*entity.Facility, error) {
	var f entity.Facility
	err := r.q.QueryRow(ctx, `SELECT id, name, COALESCE(owner_party_id, '') FROM facilities WHERE id = $1`, id).Scan(
		&f.ID, &f.Name, &f.OwnerPartyID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get facility: %w", err)
	}
	return &f, nil
}
