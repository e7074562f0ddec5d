package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/costeo-api/internal/domain/entity"
	"github.com/jhoicas/costeo-api/internal/domain/repository"
)

var _ repository.SupplierProductRepository = (*SupplierProductRepo)(nil)

// SupplierProductRepo precios de proveedor (solo lectura).
type SupplierProductRepo struct {
	q Querier
}

// NewSupplierProductRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSupplierProductRepository(q Querier) *SupplierProductRepo {
	return &SupplierProductRepo{q: q}
}

// FindSupplierProducts precios disponibles en asOf; currencyUomID vacío = cualquier moneda.
// Orden: preferencia, precio (nulos al final), disponibilidad más reciente.
func (r *SupplierProductRepo) FindSupplierProducts(ctx context.Context, productID, currencyUomID string, asOf time.Time) ([]*entity.SupplierProduct, error) {
	query := `
		SELECT product_id, party_id, currency_uom_id, last_price, supplier_pref_order, available_from_date, available_thru_date
		FROM supplier_products
		WHERE product_id = $1 AND ($2::text = '' OR currency_uom_id = $2)
		  AND available_from_date <= $3 AND (available_thru_date IS NULL OR available_thru_date > $3)
		ORDER BY supplier_pref_order ASC, last_price ASC NULLS LAST, available_from_date DESC`
	rows, err := r.q.Query(ctx, query, productID, currencyUomID, asOf)
	if err != nil {
		return nil, fmt.Errorf("find supplier products: %w", err)
	}
	defer rows.Close()
	var list []*entity.SupplierProduct
	for rows.Next() {
		var sp entity.SupplierProduct
		if err := rows.Scan(&sp.ProductID, &sp.PartyID, &sp.CurrencyUomID, &sp.LastPrice, &sp.SupplierPreferenceOrder,
			&sp.AvailableFromDate, &sp.AvailableThruDate); err != nil {
			return nil, fmt.Errorf("scan supplier product: %w", err)
		}
		list = append(list, &sp)
	}
	return list, rows.Err()
}
