package repository

import (
	"context"
	"time"

	"github.com/jhoicas/costeo-api/internal/domain/entity"
)

// SupplierProductRepository puerto de listas de precio de proveedores.
type SupplierProductRepository interface {
	// FindSupplierProducts precios vigentes en asOf. currencyUomID vacío = cualquier moneda.
	// Orden: SupplierPreferenceOrder ASC, LastPrice ASC, AvailableFromDate DESC.
	FindSupplierProducts(ctx context.Context, productID, currencyUomID string, asOf time.Time) ([]*entity.SupplierProduct, error)
}
