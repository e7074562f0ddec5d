package repository

import (
	"context"

	"github.com/jhoicas/costeo-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// InventoryItemRepository puerto de items de inventario.
type InventoryItemRepository interface {
	// GetByID nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.InventoryItem, error)
	// SumQuantityOnHand suma QuantityOnHandTotal por producto. facilityID u ownerPartyID vacíos no filtran.
	SumQuantityOnHand(ctx context.Context, productID, facilityID, ownerPartyID string) (decimal.Decimal, error)
}

// FacilityRepository puerto de bodegas.
type FacilityRepository interface {
	// GetByID nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.Facility, error)
}
