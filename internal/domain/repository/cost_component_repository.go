package repository

import (
	"context"
	"time"

	"github.com/jhoicas/costeo-api/internal/domain/entity"
)

// CostComponentRepository puerto del ledger de hechos de costo (append-only salvo ThruDate).
type CostComponentRepository interface {
	// FindActive devuelve los hechos vigentes en asOf cuyo tipo empieza con typePrefix y cuya moneda es currencyUomID.
	FindActive(ctx context.Context, productID, typePrefix, currencyUomID string, asOf time.Time) ([]*entity.CostComponent, error)
	// Expire cierra un hecho vigente (ThruDate = thruDate). Nunca modifica un hecho ya cerrado.
	Expire(ctx context.Context, id string, thruDate time.Time) error
	Insert(ctx context.Context, fact *entity.CostComponent) error
}

// AverageCostRepository puerto del ledger de costo promedio.
type AverageCostRepository interface {
	FindActive(ctx context.Context, productID, facilityID, organizationPartyID, averageCostTypeID string, asOf time.Time) ([]*entity.ProductAverageCost, error)
	Expire(ctx context.Context, id string, thruDate time.Time) error
	Insert(ctx context.Context, fact *entity.ProductAverageCost) error
}
