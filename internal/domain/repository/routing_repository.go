package repository

import (
	"context"
	"time"

	"github.com/jhoicas/costeo-api/internal/domain/entity"
)

// RoutingRepository puerto de rutas de manufactura, tareas y activos fijos.
type RoutingRepository interface {
	// FindRouting ruta vigente del producto con sus tareas ordenadas; nil si no tiene.
	FindRouting(ctx context.Context, productID string, asOf time.Time) (*entity.Routing, error)
	// GetWorkEffort nil si no existe.
	GetWorkEffort(ctx context.Context, workEffortID string) (*entity.WorkEffort, error)
	// GetFixedAsset nil si no existe.
	GetFixedAsset(ctx context.Context, fixedAssetID string) (*entity.FixedAsset, error)
	// FindFixedAssetStdCost tarifa vigente; nil si no hay.
	FindFixedAssetStdCost(ctx context.Context, fixedAssetID, costTypeID, currencyUomID string, asOf time.Time) (*entity.FixedAssetStdCost, error)
	FindWorkEffortCostCalcs(ctx context.Context, workEffortID string, asOf time.Time) ([]*entity.WorkEffortCostCalc, error)
}

// CostCalcRepository puerto de fórmulas de costo.
type CostCalcRepository interface {
	// GetCostComponentCalc nil si no existe.
	GetCostComponentCalc(ctx context.Context, id string) (*entity.CostComponentCalc, error)
	// FindProductCostComponentCalcs vigentes para el producto en orden ascendente de SequenceNum.
	FindProductCostComponentCalcs(ctx context.Context, productID string, asOf time.Time) ([]*entity.ProductCostComponentCalc, error)
}
