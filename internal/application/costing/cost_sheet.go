package costing

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// BomCostSheet datos de la hoja de costo de fabricación (simulación de BOM lista para imprimir).
type BomCostSheet struct {
	ProductID     string
	CurrencyUomID string
	FacilityID    string
	Quantity      decimal.Decimal
	GeneratedAt   time.Time
	Nodes         []BomNode
}

// CostSheetRenderer genera el documento (PDF) de una hoja de costo.
type CostSheetRenderer interface {
	RenderBomCostSheet(ctx context.Context, sheet BomCostSheet) ([]byte, error)
}

// ErrNoRenderer el caso de uso no tiene generador de documentos configurado.
var ErrNoRenderer = errors.New("costing: generador de hoja de costo no configurado")

// WithCostSheetRenderer asigna el generador de documentos.
func (uc *CostingUseCase) WithCostSheetRenderer(r CostSheetRenderer) *CostingUseCase {
	uc.renderer = r
	return uc
}

// BomCostSheetPDF simula el BOM y lo entrega como documento.
func (uc *CostingUseCase) BomCostSheetPDF(ctx context.Context, in SimulationInput) ([]byte, error) {
	if uc.renderer == nil {
		return nil, ErrNoRenderer
	}
	nodes, err := uc.SimulateBomCost(ctx, in)
	if err != nil {
		return nil, err
	}
	return uc.renderer.RenderBomCostSheet(ctx, BomCostSheet{
		ProductID:     in.ProductID,
		CurrencyUomID: uc.currency(in.CurrencyUomID),
		FacilityID:    in.FacilityID,
		Quantity:      in.Quantity,
		GeneratedAt:   uc.engine.Bom.settings.now(),
		Nodes:         nodes,
	})
}
