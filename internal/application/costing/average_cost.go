package costing

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/costeo-api/internal/domain"
	"github.com/jhoicas/costeo-api/internal/domain/entity"
	"github.com/jhoicas/costeo-api/internal/domain/inventory"
)

// ReceiptInput datos de una recepción de inventario.
type ReceiptInput struct {
	FacilityID       string
	QuantityAccepted decimal.Decimal
	ProductID        string
	InventoryItemID  string
}

// AverageCostLedger recalcula el costo promedio ponderado al recibir inventario.
type AverageCostLedger struct {
	ledger   *Ledger
	settings Settings
}

// NewAverageCostLedger construye el componente.
func NewAverageCostLedger(ledger *Ledger, s Settings) *AverageCostLedger {
	return &AverageCostLedger{ledger: ledger, settings: s}
}

// UpdateAverageCostOnReceipt busca el promedio vigente SIMPLE_AVG_COST del producto en la bodega y
// organización, calcula el nuevo promedio ponderado por cantidad y lo registra (expira el anterior).
func (a *AverageCostLedger) UpdateAverageCostOnReceipt(ctx context.Context, uow UnitOfWork, in ReceiptInput) (*entity.ProductAverageCost, error) {
	if in.ProductID == "" || in.FacilityID == "" || in.InventoryItemID == "" {
		return nil, domain.ErrInvalidInput
	}
	if !in.QuantityAccepted.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	now := a.settings.now()

	item, err := uow.InventoryItems.GetByID(ctx, in.InventoryItemID)
	if err != nil {
		return nil, fmt.Errorf("obtener inventory_item: %w", err)
	}
	if item == nil {
		return nil, domain.NewNotFound("inventory_item", in.InventoryItemID)
	}
	if item.ProductID != in.ProductID {
		return nil, fmt.Errorf("inventory_item %s no corresponde al producto %s: %w", item.ID, in.ProductID, domain.ErrInvalidInput)
	}

	orgID := item.OwnerPartyID
	if orgID == "" {
		facility, err := uow.Facilities.GetByID(ctx, in.FacilityID)
		if err != nil {
			return nil, fmt.Errorf("obtener facility: %w", err)
		}
		if facility == nil {
			return nil, domain.NewNotFound("facility", in.FacilityID)
		}
		if facility.OwnerPartyID == "" {
			return nil, domain.NewNotFound("organization", in.FacilityID)
		}
		orgID = facility.OwnerPartyID
	}

	current, err := uow.AverageCosts.FindActive(ctx, in.ProductID, in.FacilityID, orgID, entity.AverageCostTypeSimple, now)
	if err != nil {
		return nil, fmt.Errorf("buscar costo promedio vigente: %w", err)
	}

	newAverage := item.UnitCost
	if prev := latest(current); prev != nil {
		totalOnHand, err := uow.InventoryItems.SumQuantityOnHand(ctx, in.ProductID, in.FacilityID, item.OwnerPartyID)
		if err != nil {
			return nil, fmt.Errorf("cantidad en mano: %w", err)
		}
		newAverage = inventory.AverageOnReceipt(prev.AverageCost, totalOnHand, in.QuantityAccepted, item.UnitCost, a.settings.scale())
	}

	avg := &entity.ProductAverageCost{
		ProductID:           in.ProductID,
		FacilityID:          in.FacilityID,
		OrganizationPartyID: orgID,
		AverageCostTypeID:   entity.AverageCostTypeSimple,
		AverageCost:         newAverage,
	}
	if err := a.ledger.RecordAverageCost(ctx, uow, avg, now); err != nil {
		return nil, err
	}
	a.settings.Log.Info().
		Str("product_id", in.ProductID).
		Str("facility_id", in.FacilityID).
		Str("average_cost", newAverage.String()).
		Msg("costo promedio actualizado")
	return avg, nil
}

func latest(list []*entity.ProductAverageCost) *entity.ProductAverageCost {
	var out *entity.ProductAverageCost
	for _, c := range list {
		if out == nil || c.FromDate.After(out.FromDate) {
			out = c
		}
	}
	return out
}
