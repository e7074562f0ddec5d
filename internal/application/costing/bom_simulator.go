package costing

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/costeo-api/internal/domain"
	"github.com/jhoicas/costeo-api/internal/domain/entity"
)

// BomNode una línea de la simulación de BOM. Level 0 es el producto a fabricar.
type BomNode struct {
	ProductID        string
	Level            int
	SequenceNum      int
	Instruction      string
	EdgeQuantity     decimal.Decimal
	RequiredQuantity decimal.Decimal
	QuantityOnHand   decimal.Decimal
	UnitCost         decimal.Decimal
	LineCost         decimal.Decimal
	IsSubAssembly    bool
}

// SimulationInput parámetros de la simulación. FacilityID vacío = cantidad en mano global.
type SimulationInput struct {
	ProductID     string
	Quantity      decimal.Decimal
	CurrencyUomID string
	FacilityID    string
}

// BomSimulator proyecta el costo de fabricar una cantidad explotando un nivel del BOM. No escribe nada.
// Los sub-ensambles solo se marcan; el caller baja de nivel por separado.
type BomSimulator struct {
	resolver *Resolver
	settings Settings
}

// NewBomSimulator construye el simulador.
func NewBomSimulator(resolver *Resolver, s Settings) *BomSimulator {
	return &BomSimulator{resolver: resolver, settings: s}
}

// SimulateBomCost devuelve el nodo raíz seguido de un nodo por componente directo.
func (s *BomSimulator) SimulateBomCost(ctx context.Context, uow UnitOfWork, in SimulationInput) ([]BomNode, error) {
	if in.ProductID == "" || in.Quantity.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	now := s.settings.now()

	rootOnHand, err := uow.InventoryItems.SumQuantityOnHand(ctx, in.ProductID, in.FacilityID, "")
	if err != nil {
		return nil, fmt.Errorf("cantidad en mano de %s: %w", in.ProductID, err)
	}
	edges, err := uow.Assocs.FindBomComponents(ctx, in.ProductID, now)
	if err != nil {
		return nil, fmt.Errorf("componentes de %s: %w", in.ProductID, err)
	}

	nodes := make([]BomNode, 1, len(edges)+1)
	rootCost := decimal.Zero

	for _, e := range edges {
		if e.ProductIDTo == in.ProductID {
			s.settings.Log.Warn().Str("product_id", in.ProductID).Msg("BOM referencia al propio producto; se omite la línea")
			continue
		}
		node, err := s.componentNode(ctx, uow, e, in, now)
		if err != nil {
			return nil, err
		}
		if !node.IsSubAssembly {
			rootCost = rootCost.Add(node.LineCost)
		}
		nodes = append(nodes, node)
	}

	root := BomNode{
		ProductID:        in.ProductID,
		Level:            0,
		EdgeQuantity:     decimal.NewFromInt(1),
		RequiredQuantity: in.Quantity,
		QuantityOnHand:   rootOnHand,
		LineCost:         rootCost,
		UnitCost:         decimal.Zero,
	}
	if in.Quantity.IsPositive() {
		root.UnitCost = rootCost.DivRound(in.Quantity, s.settings.scale())
	}
	nodes[0] = root
	return nodes, nil
}

func (s *BomSimulator) componentNode(ctx context.Context, uow UnitOfWork, e *entity.ProductAssoc, in SimulationInput, now time.Time) (BomNode, error) {
	required := e.Quantity.Mul(in.Quantity)
	onHand, err := uow.InventoryItems.SumQuantityOnHand(ctx, e.ProductIDTo, in.FacilityID, "")
	if err != nil {
		return BomNode{}, fmt.Errorf("cantidad en mano de %s: %w", e.ProductIDTo, err)
	}
	sub, err := uow.Assocs.IsSubAssembly(ctx, e.ProductIDTo, now)
	if err != nil {
		return BomNode{}, fmt.Errorf("sub-ensamble %s: %w", e.ProductIDTo, err)
	}
	unitCost, err := s.resolver.productCostAt(ctx, uow, e.ProductIDTo, in.CurrencyUomID, entity.CostCategoryStdMat, now)
	if err != nil {
		return BomNode{}, err
	}
	return BomNode{
		ProductID:        e.ProductIDTo,
		Level:            1,
		SequenceNum:      e.SequenceNum,
		Instruction:      e.Instruction,
		EdgeQuantity:     e.Quantity,
		RequiredQuantity: required,
		QuantityOnHand:   onHand,
		UnitCost:         unitCost,
		LineCost:         unitCost.Mul(required),
		IsSubAssembly:    sub,
	}, nil
}
