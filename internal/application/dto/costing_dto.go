package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/costeo-api/internal/application/costing"
	"github.com/jhoicas/costeo-api/internal/domain/entity"
)

// ProductCostResponse respuesta de GET /api/costs/products/:id.
type ProductCostResponse struct {
	ProductID               string          `json:"product_id"`
	CurrencyUomID           string          `json:"currency_uom_id"`
	CostComponentTypePrefix string          `json:"cost_component_type_prefix"`
	Cost                    decimal.Decimal `json:"cost"`
}

// CalculateProductCostsRequest body para POST /api/costs/products/:id/calculate. Campos vacíos toman el valor por defecto.
type CalculateProductCostsRequest struct {
	CurrencyUomID           string `json:"currency_uom_id"`
	CostComponentTypePrefix string `json:"cost_component_type_prefix"`
}

// CalculateProductCostsResponse total persistido del recálculo.
type CalculateProductCostsResponse struct {
	ProductID               string          `json:"product_id"`
	CurrencyUomID           string          `json:"currency_uom_id"`
	CostComponentTypePrefix string          `json:"cost_component_type_prefix"`
	TotalCost               decimal.Decimal `json:"total_cost"`
}

// BomNodeDTO una línea de la simulación.
type BomNodeDTO struct {
	ProductID        string          `json:"product_id"`
	Level            int             `json:"level"`
	SequenceNum      int             `json:"sequence_num"`
	Instruction      string          `json:"instruction,omitempty"`
	EdgeQuantity     decimal.Decimal `json:"edge_quantity"`
	RequiredQuantity decimal.Decimal `json:"required_quantity"`
	QuantityOnHand   decimal.Decimal `json:"quantity_on_hand"`
	UnitCost         decimal.Decimal `json:"unit_cost"`
	LineCost         decimal.Decimal `json:"line_cost"`
	IsSubAssembly    bool            `json:"is_sub_assembly"`
}

// BomSimulationResponse respuesta de la simulación; el primer nodo es el producto a fabricar.
type BomSimulationResponse struct {
	ProductID     string          `json:"product_id"`
	Quantity      decimal.Decimal `json:"quantity"`
	CurrencyUomID string          `json:"currency_uom_id"`
	FacilityID    string          `json:"facility_id,omitempty"`
	Nodes         []BomNodeDTO    `json:"nodes"`
}

// TaskTimeResponse tiempos en milisegundos.
type TaskTimeResponse struct {
	WorkEffortID      string          `json:"work_effort_id"`
	EstimatedTaskTime decimal.Decimal `json:"estimated_task_time"`
	SetupTime         decimal.Decimal `json:"setup_time"`
	TaskUnitTime      decimal.Decimal `json:"task_unit_time"`
}

// CostBucketDTO costo por tipo de componente (sin prefijo).
type CostBucketDTO struct {
	CostComponentTypeID string          `json:"cost_component_type_id"`
	Cost                decimal.Decimal `json:"cost"`
}

// TaskCostResponse costo de una tarea de ruta.
type TaskCostResponse struct {
	WorkEffortID      string          `json:"work_effort_id"`
	CurrencyUomID     string          `json:"currency_uom_id"`
	TaskCost          decimal.Decimal `json:"task_cost"`
	CostsByType       []CostBucketDTO `json:"costs_by_type"`
	EstimatedTaskTime decimal.Decimal `json:"estimated_task_time"`
}

// ReceiptRequest body para POST /api/costs/average-cost/receipts.
type ReceiptRequest struct {
	FacilityID       string          `json:"facility_id"`
	QuantityAccepted decimal.Decimal `json:"quantity_accepted"`
	ProductID        string          `json:"product_id"`
	InventoryItemID  string          `json:"inventory_item_id"`
}

// AverageCostResponse promedio vigente después de la recepción.
type AverageCostResponse struct {
	ID                  string          `json:"id"`
	ProductID           string          `json:"product_id"`
	FacilityID          string          `json:"facility_id"`
	OrganizationPartyID string          `json:"organization_party_id"`
	AverageCostTypeID   string          `json:"average_cost_type_id"`
	AverageCost         decimal.Decimal `json:"average_cost"`
	FromDate            time.Time       `json:"from_date"`
}

// ToReceiptInput convierte el body a la entrada del motor.
func (r ReceiptRequest) ToReceiptInput() costing.ReceiptInput {
	return costing.ReceiptInput{
		FacilityID:       r.FacilityID,
		QuantityAccepted: r.QuantityAccepted,
		ProductID:        r.ProductID,
		InventoryItemID:  r.InventoryItemID,
	}
}

// FromBomNodes arma la respuesta de simulación.
func FromBomNodes(in costing.SimulationInput, nodes []costing.BomNode) BomSimulationResponse {
	out := BomSimulationResponse{
		ProductID:     in.ProductID,
		Quantity:      in.Quantity,
		CurrencyUomID: in.CurrencyUomID,
		FacilityID:    in.FacilityID,
		Nodes:         make([]BomNodeDTO, 0, len(nodes)),
	}
	for _, n := range nodes {
		out.Nodes = append(out.Nodes, BomNodeDTO{
			ProductID:        n.ProductID,
			Level:            n.Level,
			SequenceNum:      n.SequenceNum,
			Instruction:      n.Instruction,
			EdgeQuantity:     n.EdgeQuantity,
			RequiredQuantity: n.RequiredQuantity,
			QuantityOnHand:   n.QuantityOnHand,
			UnitCost:         n.UnitCost,
			LineCost:         n.LineCost,
			IsSubAssembly:    n.IsSubAssembly,
		})
	}
	return out
}

// FromTaskTime respuesta de tiempo estimado.
func FromTaskTime(workEffortID string, t *costing.TaskTime) TaskTimeResponse {
	return TaskTimeResponse{
		WorkEffortID:      workEffortID,
		EstimatedTaskTime: t.EstimatedTaskTime,
		SetupTime:         t.SetupTime,
		TaskUnitTime:      t.TaskUnitTime,
	}
}

// FromTaskCost respuesta de costo de tarea.
func FromTaskCost(currencyUomID string, t *costing.TaskCost) TaskCostResponse {
	out := TaskCostResponse{
		WorkEffortID:      t.WorkEffortID,
		CurrencyUomID:     currencyUomID,
		TaskCost:          t.TaskCost,
		CostsByType:       make([]CostBucketDTO, 0, len(t.CostsByType)),
		EstimatedTaskTime: t.Time.EstimatedTaskTime,
	}
	for _, b := range t.CostsByType {
		out.CostsByType = append(out.CostsByType, CostBucketDTO{CostComponentTypeID: b.CostComponentTypeID, Cost: b.Cost})
	}
	return out
}

// FromAverageCost respuesta del promedio registrado.
func FromAverageCost(a *entity.ProductAverageCost) AverageCostResponse {
	return AverageCostResponse{
		ID:                  a.ID,
		ProductID:           a.ProductID,
		FacilityID:          a.FacilityID,
		OrganizationPartyID: a.OrganizationPartyID,
		AverageCostTypeID:   a.AverageCostTypeID,
		AverageCost:         a.AverageCost,
		FromDate:            a.FromDate,
	}
}
