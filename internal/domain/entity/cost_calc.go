package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// CostComponentCalc parámetros de fórmula: lineal (fijo + variable por tiempo) o método personalizado.
type CostComponentCalc struct {
	ID                 string
	Description        string
	CurrencyUomID      string
	FixedCost          decimal.Decimal
	VariableCost       decimal.Decimal
	PerMilliSecond     decimal.Decimal
	CostCustomMethodID *string
}

// HasCustomMethod indica si la calc delega en una fórmula registrada.
func (c *CostComponentCalc) HasCustomMethod() bool {
	return c.CostCustomMethodID != nil && *c.CostCustomMethodID != ""
}

// WorkEffortCostCalc asocia una CostComponentCalc a una tarea de ruta.
type WorkEffortCostCalc struct {
	WorkEffortID        string
	CostComponentTypeID string
	CostComponentCalcID string
	FromDate            time.Time
	ThruDate            *time.Time
}

func (w *WorkEffortCostCalc) IsActive(asOf time.Time) bool {
	return IsEffective(w.FromDate, w.ThruDate, asOf)
}

// ProductCostComponentCalc ajuste por fórmula aplicado al costo total de un producto, en orden de SequenceNum.
type ProductCostComponentCalc struct {
	ProductID           string
	CostComponentTypeID string
	CostComponentCalcID string
	SequenceNum         int
	FromDate            time.Time
	ThruDate            *time.Time
}

func (p *ProductCostComponentCalc) IsActive(asOf time.Time) bool {
	return IsEffective(p.FromDate, p.ThruDate, asOf)
}
