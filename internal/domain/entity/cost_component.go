package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de costo y prefijos usados por el motor de costeo.
const (
	CostTypeRouteSuffix   = "ROUTE_COST"
	CostTypeMatSuffix     = "MAT_COST"
	CostCategoryStdMat    = "EST_STD_MAT"
	AverageCostTypeSimple = "SIMPLE_AVG_COST"
)

// CostComponent es un hecho de costo con vigencia [FromDate, ThruDate).
// Un hecho cerrado (ThruDate != nil) es historia inmutable.
type CostComponent struct {
	ID                  string
	ProductID           string
	CostComponentTypeID string
	CostUomID           string
	Cost                decimal.Decimal
	FromDate            time.Time
	ThruDate            *time.Time
	WorkEffortID        *string
	CostComponentCalcID *string
}

// IsActive indica si el hecho está vigente en asOf.
func (c *CostComponent) IsActive(asOf time.Time) bool {
	return IsEffective(c.FromDate, c.ThruDate, asOf)
}

// IsEffective evalúa una ventana de vigencia: FromDate <= asOf y ThruDate nulo o posterior.
func IsEffective(from time.Time, thru *time.Time, asOf time.Time) bool {
	if from.After(asOf) {
		return false
	}
	return thru == nil || thru.After(asOf)
}
