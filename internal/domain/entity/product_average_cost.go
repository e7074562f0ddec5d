package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductAverageCost costo promedio ponderado por producto, bodega (facility) y organización.
type ProductAverageCost struct {
	ID                  string
	ProductID           string
	FacilityID          string
	OrganizationPartyID string
	AverageCostTypeID   string
	AverageCost         decimal.Decimal
	FromDate            time.Time
	ThruDate            *time.Time
}

func (a *ProductAverageCost) IsActive(asOf time.Time) bool {
	return IsEffective(a.FromDate, a.ThruDate, asOf)
}
