package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// SupplierProduct precio de compra de un proveedor (solo lectura para el motor).
type SupplierProduct struct {
	ProductID               string
	PartyID                 string
	CurrencyUomID           string
	LastPrice               *decimal.Decimal
	SupplierPreferenceOrder int
	AvailableFromDate       time.Time
	AvailableThruDate       *time.Time
}

func (s *SupplierProduct) IsAvailable(asOf time.Time) bool {
	return IsEffective(s.AvailableFromDate, s.AvailableThruDate, asOf)
}
