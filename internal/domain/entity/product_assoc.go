package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de asociación entre productos.
const (
	AssocManufComponent = "MANUF_COMPONENT"
	AssocProductVariant = "PRODUCT_VARIANT"
)

// ProductAssoc arista dirigida ProductID -> ProductIDTo.
// MANUF_COMPONENT: ProductID es el ensamble y ProductIDTo el componente.
// PRODUCT_VARIANT: ProductID es el padre virtual y ProductIDTo la variante.
type ProductAssoc struct {
	ProductID          string
	ProductIDTo        string
	ProductAssocTypeID string
	Quantity           decimal.Decimal
	SequenceNum        int
	Instruction        string
	FromDate           time.Time
	ThruDate           *time.Time
}

func (a *ProductAssoc) IsActive(asOf time.Time) bool {
	return IsEffective(a.FromDate, a.ThruDate, asOf)
}
