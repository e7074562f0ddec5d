package entity

import "github.com/shopspring/decimal"

// InventoryItem item de inventario recibido; disparador y entrada del recálculo de costo promedio.
type InventoryItem struct {
	ID                      string
	ProductID               string
	FacilityID              string
	OwnerPartyID            string
	CurrencyUomID           string
	UnitCost                decimal.Decimal
	QuantityOnHandTotal     decimal.Decimal
	AvailableToPromiseTotal decimal.Decimal
	AccountingQuantityTotal decimal.Decimal
}

// Facility bodega física; su dueño es la organización contable por defecto.
type Facility struct {
	ID           string
	Name         string
	OwnerPartyID string
}
