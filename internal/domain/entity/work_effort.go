package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de costo estándar de un activo fijo (tarifas por hora).
const (
	FixedAssetSetupCost = "SETUP_COST"
	FixedAssetUsageCost = "USAGE_COST"
)

// WorkEffort tarea de una ruta de manufactura. Tiempos en milisegundos.
type WorkEffort struct {
	ID                    string
	Name                  string
	FixedAssetID          string
	EstimatedMilliSeconds decimal.Decimal
	EstimatedSetupMillis  decimal.Decimal
	EstimateCalcMethod    *string
	SequenceNum           int
}

// Routing ruta de manufactura de un producto con sus tareas en orden.
type Routing struct {
	ID    string
	Name  string
	Tasks []*WorkEffort
}

// FixedAsset máquina o centro de trabajo que ejecuta una tarea.
type FixedAsset struct {
	ID   string
	Name string
}

// FixedAssetStdCost tarifa estándar (por hora) de un activo fijo en una moneda.
type FixedAssetStdCost struct {
	FixedAssetID            string
	FixedAssetStdCostTypeID string
	AmountUomID             string
	Amount                  decimal.Decimal
	FromDate                time.Time
	ThruDate                *time.Time
}

func (f *FixedAssetStdCost) IsActive(asOf time.Time) bool {
	return IsEffective(f.FromDate, f.ThruDate, asOf)
}
