// Package costing implementa el motor de costeo: resolución de costos por cadena de fuentes,
// costo promedio en recepciones, simulación de BOM, costo de tareas de ruta y recálculo
// del costo estándar de un producto.
package costing

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/costeo-api/internal/domain/repository"
)

// UnitOfWork agrupa los repositorios atados a una misma transacción.
// Cada operación del motor recibe la unidad de trabajo explícitamente; el caller hace Commit o Rollback.
type UnitOfWork struct {
	CostComponents   repository.CostComponentRepository
	AverageCosts     repository.AverageCostRepository
	Assocs           repository.ProductAssocRepository
	SupplierProducts repository.SupplierProductRepository
	Routing          repository.RoutingRepository
	CostCalcs        repository.CostCalcRepository
	InventoryItems   repository.InventoryItemRepository
	Facilities       repository.FacilityRepository
	Converter        repository.CurrencyConverter
}

// TxRunner ejecuta fn dentro de una transacción: Commit si fn devuelve nil, Rollback en cualquier otro caso.
type TxRunner interface {
	Run(ctx context.Context, fn func(uow UnitOfWork) error) error
}

// Settings parámetros compartidos por los componentes del motor.
type Settings struct {
	// Now reloj inyectable; nil = time.Now.
	Now func() time.Time
	Log zerolog.Logger
	// Decimals escala de redondeo (half-up) de los costos persistidos.
	Decimals int32
}

func (s Settings) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

// DefaultDecimals escala usada cuando Settings.Decimals es cero.
const DefaultDecimals int32 = 6

func (s Settings) scale() int32 {
	if s.Decimals <= 0 {
		return DefaultDecimals
	}
	return s.Decimals
}
