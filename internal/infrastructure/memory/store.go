// Package memory implementa los puertos del motor en memoria. Cada Run trabaja sobre una copia
// del dataset y solo la publica si fn devuelve nil (Rollback = descartar la copia).
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/costeo-api/internal/application/costing"
	"github.com/jhoicas/costeo-api/internal/domain/entity"
)

var _ costing.TxRunner = (*Store)(nil)

type rateKey struct{ from, to string }

type dataset struct {
	costComponents      []entity.CostComponent
	averageCosts        []entity.ProductAverageCost
	assocs              []entity.ProductAssoc
	supplierProducts    []entity.SupplierProduct
	routings            map[string]entity.Routing
	workEfforts         map[string]entity.WorkEffort
	fixedAssets         map[string]entity.FixedAsset
	fixedAssetStdCosts  []entity.FixedAssetStdCost
	workEffortCostCalcs []entity.WorkEffortCostCalc
	costComponentCalcs  map[string]entity.CostComponentCalc
	productCalcs        []entity.ProductCostComponentCalc
	inventoryItems      map[string]entity.InventoryItem
	facilities          map[string]entity.Facility
	rates               map[rateKey]decimal.Decimal
}

func newDataset() *dataset {
	return &dataset{
		routings:           make(map[string]entity.Routing),
		workEfforts:        make(map[string]entity.WorkEffort),
		fixedAssets:        make(map[string]entity.FixedAsset),
		costComponentCalcs: make(map[string]entity.CostComponentCalc),
		inventoryItems:     make(map[string]entity.InventoryItem),
		facilities:         make(map[string]entity.Facility),
		rates:              make(map[rateKey]decimal.Decimal),
	}
}

// clone copia profunda suficiente para aislar una transacción (los structs son valores;
// los punteros internos apuntan a datos que nunca se mutan en sitio).
func (d *dataset) clone() *dataset {
	c := newDataset()
	c.costComponents = append([]entity.CostComponent(nil), d.costComponents...)
	c.averageCosts = append([]entity.ProductAverageCost(nil), d.averageCosts...)
	c.assocs = append([]entity.ProductAssoc(nil), d.assocs...)
	c.supplierProducts = append([]entity.SupplierProduct(nil), d.supplierProducts...)
	c.fixedAssetStdCosts = append([]entity.FixedAssetStdCost(nil), d.fixedAssetStdCosts...)
	c.workEffortCostCalcs = append([]entity.WorkEffortCostCalc(nil), d.workEffortCostCalcs...)
	c.productCalcs = append([]entity.ProductCostComponentCalc(nil), d.productCalcs...)
	for k, v := range d.routings {
		c.routings[k] = v
	}
	for k, v := range d.workEfforts {
		c.workEfforts[k] = v
	}
	for k, v := range d.fixedAssets {
		c.fixedAssets[k] = v
	}
	for k, v := range d.costComponentCalcs {
		c.costComponentCalcs[k] = v
	}
	for k, v := range d.inventoryItems {
		c.inventoryItems[k] = v
	}
	for k, v := range d.facilities {
		c.facilities[k] = v
	}
	for k, v := range d.rates {
		c.rates[k] = v
	}
	return c
}

// Store almacén en memoria. Las transacciones se serializan con un mutex.
type Store struct {
	mu         sync.Mutex
	data       *dataset
	insertHook func(fact *entity.CostComponent) error
}

// NewStore almacén vacío.
func NewStore() *Store {
	return &Store{data: newDataset()}
}

// Run ejecuta fn sobre una copia del dataset; publica la copia solo si fn devuelve nil.
func (s *Store) Run(ctx context.Context, fn func(uow costing.UnitOfWork) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx := s.data.clone()
	if err := fn(unitOfWork(tx, s.insertHook)); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.data = tx
	return nil
}

func unitOfWork(d *dataset, hook func(*entity.CostComponent) error) costing.UnitOfWork {
	return costing.UnitOfWork{
		CostComponents:   &costComponentRepo{d: d, hook: hook},
		AverageCosts:     &averageCostRepo{d: d},
		Assocs:           &assocRepo{d: d},
		SupplierProducts: &supplierProductRepo{d: d},
		Routing:          &routingRepo{d: d},
		CostCalcs:        &costCalcRepo{d: d},
		InventoryItems:   &inventoryItemRepo{d: d},
		Facilities:       &facilityRepo{d: d},
		Converter:        &converter{d: d},
	}
}

// ── Carga de datos (seed) ────────────────────────────────────────────────────

func (s *Store) with(fn func(d *dataset)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.data)
}

func (s *Store) AddCostComponent(c entity.CostComponent) {
	s.with(func(d *dataset) { d.costComponents = append(d.costComponents, c) })
}

func (s *Store) AddAverageCost(a entity.ProductAverageCost) {
	s.with(func(d *dataset) { d.averageCosts = append(d.averageCosts, a) })
}

func (s *Store) AddAssoc(a entity.ProductAssoc) {
	s.with(func(d *dataset) { d.assocs = append(d.assocs, a) })
}

func (s *Store) AddSupplierProduct(sp entity.SupplierProduct) {
	s.with(func(d *dataset) { d.supplierProducts = append(d.supplierProducts, sp) })
}

// SetRouting asigna la ruta de productID y registra sus tareas.
func (s *Store) SetRouting(productID string, r entity.Routing) {
	s.with(func(d *dataset) {
		d.routings[productID] = r
		for _, t := range r.Tasks {
			d.workEfforts[t.ID] = *t
		}
	})
}

func (s *Store) AddWorkEffort(w entity.WorkEffort) {
	s.with(func(d *dataset) { d.workEfforts[w.ID] = w })
}

func (s *Store) AddFixedAsset(f entity.FixedAsset) {
	s.with(func(d *dataset) { d.fixedAssets[f.ID] = f })
}

func (s *Store) AddFixedAssetStdCost(f entity.FixedAssetStdCost) {
	s.with(func(d *dataset) { d.fixedAssetStdCosts = append(d.fixedAssetStdCosts, f) })
}

func (s *Store) AddWorkEffortCostCalc(w entity.WorkEffortCostCalc) {
	s.with(func(d *dataset) { d.workEffortCostCalcs = append(d.workEffortCostCalcs, w) })
}

func (s *Store) AddCostComponentCalc(c entity.CostComponentCalc) {
	s.with(func(d *dataset) { d.costComponentCalcs[c.ID] = c })
}

func (s *Store) AddProductCostComponentCalc(p entity.ProductCostComponentCalc) {
	s.with(func(d *dataset) { d.productCalcs = append(d.productCalcs, p) })
}

func (s *Store) AddInventoryItem(i entity.InventoryItem) {
	s.with(func(d *dataset) { d.inventoryItems[i.ID] = i })
}

func (s *Store) AddFacility(f entity.Facility) {
	s.with(func(d *dataset) { d.facilities[f.ID] = f })
}

// SetRate tasa from -> to: monto_to = monto_from * factor.
func (s *Store) SetRate(from, to string, factor decimal.Decimal) {
	s.with(func(d *dataset) { d.rates[rateKey{from, to}] = factor })
}

// SetInsertHook permite simular fallos de escritura: si hook devuelve error, Insert falla.
func (s *Store) SetInsertHook(hook func(fact *entity.CostComponent) error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insertHook = hook
}

// ── Lectura para verificación ────────────────────────────────────────────────

// CostComponents copia de todos los hechos de costo (vigentes e históricos).
func (s *Store) CostComponents() []entity.CostComponent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entity.CostComponent(nil), s.data.costComponents...)
}

// ActiveCostComponents hechos vigentes en asOf para el producto.
func (s *Store) ActiveCostComponents(productID string, asOf time.Time) []entity.CostComponent {
	var out []entity.CostComponent
	for _, c := range s.CostComponents() {
		if c.ProductID == productID && c.IsActive(asOf) {
			out = append(out, c)
		}
	}
	return out
}

// AverageCosts copia de todos los costos promedio.
func (s *Store) AverageCosts() []entity.ProductAverageCost {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entity.ProductAverageCost(nil), s.data.averageCosts...)
}
