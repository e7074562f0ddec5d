package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/costeo-api/internal/domain/entity"
	"github.com/jhoicas/costeo-api/internal/domain/repository"
)

var (
	_ repository.CostComponentRepository   = (*costComponentRepo)(nil)
	_ repository.AverageCostRepository     = (*averageCostRepo)(nil)
	_ repository.ProductAssocRepository    = (*assocRepo)(nil)
	_ repository.SupplierProductRepository = (*supplierProductRepo)(nil)
	_ repository.RoutingRepository         = (*routingRepo)(nil)
	_ repository.CostCalcRepository        = (*costCalcRepo)(nil)
	_ repository.InventoryItemRepository   = (*inventoryItemRepo)(nil)
	_ repository.FacilityRepository        = (*facilityRepo)(nil)
	_ repository.CurrencyConverter         = (*converter)(nil)
)

type costComponentRepo struct {
	d    *dataset
	hook func(*entity.CostComponent) error
}

func (r *costComponentRepo) FindActive(_ context.Context, productID, typePrefix, currencyUomID string, asOf time.Time) ([]*entity.CostComponent, error) {
	var out []*entity.CostComponent
	for i := range r.d.costComponents {
		c := r.d.costComponents[i]
		if c.ProductID == productID && c.CostUomID == currencyUomID &&
			strings.HasPrefix(c.CostComponentTypeID, typePrefix) && c.IsActive(asOf) {
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *costComponentRepo) Expire(_ context.Context, id string, thruDate time.Time) error {
	for i := range r.d.costComponents {
		c := &r.d.costComponents[i]
		if c.ID != id {
			continue
		}
		if c.ThruDate != nil && !c.ThruDate.After(thruDate) {
			return fmt.Errorf("cost_component %s ya está cerrado", id)
		}
		t := thruDate
		c.ThruDate = &t
		return nil
	}
	return fmt.Errorf("cost_component %s no existe", id)
}

func (r *costComponentRepo) Insert(_ context.Context, fact *entity.CostComponent) error {
	if r.hook != nil {
		if err := r.hook(fact); err != nil {
			return err
		}
	}
	r.d.costComponents = append(r.d.costComponents, *fact)
	return nil
}

type averageCostRepo struct{ d *dataset }

func (r *averageCostRepo) FindActive(_ context.Context, productID, facilityID, organizationPartyID, averageCostTypeID string, asOf time.Time) ([]*entity.ProductAverageCost, error) {
	var out []*entity.ProductAverageCost
	for i := range r.d.averageCosts {
		a := r.d.averageCosts[i]
		if a.ProductID == productID && a.FacilityID == facilityID && a.OrganizationPartyID == organizationPartyID &&
			a.AverageCostTypeID == averageCostTypeID && a.IsActive(asOf) {
			out = append(out, &a)
		}
	}
	return out, nil
}

func (r *averageCostRepo) Expire(_ context.Context, id string, thruDate time.Time) error {
	for i := range r.d.averageCosts {
		a := &r.d.averageCosts[i]
		if a.ID != id {
			continue
		}
		if a.ThruDate != nil && !a.ThruDate.After(thruDate) {
			return fmt.Errorf("product_average_cost %s ya está cerrado", id)
		}
		t := thruDate
		a.ThruDate = &t
		return nil
	}
	return fmt.Errorf("product_average_cost %s no existe", id)
}

func (r *averageCostRepo) Insert(_ context.Context, fact *entity.ProductAverageCost) error {
	r.d.averageCosts = append(r.d.averageCosts, *fact)
	return nil
}

type assocRepo struct{ d *dataset }

func (r *assocRepo) active(typeID string, asOf time.Time, match func(a entity.ProductAssoc) bool) []*entity.ProductAssoc {
	var out []*entity.ProductAssoc
	for i := range r.d.assocs {
		a := r.d.assocs[i]
		if a.ProductAssocTypeID == typeID && a.IsActive(asOf) && match(a) {
			out = append(out, &a)
		}
	}
	return out
}

func (r *assocRepo) FindBomComponents(_ context.Context, productID string, asOf time.Time) ([]*entity.ProductAssoc, error) {
	out := r.active(entity.AssocManufComponent, asOf, func(a entity.ProductAssoc) bool { return a.ProductID == productID })
	sort.SliceStable(out, func(i, j int) bool { return out[i].SequenceNum < out[j].SequenceNum })
	return out, nil
}

func (r *assocRepo) FindVariantParent(_ context.Context, productID string, asOf time.Time) (string, error) {
	list := r.active(entity.AssocProductVariant, asOf, func(a entity.ProductAssoc) bool { return a.ProductIDTo == productID })
	if len(list) == 0 {
		return "", nil
	}
	return list[0].ProductID, nil
}

func (r *assocRepo) IsSubAssembly(ctx context.Context, productID string, asOf time.Time) (bool, error) {
	list, err := r.FindBomComponents(ctx, productID, asOf)
	if err != nil {
		return false, err
	}
	return len(list) > 0, nil
}

type supplierProductRepo struct{ d *dataset }

func (r *supplierProductRepo) FindSupplierProducts(_ context.Context, productID, currencyUomID string, asOf time.Time) ([]*entity.SupplierProduct, error) {
	var out []*entity.SupplierProduct
	for i := range r.d.supplierProducts {
		sp := r.d.supplierProducts[i]
		if sp.ProductID != productID || !sp.IsAvailable(asOf) {
			continue
		}
		if currencyUomID != "" && sp.CurrencyUomID != currencyUomID {
			continue
		}
		out = append(out, &sp)
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.SupplierPreferenceOrder != b.SupplierPreferenceOrder {
			return a.SupplierPreferenceOrder < b.SupplierPreferenceOrder
		}
		pa, pb := priceOrMax(a.LastPrice), priceOrMax(b.LastPrice)
		if !pa.Equal(pb) {
			return pa.LessThan(pb)
		}
		return a.AvailableFromDate.After(b.AvailableFromDate)
	})
	return out, nil
}

// priceOrMax ordena los precios nulos al final (como NULLS LAST).
func priceOrMax(p *decimal.Decimal) decimal.Decimal {
	if p == nil {
		return decimal.New(1, 18)
	}
	return *p
}

type routingRepo struct{ d *dataset }

func (r *routingRepo) FindRouting(_ context.Context, productID string, _ time.Time) (*entity.Routing, error) {
	rt, ok := r.d.routings[productID]
	if !ok {
		return nil, nil
	}
	tasks := append([]*entity.WorkEffort(nil), rt.Tasks...)
	sort.SliceStable(tasks, func(i, j int) bool { return tasks[i].SequenceNum < tasks[j].SequenceNum })
	rt.Tasks = tasks
	return &rt, nil
}

func (r *routingRepo) GetWorkEffort(_ context.Context, workEffortID string) (*entity.WorkEffort, error) {
	w, ok := r.d.workEfforts[workEffortID]
	if !ok {
		return nil, nil
	}
	return &w, nil
}

func (r *routingRepo) GetFixedAsset(_ context.Context, fixedAssetID string) (*entity.FixedAsset, error) {
	f, ok := r.d.fixedAssets[fixedAssetID]
	if !ok {
		return nil, nil
	}
	return &f, nil
}

func (r *routingRepo) FindFixedAssetStdCost(_ context.Context, fixedAssetID, costTypeID, currencyUomID string, asOf time.Time) (*entity.FixedAssetStdCost, error) {
	var out *entity.FixedAssetStdCost
	for i := range r.d.fixedAssetStdCosts {
		f := r.d.fixedAssetStdCosts[i]
		if f.FixedAssetID != fixedAssetID || f.FixedAssetStdCostTypeID != costTypeID || f.AmountUomID != currencyUomID || !f.IsActive(asOf) {
			continue
		}
		if out == nil || f.FromDate.After(out.FromDate) {
			out = &f
		}
	}
	return out, nil
}

func (r *routingRepo) FindWorkEffortCostCalcs(_ context.Context, workEffortID string, asOf time.Time) ([]*entity.WorkEffortCostCalc, error) {
	var out []*entity.WorkEffortCostCalc
	for i := range r.d.workEffortCostCalcs {
		w := r.d.workEffortCostCalcs[i]
		if w.WorkEffortID == workEffortID && w.IsActive(asOf) {
			out = append(out, &w)
		}
	}
	return out, nil
}

type costCalcRepo struct{ d *dataset }

func (r *costCalcRepo) GetCostComponentCalc(_ context.Context, id string) (*entity.CostComponentCalc, error) {
	c, ok := r.d.costComponentCalcs[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r *costCalcRepo) FindProductCostComponentCalcs(_ context.Context, productID string, asOf time.Time) ([]*entity.ProductCostComponentCalc, error) {
	var out []*entity.ProductCostComponentCalc
	for i := range r.d.productCalcs {
		p := r.d.productCalcs[i]
		if p.ProductID == productID && p.IsActive(asOf) {
			out = append(out, &p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SequenceNum < out[j].SequenceNum })
	return out, nil
}

type inventoryItemRepo struct{ d *dataset }

func (r *inventoryItemRepo) GetByID(_ context.Context, id string) (*entity.InventoryItem, error) {
	i, ok := r.d.inventoryItems[id]
	if !ok {
		return nil, nil
	}
	return &i, nil
}

func (r *inventoryItemRepo) SumQuantityOnHand(_ context.Context, productID, facilityID, ownerPartyID string) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, i := range r.d.inventoryItems {
		if i.ProductID != productID {
			continue
		}
		if facilityID != "" && i.FacilityID != facilityID {
			continue
		}
		if ownerPartyID != "" && i.OwnerPartyID != ownerPartyID {
			continue
		}
		total = total.Add(i.QuantityOnHandTotal)
	}
	return total, nil
}

type facilityRepo struct{ d *dataset }

func (r *facilityRepo) GetByID(_ context.Context, id string) (*entity.Facility, error) {
	f, ok := r.d.facilities[id]
	if !ok {
		return nil, nil
	}
	return &f, nil
}

type converter struct{ d *dataset }

// Convert usa la tasa directa o la inversa; sin tasa devuelve cero.
func (c *converter) Convert(_ context.Context, fromUomID, toUomID string, _ time.Time, amount decimal.Decimal) (decimal.Decimal, error) {
	if fromUomID == toUomID {
		return amount, nil
	}
	if f, ok := c.d.rates[rateKey{fromUomID, toUomID}]; ok {
		return amount.Mul(f), nil
	}
	if f, ok := c.d.rates[rateKey{toUomID, fromUomID}]; ok && !f.IsZero() {
		return amount.Div(f), nil
	}
	return decimal.Zero, nil
}
