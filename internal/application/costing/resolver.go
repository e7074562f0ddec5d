package costing

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/costeo-api/internal/domain"
	"github.com/jhoicas/costeo-api/internal/domain/entity"
)

// Resolver resuelve el costo de un producto recorriendo, en orden, hechos directos, padre virtual,
// precio de proveedor en la moneda pedida y precio de proveedor convertido. Se detiene en el primer
// resultado distinto de cero. "Sin datos" resuelve a cero y no es un error.
type Resolver struct {
	settings Settings
}

// NewResolver construye el resolver.
func NewResolver(s Settings) *Resolver {
	return &Resolver{settings: s}
}

// GetProductCost costo de productID en currencyUomID para la categoría costComponentTypePrefix (ej. EST_STD_MAT).
func (r *Resolver) GetProductCost(ctx context.Context, uow UnitOfWork, productID, currencyUomID, costComponentTypePrefix string) (decimal.Decimal, error) {
	if productID == "" || currencyUomID == "" || costComponentTypePrefix == "" {
		return decimal.Zero, domain.ErrInvalidInput
	}
	return r.productCostAt(ctx, uow, productID, currencyUomID, costComponentTypePrefix, r.settings.now())
}

func (r *Resolver) productCostAt(ctx context.Context, uow UnitOfWork, productID, currencyUomID, prefix string, asOf time.Time) (decimal.Decimal, error) {
	return r.resolve(ctx, uow, productID, currencyUomID, prefix, asOf, make(map[string]struct{}))
}

func (r *Resolver) resolve(ctx context.Context, uow UnitOfWork, productID, currencyUomID, prefix string, asOf time.Time, visited map[string]struct{}) (decimal.Decimal, error) {
	log := r.settings.Log.With().Str("product_id", productID).Str("currency", currencyUomID).Str("prefix", prefix).Logger()

	if _, seen := visited[productID]; seen {
		log.Debug().Msg("ciclo en cadena de variantes; se corta la resolución")
		return decimal.Zero, nil
	}
	visited[productID] = struct{}{}

	// 1. Hechos directos vigentes de la categoría.
	facts, err := uow.CostComponents.FindActive(ctx, productID, prefix+"_", currencyUomID, asOf)
	if err != nil {
		return decimal.Zero, fmt.Errorf("costos de %s: %w", productID, err)
	}
	total := decimal.Zero
	for _, f := range facts {
		total = total.Add(f.Cost)
	}
	if !total.IsZero() {
		return total, nil
	}

	// 2. Padre virtual de la variante.
	parentID, err := uow.Assocs.FindVariantParent(ctx, productID, asOf)
	if err != nil {
		return decimal.Zero, fmt.Errorf("padre virtual de %s: %w", productID, err)
	}
	if parentID != "" {
		cost, err := r.resolve(ctx, uow, parentID, currencyUomID, prefix, asOf, visited)
		if err != nil {
			return decimal.Zero, err
		}
		if !cost.IsZero() {
			return cost, nil
		}
	}

	// 3. Precio de proveedor en la misma moneda.
	same, err := uow.SupplierProducts.FindSupplierProducts(ctx, productID, currencyUomID, asOf)
	if err != nil {
		return decimal.Zero, fmt.Errorf("precios de proveedor de %s: %w", productID, err)
	}
	if sp := firstPriced(same); sp != nil {
		return *sp.LastPrice, nil
	}

	// 4. Precio de proveedor en cualquier moneda, convertido.
	anyCurrency, err := uow.SupplierProducts.FindSupplierProducts(ctx, productID, "", asOf)
	if err != nil {
		return decimal.Zero, fmt.Errorf("precios de proveedor de %s: %w", productID, err)
	}
	sp := firstPriced(anyCurrency)
	if sp == nil {
		log.Debug().Msg("sin datos de costo; se resuelve a cero")
		return decimal.Zero, nil
	}
	if sp.CurrencyUomID == currencyUomID {
		return *sp.LastPrice, nil
	}
	converted, err := uow.Converter.Convert(ctx, sp.CurrencyUomID, currencyUomID, asOf, *sp.LastPrice)
	if err != nil {
		log.Warn().Err(err).Str("from", sp.CurrencyUomID).Msg("conversión de moneda fallida; costo cero")
		return decimal.Zero, nil
	}
	if converted.IsZero() {
		log.Warn().Str("from", sp.CurrencyUomID).Msg("sin tasa de conversión; costo cero")
	}
	return converted, nil
}

// firstPriced primer precio con LastPrice distinto de cero, respetando el orden del repositorio.
func firstPriced(list []*entity.SupplierProduct) *entity.SupplierProduct {
	for _, sp := range list {
		if sp.LastPrice != nil && !sp.LastPrice.IsZero() {
			return sp
		}
	}
	return nil
}
