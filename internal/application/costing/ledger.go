package costing

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/costeo-api/internal/domain"
	"github.com/jhoicas/costeo-api/internal/domain/entity"
)

// Ledger aplica la disciplina "expirar vigente, insertar nuevo" sobre los hechos de costo.
// Nunca modifica un hecho ya cerrado.
type Ledger struct {
	settings Settings
}

// NewLedger construye el ledger.
func NewLedger(s Settings) *Ledger {
	return &Ledger{settings: s}
}

// Record expira los hechos vigentes con la misma clave (producto, tipo, moneda) e inserta fact
// con FromDate = now y ThruDate nulo.
func (l *Ledger) Record(ctx context.Context, uow UnitOfWork, fact *entity.CostComponent, now time.Time) error {
	if _, err := l.Cancel(ctx, uow, fact.ProductID, fact.CostUomID, now, fact.CostComponentTypeID); err != nil {
		return err
	}
	fact.ID = uuid.New().String()
	fact.FromDate = now
	fact.ThruDate = nil
	if err := uow.CostComponents.Insert(ctx, fact); err != nil {
		return &domain.PersistenceError{Op: "insertar cost_component " + fact.CostComponentTypeID, Err: err}
	}
	l.settings.Log.Debug().
		Str("product_id", fact.ProductID).
		Str("type", fact.CostComponentTypeID).
		Str("currency", fact.CostUomID).
		Str("cost", fact.Cost.String()).
		Msg("hecho de costo registrado")
	return nil
}

// Cancel expira los hechos vigentes de los tipos exactos indicados. Devuelve cuántos expiró.
func (l *Ledger) Cancel(ctx context.Context, uow UnitOfWork, productID, currencyUomID string, now time.Time, typeIDs ...string) (int, error) {
	expired := 0
	for _, typeID := range typeIDs {
		facts, err := uow.CostComponents.FindActive(ctx, productID, typeID, currencyUomID, now)
		if err != nil {
			return expired, &domain.PersistenceError{Op: "buscar cost_component " + typeID, Err: err}
		}
		for _, f := range facts {
			if f.CostComponentTypeID != typeID {
				continue
			}
			if err := uow.CostComponents.Expire(ctx, f.ID, now); err != nil {
				return expired, &domain.PersistenceError{Op: "expirar cost_component " + f.ID, Err: err}
			}
			expired++
		}
	}
	return expired, nil
}

// RecordAverageCost misma disciplina para ProductAverageCost, clave (producto, bodega, organización, tipo).
func (l *Ledger) RecordAverageCost(ctx context.Context, uow UnitOfWork, avg *entity.ProductAverageCost, now time.Time) error {
	current, err := uow.AverageCosts.FindActive(ctx, avg.ProductID, avg.FacilityID, avg.OrganizationPartyID, avg.AverageCostTypeID, now)
	if err != nil {
		return &domain.PersistenceError{Op: "buscar product_average_cost", Err: err}
	}
	for _, c := range current {
		if err := uow.AverageCosts.Expire(ctx, c.ID, now); err != nil {
			return &domain.PersistenceError{Op: "expirar product_average_cost " + c.ID, Err: err}
		}
	}
	avg.ID = uuid.New().String()
	avg.FromDate = now
	avg.ThruDate = nil
	if err := uow.AverageCosts.Insert(ctx, avg); err != nil {
		return &domain.PersistenceError{Op: "insertar product_average_cost", Err: err}
	}
	return nil
}
