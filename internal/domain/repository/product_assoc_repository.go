package repository

import (
	"context"
	"time"

	"github.com/jhoicas/costeo-api/internal/domain/entity"
)

// ProductAssocRepository puerto del grafo de productos (BOM y variantes).
type ProductAssocRepository interface {
	// FindBomComponents aristas MANUF_COMPONENT vigentes desde productID, ordenadas por SequenceNum.
	FindBomComponents(ctx context.Context, productID string, asOf time.Time) ([]*entity.ProductAssoc, error)
	// FindVariantParent devuelve el padre virtual vigente o "" si no hay.
	FindVariantParent(ctx context.Context, productID string, asOf time.Time) (string, error)
	// IsSubAssembly indica si productID tiene componentes MANUF_COMPONENT vigentes.
	IsSubAssembly(ctx context.Context, productID string, asOf time.Time) (bool, error)
}
