package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/costeo-api/internal/domain/entity"
	"github.com/jhoicas/costeo-api/internal/domain/repository"
)

var _ repository.ProductAssocRepository = (*ProductAssocRepo)(nil)

// ProductAssocRepo grafo de productos: aristas de BOM y de variantes.
type ProductAssocRepo struct {
	q Querier
}

// NewProductAssocRepository construye el adaptador. Pasar pool o tx (Querier).
func NewProductAssocRepository(q Querier) *ProductAssocRepo {
	return &ProductAssocRepo{q: q}
}

func (r *ProductAssocRepo) FindBomComponents(ctx context.Context, productID string, asOf time.Time) ([]*entity.ProductAssoc, error) {
	query := `
		SELECT product_id, product_id_to, product_assoc_type_id, quantity, sequence_num, instruction, from_date, thru_date
		FROM product_assocs
		WHERE product_id = $1 AND product_assoc_type_id = $2 AND ` + activeAt("", "$3") + `
		ORDER BY sequence_num, product_id_to`
	rows, err := r.q.Query(ctx, query, productID, entity.AssocManufComponent, asOf)
	if err != nil {
		return nil, fmt.Errorf("find bom components: %w", err)
	}
	defer rows.Close()
	var list []*entity.ProductAssoc
	for rows.Next() {
		var a entity.ProductAssoc
		if err := rows.Scan(&a.ProductID, &a.ProductIDTo, &a.ProductAssocTypeID, &a.Quantity, &a.SequenceNum,
			&a.Instruction, &a.FromDate, &a.ThruDate); err != nil {
			return nil, fmt.Errorf("scan product assoc: %w", err)
		}
		list = append(list, &a)
	}
	return list, rows.Err()
}

// FindVariantParent el producto virtual del que productID es variante.
func (r *ProductAssocRepo) FindVariantParent(ctx context.Context, productID string, asOf time.Time) (string, error) {
	query := `
		SELECT product_id FROM product_assocs
		WHERE product_id_to = $1 AND product_assoc_type_id = $2 AND ` + activeAt("", "$3") + `
		ORDER BY from_date DESC LIMIT 1`
	var parent string
	err := r.q.QueryRow(ctx, query, productID, entity.AssocProductVariant, asOf).Scan(&parent)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("find variant parent: %w", err)
	}
	return parent, nil
}

func (r *ProductAssocRepo) IsSubAssembly(ctx context.Context, productID string, asOf time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM product_assocs
			WHERE product_id = $1 AND product_assoc_type_id = $2 AND ` + activeAt("", "$3") + `)`
	var ok bool
	if err := r.q.QueryRow(ctx, query, productID, entity.AssocManufComponent, asOf).Scan(&ok); err != nil {
		return false, fmt.Errorf("is sub assembly: %w", err)
	}
	return ok, nil
}
