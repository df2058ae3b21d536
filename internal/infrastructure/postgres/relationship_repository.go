package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/tyrex-b2b-api/internal/domain/entity"
	"github.com/jhoicas/tyrex-b2b-api/internal/domain/repository"
)

var _ repository.RelationshipRepository = (*RelationshipRepo)(nil)

// RelationshipRepo libro de relaciones minorista-mayorista.
type RelationshipRepo struct {
	q Querier
}

// NewRelationshipRepository construye el adaptador.
func NewRelationshipRepository(q Querier) *RelationshipRepo {
	return &RelationshipRepo{q: q}
}

// Get devuelve (nil, nil) si el par no tiene relación.
func (r *RelationshipRepo) Get(ctx context.Context, retailerID, wholesalerID string) (*entity.Relationship, error) {
	var rel entity.Relationship
	err := r.q.QueryRow(ctx, `
		SELECT id, retailer_id, wholesaler_id, credit_limit, discount_rate, payment_terms_days,
		       is_active, created_at, updated_at
		FROM relationships WHERE retailer_id = $1 AND wholesaler_id = $2`, retailerID, wholesalerID).Scan(
		&rel.ID, &rel.RetailerID, &rel.WholesalerID, &rel.CreditLimit, &rel.DiscountRate, &rel.PaymentTermsDays,
		&rel.IsActive, &rel.CreatedAt, &rel.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get relationship: %w", err)
	}
	return &rel, nil
}

func (r *RelationshipRepo) ActiveWholesalerIDs(ctx context.Context, retailerID string) (map[string]bool, error) {
	rows, err := r.q.Query(ctx, `
		SELECT wholesaler_id::text FROM relationships
		WHERE retailer_id = $1 AND is_active`, retailerID)
	if err != nil {
		return nil, fmt.Errorf("list known wholesalers: %w", err)
	}
	defer rows.Close()
	out := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan wholesaler id: %w", err)
		}
		out[id] = true
	}
	return out, rows.Err()
}
