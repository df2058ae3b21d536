package repository

import (
	"context"

	"github.com/jhoicas/tyrex-b2b-api/internal/domain/entity"
)

// RelationshipRepository puerto del libro de relaciones minorista-mayorista.
type RelationshipRepository interface {
	// Get devuelve la relación del par o (nil, nil) si no existe.
	Get(ctx context.Context, retailerID, wholesalerID string) (*entity.Relationship, error)
	// ActiveWholesalerIDs devuelve los mayoristas con relación activa para el minorista.
	ActiveWholesalerIDs(ctx context.Context, retailerID string) (map[string]bool, error)
}
