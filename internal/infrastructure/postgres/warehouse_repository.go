package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/tyrex-b2b-api/internal/domain"
	"github.com/jhoicas/tyrex-b2b-api/internal/domain/entity"
	"github.com/jhoicas/tyrex-b2b-api/internal/domain/repository"
)

var _ repository.WarehouseRepository = (*WarehouseRepo)(nil)

// WarehouseRepo lectura de bodegas.
type WarehouseRepo struct {
	q Querier
}

// NewWarehouseRepository construye el adaptador.
func NewWarehouseRepository(q Querier) *WarehouseRepo {
	return &WarehouseRepo{q: q}
}

func (r *WarehouseRepo) GetByID(ctx context.Context, id string) (*entity.Warehouse, error) {
	var w entity.Warehouse
	err := r.q.QueryRow(ctx, `
		SELECT id, company_id, name, code, is_active, created_at, updated_at
		FROM warehouses WHERE id = $1`, id).Scan(
		&w.ID, &w.CompanyID, &w.Name, &w.Code, &w.IsActive, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get warehouse: %w", err)
	}
	return &w, nil
}
