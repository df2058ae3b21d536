package repository

import (
	"context"

	"github.com/jhoicas/tyrex-b2b-api/internal/domain/entity"
)

// ProductRepository puerto de lectura del catálogo. El catálogo se mantiene fuera de este servicio.
type ProductRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	ListActive(ctx context.Context, limit, offset int) ([]*entity.Product, error)
}
