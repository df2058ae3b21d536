package repository

import (
	"context"

	"github.com/jhoicas/tyrex-b2b-api/internal/domain/entity"
)

// CompanyRepository puerto de lectura de empresas participantes.
type CompanyRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Company, error)
}
