package repository

import (
	"context"

	"github.com/jhoicas/tyrex-b2b-api/internal/domain/entity"
)

// SubscriptionRepository puerto del colaborador de suscripciones.
type SubscriptionRepository interface {
	// GetByCompany devuelve la suscripción vigente más reciente o (nil, nil) si no hay.
	GetByCompany(ctx context.Context, companyID string) (*entity.Subscription, error)
}
