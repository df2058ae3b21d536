package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/tyrex-b2b-api/internal/domain/entity"
	"github.com/jhoicas/tyrex-b2b-api/internal/domain/repository"
)

var _ repository.SubscriptionRepository = (*SubscriptionRepo)(nil)

// SubscriptionRepo lectura de las suscripciones (las escribe el módulo de facturación SaaS).
type SubscriptionRepo struct {
	q Querier
}

// NewSubscriptionRepository construye el adaptador.
func NewSubscriptionRepository(q Querier) *SubscriptionRepo {
	return &SubscriptionRepo{q: q}
}

// GetByCompany devuelve la suscripción más reciente o (nil, nil).
func (r *SubscriptionRepo) GetByCompany(ctx context.Context, companyID string) (*entity.Subscription, error) {
	var s entity.Subscription
	err := r.q.QueryRow(ctx, `
		SELECT id, company_id, plan_name, status, commission_rate, marketplace_access,
		       dynamic_pricing, trial_end_date, current_period_end
		FROM subscriptions WHERE company_id = $1
		ORDER BY created_at DESC LIMIT 1`, companyID).Scan(
		&s.ID, &s.CompanyID, &s.PlanName, &s.Status, &s.CommissionRate, &s.MarketplaceAccess,
		&s.DynamicPricing, &s.TrialEndDate, &s.CurrentPeriodEnd,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get subscription: %w", err)
	}
	return &s, nil
}
