package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/tyrex-b2b-api/internal/application/ordering"
	"github.com/jhoicas/tyrex-b2b-api/internal/domain"
	"github.com/jhoicas/tyrex-b2b-api/internal/domain/pricing"
	"github.com/jhoicas/tyrex-b2b-api/internal/domain/repository"
)

// SubscriptionService resuelve qué puede hacer en el marketplace la empresa que compra.
// Es el único punto de la aplicación que conoce la lógica de planes y comisiones.
type SubscriptionService struct {
	companyRepo      repository.CompanyRepository
	subscriptionRepo repository.SubscriptionRepository
	clock            func() time.Time
}

// NewSubscriptionService construye el servicio. clock nil = time.Now.
func NewSubscriptionService(companyRepo repository.CompanyRepository, subscriptionRepo repository.SubscriptionRepository, clock func() time.Time) *SubscriptionService {
	if clock == nil {
		clock = time.Now
	}
	return &SubscriptionService{companyRepo: companyRepo, subscriptionRepo: subscriptionRepo, clock: clock}
}

// ResolveBuyer arma el BuyerContext de la petición.
// Sin suscripción, vencida o sin acceso al marketplace: CanOrder=false (sin error).
// Devuelve error solo si la empresa no existe, no compra o falla la infraestructura.
func (s *SubscriptionService) ResolveBuyer(ctx context.Context, companyID, userID string) (ordering.BuyerContext, error) {
	if companyID == "" {
		return ordering.BuyerContext{}, domain.ErrUnauthorized
	}
	company, err := s.companyRepo.GetByID(ctx, companyID)
	if err != nil {
		return ordering.BuyerContext{}, err
	}
	if !company.IsActive || !company.CanBuy() {
		return ordering.BuyerContext{}, fmt.Errorf("%w: la empresa %s no opera como minorista", domain.ErrForbidden, companyID)
	}

	sub, err := s.subscriptionRepo.GetByCompany(ctx, companyID)
	if err != nil {
		return ordering.BuyerContext{}, fmt.Errorf("subscription: %w", err)
	}
	if sub == nil {
		return ordering.NewBuyerContext(companyID, userID, nil, false), nil
	}
	rate := pricing.CommissionFromPlan(sub.CommissionRate)
	canOrder := sub.MarketplaceAccess && sub.IsActiveOrTrialing(s.clock())
	return ordering.NewBuyerContext(companyID, userID, &rate, canOrder), nil
}
