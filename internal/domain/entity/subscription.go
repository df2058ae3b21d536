package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de suscripción.
const (
	SubscriptionActive   = "active"
	SubscriptionTrialing = "trialing"
	SubscriptionPastDue  = "past_due"
	SubscriptionCanceled = "canceled"
)

// Subscription es la vista que el motor necesita del plan del minorista.
type Subscription struct {
	ID                string
	CompanyID         string
	PlanName          string
	Status            string
	CommissionRate    *decimal.Decimal // porcentaje (2.50 = 2.5%); nil = usar el valor por defecto
	MarketplaceAccess bool
	DynamicPricing    bool
	TrialEndDate      *time.Time
	CurrentPeriodEnd  *time.Time
}

// IsActiveOrTrialing informa si la suscripción habilita el marketplace en el instante now.
func (s *Subscription) IsActiveOrTrialing(now time.Time) bool {
	switch s.Status {
	case SubscriptionActive:
		return s.CurrentPeriodEnd == nil || s.CurrentPeriodEnd.After(now)
	case SubscriptionTrialing:
		return s.TrialEndDate == nil || s.TrialEndDate.After(now)
	default:
		return false
	}
}
