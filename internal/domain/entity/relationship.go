package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultPaymentTermsDays plazo de pago cuando no hay relación comercial.
const DefaultPaymentTermsDays = 30

// Relationship representa la relación comercial minorista-mayorista.
// Existe a lo sumo una por par (RetailerID, WholesalerID).
type Relationship struct {
	ID               string
	RetailerID       string
	WholesalerID     string
	CreditLimit      *decimal.Decimal // nil = sin línea de crédito
	DiscountRate     decimal.Decimal  // porcentaje negociado (informativo)
	PaymentTermsDays int
	IsActive         bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// HasCreditLimit informa si la relación tiene una línea de crédito utilizable.
func (r *Relationship) HasCreditLimit() bool {
	return r.CreditLimit != nil && r.CreditLimit.GreaterThan(decimal.Zero)
}
