// Package pricing resuelve el precio final de una línea a partir del precio del mayorista,
// el descuento de la relación comercial y la comisión del plan del minorista.
//
//	precioFinal = precioBase * (1 - descuento) * (1 + comisión), redondeado a 2 decimales (half-up)
package pricing

import (
	"github.com/jhoicas/tyrex-b2b-api/internal/domain"
	"github.com/jhoicas/tyrex-b2b-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

var (
	hundred = decimal.NewFromInt(100)
	one     = decimal.NewFromInt(1)

	// Escalas por línea de crédito.
	creditTierHigh = decimal.NewFromInt(100000)
	creditTierMid  = decimal.NewFromInt(50000)

	discountTierHigh   = decimal.RequireFromString("0.05")
	discountTierMid    = decimal.RequireFromString("0.03")
	discountTierLow    = decimal.RequireFromString("0.01")
	discountFlatNoLine = decimal.RequireFromString("0.02")

	// DefaultCommissionRate comisión de plataforma cuando el plan no define una (2.5%).
	DefaultCommissionRate = decimal.RequireFromString("0.025")
)

// Quote resultado de resolver el precio de un registro de stock para un minorista.
// Las tasas son fracciones (0.05 = 5%).
type Quote struct {
	BasePrice      decimal.Decimal
	DiscountRate   decimal.Decimal
	CommissionRate decimal.Decimal
	FinalPrice     decimal.Decimal
}

// DiscountPercentage devuelve el descuento como porcentaje (5.00).
func (q Quote) DiscountPercentage() decimal.Decimal {
	return q.DiscountRate.Mul(hundred).Round(2)
}

// DiscountRate devuelve el descuento de la relación como fracción.
// Sin relación activa no hay descuento.
func DiscountRate(rel *entity.Relationship) decimal.Decimal {
	if rel == nil || !rel.IsActive {
		return decimal.Zero
	}
	if !rel.HasCreditLimit() {
		return discountFlatNoLine
	}
	switch limit := *rel.CreditLimit; {
	case limit.GreaterThanOrEqual(creditTierHigh):
		return discountTierHigh
	case limit.GreaterThanOrEqual(creditTierMid):
		return discountTierMid
	default:
		return discountTierLow
	}
}

// CommissionFromPlan convierte el porcentaje del plan (2.50) en fracción; nil o negativo usa el valor por defecto.
func CommissionFromPlan(planPct *decimal.Decimal) decimal.Decimal {
	if planPct == nil || planPct.IsNegative() {
		return DefaultCommissionRate
	}
	return planPct.Div(hundred)
}

// FinalPrice aplica descuento y comisión sobre el precio base.
func FinalPrice(base, discountRate, commissionRate decimal.Decimal) decimal.Decimal {
	return base.Mul(one.Sub(discountRate)).Mul(one.Add(commissionRate)).Round(2)
}

// Resolve calcula la cotización de un registro de stock. Función pura: no consulta nada.
func Resolve(record *entity.StockRecord, rel *entity.Relationship, commissionRate decimal.Decimal) (Quote, error) {
	if record == nil || !record.HasSalePrice() {
		return Quote{}, domain.ErrNoBasePrice
	}
	base := *record.SalePrice
	discount := DiscountRate(rel)
	return Quote{
		BasePrice:      base,
		DiscountRate:   discount,
		CommissionRate: commissionRate,
		FinalPrice:     FinalPrice(base, discount, commissionRate),
	}, nil
}
