package ordering

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/tyrex-b2b-api/internal/domain/pricing"
)

// BuyerContext contexto explícito del minorista que compra. Se calcula una vez por petición
// a partir de la suscripción y viaja como argumento; el motor no lo lee de ningún estado global.
type BuyerContext struct {
	RetailerID     string
	UserID         string
	CommissionRate decimal.Decimal // fracción (0.025 = 2.5%)
	CanOrder       bool            // suscripción activa con acceso al marketplace
}

// CommissionPercentage comisión como porcentaje (2.50).
func (b BuyerContext) CommissionPercentage() decimal.Decimal {
	return b.CommissionRate.Mul(decimal.NewFromInt(100)).Round(2)
}

// NewBuyerContext construye el contexto con la comisión por defecto si no se conoce la del plan.
func NewBuyerContext(retailerID, userID string, commissionRate *decimal.Decimal, canOrder bool) BuyerContext {
	rate := pricing.DefaultCommissionRate
	if commissionRate != nil {
		rate = *commissionRate
	}
	return BuyerContext{RetailerID: retailerID, UserID: userID, CommissionRate: rate, CanOrder: canOrder}
}

// Actor quien ejecuta un cambio de estado. System = procesos internos (notificador, barridos).
type Actor struct {
	UserID    string
	CompanyID string
	System    bool
}

// SystemActor actor de los procesos internos.
func SystemActor() Actor {
	return Actor{System: true}
}
