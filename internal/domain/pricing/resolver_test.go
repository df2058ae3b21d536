package pricing_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/tyrex-b2b-api/internal/domain"
	"github.com/jhoicas/tyrex-b2b-api/internal/domain/entity"
	"github.com/jhoicas/tyrex-b2b-api/internal/domain/pricing"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func relWithCredit(limit string) *entity.Relationship {
	rel := &entity.Relationship{RetailerID: "r1", WholesalerID: "w1", IsActive: true}
	if limit != "" {
		rel.CreditLimit = decPtr(limit)
	}
	return rel
}

// ──────────────────────────────────────────────────────────────────────────────
// Escalas de descuento
// ──────────────────────────────────────────────────────────────────────────────

func TestDiscountRate_Escalas(t *testing.T) {
	cases := []struct {
		name string
		rel  *entity.Relationship
		want string
	}{
		{"sin relación", nil, "0"},
		{"relación inactiva", &entity.Relationship{IsActive: false, CreditLimit: decPtr("200000")}, "0"},
		{"sin línea de crédito", relWithCredit(""), "0.02"},
		{"línea en cero se trata como ausente", relWithCredit("0"), "0.02"},
		{"justo en 100000", relWithCredit("100000"), "0.05"},
		{"un centavo menos de 100000", relWithCredit("99999.99"), "0.03"},
		{"justo en 50000", relWithCredit("50000"), "0.03"},
		{"un centavo menos de 50000", relWithCredit("49999.99"), "0.01"},
		{"línea pequeña", relWithCredit("1000"), "0.01"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := pricing.DiscountRate(tc.rel)
			assert.True(t, got.Equal(dec(tc.want)), "esperado %s, obtenido %s", tc.want, got)
		})
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Comisión
// ──────────────────────────────────────────────────────────────────────────────

func TestCommissionFromPlan_PorDefecto(t *testing.T) {
	assert.True(t, pricing.CommissionFromPlan(nil).Equal(dec("0.025")))
	assert.True(t, pricing.CommissionFromPlan(decPtr("-1")).Equal(dec("0.025")))
	assert.True(t, pricing.CommissionFromPlan(decPtr("4")).Equal(dec("0.04")))
	assert.True(t, pricing.CommissionFromPlan(decPtr("0")).IsZero(), "un plan sin comisión es válido")
}

// ──────────────────────────────────────────────────────────────────────────────
// Precio final
// ──────────────────────────────────────────────────────────────────────────────

func TestFinalPrice_Ejemplo650(t *testing.T) {
	// 650 * 0.95 * 1.025 = 632.9375 -> 632.94
	got := pricing.FinalPrice(dec("650"), dec("0.05"), dec("0.025"))
	assert.Equal(t, "632.94", got.StringFixed(2))
}

func TestFinalPrice_RedondeoHalfUp(t *testing.T) {
	// 10.005 exacto sin descuento ni comisión
	got := pricing.FinalPrice(dec("10.005"), decimal.Zero, decimal.Zero)
	assert.Equal(t, "10.01", got.StringFixed(2))
}

func TestResolve_Determinista(t *testing.T) {
	record := &entity.StockRecord{ID: "s1", SalePrice: decPtr("1234.5678")}
	rel := relWithCredit("75000")

	first, err := pricing.Resolve(record, rel, dec("0.025"))
	require.NoError(t, err)
	for i := 0; i < 50; i++ {
		again, err := pricing.Resolve(record, rel, dec("0.025"))
		require.NoError(t, err)
		assert.True(t, first.FinalPrice.Equal(again.FinalPrice))
	}
	assert.True(t, first.DiscountRate.Equal(dec("0.03")))
	assert.Equal(t, "3.00", first.DiscountPercentage().StringFixed(2))
	assert.True(t, first.BasePrice.Equal(dec("1234.5678")))
}

func TestResolve_SinPrecioDeVenta(t *testing.T) {
	_, err := pricing.Resolve(&entity.StockRecord{ID: "s1"}, nil, pricing.DefaultCommissionRate)
	assert.ErrorIs(t, err, domain.ErrNoBasePrice)
}
