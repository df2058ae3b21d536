package entity

import "github.com/shopspring/decimal"

// OrderSummary resumen de pedidos de una empresa (como minorista o mayorista).
type OrderSummary struct {
	TotalOrders       int
	TotalAmount       decimal.Decimal
	ByStatus          map[string]int
	RecentOrders      int // últimos 30 días
	RecentAmount      decimal.Decimal
	AverageOrderValue decimal.Decimal
}

// OrderFilter filtros para listar pedidos.
type OrderFilter struct {
	CompanyID     string
	Status        string
	PaymentStatus string
	Limit         int
	Offset        int
}
