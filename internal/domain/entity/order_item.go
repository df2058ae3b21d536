package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderItem línea de un pedido con el precio y los datos del producto congelados al crearlo.
type OrderItem struct {
	ID                       string
	OrderID                  string
	ProductID                string
	WarehouseID              string
	StockRecordID            string
	Quantity                 int
	UnitPrice                decimal.Decimal // precio final resuelto
	WholesalerReferencePrice decimal.Decimal // precio de venta del mayorista antes de descuento y comisión
	DiscountPercentage       decimal.Decimal // descuento de la relación aplicado al precio unitario (informativo)
	DiscountAmount           decimal.Decimal // descuento adicional de la línea
	TotalPrice               decimal.Decimal
	ProductName              string
	ProductSKU               string
	ProductBrand             string
	IsCanceled               bool
	CanceledAt               *time.Time
	CancelReason             string
	CreatedAt                time.Time
	UpdatedAt                time.Time
}

// LineTotal calcula quantity * unitPrice - discountAmount redondeado a 2 decimales.
func LineTotal(quantity int, unitPrice, discountAmount decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity))).Sub(discountAmount).Round(2)
}
