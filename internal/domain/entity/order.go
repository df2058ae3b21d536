package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados del pedido.
const (
	OrderStatusDraft      = "draft"
	OrderStatusPending    = "pending"
	OrderStatusConfirmed  = "confirmed"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCanceled   = "canceled"
	OrderStatusRejected   = "rejected"
)

// Estados de pago del pedido.
const (
	PaymentStatusPending       = "pending"
	PaymentStatusPaid          = "paid"
	PaymentStatusPartiallyPaid = "partially_paid"
	PaymentStatusFailed        = "failed"
	PaymentStatusRefunded      = "refunded"
)

// DefaultCurrency moneda de los pedidos.
const DefaultCurrency = "TRY"

// Order representa un pedido de un minorista a un mayorista. Los pedidos nunca se borran.
type Order struct {
	ID               string
	OrderNumber      string
	RetailerID       string
	WholesalerID     string
	RetailerUserID   string
	Status           string
	PaymentStatus    string
	Subtotal         decimal.Decimal
	TaxAmount        decimal.Decimal
	ShippingCost     decimal.Decimal
	DiscountAmount   decimal.Decimal
	TotalAmount      decimal.Decimal
	Currency         string
	CommissionRate   decimal.Decimal // porcentaje congelado al crear el pedido (2.50 = 2.5%)
	CommissionAmount decimal.Decimal
	DeliveryAddress  string
	DeliveryContact  string
	DeliveryPhone    string
	PaymentTermsDays int
	DueDate          *time.Time
	Notes            string
	InternalNotes    string
	OrderDate        time.Time
	ConfirmedAt      *time.Time
	ShippedAt        *time.Time
	DeliveredAt      *time.Time
	CanceledAt       *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time

	Items []*OrderItem
}

// RecalculateTotals recalcula subtotal, total y comisión a partir de las líneas no canceladas.
func (o *Order) RecalculateTotals() {
	subtotal := decimal.Zero
	for _, it := range o.Items {
		if it.IsCanceled {
			continue
		}
		subtotal = subtotal.Add(it.TotalPrice)
	}
	o.Subtotal = subtotal.Round(2)
	o.TotalAmount = o.Subtotal.Add(o.TaxAmount).Add(o.ShippingCost).Sub(o.DiscountAmount).Round(2)
	o.CommissionAmount = o.Subtotal.Mul(o.CommissionRate).Div(decimal.NewFromInt(100)).Round(2)
}

// ItemCount cantidad de líneas y unidades totales del pedido.
func (o *Order) ItemCount() (lines, units int) {
	for _, it := range o.Items {
		lines++
		units += it.Quantity
	}
	return lines, units
}

// AppendInternalNote agrega una nota interna sin sobrescribir las anteriores.
func (o *Order) AppendInternalNote(note string) {
	if o.InternalNotes == "" {
		o.InternalNotes = note
		return
	}
	o.InternalNotes += "\n" + note
}
