package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateOrderRequest body para POST /api/orders.
type CreateOrderRequest struct {
	WholesalerID    string            `json:"wholesaler_id"`
	Items           []CartLineRequest `json:"items"`
	DeliveryAddress string            `json:"delivery_address"`
	DeliveryContact string            `json:"delivery_contact"`
	DeliveryPhone   string            `json:"delivery_phone"`
	Notes           string            `json:"notes,omitempty"`
}

// CancelOrderRequest body para POST /api/orders/:id/cancel.
type CancelOrderRequest struct {
	Reason string `json:"reason,omitempty"`
}

// TransitionStatusRequest body para POST /api/orders/:id/status.
type TransitionStatusRequest struct {
	Status string `json:"status"`
	Notes  string `json:"notes,omitempty"`
}

// ListOrdersRequest filtros de GET /api/orders.
type ListOrdersRequest struct {
	PageRequest
	Status        string `query:"status"`
	PaymentStatus string `query:"payment_status"`
}

// OrderItemResponse línea de pedido.
type OrderItemResponse struct {
	ID                       string          `json:"id"`
	ProductID                string          `json:"product_id"`
	ProductName              string          `json:"product_name"`
	ProductSKU               string          `json:"product_sku"`
	ProductBrand             string          `json:"product_brand"`
	WarehouseID              string          `json:"warehouse_id"`
	StockRecordID            string          `json:"stock_record_id"`
	Quantity                 int             `json:"quantity"`
	UnitPrice                decimal.Decimal `json:"unit_price"`
	WholesalerReferencePrice decimal.Decimal `json:"wholesaler_reference_price"`
	DiscountPercentage       decimal.Decimal `json:"discount_percentage"`
	DiscountAmount           decimal.Decimal `json:"discount_amount"`
	TotalPrice               decimal.Decimal `json:"total_price"`
	IsCanceled               bool            `json:"is_canceled"`
	CanceledAt               *time.Time      `json:"canceled_at,omitempty"`
	CancelReason             string          `json:"cancel_reason,omitempty"`
}

// OrderResponse pedido completo.
type OrderResponse struct {
	ID               string              `json:"id"`
	OrderNumber      string              `json:"order_number"`
	RetailerID       string              `json:"retailer_id"`
	WholesalerID     string              `json:"wholesaler_id"`
	RetailerUserID   string              `json:"retailer_user_id"`
	Status           string              `json:"status"`
	PaymentStatus    string              `json:"payment_status"`
	Subtotal         decimal.Decimal     `json:"subtotal"`
	TaxAmount        decimal.Decimal     `json:"tax_amount"`
	ShippingCost     decimal.Decimal     `json:"shipping_cost"`
	DiscountAmount   decimal.Decimal     `json:"discount_amount"`
	TotalAmount      decimal.Decimal     `json:"total_amount"`
	Currency         string              `json:"currency"`
	CommissionRate   decimal.Decimal     `json:"commission_rate"`
	CommissionAmount decimal.Decimal     `json:"commission_amount"`
	DeliveryAddress  string              `json:"delivery_address"`
	DeliveryContact  string              `json:"delivery_contact"`
	DeliveryPhone    string              `json:"delivery_phone"`
	PaymentTermsDays int                 `json:"payment_terms_days"`
	DueDate          *time.Time          `json:"due_date,omitempty"`
	Notes            string              `json:"notes,omitempty"`
	OrderDate        time.Time           `json:"order_date"`
	ConfirmedAt      *time.Time          `json:"confirmed_at,omitempty"`
	ShippedAt        *time.Time          `json:"shipped_at,omitempty"`
	DeliveredAt      *time.Time          `json:"delivered_at,omitempty"`
	CanceledAt       *time.Time          `json:"canceled_at,omitempty"`
	AllowedStatuses  []string            `json:"allowed_statuses"`
	Items            []OrderItemResponse `json:"items,omitempty"`
}

// OrderListResponse página de pedidos.
type OrderListResponse struct {
	Items []OrderResponse `json:"items"`
	Page  PageResponse    `json:"page"`
}

// OrderStatusHistoryResponse entrada del historial.
type OrderStatusHistoryResponse struct {
	ID           string    `json:"id"`
	OldStatus    string    `json:"old_status,omitempty"`
	NewStatus    string    `json:"new_status"`
	ChangedBy    string    `json:"changed_by,omitempty"` // vacío = sistema
	ChangeReason string    `json:"change_reason"`
	Notes        string    `json:"notes,omitempty"`
	ChangedAt    time.Time `json:"changed_at"`
}

// OrderHistoryResponse historial completo, del más reciente al más antiguo.
type OrderHistoryResponse struct {
	OrderNumber   string                       `json:"order_number"`
	CurrentStatus string                       `json:"current_status"`
	History       []OrderStatusHistoryResponse `json:"history"`
}

// StatusCount cantidad y porcentaje de pedidos en un estado.
type StatusCount struct {
	Count      int             `json:"count"`
	Percentage decimal.Decimal `json:"percentage"`
}

// OrderSummaryResponse resumen de GET /api/orders/summary.
type OrderSummaryResponse struct {
	TotalOrders        int                    `json:"total_orders"`
	TotalAmount        decimal.Decimal        `json:"total_amount"`
	Currency           string                 `json:"currency"`
	StatusDistribution map[string]StatusCount `json:"status_distribution"`
	Recent30Days       RecentOrdersSummary    `json:"recent_30_days"`
}

// RecentOrdersSummary métricas de los últimos 30 días.
type RecentOrdersSummary struct {
	Count             int             `json:"count"`
	Amount            decimal.Decimal `json:"amount"`
	AverageOrderValue decimal.Decimal `json:"average_order_value"`
}
