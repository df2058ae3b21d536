package dto

import "github.com/shopspring/decimal"

// CartLineRequest línea solicitada. StockRecordID es opcional: si viene, se usa ese registro.
type CartLineRequest struct {
	ProductID     string `json:"product_id"`
	Quantity      int    `json:"quantity"`
	StockRecordID string `json:"stock_record_id,omitempty"`
}

// PreviewCartRequest body para POST /api/cart/preview.
type PreviewCartRequest struct {
	WholesalerID string            `json:"wholesaler_id,omitempty"`
	Items        []CartLineRequest `json:"items"`
}

// PricedLineResponse línea cotizada con el origen de stock elegido.
type PricedLineResponse struct {
	ProductID          string          `json:"product_id"`
	ProductName        string          `json:"product_name"`
	ProductSKU         string          `json:"product_sku"`
	ProductBrand       string          `json:"product_brand"`
	StockRecordID      string          `json:"stock_record_id"`
	WarehouseID        string          `json:"warehouse_id"`
	WarehouseName      string          `json:"warehouse_name"`
	WholesalerID       string          `json:"wholesaler_id"`
	WholesalerName     string          `json:"wholesaler_name"`
	Quantity           int             `json:"quantity"`
	AvailableStock     int             `json:"available_stock"`
	WholesalerPrice    decimal.Decimal `json:"wholesaler_price"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage"`
	UnitPrice          decimal.Decimal `json:"unit_price"`
	LineTotal          decimal.Decimal `json:"line_total"`
}

// CartPreviewResponse resultado de la vista previa del carrito (sin efectos).
type CartPreviewResponse struct {
	Items          []PricedLineResponse `json:"items"`
	TotalItems     int                  `json:"total_items"`
	TotalQuantity  int                  `json:"total_quantity"`
	Subtotal       decimal.Decimal      `json:"subtotal"`
	CommissionRate decimal.Decimal      `json:"commission_rate"` // porcentaje
	Currency       string               `json:"currency"`
}
