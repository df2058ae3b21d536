package dto

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// OfferResponse un registro de stock publicado, con el precio final para el minorista.
type OfferResponse struct {
	StockRecordID      string          `json:"stock_record_id"`
	WarehouseID        string          `json:"warehouse_id"`
	WarehouseName      string          `json:"warehouse_name"`
	WholesalerID       string          `json:"wholesaler_id"`
	WholesalerName     string          `json:"wholesaler_name"`
	IsKnownWholesaler  bool            `json:"is_known_wholesaler"`
	AvailableStock     int             `json:"available_stock"`
	StockStatus        string          `json:"stock_status"`
	BasePrice          decimal.Decimal `json:"base_price"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage"`
	FinalPrice         decimal.Decimal `json:"final_price"`
}

// ProductResponse producto del marketplace con la mejor oferta para el minorista.
type ProductResponse struct {
	ID             string          `json:"id"`
	SKU            string          `json:"sku"`
	Name           string          `json:"name"`
	Brand          string          `json:"brand"`
	CategoryID     string          `json:"category_id,omitempty"`
	Attributes     json.RawMessage `json:"attributes,omitempty"`
	AvailableStock int             `json:"available_stock"` // suma de todas las ofertas
	OfferCount     int             `json:"offer_count"`
	BestOffer      OfferResponse   `json:"best_offer"`
}

// ProductDetailResponse producto con todas sus ofertas, de la más barata a la más cara.
type ProductDetailResponse struct {
	ProductResponse
	Offers []OfferResponse `json:"offers"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
