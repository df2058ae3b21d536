package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados calculados de un registro de stock.
const (
	StockStatusOutOfStock  = "out_of_stock"
	StockStatusLowStock    = "low_stock"
	StockStatusOverstocked = "overstocked"
	StockStatusNormal      = "normal"
)

// StockRecord representa la existencia de un producto en una bodega con su precio de venta.
type StockRecord struct {
	ID               string
	ProductID        string
	WarehouseID      string
	Quantity         int
	ReservedQuantity int
	MinStock         int
	MaxStock         *int
	CostPrice        decimal.Decimal
	SalePrice        *decimal.Decimal // nil = no publicado para la venta
	IsActive         bool
	IsSellable       bool
	UpdatedAt        time.Time
}

// Available devuelve quantity - reserved, nunca negativo.
func (s *StockRecord) Available() int {
	if n := s.Quantity - s.ReservedQuantity; n > 0 {
		return n
	}
	return 0
}

// HasSalePrice informa si el registro tiene precio de venta definido.
func (s *StockRecord) HasSalePrice() bool {
	return s.SalePrice != nil
}

// Validate verifica los invariantes del registro.
func (s *StockRecord) Validate() bool {
	if s.Quantity < 0 || s.ReservedQuantity < 0 || s.ReservedQuantity > s.Quantity {
		return false
	}
	if s.MaxStock != nil && s.MinStock >= *s.MaxStock {
		return false
	}
	return true
}

// StockStatus clasifica el registro según sus umbrales.
func (s *StockRecord) StockStatus() string {
	switch {
	case s.Quantity <= 0:
		return StockStatusOutOfStock
	case s.Quantity <= s.MinStock:
		return StockStatusLowStock
	case s.MaxStock != nil && s.Quantity >= *s.MaxStock:
		return StockStatusOverstocked
	default:
		return StockStatusNormal
	}
}

// StockCandidate es un registro de stock junto con la información de su bodega y propietario,
// tal como lo necesita el selector.
type StockCandidate struct {
	Record          StockRecord
	WarehouseName   string
	WarehouseActive bool
	OwnerID         string
	OwnerType       string
	OwnerName       string
}
