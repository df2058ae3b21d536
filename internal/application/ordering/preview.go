package ordering

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/tyrex-b2b-api/internal/application/dto"
	"github.com/jhoicas/tyrex-b2b-api/internal/domain"
)

// PreviewCart valida, elige stock y cotiza cada línea igual que CreateOrder, sin escribir nada.
func (uc *OrderUseCase) PreviewCart(ctx context.Context, buyer BuyerContext, in dto.PreviewCartRequest) (*dto.CartPreviewResponse, error) {
	if !buyer.CanOrder {
		return nil, domain.ErrNotSubscribed
	}
	lines, err := uc.resolveLines(ctx, buyer, in.WholesalerID, in.Items)
	if err != nil {
		return nil, err
	}

	out := &dto.CartPreviewResponse{
		Items:          make([]dto.PricedLineResponse, 0, len(lines)),
		Subtotal:       decimal.Zero,
		CommissionRate: buyer.CommissionPercentage(),
		Currency:       uc.cfg.Currency,
	}
	for _, l := range lines {
		total := l.lineTotal()
		out.Items = append(out.Items, dto.PricedLineResponse{
			ProductID:          l.product.ID,
			ProductName:        l.product.Name,
			ProductSKU:         l.product.SKU,
			ProductBrand:       l.product.Brand,
			StockRecordID:      l.candidate.Record.ID,
			WarehouseID:        l.candidate.Record.WarehouseID,
			WarehouseName:      l.candidate.WarehouseName,
			WholesalerID:       l.candidate.OwnerID,
			WholesalerName:     l.candidate.OwnerName,
			Quantity:           l.quantity,
			AvailableStock:     l.candidate.Record.Available(),
			WholesalerPrice:    l.quote.BasePrice,
			DiscountPercentage: l.quote.DiscountPercentage(),
			UnitPrice:          l.quote.FinalPrice,
			LineTotal:          total,
		})
		out.Subtotal = out.Subtotal.Add(total)
		out.TotalQuantity += l.quantity
	}
	out.TotalItems = len(out.Items)
	out.Subtotal = out.Subtotal.Round(2)
	return out, nil
}
