package ordering

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/tyrex-b2b-api/internal/application/dto"
	"github.com/jhoicas/tyrex-b2b-api/internal/domain"
	"github.com/jhoicas/tyrex-b2b-api/internal/domain/entity"
	"github.com/jhoicas/tyrex-b2b-api/internal/domain/orderflow"
	"github.com/jhoicas/tyrex-b2b-api/internal/domain/pricing"
	"github.com/jhoicas/tyrex-b2b-api/internal/domain/repository"
)

// CreateOrder convierte el carrito en un pedido Pending.
//
// La selección y la cotización se hacen fuera de la transacción (solo lectura); cualquier fallo
// ahí aborta sin escribir. Dentro de la transacción se bloquean los registros de stock en orden
// de ID, se re-verifica la disponibilidad y se descuenta con un UPDATE condicional; el pedido,
// sus líneas y la primera entrada del historial se escriben en la misma transacción.
// La notificación al mayorista se dispara después del commit y nunca bloquea la respuesta.
func (uc *OrderUseCase) CreateOrder(ctx context.Context, buyer BuyerContext, in dto.CreateOrderRequest) (*dto.OrderResponse, error) {
	if !buyer.CanOrder {
		return nil, domain.ErrNotSubscribed
	}
	if in.WholesalerID == "" || strings.TrimSpace(in.DeliveryAddress) == "" {
		return nil, fmt.Errorf("%w: mayorista y dirección de entrega son obligatorios", domain.ErrInvalidInput)
	}
	if in.WholesalerID == buyer.RetailerID {
		return nil, fmt.Errorf("%w: no se puede pedir a la propia empresa", domain.ErrInvalidInput)
	}

	wholesaler, err := uc.companyRepo.GetByID(ctx, in.WholesalerID)
	if err != nil {
		return nil, err
	}
	if !wholesaler.IsActive || !wholesaler.CanSell() {
		return nil, fmt.Errorf("%w: la empresa no es un mayorista activo", domain.ErrInvalidInput)
	}

	lines, err := uc.resolveLines(ctx, buyer, in.WholesalerID, in.Items)
	if err != nil {
		return nil, err
	}

	rel, err := uc.relRepo.Get(ctx, buyer.RetailerID, in.WholesalerID)
	if err != nil {
		return nil, fmt.Errorf("relación comercial: %w", err)
	}
	terms := uc.cfg.DefaultPaymentTermsDays
	if rel != nil && rel.IsActive && rel.PaymentTermsDays > 0 {
		terms = rel.PaymentTermsDays
	}

	now := uc.now()
	due := now.AddDate(0, 0, terms)
	order := &entity.Order{
		ID:               uuid.New().String(),
		OrderNumber:      orderNumber(now),
		RetailerID:       buyer.RetailerID,
		WholesalerID:     in.WholesalerID,
		RetailerUserID:   buyer.UserID,
		Status:           entity.OrderStatusDraft,
		PaymentStatus:    entity.PaymentStatusPending,
		TaxAmount:        decimal.Zero,
		ShippingCost:     decimal.Zero,
		DiscountAmount:   decimal.Zero,
		Currency:         uc.cfg.Currency,
		CommissionRate:   buyer.CommissionPercentage(),
		DeliveryAddress:  strings.TrimSpace(in.DeliveryAddress),
		DeliveryContact:  in.DeliveryContact,
		DeliveryPhone:    in.DeliveryPhone,
		PaymentTermsDays: terms,
		DueDate:          &due,
		Notes:            in.Notes,
		OrderDate:        now,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	err = uc.txRunner.RunOrder(ctx, func(
		stockRepo repository.StockRecordRepository,
		orderRepo repository.OrderRepository,
		historyRepo repository.OrderHistoryRepository,
	) error {
		if err := reserveStock(ctx, stockRepo, lines, buyer); err != nil {
			return err
		}

		order.Items = make([]*entity.OrderItem, 0, len(lines))
		for _, l := range lines {
			order.Items = append(order.Items, newOrderItem(order.ID, l, now))
		}
		order.RecalculateTotals()
		if err := orderflow.Apply(order, entity.OrderStatusPending, now); err != nil {
			return err
		}

		if err := orderRepo.Create(ctx, order); err != nil {
			return err
		}
		for _, item := range order.Items {
			if err := orderRepo.CreateItem(ctx, item); err != nil {
				return err
			}
		}
		lineCount, units := order.ItemCount()
		return historyRepo.Append(ctx, &entity.OrderStatusHistory{
			ID:           uuid.New().String(),
			OrderID:      order.ID,
			OldStatus:    entity.OrderStatusDraft,
			NewStatus:    entity.OrderStatusPending,
			ChangedBy:    buyer.UserID,
			ChangeReason: "pedido creado",
			Notes:        fmt.Sprintf("%d líneas, %d unidades", lineCount, units),
			ChangedAt:    now,
		})
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("order_id", order.ID).
		Str("order_number", order.OrderNumber).
		Str("retailer_id", order.RetailerID).
		Str("wholesaler_id", order.WholesalerID).
		Str("total", order.TotalAmount.StringFixed(2)).
		Msg("pedido creado")

	if uc.notifier != nil {
		uc.notifier.NotifyAsync(order.ID)
	}
	return toOrderResponse(order), nil
}

// reserveStock bloquea los registros en orden de ID (evita deadlocks entre pedidos concurrentes),
// re-verifica disponibilidad y descuenta. Si el precio de venta cambió desde la cotización se
// vuelve a cotizar con el valor bloqueado.
func reserveStock(ctx context.Context, stockRepo repository.StockRecordRepository, lines []*pricedLine, buyer BuyerContext) error {
	locked := make([]*pricedLine, len(lines))
	copy(locked, lines)
	sort.Slice(locked, func(i, j int) bool {
		return locked[i].candidate.Record.ID < locked[j].candidate.Record.ID
	})

	for _, l := range locked {
		rec, err := stockRepo.GetForUpdate(ctx, l.candidate.Record.ID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.NewLineItemError(l.index, l.product.ID, domain.ErrInsufficientStock, "el registro de stock ya no existe")
			}
			return err
		}
		if !rec.IsActive || !rec.IsSellable || rec.Available() < l.quantity {
			return domain.NewLineItemError(l.index, l.product.ID, domain.ErrInsufficientStock,
				fmt.Sprintf("disponible %d, solicitado %d", rec.Available(), l.quantity))
		}
		if !rec.HasSalePrice() {
			return domain.NewLineItemError(l.index, l.product.ID, domain.ErrInvalidSelection, "registro sin precio de venta")
		}
		if !rec.SalePrice.Equal(l.quote.BasePrice) {
			q, err := pricing.Resolve(rec, l.relationship, buyer.CommissionRate)
			if err != nil {
				return domain.NewLineItemError(l.index, l.product.ID, domain.ErrInvalidSelection, "registro sin precio de venta")
			}
			l.quote = q
		}
		if err := stockRepo.Decrement(ctx, rec.ID, l.quantity); err != nil {
			if errors.Is(err, domain.ErrInsufficientStock) {
				return domain.NewLineItemError(l.index, l.product.ID, domain.ErrInsufficientStock, "disponibilidad cambió durante la reserva")
			}
			return err
		}
	}
	return nil
}

func newOrderItem(orderID string, l *pricedLine, now time.Time) *entity.OrderItem {
	return &entity.OrderItem{
		ID:                       uuid.New().String(),
		OrderID:                  orderID,
		ProductID:                l.product.ID,
		WarehouseID:              l.candidate.Record.WarehouseID,
		StockRecordID:            l.candidate.Record.ID,
		Quantity:                 l.quantity,
		UnitPrice:                l.quote.FinalPrice,
		WholesalerReferencePrice: l.quote.BasePrice,
		DiscountPercentage:       l.quote.DiscountPercentage(),
		DiscountAmount:           decimal.Zero,
		TotalPrice:               l.lineTotal(),
		ProductName:              l.product.Name,
		ProductSKU:               l.product.SKU,
		ProductBrand:             l.product.Brand,
		CreatedAt:                now,
		UpdatedAt:                now,
	}
}

// orderNumber ORD-<yyyymmddhhmmss>-<8 hex>.
func orderNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
	return "ORD-" + now.Format("20060102150405") + "-" + suffix
}
