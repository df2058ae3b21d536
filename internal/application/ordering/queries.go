package ordering

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/tyrex-b2b-api/internal/application/dto"
	"github.com/jhoicas/tyrex-b2b-api/internal/domain"
	"github.com/jhoicas/tyrex-b2b-api/internal/domain/entity"
	"github.com/jhoicas/tyrex-b2b-api/internal/domain/orderflow"
	"github.com/jhoicas/tyrex-b2b-api/internal/domain/repository"
)

// StaleOrderNote nota interna que marca un pedido pendiente demasiado tiempo.
const StaleOrderNote = "[revisión] pedido pendiente sin confirmación del mayorista"

// GetOrder devuelve el pedido con sus líneas.
func (uc *OrderUseCase) GetOrder(ctx context.Context, actor Actor, orderID string) (*dto.OrderResponse, error) {
	order, err := uc.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, order); err != nil {
		return nil, err
	}
	return toOrderResponse(order), nil
}

// ListOrders lista los pedidos en los que la empresa del actor es minorista o mayorista.
func (uc *OrderUseCase) ListOrders(ctx context.Context, actor Actor, in dto.ListOrdersRequest) (*dto.OrderListResponse, error) {
	if actor.CompanyID == "" {
		return nil, domain.ErrUnauthorized
	}
	if in.Status != "" && !orderflow.IsValidStatus(in.Status) {
		return nil, fmt.Errorf("%w: estado desconocido %q", domain.ErrInvalidInput, in.Status)
	}
	in.DefaultPage()
	orders, total, err := uc.orderRepo.List(ctx, entity.OrderFilter{
		CompanyID:     actor.CompanyID,
		Status:        in.Status,
		PaymentStatus: in.PaymentStatus,
		Limit:         in.Limit,
		Offset:        in.Offset,
	})
	if err != nil {
		return nil, err
	}
	out := &dto.OrderListResponse{
		Items: make([]dto.OrderResponse, 0, len(orders)),
		Page:  dto.PageResponse{Limit: in.Limit, Offset: in.Offset, Total: total},
	}
	for _, o := range orders {
		r := toOrderResponse(o)
		r.Items = nil
		out.Items = append(out.Items, *r)
	}
	return out, nil
}

// Summary resumen de pedidos de la empresa del actor.
func (uc *OrderUseCase) Summary(ctx context.Context, actor Actor) (*dto.OrderSummaryResponse, error) {
	if actor.CompanyID == "" {
		return nil, domain.ErrUnauthorized
	}
	s, err := uc.orderRepo.Summary(ctx, actor.CompanyID, uc.now().AddDate(0, 0, -30))
	if err != nil {
		return nil, err
	}
	out := &dto.OrderSummaryResponse{
		TotalOrders:        s.TotalOrders,
		TotalAmount:        s.TotalAmount.Round(2),
		Currency:           uc.cfg.Currency,
		StatusDistribution: make(map[string]dto.StatusCount, len(s.ByStatus)),
		Recent30Days: dto.RecentOrdersSummary{
			Count:             s.RecentOrders,
			Amount:            s.RecentAmount.Round(2),
			AverageOrderValue: s.AverageOrderValue.Round(2),
		},
	}
	for status, n := range s.ByStatus {
		if n == 0 {
			continue
		}
		pct := decimal.Zero
		if s.TotalOrders > 0 {
			pct = decimal.NewFromInt(int64(n)).Mul(decimal.NewFromInt(100)).Div(decimal.NewFromInt(int64(s.TotalOrders))).Round(1)
		}
		out.StatusDistribution[status] = dto.StatusCount{Count: n, Percentage: pct}
	}
	return out, nil
}

// RecordNotificationFailure deja constancia de que el mayorista no pudo ser notificado:
// agrega el motivo a las notas internas y una entrada al historial sin cambiar el estado.
func (uc *OrderUseCase) RecordNotificationFailure(ctx context.Context, orderID, reason string) error {
	return uc.txRunner.RunOrder(ctx, func(
		_ repository.StockRecordRepository,
		orderRepo repository.OrderRepository,
		historyRepo repository.OrderHistoryRepository,
	) error {
		o, err := orderRepo.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		now := uc.now()
		o.AppendInternalNote(fmt.Sprintf("[%s] notificación al mayorista fallida: %s", now.Format(time.RFC3339), reason))
		o.UpdatedAt = now
		if err := orderRepo.Update(ctx, o); err != nil {
			return err
		}
		return historyRepo.Append(ctx, &entity.OrderStatusHistory{
			ID:           uuid.New().String(),
			OrderID:      o.ID,
			OldStatus:    o.Status,
			NewStatus:    o.Status,
			ChangeReason: "notificación al mayorista fallida",
			Notes:        reason,
			ChangedAt:    now,
		})
	})
}

// FlagStaleOrders marca para revisión los pedidos pendientes desde hace más de olderThan.
// No cambia el estado.
func (uc *OrderUseCase) FlagStaleOrders(ctx context.Context, olderThan time.Duration) (int, error) {
	cutoff := uc.now().Add(-olderThan)
	return uc.orderRepo.FlagStalePending(ctx, cutoff, StaleOrderNote)
}

func toOrderResponse(o *entity.Order) *dto.OrderResponse {
	out := &dto.OrderResponse{
		ID:               o.ID,
		OrderNumber:      o.OrderNumber,
		RetailerID:       o.RetailerID,
		WholesalerID:     o.WholesalerID,
		RetailerUserID:   o.RetailerUserID,
		Status:           o.Status,
		PaymentStatus:    o.PaymentStatus,
		Subtotal:         o.Subtotal,
		TaxAmount:        o.TaxAmount,
		ShippingCost:     o.ShippingCost,
		DiscountAmount:   o.DiscountAmount,
		TotalAmount:      o.TotalAmount,
		Currency:         o.Currency,
		CommissionRate:   o.CommissionRate,
		CommissionAmount: o.CommissionAmount,
		DeliveryAddress:  o.DeliveryAddress,
		DeliveryContact:  o.DeliveryContact,
		DeliveryPhone:    o.DeliveryPhone,
		PaymentTermsDays: o.PaymentTermsDays,
		DueDate:          o.DueDate,
		Notes:            o.Notes,
		OrderDate:        o.OrderDate,
		ConfirmedAt:      o.ConfirmedAt,
		ShippedAt:        o.ShippedAt,
		DeliveredAt:      o.DeliveredAt,
		CanceledAt:       o.CanceledAt,
		AllowedStatuses:  orderflow.AllowedTransitions(o.Status),
		Items:            make([]dto.OrderItemResponse, 0, len(o.Items)),
	}
	for _, it := range o.Items {
		out.Items = append(out.Items, dto.OrderItemResponse{
			ID:                       it.ID,
			ProductID:                it.ProductID,
			ProductName:              it.ProductName,
			ProductSKU:               it.ProductSKU,
			ProductBrand:             it.ProductBrand,
			WarehouseID:              it.WarehouseID,
			StockRecordID:            it.StockRecordID,
			Quantity:                 it.Quantity,
			UnitPrice:                it.UnitPrice,
			WholesalerReferencePrice: it.WholesalerReferencePrice,
			DiscountPercentage:       it.DiscountPercentage,
			DiscountAmount:           it.DiscountAmount,
			TotalPrice:               it.TotalPrice,
			IsCanceled:               it.IsCanceled,
			CanceledAt:               it.CanceledAt,
			CancelReason:             it.CancelReason,
		})
	}
	return out
}
