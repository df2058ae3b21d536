package ordering

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jhoicas/tyrex-b2b-api/internal/application/dto"
	"github.com/jhoicas/tyrex-b2b-api/internal/domain"
	"github.com/jhoicas/tyrex-b2b-api/internal/domain/entity"
	"github.com/jhoicas/tyrex-b2b-api/internal/domain/orderflow"
	"github.com/jhoicas/tyrex-b2b-api/internal/domain/repository"
)

// TransitionInput cambio de estado solicitado.
type TransitionInput struct {
	OrderID string
	Status  string
	Reason  string // vacío = "actualización manual de estado"
	Notes   string
}

// CancelOrder cancela el pedido devolviendo al inventario las cantidades de todas sus líneas
// no canceladas. Estado, líneas, stock e historial se actualizan en una sola transacción.
func (uc *OrderUseCase) CancelOrder(ctx context.Context, actor Actor, orderID, reason string) (*dto.OrderResponse, error) {
	if orderID == "" {
		return nil, domain.ErrInvalidInput
	}
	var order *entity.Order
	err := uc.txRunner.RunOrder(ctx, func(
		stockRepo repository.StockRecordRepository,
		orderRepo repository.OrderRepository,
		historyRepo repository.OrderHistoryRepository,
	) error {
		o, err := orderRepo.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if err := authorize(actor, o); err != nil {
			return err
		}
		if !orderflow.IsCancelable(o.Status) {
			return fmt.Errorf("%w: estado actual %s", domain.ErrNotCancelable, o.Status)
		}
		order = o
		return uc.cancelInTx(ctx, stockRepo, orderRepo, historyRepo, actor, o, reason)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("order_id", order.ID).Str("actor", actorID(actor)).Msg("pedido cancelado")
	return toOrderResponse(order), nil
}

func (uc *OrderUseCase) cancelInTx(
	ctx context.Context,
	stockRepo repository.StockRecordRepository,
	orderRepo repository.OrderRepository,
	historyRepo repository.OrderHistoryRepository,
	actor Actor,
	o *entity.Order,
	reason string,
) error {
	now := uc.now()
	old := o.Status
	if err := orderflow.Apply(o, entity.OrderStatusCanceled, now); err != nil {
		return err
	}
	if reason == "" {
		reason = "pedido cancelado"
	}

	released := 0
	for _, item := range o.Items {
		if item.IsCanceled {
			continue
		}
		if _, err := stockRepo.GetForUpdate(ctx, item.StockRecordID); err != nil {
			return fmt.Errorf("bloquear stock %s: %w", item.StockRecordID, err)
		}
		if err := stockRepo.Increment(ctx, item.StockRecordID, item.Quantity); err != nil {
			return err
		}
		item.IsCanceled = true
		item.CanceledAt = &now
		item.CancelReason = reason
		item.UpdatedAt = now
		if err := orderRepo.UpdateItem(ctx, item); err != nil {
			return err
		}
		released += item.Quantity
	}

	if err := orderRepo.Update(ctx, o); err != nil {
		return err
	}
	return historyRepo.Append(ctx, &entity.OrderStatusHistory{
		ID:           uuid.New().String(),
		OrderID:      o.ID,
		OldStatus:    old,
		NewStatus:    entity.OrderStatusCanceled,
		ChangedBy:    actor.UserID,
		ChangeReason: reason,
		Notes:        fmt.Sprintf("%d unidades devueltas al inventario", released),
		ChangedAt:    now,
	})
}

// TransitionStatus mueve el pedido a in.Status si la tabla de transiciones lo permite.
// Pasar a canceled libera el inventario igual que CancelOrder.
func (uc *OrderUseCase) TransitionStatus(ctx context.Context, actor Actor, in TransitionInput) (*dto.OrderResponse, error) {
	if in.OrderID == "" || !orderflow.IsValidStatus(in.Status) {
		return nil, fmt.Errorf("%w: estado desconocido %q", domain.ErrInvalidInput, in.Status)
	}
	var order *entity.Order
	var old string
	err := uc.txRunner.RunOrder(ctx, func(
		stockRepo repository.StockRecordRepository,
		orderRepo repository.OrderRepository,
		historyRepo repository.OrderHistoryRepository,
	) error {
		o, err := orderRepo.GetForUpdate(ctx, in.OrderID)
		if err != nil {
			return err
		}
		if err := authorize(actor, o); err != nil {
			return err
		}
		if err := orderflow.Validate(o.Status, in.Status); err != nil {
			return err
		}
		order, old = o, o.Status
		if in.Status == entity.OrderStatusCanceled {
			return uc.cancelInTx(ctx, stockRepo, orderRepo, historyRepo, actor, o, in.Reason)
		}

		now := uc.now()
		if err := orderflow.Apply(o, in.Status, now); err != nil {
			return err
		}
		if err := orderRepo.Update(ctx, o); err != nil {
			return err
		}
		reason := in.Reason
		if reason == "" {
			reason = "actualización manual de estado"
		}
		return historyRepo.Append(ctx, &entity.OrderStatusHistory{
			ID:           uuid.New().String(),
			OrderID:      o.ID,
			OldStatus:    old,
			NewStatus:    in.Status,
			ChangedBy:    actor.UserID,
			ChangeReason: reason,
			Notes:        in.Notes,
			ChangedAt:    now,
		})
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("order_id", order.ID).
		Str("from", old).
		Str("to", order.Status).
		Str("actor", actorID(actor)).
		Msg("estado de pedido actualizado")
	return toOrderResponse(order), nil
}

// GetStatusHistory devuelve el historial del pedido, del más reciente al más antiguo.
func (uc *OrderUseCase) GetStatusHistory(ctx context.Context, actor Actor, orderID string) (*dto.OrderHistoryResponse, error) {
	order, err := uc.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, order); err != nil {
		return nil, err
	}
	rows, err := uc.historyRepo.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	out := &dto.OrderHistoryResponse{
		OrderNumber:   order.OrderNumber,
		CurrentStatus: order.Status,
		History:       make([]dto.OrderStatusHistoryResponse, 0, len(rows)),
	}
	for _, h := range rows {
		out.History = append(out.History, dto.OrderStatusHistoryResponse{
			ID:           h.ID,
			OldStatus:    h.OldStatus,
			NewStatus:    h.NewStatus,
			ChangedBy:    h.ChangedBy,
			ChangeReason: h.ChangeReason,
			Notes:        h.Notes,
			ChangedAt:    h.ChangedAt,
		})
	}
	return out, nil
}

// authorize solo las partes del pedido (o el sistema) pueden verlo o modificarlo.
func authorize(actor Actor, o *entity.Order) error {
	if actor.System {
		return nil
	}
	if actor.CompanyID == "" {
		return domain.ErrUnauthorized
	}
	if actor.CompanyID != o.RetailerID && actor.CompanyID != o.WholesalerID {
		return domain.ErrForbidden
	}
	return nil
}

func actorID(a Actor) string {
	if a.System {
		return "sistema"
	}
	return a.UserID
}
