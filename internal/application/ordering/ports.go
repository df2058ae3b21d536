package ordering

import (
	"context"

	"github.com/jhoicas/tyrex-b2b-api/internal/domain/repository"
)

// OrderTxRunner ejecuta fn dentro de una transacción con repos atados a ella.
// Si fn devuelve error se hace rollback: ninguna escritura queda visible.
type OrderTxRunner interface {
	RunOrder(ctx context.Context, fn func(
		stockRepo repository.StockRecordRepository,
		orderRepo repository.OrderRepository,
		historyRepo repository.OrderHistoryRepository,
	) error) error
}

// OrderNotifier dispara la notificación al mayorista de un pedido ya confirmado en BD.
// No debe bloquear al llamador.
type OrderNotifier interface {
	NotifyAsync(orderID string)
}
