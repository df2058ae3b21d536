package repository

import (
	"context"
	"time"

	"github.com/jhoicas/tyrex-b2b-api/internal/domain/entity"
)

// OrderRepository puerto de persistencia de pedidos y sus líneas.
type OrderRepository interface {
	Create(ctx context.Context, order *entity.Order) error
	CreateItem(ctx context.Context, item *entity.OrderItem) error
	// GetByID devuelve el pedido con sus líneas (ErrNotFound si no existe).
	GetByID(ctx context.Context, id string) (*entity.Order, error)
	// GetForUpdate igual que GetByID pero bloqueando la fila del pedido.
	GetForUpdate(ctx context.Context, id string) (*entity.Order, error)
	Update(ctx context.Context, order *entity.Order) error
	UpdateItem(ctx context.Context, item *entity.OrderItem) error
	List(ctx context.Context, filter entity.OrderFilter) ([]*entity.Order, int, error)
	Summary(ctx context.Context, companyID string, since time.Time) (*entity.OrderSummary, error)
	// FlagStalePending agrega note a las notas internas de los pedidos pendientes desde antes de
	// cutoff que aún no la tienen. Devuelve cuántos pedidos se marcaron.
	FlagStalePending(ctx context.Context, cutoff time.Time, note string) (int, error)
}

// OrderHistoryRepository puerto del historial de estados (solo inserción).
type OrderHistoryRepository interface {
	Append(ctx context.Context, h *entity.OrderStatusHistory) error
	// ListByOrder devuelve el historial del más reciente al más antiguo.
	ListByOrder(ctx context.Context, orderID string) ([]*entity.OrderStatusHistory, error)
}
