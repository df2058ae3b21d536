// Package orderflow define el ciclo de vida del pedido.
package orderflow

import (
	"time"

	"github.com/jhoicas/tyrex-b2b-api/internal/domain"
	"github.com/jhoicas/tyrex-b2b-api/internal/domain/entity"
)

// validTransitions tabla completa de transiciones; los estados terminales no tienen salidas.
var validTransitions = map[string][]string{
	entity.OrderStatusDraft:      {entity.OrderStatusPending, entity.OrderStatusCanceled},
	entity.OrderStatusPending:    {entity.OrderStatusConfirmed, entity.OrderStatusCanceled, entity.OrderStatusRejected},
	entity.OrderStatusConfirmed:  {entity.OrderStatusProcessing, entity.OrderStatusCanceled},
	entity.OrderStatusProcessing: {entity.OrderStatusShipped, entity.OrderStatusCanceled},
	entity.OrderStatusShipped:    {entity.OrderStatusDelivered},
	entity.OrderStatusDelivered:  {},
	entity.OrderStatusCanceled:   {},
	entity.OrderStatusRejected:   {},
}

// Statuses devuelve todos los estados conocidos.
func Statuses() []string {
	return []string{
		entity.OrderStatusDraft,
		entity.OrderStatusPending,
		entity.OrderStatusConfirmed,
		entity.OrderStatusProcessing,
		entity.OrderStatusShipped,
		entity.OrderStatusDelivered,
		entity.OrderStatusCanceled,
		entity.OrderStatusRejected,
	}
}

// IsValidStatus informa si s es un estado del ciclo de vida.
func IsValidStatus(s string) bool {
	_, ok := validTransitions[s]
	return ok
}

// AllowedTransitions devuelve una copia de los estados alcanzables desde from.
func AllowedTransitions(from string) []string {
	allowed := validTransitions[from]
	out := make([]string, len(allowed))
	copy(out, allowed)
	return out
}

// CanTransition informa si from -> to está en la tabla.
func CanTransition(from, to string) bool {
	for _, s := range validTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// IsTerminal informa si el estado no tiene salidas.
func IsTerminal(status string) bool {
	return len(validTransitions[status]) == 0
}

// IsCancelable informa si desde status se puede cancelar.
func IsCancelable(status string) bool {
	return CanTransition(status, entity.OrderStatusCanceled)
}

// Validate devuelve *domain.TransitionError si from -> to no está permitido.
func Validate(from, to string) error {
	if CanTransition(from, to) {
		return nil
	}
	return &domain.TransitionError{From: from, To: to, Allowed: AllowedTransitions(from)}
}

// Apply valida y aplica la transición al pedido, marcando las fechas de cada hito.
// La entrega deja el pago como pagado.
func Apply(o *entity.Order, to string, now time.Time) error {
	if err := Validate(o.Status, to); err != nil {
		return err
	}
	o.Status = to
	o.UpdatedAt = now
	switch to {
	case entity.OrderStatusConfirmed:
		o.ConfirmedAt = &now
	case entity.OrderStatusShipped:
		o.ShippedAt = &now
	case entity.OrderStatusDelivered:
		o.DeliveredAt = &now
		o.PaymentStatus = entity.PaymentStatusPaid
	case entity.OrderStatusCanceled:
		o.CanceledAt = &now
	}
	return nil
}
