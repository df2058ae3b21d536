package orderflow_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/tyrex-b2b-api/internal/domain"
	"github.com/jhoicas/tyrex-b2b-api/internal/domain/entity"
	"github.com/jhoicas/tyrex-b2b-api/internal/domain/orderflow"
)

// expected reproduce la tabla de transiciones para recorrer todos los pares.
var expected = map[string]map[string]bool{
	entity.OrderStatusDraft:      {entity.OrderStatusPending: true, entity.OrderStatusCanceled: true},
	entity.OrderStatusPending:    {entity.OrderStatusConfirmed: true, entity.OrderStatusCanceled: true, entity.OrderStatusRejected: true},
	entity.OrderStatusConfirmed:  {entity.OrderStatusProcessing: true, entity.OrderStatusCanceled: true},
	entity.OrderStatusProcessing: {entity.OrderStatusShipped: true, entity.OrderStatusCanceled: true},
	entity.OrderStatusShipped:    {entity.OrderStatusDelivered: true},
}

func TestCanTransition_TodosLosPares(t *testing.T) {
	for _, from := range orderflow.Statuses() {
		for _, to := range orderflow.Statuses() {
			want := expected[from][to]
			assert.Equal(t, want, orderflow.CanTransition(from, to), "%s -> %s", from, to)

			err := orderflow.Validate(from, to)
			if want {
				assert.NoError(t, err)
				continue
			}
			require.ErrorIs(t, err, domain.ErrInvalidStatusTransition)
			var te *domain.TransitionError
			require.True(t, errors.As(err, &te))
			assert.ElementsMatch(t, orderflow.AllowedTransitions(from), te.Allowed)
		}
	}
}

func TestTerminales(t *testing.T) {
	for _, s := range []string{entity.OrderStatusDelivered, entity.OrderStatusCanceled, entity.OrderStatusRejected} {
		assert.True(t, orderflow.IsTerminal(s), s)
		assert.False(t, orderflow.IsCancelable(s), s)
	}
	assert.False(t, orderflow.IsCancelable(entity.OrderStatusShipped))
	assert.True(t, orderflow.IsCancelable(entity.OrderStatusProcessing))
	assert.False(t, orderflow.IsValidStatus("archived"))
}

func TestApply_FechasYPago(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	o := &entity.Order{Status: entity.OrderStatusPending, PaymentStatus: entity.PaymentStatusPending}

	require.NoError(t, orderflow.Apply(o, entity.OrderStatusConfirmed, now))
	require.NotNil(t, o.ConfirmedAt)
	require.NoError(t, orderflow.Apply(o, entity.OrderStatusProcessing, now))
	require.NoError(t, orderflow.Apply(o, entity.OrderStatusShipped, now))
	require.NotNil(t, o.ShippedAt)
	require.NoError(t, orderflow.Apply(o, entity.OrderStatusDelivered, now))
	require.NotNil(t, o.DeliveredAt)
	assert.Equal(t, entity.PaymentStatusPaid, o.PaymentStatus)

	err := orderflow.Apply(o, entity.OrderStatusCanceled, now)
	assert.ErrorIs(t, err, domain.ErrInvalidStatusTransition)
	assert.Equal(t, entity.OrderStatusDelivered, o.Status, "un fallo no modifica el pedido")
	assert.Nil(t, o.CanceledAt)
}

func TestAllowedTransitions_DevuelveCopia(t *testing.T) {
	a := orderflow.AllowedTransitions(entity.OrderStatusPending)
	a[0] = "mutado"
	assert.True(t, orderflow.CanTransition(entity.OrderStatusPending, entity.OrderStatusConfirmed))
}
