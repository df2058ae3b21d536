package ordering_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/tyrex-b2b-api/internal/application/dto"
	"github.com/jhoicas/tyrex-b2b-api/internal/application/ordering"
	"github.com/jhoicas/tyrex-b2b-api/internal/domain"
	"github.com/jhoicas/tyrex-b2b-api/internal/domain/entity"
)

func (f *fixture) createOrder(t *testing.T) *dto.OrderResponse {
	t.Helper()
	out, err := f.uc.CreateOrder(context.Background(), f.buyer, orderRequest(
		dto.CartLineRequest{ProductID: pTire, Quantity: 4},
		dto.CartLineRequest{ProductID: pBattery, Quantity: 2},
	))
	require.NoError(t, err)
	return out
}

func (f *fixture) transition(t *testing.T, orderID, status string) {
	t.Helper()
	_, err := f.uc.TransitionStatus(context.Background(), f.wholesalerActor(), ordering.TransitionInput{OrderID: orderID, Status: status})
	require.NoError(t, err, "transición a %s", status)
}

// ──────────────────────────────────────────────────────────────────────────────
// Cancelación
// ──────────────────────────────────────────────────────────────────────────────

func TestCancelOrder_DevuelveStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.createOrder(t)
	require.Equal(t, 6, f.store.StockRecord(sATire).Quantity)
	require.Equal(t, 3, f.store.StockRecord(sABattery).Quantity)

	out, err := f.uc.CancelOrder(ctx, f.retailerActor(), order.ID, "cliente desistió")
	require.NoError(t, err)

	assert.Equal(t, entity.OrderStatusCanceled, out.Status)
	require.NotNil(t, out.CanceledAt)
	assert.Equal(t, 10, f.store.StockRecord(sATire).Quantity)
	assert.Equal(t, 5, f.store.StockRecord(sABattery).Quantity)
	for _, it := range out.Items {
		assert.True(t, it.IsCanceled)
		assert.Equal(t, "cliente desistió", it.CancelReason)
		assert.NotNil(t, it.CanceledAt)
	}
	assert.Empty(t, out.AllowedStatuses)

	hist, err := f.uc.GetStatusHistory(ctx, f.retailerActor(), order.ID)
	require.NoError(t, err)
	require.Len(t, hist.History, 2)
	assert.Equal(t, entity.OrderStatusPending, hist.History[0].OldStatus)
	assert.Equal(t, entity.OrderStatusCanceled, hist.History[0].NewStatus)
	assert.Equal(t, "6 unidades devueltas al inventario", hist.History[0].Notes)

	_, err = f.uc.CancelOrder(ctx, f.retailerActor(), order.ID, "")
	assert.ErrorIs(t, err, domain.ErrNotCancelable, "cancelar dos veces")
	assert.Equal(t, 10, f.store.StockRecord(sATire).Quantity, "el segundo intento no devuelve stock")
}

func TestCancelOrder_DesdeEnviadoNoPermitido(t *testing.T) {
	f := newFixture(t)
	order := f.createOrder(t)
	f.transition(t, order.ID, entity.OrderStatusConfirmed)
	f.transition(t, order.ID, entity.OrderStatusProcessing)
	f.transition(t, order.ID, entity.OrderStatusShipped)

	_, err := f.uc.CancelOrder(context.Background(), f.retailerActor(), order.ID, "")
	assert.ErrorIs(t, err, domain.ErrNotCancelable)
	assert.Equal(t, 6, f.store.StockRecord(sATire).Quantity)
}

func TestTransitionStatus_CancelarDesdeProcesandoLiberaStock(t *testing.T) {
	f := newFixture(t)
	order := f.createOrder(t)
	f.transition(t, order.ID, entity.OrderStatusConfirmed)
	f.transition(t, order.ID, entity.OrderStatusProcessing)

	out, err := f.uc.TransitionStatus(context.Background(), f.wholesalerActor(), ordering.TransitionInput{
		OrderID: order.ID, Status: entity.OrderStatusCanceled, Reason: "sin transporte",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusCanceled, out.Status)
	assert.Equal(t, 10, f.store.StockRecord(sATire).Quantity)
	assert.Equal(t, 5, f.store.StockRecord(sABattery).Quantity)
}

// ──────────────────────────────────────────────────────────────────────────────
// Transiciones e historial
// ──────────────────────────────────────────────────────────────────────────────

func TestTransitionStatus_CicloCompletoEHistorial(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.createOrder(t)

	steps := []string{
		entity.OrderStatusConfirmed,
		entity.OrderStatusProcessing,
		entity.OrderStatusShipped,
		entity.OrderStatusDelivered,
	}
	for i, s := range steps {
		f.now = fixedNow.Add(time.Duration(i+1) * time.Hour)
		f.transition(t, order.ID, s)
	}

	got, err := f.uc.GetOrder(ctx, f.retailerActor(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusDelivered, got.Status)
	assert.Equal(t, entity.PaymentStatusPaid, got.PaymentStatus)
	require.NotNil(t, got.ConfirmedAt)
	require.NotNil(t, got.ShippedAt)
	require.NotNil(t, got.DeliveredAt)
	assert.Equal(t, fixedNow.Add(4*time.Hour), *got.DeliveredAt)

	hist, err := f.uc.GetStatusHistory(ctx, f.wholesalerActor(), order.ID)
	require.NoError(t, err)
	require.Len(t, hist.History, 1+len(steps), "una fila por transición más la de creación")
	assert.Equal(t, entity.OrderStatusDelivered, hist.History[0].NewStatus, "del más reciente al más antiguo")
	assert.Equal(t, entity.OrderStatusPending, hist.History[len(hist.History)-1].NewStatus)
	for i := 0; i+1 < len(hist.History); i++ {
		assert.Equal(t, hist.History[i+1].NewStatus, hist.History[i].OldStatus, "la cadena de estados es continua")
		assert.False(t, hist.History[i].ChangedAt.Before(hist.History[i+1].ChangedAt))
	}

	_, err = f.uc.TransitionStatus(ctx, f.wholesalerActor(), ordering.TransitionInput{OrderID: order.ID, Status: entity.OrderStatusCanceled})
	require.ErrorIs(t, err, domain.ErrInvalidStatusTransition)
	var te *domain.TransitionError
	require.True(t, errors.As(err, &te))
	assert.Empty(t, te.Allowed)
}

func TestTransitionStatus_Invalida(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.createOrder(t)

	_, err := f.uc.TransitionStatus(ctx, f.wholesalerActor(), ordering.TransitionInput{OrderID: order.ID, Status: entity.OrderStatusShipped})
	require.ErrorIs(t, err, domain.ErrInvalidStatusTransition)
	var te *domain.TransitionError
	require.True(t, errors.As(err, &te))
	assert.ElementsMatch(t, []string{entity.OrderStatusConfirmed, entity.OrderStatusCanceled, entity.OrderStatusRejected}, te.Allowed)

	_, err = f.uc.TransitionStatus(ctx, f.wholesalerActor(), ordering.TransitionInput{OrderID: order.ID, Status: "archived"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	hist, err := f.uc.GetStatusHistory(ctx, f.wholesalerActor(), order.ID)
	require.NoError(t, err)
	assert.Len(t, hist.History, 1, "las transiciones rechazadas no dejan historial")
}

func TestTransitionStatus_Rechazo(t *testing.T) {
	f := newFixture(t)
	order := f.createOrder(t)
	f.transition(t, order.ID, entity.OrderStatusRejected)

	got, err := f.uc.GetOrder(context.Background(), f.wholesalerActor(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusRejected, got.Status)
	assert.Empty(t, got.AllowedStatuses)
}

func TestOrder_AccesoSoloPartes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.createOrder(t)
	stranger := ordering.Actor{UserID: "x", CompanyID: "other-co"}

	_, err := f.uc.GetOrder(ctx, stranger, order.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = f.uc.CancelOrder(ctx, stranger, order.ID, "")
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = f.uc.GetStatusHistory(ctx, stranger, order.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.uc.GetOrder(ctx, f.retailerActor(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Consultas y marcas internas
// ──────────────────────────────────────────────────────────────────────────────

func TestListOrdersYSummary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first := f.createOrder(t)
	f.now = fixedNow.Add(time.Minute)
	second, err := f.uc.CreateOrder(ctx, f.buyer, orderRequest(dto.CartLineRequest{ProductID: pTire, Quantity: 1}))
	require.NoError(t, err)
	f.transition(t, second.ID, entity.OrderStatusConfirmed)

	list, err := f.uc.ListOrders(ctx, f.wholesalerActor(), dto.ListOrdersRequest{})
	require.NoError(t, err)
	require.Len(t, list.Items, 2)
	assert.Equal(t, second.ID, list.Items[0].ID, "más reciente primero")
	assert.Equal(t, 2, list.Page.Total)

	pending, err := f.uc.ListOrders(ctx, f.retailerActor(), dto.ListOrdersRequest{Status: entity.OrderStatusPending})
	require.NoError(t, err)
	require.Len(t, pending.Items, 1)
	assert.Equal(t, first.ID, pending.Items[0].ID)

	sum, err := f.uc.Summary(ctx, f.retailerActor())
	require.NoError(t, err)
	assert.Equal(t, 2, sum.TotalOrders)
	assert.True(t, sum.TotalAmount.Equal(first.TotalAmount.Add(second.TotalAmount)))
	assert.Equal(t, 1, sum.StatusDistribution[entity.OrderStatusPending].Count)
	assert.Equal(t, "50.0", sum.StatusDistribution[entity.OrderStatusConfirmed].Percentage.StringFixed(1))
	assert.Equal(t, 2, sum.Recent30Days.Count)
}

func TestRecordNotificationFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.createOrder(t)

	require.NoError(t, f.uc.RecordNotificationFailure(ctx, order.ID, "api: timeout"))

	hist, err := f.uc.GetStatusHistory(ctx, f.retailerActor(), order.ID)
	require.NoError(t, err)
	require.Len(t, hist.History, 2)
	assert.Equal(t, entity.OrderStatusPending, hist.History[0].OldStatus)
	assert.Equal(t, entity.OrderStatusPending, hist.History[0].NewStatus)
	assert.Equal(t, "api: timeout", hist.History[0].Notes)
	assert.Empty(t, hist.History[0].ChangedBy)
	assert.Equal(t, entity.OrderStatusPending, hist.CurrentStatus)
}

func TestFlagStaleOrders(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	old := f.createOrder(t)
	f.now = fixedNow.Add(6 * 24 * time.Hour)
	_, err := f.uc.CreateOrder(ctx, f.buyer, orderRequest(dto.CartLineRequest{ProductID: pTire, Quantity: 1}))
	require.NoError(t, err)

	f.now = fixedNow.Add(8 * 24 * time.Hour)
	n, err := f.uc.FlagStaleOrders(ctx, 7*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = f.uc.FlagStaleOrders(ctx, 7*24*time.Hour)
	require.NoError(t, err)
	assert.Zero(t, n, "no se marca dos veces")

	got, err := f.uc.GetOrder(ctx, f.retailerActor(), old.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusPending, got.Status, "el barrido no cambia el estado")
}
