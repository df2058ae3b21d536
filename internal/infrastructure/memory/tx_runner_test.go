package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/tyrex-b2b-api/internal/domain"
	"github.com/jhoicas/tyrex-b2b-api/internal/domain/entity"
	"github.com/jhoicas/tyrex-b2b-api/internal/domain/repository"
	"github.com/jhoicas/tyrex-b2b-api/internal/infrastructure/memory"
)

func storeConStock(qty, reserved int) *memory.Store {
	s := memory.NewStore()
	s.AddStock(&entity.StockRecord{ID: "s-1", ProductID: "p-1", WarehouseID: "w-1", Quantity: qty, ReservedQuantity: reserved, IsActive: true, IsSellable: true})
	return s
}

func cantidad(t *testing.T, s *memory.Store) int {
	t.Helper()
	rec, err := memory.NewStockRepository(s).GetForUpdate(context.Background(), "s-1")
	require.NoError(t, err)
	return rec.Quantity
}

// ─── Transacciones ───────────────────────────────────────────────────────────

func TestRunOrder_ConfirmaEscrituras(t *testing.T) {
	s := storeConStock(10, 0)
	runner := memory.NewTxRunner(s)

	err := runner.RunOrder(context.Background(), func(stock repository.StockRecordRepository, _ repository.OrderRepository, _ repository.OrderHistoryRepository) error {
		return stock.Decrement(context.Background(), "s-1", 4)
	})
	require.NoError(t, err)
	assert.Equal(t, 6, cantidad(t, s))
}

func TestRunOrder_RollbackAlFallar(t *testing.T) {
	s := storeConStock(10, 0)
	runner := memory.NewTxRunner(s)
	boom := errors.New("boom")

	err := runner.RunOrder(context.Background(), func(stock repository.StockRecordRepository, _ repository.OrderRepository, _ repository.OrderHistoryRepository) error {
		require.NoError(t, stock.Decrement(context.Background(), "s-1", 4))
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 10, cantidad(t, s), "el decremento se descarta")
}

func TestRunOrder_ContextoCancelado(t *testing.T) {
	s := storeConStock(10, 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := memory.NewTxRunner(s).RunOrder(ctx, func(repository.StockRecordRepository, repository.OrderRepository, repository.OrderHistoryRepository) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

// ─── Stock ───────────────────────────────────────────────────────────────────

func TestDecrement_RespetaReservado(t *testing.T) {
	s := storeConStock(10, 7)
	repo := memory.NewStockRepository(s)

	assert.ErrorIs(t, repo.Decrement(context.Background(), "s-1", 4), domain.ErrInsufficientStock)
	require.NoError(t, repo.Decrement(context.Background(), "s-1", 3))
	assert.Equal(t, 7, cantidad(t, s))
}

func TestDecrement_FalloInyectado(t *testing.T) {
	s := storeConStock(10, 0)
	boom := errors.New("disco lleno")
	s.InjectFault(memory.OpStockDecrement, boom)

	repo := memory.NewStockRepository(s)
	assert.ErrorIs(t, repo.Decrement(context.Background(), "s-1", 1), boom)

	s.ClearFaults()
	require.NoError(t, repo.Decrement(context.Background(), "s-1", 1))
	assert.Equal(t, 9, cantidad(t, s))
	assert.ErrorIs(t, repo.Increment(context.Background(), "nope", 1), domain.ErrNotFound)
}

// ─── Historial ───────────────────────────────────────────────────────────────

func TestListByOrder_EmpatesEnOrdenDeInsercion(t *testing.T) {
	s := memory.NewStore()
	repo := memory.NewOrderHistoryRepository(s)
	ctx := context.Background()
	t0 := time.Date(2026, 5, 10, 9, 30, 0, 0, time.UTC)

	rows := []*entity.OrderStatusHistory{
		{ID: "ffff", OrderID: "o-1", OldStatus: entity.OrderStatusDraft, NewStatus: entity.OrderStatusPending, ChangedAt: t0},
		{ID: "0000", OrderID: "o-1", OldStatus: entity.OrderStatusPending, NewStatus: entity.OrderStatusConfirmed, ChangedAt: t0},
		{ID: "8888", OrderID: "o-1", OldStatus: entity.OrderStatusConfirmed, NewStatus: entity.OrderStatusProcessing, ChangedAt: t0.Add(time.Second)},
	}
	for _, h := range rows {
		require.NoError(t, repo.Append(ctx, h))
	}

	out, err := repo.ListByOrder(ctx, "o-1")
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, "8888", out[0].ID)
	assert.Equal(t, "0000", out[1].ID, "mismo changed_at: gana el último insertado, no el id")
	assert.Equal(t, "ffff", out[2].ID)
}
