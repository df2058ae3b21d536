package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/tyrex-b2b-api/internal/application/ordering"
	"github.com/jhoicas/tyrex-b2b-api/internal/domain/repository"
)

var _ ordering.OrderTxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunOrder inicia una transacción, ejecuta fn con repos de stock, pedidos e historial atados
// a la tx y hace Commit o Rollback. Los bloqueos de fila (FOR UPDATE) duran hasta el final.
func (r *TxRunner) RunOrder(ctx context.Context, fn func(
	stockRepo repository.StockRecordRepository,
	orderRepo repository.OrderRepository,
	historyRepo repository.OrderHistoryRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	stockRepo := NewStockRepository(tx)
	orderRepo := NewOrderRepository(tx)
	historyRepo := NewOrderHistoryRepository(tx)

	if err := fn(stockRepo, orderRepo, historyRepo); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
