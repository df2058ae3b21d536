package memory

import (
	"context"

	"github.com/jhoicas/tyrex-b2b-api/internal/application/ordering"
	"github.com/jhoicas/tyrex-b2b-api/internal/domain/repository"
)

var _ ordering.OrderTxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks de forma serializada; si fn falla restaura el estado previo.
type TxRunner struct {
	s *Store
}

// NewTxRunner construye el runner sobre el store.
func NewTxRunner(s *Store) *TxRunner {
	return &TxRunner{s: s}
}

// RunOrder ejecuta fn con los repos del store. Un error en fn descarta todas sus escrituras.
func (r *TxRunner) RunOrder(ctx context.Context, fn func(
	stockRepo repository.StockRecordRepository,
	orderRepo repository.OrderRepository,
	historyRepo repository.OrderHistoryRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.txMu.Lock()
	defer r.s.txMu.Unlock()

	r.s.mu.Lock()
	snap := r.s.snapshot()
	r.s.mu.Unlock()

	if err := fn(NewStockRepository(r.s), NewOrderRepository(r.s), NewOrderHistoryRepository(r.s)); err != nil {
		r.s.mu.Lock()
		r.s.restore(snap)
		r.s.mu.Unlock()
		return err
	}
	return nil
}
