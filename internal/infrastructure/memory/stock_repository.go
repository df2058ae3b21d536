package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/tyrex-b2b-api/internal/domain"
	"github.com/jhoicas/tyrex-b2b-api/internal/domain/entity"
	"github.com/jhoicas/tyrex-b2b-api/internal/domain/repository"
)

var _ repository.StockRecordRepository = (*StockRepo)(nil)

// StockRepo registros de stock en memoria.
type StockRepo struct{ s *Store }

func NewStockRepository(s *Store) *StockRepo { return &StockRepo{s: s} }

// candidate debe llamarse con s.mu tomado.
func (r *StockRepo) candidate(rec *entity.StockRecord) entity.StockCandidate {
	c := entity.StockCandidate{Record: *rec}
	if wh, ok := r.s.warehouses[rec.WarehouseID]; ok {
		c.WarehouseName = wh.Name
		c.WarehouseActive = wh.IsActive
		c.OwnerID = wh.CompanyID
		if owner, ok := r.s.companies[wh.CompanyID]; ok {
			c.OwnerType = owner.Type
			c.OwnerName = owner.Name
		}
	}
	return c
}

func (r *StockRepo) GetCandidate(_ context.Context, id string) (*entity.StockCandidate, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rec, ok := r.s.stock[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c := r.candidate(rec)
	return &c, nil
}

func (r *StockRepo) ListCandidates(_ context.Context, productID, wholesalerID string) ([]entity.StockCandidate, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []entity.StockCandidate
	for _, rec := range r.s.stock {
		if rec.ProductID != productID {
			continue
		}
		c := r.candidate(rec)
		if wholesalerID != "" && c.OwnerID != wholesalerID {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Record.ID < out[j].Record.ID })
	return out, nil
}

func (r *StockRepo) GetForUpdate(_ context.Context, id string) (*entity.StockRecord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rec, ok := r.s.stock[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (r *StockRepo) Decrement(_ context.Context, id string, qty int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fault(OpStockDecrement); err != nil {
		return err
	}
	rec, ok := r.s.stock[id]
	if !ok {
		return domain.ErrNotFound
	}
	if rec.Quantity-rec.ReservedQuantity < qty {
		return domain.ErrInsufficientStock
	}
	rec.Quantity -= qty
	return nil
}

func (r *StockRepo) Increment(_ context.Context, id string, qty int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rec, ok := r.s.stock[id]
	if !ok {
		return domain.ErrNotFound
	}
	rec.Quantity += qty
	return nil
}
