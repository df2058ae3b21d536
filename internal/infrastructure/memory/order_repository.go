package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/tyrex-b2b-api/internal/domain"
	"github.com/jhoicas/tyrex-b2b-api/internal/domain/entity"
	"github.com/jhoicas/tyrex-b2b-api/internal/domain/repository"
)

var (
	_ repository.OrderRepository        = (*OrderRepo)(nil)
	_ repository.OrderHistoryRepository = (*OrderHistoryRepo)(nil)
)

// OrderRepo pedidos en memoria.
type OrderRepo struct{ s *Store }

func NewOrderRepository(s *Store) *OrderRepo { return &OrderRepo{s: s} }

func (r *OrderRepo) Create(_ context.Context, o *entity.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fault(OpOrderCreate); err != nil {
		return err
	}
	if _, exists := r.s.orders[o.ID]; exists {
		return domain.ErrConflict
	}
	for _, existing := range r.s.orders {
		if existing.OrderNumber == o.OrderNumber {
			return domain.ErrConflict
		}
	}
	cp := cloneOrder(o)
	cp.Items = nil
	r.s.orders[o.ID] = cp
	r.s.orderSeq = append(r.s.orderSeq, o.ID)
	return nil
}

func (r *OrderRepo) CreateItem(_ context.Context, item *entity.OrderItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fault(OpOrderCreateItem); err != nil {
		return err
	}
	o, ok := r.s.orders[item.OrderID]
	if !ok {
		return domain.ErrNotFound
	}
	cp := *item
	o.Items = append(o.Items, &cp)
	return nil
}

func (r *OrderRepo) GetByID(_ context.Context, id string) (*entity.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	o, ok := r.s.orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneOrder(o), nil
}

// GetForUpdate las transacciones ya están serializadas; equivale a GetByID.
func (r *OrderRepo) GetForUpdate(ctx context.Context, id string) (*entity.Order, error) {
	return r.GetByID(ctx, id)
}

func (r *OrderRepo) Update(_ context.Context, o *entity.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fault(OpOrderUpdate); err != nil {
		return err
	}
	existing, ok := r.s.orders[o.ID]
	if !ok {
		return domain.ErrNotFound
	}
	cp := cloneOrder(o)
	cp.Items = existing.Items
	r.s.orders[o.ID] = cp
	return nil
}

func (r *OrderRepo) UpdateItem(_ context.Context, item *entity.OrderItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[item.OrderID]
	if !ok {
		return domain.ErrNotFound
	}
	for i, it := range o.Items {
		if it.ID == item.ID {
			cp := *item
			o.Items[i] = &cp
			return nil
		}
	}
	return domain.ErrNotFound
}

// matching pedidos de la empresa (como minorista o mayorista), del más reciente al más antiguo.
// Debe llamarse con s.mu tomado.
func (r *OrderRepo) matching(companyID string) []*entity.Order {
	var out []*entity.Order
	for i := len(r.s.orderSeq) - 1; i >= 0; i-- {
		o := r.s.orders[r.s.orderSeq[i]]
		if o.RetailerID == companyID || o.WholesalerID == companyID {
			out = append(out, o)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].OrderDate.After(out[j].OrderDate) })
	return out
}

func (r *OrderRepo) List(_ context.Context, f entity.OrderFilter) ([]*entity.Order, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var filtered []*entity.Order
	for _, o := range r.matching(f.CompanyID) {
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		if f.PaymentStatus != "" && o.PaymentStatus != f.PaymentStatus {
			continue
		}
		filtered = append(filtered, o)
	}
	total := len(filtered)
	if f.Offset >= total {
		return []*entity.Order{}, total, nil
	}
	filtered = filtered[f.Offset:]
	if f.Limit > 0 && f.Limit < len(filtered) {
		filtered = filtered[:f.Limit]
	}
	out := make([]*entity.Order, len(filtered))
	for i, o := range filtered {
		out[i] = cloneOrder(o)
	}
	return out, total, nil
}

func (r *OrderRepo) Summary(_ context.Context, companyID string, since time.Time) (*entity.OrderSummary, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	s := &entity.OrderSummary{
		TotalAmount:       decimal.Zero,
		RecentAmount:      decimal.Zero,
		AverageOrderValue: decimal.Zero,
		ByStatus:          make(map[string]int),
	}
	for _, o := range r.matching(companyID) {
		s.TotalOrders++
		s.TotalAmount = s.TotalAmount.Add(o.TotalAmount)
		s.ByStatus[o.Status]++
		if !o.OrderDate.Before(since) {
			s.RecentOrders++
			s.RecentAmount = s.RecentAmount.Add(o.TotalAmount)
		}
	}
	if s.RecentOrders > 0 {
		s.AverageOrderValue = s.RecentAmount.Div(decimal.NewFromInt(int64(s.RecentOrders)))
	}
	return s, nil
}

func (r *OrderRepo) FlagStalePending(_ context.Context, cutoff time.Time, note string) (int, error) {
	r.s.txMu.Lock()
	defer r.s.txMu.Unlock()
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := 0
	for _, o := range r.s.orders {
		if o.Status != entity.OrderStatusPending || !o.OrderDate.Before(cutoff) {
			continue
		}
		if strings.Contains(o.InternalNotes, note) {
			continue
		}
		o.AppendInternalNote(note)
		n++
	}
	return n, nil
}

// OrderHistoryRepo historial en memoria (solo inserción).
type OrderHistoryRepo struct{ s *Store }

func NewOrderHistoryRepository(s *Store) *OrderHistoryRepo { return &OrderHistoryRepo{s: s} }

func (r *OrderHistoryRepo) Append(_ context.Context, h *entity.OrderStatusHistory) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fault(OpHistoryAppend); err != nil {
		return err
	}
	cp := *h
	r.s.history[h.OrderID] = append(r.s.history[h.OrderID], &cp)
	return nil
}

func (r *OrderHistoryRepo) ListByOrder(_ context.Context, orderID string) ([]*entity.OrderStatusHistory, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rows := r.s.history[orderID]
	out := make([]*entity.OrderStatusHistory, 0, len(rows))
	for i := len(rows) - 1; i >= 0; i-- {
		cp := *rows[i]
		out = append(out, &cp)
	}
	// empates de changed_at: el último insertado primero
	sort.SliceStable(out, func(i, j int) bool { return out[i].ChangedAt.After(out[j].ChangedAt) })
	return out, nil
}
