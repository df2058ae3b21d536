// Package memory implementa los puertos de repositorio en memoria. Se usa en pruebas y en
// desarrollo local sin PostgreSQL. Las transacciones se serializan y hacen rollback restaurando
// una copia del estado.
package memory

import (
	"sync"

	"github.com/jhoicas/tyrex-b2b-api/internal/domain/entity"
)

// Store estado compartido por todos los repos en memoria.
type Store struct {
	mu   sync.RWMutex // protege los mapas
	txMu sync.Mutex   // serializa transacciones

	products      map[string]*entity.Product
	companies     map[string]*entity.Company
	warehouses    map[string]*entity.Warehouse
	stock         map[string]*entity.StockRecord
	relationships map[string]*entity.Relationship
	subscriptions map[string]*entity.Subscription
	orders        map[string]*entity.Order
	orderSeq      []string
	history       map[string][]*entity.OrderStatusHistory

	faults map[string]error
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{
		products:      make(map[string]*entity.Product),
		companies:     make(map[string]*entity.Company),
		warehouses:    make(map[string]*entity.Warehouse),
		stock:         make(map[string]*entity.StockRecord),
		relationships: make(map[string]*entity.Relationship),
		subscriptions: make(map[string]*entity.Subscription),
		orders:        make(map[string]*entity.Order),
		history:       make(map[string][]*entity.OrderStatusHistory),
		faults:        make(map[string]error),
	}
}

// Operaciones que aceptan fallos inyectados.
const (
	OpOrderCreate     = "order.create"
	OpOrderCreateItem = "order.create_item"
	OpOrderUpdate     = "order.update"
	OpStockDecrement  = "stock.decrement"
	OpHistoryAppend   = "history.append"
)

// InjectFault hace que la operación op devuelva err hasta que se limpie con ClearFaults.
func (s *Store) InjectFault(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults[op] = err
}

// ClearFaults elimina los fallos inyectados.
func (s *Store) ClearFaults() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults = make(map[string]error)
}

// fault debe llamarse con s.mu tomado.
func (s *Store) fault(op string) error {
	return s.faults[op]
}

func relKey(retailerID, wholesalerID string) string {
	return retailerID + "|" + wholesalerID
}

// ─── Carga de datos ─────────────────────────────────────────────────────────────

func (s *Store) AddProduct(p *entity.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *p
	s.products[p.ID] = &cp
}

func (s *Store) AddCompany(c *entity.Company) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *c
	s.companies[c.ID] = &cp
}

func (s *Store) AddWarehouse(w *entity.Warehouse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *w
	s.warehouses[w.ID] = &cp
}

func (s *Store) AddStock(r *entity.StockRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *r
	s.stock[r.ID] = &cp
}

func (s *Store) AddRelationship(r *entity.Relationship) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *r
	s.relationships[relKey(r.RetailerID, r.WholesalerID)] = &cp
}

func (s *Store) AddSubscription(sub *entity.Subscription) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *sub
	s.subscriptions[sub.CompanyID] = &cp
}

// StockRecord copia del registro (nil si no existe).
func (s *Store) StockRecord(id string) *entity.StockRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.stock[id]
	if !ok {
		return nil
	}
	cp := *r
	return &cp
}

// OrderCount cantidad de pedidos persistidos.
func (s *Store) OrderCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.orders)
}

// Order copia del pedido con sus líneas (nil si no existe).
func (s *Store) Order(id string) *entity.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orders[id]
	if !ok {
		return nil
	}
	return cloneOrder(o)
}

// ─── Copias ─────────────────────────────────────────────────────────────────────

type snapshot struct {
	stock    map[string]*entity.StockRecord
	orders   map[string]*entity.Order
	orderSeq []string
	history  map[string][]*entity.OrderStatusHistory
}

// snapshot debe llamarse con s.mu tomado.
func (s *Store) snapshot() snapshot {
	snap := snapshot{
		stock:    make(map[string]*entity.StockRecord, len(s.stock)),
		orders:   make(map[string]*entity.Order, len(s.orders)),
		orderSeq: append([]string(nil), s.orderSeq...),
		history:  make(map[string][]*entity.OrderStatusHistory, len(s.history)),
	}
	for id, r := range s.stock {
		cp := *r
		snap.stock[id] = &cp
	}
	for id, o := range s.orders {
		snap.orders[id] = cloneOrder(o)
	}
	for id, rows := range s.history {
		snap.history[id] = append([]*entity.OrderStatusHistory(nil), rows...)
	}
	return snap
}

// restore debe llamarse con s.mu tomado.
func (s *Store) restore(snap snapshot) {
	s.stock = snap.stock
	s.orders = snap.orders
	s.orderSeq = snap.orderSeq
	s.history = snap.history
}

func cloneOrder(o *entity.Order) *entity.Order {
	cp := *o
	cp.Items = make([]*entity.OrderItem, len(o.Items))
	for i, it := range o.Items {
		item := *it
		cp.Items[i] = &item
	}
	return &cp
}
