package ordering_test

import (
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/tyrex-b2b-api/internal/application/ordering"
	"github.com/jhoicas/tyrex-b2b-api/internal/domain/entity"
	"github.com/jhoicas/tyrex-b2b-api/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Datos de prueba
//
//	ret-1   minorista suscrito
//	wh-A    mayorista con relación activa (línea 100000 -> 5%, plazo 45 días)
//	wh-B    mayorista sin relación
//	p-tire  s-A-tire (wh-A, 10 u, 650)   s-B-tire (wh-B, 100 u, 600)
//	p-bat   s-A-bat  (wh-A, 5 u, 1200)
// ──────────────────────────────────────────────────────────────────────────────

const (
	retailerID = "ret-1"
	userID     = "user-1"
	whA        = "wh-A"
	whB        = "wh-B"
	pTire      = "p-tire"
	pBattery   = "p-bat"
	sATire     = "s-A-tire"
	sBTire     = "s-B-tire"
	sABattery  = "s-A-bat"
)

var fixedNow = time.Date(2026, 5, 10, 9, 30, 0, 0, time.UTC)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func price(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

// recordingNotifier registra los pedidos notificados y verifica que ya estén persistidos.
type recordingNotifier struct {
	mu        sync.Mutex
	store     *memory.Store
	ids       []string
	committed []bool
}

func (n *recordingNotifier) NotifyAsync(orderID string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.ids = append(n.ids, orderID)
	n.committed = append(n.committed, n.store.OrderCount() > 0)
}

func (n *recordingNotifier) calls() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.ids...)
}

type fixture struct {
	store    *memory.Store
	uc       *ordering.OrderUseCase
	notifier *recordingNotifier
	now      time.Time
	buyer    ordering.BuyerContext
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := memory.NewStore()

	s.AddCompany(&entity.Company{ID: retailerID, Name: "Lastikçi Ltd", Type: entity.CompanyTypeRetailer, IsActive: true})
	s.AddCompany(&entity.Company{ID: whA, Name: "Anadolu Toptan", Type: entity.CompanyTypeWholesaler, Email: "a@example.com", IsActive: true})
	s.AddCompany(&entity.Company{ID: whB, Name: "Marmara Toptan", Type: entity.CompanyTypeBoth, IsActive: true})
	s.AddWarehouse(&entity.Warehouse{ID: "whs-A1", CompanyID: whA, Name: "Depo A1", IsActive: true})
	s.AddWarehouse(&entity.Warehouse{ID: "whs-B1", CompanyID: whB, Name: "Depo B1", IsActive: true})

	s.AddProduct(&entity.Product{ID: pTire, SKU: "TR-205-55-16", Name: "Lastik 205/55 R16", Brand: "Petlas", IsActive: true})
	s.AddProduct(&entity.Product{ID: pBattery, SKU: "BT-72AH", Name: "Akü 72Ah", Brand: "Mutlu", IsActive: true})
	s.AddProduct(&entity.Product{ID: "p-old", SKU: "OLD", Name: "Descontinuado", IsActive: false})

	s.AddStock(&entity.StockRecord{ID: sATire, ProductID: pTire, WarehouseID: "whs-A1", Quantity: 10, IsActive: true, IsSellable: true, SalePrice: price("650")})
	s.AddStock(&entity.StockRecord{ID: sBTire, ProductID: pTire, WarehouseID: "whs-B1", Quantity: 100, IsActive: true, IsSellable: true, SalePrice: price("600")})
	s.AddStock(&entity.StockRecord{ID: sABattery, ProductID: pBattery, WarehouseID: "whs-A1", Quantity: 5, IsActive: true, IsSellable: true, SalePrice: price("1200")})

	s.AddRelationship(&entity.Relationship{ID: "rel-1", RetailerID: retailerID, WholesalerID: whA, CreditLimit: price("100000"), PaymentTermsDays: 45, IsActive: true})

	f := &fixture{store: s, now: fixedNow}
	f.notifier = &recordingNotifier{store: s}
	f.uc = ordering.NewOrderUseCase(
		memory.NewTxRunner(s),
		memory.NewProductRepository(s),
		memory.NewStockRepository(s),
		memory.NewCompanyRepository(s),
		memory.NewRelationshipRepository(s),
		memory.NewOrderRepository(s),
		memory.NewOrderHistoryRepository(s),
		f.notifier,
		ordering.Config{Clock: func() time.Time { return f.now }},
		zerolog.Nop(),
	)
	f.buyer = ordering.NewBuyerContext(retailerID, userID, price("0.025"), true)
	return f
}

func (f *fixture) retailerActor() ordering.Actor {
	return ordering.Actor{UserID: userID, CompanyID: retailerID}
}

func (f *fixture) wholesalerActor() ordering.Actor {
	return ordering.Actor{UserID: "wh-user", CompanyID: whA}
}
