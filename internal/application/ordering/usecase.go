package ordering

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/tyrex-b2b-api/internal/domain/entity"
	"github.com/jhoicas/tyrex-b2b-api/internal/domain/repository"
)

// Config parámetros del motor de pedidos.
type Config struct {
	Currency                string
	DefaultPaymentTermsDays int
	Clock                   func() time.Time // nil = time.Now
}

// OrderUseCase motor de pedidos: vista previa del carrito, creación atómica con descuento de
// inventario, cancelación, transiciones de estado y consultas.
type OrderUseCase struct {
	txRunner    OrderTxRunner
	productRepo repository.ProductRepository
	stockRepo   repository.StockRecordRepository
	companyRepo repository.CompanyRepository
	relRepo     repository.RelationshipRepository
	orderRepo   repository.OrderRepository
	historyRepo repository.OrderHistoryRepository
	notifier    OrderNotifier
	cfg         Config
	log         zerolog.Logger
}

// NewOrderUseCase construye el caso de uso.
func NewOrderUseCase(
	txRunner OrderTxRunner,
	productRepo repository.ProductRepository,
	stockRepo repository.StockRecordRepository,
	companyRepo repository.CompanyRepository,
	relRepo repository.RelationshipRepository,
	orderRepo repository.OrderRepository,
	historyRepo repository.OrderHistoryRepository,
	notifier OrderNotifier,
	cfg Config,
	log zerolog.Logger,
) *OrderUseCase {
	if cfg.Currency == "" {
		cfg.Currency = entity.DefaultCurrency
	}
	if cfg.DefaultPaymentTermsDays <= 0 {
		cfg.DefaultPaymentTermsDays = entity.DefaultPaymentTermsDays
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	return &OrderUseCase{
		txRunner:    txRunner,
		productRepo: productRepo,
		stockRepo:   stockRepo,
		companyRepo: companyRepo,
		relRepo:     relRepo,
		orderRepo:   orderRepo,
		historyRepo: historyRepo,
		notifier:    notifier,
		cfg:         cfg,
		log:         log.With().Str("component", "ordering").Logger(),
	}
}

func (uc *OrderUseCase) now() time.Time {
	return uc.cfg.Clock().UTC()
}
