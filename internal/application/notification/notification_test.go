package notification_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/tyrex-b2b-api/internal/application/dto"
	"github.com/jhoicas/tyrex-b2b-api/internal/application/notification"
	"github.com/jhoicas/tyrex-b2b-api/internal/application/ordering"
	"github.com/jhoicas/tyrex-b2b-api/internal/domain"
	"github.com/jhoicas/tyrex-b2b-api/internal/domain/entity"
	"github.com/jhoicas/tyrex-b2b-api/internal/domain/repository"
	"github.com/jhoicas/tyrex-b2b-api/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Dobles de prueba
// ──────────────────────────────────────────────────────────────────────────────

// stubChannel devuelve los resultados en orden; el último se repite.
type stubChannel struct {
	name    string
	mu      sync.Mutex
	results []notification.Result
	calls   int
	last    notification.Message
}

func newStub(name string, results ...notification.Result) *stubChannel {
	if len(results) == 0 {
		results = []notification.Result{{Success: true}}
	}
	return &stubChannel{name: name, results: results}
}

func (c *stubChannel) Name() string { return c.name }

func (c *stubChannel) Send(_ context.Context, msg notification.Message) notification.Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.last = msg
	i := c.calls
	if i >= len(c.results) {
		i = len(c.results) - 1
	}
	c.calls++
	return c.results[i]
}

func (c *stubChannel) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

// blockingChannel no responde hasta que se cancela el contexto.
type blockingChannel struct {
	name    string
	started chan struct{}
	once    sync.Once
}

func newBlocking(name string) *blockingChannel {
	return &blockingChannel{name: name, started: make(chan struct{})}
}

func (c *blockingChannel) Name() string { return c.name }

func (c *blockingChannel) Send(ctx context.Context, _ notification.Message) notification.Result {
	c.once.Do(func() { close(c.started) })
	<-ctx.Done()
	return notification.Result{Reason: ctx.Err().Error()}
}

// missingCompany simula una empresa borrada entre la creación y el despacho.
type missingCompany struct {
	repository.CompanyRepository
	id string
}

func (m missingCompany) GetByID(ctx context.Context, id string) (*entity.Company, error) {
	if id == m.id {
		return nil, domain.ErrNotFound
	}
	return m.CompanyRepository.GetByID(ctx, id)
}

type noopNotifier struct{}

func (noopNotifier) NotifyAsync(string) {}

var fixedNow = time.Date(2026, 5, 10, 9, 30, 0, 0, time.UTC)

type fixture struct {
	store *memory.Store
	queue *memory.JobQueue
	uc    *ordering.OrderUseCase
	email *stubChannel
	api   *stubChannel
	sms   *stubChannel
	now   time.Time
}

func newFixture(t *testing.T, notifier ordering.OrderNotifier) *fixture {
	t.Helper()
	s := memory.NewStore()
	s.AddCompany(&entity.Company{ID: "ret", Name: "Lastikçi", Type: entity.CompanyTypeRetailer, IsActive: true})
	s.AddCompany(&entity.Company{ID: "wh", Name: "Anadolu Toptan", Type: entity.CompanyTypeWholesaler, Email: "siparis@anadolu.example", Phone: "+90 555", APIEndpoint: "https://api.anadolu.example/orders", IsActive: true})
	s.AddWarehouse(&entity.Warehouse{ID: "whs", CompanyID: "wh", Name: "Depo İstanbul", IsActive: true})
	s.AddProduct(&entity.Product{ID: "p", SKU: "TR-1", Name: "Lastik", IsActive: true})
	salePrice := decimal.RequireFromString("100")
	s.AddStock(&entity.StockRecord{ID: "s", ProductID: "p", WarehouseID: "whs", Quantity: 50, IsActive: true, IsSellable: true, SalePrice: &salePrice})

	f := &fixture{store: s, queue: memory.NewJobQueue(16), now: fixedNow}
	if notifier == nil {
		notifier = noopNotifier{}
	}
	f.uc = ordering.NewOrderUseCase(
		memory.NewTxRunner(s),
		memory.NewProductRepository(s),
		memory.NewStockRepository(s),
		memory.NewCompanyRepository(s),
		memory.NewRelationshipRepository(s),
		memory.NewOrderRepository(s),
		memory.NewOrderHistoryRepository(s),
		notifier,
		ordering.Config{Clock: func() time.Time { return f.now }},
		zerolog.Nop(),
	)
	f.email = newStub(notification.ChannelEmail)
	f.api = newStub(notification.ChannelAPI)
	f.sms = newStub(notification.ChannelSMS)
	return f
}

func (f *fixture) dispatcher() *notification.Dispatcher {
	return notification.NewDispatcher(
		memory.NewOrderRepository(f.store),
		memory.NewCompanyRepository(f.store),
		memory.NewWarehouseRepository(f.store),
		f.uc,
		[]notification.Channel{f.email, f.api, f.sms},
		zerolog.Nop(),
	)
}

func (f *fixture) worker(maxAttempts int) *notification.Worker {
	return notification.NewWorker(f.dispatcher(), f.queue, f.uc, notification.WorkerConfig{
		MaxAttempts: maxAttempts,
		BaseDelay:   time.Millisecond,
		Concurrency: 2,
	}, zerolog.Nop())
}

func (f *fixture) dispatcherWith(companies repository.CompanyRepository, channels ...notification.Channel) *notification.Dispatcher {
	return notification.NewDispatcher(
		memory.NewOrderRepository(f.store),
		companies,
		memory.NewWarehouseRepository(f.store),
		f.uc,
		channels,
		zerolog.Nop(),
	)
}

func (f *fixture) workerWith(d *notification.Dispatcher, cfg notification.WorkerConfig) *notification.Worker {
	return notification.NewWorker(d, f.queue, f.uc, cfg, zerolog.Nop())
}

func (f *fixture) createOrder(t *testing.T) string {
	t.Helper()
	buyer := ordering.NewBuyerContext("ret", "u1", nil, true)
	out, err := f.uc.CreateOrder(context.Background(), buyer, dto.CreateOrderRequest{
		WholesalerID:    "wh",
		Items:           []dto.CartLineRequest{{ProductID: "p", Quantity: 2}},
		DeliveryAddress: "Ankara",
	})
	require.NoError(t, err)
	return out.ID
}

func (f *fixture) history(t *testing.T, orderID string) []dto.OrderStatusHistoryResponse {
	t.Helper()
	h, err := f.uc.GetStatusHistory(context.Background(), ordering.SystemActor(), orderID)
	require.NoError(t, err)
	return h.History
}

// ──────────────────────────────────────────────────────────────────────────────
// Dispatcher
// ──────────────────────────────────────────────────────────────────────────────

func TestDispatch_APIExitosaConfirmaPedido(t *testing.T) {
	f := newFixture(t, nil)
	id := f.createOrder(t)

	report, err := f.dispatcher().Dispatch(context.Background(), notification.Job{OrderID: id})
	require.NoError(t, err)
	assert.True(t, report.Confirmed)
	assert.ElementsMatch(t, []string{"email", "api", "sms"}, report.Delivered)

	assert.Equal(t, entity.OrderStatusConfirmed, f.store.Order(id).Status)
	hist := f.history(t, id)
	require.Len(t, hist, 2)
	assert.Equal(t, entity.OrderStatusPending, hist[0].OldStatus)
	assert.Equal(t, entity.OrderStatusConfirmed, hist[0].NewStatus)
	assert.Equal(t, "Email: true, API: true, SMS: true", hist[0].Notes)
	assert.Empty(t, hist[0].ChangedBy, "lo cambia el sistema")

	msg := f.api.last
	assert.Equal(t, "Anadolu Toptan", msg.Wholesaler.Name)
	assert.Equal(t, "Lastikçi", msg.Retailer.Name)
	require.Len(t, msg.Order.Items, 1)
	assert.Equal(t, "Depo İstanbul", msg.WarehouseName("whs"))
}

func TestDispatch_FalloDeAPINoConfirma(t *testing.T) {
	f := newFixture(t, nil)
	f.api = newStub(notification.ChannelAPI, notification.Result{Reason: "HTTP 503"})
	f.sms = newStub(notification.ChannelSMS, notification.Result{Reason: "sin teléfono"})
	id := f.createOrder(t)

	report, err := f.dispatcher().Dispatch(context.Background(), notification.Job{OrderID: id})
	require.ErrorIs(t, err, domain.ErrNotificationDispatchFailed)
	assert.Contains(t, err.Error(), "HTTP 503")
	assert.Equal(t, []string{"email"}, report.Delivered)
	assert.Equal(t, 1, f.email.Calls(), "un canal que falla no bloquea a los demás")
	assert.Equal(t, 1, f.sms.Calls())
	assert.Equal(t, entity.OrderStatusPending, f.store.Order(id).Status)
	assert.Len(t, f.history(t, id), 1)
}

func TestDispatch_APISinConfigurarNoReintenta(t *testing.T) {
	f := newFixture(t, nil)
	f.api = newStub(notification.ChannelAPI, notification.Result{Reason: "el mayorista no tiene endpoint", Permanent: true})
	id := f.createOrder(t)

	report, err := f.dispatcher().Dispatch(context.Background(), notification.Job{OrderID: id})
	require.NoError(t, err)
	assert.False(t, report.Confirmed)
	assert.Equal(t, entity.OrderStatusPending, f.store.Order(id).Status)
}

func TestDispatch_OmiteCanalesYaEntregados(t *testing.T) {
	f := newFixture(t, nil)
	id := f.createOrder(t)

	report, err := f.dispatcher().Dispatch(context.Background(), notification.Job{
		OrderID: id, Attempt: 1, DeliveredChannels: []string{"email", "sms"},
	})
	require.NoError(t, err)
	assert.True(t, report.Confirmed)
	assert.Zero(t, f.email.Calls())
	assert.Zero(t, f.sms.Calls())
	assert.Equal(t, 1, f.api.Calls())
}

func TestDispatch_PedidoNoPendienteSeOmite(t *testing.T) {
	f := newFixture(t, nil)
	id := f.createOrder(t)
	_, err := f.uc.CancelOrder(context.Background(), ordering.SystemActor(), id, "")
	require.NoError(t, err)

	report, err := f.dispatcher().Dispatch(context.Background(), notification.Job{OrderID: id})
	require.NoError(t, err)
	assert.True(t, report.Skipped)
	assert.Zero(t, f.api.Calls())
}

func TestDispatch_EmpresaInexistenteEsReintentable(t *testing.T) {
	f := newFixture(t, nil)
	id := f.createOrder(t)
	companies := missingCompany{CompanyRepository: memory.NewCompanyRepository(f.store), id: "wh"}

	_, err := f.dispatcherWith(companies, f.email, f.api, f.sms).Dispatch(context.Background(), notification.Job{OrderID: id})
	require.ErrorIs(t, err, domain.ErrNotificationDispatchFailed)
	assert.NotErrorIs(t, err, domain.ErrNotFound, "solo un pedido inexistente se descarta")
	assert.Zero(t, f.api.Calls())
}

func TestDispatch_PedidoInexistente(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.dispatcher().Dispatch(context.Background(), notification.Job{OrderID: "missing"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Worker: reintentos
// ──────────────────────────────────────────────────────────────────────────────

func TestBackoff(t *testing.T) {
	assert.Equal(t, time.Minute, notification.Backoff(time.Minute, 0))
	assert.Equal(t, 2*time.Minute, notification.Backoff(time.Minute, 1))
	assert.Equal(t, 4*time.Minute, notification.Backoff(time.Minute, 2))
	assert.Equal(t, time.Minute, notification.Backoff(time.Minute, -1))
}

func TestWorker_ReintentaYConfirma(t *testing.T) {
	f := newFixture(t, nil)
	f.api = newStub(notification.ChannelAPI, notification.Result{Reason: "timeout"}, notification.Result{Success: true})
	id := f.createOrder(t)
	w := f.worker(4)
	ctx := context.Background()

	w.Process(ctx, notification.Job{OrderID: id})
	retry, ok := f.queue.Next()
	require.True(t, ok, "el intento fallido se reprograma")
	assert.Equal(t, 1, retry.Attempt)
	assert.ElementsMatch(t, []string{"email", "sms"}, retry.DeliveredChannels)
	assert.False(t, retry.NotBefore.IsZero())
	assert.Equal(t, entity.OrderStatusPending, f.store.Order(id).Status)

	w.Process(ctx, retry)
	_, ok = f.queue.Next()
	assert.False(t, ok)
	assert.Equal(t, entity.OrderStatusConfirmed, f.store.Order(id).Status)
	assert.Equal(t, 1, f.email.Calls(), "el email no se reenvía")
	assert.Equal(t, 2, f.api.Calls())
}

func TestWorker_ReintentosAgotados(t *testing.T) {
	f := newFixture(t, nil)
	f.api = newStub(notification.ChannelAPI, notification.Result{Reason: "connection refused"})
	id := f.createOrder(t)
	w := f.worker(2)
	ctx := context.Background()

	w.Process(ctx, notification.Job{OrderID: id})
	retry, ok := f.queue.Next()
	require.True(t, ok)
	w.Process(ctx, retry)
	_, ok = f.queue.Next()
	assert.False(t, ok, "no hay más reintentos")

	order := f.store.Order(id)
	assert.Equal(t, entity.OrderStatusPending, order.Status)
	assert.Contains(t, order.InternalNotes, "connection refused")

	hist := f.history(t, id)
	require.Len(t, hist, 2)
	assert.Equal(t, entity.OrderStatusPending, hist[0].OldStatus)
	assert.Equal(t, entity.OrderStatusPending, hist[0].NewStatus)
	assert.Contains(t, hist[0].Notes, "connection refused")
}

func TestWorker_PedidoInexistenteNoSeReintenta(t *testing.T) {
	f := newFixture(t, nil)
	f.worker(4).Process(context.Background(), notification.Job{OrderID: "missing"})
	assert.Empty(t, f.queue.Published())
}

func TestWorker_RespetaNotBefore(t *testing.T) {
	f := newFixture(t, nil)
	id := f.createOrder(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f.worker(4).Process(ctx, notification.Job{OrderID: id, NotBefore: time.Now().Add(time.Hour)})
	assert.Zero(t, f.api.Calls(), "no se despacha antes de tiempo")
}

func TestWorker_EmpresaInexistenteQuedaRegistrada(t *testing.T) {
	f := newFixture(t, nil)
	id := f.createOrder(t)
	companies := missingCompany{CompanyRepository: memory.NewCompanyRepository(f.store), id: "ret"}
	w := f.workerWith(f.dispatcherWith(companies, f.email, f.api, f.sms), notification.WorkerConfig{MaxAttempts: 1})

	w.Process(context.Background(), notification.Job{OrderID: id})

	order := f.store.Order(id)
	assert.Equal(t, entity.OrderStatusPending, order.Status)
	assert.Contains(t, order.InternalNotes, "minorista ret")
	assert.Len(t, f.history(t, id), 2)
}

// ──────────────────────────────────────────────────────────────────────────────
// Worker: apagado
// ──────────────────────────────────────────────────────────────────────────────

func TestWorker_ApagadoDuranteLaEsperaRepublica(t *testing.T) {
	f := newFixture(t, nil)
	id := f.createOrder(t)
	ctx, cancel := context.WithCancel(context.Background())
	job := notification.Job{
		OrderID:           id,
		Attempt:           2,
		DeliveredChannels: []string{"email"},
		NotBefore:         time.Now().Add(time.Minute).UTC(),
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		f.worker(4).Process(ctx, job)
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()
	<-done

	republished, ok := f.queue.Next()
	require.True(t, ok, "el trabajo no se pierde")
	assert.Equal(t, job, republished)
	assert.Zero(t, f.api.Calls())
	assert.Empty(t, f.store.Order(id).InternalNotes)
}

func TestWorker_ApagadoDuranteElDespachoRepublicaMismoIntento(t *testing.T) {
	f := newFixture(t, nil)
	id := f.createOrder(t)
	api := newBlocking(notification.ChannelAPI)
	w := f.workerWith(f.dispatcherWith(memory.NewCompanyRepository(f.store), f.email, api, f.sms), notification.WorkerConfig{MaxAttempts: 4})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Process(ctx, notification.Job{OrderID: id, Attempt: 1})
	}()
	<-api.started
	cancel()
	<-done

	republished, ok := f.queue.Next()
	require.True(t, ok)
	assert.Equal(t, 1, republished.Attempt, "un intento interrumpido no cuenta")
	assert.ElementsMatch(t, []string{"email", "sms"}, republished.DeliveredChannels)
	assert.Equal(t, entity.OrderStatusPending, f.store.Order(id).Status)
	assert.Empty(t, f.store.Order(id).InternalNotes)
}

func TestWorker_ColaCaidaAlApagarRegistraFallo(t *testing.T) {
	f := newFixture(t, nil)
	id := f.createOrder(t)
	f.queue.FailPublish(errors.New("broker caído"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f.worker(4).Process(ctx, notification.Job{OrderID: id, NotBefore: time.Now().Add(time.Hour)})

	order := f.store.Order(id)
	assert.Equal(t, entity.OrderStatusPending, order.Status)
	assert.Contains(t, order.InternalNotes, "broker caído")
	hist := f.history(t, id)
	require.Len(t, hist, 2)
	assert.Equal(t, "notificación al mayorista fallida", hist[0].ChangeReason)
}

func TestWorker_ReintentoDiferidoNoOcupaCupo(t *testing.T) {
	f := newFixture(t, nil)
	delayed := f.createOrder(t)
	fresh := f.createOrder(t)
	w := f.workerWith(f.dispatcher(), notification.WorkerConfig{MaxAttempts: 4, BaseDelay: time.Millisecond, Concurrency: 1})
	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, w.Handle(ctx, notification.Job{OrderID: delayed, Attempt: 1, NotBefore: time.Now().Add(time.Hour)}))
	require.NoError(t, w.Handle(ctx, notification.Job{OrderID: fresh}))
	assert.Eventually(t, func() bool {
		return f.store.Order(fresh).Status == entity.OrderStatusConfirmed
	}, 2*time.Second, 10*time.Millisecond, "el primer intento no espera detrás del reintento")

	cancel()
	w.Wait()
	republished, ok := f.queue.Next()
	require.True(t, ok)
	assert.Equal(t, delayed, republished.OrderID)
	assert.Equal(t, 1, republished.Attempt)
	assert.Equal(t, entity.OrderStatusPending, f.store.Order(delayed).Status)
}

// ──────────────────────────────────────────────────────────────────────────────
// Extremo a extremo: creación → cola → worker
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateOrder_NotificacionNoBloquea(t *testing.T) {
	queue := memory.NewJobQueue(16)
	queue.FailPublish(errors.New("broker caído"))
	f := newFixture(t, notification.NewScheduler(queue, nil, zerolog.Nop()))

	id := f.createOrder(t)
	assert.Equal(t, entity.OrderStatusPending, f.store.Order(id).Status)
}

func TestCreateOrder_FalloAlEncolarQuedaRegistrado(t *testing.T) {
	queue := memory.NewJobQueue(16)
	queue.FailPublish(errors.New("broker caído"))
	scheduler := notification.NewScheduler(queue, nil, zerolog.Nop())
	f := newFixture(t, scheduler)
	scheduler.RecordFailuresWith(f.uc)

	id := f.createOrder(t)
	assert.Eventually(t, func() bool {
		return strings.Contains(f.store.Order(id).InternalNotes, "broker caído")
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, entity.OrderStatusPending, f.store.Order(id).Status)
}

func TestWorker_Run(t *testing.T) {
	queue := memory.NewJobQueue(16)
	f := newFixture(t, notification.NewScheduler(queue, nil, zerolog.Nop()))
	f.queue = queue
	w := f.worker(4)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, queue) }()

	id := f.createOrder(t)
	assert.Eventually(t, func() bool {
		o := f.store.Order(id)
		return o != nil && o.Status == entity.OrderStatusConfirmed
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

// ──────────────────────────────────────────────────────────────────────────────
// Barrido de pedidos pendientes
// ──────────────────────────────────────────────────────────────────────────────

func TestStaleSweeper(t *testing.T) {
	f := newFixture(t, nil)
	id := f.createOrder(t)
	sweeper := notification.NewStaleSweeper(f.uc, time.Hour, 7*24*time.Hour, zerolog.Nop())
	ctx := context.Background()

	assert.Zero(t, sweeper.SweepOnce(ctx))

	f.now = fixedNow.Add(8 * 24 * time.Hour)
	assert.Equal(t, 1, sweeper.SweepOnce(ctx))
	assert.Zero(t, sweeper.SweepOnce(ctx))

	order := f.store.Order(id)
	assert.Equal(t, entity.OrderStatusPending, order.Status)
	assert.Equal(t, 1, strings.Count(order.InternalNotes, ordering.StaleOrderNote))
}
