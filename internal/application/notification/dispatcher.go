package notification

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/jhoicas/tyrex-b2b-api/internal/application/dto"
	"github.com/jhoicas/tyrex-b2b-api/internal/application/ordering"
	"github.com/jhoicas/tyrex-b2b-api/internal/domain"
	"github.com/jhoicas/tyrex-b2b-api/internal/domain/entity"
	"github.com/jhoicas/tyrex-b2b-api/internal/domain/repository"
)

// OrderConfirmer mueve el pedido a confirmed cuando el mayorista lo recibió por API.
// *ordering.OrderUseCase lo implementa.
type OrderConfirmer interface {
	TransitionStatus(ctx context.Context, actor ordering.Actor, in ordering.TransitionInput) (*dto.OrderResponse, error)
}

// Report resultado de un intento de despacho.
type Report struct {
	OrderID   string
	Results   []Result
	Delivered []string // canales entregados en este intento o en anteriores
	Confirmed bool
	Skipped   bool // el pedido ya no está pendiente
}

// Dispatcher ejecuta un intento de notificación:
//
//	recargar pedido → email | api | sms en paralelo → confirmar si la API respondió
type Dispatcher struct {
	orderRepo     repository.OrderRepository
	companyRepo   repository.CompanyRepository
	warehouseRepo repository.WarehouseRepository
	confirmer     OrderConfirmer
	channels      []Channel
	log           zerolog.Logger
}

// NewDispatcher construye el despachador con los canales habilitados.
func NewDispatcher(
	orderRepo repository.OrderRepository,
	companyRepo repository.CompanyRepository,
	warehouseRepo repository.WarehouseRepository,
	confirmer OrderConfirmer,
	channels []Channel,
	log zerolog.Logger,
) *Dispatcher {
	return &Dispatcher{
		orderRepo:     orderRepo,
		companyRepo:   companyRepo,
		warehouseRepo: warehouseRepo,
		confirmer:     confirmer,
		channels:      channels,
		log:           log,
	}
}

// Dispatch notifica al mayorista por todos los canales. Los canales ya entregados en intentos
// anteriores no se repiten. Devuelve un error que envuelve domain.ErrNotFound solo si el pedido
// no existe (no se reintenta); cualquier otro fallo de datos o de la API envuelve
// domain.ErrNotificationDispatchFailed.
func (d *Dispatcher) Dispatch(ctx context.Context, job Job) (*Report, error) {
	order, err := d.orderRepo.GetByID(ctx, job.OrderID)
	if err != nil {
		return nil, fmt.Errorf("recargar pedido %s: %w", job.OrderID, err)
	}
	report := &Report{OrderID: order.ID, Delivered: append([]string(nil), job.DeliveredChannels...)}
	if order.Status != entity.OrderStatusPending {
		report.Skipped = true
		return report, nil
	}

	msg, err := d.message(ctx, order)
	if err != nil {
		return report, err
	}

	report.Results = d.sendAll(ctx, job, msg)
	var api *Result
	for i := range report.Results {
		r := &report.Results[i]
		if r.Success && !job.Delivered(r.Channel) {
			report.Delivered = append(report.Delivered, r.Channel)
		}
		if r.Channel == ChannelAPI {
			api = r
		}
	}

	d.log.Info().
		Str("order_id", order.ID).
		Str("order_number", order.OrderNumber).
		Int("attempt", job.Attempt).
		Str("channels", summarize(report.Results)).
		Msg("notificación al mayorista")

	if api == nil || (!api.Success && api.Permanent) {
		return report, nil
	}
	if !api.Success {
		return report, fmt.Errorf("%w: api: %s", domain.ErrNotificationDispatchFailed, api.Reason)
	}

	_, err = d.confirmer.TransitionStatus(ctx, ordering.SystemActor(), ordering.TransitionInput{
		OrderID: order.ID,
		Status:  entity.OrderStatusConfirmed,
		Reason:  "pedido recibido por el mayorista",
		Notes:   summarize(report.Results),
	})
	switch {
	case err == nil:
		report.Confirmed = true
	case errors.Is(err, domain.ErrInvalidStatusTransition):
		// cambió de estado mientras se notificaba (p. ej. cancelado)
		report.Skipped = true
	default:
		return report, fmt.Errorf("confirmar pedido %s: %w", order.ID, err)
	}
	return report, nil
}

func (d *Dispatcher) message(ctx context.Context, order *entity.Order) (Message, error) {
	retailer, err := d.companyRepo.GetByID(ctx, order.RetailerID)
	if err != nil {
		return Message{}, fmt.Errorf("%w: minorista %s: %v", domain.ErrNotificationDispatchFailed, order.RetailerID, err)
	}
	wholesaler, err := d.companyRepo.GetByID(ctx, order.WholesalerID)
	if err != nil {
		return Message{}, fmt.Errorf("%w: mayorista %s: %v", domain.ErrNotificationDispatchFailed, order.WholesalerID, err)
	}
	names := make(map[string]string)
	for _, it := range order.Items {
		if _, ok := names[it.WarehouseID]; ok {
			continue
		}
		w, err := d.warehouseRepo.GetByID(ctx, it.WarehouseID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return Message{}, fmt.Errorf("%w: bodega %s: %v", domain.ErrNotificationDispatchFailed, it.WarehouseID, err)
		}
		names[w.ID] = w.Name
	}
	return Message{Order: order, Retailer: retailer, Wholesaler: wholesaler, WarehouseNames: names}, nil
}

// sendAll ejecuta los canales en paralelo; el fallo de uno no bloquea a los demás.
func (d *Dispatcher) sendAll(ctx context.Context, job Job, msg Message) []Result {
	results := make([]Result, len(d.channels))
	var wg sync.WaitGroup
	for i, ch := range d.channels {
		if job.Delivered(ch.Name()) {
			results[i] = Result{Channel: ch.Name(), Success: true, Reason: "entregado en un intento anterior"}
			continue
		}
		wg.Add(1)
		go func(i int, ch Channel) {
			defer wg.Done()
			r := ch.Send(ctx, msg)
			r.Channel = ch.Name()
			results[i] = r
		}(i, ch)
	}
	wg.Wait()
	return results
}

// summarize "Email: true, API: false, SMS: true".
func summarize(results []Result) string {
	parts := make([]string, 0, len(results))
	for _, r := range results {
		parts = append(parts, fmt.Sprintf("%s: %t", label(r.Channel), r.Success))
	}
	return strings.Join(parts, ", ")
}

func label(channel string) string {
	switch channel {
	case ChannelEmail:
		return "Email"
	case ChannelAPI:
		return "API"
	case ChannelSMS:
		return "SMS"
	default:
		return channel
	}
}
