package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

const publishTimeout = 10 * time.Second

// Scheduler encola el primer intento de notificación de un pedido recién creado.
// Implementa ordering.OrderNotifier.
type Scheduler struct {
	queue    JobQueue
	failures FailureRecorder
	clock    func() time.Time
	log      zerolog.Logger
}

// NewScheduler construye el planificador. clock nil = time.Now.
func NewScheduler(queue JobQueue, clock func() time.Time, log zerolog.Logger) *Scheduler {
	if clock == nil {
		clock = time.Now
	}
	return &Scheduler{queue: queue, clock: clock, log: log}
}

// RecordFailuresWith registra en el pedido los trabajos que no se pudieron encolar.
// Debe llamarse antes de crear pedidos.
func (s *Scheduler) RecordFailuresWith(f FailureRecorder) {
	s.failures = f
}

// NotifyAsync publica el trabajo en una goroutine independiente con su propio contexto;
// nunca bloquea ni falla la petición que creó el pedido.
func (s *Scheduler) NotifyAsync(orderID string) {
	go s.publish(orderID)
}

func (s *Scheduler) publish(orderID string) {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	job := Job{OrderID: orderID, NotBefore: s.clock().UTC()}
	if err := s.queue.Publish(ctx, job); err != nil {
		s.log.Error().Err(err).Str("order_id", orderID).Msg("no se pudo encolar la notificación del pedido")
		s.recordFailure(orderID, err)
		return
	}
	s.log.Debug().Str("order_id", orderID).Msg("notificación encolada")
}

func (s *Scheduler) recordFailure(orderID string, cause error) {
	if s.failures == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	reason := fmt.Sprintf("no se pudo encolar la notificación: %v", cause)
	if err := s.failures.RecordNotificationFailure(ctx, orderID, reason); err != nil {
		s.log.Error().Err(err).Str("order_id", orderID).Msg("no se pudo registrar el fallo de notificación")
	}
}
