package notification

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/tyrex-b2b-api/internal/domain"
)

// FailureRecorder deja constancia en el pedido de que se agotaron los reintentos.
// *ordering.OrderUseCase lo implementa.
type FailureRecorder interface {
	RecordNotificationFailure(ctx context.Context, orderID, reason string) error
}

// WorkerConfig política de reintentos del worker.
type WorkerConfig struct {
	MaxAttempts int           // intentos totales, incluido el primero
	BaseDelay   time.Duration // espera antes del reintento n: BaseDelay * 2^(n-1)
	Concurrency int           // trabajos en paralelo
	Clock       func() time.Time
}

func (c *WorkerConfig) defaults() {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 4
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = time.Minute
	}
	if c.Concurrency <= 0 {
		c.Concurrency = 4
	}
	if c.Clock == nil {
		c.Clock = time.Now
	}
}

// Backoff espera antes de reintentar un trabajo que falló en el intento attempt (0 = primero).
func Backoff(base time.Duration, attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	return base * time.Duration(1<<uint(attempt))
}

// Worker consume trabajos de notificación, los despacha y reprograma los fallidos en la cola.
type Worker struct {
	dispatcher *Dispatcher
	queue      JobQueue
	failures   FailureRecorder
	cfg        WorkerConfig
	log        zerolog.Logger

	sem chan struct{}
	wg  sync.WaitGroup
}

// NewWorker construye el worker.
func NewWorker(dispatcher *Dispatcher, queue JobQueue, failures FailureRecorder, cfg WorkerConfig, log zerolog.Logger) *Worker {
	cfg.defaults()
	return &Worker{
		dispatcher: dispatcher,
		queue:      queue,
		failures:   failures,
		cfg:        cfg,
		log:        log,
		sem:        make(chan struct{}, cfg.Concurrency),
	}
}

// Run consume src hasta que ctx se cancela y espera a que terminen los trabajos en curso.
func (w *Worker) Run(ctx context.Context, src JobSource) error {
	err := src.Consume(ctx, w.Handle)
	w.wg.Wait()
	return err
}

// Handle acepta un trabajo y lo procesa en segundo plano. Un trabajo con NotBefore futuro
// espera fuera de los cupos de Concurrency; el resto bloquea solo si no hay cupo libre.
// Un trabajo aceptado ya no depende de la cola: si el proceso se apaga antes de terminarlo,
// se vuelve a publicar.
func (w *Worker) Handle(ctx context.Context, job Job) error {
	if w.until(job) > 0 {
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			if !w.sleep(ctx, w.until(job)) || !w.acquire(ctx) {
				w.requeue(job, "apagado antes del intento")
				return
			}
			defer w.release()
			w.Process(ctx, job)
		}()
		return nil
	}

	if !w.acquire(ctx) {
		return ctx.Err() // no aceptado: la cola lo vuelve a entregar
	}
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer w.release()
		w.Process(ctx, job)
	}()
	return nil
}

// Wait espera a que terminen los trabajos en curso.
func (w *Worker) Wait() { w.wg.Wait() }

// Process ejecuta un intento de forma síncrona: espera NotBefore, despacha y, si falló,
// reprograma o registra el fallo definitivo. Si ctx se cancela antes de terminar, el mismo
// intento se vuelve a publicar con los canales ya entregados.
func (w *Worker) Process(ctx context.Context, job Job) {
	l := w.log.With().Str("order_id", job.OrderID).Int("attempt", job.Attempt).Logger()

	if !w.sleep(ctx, w.until(job)) {
		w.requeue(job, "apagado antes del intento")
		return
	}

	report, err := w.dispatcher.Dispatch(ctx, job)
	if err == nil {
		if report.Confirmed {
			l.Info().Msg("pedido confirmado por el mayorista")
		}
		return
	}

	delivered := job.DeliveredChannels
	if report != nil {
		delivered = report.Delivered
	}
	if ctx.Err() != nil {
		interrupted := job
		interrupted.DeliveredChannels = delivered
		w.requeue(interrupted, "intento interrumpido por apagado")
		return
	}
	if errors.Is(err, domain.ErrNotFound) {
		l.Error().Err(err).Msg("pedido inexistente; se descarta la notificación")
		return
	}

	next := job.Attempt + 1
	if next >= w.cfg.MaxAttempts {
		l.Error().Err(err).Msg("reintentos agotados; el pedido queda pendiente para revisión")
		w.recordFailure(job.OrderID, err.Error())
		return
	}

	delay := Backoff(w.cfg.BaseDelay, job.Attempt)
	retry := Job{
		OrderID:           job.OrderID,
		Attempt:           next,
		DeliveredChannels: delivered,
		NotBefore:         w.cfg.Clock().Add(delay).UTC(),
	}
	if w.requeue(retry, err.Error()) {
		l.Warn().Err(err).Dur("delay", delay).Msg("notificación reprogramada")
	}
}

// requeue publica job con un contexto propio (el del consumidor puede estar cancelado).
// Si la cola no lo acepta, el fallo queda registrado en el pedido.
func (w *Worker) requeue(job Job, reason string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	if err := w.queue.Publish(ctx, job); err != nil {
		w.log.Error().Err(err).Str("order_id", job.OrderID).Int("attempt", job.Attempt).
			Msg("no se pudo reprogramar la notificación")
		w.recordFailure(job.OrderID, fmt.Sprintf("no se pudo reprogramar (%s): %v", reason, err))
		return false
	}
	return true
}

func (w *Worker) recordFailure(orderID, reason string) {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	if err := w.failures.RecordNotificationFailure(ctx, orderID, reason); err != nil {
		w.log.Error().Err(err).Str("order_id", orderID).Msg("no se pudo registrar el fallo de notificación")
	}
}

func (w *Worker) until(job Job) time.Duration {
	return job.NotBefore.Sub(w.cfg.Clock())
}

// sleep espera d; false si ctx se canceló antes.
func (w *Worker) sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

func (w *Worker) acquire(ctx context.Context) bool {
	select {
	case w.sem <- struct{}{}:
		return true
	case <-ctx.Done():
		return false
	}
}

func (w *Worker) release() { <-w.sem }
