package notification

import (
	"context"
	"time"
)

// Job trabajo de notificación encolado tras crear un pedido. Solo referencia el pedido por id;
// el despachador lo recarga en cada intento.
type Job struct {
	OrderID           string    `json:"order_id"`
	Attempt           int       `json:"attempt"` // 0 = primer intento
	DeliveredChannels []string  `json:"delivered_channels,omitempty"`
	NotBefore         time.Time `json:"not_before"`
}

// Delivered informa si el canal ya se entregó en un intento anterior.
func (j Job) Delivered(channel string) bool {
	for _, c := range j.DeliveredChannels {
		if c == channel {
			return true
		}
	}
	return false
}

// JobQueue cola durable de trabajos (Kafka en producción, memoria en tests).
type JobQueue interface {
	Publish(ctx context.Context, job Job) error
}

// JobHandler procesa un trabajo recibido de la cola.
type JobHandler func(ctx context.Context, job Job) error

// JobSource entrega los trabajos de la cola hasta que ctx se cancela.
type JobSource interface {
	Consume(ctx context.Context, handler JobHandler) error
}
