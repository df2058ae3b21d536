package kafka

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/jhoicas/tyrex-b2b-api/internal/application/notification"
)

var _ notification.JobSource = (*Consumer)(nil)

// Consumer lee trabajos de notificación dentro de un grupo de consumidores.
type Consumer struct {
	reader *kafka.Reader
	log    zerolog.Logger
}

func NewConsumer(brokers []string, topic, groupID string, log zerolog.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6, // 10MB
	})
	return &Consumer{reader: reader, log: log}
}

// Consume entrega cada trabajo a handler hasta que ctx se cancela. Los mensajes ilegibles se
// descartan; el offset se confirma cuando el worker acepta el trabajo. Desde ahí el worker
// responde por él: lo reprograma si falla o si el proceso se apaga antes de terminarlo.
func (c *Consumer) Consume(ctx context.Context, handler notification.JobHandler) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.log.Error().Err(err).Msg("kafka: error leyendo mensaje")
			continue
		}

		job, err := decodeJob(msg.Value)
		if err != nil {
			c.log.Error().Err(err).Int64("offset", msg.Offset).Msg("kafka: trabajo ilegible, se descarta")
		} else if err := handler(ctx, job); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.log.Error().Err(err).Str("order_id", job.OrderID).Msg("kafka: error entregando trabajo")
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.log.Error().Err(err).Msg("kafka: error confirmando offset")
		}
	}
}

func decodeJob(data []byte) (notification.Job, error) {
	var job notification.Job
	if err := json.Unmarshal(data, &job); err != nil {
		return notification.Job{}, err
	}
	if job.OrderID == "" {
		return notification.Job{}, errMissingOrderID
	}
	return job, nil
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
