// Package kafka cola durable de trabajos de notificación sobre segmentio/kafka-go.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/jhoicas/tyrex-b2b-api/internal/application/notification"
)

var _ notification.JobQueue = (*Producer)(nil)

// Producer publica trabajos de notificación. La clave es el id del pedido, así todos los
// intentos de un mismo pedido caen en la misma partición.
type Producer struct {
	writer *kafka.Writer
}

func NewProducer(brokers []string, topic string) *Producer {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           10 * time.Millisecond,
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Producer{writer: writer}
}

func (p *Producer) Publish(ctx context.Context, job notification.Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("kafka: serializar trabajo: %w", err)
	}
	if err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(job.OrderID),
		Value: data,
		Time:  time.Now(),
	}); err != nil {
		return fmt.Errorf("kafka: publicar trabajo %s: %w", job.OrderID, err)
	}
	return nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
