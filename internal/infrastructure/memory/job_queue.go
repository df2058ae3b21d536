package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/tyrex-b2b-api/internal/application/notification"
)

var (
	_ notification.JobQueue  = (*JobQueue)(nil)
	_ notification.JobSource = (*JobQueue)(nil)
)

// JobQueue cola de notificaciones en memoria. Guarda además todo lo publicado para inspección.
type JobQueue struct {
	mu        sync.Mutex
	ch        chan notification.Job
	published []notification.Job
	failWith  error
}

// NewJobQueue crea una cola con capacidad size.
func NewJobQueue(size int) *JobQueue {
	if size <= 0 {
		size = 64
	}
	return &JobQueue{ch: make(chan notification.Job, size)}
}

// FailPublish hace que Publish devuelva err (nil lo desactiva).
func (q *JobQueue) FailPublish(err error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.failWith = err
}

func (q *JobQueue) Publish(ctx context.Context, job notification.Job) error {
	q.mu.Lock()
	if q.failWith != nil {
		err := q.failWith
		q.mu.Unlock()
		return err
	}
	q.published = append(q.published, job)
	q.mu.Unlock()

	select {
	case q.ch <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Published copia de los trabajos publicados, en orden.
func (q *JobQueue) Published() []notification.Job {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]notification.Job(nil), q.published...)
}

// Next saca el siguiente trabajo sin bloquear.
func (q *JobQueue) Next() (notification.Job, bool) {
	select {
	case j := <-q.ch:
		return j, true
	default:
		return notification.Job{}, false
	}
}

func (q *JobQueue) Consume(ctx context.Context, handler notification.JobHandler) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case job := <-q.ch:
			if err := handler(ctx, job); err != nil {
				return err
			}
		}
	}
}
