package mailer

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/techmaster-vietnam/blogkit/metrics"
	"github.com/techmaster-vietnam/goerrorkit"
)

// Queue là hàng đợi email có giới hạn, được xử lý bởi các worker goroutine.
// Enqueue không bao giờ block: hàng đợi đầy trả về ErrQueueFull.
type Queue struct {
	transport   Transport
	jobs        chan Message
	workers     int
	sendTimeout time.Duration

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewQueue creates a queue holding at most size pending messages
func NewQueue(transport Transport, size, workers int) *Queue {
	if size < 1 {
		size = 1
	}
	if workers < 1 {
		workers = 1
	}
	return &Queue{
		transport:   transport,
		jobs:        make(chan Message, size),
		workers:     workers,
		sendTimeout: 30 * time.Second,
	}
}

// Start chạy các worker. Khi ctx bị hủy, hàng đợi đóng lại và worker gửi nốt các email đã xếp hàng.
func (q *Queue) Start(ctx context.Context) {
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.work(i)
	}

	go func() {
		<-ctx.Done()
		q.close()
	}()
}

// Wait blocks until every worker has drained the queue and exited
func (q *Queue) Wait() {
	q.wg.Wait()
}

// Enqueue xếp hàng một email
func (q *Queue) Enqueue(msg Message) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.jobs <- msg:
		return nil
	default:
		metrics.MailDeliveriesTotal.WithLabelValues("dropped").Inc()
		return ErrQueueFull
	}
}

func (q *Queue) close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.closed {
		q.closed = true
		close(q.jobs)
	}
}

func (q *Queue) work(id int) {
	defer q.wg.Done()

	for msg := range q.jobs {
		// ctx của request đã kết thúc, mỗi lần gửi có timeout riêng
		ctx, cancel := context.WithTimeout(context.Background(), q.sendTimeout)
		err := q.transport.Send(ctx, msg)
		cancel()

		if err != nil {
			metrics.MailDeliveriesTotal.WithLabelValues("failure").Inc()
			goerrorkit.LogError(goerrorkit.WrapWithMessage(err, "Failed to deliver email").WithData(map[string]interface{}{
				"worker":  id,
				"to":      msg.To,
				"subject": msg.Subject,
			}), "mailer.Queue.work")
			continue
		}

		metrics.MailDeliveriesTotal.WithLabelValues("success").Inc()
		logrus.WithFields(logrus.Fields{"worker": id, "to": msg.To}).Debug("Email delivered")
	}
}
