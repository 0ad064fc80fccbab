package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/raymondpolo/brc-vendor-form/internal/logger"
	"github.com/raymondpolo/brc-vendor-form/internal/metrics"
)

const (
	JobEmail = "email"
	JobPush  = "push"
)

// Job is one delivery unit pushed onto the Redis list. The HTTP
// request only enqueues; workers do the slow sending.
type Job struct {
	Kind      string    `json:"kind"`
	UserID    uint      `json:"user_id"`
	Recipient string    `json:"recipient,omitempty"`
	Subject   string    `json:"subject,omitempty"`
	Body      string    `json:"body"`
	Link      string    `json:"link,omitempty"`
	QueuedAt  time.Time `json:"queued_at"`
}

type Queue struct {
	rdb *redis.Client
	key string
}

func NewQueue(rdb *redis.Client, key string) *Queue {
	return &Queue{rdb: rdb, key: key}
}

func (q *Queue) Enqueue(ctx context.Context, job Job) error {
	job.QueuedAt = time.Now()
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	if err := q.rdb.RPush(ctx, q.key, string(data)).Err(); err != nil {
		return fmt.Errorf("enqueue job: %w", err)
	}
	metrics.RecordNotificationQueued(job.Kind)
	return nil
}

func (q *Queue) Len(ctx context.Context) int64 {
	n, _ := q.rdb.LLen(ctx, q.key).Result()
	return n
}

// Worker drains the queue and hands jobs to the delivery channels. A
// failed job is logged and dropped; the in-app notification row was
// already written, so nothing is silently lost.
type Worker struct {
	queue  *Queue
	mailer Mailer
	pusher Pusher
	n      int
}

func NewWorker(queue *Queue, mailer Mailer, pusher Pusher, n int) *Worker {
	if n <= 0 {
		n = 1
	}
	return &Worker{queue: queue, mailer: mailer, pusher: pusher, n: n}
}

func (w *Worker) Start(ctx context.Context) {
	for i := 0; i < w.n; i++ {
		go w.loop(ctx)
	}
}

func (w *Worker) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		res, err := w.queue.rdb.BLPop(ctx, 5*time.Second, w.queue.key).Result()
		if err != nil {
			if err == redis.Nil {
				continue
			}
			if ctx.Err() != nil {
				return
			}
			logger.L().Warn("notify queue pop failed", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}
		if len(res) < 2 {
			continue
		}

		var job Job
		if err := json.Unmarshal([]byte(res[1]), &job); err != nil {
			logger.L().Warn("notify job unmarshal failed", zap.Error(err))
			continue
		}
		w.deliver(ctx, job)
	}
}

func (w *Worker) deliver(ctx context.Context, job Job) {
	var err error
	switch job.Kind {
	case JobEmail:
		if w.mailer != nil {
			err = w.mailer.Send(ctx, job.Recipient, job.Subject, job.Body, job.Link)
		}
	case JobPush:
		if w.pusher != nil {
			err = w.pusher.Push(ctx, job.UserID, job.Subject, job.Body, job.Link)
		}
	default:
		logger.L().Warn("unknown notify job kind", zap.String("kind", job.Kind))
		return
	}
	if err != nil {
		logger.L().Error("notify delivery failed",
			zap.String("kind", job.Kind),
			zap.Uint("user_id", job.UserID),
			zap.Error(err))
	}
}
