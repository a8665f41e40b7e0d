package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

const (
	TypeTableChanged = "reservation:table_changed"
	Queue            = "notifications"
)

func NewTableChangedTask(c TableChange) (*asynq.Task, error) {
	payload, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeTableChanged, payload), nil
}

// QueueNotifier enqueues notices on asynq for the worker command.
type QueueNotifier struct {
	client *asynq.Client
	log    *slog.Logger
}

func NewQueueNotifier(opt asynq.RedisClientOpt, log *slog.Logger) *QueueNotifier {
	return &QueueNotifier{client: asynq.NewClient(opt), log: log}
}

func (q *QueueNotifier) TableChanged(ctx context.Context, c TableChange) error {
	task, err := NewTableChangedTask(c)
	if err != nil {
		return err
	}
	info, err := q.client.EnqueueContext(ctx, task,
		asynq.Queue(Queue),
		asynq.MaxRetry(5),
		asynq.Timeout(30*time.Second),
	)
	if err != nil {
		return fmt.Errorf("enqueue %s: %w", TypeTableChanged, err)
	}
	q.log.Debug("notify:enqueue:ok", "component", "notify", "task_id", info.ID, "reservation_id", c.ReservationID)
	return nil
}

func (q *QueueNotifier) Close() error { return q.client.Close() }

// Handler consumes table-change tasks. Delivery is external; the handler
// decodes the notice and records it.
type Handler struct {
	Log *slog.Logger
}

func (h Handler) ProcessTask(_ context.Context, t *asynq.Task) error {
	var c TableChange
	if err := json.Unmarshal(t.Payload(), &c); err != nil {
		return fmt.Errorf("decode %s: %v: %w", t.Type(), err, asynq.SkipRetry)
	}
	if c.ReservationID == "" {
		return fmt.Errorf("%s without reservation id: %w", t.Type(), asynq.SkipRetry)
	}
	h.Log.Info("notify:table_changed:received",
		"component", "worker",
		"reservation_id", c.ReservationID,
		"reference", c.Reference,
		"customer_email", c.CustomerEmail,
		"date", c.Date.String(),
		"time", c.Time.String(),
		"old_table", c.OldTableName,
		"new_table", c.NewTableName,
	)
	return nil
}

func NewServeMux(h Handler) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.Handle(TypeTableChanged, h)
	return mux
}

// RunWorker serves the notification queue until ctx is done.
func RunWorker(ctx context.Context, opt asynq.RedisClientOpt, concurrency int, log *slog.Logger) error {
	srv := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues:      map[string]int{Queue: 1},
	})
	if err := srv.Start(NewServeMux(Handler{Log: log})); err != nil {
		return err
	}
	log.Info("worker:start:ok", "component", "worker", "queue", Queue, "concurrency", concurrency)
	<-ctx.Done()
	srv.Shutdown()
	log.Info("worker:stop:ok", "component", "worker")
	return nil
}
