package services

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/hibiken/asynq"
	"github.com/huangang/venturelink/internal/config"
	"github.com/huangang/venturelink/pkg/logger"
)

const (
	TaskTypeNotification = "notification:deliver"
	notificationQueue    = "notifications"
)

// NotificationTask asks a worker to deliver one outbox row.
type NotificationTask struct {
	OutboxID string `json:"outbox_id"`
}

// TaskQueue hands notification deliveries off the request path.
type TaskQueue interface {
	Enqueue(task *NotificationTask) error
	// IsAsync reports whether tasks are processed by a separate worker
	IsAsync() bool
	Close() error
}

// NewTaskQueue prefers Redis-backed asynq and falls back to in-process delivery.
func NewTaskQueue(cfg *config.RedisConfig) TaskQueue {
	if !cfg.Enabled {
		logger.Infof("[TaskQueue] Sync queue initialized (Redis disabled)")
		return NewSyncQueue()
	}
	queue, err := NewAsyncQueue(cfg)
	if err != nil {
		logger.Warnf("[TaskQueue] Redis unavailable, falling back to sync mode: %v", err)
		return NewSyncQueue()
	}
	logger.Infof("[TaskQueue] Async queue initialized with Redis at %s", cfg.Addr)
	return queue
}

func redisOpt(cfg *config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
}

type AsyncQueue struct {
	client *asynq.Client
}

func NewAsyncQueue(cfg *config.RedisConfig) (*AsyncQueue, error) {
	opt := redisOpt(cfg)
	client := asynq.NewClient(opt)

	inspector := asynq.NewInspector(opt)
	defer inspector.Close()
	if _, err := inspector.Queues(); err != nil {
		client.Close()
		return nil, err
	}

	return &AsyncQueue{client: client}, nil
}

// Enqueue submits the task without asynq-level retries; the outbox owns
// retry scheduling.
func (q *AsyncQueue) Enqueue(task *NotificationTask) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return err
	}

	info, err := q.client.Enqueue(asynq.NewTask(TaskTypeNotification, payload),
		asynq.Queue(notificationQueue),
		asynq.MaxRetry(0),
		asynq.Timeout(2*time.Minute),
	)
	if err != nil {
		return err
	}
	logger.Debug().Str("task_id", info.ID).Str("outbox_id", task.OutboxID).Msg("[AsyncQueue] task enqueued")
	return nil
}

func (q *AsyncQueue) IsAsync() bool { return true }

func (q *AsyncQueue) Close() error {
	return q.client.Close()
}

// SyncQueue runs each task on its own goroutine inside this process.
type SyncQueue struct {
	mu        sync.RWMutex
	processor func(context.Context, *NotificationTask) error
	wg        sync.WaitGroup
}

func NewSyncQueue() *SyncQueue {
	return &SyncQueue{}
}

func (q *SyncQueue) SetProcessor(processor func(context.Context, *NotificationTask) error) {
	q.mu.Lock()
	q.processor = processor
	q.mu.Unlock()
}

func (q *SyncQueue) Enqueue(task *NotificationTask) error {
	q.mu.RLock()
	processor := q.processor
	q.mu.RUnlock()

	if processor == nil {
		// the sweeper picks the row up once a processor is attached
		logger.Warnf("[SyncQueue] No processor set, outbox %s left for the sweeper", task.OutboxID)
		return nil
	}

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		if err := processor(context.Background(), task); err != nil {
			logger.Warnf("[SyncQueue] Task processing failed: %v", err)
		}
	}()
	return nil
}

// Wait blocks until every task started so far has finished.
func (q *SyncQueue) Wait() {
	q.wg.Wait()
}

func (q *SyncQueue) IsAsync() bool { return false }

func (q *SyncQueue) Close() error {
	q.Wait()
	return nil
}
