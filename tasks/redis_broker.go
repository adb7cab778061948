package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	queueKey        = "jobs:queue"
	statusKeyPrefix = "jobs:status:"
	statusTTL       = 24 * time.Hour
)

// RedisBroker queues jobs on a Redis list and keeps per-job status under a
// TTL'd key, so the API process and worker processes share one view. This is
// the production implementation of Broker.
type RedisBroker struct {
	rdb *redis.Client
}

func NewRedisBroker(rdb *redis.Client) *RedisBroker {
	return &RedisBroker{rdb: rdb}
}

func (b *RedisBroker) Enqueue(ctx context.Context, jobType string, args map[string]any) (string, error) {
	j := job{
		ID:         uuid.NewString(),
		Type:       jobType,
		Args:       args,
		EnqueuedAt: time.Now().UTC(),
	}

	payload, err := json.Marshal(j)
	if err != nil {
		return "", err
	}

	if err := b.setStatus(ctx, j.ID, Status{State: StatePending}); err != nil {
		return "", err
	}
	if err := b.rdb.LPush(ctx, queueKey, payload).Err(); err != nil {
		return "", err
	}
	return j.ID, nil
}

func (b *RedisBroker) GetStatus(ctx context.Context, jobID string) Status {
	raw, err := b.rdb.Get(ctx, statusKeyPrefix+jobID).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("failed to read status for job %s: %v", jobID, err)
		}
		return Status{
			State:    StatePending,
			Progress: map[string]any{"status": "Task not found or not started"},
		}
	}

	var status Status
	if err := json.Unmarshal([]byte(raw), &status); err != nil {
		log.Printf("malformed status for job %s: %v", jobID, err)
		return Status{State: StatePending}
	}
	return status
}

func (b *RedisBroker) setStatus(ctx context.Context, jobID string, status Status) error {
	payload, err := json.Marshal(status)
	if err != nil {
		return err
	}
	return b.rdb.Set(ctx, statusKeyPrefix+jobID, payload, statusTTL).Err()
}

// Worker pulls jobs from the Redis queue and executes them against a
// registry. Run blocks until the context is cancelled.
type Worker struct {
	broker   *RedisBroker
	registry Registry
	workers  int
}

func NewWorker(broker *RedisBroker, registry Registry, workers int) *Worker {
	if workers <= 0 {
		workers = 4
	}
	return &Worker{broker: broker, registry: registry, workers: workers}
}

func (w *Worker) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for i := 0; i < w.workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			w.loop(ctx, n)
		}(i)
	}
	wg.Wait()
}

func (w *Worker) loop(ctx context.Context, n int) {
	for {
		if ctx.Err() != nil {
			return
		}

		res, err := w.broker.rdb.BRPop(ctx, 5*time.Second, queueKey).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) || errors.Is(err, context.Canceled) {
				continue
			}
			log.Printf("worker %d: queue read failed: %v", n, err)
			time.Sleep(time.Second)
			continue
		}
		if len(res) != 2 {
			continue
		}

		var j job
		if err := json.Unmarshal([]byte(res[1]), &j); err != nil {
			log.Printf("worker %d: discarding malformed job payload: %v", n, err)
			continue
		}
		w.process(ctx, j)
	}
}

func (w *Worker) process(ctx context.Context, j job) {
	progress := func(meta map[string]any) {
		if err := w.broker.setStatus(ctx, j.ID, Status{State: StateProgress, Progress: meta}); err != nil {
			log.Printf("failed to record progress for job %s: %v", j.ID, err)
		}
	}

	result, err := runHandler(ctx, w.registry, j, progress)

	// Status writes survive the job context being cancelled.
	writeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err != nil {
		log.Printf("job %s (%s) failed: %v", j.ID, j.Type, err)
		if serr := w.broker.setStatus(writeCtx, j.ID, Status{State: StateFailure, Error: err.Error()}); serr != nil {
			log.Printf("failed to record failure for job %s: %v", j.ID, serr)
		}
		return
	}
	if serr := w.broker.setStatus(writeCtx, j.ID, Status{State: StateSuccess, Result: result}); serr != nil {
		log.Printf("failed to record result for job %s: %v", j.ID, serr)
	}
}
