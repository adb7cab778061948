package tasks

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryBroker runs jobs on an in-process goroutine pool. It backs tests and
// REDIS_ADDR-less development runs; status bookkeeping matches the Redis
// implementation.
type MemoryBroker struct {
	registry Registry

	mu       sync.RWMutex
	statuses map[string]Status
	closed   bool

	queue chan job
	wg    sync.WaitGroup
	once  sync.Once
}

func NewMemoryBroker(registry Registry, workers int) *MemoryBroker {
	if workers <= 0 {
		workers = 2
	}
	b := &MemoryBroker{
		registry: registry,
		statuses: make(map[string]Status),
		queue:    make(chan job, 256),
	}
	for i := 0; i < workers; i++ {
		go b.work()
	}
	return b
}

func (b *MemoryBroker) Enqueue(_ context.Context, jobType string, args map[string]any) (string, error) {
	j := job{
		ID:         uuid.NewString(),
		Type:       jobType,
		Args:       args,
		EnqueuedAt: time.Now().UTC(),
	}

	// The send happens under the lock so a concurrent Close cannot close the
	// channel between the check and the send.
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return "", fmt.Errorf("job queue closed")
	}

	b.statuses[j.ID] = Status{State: StatePending}
	b.wg.Add(1)

	select {
	case b.queue <- j:
		return j.ID, nil
	default:
		b.wg.Done()
		delete(b.statuses, j.ID)
		return "", fmt.Errorf("job queue full")
	}
}

func (b *MemoryBroker) GetStatus(_ context.Context, jobID string) Status {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if status, ok := b.statuses[jobID]; ok {
		return status
	}
	return Status{
		State:    StatePending,
		Progress: map[string]any{"status": "Task not found or not started"},
	}
}

// Close stops accepting jobs and waits for in-flight ones to finish. Enqueue
// after Close reports an error.
func (b *MemoryBroker) Close() {
	b.once.Do(func() {
		b.mu.Lock()
		b.closed = true
		close(b.queue)
		b.mu.Unlock()
	})
	b.wg.Wait()
}

// Wait blocks until every enqueued job has completed. Test helper.
func (b *MemoryBroker) Wait() {
	b.wg.Wait()
}

func (b *MemoryBroker) work() {
	for j := range b.queue {
		b.run(j)
		b.wg.Done()
	}
}

func (b *MemoryBroker) run(j job) {
	progress := func(meta map[string]any) {
		b.setStatus(j.ID, Status{State: StateProgress, Progress: meta})
	}

	result, err := runHandler(context.Background(), b.registry, j, progress)
	if err != nil {
		log.Printf("job %s (%s) failed: %v", j.ID, j.Type, err)
		b.setStatus(j.ID, Status{State: StateFailure, Error: err.Error()})
		return
	}
	b.setStatus(j.ID, Status{State: StateSuccess, Result: result})
}

func (b *MemoryBroker) setStatus(id string, status Status) {
	b.mu.Lock()
	b.statuses[id] = status
	b.mu.Unlock()
}
