package taskqueue

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"topm/internal/domain"
	"topm/internal/imaging"
	"topm/internal/infra"
	"topm/internal/pipeline"
	"topm/internal/storage"
)

// Runner drives one generation run. Satisfied by *pipeline.Pipeline.
type Runner interface {
	Run(ctx context.Context, sources []string, onProgress pipeline.ProgressFunc) (*domain.GenerationResult, error)
}

// Options tunes queue behavior.
type Options struct {
	// DismissAfter is how long a completed task stays visible before it is
	// removed automatically. Defaults to 30 seconds. Failed tasks stay until
	// dismissed explicitly.
	DismissAfter time.Duration
	Logger       infra.Logger
	// Store, when set, receives a best-effort write-through copy of every
	// generated image after the record store commit.
	Store *storage.FileStore
	// Now overrides the clock, for tests.
	Now func() time.Time
}

type entry struct {
	task *domain.Task
	seq  uint64
}

// Queue owns the background generation work for the catalog: one serial
// worker pulls queued tasks in FIFO order, drives the generation pipeline,
// persists the outcome, and publishes task-list snapshots to subscribers.
// Tasks are keyed by product id — at most one live task per product.
type Queue struct {
	runner       Runner
	products     domain.ProductRepository
	store        *storage.FileStore
	logger       infra.Logger
	dismissAfter time.Duration
	now          func() time.Time
	ctx          context.Context

	mu      sync.Mutex
	tasks   map[string]*entry
	order   []string // FIFO of queued product ids
	seq     uint64
	subs    map[int]chan []domain.Task
	nextSub int
	running bool
}

// New constructs a Queue. The context bounds all external calls made by the
// worker; cancelling it stops the worker between tasks (in-flight stages are
// never interrupted).
func New(ctx context.Context, runner Runner, products domain.ProductRepository, opts Options) *Queue {
	if opts.DismissAfter <= 0 {
		opts.DismissAfter = 30 * time.Second
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Queue{
		runner:       runner,
		products:     products,
		store:        opts.Store,
		logger:       opts.Logger,
		dismissAfter: opts.DismissAfter,
		now:          now,
		ctx:          ctx,
		tasks:        make(map[string]*entry),
		subs:         make(map[int]chan []domain.Task),
	}
}

// Enqueue creates a queued task for the product and wakes the worker if it is
// idle. A duplicate submission coalesces: a queued or terminal task for the
// same product is replaced by the fresh one (and moves to the back of the
// queue); a running task rejects the submission with ErrTaskActive.
func (q *Queue) Enqueue(productID string, sourceImages []string) error {
	if productID == "" {
		return fmt.Errorf("taskqueue: product id is required")
	}

	q.mu.Lock()
	if e, ok := q.tasks[productID]; ok {
		if e.task.Status == domain.TaskStatusRunning {
			q.mu.Unlock()
			return fmt.Errorf("taskqueue: %w", domain.ErrTaskActive)
		}
		q.removeFromOrderLocked(productID)
	}

	q.seq++
	q.tasks[productID] = &entry{
		seq: q.seq,
		task: &domain.Task{
			ID:           productID,
			ProductID:    productID,
			SourceImages: append([]string(nil), sourceImages...),
			Status:       domain.TaskStatusQueued,
			Message:      "En cola...",
			CreatedAt:    q.now(),
		},
	}
	q.order = append(q.order, productID)
	q.publishLocked()
	q.mu.Unlock()

	q.maybeStart()
	return nil
}

// Dismiss removes a task from the live set in any state and publishes the
// update. Dismissing a running task only hides it: the in-flight run still
// completes and its persistence write still lands.
func (q *Queue) Dismiss(taskID string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if _, ok := q.tasks[taskID]; !ok {
		return
	}
	delete(q.tasks, taskID)
	q.removeFromOrderLocked(taskID)
	q.publishLocked()
}

// dismissSeq removes the task only if it is still the entry the auto-dismiss
// timer was scheduled for. A re-enqueued task carries a fresh seq and must
// outlive the old entry's timer.
func (q *Queue) dismissSeq(taskID string, seq uint64) {
	q.mu.Lock()
	defer q.mu.Unlock()
	e, ok := q.tasks[taskID]
	if !ok || e.seq != seq {
		return
	}
	delete(q.tasks, taskID)
	q.removeFromOrderLocked(taskID)
	q.publishLocked()
}

// Subscribe registers an observer. The channel immediately carries the
// current task list and then a fresh snapshot after every change; slow
// consumers observe the latest snapshot rather than blocking the worker.
// The returned function unsubscribes and closes the channel.
func (q *Queue) Subscribe() (<-chan []domain.Task, func()) {
	ch := make(chan []domain.Task, 1)
	q.mu.Lock()
	id := q.nextSub
	q.nextSub++
	q.subs[id] = ch
	ch <- q.snapshotLocked()
	q.mu.Unlock()

	unsubscribe := func() {
		q.mu.Lock()
		defer q.mu.Unlock()
		if c, ok := q.subs[id]; ok {
			delete(q.subs, id)
			close(c)
		}
	}
	return ch, unsubscribe
}

// ListAll returns the live tasks, newest first.
func (q *Queue) ListAll() []domain.Task {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.snapshotLocked()
}

func (q *Queue) removeFromOrderLocked(id string) {
	for i, queued := range q.order {
		if queued == id {
			q.order = append(q.order[:i], q.order[i+1:]...)
			return
		}
	}
}

// snapshotLocked copies the live task set, sorted by creation time
// descending (insertion sequence breaks ties).
func (q *Queue) snapshotLocked() []domain.Task {
	entries := make([]*entry, 0, len(q.tasks))
	for _, e := range q.tasks {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if !a.task.CreatedAt.Equal(b.task.CreatedAt) {
			return a.task.CreatedAt.After(b.task.CreatedAt)
		}
		return a.seq > b.seq
	})
	snapshot := make([]domain.Task, len(entries))
	for i, e := range entries {
		snapshot[i] = *e.task
	}
	return snapshot
}

// publishLocked fans the current snapshot out to every subscriber. Sends are
// latest-wins: a full subscriber buffer is drained so the newest snapshot
// replaces the stale one.
func (q *Queue) publishLocked() {
	snapshot := q.snapshotLocked()
	for _, ch := range q.subs {
		select {
		case ch <- snapshot:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snapshot:
			default:
			}
		}
	}
}

// maybeStart launches the worker goroutine if it is not already running.
// Idempotent; the guard is checked and set under the lock.
func (q *Queue) maybeStart() {
	q.mu.Lock()
	if q.running || len(q.order) == 0 {
		q.mu.Unlock()
		return
	}
	q.running = true
	q.mu.Unlock()
	go q.drain()
}

// drain processes queued tasks one at a time until the queue is empty. At
// most one drain goroutine exists at any moment.
func (q *Queue) drain() {
	for {
		if q.ctx.Err() != nil {
			q.mu.Lock()
			q.running = false
			q.mu.Unlock()
			return
		}

		q.mu.Lock()
		if len(q.order) == 0 {
			q.running = false
			q.mu.Unlock()
			return
		}
		id := q.order[0]
		q.order = q.order[1:]
		e, ok := q.tasks[id]
		if !ok {
			// dismissed while queued
			q.mu.Unlock()
			continue
		}
		e.task.Status = domain.TaskStatusRunning
		e.task.Message = "Iniciando generación..."
		seq := e.seq
		sources := e.task.SourceImages
		q.publishLocked()
		q.mu.Unlock()

		q.logger.Info().Str("product_id", id).Int("source_images", len(sources)).Msg("taskqueue: task started")
		q.process(id, seq, sources)
	}
}

// process runs the pipeline for one task and records the outcome. Progress
// and message are written only here, by the worker owning the task. The seq
// pins the run to the entry it started with: a task dismissed mid-run and
// re-enqueued gets a fresh seq, and the stale run must not touch it.
func (q *Queue) process(id string, seq uint64, sources []string) {
	result, err := q.runner.Run(q.ctx, sources, func(fraction float64, message string) {
		q.mu.Lock()
		if e, ok := q.tasks[id]; ok && e.seq == seq && e.task.Status == domain.TaskStatusRunning {
			if p := int(math.Round(fraction * 100)); p > e.task.Progress {
				e.task.Progress = p
			}
			e.task.Message = message
			q.publishLocked()
		}
		q.mu.Unlock()
	})

	if err == nil {
		err = q.persist(id, result)
	}

	q.mu.Lock()
	e, ok := q.tasks[id]
	if ok && e.seq == seq {
		if err != nil {
			e.task.Status = domain.TaskStatusFailed
			e.task.Progress = 0
			e.task.Message = "La generación falló"
			e.task.Error = err.Error()
		} else {
			e.task.Status = domain.TaskStatusCompleted
			e.task.Progress = 100
			e.task.Message = "¡Generación completada!"
			e.task.Result = result
			time.AfterFunc(q.dismissAfter, func() { q.dismissSeq(id, seq) })
		}
		q.publishLocked()
	}
	q.mu.Unlock()

	if err != nil {
		q.logger.Error().Err(err).Str("product_id", id).Msg("taskqueue: task failed")
	} else {
		q.logger.Info().Str("product_id", id).Msg("taskqueue: task completed")
	}
}

// persist writes the generation bundle into the record store. A write failure
// fails the task; the generated artifacts are discarded.
func (q *Queue) persist(productID string, result *domain.GenerationResult) error {
	status := domain.ProductStatusGenerated
	update := domain.ProductUpdate{
		Title:         &result.Title,
		Description:   &result.Description,
		Price:         &result.Price,
		Category:      &result.Category,
		Attributes:    result.Attributes,
		ProductImages: result.ProductImages,
		EffectImages:  result.EffectImages,
		GridImages:    result.GridImages,
		Status:        &status,
	}
	if err := q.products.Update(q.ctx, productID, update); err != nil {
		return fmt.Errorf("persist generation result: %w", err)
	}
	q.archiveAssets(productID, result)
	return nil
}

// archiveAssets mirrors generated images onto the optional file store. Errors
// are logged, never fatal: the record store already holds the data.
func (q *Queue) archiveAssets(productID string, result *domain.GenerationResult) {
	if q.store == nil {
		return
	}
	write := func(kind string, index int, uri string) {
		mime, data, err := imaging.DecodeDataURI(uri)
		if err != nil {
			return
		}
		ext := ".jpg"
		if mime == "image/png" {
			ext = ".png"
		}
		key := fmt.Sprintf("generated/%s/%s-%02d%s", productID, kind, index+1, ext)
		if _, err := q.store.Write(q.ctx, key, data); err != nil {
			q.logger.Warn().Err(err).Str("product_id", productID).Str("key", key).
				Msg("taskqueue: asset write-through failed")
		}
	}
	for i, img := range result.ProductImages {
		write("product", i, img)
	}
	for i, img := range result.EffectImages {
		write("effect", i, img)
	}
	for i, img := range result.GridImages {
		write("grid", i, img)
	}
}
