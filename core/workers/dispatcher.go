// ABOUTME: Broadcast dispatcher delivers store pushes to tabs on a managed worker pool
// ABOUTME: Shards deliveries by tab id so each tab sees snapshots in mutation order

package workers

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"webclipper-api/core/domain"
	"webclipper-api/core/interfaces"
)

// DeliverFunc pushes one message to one tab
type DeliverFunc func(ctx context.Context, tabID string, msg domain.Message) (domain.Response, error)

// DeliveryJob represents a message bound for a tab
type DeliveryJob struct {
	TabID   string
	Message domain.Message
	Context context.Context

	// ErrorCh optionally receives the delivery outcome
	ErrorCh chan<- error
}

// Dispatcher manages the delivery worker pool
type Dispatcher struct {
	deliver   DeliverFunc
	logger    interfaces.Logger
	queues    []chan *DeliveryJob
	queueSize int
	timeout   time.Duration
	wg        sync.WaitGroup
	pending   *pendingCounter
	ctx       context.Context
	cancel    context.CancelFunc
	mu        sync.RWMutex
	running   bool
}

// WorkerConfig holds configuration for the dispatcher
type WorkerConfig struct {
	MaxWorkers int
	QueueSize  int

	// DeliveryTimeout bounds a single push
	DeliveryTimeout time.Duration
}

// DefaultWorkerConfig returns the default worker configuration
func DefaultWorkerConfig() WorkerConfig {
	return WorkerConfig{
		MaxWorkers:      4,
		QueueSize:       100,
		DeliveryTimeout: 5 * time.Second,
	}
}

// NewDispatcher creates a dispatcher; call Start before submitting
func NewDispatcher(deliver DeliverFunc, config WorkerConfig, logger interfaces.Logger) *Dispatcher {
	ctx, cancel := context.WithCancel(context.Background())

	defaults := DefaultWorkerConfig()
	if config.MaxWorkers <= 0 {
		config.MaxWorkers = defaults.MaxWorkers
	}
	if config.QueueSize <= 0 {
		config.QueueSize = defaults.QueueSize
	}
	if config.DeliveryTimeout <= 0 {
		config.DeliveryTimeout = defaults.DeliveryTimeout
	}
	if logger == nil {
		logger = interfaces.NopLogger{}
	}

	return &Dispatcher{
		deliver:   deliver,
		logger:    logger,
		queues:    make([]chan *DeliveryJob, config.MaxWorkers),
		queueSize: config.QueueSize,
		timeout:   config.DeliveryTimeout,
		pending:   newPendingCounter(),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start starts the worker pool
func (d *Dispatcher) Start() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.running {
		return nil
	}

	for i := range d.queues {
		d.queues[i] = make(chan *DeliveryJob, d.queueSize)
		d.wg.Add(1)
		go d.run(d.queues[i])
	}

	d.running = true
	return nil
}

// Stop drains queued deliveries and stops the pool
func (d *Dispatcher) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.running {
		return nil
	}

	for _, q := range d.queues {
		close(q)
	}
	d.wg.Wait()
	d.cancel()

	d.running = false
	return nil
}

// Submit queues a job on the worker that owns its tab. It waits up to five
// seconds for room on that worker's queue; other workers are not affected.
func (d *Dispatcher) Submit(job *DeliveryJob) error {
	// read lock: Stop cannot close the queue underneath, and submits to
	// other shards proceed while this one waits
	d.mu.RLock()
	defer d.mu.RUnlock()
	if !d.running {
		return ErrWorkerNotRunning
	}
	queue := d.queues[shard(job.TabID, len(d.queues))]
	d.pending.add()

	timer := time.NewTimer(5 * time.Second)
	defer timer.Stop()
	select {
	case queue <- job:
		return nil
	case <-timer.C:
		d.pending.done()
		d.logger.Warn("Delivery queue full, dropping push", map[string]interface{}{
			"tab": job.TabID,
		})
		return ErrQueueFull
	}
}

// Dispatch queues msg for tabID without waiting for the outcome
func (d *Dispatcher) Dispatch(ctx context.Context, tabID string, msg domain.Message) error {
	return d.Submit(&DeliveryJob{TabID: tabID, Message: msg, Context: ctx})
}

// Flush blocks until every submitted job has been processed
func (d *Dispatcher) Flush() {
	d.pending.wait()
}

// run is the main loop for each worker
func (d *Dispatcher) run(queue <-chan *DeliveryJob) {
	defer d.wg.Done()

	for job := range queue {
		d.process(job)
		d.pending.done()
	}
}

// process delivers a single job; failures only skip that tab
func (d *Dispatcher) process(job *DeliveryJob) {
	parent := job.Context
	if parent == nil {
		parent = d.ctx
	}
	// pushes outlive the request that caused them
	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), d.timeout)
	defer cancel()

	_, err := d.deliver(ctx, job.TabID, job.Message)
	if err != nil {
		d.logger.Debug("Skipping unreachable tab", map[string]interface{}{
			"tab":    job.TabID,
			"action": string(job.Message.Action),
			"error":  err.Error(),
		})
	}

	if job.ErrorCh != nil {
		select {
		case job.ErrorCh <- err:
		case <-ctx.Done():
		}
	}
}

// pendingCounter counts queued jobs; unlike a WaitGroup it may be waited on
// while new jobs keep arriving
type pendingCounter struct {
	mu   sync.Mutex
	cond *sync.Cond
	n    int
}

func newPendingCounter() *pendingCounter {
	p := &pendingCounter{}
	p.cond = sync.NewCond(&p.mu)
	return p
}

func (p *pendingCounter) add() {
	p.mu.Lock()
	p.n++
	p.mu.Unlock()
}

func (p *pendingCounter) done() {
	p.mu.Lock()
	p.n--
	if p.n == 0 {
		p.cond.Broadcast()
	}
	p.mu.Unlock()
}

func (p *pendingCounter) wait() {
	p.mu.Lock()
	for p.n > 0 {
		p.cond.Wait()
	}
	p.mu.Unlock()
}

func shard(key string, n int) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(n))
}

// Error definitions
var (
	ErrWorkerNotRunning = &WorkerError{Message: "worker pool is not running"}
	ErrQueueFull        = &WorkerError{Message: "job queue is full"}
)

// WorkerError represents a worker-specific error
type WorkerError struct {
	Message string
}

func (e *WorkerError) Error() string {
	return e.Message
}
