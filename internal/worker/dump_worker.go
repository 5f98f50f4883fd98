package worker

import (
	"context"
	"sync"
	"time"

	"github.com/hwstudio/product-catalog/internal/domain"
	"github.com/hwstudio/product-catalog/internal/pkg/logger"
)

const (
	defaultDebounce = 1 * time.Second

	// Retry configuration
	defaultMaxRetries = 3
	initialBackoff    = 100 * time.Millisecond
)

// Gateway is the persistence surface the worker writes through.
type Gateway interface {
	DumpProduct(p domain.Product) error
	DumpReviews(id int, reviews []domain.Review) error
}

// DumpWorker persists product records asynchronously so the catalog store
// never does I/O inside its critical sections. Dumps for the same product
// within the debounce window collapse into a single write of the latest
// snapshot; each snapshot is immutable, so latest-wins is always correct.
type DumpWorker struct {
	gateway    Gateway
	logger     *logger.Logger
	debounce   time.Duration
	maxRetries int

	// Debouncing state
	mu         sync.Mutex
	pending    map[int]*pendingDump
	shutdownCh chan struct{}
	wg         sync.WaitGroup
	ctx        context.Context
	cancel     context.CancelFunc
}

type pendingDump struct {
	product domain.Product
	reviews []domain.Review
	timer   *time.Timer
}

// NewDumpWorker creates a dump worker. Non-positive debounce or retries
// fall back to the defaults.
func NewDumpWorker(gateway Gateway, debounce time.Duration, maxRetries int, log *logger.Logger) *DumpWorker {
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &DumpWorker{
		gateway:    gateway,
		logger:     log,
		debounce:   debounce,
		maxRetries: maxRetries,
		pending:    make(map[int]*pendingDump),
		shutdownCh: make(chan struct{}),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Schedule queues a dump of the given product snapshot. Multiple calls for
// the same product within the debounce window result in one write.
func (w *DumpWorker) Schedule(p domain.Product, reviews []domain.Review) {
	w.mu.Lock()
	defer w.mu.Unlock()

	select {
	case <-w.shutdownCh:
		w.logger.Warnf("Dump worker shutting down, dropping dump for product %d", p.ID)
		return
	default:
	}

	if existing, found := w.pending[p.ID]; found {
		existing.product = p
		existing.reviews = reviews
		existing.timer.Stop()
		existing.timer = time.AfterFunc(w.debounce, func() { w.process(p.ID) })
		return
	}

	w.wg.Add(1)
	w.pending[p.ID] = &pendingDump{
		product: p,
		reviews: reviews,
		timer:   time.AfterFunc(w.debounce, func() { w.process(p.ID) }),
	}
}

// process takes the pending snapshot for id and writes it with retries.
func (w *DumpWorker) process(id int) {
	w.mu.Lock()
	dump, found := w.pending[id]
	delete(w.pending, id)
	w.mu.Unlock()

	// A replaced timer can fire after its snapshot was already taken.
	if !found {
		return
	}
	defer w.wg.Done()
	w.write(dump)
}

// write persists one snapshot, retrying with exponential backoff. An
// exhausted retry budget is logged and the snapshot dropped; the next
// review on the product schedules a fresh dump.
func (w *DumpWorker) write(dump *pendingDump) {
	var lastErr error
	backoff := initialBackoff

	for attempt := 0; attempt < w.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(backoff):
			case <-w.ctx.Done():
				w.logger.Warnf("Dump worker stopped, abandoning dump for product %d", dump.product.ID)
				return
			}
			backoff *= 2
		}

		err := w.gateway.DumpProduct(dump.product)
		if err == nil {
			err = w.gateway.DumpReviews(dump.product.ID, dump.reviews)
		}
		if err == nil {
			w.logger.WithFields(map[string]interface{}{
				"product_id": dump.product.ID,
				"reviews":    len(dump.reviews),
			}).Debug("Dumped product snapshot")
			return
		}

		lastErr = err
		w.logger.Errorf(err, "Failed to dump product %d (attempt %d)", dump.product.ID, attempt+1)
	}

	w.logger.WithFields(map[string]interface{}{
		"product_id":  dump.product.ID,
		"max_retries": w.maxRetries,
	}).Error("Dump failed after all retries", lastErr)
}

// Shutdown stops accepting new dumps, flushes everything still pending and
// waits for in-flight writes until ctx expires.
func (w *DumpWorker) Shutdown(ctx context.Context) error {
	w.logger.Info("Shutting down dump worker...")
	close(w.shutdownCh)

	// Flush pending snapshots immediately rather than waiting out their timers.
	w.mu.Lock()
	flush := make([]*pendingDump, 0, len(w.pending))
	for id, dump := range w.pending {
		dump.timer.Stop()
		flush = append(flush, dump)
		delete(w.pending, id)
	}
	w.mu.Unlock()

	for _, dump := range flush {
		w.write(dump)
		w.wg.Done()
	}

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		w.cancel()
		w.logger.Info("Dump worker drained")
		return nil
	case <-ctx.Done():
		w.cancel()
		w.logger.Warn("Dump worker shutdown timed out")
		return ctx.Err()
	}
}

// PendingCount reports queued dumps, used for monitoring and tests.
func (w *DumpWorker) PendingCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.pending)
}
