package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Pesokrava/bakery_ledger/internal/domain"
	"github.com/Pesokrava/bakery_ledger/internal/pkg/logger"
)

const (
	// Debounce window - collect events for same product within this duration
	debounceWindow = 1 * time.Second

	// Retry configuration
	maxRetries     = 3
	initialBackoff = 100 * time.Millisecond
)

// StockWorker consumes sale events and checks stock levels asynchronously
type StockWorker struct {
	checker *Checker
	logger  *logger.Logger
	alerts  func(Alert)

	// Debouncing state
	mu            sync.Mutex
	pendingChecks map[uuid.UUID]*pendingCheck
	shutdownCh    chan struct{}
	wg            sync.WaitGroup
	ctx           context.Context
	cancel        context.CancelFunc
}

type pendingCheck struct {
	timestamp time.Time
	timer     *time.Timer
}

// NewStockWorker creates a new stock worker. onAlert, if non-nil, receives
// every alert raised by the checker.
func NewStockWorker(checker *Checker, onAlert func(Alert), logger *logger.Logger) *StockWorker {
	ctx, cancel := context.WithCancel(context.Background())

	return &StockWorker{
		checker:       checker,
		logger:        logger,
		alerts:        onAlert,
		pendingChecks: make(map[uuid.UUID]*pendingCheck),
		shutdownCh:    make(chan struct{}),
		ctx:           ctx,
		cancel:        cancel,
	}
}

// HandleEvent processes a sale event. Other event types are acknowledged and ignored.
func (w *StockWorker) HandleEvent(data []byte) error {
	var event domain.Event
	if err := json.Unmarshal(data, &event); err != nil {
		w.logger.Error("Failed to unmarshal sale event", err)
		return fmt.Errorf("failed to unmarshal event: %w", err)
	}

	if event.EventType != domain.EventSaleRecorded {
		w.logger.WithFields(map[string]any{
			"event_type": event.EventType,
		}).Debug("Ignoring non-sale event")
		return nil
	}

	w.logger.WithFields(map[string]any{
		"event_type": event.EventType,
		"product_id": event.ProductID.String(),
		"timestamp":  event.Timestamp,
	}).Info("Received sale event")

	w.scheduleCheck(event.ProductID, event.Timestamp)

	return nil
}

// scheduleCheck debounces checks per product: a burst of sales within the
// window results in a single check
func (w *StockWorker) scheduleCheck(productID uuid.UUID, timestamp time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()

	select {
	case <-w.shutdownCh:
		w.logger.Info("Worker shutting down, ignoring new event")
		return
	default:
	}

	existing, found := w.pendingChecks[productID]
	if found {
		if timestamp.Before(existing.timestamp) {
			w.logger.WithFields(map[string]any{
				"product_id":  productID.String(),
				"existing_ts": existing.timestamp,
				"event_ts":    timestamp,
			}).Debug("Ignoring stale event")
			return
		}

		existing.timer.Stop()
		w.logger.WithFields(map[string]any{
			"product_id": productID.String(),
		}).Debug("Debouncing: resetting timer for product")
	} else {
		w.wg.Add(1)
	}

	timer := time.AfterFunc(debounceWindow, func() {
		w.processCheck(productID)
	})

	w.pendingChecks[productID] = &pendingCheck{
		timestamp: timestamp,
		timer:     timer,
	}
}

// processCheck runs the stock check with retry logic
func (w *StockWorker) processCheck(productID uuid.UUID) {
	w.mu.Lock()
	if _, ok := w.pendingChecks[productID]; !ok {
		// Cancelled by Shutdown, which already released the wait group slot
		w.mu.Unlock()
		return
	}
	delete(w.pendingChecks, productID)
	w.mu.Unlock()
	defer w.wg.Done()

	var lastErr error
	backoff := initialBackoff

	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			w.logger.WithFields(map[string]any{
				"product_id": productID.String(),
				"attempt":    attempt + 1,
				"backoff_ms": backoff.Milliseconds(),
			}).Warn("Retrying stock check")

			select {
			case <-time.After(backoff):
			case <-w.ctx.Done():
				w.logger.Info("Worker context cancelled, aborting retry")
				return
			}

			backoff *= 2
		}

		ctx, cancel := context.WithTimeout(w.ctx, 5*time.Second)
		alert, err := w.checker.Check(ctx, productID)
		cancel()

		if err == nil {
			if alert != nil && w.alerts != nil {
				w.alerts(*alert)
			}
			return
		}

		lastErr = err
		w.logger.WithFields(map[string]any{
			"product_id": productID.String(),
			"attempt":    attempt + 1,
		}).Error("Failed to check stock", err)
	}

	w.logger.WithFields(map[string]any{
		"product_id":  productID.String(),
		"max_retries": maxRetries,
	}).Error("Stock check failed after all retries", lastErr)
}

// Shutdown cancels pending checks and waits for in-flight checks to complete
func (w *StockWorker) Shutdown(ctx context.Context) error {
	w.logger.Info("Shutting down stock worker...")

	w.mu.Lock()
	close(w.shutdownCh)
	w.cancel()

	pendingCount := len(w.pendingChecks)
	for _, check := range w.pendingChecks {
		check.timer.Stop()
		w.wg.Done()
	}
	w.pendingChecks = make(map[uuid.UUID]*pendingCheck)
	w.mu.Unlock()

	w.logger.WithFields(map[string]any{
		"cancelled_checks": pendingCount,
	}).Info("Cancelled pending checks")

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		w.logger.Info("All in-flight checks completed")
		return nil
	case <-ctx.Done():
		w.logger.Warn("Shutdown timeout reached, forcing exit")
		return ctx.Err()
	}
}

// GetPendingCount returns the number of pending checks
func (w *StockWorker) GetPendingCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.pendingChecks)
}
