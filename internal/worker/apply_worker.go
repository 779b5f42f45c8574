// Package worker runs the background side of month accounting. The apply
// worker consumes apply-month messages from RabbitMQ and re-materializes the
// named month, and a rollover ticker applies the new month as soon as the
// calendar switches so recurring transactions exist before anyone opens the
// report.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"bilancio/internal/amqp"
	"bilancio/internal/core"
	"bilancio/internal/services"
)

// DefaultRolloverInterval is how often the worker checks whether the
// calendar month has changed.
const DefaultRolloverInterval = 15 * time.Minute

// ApplyConsumer consumes apply-month messages until its context is
// cancelled. *amqp.Client satisfies it.
type ApplyConsumer interface {
	ConsumeApplyMonth(ctx context.Context, handler func(*amqp.ApplyMonthMessage) error) error
}

// MonthApplier materializes one accounting month. *services.Materializer
// satisfies it.
type MonthApplier interface {
	ApplyMonth(ctx context.Context, month core.Month) (*services.ApplyResult, error)
}

// ApplyWorker glues the AMQP queue to the materializer. Materialization is
// idempotent, so applying a month twice (queue message plus rollover tick,
// or a redelivered message) converges to the same documents.
type ApplyWorker struct {
	consumer ApplyConsumer
	applier  MonthApplier
	interval time.Duration

	// nowMonth is swapped out in tests to simulate month switches.
	nowMonth func() core.Month

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewApplyWorker creates a worker. A nil consumer is allowed and leaves only
// the rollover ticker running, for deployments without a broker.
func NewApplyWorker(consumer ApplyConsumer, applier MonthApplier, rolloverInterval time.Duration) *ApplyWorker {
	if rolloverInterval <= 0 {
		rolloverInterval = DefaultRolloverInterval
	}
	return &ApplyWorker{
		consumer: consumer,
		applier:  applier,
		interval: rolloverInterval,
		nowMonth: core.CurrentMonth,
	}
}

// HandleMessage applies the month named by one queue message. A returned
// error requeues the message; a month string that cannot parse is dropped
// instead, requeueing would just redeliver it forever.
func (w *ApplyWorker) HandleMessage(ctx context.Context, msg *amqp.ApplyMonthMessage) error {
	month, err := core.ParseMonth(msg.Month)
	if err != nil {
		slog.ErrorContext(ctx, "Dropping apply message with invalid month",
			"month", msg.Month,
			"reason", msg.Reason,
			"error", err)
		return nil
	}

	result, err := w.applier.ApplyMonth(ctx, month)
	if err != nil {
		return fmt.Errorf("apply month %s: %w", month, err)
	}

	slog.InfoContext(ctx, "Applied month from queue",
		"month", month.String(),
		"reason", msg.Reason,
		"recurring", result.Recurring,
		"bills", result.Bills)

	return nil
}

// StartupCatchUp applies the current month once. Called at boot so missed
// queue messages or worker downtime cannot leave the month half
// materialized.
func (w *ApplyWorker) StartupCatchUp(ctx context.Context) error {
	month := w.nowMonth()

	result, err := w.applier.ApplyMonth(ctx, month)
	if err != nil {
		return fmt.Errorf("startup catch-up for %s: %w", month, err)
	}

	slog.InfoContext(ctx, "Startup catch-up complete",
		"month", month.String(),
		"recurring", result.Recurring,
		"bills", result.Bills)

	return nil
}

// Start launches the consume loop and the rollover ticker and returns
// immediately. Call Stop to shut them down.
func (w *ApplyWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return errors.New("apply worker already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.done = make(chan struct{})
	w.running = true

	go w.run(runCtx)

	return nil
}

// Stop cancels the worker loops and waits for them to finish, or until ctx
// expires.
func (w *ApplyWorker) Stop(ctx context.Context) error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	cancel := w.cancel
	done := w.done
	w.running = false
	w.mu.Unlock()

	cancel()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("wait for worker shutdown: %w", ctx.Err())
	}
}

func (w *ApplyWorker) run(ctx context.Context) {
	defer close(w.done)

	var wg sync.WaitGroup

	if w.consumer != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.consumeLoop(ctx)
		}()
	} else {
		slog.InfoContext(ctx, "No queue configured, rollover ticker only")
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		w.rolloverLoop(ctx)
	}()

	wg.Wait()
}

// consumeLoop keeps the consumer alive across broker outages. Each failed
// attempt backs off exponentially; a successful stretch of consumption
// resets the counter.
func (w *ApplyWorker) consumeLoop(ctx context.Context) {
	attempt := 0

	for {
		if ctx.Err() != nil {
			return
		}

		started := time.Now()
		err := w.consumer.ConsumeApplyMonth(ctx, func(msg *amqp.ApplyMonthMessage) error {
			return w.HandleMessage(ctx, msg)
		})
		if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return
		}

		// A consumer that survived for a while had a working connection,
		// start the backoff over instead of escalating forever.
		if time.Since(started) > time.Minute {
			attempt = 0
		}

		delay := amqp.ReconnectBackoff(attempt)
		attempt++

		slog.ErrorContext(ctx, "Queue consumption failed, reconnecting",
			"error", err,
			"attempt", attempt,
			"retry_in", delay)

		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
	}
}

// rolloverLoop watches for the calendar month to change and applies the new
// month when it does. The ticker also re-applies the current month at every
// interval, which heals drift without any queue traffic.
func (w *ApplyWorker) rolloverLoop(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	last := w.nowMonth()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			current := w.nowMonth()
			switched := !current.Equal(last.Time)

			result, err := w.applier.ApplyMonth(ctx, current)
			if err != nil {
				slog.ErrorContext(ctx, "Rollover apply failed",
					"month", current.String(),
					"error", err)
				continue
			}

			if switched {
				slog.InfoContext(ctx, "Month switched, applied new month",
					"previous", last.String(),
					"month", current.String(),
					"reason", amqp.ReasonMonthSwitch,
					"recurring", result.Recurring,
					"bills", result.Bills)
				last = current
			}
		}
	}
}
