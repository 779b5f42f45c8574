package services

import (
	"context"
	"log/slog"

	"bilancio/internal/amqp"
	"bilancio/internal/core"
)

// ApplyPublisher hands a month application to the queue for the worker to
// pick up. Satisfied by *amqp.Client.
type ApplyPublisher interface {
	PublishApplyMonth(ctx context.Context, msg *amqp.ApplyMonthMessage) error
}

// Applier routes month applications. With a publisher configured it
// queues the apply for the worker; without one, or when the publish
// fails, it falls back to applying synchronously. Applies are idempotent,
// so the occasional double execution across both paths is harmless.
type Applier struct {
	publisher    ApplyPublisher
	materializer *Materializer
}

func NewApplier(publisher ApplyPublisher, materializer *Materializer) *Applier {
	return &Applier{publisher: publisher, materializer: materializer}
}

func (a *Applier) Apply(ctx context.Context, month core.Month, reason string) error {
	if a.publisher != nil {
		msg := amqp.NewApplyMonthMessage(month.String(), reason)
		err := a.publisher.PublishApplyMonth(ctx, msg)
		if err == nil {
			return nil
		}
		slog.WarnContext(ctx, "Publish failed, applying month synchronously",
			"month", month.String(),
			"reason", reason,
			"error", err,
		)
	}
	_, err := a.materializer.ApplyMonth(ctx, month)
	return err
}

// ApplySync always materializes in-process, bypassing the queue.
func (a *Applier) ApplySync(ctx context.Context, month core.Month) (*ApplyResult, error) {
	return a.materializer.ApplyMonth(ctx, month)
}

func (a *Applier) ApplyCutoffChange(ctx context.Context, month core.Month) error {
	return a.Apply(ctx, month, amqp.ReasonCutoffChange)
}

func (a *Applier) ApplyRuleChange(ctx context.Context, month core.Month) error {
	return a.Apply(ctx, month, amqp.ReasonRuleChange)
}
