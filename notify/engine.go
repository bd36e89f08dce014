package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lakeclub/clubnotify/pkg/email"
	"github.com/lakeclub/clubnotify/pkg/logger"
	"github.com/lakeclub/clubnotify/pkg/queue"
)

// defaultDedupTTL bounds how long a sent marker suppresses duplicate
// deliveries of the same notice to the same recipient.
const defaultDedupTTL = 24 * time.Hour

// TaskEnqueuer schedules background delivery tasks. *queue.Enqueuer
// satisfies it.
type TaskEnqueuer interface {
	Enqueue(ctx context.Context, payload any, opts ...queue.EnqueueOption) error
}

// Engine is the notification fan-out core. Dispatch accepts a notice,
// resolves who should hear about it, and delivers email either inline or
// through the task queue depending on the category's delivery mode.
type Engine struct {
	store      SubscriptionStore
	dispatcher *Dispatcher
	loader     Loader
	sender     email.EmailSender
	tasks      TaskEnqueuer
	dedup      DedupStore
	dedupTTL   time.Duration
	log        *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the engine's logger.
func WithLogger(log *slog.Logger) EngineOption {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// WithDedup enables delivery deduplication with the given store and marker
// lifetime. A non-positive ttl falls back to the default of one day.
func WithDedup(store DedupStore, ttl time.Duration) EngineOption {
	return func(e *Engine) {
		e.dedup = store
		if ttl > 0 {
			e.dedupTTL = ttl
		}
	}
}

// NewEngine creates an engine. All positional dependencies are required.
func NewEngine(
	store SubscriptionStore,
	dispatcher *Dispatcher,
	loader Loader,
	sender email.EmailSender,
	tasks TaskEnqueuer,
	opts ...EngineOption,
) (*Engine, error) {
	if store == nil || dispatcher == nil || loader == nil || sender == nil || tasks == nil {
		return nil, fmt.Errorf("engine: %w", ErrNilDependency)
	}
	e := &Engine{
		store:      store,
		dispatcher: dispatcher,
		loader:     loader,
		sender:     sender,
		tasks:      tasks,
		dedupTTL:   defaultDedupTTL,
		log:        slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Dispatch routes a notice. Sync categories resolve recipients and send
// inline, falling back to a high-priority queue task for any recipient whose
// send fails. Async categories enqueue a single fan-out task and return.
func (e *Engine) Dispatch(ctx context.Context, n Notice) error {
	if err := validateNotice(n); err != nil {
		return err
	}

	if n.Category().DeliveryMode() == DeliverAsync {
		if err := e.tasks.Enqueue(ctx, taskForNotice(n)); err != nil {
			return fmt.Errorf("enqueue delivery: %w", err)
		}
		return nil
	}

	recipients, err := e.dispatcher.Recipients(ctx, n)
	if err != nil {
		return fmt.Errorf("resolve recipients: %w", err)
	}

	var errs []error
	for _, rcpt := range recipients {
		if err := e.deliver(ctx, n, rcpt); err != nil {
			e.log.ErrorContext(ctx, "inline delivery failed, queueing retry",
				logger.Error(err),
				logger.Category(string(n.Category())),
				logger.Recipient(rcpt.EmailAddress))
			task := taskForNotice(n)
			task.RecipientID = rcpt.ID
			if qerr := e.tasks.Enqueue(ctx, task, queue.WithPriority(queue.PriorityHigh)); qerr != nil {
				errs = append(errs, fmt.Errorf("deliver to %s: %w (retry enqueue: %w)", rcpt.ID, err, qerr))
			}
		}
	}
	return errors.Join(errs...)
}

// deliver sends one email, claiming the delivery in the dedup store first so
// a concurrent or retried attempt for the same notice and recipient is
// suppressed. A transport failure releases the claim.
func (e *Engine) deliver(ctx context.Context, n Notice, rcpt User) error {
	key := deliveryKey(n, rcpt.ID)
	if e.dedup != nil {
		claimed, err := e.dedup.MarkSent(ctx, key, e.dedupTTL)
		if err != nil {
			// A broken dedup store must not stop mail going out. The
			// cost is a possible duplicate, which at-least-once allows.
			e.log.WarnContext(ctx, "dedup check failed, sending anyway",
				logger.Error(err), logger.Recipient(rcpt.EmailAddress))
		} else if !claimed {
			e.log.DebugContext(ctx, "delivery already sent, skipping",
				logger.Category(string(n.Category())),
				logger.Recipient(rcpt.EmailAddress))
			return nil
		}
	}

	params, err := renderMessage(n, rcpt)
	if err != nil {
		return err
	}
	if err := e.sender.SendEmail(ctx, params); err != nil {
		if e.dedup != nil {
			if cerr := e.dedup.Clear(ctx, key); cerr != nil {
				e.log.WarnContext(ctx, "failed to release sent marker",
					logger.Error(cerr), logger.Recipient(rcpt.EmailAddress))
			}
		}
		return fmt.Errorf("send %s to %s: %w", n.Category(), rcpt.ID, err)
	}

	e.log.InfoContext(ctx, "notification delivered",
		logger.Category(string(n.Category())),
		logger.Recipient(rcpt.EmailAddress))
	return nil
}
