// Пакет notify доставляет изменения корзины во внешний ChangeNotifier (Kafka)
// в фоне, чтобы запись корзины не ждала брокер.
package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/carrinho/internal/domain"
)

const (
	defaultQueueSize      = 256
	defaultMaxAttempts    = 3
	defaultRetryBaseDelay = 50 * time.Millisecond
	defaultDrainTimeout   = 2 * time.Second
	defaultBreakerFails   = 5
	defaultBreakerReset   = 30 * time.Second
)

// ErrQueueFull изменение не поставлено в очередь: очередь переполнена.
var ErrQueueFull = errors.New("notification queue is full")

// Результаты публикации для метрик.
const (
	ResultSent       = "sent"
	ResultRetryError = "retry_error"
	ResultFailed     = "failed"
	ResultDropped    = "dropped"
	ResultRejected   = "circuit_open"
)

// Recorder метрики доставки.
type Recorder interface {
	RecordPublish(result string)
	SetQueueDepth(depth int)
}

// Options параметры Dispatcher.
type Options struct {
	Logger         *log.Entry
	Metrics        Recorder
	Breaker        *CircuitBreaker
	QueueSize      int
	MaxAttempts    int
	RetryBaseDelay time.Duration
	DrainTimeout   time.Duration
}

type Option func(*Options)

func WithLogger(logger *log.Entry) Option {
	return func(o *Options) { o.Logger = logger }
}

func WithMetrics(m Recorder) Option {
	return func(o *Options) { o.Metrics = m }
}

func WithBreaker(b *CircuitBreaker) Option {
	return func(o *Options) { o.Breaker = b }
}

func WithQueueSize(n int) Option {
	return func(o *Options) { o.QueueSize = n }
}

// WithMaxAttempts число попыток публикации одного изменения.
func WithMaxAttempts(n int) Option {
	return func(o *Options) { o.MaxAttempts = n }
}

// WithRetryBaseDelay базовая задержка экспоненциального backoff; 0: без пауз.
func WithRetryBaseDelay(d time.Duration) Option {
	return func(o *Options) { o.RetryBaseDelay = d }
}

// Dispatcher реализует domain.ChangeNotifier поверх очереди и фонового воркера.
type Dispatcher struct {
	next           domain.ChangeNotifier
	queue          chan domain.CartChange
	breaker        *CircuitBreaker
	metrics        Recorder
	logger         *log.Entry
	maxAttempts    int
	retryBaseDelay time.Duration
	drainTimeout   time.Duration
}

var _ domain.ChangeNotifier = (*Dispatcher)(nil)

func NewDispatcher(next domain.ChangeNotifier, options ...Option) *Dispatcher {
	opts := Options{
		QueueSize:      defaultQueueSize,
		MaxAttempts:    defaultMaxAttempts,
		RetryBaseDelay: defaultRetryBaseDelay,
		DrainTimeout:   defaultDrainTimeout,
	}
	for _, option := range options {
		option(&opts)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.WithField("component", "notify-dispatcher")
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = defaultQueueSize
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = defaultMaxAttempts
	}
	if opts.RetryBaseDelay < 0 {
		opts.RetryBaseDelay = 0
	}
	if opts.DrainTimeout <= 0 {
		opts.DrainTimeout = defaultDrainTimeout
	}
	if opts.Breaker == nil {
		opts.Breaker = NewCircuitBreaker(defaultBreakerFails, defaultBreakerReset, logger)
	}

	return &Dispatcher{
		next:           next,
		queue:          make(chan domain.CartChange, opts.QueueSize),
		breaker:        opts.Breaker,
		metrics:        opts.Metrics,
		logger:         logger,
		maxAttempts:    opts.MaxAttempts,
		retryBaseDelay: opts.RetryBaseDelay,
		drainTimeout:   opts.DrainTimeout,
	}
}

// CartChanged ставит изменение в очередь и не блокируется.
func (d *Dispatcher) CartChanged(ctx context.Context, change domain.CartChange) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case d.queue <- change:
		d.observeDepth()
		return nil
	default:
		d.record(ResultDropped)
		return ErrQueueFull
	}
}

// Run публикует изменения до отмены ctx, затем дочищает очередь не дольше DrainTimeout.
func (d *Dispatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			d.drain()
			return
		case change := <-d.queue:
			d.observeDepth()
			d.deliver(ctx, change)
		}
	}
}

// Healthy сообщает об ошибке, пока breaker разомкнут.
func (d *Dispatcher) Healthy(context.Context) error {
	if state := d.breaker.State(); state == CircuitOpen {
		return fmt.Errorf("notifier %w", ErrCircuitOpen)
	}
	return nil
}

func (d *Dispatcher) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), d.drainTimeout)
	defer cancel()
	for {
		select {
		case change := <-d.queue:
			d.deliver(ctx, change)
		default:
			d.observeDepth()
			return
		case <-ctx.Done():
			d.logger.WithField("pending", len(d.queue)).Warn("notification queue not drained before shutdown")
			return
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, change domain.CartChange) {
	err := d.breaker.Execute(string(change.Op), func() error {
		return d.publishWithRetry(ctx, change)
	})
	if err == nil {
		return
	}

	entry := d.logger.WithError(err).WithFields(log.Fields{
		"op":      change.Op,
		"session": change.Scope,
		"item_id": change.ItemID,
	})
	if errors.Is(err, ErrCircuitOpen) {
		d.record(ResultRejected)
		entry.Debug("cart change skipped, notifier circuit is open")
		return
	}
	d.record(ResultFailed)
	entry.Error("cart change publish failed after retries")
}

func (d *Dispatcher) publishWithRetry(ctx context.Context, change domain.CartChange) error {
	var lastErr error
	for attempt := 1; attempt <= d.maxAttempts; attempt++ {
		err := d.next.CartChanged(ctx, change)
		if err == nil {
			d.record(ResultSent)
			return nil
		}
		lastErr = err
		d.record(ResultRetryError)

		if attempt >= d.maxAttempts {
			break
		}
		delay := d.retryBackoff(attempt)
		if delay <= 0 {
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return fmt.Errorf("publish failed after %d attempts: %w", d.maxAttempts, lastErr)
}

// retryBackoff: base, 2*base, 4*base... без переполнения.
func (d *Dispatcher) retryBackoff(attempt int) time.Duration {
	if d.retryBaseDelay <= 0 {
		return 0
	}
	const maxDuration = time.Duration(1<<63 - 1)
	delay := d.retryBaseDelay
	for i := 1; i < attempt; i++ {
		if delay > maxDuration/2 {
			return maxDuration
		}
		delay *= 2
	}
	return delay
}

func (d *Dispatcher) record(result string) {
	if d.metrics != nil {
		d.metrics.RecordPublish(result)
	}
}

func (d *Dispatcher) observeDepth() {
	if d.metrics != nil {
		d.metrics.SetQueueDepth(len(d.queue))
	}
}
