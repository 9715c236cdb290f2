package cart

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/carrinho/internal/domain"
)

// Recorder фиксирует метрики операций корзины.
type Recorder interface {
	RecordMutation(op domain.CartOp)
	RecordStorageError(op domain.CartOp)
	RecordNotifyFailure()
}

// Store: операции над корзиной. Каждая операция заново читает корзину из
// хранилища и сохраняет её целиком; между вызовами ничего не кэшируется.
type Store struct {
	repo     domain.CartRepository
	notifier domain.ChangeNotifier
	metrics  Recorder
	scope    string
	logger   *log.Entry
}

// Option настраивает Store.
type Option func(*Store)

// WithNotifier подключает получателя уведомлений об изменениях.
func WithNotifier(n domain.ChangeNotifier) Option {
	return func(s *Store) { s.notifier = n }
}

// WithMetrics подключает метрики.
func WithMetrics(r Recorder) Option {
	return func(s *Store) { s.metrics = r }
}

// WithScope задаёт идентификатор сессии для логов и событий.
func WithScope(scope string) Option {
	return func(s *Store) { s.scope = scope }
}

// NewStore создаёт Store поверх репозитория корзины.
func NewStore(repo domain.CartRepository, logger *log.Entry, opts ...Option) *Store {
	if logger == nil {
		logger = log.WithField("component", "cart")
	}
	s := &Store{repo: repo, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	if s.scope != "" {
		s.logger = s.logger.WithField("scope", s.scope)
	}
	return s
}

// AddOrIncrement увеличивает количество товара с тем же id или добавляет его в конец.
func (s *Store) AddOrIncrement(ctx context.Context, item domain.LineItem) error {
	c, err := s.load(ctx, domain.CartOpAdd)
	if err != nil {
		return err
	}
	c = c.AddOrIncrement(item)
	return s.save(ctx, domain.CartOpAdd, item.ID, c)
}

// SetQuantity записывает количество как есть. Неизвестный id молча игнорируется.
func (s *Store) SetQuantity(ctx context.Context, id string, q domain.Quantity) error {
	c, err := s.load(ctx, domain.CartOpSetQuantity)
	if err != nil {
		return err
	}
	c, found := c.SetQuantity(id, q)
	if !found {
		s.logger.WithField("item_id", id).Debug("set quantity: item not in cart")
		return nil
	}
	if !q.Valid() {
		s.logger.WithField("item_id", id).Warn("storing non-numeric quantity")
	}
	return s.save(ctx, domain.CartOpSetQuantity, id, c)
}

// Remove удаляет позиции с данным id; корзина сохраняется, даже если удалять нечего.
func (s *Store) Remove(ctx context.Context, id string) error {
	c, err := s.load(ctx, domain.CartOpRemove)
	if err != nil {
		return err
	}
	return s.save(ctx, domain.CartOpRemove, id, c.Remove(id))
}

// Current возвращает текущую корзину.
func (s *Store) Current(ctx context.Context) (domain.Cart, error) {
	c, err := s.repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	return c, nil
}

func (s *Store) load(ctx context.Context, op domain.CartOp) (domain.Cart, error) {
	c, err := s.Current(ctx)
	if err != nil {
		s.recordStorageError(op)
		s.logger.WithError(err).WithField("op", op).Error("cart load failed")
		return nil, err
	}
	return c, nil
}

func (s *Store) save(ctx context.Context, op domain.CartOp, itemID string, c domain.Cart) error {
	if err := s.repo.Save(ctx, c); err != nil {
		s.recordStorageError(op)
		s.logger.WithError(err).WithField("op", op).Error("cart save failed")
		return fmt.Errorf("save cart: %w", err)
	}
	if s.metrics != nil {
		s.metrics.RecordMutation(op)
	}

	s.logger.WithFields(log.Fields{
		"op":         op,
		"item_id":    itemID,
		"lines":      len(c),
		"item_count": c.ItemCount(),
	}).Debug("cart saved")

	if s.notifier == nil {
		return nil
	}
	change := domain.CartChange{Op: op, Scope: s.scope, ItemID: itemID, Cart: c}
	if err := s.notifier.CartChanged(ctx, change); err != nil {
		if s.metrics != nil {
			s.metrics.RecordNotifyFailure()
		}
		s.logger.WithError(err).WithField("op", op).Warn("cart change notification failed")
	}
	return nil
}

func (s *Store) recordStorageError(op domain.CartOp) {
	if s.metrics != nil {
		s.metrics.RecordStorageError(op)
	}
}
