package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/vladislavdragonenkov/carrinho/internal/domain"
)

// StorageKey: единственный ключ, под которым хранится вся корзина.
const StorageKey = "carrinho"

// Storage хранит корзину одним JSON-значением под фиксированным ключом.
type Storage struct {
	kv  domain.KVStore
	key string
}

// NewStorage создаёт Storage поверх KVStore.
func NewStorage(kv domain.KVStore) *Storage {
	return &Storage{kv: kv, key: StorageKey}
}

// Load возвращает пустую корзину, если ключа нет или значение пустое.
func (s *Storage) Load(ctx context.Context) (domain.Cart, error) {
	raw, err := s.kv.Get(ctx, s.key)
	if err != nil {
		if errors.Is(err, domain.ErrKeyNotFound) {
			return domain.Cart{}, nil
		}
		return nil, fmt.Errorf("read %q: %w", s.key, err)
	}
	if raw == "" {
		return domain.Cart{}, nil
	}
	return Decode(raw)
}

// Save перезаписывает корзину целиком.
func (s *Storage) Save(ctx context.Context, c domain.Cart) error {
	raw, err := Encode(c)
	if err != nil {
		return err
	}
	if err := s.kv.Set(ctx, s.key, raw); err != nil {
		return fmt.Errorf("write %q: %w", s.key, err)
	}
	return nil
}

var _ domain.CartRepository = (*Storage)(nil)
