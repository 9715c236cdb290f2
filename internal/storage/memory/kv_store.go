package memory

import (
	"context"
	"sync"

	"github.com/vladislavdragonenkov/carrinho/internal/domain"
)

// kvStoreInMemory: простая in-memory реализация KVStore.
type kvStoreInMemory struct {
	mu    sync.RWMutex
	items map[string]string
}

// NewKVStore возвращает in-memory хранилище для локальной разработки и тестов.
func NewKVStore() *kvStoreInMemory {
	return &kvStoreInMemory{
		items: make(map[string]string),
	}
}

// Get возвращает значение или ErrKeyNotFound, если ключа нет.
func (s *kvStoreInMemory) Get(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.items[key]
	if !ok {
		return "", domain.ErrKeyNotFound
	}
	return value, nil
}

// Set перезаписывает значение (last writer wins).
func (s *kvStoreInMemory) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items[key] = value
	return nil
}

// Ping всегда успешен.
func (s *kvStoreInMemory) Ping(context.Context) error {
	return nil
}

var _ domain.KVStore = (*kvStoreInMemory)(nil)
