// Пакет storage содержит общие обёртки над реализациями KVStore.
package storage

import (
	"context"

	"github.com/vladislavdragonenkov/carrinho/internal/domain"
)

// scopedKV добавляет к ключам префикс сессии, так что у каждой сессии
// своё пространство ключей (как localStorage у отдельного браузера).
type scopedKV struct {
	inner  domain.KVStore
	prefix string
}

// Scoped возвращает KVStore, изолированный по scope.
func Scoped(inner domain.KVStore, scope string) domain.KVStore {
	return &scopedKV{inner: inner, prefix: "sessao:" + scope + ":"}
}

func (s *scopedKV) Get(ctx context.Context, key string) (string, error) {
	return s.inner.Get(ctx, s.prefix+key)
}

func (s *scopedKV) Set(ctx context.Context, key, value string) error {
	return s.inner.Set(ctx, s.prefix+key, value)
}
