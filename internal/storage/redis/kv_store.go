package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vladislavdragonenkov/carrinho/internal/domain"
)

// KVStore хранит значения корзин в Redis под общим префиксом.
// По умолчанию ключи живут без TTL, как и в локальном хранилище браузера;
// с WithTTL каждая запись корзины продлевает срок жизни ключа.
type KVStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// Option настраивает KVStore.
type Option func(*KVStore)

// WithPrefix задаёт префикс ключей (по умолчанию "carrinho:kv:").
func WithPrefix(prefix string) Option {
	return func(s *KVStore) { s.prefix = prefix }
}

// WithTTL задаёт время жизни ключей; 0: бессрочно.
func WithTTL(ttl time.Duration) Option {
	return func(s *KVStore) { s.ttl = ttl }
}

// NewClient создаёт клиента для одиночного инстанса Redis.
func NewClient(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: addr})
}

// NewKVStore оборачивает клиента в domain.KVStore.
func NewKVStore(client redis.UniversalClient, opts ...Option) *KVStore {
	s := &KVStore{client: client, prefix: "carrinho:kv:"}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *KVStore) Get(ctx context.Context, key string) (string, error) {
	value, err := s.client.Get(ctx, s.prefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", domain.ErrKeyNotFound
		}
		return "", fmt.Errorf("redis get %q: %w", key, err)
	}
	return value, nil
}

func (s *KVStore) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.prefix+key, value, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %q: %w", key, err)
	}
	return nil
}

// Ping используется health-проверкой.
func (s *KVStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close закрывает клиента.
func (s *KVStore) Close() error {
	return s.client.Close()
}

var _ domain.KVStore = (*KVStore)(nil)
