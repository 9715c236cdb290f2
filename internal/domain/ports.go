package domain

import "context"

// KVStore: постоянное строковое хранилище ключ/значение (аналог localStorage).
type KVStore interface {
	// Get возвращает значение или ErrKeyNotFound.
	Get(ctx context.Context, key string) (string, error)
	// Set перезаписывает значение целиком.
	Set(ctx context.Context, key, value string) error
}

// CartRepository загружает и сохраняет корзину целиком.
type CartRepository interface {
	Load(ctx context.Context) (Cart, error)
	Save(ctx context.Context, cart Cart) error
}

// CartOp задаёт константы операций корзины для метрик/логов/событий.
type CartOp string

const (
	CartOpAdd         CartOp = "add"
	CartOpSetQuantity CartOp = "set_quantity"
	CartOpRemove      CartOp = "remove"
)

// CartChange описывает сохранённое изменение корзины.
type CartChange struct {
	Op     CartOp
	Scope  string
	ItemID string
	Cart   Cart
}

// ChangeNotifier получает уведомление после каждого сохранения корзины.
type ChangeNotifier interface {
	CartChanged(ctx context.Context, change CartChange) error
}
