package cart

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/carrinho/internal/domain"
	"github.com/vladislavdragonenkov/carrinho/internal/storage/memory"
)

type recordingNotifier struct {
	changes []domain.CartChange
	err     error
}

func (n *recordingNotifier) CartChanged(_ context.Context, change domain.CartChange) error {
	n.changes = append(n.changes, change)
	return n.err
}

type countingRecorder struct {
	mutations     map[domain.CartOp]int
	storageErrors map[domain.CartOp]int
	notifyErrors  int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{
		mutations:     map[domain.CartOp]int{},
		storageErrors: map[domain.CartOp]int{},
	}
}

func (r *countingRecorder) RecordMutation(op domain.CartOp)     { r.mutations[op]++ }
func (r *countingRecorder) RecordStorageError(op domain.CartOp) { r.storageErrors[op]++ }
func (r *countingRecorder) RecordNotifyFailure()                { r.notifyErrors++ }

func product(id, price string) domain.LineItem {
	return domain.LineItem{
		ID:        id,
		Name:      "produto " + id,
		UnitPrice: decimal.RequireFromString(price),
		Quantity:  domain.QuantityOf(1),
	}
}

func newMemoryStore(opts ...Option) (*Store, *Storage) {
	storage := NewStorage(memory.NewKVStore())
	return NewStore(storage, nil, opts...), storage
}

func TestStore_AddTwiceIncrements(t *testing.T) {
	ctx := context.Background()
	store, _ := newMemoryStore()

	require.NoError(t, store.AddOrIncrement(ctx, product("1", "10")))
	require.NoError(t, store.AddOrIncrement(ctx, product("1", "10")))

	c, err := store.Current(ctx)
	require.NoError(t, err)
	require.Len(t, c, 1)
	require.Equal(t, domain.QuantityOf(2), c[0].Quantity)
	require.True(t, c[0].UnitPrice.Equal(decimal.NewFromInt(10)))
	require.Equal(t, 2, c.ItemCount())
	require.True(t, c.GrandTotal().Equal(decimal.NewFromInt(20)))
}

func TestStore_SetQuantity(t *testing.T) {
	ctx := context.Background()
	store, _ := newMemoryStore()
	require.NoError(t, store.AddOrIncrement(ctx, product("1", "2.5")))

	require.NoError(t, store.SetQuantity(ctx, "1", domain.QuantityOf(5)))

	c, err := store.Current(ctx)
	require.NoError(t, err)
	require.Equal(t, domain.QuantityOf(5), c[0].Quantity)
	require.True(t, c.GrandTotal().Equal(decimal.RequireFromString("12.5")))
}

func TestStore_SetQuantityUnknownIDDoesNotWrite(t *testing.T) {
	ctx := context.Background()
	rec := newCountingRecorder()
	store, _ := newMemoryStore(WithMetrics(rec))

	require.NoError(t, store.SetQuantity(ctx, "404", domain.QuantityOf(3)))
	require.Zero(t, rec.mutations[domain.CartOpSetQuantity])

	c, err := store.Current(ctx)
	require.NoError(t, err)
	require.Empty(t, c)
}

func TestStore_SetInvalidQuantityIsStored(t *testing.T) {
	ctx := context.Background()
	store, _ := newMemoryStore()
	require.NoError(t, store.AddOrIncrement(ctx, product("1", "10")))

	q, err := domain.ParseQuantity("abc")
	require.Error(t, err)
	require.NoError(t, store.SetQuantity(ctx, "1", q))

	c, err := store.Current(ctx)
	require.NoError(t, err)
	require.False(t, c[0].Quantity.Valid())
	require.Equal(t, 0, c.ItemCount())
	require.True(t, c.GrandTotal().IsZero())
}

func TestStore_RemoveIsIdempotent(t *testing.T) {
	ctx := context.Background()
	rec := newCountingRecorder()
	store, _ := newMemoryStore(WithMetrics(rec))
	require.NoError(t, store.AddOrIncrement(ctx, product("1", "10")))
	require.NoError(t, store.AddOrIncrement(ctx, product("2", "5")))

	require.NoError(t, store.Remove(ctx, "1"))
	require.NoError(t, store.Remove(ctx, "1"))

	c, err := store.Current(ctx)
	require.NoError(t, err)
	require.Len(t, c, 1)
	require.Equal(t, "2", c[0].ID)
	require.Equal(t, 1, c.ItemCount())
	require.Equal(t, 2, rec.mutations[domain.CartOpRemove])
}

func TestStore_MalformedCartPropagates(t *testing.T) {
	ctx := context.Background()
	kv := memory.NewKVStore()
	require.NoError(t, kv.Set(ctx, StorageKey, "[{"))
	rec := newCountingRecorder()
	store := NewStore(NewStorage(kv), nil, WithMetrics(rec))

	err := store.AddOrIncrement(ctx, product("1", "10"))
	require.Error(t, err)
	require.True(t, domain.IsMalformedCart(err))
	require.Equal(t, 1, rec.storageErrors[domain.CartOpAdd])

	raw, err := kv.Get(ctx, StorageKey)
	require.NoError(t, err)
	require.Equal(t, "[{", raw, "a failed load must not overwrite the stored value")
}

func TestStore_SaveFailure(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("disk full")
	rec := newCountingRecorder()
	store := NewStore(NewStorage(failingKV{getErr: domain.ErrKeyNotFound, setErr: boom}), nil, WithMetrics(rec))

	err := store.Remove(ctx, "1")
	require.ErrorIs(t, err, boom)
	require.Equal(t, 1, rec.storageErrors[domain.CartOpRemove])
}

func TestStore_NotifiesAfterSave(t *testing.T) {
	ctx := context.Background()
	notifier := &recordingNotifier{}
	store, _ := newMemoryStore(WithNotifier(notifier), WithScope("sess-1"))

	require.NoError(t, store.AddOrIncrement(ctx, product("1", "10")))
	require.NoError(t, store.SetQuantity(ctx, "1", domain.QuantityOf(4)))
	require.NoError(t, store.Remove(ctx, "1"))

	require.Len(t, notifier.changes, 3)
	require.Equal(t, domain.CartOpAdd, notifier.changes[0].Op)
	require.Equal(t, domain.CartOpSetQuantity, notifier.changes[1].Op)
	require.Equal(t, domain.CartOpRemove, notifier.changes[2].Op)
	require.Equal(t, "sess-1", notifier.changes[0].Scope)
	require.Equal(t, 4, notifier.changes[1].Cart.ItemCount())
	require.Empty(t, notifier.changes[2].Cart)
}

func TestStore_NotifierFailureDoesNotFailMutation(t *testing.T) {
	ctx := context.Background()
	rec := newCountingRecorder()
	store, _ := newMemoryStore(WithNotifier(&recordingNotifier{err: errors.New("broker down")}), WithMetrics(rec))

	require.NoError(t, store.AddOrIncrement(ctx, product("1", "10")))
	require.Equal(t, 1, rec.notifyErrors)
	require.Equal(t, 1, rec.mutations[domain.CartOpAdd])
}
