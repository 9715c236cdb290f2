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

// failingKV возвращает заданные ошибки на чтение и запись.
type failingKV struct {
	getErr error
	setErr error
}

func (f failingKV) Get(context.Context, string) (string, error) { return "", f.getErr }
func (f failingKV) Set(context.Context, string, string) error   { return f.setErr }

func TestStorage_LoadEmpty(t *testing.T) {
	ctx := context.Background()
	kv := memory.NewKVStore()
	s := NewStorage(kv)

	c, err := s.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, c)
	require.Empty(t, c)

	require.NoError(t, kv.Set(ctx, StorageKey, ""))
	c, err = s.Load(ctx)
	require.NoError(t, err)
	require.Empty(t, c)
}

func TestStorage_ReadsLegacyBlob(t *testing.T) {
	ctx := context.Background()
	kv := memory.NewKVStore()
	legacy := `[{"id":"1","nome":"Camiseta","imagem":"img/c.png","preco":1234.56,"quantidade":2},` +
		`{"id":"2","nome":"Caneca","imagem":"","preco":0,"quantidade":null}]`
	require.NoError(t, kv.Set(ctx, StorageKey, legacy))

	c, err := NewStorage(kv).Load(ctx)
	require.NoError(t, err)
	require.Len(t, c, 2)
	require.Equal(t, "Camiseta", c[0].Name)
	require.Equal(t, "img/c.png", c[0].ImageRef)
	require.True(t, c[0].UnitPrice.Equal(decimal.RequireFromString("1234.56")))
	require.Equal(t, domain.QuantityOf(2), c[0].Quantity)
	require.False(t, c[1].Quantity.Valid())
}

func TestStorage_SaveWritesLegacyFormat(t *testing.T) {
	ctx := context.Background()
	kv := memory.NewKVStore()
	s := NewStorage(kv)

	c := domain.Cart{{
		ID:        "1",
		Name:      "Camiseta",
		ImageRef:  "img/c.png",
		UnitPrice: decimal.RequireFromString("10.00"),
		Quantity:  domain.QuantityOf(2),
	}}
	require.NoError(t, s.Save(ctx, c))

	raw, err := kv.Get(ctx, StorageKey)
	require.NoError(t, err)
	require.JSONEq(t, `[{"id":"1","nome":"Camiseta","imagem":"img/c.png","preco":10,"quantidade":2}]`, raw)
}

func TestStorage_RoundTrip(t *testing.T) {
	ctx := context.Background()
	kv := memory.NewKVStore()
	s := NewStorage(kv)
	blob := `[{"id":"7","nome":"A","imagem":"a.png","preco":0.1,"quantidade":3},{"id":"","nome":"","imagem":"","preco":99.9,"quantidade":null}]`
	require.NoError(t, kv.Set(ctx, StorageKey, blob))

	first, err := s.Load(ctx)
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, first))

	raw, err := kv.Get(ctx, StorageKey)
	require.NoError(t, err)
	require.JSONEq(t, blob, raw)

	second, err := s.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, len(first), len(second))
	for i := range first {
		require.Equal(t, first[i].ID, second[i].ID)
		require.True(t, first[i].UnitPrice.Equal(second[i].UnitPrice))
		require.Equal(t, first[i].Quantity, second[i].Quantity)
	}
}

func TestStorage_MalformedBlob(t *testing.T) {
	for _, blob := range []string{"{", "null", `{"id":"1"}`, `"carrinho"`, `[{"preco":"abc"}]`, `[{"quantidade":1.5}]`} {
		t.Run(blob, func(t *testing.T) {
			ctx := context.Background()
			kv := memory.NewKVStore()
			require.NoError(t, kv.Set(ctx, StorageKey, blob))

			_, err := NewStorage(kv).Load(ctx)
			require.Error(t, err)
			require.True(t, domain.IsMalformedCart(err), "unexpected error: %v", err)
		})
	}
}

func TestStorage_BackendErrors(t *testing.T) {
	boom := errors.New("boom")
	ctx := context.Background()

	_, err := NewStorage(failingKV{getErr: boom}).Load(ctx)
	require.ErrorIs(t, err, boom)

	err = NewStorage(failingKV{setErr: boom}).Save(ctx, domain.Cart{})
	require.ErrorIs(t, err, boom)
}
