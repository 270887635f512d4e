package cart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshot(id uint, price string, quantity int) BookSnapshot {
	return BookSnapshot{ID: id, Title: "Book", Price: decimal.RequireFromString(price), Quantity: quantity}
}

func newStore(t *testing.T, items ...Item) (*Store, *MemoryPersistence) {
	t.Helper()
	p := NewMemoryPersistence(items...)
	s, err := NewStore(p)
	require.NoError(t, err)
	return s, p
}

func TestStore_AddToCartClampsToAvailable(t *testing.T) {
	s, _ := newStore(t)
	b := snapshot(1, "10", 3)

	require.NoError(t, s.AddToCart(b, 2))
	require.NoError(t, s.AddToCart(b, 2))

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].Quantity, "累加后截断到可售数量")
	assert.Equal(t, 3, items[0].MaxQuantity)

	require.NoError(t, s.AddToCart(snapshot(2, "10", 2), 5))
	assert.Equal(t, 2, s.Items()[1].Quantity, "首次加入也截断")
}

func TestStore_AddToCartDefaults(t *testing.T) {
	s, _ := newStore(t)

	require.NoError(t, s.AddToCart(snapshot(1, "10", 5), 0))
	assert.Equal(t, 1, s.Items()[0].Quantity, "数量默认为1")

	require.NoError(t, s.AddToCart(snapshot(2, "10", 0), 1), "售罄不报错")
	items := s.Items()
	require.Len(t, items, 2)
	assert.Equal(t, 0, items[1].Quantity)
	assert.Equal(t, 0, items[1].MaxQuantity)

	require.NoError(t, s.AddToCart(snapshot(2, "10", 0), 3))
	assert.Equal(t, 0, s.Items()[1].Quantity)
}

func TestStore_AddToCartKeepsCapFromFirstInsert(t *testing.T) {
	s, _ := newStore(t)
	require.NoError(t, s.AddToCart(snapshot(1, "10", 3), 1))

	// 再次加入时可售数量已变化，上限与快照仍为首次加入时的值
	restocked := snapshot(1, "12", 7)
	require.NoError(t, s.AddToCart(restocked, 5))

	item := s.Items()[0]
	assert.Equal(t, 3, item.MaxQuantity)
	assert.Equal(t, 3, item.Quantity)
	assert.Equal(t, "10", item.Book.Price.String())
}

func TestStore_PreservesInsertionOrder(t *testing.T) {
	s, _ := newStore(t)
	for _, id := range []uint{3, 1, 2} {
		require.NoError(t, s.AddToCart(snapshot(id, "1", 5), 1))
	}
	require.NoError(t, s.AddToCart(snapshot(1, "1", 5), 1))

	var ids []uint
	for _, item := range s.Items() {
		ids = append(ids, item.Book.ID)
	}
	assert.Equal(t, []uint{3, 1, 2}, ids)
}

func TestStore_UpdateQuantityDoesNotClamp(t *testing.T) {
	s, _ := newStore(t)
	require.NoError(t, s.AddToCart(snapshot(1, "10", 2), 1))

	require.NoError(t, s.UpdateQuantity(1, 9))
	assert.Equal(t, 9, s.Items()[0].Quantity)

	require.NoError(t, s.UpdateQuantity(1, 0))
	require.Len(t, s.Items(), 1, "数量为0时保留条目")
	assert.Equal(t, 0, s.Items()[0].Quantity)

	t.Run("不存在的图书不做任何事", func(t *testing.T) {
		s, p := newStore(t)
		require.NoError(t, s.UpdateQuantity(42, 1))
		assert.Empty(t, s.Items())
		assert.Equal(t, 0, p.Saves())
	})
}

func TestStore_RemoveClearAndTotal(t *testing.T) {
	s, p := newStore(t)
	require.NoError(t, s.AddToCart(snapshot(1, "10.50", 5), 2))
	require.NoError(t, s.AddToCart(snapshot(2, "3.25", 5), 1))

	assert.Equal(t, "24.25", s.Total().StringFixed(2))
	assert.Equal(t, 3, s.Count())

	require.NoError(t, s.RemoveFromCart(1))
	require.NoError(t, s.RemoveFromCart(99))
	assert.Len(t, s.Items(), 1)

	require.NoError(t, s.ClearCart())
	assert.Empty(t, s.Items())
	assert.True(t, s.Total().IsZero())
	assert.Equal(t, 4, p.Saves(), "每次实际修改后都保存")
}

func TestStore_LoadsPersistedItems(t *testing.T) {
	saved := Item{Book: snapshot(7, "4", 2), Quantity: 2, MaxQuantity: 2}
	s, _ := newStore(t, saved)

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, uint(7), items[0].Book.ID)

	// Items返回副本
	items[0].Quantity = 100
	assert.Equal(t, 2, s.Items()[0].Quantity)
}
