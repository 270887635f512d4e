package localfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/bookmarket/internal/domain/cart"
)

func TestCartFile_RoundTripThroughStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "cart.json")

	store, err := cart.NewStore(NewCartFile(path))
	require.NoError(t, err)
	assert.Empty(t, store.Items(), "文件不存在时为空购物车")

	book := cart.BookSnapshot{ID: 3, Title: "Dune", Price: decimal.RequireFromString("8.50"), Quantity: 2}
	require.NoError(t, store.AddToCart(book, 1))

	reopened, err := cart.NewStore(NewCartFile(path))
	require.NoError(t, err)
	items := reopened.Items()
	require.Len(t, items, 1)
	assert.Equal(t, uint(3), items[0].Book.ID)
	assert.True(t, decimal.RequireFromString("8.5").Equal(items[0].Book.Price))
	assert.Equal(t, 2, items[0].MaxQuantity)

	require.NoError(t, reopened.ClearCart())
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, "[]", string(data))
}

func TestCartFile_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cart.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := NewCartFile(path).Load()
	assert.Error(t, err)
}
