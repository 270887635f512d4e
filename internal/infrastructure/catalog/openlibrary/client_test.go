package openlibrary

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/bookmarket/internal/domain/book"
)

const sampleResponse = `{
	"numFound": 120,
	"docs": [
		{"key": "/works/OL45883W", "title": "Dune", "author_name": ["Frank Herbert"], "cover_i": 11481354,
		 "subject": ["Science Fiction"], "isbn": ["9780441172719"], "language": ["eng"],
		 "number_of_pages_median": 412, "first_publish_year": 1965},
		{"key": "/works/OL1W", "title": "Untitled"}
	]
}`

func TestClient_Search(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search.json", r.URL.Path)
		assert.Equal(t, "dune", r.URL.Query().Get("q"))
		assert.Equal(t, "2", r.URL.Query().Get("limit"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleResponse))
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	listings, total, err := c.Search(context.Background(), "dune", 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(120), total)
	require.Len(t, listings, 2)

	dune := listings[0]
	assert.Equal(t, "OL45883W", dune.Key)
	assert.Equal(t, "Frank Herbert", dune.Author)
	assert.Equal(t, "Science Fiction", dune.Category)
	assert.Equal(t, "https://covers.openlibrary.org/b/id/11481354-M.jpg", dune.CoverImage)
	assert.Equal(t, 412, dune.Pages)
	assert.Equal(t, book.ExternalSellerName, dune.Seller.Name)

	t.Run("缺失字段使用默认值", func(t *testing.T) {
		u := listings[1]
		assert.Equal(t, "Unknown Author", u.Author)
		assert.Equal(t, "Fiction", u.Category)
		assert.Equal(t, book.PlaceholderCover, u.CoverImage)
		assert.Equal(t, 200, u.Pages)
		assert.Equal(t, 2000, u.PublishedYear)
	})

	t.Run("派生值稳定且在范围内", func(t *testing.T) {
		again, _, err := c.Search(context.Background(), "dune", 1, 2)
		require.NoError(t, err)
		for i, l := range listings {
			assert.True(t, l.Price.Equal(again[i].Price), "价格应保持稳定")
			assert.Equal(t, l.Quantity, again[i].Quantity)
			assert.Equal(t, l.Condition, again[i].Condition)

			assert.True(t, l.Price.GreaterThanOrEqual(decimal.NewFromInt(5)), "价格不低于5")
			assert.True(t, l.OriginalPrice.GreaterThan(l.Price), "原价高于售价")
			assert.GreaterOrEqual(t, l.Quantity, 1)
			assert.LessOrEqual(t, l.Quantity, 10)
		}
	})
}

func TestClient_SearchUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	for i := 0; i < 3; i++ {
		_, _, err := c.Search(context.Background(), "dune", 1, 5)
		require.Error(t, err)
	}

	// 连续失败3次后熔断，不再请求上游
	srv.Close()
	_, _, err := c.Search(context.Background(), "dune", 1, 5)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "circuit breaker is open")
}

func TestClient_SearchClientErrorDoesNotTrip(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	for i := 0; i < 5; i++ {
		_, _, err := c.Search(context.Background(), "dune", 1, 5)
		require.Error(t, err)
		assert.NotContains(t, err.Error(), "circuit breaker is open")
	}
	assert.Equal(t, 5, calls)
}
