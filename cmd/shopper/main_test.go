package main

import (
	"bytes"
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appbook "github.com/xiebiao/bookmarket/internal/application/book"
	apporder "github.com/xiebiao/bookmarket/internal/application/order"
	"github.com/xiebiao/bookmarket/internal/domain/cart"
	"github.com/xiebiao/bookmarket/internal/interface/http/dto"
	"github.com/xiebiao/bookmarket/pkg/client"
)

type fakeAPI struct {
	books       map[uint]appbook.BookResponse
	checkouts   []dto.CheckoutRequest
	checkoutErr error
}

func (f *fakeAPI) GetBook(_ context.Context, id uint) (*appbook.BookResponse, error) {
	b, ok := f.books[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return &b, nil
}

func (f *fakeAPI) ListBooks(_ context.Context, _ url.Values) (*client.BookPage, error) {
	page := &client.BookPage{}
	for _, b := range f.books {
		page.List = append(page.List, b)
	}
	page.Total = int64(len(page.List))
	return page, nil
}

func (f *fakeAPI) Checkout(_ context.Context, req dto.CheckoutRequest) (*apporder.CheckoutResponse, error) {
	if f.checkoutErr != nil {
		return nil, f.checkoutErr
	}
	f.checkouts = append(f.checkouts, req)
	return &apporder.CheckoutResponse{SessionID: "cs_1", URL: "https://checkout/cs_1", OrderNo: "ORD1"}, nil
}

func newShopper(t *testing.T) (*shopper, *fakeAPI, *bytes.Buffer) {
	t.Helper()
	store, err := cart.NewStore(cart.NewMemoryPersistence())
	require.NoError(t, err)

	api := &fakeAPI{books: map[uint]appbook.BookResponse{
		1: {ID: 1, Title: "Dune", Author: "Frank Herbert", Price: decimal.NewFromInt(10), Quantity: 2},
	}}
	out := &bytes.Buffer{}
	return &shopper{store: store, api: api, out: out}, api, out
}

func TestShopper_AddClampsToStock(t *testing.T) {
	s, _, out := newShopper(t)
	ctx := context.Background()

	require.NoError(t, s.dispatch(ctx, []string{"add", "1"}, 1))
	require.NoError(t, s.dispatch(ctx, []string{"add", "1"}, 5))

	items := s.store.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Contains(t, out.String(), "$20.00")
}

func TestShopper_CheckoutClearsCart(t *testing.T) {
	s, api, out := newShopper(t)
	ctx := context.Background()

	require.NoError(t, s.dispatch(ctx, []string{"add", "1"}, 1))
	require.NoError(t, s.dispatch(ctx, []string{"checkout"}, 1))

	require.Len(t, api.checkouts, 1)
	assert.Equal(t, []dto.CheckoutItemRequest{{BookID: 1, Quantity: 1}}, api.checkouts[0].Items)
	assert.Empty(t, s.store.Items())
	assert.Contains(t, out.String(), "https://checkout/cs_1")
}

func TestShopper_CheckoutFailureKeepsCart(t *testing.T) {
	s, api, _ := newShopper(t)
	ctx := context.Background()
	api.checkoutErr = errors.New("checkout failed")

	require.NoError(t, s.dispatch(ctx, []string{"add", "1"}, 1))
	require.Error(t, s.dispatch(ctx, []string{"checkout"}, 1))
	assert.Len(t, s.store.Items(), 1)
}

func TestShopper_Commands(t *testing.T) {
	s, _, out := newShopper(t)
	ctx := context.Background()

	require.NoError(t, s.dispatch(ctx, []string{"add", "1"}, 1))
	require.NoError(t, s.dispatch(ctx, []string{"set", "1", "5"}, 1))
	assert.Equal(t, 5, s.store.Items()[0].Quantity)

	require.NoError(t, s.dispatch(ctx, []string{"remove", "1"}, 1))
	assert.Empty(t, s.store.Items())
	assert.Contains(t, out.String(), "购物车为空")

	require.NoError(t, s.dispatch(ctx, []string{"list"}, 1))
	assert.Contains(t, out.String(), "Dune")

	assert.Error(t, s.dispatch(ctx, []string{"add"}, 1))
	assert.Error(t, s.dispatch(ctx, []string{"add", "x"}, 1))
	assert.Error(t, s.dispatch(ctx, []string{"fly"}, 1))
	assert.Error(t, s.dispatch(ctx, nil, 1))
}
