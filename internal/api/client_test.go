package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/streamline-storefront/internal/domain/catalog"
	"github.com/xenking/streamline-storefront/internal/domain/offer"
	"github.com/xenking/streamline-storefront/internal/storefront"
)

func catalogItem(name, category, price string, stock int) catalog.Item {
	return catalog.Item{
		Name:     name,
		Category: category,
		Price:    decimal.RequireFromString(price),
		Stock:    stock,
	}
}

func TestClient_ListItems(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/items", r.URL.Path)
		io.WriteString(w, `[
			{"id":"i1","name":"Cola","category":"drinks","price":2.5,"stock":10},
			{"id":"i2","name":"Chips","category":"snacks","price":1.99,"stock":0,"extra":"ignored"}
		]`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	items, err := c.ListItems(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "i1", items[0].ID)
	assert.Equal(t, "Cola", items[0].Name)
	assert.Equal(t, "drinks", items[0].Category)
	assert.True(t, items[0].Price.Equal(decimal.RequireFromString("2.5")))
	assert.Equal(t, 10, items[0].Stock)

	assert.Equal(t, 0, items[1].Stock)
	assert.True(t, items[1].Price.Equal(decimal.RequireFromString("1.99")))
}

func TestClient_ListOffers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/offers", r.URL.Path)
		io.WriteString(w, `[
			{"id":"o1","name":"Happy Hour","description":"drinks deal","category":"drinks",
			 "discountPercentage":10,"minQuantity":3,"validUntil":"2026-12-31"},
			{"id":"o2","name":"Bulk Snacks","description":"","category":"snacks",
			 "discountPercentage":12.5,"minQuantity":5,"validUntil":"2026-06-30T00:00:00Z"}
		]`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	offers, err := c.ListOffers(context.Background())
	require.NoError(t, err)
	require.Len(t, offers, 2)

	assert.Equal(t, "o1", offers[0].ID)
	assert.True(t, offers[0].DiscountPercentage.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, 3, offers[0].MinQuantity)
	assert.Equal(t, time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC), offers[0].ValidUntil)

	assert.True(t, offers[1].DiscountPercentage.Equal(decimal.RequireFromString("12.5")))
	assert.Equal(t, time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC), offers[1].ValidUntil)
}

func TestClient_ListItemsMalformed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, `{"not":"an array"}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	_, err := c.ListItems(context.Background())
	require.Error(t, err)
}

func TestClient_BackendErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	_, err := c.ListOffers(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestClient_PlaceOrder(t *testing.T) {
	var body []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/orders", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	err := c.PlaceOrder(context.Background(), storefront.Payload{
		Items: []storefront.PayloadItem{
			{ID: "i1", Quantity: 4},
			{ID: "i2", Quantity: 1},
		},
		AppliedOffers: []string{"o1"},
		Subtotal:      decimal.RequireFromString("12.50"),
		Discount:      decimal.RequireFromString("1.25"),
		Total:         decimal.RequireFromString("11.25"),
	})
	require.NoError(t, err)

	var got struct {
		Items []struct {
			ID       string `json:"id"`
			Quantity int    `json:"quantity"`
		} `json:"items"`
		AppliedOffers []string `json:"appliedOffers"`
		Subtotal      float64  `json:"subtotal"`
		Discount      float64  `json:"discount"`
		Total         float64  `json:"total"`
	}
	require.NoError(t, json.Unmarshal(body, &got))
	require.Len(t, got.Items, 2)
	assert.Equal(t, "i1", got.Items[0].ID)
	assert.Equal(t, 4, got.Items[0].Quantity)
	assert.Equal(t, []string{"o1"}, got.AppliedOffers)
	assert.InDelta(t, 12.50, got.Subtotal, 0.001)
	assert.InDelta(t, 1.25, got.Discount, 0.001)
	assert.InDelta(t, 11.25, got.Total, 0.001)
}

func TestClient_PlaceOrderRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "out of stock", http.StatusConflict)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	err := c.PlaceOrder(context.Background(), storefront.Payload{
		Items: []storefront.PayloadItem{{ID: "i1", Quantity: 1}},
	})
	require.Error(t, err)
}

func TestClient_CreateItem(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/items-management", r.URL.Path)

		var got map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		assert.Equal(t, "Cola", got["name"])
		assert.NotContains(t, got, "id") // backend assigns the ID

		io.WriteString(w, `{"id":"i9","name":"Cola","category":"drinks","price":2.5,"stock":10}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	created, err := c.CreateItem(context.Background(), catalogItem("Cola", "drinks", "2.5", 10))
	require.NoError(t, err)
	assert.Equal(t, "i9", created.ID)
}

func TestClient_DeleteOffer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/offers-management/o1", r.URL.Path)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	require.NoError(t, c.DeleteOffer(context.Background(), "o1"))
}

func TestClient_CreateOfferEncodesDate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var got map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		assert.Equal(t, "2026-12-31", got["validUntil"])
		assert.InDelta(t, 10.0, got["discountPercentage"], 0.001)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	_, err := c.CreateOffer(context.Background(), offer.Offer{
		Name:               "Happy Hour",
		Category:           "drinks",
		DiscountPercentage: decimal.NewFromInt(10),
		MinQuantity:        3,
		ValidUntil:         time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
}
