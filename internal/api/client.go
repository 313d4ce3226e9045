// Package api implements the typed HTTP/JSON client for the external
// StreamLine backend. The backend owns all authoritative state; this client
// only consumes its response shapes.
package api

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-faster/errors"

	"github.com/xenking/streamline-storefront/internal/domain/catalog"
	"github.com/xenking/streamline-storefront/internal/domain/offer"
	"github.com/xenking/streamline-storefront/internal/storefront"
)

// Compile-time checks that the client satisfies the domain-facing interfaces.
var (
	_ catalog.Source            = (*Client)(nil)
	_ catalog.Manager           = (*Client)(nil)
	_ offer.Source              = (*Client)(nil)
	_ offer.Manager             = (*Client)(nil)
	_ storefront.OrderSubmitter = (*Client)(nil)
)

// maxResponseBytes caps how much of a backend response is read into memory.
const maxResponseBytes = 8 << 20

// Client talks to the backend API over JSON/HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a Client for the given base URL. When hc is nil a default
// client with a 30 second timeout is used.
func NewClient(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    hc,
	}
}

// ListItems fetches the catalog.
func (c *Client) ListItems(ctx context.Context) ([]catalog.Item, error) {
	body, err := c.do(ctx, http.MethodGet, "/items", nil)
	if err != nil {
		return nil, errors.Wrap(err, "list items")
	}
	items, err := decodeItems(body)
	if err != nil {
		return nil, errors.Wrap(err, "decode items")
	}
	return items, nil
}

// ListOffers fetches the current promotional offers.
func (c *Client) ListOffers(ctx context.Context) ([]offer.Offer, error) {
	body, err := c.do(ctx, http.MethodGet, "/offers", nil)
	if err != nil {
		return nil, errors.Wrap(err, "list offers")
	}
	offers, err := decodeOffers(body)
	if err != nil {
		return nil, errors.Wrap(err, "decode offers")
	}
	return offers, nil
}

// PlaceOrder submits a checkout payload. Only the ok/not-ok status of the
// response is relied upon; any 2xx is success.
func (c *Client) PlaceOrder(ctx context.Context, p storefront.Payload) error {
	if _, err := c.do(ctx, http.MethodPost, "/orders", encodeOrder(p)); err != nil {
		return errors.Wrap(err, "place order")
	}
	return nil
}

// CreateItem adds a catalog item through the staff management endpoint. The
// backend assigns the ID.
func (c *Client) CreateItem(ctx context.Context, item catalog.Item) (catalog.Item, error) {
	body, err := c.do(ctx, http.MethodPost, "/items-management", encodeItem(item))
	if err != nil {
		return catalog.Item{}, errors.Wrap(err, "create item")
	}
	if len(body) == 0 {
		return item, nil
	}
	created, err := decodeSingleItem(body)
	if err != nil {
		return catalog.Item{}, errors.Wrap(err, "decode created item")
	}
	return created, nil
}

// DeleteItem removes a catalog item through the staff management endpoint.
func (c *Client) DeleteItem(ctx context.Context, id string) error {
	if _, err := c.do(ctx, http.MethodDelete, "/items-management/"+id, nil); err != nil {
		return errors.Wrap(err, "delete item")
	}
	return nil
}

// CreateOffer adds an offer through the staff management endpoint.
func (c *Client) CreateOffer(ctx context.Context, o offer.Offer) (offer.Offer, error) {
	body, err := c.do(ctx, http.MethodPost, "/offers-management", encodeOffer(o))
	if err != nil {
		return offer.Offer{}, errors.Wrap(err, "create offer")
	}
	if len(body) == 0 {
		return o, nil
	}
	created, err := decodeSingleOffer(body)
	if err != nil {
		return offer.Offer{}, errors.Wrap(err, "decode created offer")
	}
	return created, nil
}

// DeleteOffer removes an offer through the staff management endpoint.
func (c *Client) DeleteOffer(ctx context.Context, id string) error {
	if _, err := c.do(ctx, http.MethodDelete, "/offers-management/"+id, nil); err != nil {
		return errors.Wrap(err, "delete offer")
	}
	return nil
}

// do performs a single request and returns the response body for 2xx
// statuses. Non-2xx responses become errors carrying the status and a body
// snippet.
func (c *Client) do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, errors.Wrap(err, "create request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "execute request")
	}
	defer res.Body.Close()

	data, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBytes))
	if err != nil {
		return nil, errors.Wrap(err, "read response")
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, errors.Errorf("backend returned status %d: %s", res.StatusCode, bodySnippet(data))
	}
	return data, nil
}

func bodySnippet(data []byte) string {
	const max = 256
	if len(data) > max {
		data = data[:max]
	}
	return string(data)
}
