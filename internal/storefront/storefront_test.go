package storefront

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/streamline-storefront/internal/domain/cart"
	"github.com/xenking/streamline-storefront/internal/domain/catalog"
	"github.com/xenking/streamline-storefront/internal/domain/offer"
)

type memSnapshots struct {
	version int
	data    []byte
}

func (m *memSnapshots) Save(_ context.Context, _ string, version int, data []byte) error {
	m.version = version
	m.data = append([]byte(nil), data...)
	return nil
}

func (m *memSnapshots) Load(_ context.Context, _ string) (int, []byte, error) {
	if m.data == nil {
		return 0, nil, cart.ErrSnapshotNotFound
	}
	return m.version, m.data, nil
}

type stubOffers struct {
	offers []offer.Offer
	err    error
}

func (s *stubOffers) ListOffers(_ context.Context) ([]offer.Offer, error) {
	return s.offers, s.err
}

type stubOrders struct {
	err   error
	calls int
	last  Payload

	// started/release coordinate the single-flight test.
	started chan struct{}
	release chan struct{}
}

func (s *stubOrders) PlaceOrder(_ context.Context, p Payload) error {
	s.calls++
	s.last = p
	if s.started != nil {
		close(s.started)
		<-s.release
	}
	return s.err
}

func newTestService(t *testing.T, offers *stubOffers, orders *stubOrders) (*Service, *memSnapshots) {
	t.Helper()
	snaps := &memSnapshots{}
	store := cart.NewStore(context.Background(), snaps, "cart")
	return NewService(store, offers, orders), snaps
}

func addLine(t *testing.T, svc *Service, id, category, price string, stock, qty int) {
	t.Helper()
	require.NoError(t, svc.Store().Add(context.Background(), catalog.Item{
		ID:       id,
		Name:     "Item " + id,
		Category: category,
		Price:    decimal.RequireFromString(price),
		Stock:    stock,
	}, qty))
}

func TestService_TotalsEmptyCart(t *testing.T) {
	svc, _ := newTestService(t, &stubOffers{}, &stubOrders{})

	got := svc.Totals()
	assert.True(t, got.Subtotal.IsZero())
	assert.True(t, got.Discount.IsZero())
	assert.True(t, got.Total.IsZero())
}

func TestService_ApplyOffers(t *testing.T) {
	ctx := context.Background()
	offers := &stubOffers{offers: []offer.Offer{
		{ID: "o1", Category: "drinks", DiscountPercentage: decimal.NewFromInt(10), MinQuantity: 3},
		{ID: "o2", Category: "snacks", DiscountPercentage: decimal.NewFromInt(50), MinQuantity: 10},
	}}
	svc, _ := newTestService(t, offers, &stubOrders{})
	addLine(t, svc, "i1", "drinks", "2.00", 10, 5)

	applied, err := svc.ApplyOffers(ctx)
	require.NoError(t, err)
	require.Len(t, applied, 1)
	assert.Equal(t, "o1", applied[0].ID)

	got := svc.Totals()
	assert.True(t, got.Subtotal.Equal(decimal.RequireFromString("10")))
	assert.True(t, got.Discount.Equal(decimal.RequireFromString("1")))
	assert.True(t, got.Total.Equal(decimal.RequireFromString("9")))
}

func TestService_ApplyOffersUnavailableKeepsPreviousSet(t *testing.T) {
	ctx := context.Background()
	offers := &stubOffers{offers: []offer.Offer{
		{ID: "o1", Category: "drinks", DiscountPercentage: decimal.NewFromInt(10), MinQuantity: 1},
	}}
	svc, _ := newTestService(t, offers, &stubOrders{})
	addLine(t, svc, "i1", "drinks", "2.00", 10, 5)

	_, err := svc.ApplyOffers(ctx)
	require.NoError(t, err)
	before := svc.Totals()

	offers.err = errors.New("backend down")
	_, err = svc.ApplyOffers(ctx)
	require.ErrorIs(t, err, ErrOffersUnavailable)

	applied := svc.Store().AppliedOffers()
	require.Len(t, applied, 1)
	assert.Equal(t, "o1", applied[0].ID)
	assert.True(t, before.Discount.Equal(svc.Totals().Discount))
}

func TestService_TotalsMayGoNegative(t *testing.T) {
	// Additive stacking is uncapped: 60% + 70% on the same category pushes
	// the discount past the subtotal. Preserved behaviour, no floor at zero.
	ctx := context.Background()
	offers := &stubOffers{offers: []offer.Offer{
		{ID: "o1", Category: "drinks", DiscountPercentage: decimal.NewFromInt(60), MinQuantity: 1},
		{ID: "o2", Category: "drinks", DiscountPercentage: decimal.NewFromInt(70), MinQuantity: 1},
	}}
	svc, _ := newTestService(t, offers, &stubOrders{})
	addLine(t, svc, "i1", "drinks", "25.00", 10, 4) // subtotal 100

	_, err := svc.ApplyOffers(ctx)
	require.NoError(t, err)

	got := svc.Totals()
	assert.True(t, got.Discount.Equal(decimal.RequireFromString("130")))
	assert.True(t, got.Total.Equal(decimal.RequireFromString("-30")))
}

func TestService_CheckoutPayload(t *testing.T) {
	ctx := context.Background()
	offers := &stubOffers{offers: []offer.Offer{
		{ID: "o1", Category: "drinks", DiscountPercentage: decimal.NewFromInt(10), MinQuantity: 1},
	}}
	svc, _ := newTestService(t, offers, &stubOrders{})
	addLine(t, svc, "i1", "drinks", "2.50", 10, 4)
	addLine(t, svc, "i2", "snacks", "1.25", 10, 2)

	_, err := svc.ApplyOffers(ctx)
	require.NoError(t, err)

	p := svc.CheckoutPayload()
	require.Len(t, p.Items, 2)
	assert.Equal(t, PayloadItem{ID: "i1", Quantity: 4}, p.Items[0])
	assert.Equal(t, PayloadItem{ID: "i2", Quantity: 2}, p.Items[1])
	assert.Equal(t, []string{"o1"}, p.AppliedOffers)
	assert.True(t, p.Subtotal.Equal(decimal.RequireFromString("12.50")))
	assert.True(t, p.Discount.Equal(decimal.RequireFromString("1")))
	assert.True(t, p.Total.Equal(decimal.RequireFromString("11.50")))
}

func TestService_CheckoutSuccessClearsCartAndSnapshot(t *testing.T) {
	ctx := context.Background()
	orders := &stubOrders{}
	svc, snaps := newTestService(t, &stubOffers{}, orders)
	addLine(t, svc, "i1", "drinks", "2.50", 10, 4)

	p, err := svc.Checkout(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, orders.calls)
	assert.Len(t, p.Items, 1)

	assert.Empty(t, svc.Store().Lines())
	assert.Empty(t, svc.Store().AppliedOffers())

	// The persisted snapshot reflects the empty cart.
	var env struct {
		Lines []cart.Line `json:"lines"`
	}
	require.NoError(t, json.Unmarshal(snaps.data, &env))
	assert.Empty(t, env.Lines)
}

func TestService_CheckoutFailurePreservesCart(t *testing.T) {
	ctx := context.Background()
	orders := &stubOrders{err: errors.New("backend rejected order")}
	svc, _ := newTestService(t, &stubOffers{}, orders)
	addLine(t, svc, "i1", "drinks", "2.50", 10, 4)

	_, err := svc.Checkout(ctx)
	require.ErrorIs(t, err, ErrCheckoutFailed)

	lines := svc.Store().Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 4, lines[0].Quantity)
}

func TestService_CheckoutEmptyCart(t *testing.T) {
	svc, _ := newTestService(t, &stubOffers{}, &stubOrders{})

	_, err := svc.Checkout(context.Background())
	require.ErrorIs(t, err, ErrEmptyCart)
}

func TestService_CheckoutSingleFlight(t *testing.T) {
	ctx := context.Background()
	orders := &stubOrders{
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	svc, _ := newTestService(t, &stubOffers{}, orders)
	addLine(t, svc, "i1", "drinks", "2.50", 10, 4)

	done := make(chan error, 1)
	go func() {
		_, err := svc.Checkout(ctx)
		done <- err
	}()

	select {
	case <-orders.started:
	case <-time.After(5 * time.Second):
		t.Fatal("first checkout never reached the submitter")
	}

	_, err := svc.Checkout(ctx)
	require.ErrorIs(t, err, ErrCheckoutInFlight)

	close(orders.release)
	require.NoError(t, <-done)
	assert.Equal(t, 1, orders.calls)
}
