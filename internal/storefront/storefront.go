// Package storefront composes the cart store, offer matcher, and backend
// client into the single interface the UI layer consumes.
package storefront

import (
	"context"
	"sync/atomic"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/xenking/streamline-storefront/internal/domain/cart"
	"github.com/xenking/streamline-storefront/internal/domain/offer"
)

var (
	// ErrOffersUnavailable is returned when the offers source is unreachable
	// or returns malformed data. The previously applied offer set is kept.
	ErrOffersUnavailable = errors.New("offers unavailable")
	// ErrCheckoutFailed is returned when order submission fails. The cart is
	// preserved so the user can retry.
	ErrCheckoutFailed = errors.New("checkout failed")
	// ErrCheckoutInFlight is returned when a checkout is attempted while a
	// previous submission for the same cart session is still pending.
	ErrCheckoutInFlight = errors.New("checkout already in progress")
	// ErrEmptyCart is returned when checking out an empty cart.
	ErrEmptyCart = errors.New("cart is empty")
)

// Payload is the finalized order representation sent to the ordering endpoint.
type Payload struct {
	Items         []PayloadItem
	AppliedOffers []string
	Subtotal      decimal.Decimal
	Discount      decimal.Decimal
	Total         decimal.Decimal
}

// PayloadItem is one (item, quantity) entry of the checkout payload.
type PayloadItem struct {
	ID       string
	Quantity int
}

// Totals holds the derived cart amounts. They are always recomputed from the
// cart lines and the applied offer set, never stored.
type Totals struct {
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Total    decimal.Decimal
}

// OrderSubmitter submits a finalized order to the backend.
type OrderSubmitter interface {
	PlaceOrder(ctx context.Context, p Payload) error
}

// Service is the cart facade: it owns offer application and checkout on top
// of the cart store.
type Service struct {
	store  *cart.Store
	offers offer.Source
	orders OrderSubmitter

	// inFlight guards the single-flight checkout policy per cart session.
	inFlight atomic.Bool
}

// NewService creates the facade over the given store and backend collaborators.
func NewService(store *cart.Store, offers offer.Source, orders OrderSubmitter) *Service {
	return &Service{
		store:  store,
		offers: offers,
		orders: orders,
	}
}

// Store exposes the underlying cart store for direct mutations.
func (s *Service) Store() *cart.Store { return s.store }

// Totals recomputes subtotal, discount, and total from the current lines and
// the offers applied by the last ApplyOffers call.
//
// Total is deliberately not floored at zero: additive stacking of offers on
// the same category can push the discount past the subtotal.
// TODO: decide whether production wants a floor at zero before offers stack
// that high in practice.
func (s *Service) Totals() Totals {
	lines := s.store.Lines()
	subtotal := cart.Subtotal(lines)
	discount := offer.Discount(offerLines(lines), s.store.AppliedOffers())
	return Totals{
		Subtotal: subtotal,
		Discount: discount,
		Total:    subtotal.Sub(discount),
	}
}

// ApplyOffers fetches the current offers from the backend, matches them
// against the cart, and commits the new applied set. The set is recomputed
// only on this explicit call, not reactively on every cart change.
//
// When the fetch fails the previous applied set and discount stay untouched
// and ErrOffersUnavailable is returned.
func (s *Service) ApplyOffers(ctx context.Context) ([]offer.Offer, error) {
	candidates, err := s.offers.ListOffers(ctx)
	if err != nil {
		zctx.From(ctx).Warn("Offer fetch failed, keeping previous applied set", zap.Error(err))
		return nil, ErrOffersUnavailable
	}

	applied, _ := offer.Match(offerLines(s.store.Lines()), candidates)
	if err := s.store.SetAppliedOffers(ctx, applied); err != nil {
		return nil, err
	}
	return applied, nil
}

// CheckoutPayload builds the order representation for submission. Monetary
// amounts are rounded to two decimal places at this boundary only.
func (s *Service) CheckoutPayload() Payload {
	lines := s.store.Lines()
	applied := s.store.AppliedOffers()
	totals := s.Totals()

	items := make([]PayloadItem, len(lines))
	for i, l := range lines {
		items[i] = PayloadItem{ID: l.ItemID, Quantity: l.Quantity}
	}
	offerIDs := make([]string, len(applied))
	for i, o := range applied {
		offerIDs[i] = o.ID
	}

	return Payload{
		Items:         items,
		AppliedOffers: offerIDs,
		Subtotal:      totals.Subtotal.Round(2),
		Discount:      totals.Discount.Round(2),
		Total:         totals.Total.Round(2),
	}
}

// Checkout submits the current cart as an order. On success the cart and the
// applied offer set are cleared; on failure both are preserved for retry.
// A second checkout for the same cart session while one is pending is
// rejected with ErrCheckoutInFlight.
func (s *Service) Checkout(ctx context.Context) (Payload, error) {
	if !s.inFlight.CompareAndSwap(false, true) {
		return Payload{}, ErrCheckoutInFlight
	}
	defer s.inFlight.Store(false)

	p := s.CheckoutPayload()
	if len(p.Items) == 0 {
		return Payload{}, ErrEmptyCart
	}

	if err := s.orders.PlaceOrder(ctx, p); err != nil {
		zctx.From(ctx).Warn("Order submission failed, cart preserved", zap.Error(err))
		return Payload{}, ErrCheckoutFailed
	}

	if err := s.store.Clear(ctx); err != nil {
		// The order went through; only the local snapshot write failed.
		return p, err
	}
	return p, nil
}

func offerLines(lines []cart.Line) []offer.Line {
	out := make([]offer.Line, len(lines))
	for i, l := range lines {
		out[i] = l.OfferLine()
	}
	return out
}
