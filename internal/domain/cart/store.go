package cart

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/streamline-storefront/internal/domain/catalog"
	"github.com/xenking/streamline-storefront/internal/domain/offer"
)

// snapshotVersion is bumped whenever the snapshot envelope changes shape.
// A snapshot with an unknown version is discarded, not migrated.
const snapshotVersion = 1

// snapshotEnvelope is the serialized form of the cart written to the
// snapshot store after every successful mutation.
type snapshotEnvelope struct {
	Version int           `json:"version"`
	Lines   []Line        `json:"lines"`
	Offers  []offer.Offer `json:"applied_offers"`
}

// Store owns the cart lines and the set of offers last matched against them.
// Every successful mutation persists the full cart state exactly once through
// the Snapshots interface.
//
// Mutations are expected to be driven by a single caller at a time; the
// internal mutex only protects reads that may happen concurrently with an
// in-flight checkout or offer fetch.
type Store struct {
	snaps Snapshots
	name  string

	mu      sync.Mutex
	lines   []Line
	applied []offer.Offer
}

// NewStore creates a Store restored from the named snapshot. An absent,
// unreadable, or stale-version snapshot results in an empty cart; corruption
// is logged and swallowed, never surfaced as an error.
func NewStore(ctx context.Context, snaps Snapshots, name string) *Store {
	s := &Store{snaps: snaps, name: name}
	s.restore(ctx)
	return s
}

func (s *Store) restore(ctx context.Context) {
	version, data, err := s.snaps.Load(ctx, s.name)
	if err != nil {
		if !errors.Is(err, ErrSnapshotNotFound) {
			zctx.From(ctx).Warn("Cart snapshot unreadable, starting empty", zap.Error(err))
		}
		return
	}
	if version != snapshotVersion {
		zctx.From(ctx).Warn("Cart snapshot version mismatch, starting empty",
			zap.Int("got", version), zap.Int("want", snapshotVersion))
		return
	}

	var env snapshotEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		zctx.From(ctx).Warn("Cart snapshot corrupt, starting empty", zap.Error(err))
		return
	}
	s.lines = env.Lines
	s.applied = env.Offers
}

// Add merges quantity into an existing line for the item or inserts a new
// line with a snapshot of the item's current price, category, and stock.
// The mutation is rejected with StockExceededError when the resulting
// quantity would exceed the item's stock; the cart is left unchanged.
func (s *Store) Add(ctx context.Context, item catalog.Item, qty int) error {
	if qty < 1 {
		return ErrInvalidQuantity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.lines {
		if s.lines[i].ItemID != item.ID {
			continue
		}
		if s.lines[i].Quantity+qty > item.Stock {
			return &StockExceededError{ItemID: item.ID, Stock: item.Stock}
		}
		s.lines[i].Quantity += qty
		return s.persistLocked(ctx)
	}

	if qty > item.Stock {
		return &StockExceededError{ItemID: item.ID, Stock: item.Stock}
	}
	s.lines = append(s.lines, Line{
		ItemID:    item.ID,
		Name:      item.Name,
		Category:  item.Category,
		UnitPrice: item.Price,
		Stock:     item.Stock,
		Quantity:  qty,
	})
	return s.persistLocked(ctx)
}

// Remove deletes the line for the given item. Removing an absent item is a
// no-op, not an error.
func (s *Store) Remove(ctx context.Context, itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.lines {
		if s.lines[i].ItemID != itemID {
			continue
		}
		s.lines = append(s.lines[:i], s.lines[i+1:]...)
		return s.persistLocked(ctx)
	}
	return nil
}

// SetQuantity overwrites the quantity of an existing line, subject to the
// line's stock ceiling. Setting quantity on an absent item is a no-op.
func (s *Store) SetQuantity(ctx context.Context, itemID string, qty int) error {
	if qty < 1 {
		return ErrInvalidQuantity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.lines {
		if s.lines[i].ItemID != itemID {
			continue
		}
		if qty > s.lines[i].Stock {
			return &StockExceededError{ItemID: itemID, Stock: s.lines[i].Stock}
		}
		s.lines[i].Quantity = qty
		return s.persistLocked(ctx)
	}
	return nil
}

// Clear empties the cart lines and resets the applied offer set. An applied
// set computed against an empty cart is meaningless.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lines = nil
	s.applied = nil
	return s.persistLocked(ctx)
}

// Lines returns a copy of the cart lines in insertion order.
func (s *Store) Lines() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Line, len(s.lines))
	copy(out, s.lines)
	return out
}

// AppliedOffers returns a copy of the offers last matched against the cart.
func (s *Store) AppliedOffers() []offer.Offer {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]offer.Offer, len(s.applied))
	copy(out, s.applied)
	return out
}

// SetAppliedOffers replaces the applied offer set and persists the cart.
func (s *Store) SetAppliedOffers(ctx context.Context, offers []offer.Offer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.applied = offers
	return s.persistLocked(ctx)
}

// persistLocked writes the full cart state to the snapshot store.
// Callers must hold s.mu.
func (s *Store) persistLocked(ctx context.Context) error {
	env := snapshotEnvelope{
		Version: snapshotVersion,
		Lines:   s.lines,
		Offers:  s.applied,
	}
	data, err := json.Marshal(env)
	if err != nil {
		return errors.Wrap(err, "marshal cart snapshot")
	}
	if err := s.snaps.Save(ctx, s.name, snapshotVersion, data); err != nil {
		return errors.Wrap(err, "persist cart")
	}
	return nil
}
