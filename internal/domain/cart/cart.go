package cart

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/streamline-storefront/internal/domain/offer"
)

var (
	// ErrInvalidQuantity is returned when a mutation asks for a quantity
	// below 1.
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	// ErrSnapshotNotFound is returned by a Snapshots implementation when no
	// snapshot exists under the requested name.
	ErrSnapshotNotFound = errors.New("snapshot not found")
)

// StockExceededError indicates a mutation would push a line's quantity above
// the known stock ceiling. The cart is left unchanged.
type StockExceededError struct {
	ItemID string
	Stock  int
}

func (e *StockExceededError) Error() string {
	return fmt.Sprintf("only %d of item %s in stock", e.Stock, e.ItemID)
}

// Line is one (item, quantity) entry in the cart. Name, Category, UnitPrice
// and Stock are snapshots of the catalog item taken when the line was added.
//
// Invariant: 0 < Quantity <= Stock for every line committed to the store.
type Line struct {
	ItemID    string          `json:"item_id"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Stock     int             `json:"stock"`
	Quantity  int             `json:"quantity"`
}

// OfferLine converts the line to the shape the offer matcher consumes.
func (l Line) OfferLine() offer.Line {
	return offer.Line{
		Category:  l.Category,
		UnitPrice: l.UnitPrice,
		Quantity:  l.Quantity,
	}
}

// Snapshots persists named cart snapshots across sessions.
type Snapshots interface {
	Save(ctx context.Context, name string, version int, data []byte) error
	Load(ctx context.Context, name string) (version int, data []byte, err error)
}
