package offer

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Offer is a percentage discount rule scoped to a category and a minimum
// purchased quantity. Offers are immutable snapshots fetched from the backend;
// this package only filters and aggregates them.
type Offer struct {
	ID                 string          `json:"id"`
	Name               string          `json:"name"`
	Description        string          `json:"description"`
	Category           string          `json:"category"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage"`
	MinQuantity        int             `json:"min_quantity"`
	ValidUntil         time.Time       `json:"valid_until"`
}

// Line represents a cart line for offer matching purposes.
type Line struct {
	Category  string
	UnitPrice decimal.Decimal
	Quantity  int
}

// Source provides read access to the current promotional offers.
type Source interface {
	ListOffers(ctx context.Context) ([]Offer, error)
}

// Manager provides staff-side write access to offers.
type Manager interface {
	CreateOffer(ctx context.Context, o Offer) (Offer, error)
	DeleteOffer(ctx context.Context, id string) error
}
