package catalog

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested item does not exist.
var ErrNotFound = errors.New("item not found")

// Item represents a catalog entry available for purchase. Price and Stock are
// a point-in-time snapshot of what the backend reported; the authoritative
// values live on the backend.
type Item struct {
	ID       string
	Name     string
	Category string
	Price    decimal.Decimal
	Stock    int
}

// Source provides read access to the catalog.
type Source interface {
	ListItems(ctx context.Context) ([]Item, error)
}

// Manager provides staff-side write access to the catalog.
type Manager interface {
	CreateItem(ctx context.Context, item Item) (Item, error)
	DeleteItem(ctx context.Context, id string) error
}
