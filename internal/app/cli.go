package app

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/streamline-storefront/internal/domain/catalog"
	"github.com/xenking/streamline-storefront/internal/domain/offer"
	"github.com/xenking/streamline-storefront/internal/storefront"
)

// StaffAPI groups the management operations used by the staff subcommands.
type StaffAPI interface {
	catalog.Manager
	offer.Manager
}

// CLI drives the storefront facade from positional command line arguments.
// It is a thin presentation layer: all state transitions happen in the
// facade and the cart store.
type CLI struct {
	Service *storefront.Service
	Catalog catalog.Source
	Offers  offer.Source
	Staff   StaffAPI
	Out     io.Writer
}

const usage = `Usage: storefront <command> [args]

Customer commands:
  items                      list the catalog
  offers                     list current offers
  cart                       show the cart and totals
  add <item-id> [qty]        add an item to the cart
  remove <item-id>           remove an item from the cart
  qty <item-id> <n>          set an item's quantity
  clear                      empty the cart
  apply-offers               match current offers against the cart
  checkout                   place the order

Staff commands:
  staff add-item <name> <category> <price> <stock>
  staff rm-item <item-id>
  staff add-offer <name> <category> <pct> <min-qty> <valid-until> [description]
  staff rm-offer <offer-id>
`

// Run dispatches a single command.
func (c *CLI) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(c.Out, usage)
		return nil
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "items":
		return c.listItems(ctx)
	case "offers":
		return c.listOffers(ctx)
	case "cart":
		return c.showCart()
	case "add":
		return c.addItem(ctx, rest)
	case "remove":
		return c.removeItem(ctx, rest)
	case "qty":
		return c.setQuantity(ctx, rest)
	case "clear":
		if err := c.Service.Store().Clear(ctx); err != nil {
			return err
		}
		fmt.Fprintln(c.Out, "Cart cleared")
		return nil
	case "apply-offers":
		return c.applyOffers(ctx)
	case "checkout":
		return c.checkout(ctx)
	case "staff":
		return c.staff(ctx, rest)
	case "help", "-h", "--help":
		fmt.Fprint(c.Out, usage)
		return nil
	default:
		return errors.Errorf("unknown command %q", cmd)
	}
}

func (c *CLI) listItems(ctx context.Context) error {
	items, err := c.Catalog.ListItems(ctx)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(c.Out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCATEGORY\tPRICE\tSTOCK")
	for _, it := range items {
		fmt.Fprintf(w, "%s\t%s\t%s\t$%s\t%d\n",
			it.ID, it.Name, it.Category, it.Price.StringFixed(2), it.Stock)
	}
	return w.Flush()
}

func (c *CLI) listOffers(ctx context.Context) error {
	offers, err := c.Offers.ListOffers(ctx)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(c.Out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCATEGORY\tDISCOUNT\tMIN QTY\tVALID UNTIL")
	for _, o := range offers {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s%%\t%d\t%s\n",
			o.ID, o.Name, o.Category, o.DiscountPercentage.String(),
			o.MinQuantity, o.ValidUntil.Format("2006-01-02"))
	}
	return w.Flush()
}

func (c *CLI) showCart() error {
	lines := c.Service.Store().Lines()
	if len(lines) == 0 {
		fmt.Fprintln(c.Out, "Your cart is empty")
		return nil
	}

	w := tabwriter.NewWriter(c.Out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tPRICE\tQTY\tTOTAL")
	for _, l := range lines {
		lineTotal := l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
		fmt.Fprintf(w, "%s\t%s\t$%s\t%d\t$%s\n",
			l.ItemID, l.Name, l.UnitPrice.StringFixed(2), l.Quantity, lineTotal.StringFixed(2))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	for _, o := range c.Service.Store().AppliedOffers() {
		fmt.Fprintf(c.Out, "Offer: %s (-%s%% on %s)\n", o.Name, o.DiscountPercentage.String(), o.Category)
	}
	t := c.Service.Totals()
	fmt.Fprintf(c.Out, "Subtotal: $%s\nDiscount: $%s\nTotal:    $%s\n",
		t.Subtotal.StringFixed(2), t.Discount.StringFixed(2), t.Total.StringFixed(2))
	return nil
}

func (c *CLI) addItem(ctx context.Context, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return errors.New("usage: add <item-id> [qty]")
	}
	qty := 1
	if len(args) == 2 {
		v, err := strconv.Atoi(args[1])
		if err != nil {
			return errors.Wrap(err, "parse quantity")
		}
		qty = v
	}

	items, err := c.Catalog.ListItems(ctx)
	if err != nil {
		return err
	}
	for _, it := range items {
		if it.ID != args[0] {
			continue
		}
		if err := c.Service.Store().Add(ctx, it, qty); err != nil {
			return err
		}
		fmt.Fprintf(c.Out, "Added %d x %s to cart\n", qty, it.Name)
		return nil
	}
	return errors.Wrapf(catalog.ErrNotFound, "item %q", args[0])
}

func (c *CLI) removeItem(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: remove <item-id>")
	}
	if err := c.Service.Store().Remove(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintln(c.Out, "Item removed from cart")
	return nil
}

func (c *CLI) setQuantity(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: qty <item-id> <n>")
	}
	qty, err := strconv.Atoi(args[1])
	if err != nil {
		return errors.Wrap(err, "parse quantity")
	}
	if err := c.Service.Store().SetQuantity(ctx, args[0], qty); err != nil {
		return err
	}
	fmt.Fprintf(c.Out, "Quantity of %s set to %d\n", args[0], qty)
	return nil
}

func (c *CLI) applyOffers(ctx context.Context) error {
	applied, err := c.Service.ApplyOffers(ctx)
	if err != nil {
		return err
	}
	if len(applied) == 0 {
		fmt.Fprintln(c.Out, "No applicable offers found")
		return nil
	}
	fmt.Fprintf(c.Out, "%d offer(s) applied\n", len(applied))
	return c.showCart()
}

func (c *CLI) checkout(ctx context.Context) error {
	p, err := c.Service.Checkout(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.Out, "Order placed: %d item(s), total $%s\n", len(p.Items), p.Total.StringFixed(2))
	return nil
}

func (c *CLI) staff(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: staff <add-item|rm-item|add-offer|rm-offer> ...")
	}
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "add-item":
		return c.staffAddItem(ctx, rest)
	case "rm-item":
		if len(rest) != 1 {
			return errors.New("usage: staff rm-item <item-id>")
		}
		if err := c.Staff.DeleteItem(ctx, rest[0]); err != nil {
			return err
		}
		fmt.Fprintln(c.Out, "Item deleted")
		return nil
	case "add-offer":
		return c.staffAddOffer(ctx, rest)
	case "rm-offer":
		if len(rest) != 1 {
			return errors.New("usage: staff rm-offer <offer-id>")
		}
		if err := c.Staff.DeleteOffer(ctx, rest[0]); err != nil {
			return err
		}
		fmt.Fprintln(c.Out, "Offer deleted")
		return nil
	default:
		return errors.Errorf("unknown staff command %q", cmd)
	}
}

func (c *CLI) staffAddItem(ctx context.Context, args []string) error {
	if len(args) != 4 {
		return errors.New("usage: staff add-item <name> <category> <price> <stock>")
	}
	price, err := decimal.NewFromString(args[2])
	if err != nil {
		return errors.Wrap(err, "parse price")
	}
	stock, err := strconv.Atoi(args[3])
	if err != nil {
		return errors.Wrap(err, "parse stock")
	}

	created, err := c.Staff.CreateItem(ctx, catalog.Item{
		Name:     args[0],
		Category: args[1],
		Price:    price,
		Stock:    stock,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(c.Out, "Item created: %s\n", created.ID)
	return nil
}

func (c *CLI) staffAddOffer(ctx context.Context, args []string) error {
	if len(args) < 5 || len(args) > 6 {
		return errors.New("usage: staff add-offer <name> <category> <pct> <min-qty> <valid-until> [description]")
	}
	pct, err := decimal.NewFromString(args[2])
	if err != nil {
		return errors.Wrap(err, "parse discount percentage")
	}
	minQty, err := strconv.Atoi(args[3])
	if err != nil {
		return errors.Wrap(err, "parse minimum quantity")
	}
	validUntil, err := time.Parse("2006-01-02", args[4])
	if err != nil {
		return errors.Wrap(err, "parse valid-until date")
	}
	description := ""
	if len(args) == 6 {
		description = args[5]
	}

	created, err := c.Staff.CreateOffer(ctx, offer.Offer{
		Name:               args[0],
		Description:        description,
		Category:           args[1],
		DiscountPercentage: pct,
		MinQuantity:        minQty,
		ValidUntil:         validUntil,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(c.Out, "Offer created: %s\n", created.ID)
	return nil
}
