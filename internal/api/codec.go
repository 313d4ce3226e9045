package api

import (
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/xenking/streamline-storefront/internal/domain/catalog"
	"github.com/xenking/streamline-storefront/internal/domain/offer"
	"github.com/xenking/streamline-storefront/internal/storefront"
)

// validUntilFormat is the date-only layout the backend uses for offer expiry.
const validUntilFormat = "2006-01-02"

func decodeItems(data []byte) ([]catalog.Item, error) {
	d := jx.DecodeBytes(data)
	var items []catalog.Item
	if err := d.Arr(func(d *jx.Decoder) error {
		it, err := decodeItem(d)
		if err != nil {
			return err
		}
		items = append(items, it)
		return nil
	}); err != nil {
		return nil, err
	}
	return items, nil
}

func decodeSingleItem(data []byte) (catalog.Item, error) {
	return decodeItem(jx.DecodeBytes(data))
}

func decodeItem(d *jx.Decoder) (catalog.Item, error) {
	var it catalog.Item
	err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		switch string(key) {
		case "id":
			v, err := d.Str()
			it.ID = v
			return err
		case "name":
			v, err := d.Str()
			it.Name = v
			return err
		case "category":
			v, err := d.Str()
			it.Category = v
			return err
		case "price":
			v, err := decodeDecimal(d)
			it.Price = v
			return err
		case "stock":
			v, err := d.Int()
			it.Stock = v
			return err
		default:
			return d.Skip()
		}
	})
	return it, err
}

func decodeOffers(data []byte) ([]offer.Offer, error) {
	d := jx.DecodeBytes(data)
	var offers []offer.Offer
	if err := d.Arr(func(d *jx.Decoder) error {
		o, err := decodeOffer(d)
		if err != nil {
			return err
		}
		offers = append(offers, o)
		return nil
	}); err != nil {
		return nil, err
	}
	return offers, nil
}

func decodeSingleOffer(data []byte) (offer.Offer, error) {
	return decodeOffer(jx.DecodeBytes(data))
}

func decodeOffer(d *jx.Decoder) (offer.Offer, error) {
	var o offer.Offer
	err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		switch string(key) {
		case "id":
			v, err := d.Str()
			o.ID = v
			return err
		case "name":
			v, err := d.Str()
			o.Name = v
			return err
		case "description":
			v, err := d.Str()
			o.Description = v
			return err
		case "category":
			v, err := d.Str()
			o.Category = v
			return err
		case "discountPercentage":
			v, err := decodeDecimal(d)
			o.DiscountPercentage = v
			return err
		case "minQuantity":
			v, err := d.Int()
			o.MinQuantity = v
			return err
		case "validUntil":
			s, err := d.Str()
			if err != nil {
				return err
			}
			t, err := parseValidUntil(s)
			o.ValidUntil = t
			return err
		default:
			return d.Skip()
		}
	})
	return o, err
}

// decodeDecimal reads a JSON number (or string-quoted number) without going
// through float64, preserving the exact decimal representation.
func decodeDecimal(d *jx.Decoder) (decimal.Decimal, error) {
	n, err := d.Num()
	if err != nil {
		return decimal.Decimal{}, err
	}
	v, err := decimal.NewFromString(strings.Trim(string(n), `"`))
	if err != nil {
		return decimal.Decimal{}, errors.Wrap(err, "parse decimal")
	}
	return v, nil
}

func parseValidUntil(s string) (time.Time, error) {
	if t, err := time.Parse(validUntilFormat, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "parse validUntil %q", s)
	}
	return t, nil
}

func encodeOrder(p storefront.Payload) []byte {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("items")
	e.ArrStart()
	for _, it := range p.Items {
		e.ObjStart()
		e.FieldStart("id")
		e.Str(it.ID)
		e.FieldStart("quantity")
		e.Int(it.Quantity)
		e.ObjEnd()
	}
	e.ArrEnd()
	e.FieldStart("appliedOffers")
	e.ArrStart()
	for _, id := range p.AppliedOffers {
		e.Str(id)
	}
	e.ArrEnd()
	e.FieldStart("subtotal")
	e.Num(jx.Num(p.Subtotal.String()))
	e.FieldStart("discount")
	e.Num(jx.Num(p.Discount.String()))
	e.FieldStart("total")
	e.Num(jx.Num(p.Total.String()))
	e.ObjEnd()
	return e.Bytes()
}

func encodeItem(it catalog.Item) []byte {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("name")
	e.Str(it.Name)
	e.FieldStart("category")
	e.Str(it.Category)
	e.FieldStart("price")
	e.Num(jx.Num(it.Price.String()))
	e.FieldStart("stock")
	e.Int(it.Stock)
	e.ObjEnd()
	return e.Bytes()
}

func encodeOffer(o offer.Offer) []byte {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("name")
	e.Str(o.Name)
	e.FieldStart("description")
	e.Str(o.Description)
	e.FieldStart("category")
	e.Str(o.Category)
	e.FieldStart("discountPercentage")
	e.Num(jx.Num(o.DiscountPercentage.String()))
	e.FieldStart("minQuantity")
	e.Int(o.MinQuantity)
	e.FieldStart("validUntil")
	e.Str(o.ValidUntil.Format(validUntilFormat))
	e.ObjEnd()
	return e.Bytes()
}
