package cart

import (
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/lumea-beauty/storefront/internal/domain/product"
)

// Persisted layout: a JSON array of lines, each embedding the full product
// snapshot. Prices are encoded as decimal strings to avoid float rounding.
//
// Decoding is strict — unknown keys, missing fields, or non-positive
// quantities make the whole value invalid. The store treats any decode error
// as "no cart", so a malformed or out-of-date payload degrades to an empty
// cart instead of crashing the request.

// EncodeCart serializes a cart to its persisted JSON form.
func EncodeCart(c Cart) []byte {
	var e jx.Encoder
	e.ArrStart()
	for _, l := range c {
		encodeLine(&e, l)
	}
	e.ArrEnd()
	return e.Bytes()
}

func encodeLine(e *jx.Encoder, l Line) {
	e.ObjStart()
	e.FieldStart("product")
	encodeProduct(e, l.Product)
	e.FieldStart("quantity")
	e.Int(l.Quantity)
	e.ObjEnd()
}

func encodeProduct(e *jx.Encoder, p product.Product) {
	e.ObjStart()
	e.FieldStart("id")
	e.Int64(p.ID)
	e.FieldStart("name")
	e.ObjStart()
	e.FieldStart("ko")
	e.Str(p.Name.Ko)
	e.FieldStart("en")
	e.Str(p.Name.En)
	e.ObjEnd()
	e.FieldStart("price")
	e.Str(p.Price.String())
	e.FieldStart("originalPrice")
	e.Str(p.OriginalPrice.String())
	e.FieldStart("onSale")
	e.Bool(p.OnSale)
	e.FieldStart("category")
	e.Str(p.Category)
	e.FieldStart("reviews")
	e.Int(p.Reviews)
	e.FieldStart("likes")
	e.Int(p.Likes)
	e.ObjEnd()
}

// DecodeCart parses the persisted JSON form back into a cart.
func DecodeCart(data []byte) (Cart, error) {
	d := jx.DecodeBytes(data)

	var (
		c    Cart
		seen = make(map[int64]struct{})
	)
	if err := d.Arr(func(d *jx.Decoder) error {
		l, err := decodeLine(d)
		if err != nil {
			return err
		}
		// At most one line per product ID; a payload violating that was
		// not written by this codec.
		if _, dup := seen[l.Product.ID]; dup {
			return errors.Errorf("duplicate line for product %d", l.Product.ID)
		}
		seen[l.Product.ID] = struct{}{}
		c = append(c, l)
		return nil
	}); err != nil {
		return nil, errors.Wrap(err, "decode cart")
	}
	return c, nil
}

func decodeLine(d *jx.Decoder) (Line, error) {
	var (
		l          Line
		hasProduct bool
	)
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "product":
			p, err := decodeProduct(d)
			if err != nil {
				return err
			}
			l.Product = p
			hasProduct = true
			return nil
		case "quantity":
			q, err := d.Int()
			if err != nil {
				return err
			}
			l.Quantity = q
			return nil
		default:
			return errors.Errorf("unknown line field %q", key)
		}
	}); err != nil {
		return l, err
	}
	if !hasProduct {
		return l, errors.New("line missing product")
	}
	if l.Quantity < 1 {
		return l, errors.Errorf("line quantity %d out of range", l.Quantity)
	}
	return l, nil
}

func decodeProduct(d *jx.Decoder) (product.Product, error) {
	var (
		p     product.Product
		hasID bool
	)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "id":
			p.ID, err = d.Int64()
			hasID = err == nil
		case "name":
			err = d.Obj(func(d *jx.Decoder, key string) error {
				var err error
				switch key {
				case "ko":
					p.Name.Ko, err = d.Str()
				case "en":
					p.Name.En, err = d.Str()
				default:
					return errors.Errorf("unknown name field %q", key)
				}
				return err
			})
		case "price":
			p.Price, err = decodeDecimal(d)
		case "originalPrice":
			p.OriginalPrice, err = decodeDecimal(d)
		case "onSale":
			p.OnSale, err = d.Bool()
		case "category":
			p.Category, err = d.Str()
		case "reviews":
			p.Reviews, err = d.Int()
		case "likes":
			p.Likes, err = d.Int()
		default:
			return errors.Errorf("unknown product field %q", key)
		}
		return err
	})
	if err != nil {
		return p, err
	}
	if !hasID {
		return p, errors.New("product missing id")
	}
	return p, nil
}

func decodeDecimal(d *jx.Decoder) (decimal.Decimal, error) {
	s, err := d.Str()
	if err != nil {
		return decimal.Zero, err
	}
	v, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, errors.Wrapf(err, "parse decimal %q", s)
	}
	return v, nil
}
