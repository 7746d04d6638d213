package catalog

import (
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/xenking/panel-storefront/internal/domain/product"
)

// Decode parses a catalog document of the form {"products": [...]}.
// Product ids may be JSON strings or numbers.
func Decode(data []byte) ([]product.Product, error) {
	var products []product.Product
	seen := make(map[string]struct{})

	d := jx.DecodeBytes(data)
	err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		if string(key) != "products" {
			return d.Skip()
		}
		return d.Arr(func(d *jx.Decoder) error {
			p, err := decodeProduct(d)
			if err != nil {
				return errors.Wrapf(err, "product %d", len(products))
			}
			if _, dup := seen[p.ID]; dup {
				return errors.Errorf("duplicate product id %q", p.ID)
			}
			seen[p.ID] = struct{}{}
			products = append(products, p)
			return nil
		})
	})
	if err != nil {
		return nil, errors.Wrap(err, "decode catalog")
	}
	return products, nil
}

func decodeProduct(d *jx.Decoder) (product.Product, error) {
	var p product.Product
	err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		var err error
		switch string(key) {
		case "id":
			p.ID, err = decodeID(d)
		case "name":
			p.Name, err = d.Str()
		case "price":
			p.Price, err = d.Int64()
		case "category":
			var s string
			if s, err = d.Str(); err == nil {
				p.Category, err = product.ParseCategory(s)
			}
		case "badge":
			p.Badge, err = optStr(d)
		case "description":
			p.Description, err = optStr(d)
		case "specs":
			p.Specs, err = decodeSpecs(d)
		default:
			err = d.Skip()
		}
		return err
	})
	if err != nil {
		return p, err
	}
	if p.ID == "" {
		return p, errors.New("missing id")
	}
	if p.Price < 0 {
		return p, errors.Errorf("product %s: negative price %d", p.ID, p.Price)
	}
	if p.Category == "" {
		return p, errors.Errorf("product %s: missing category", p.ID)
	}
	return p, nil
}

func decodeID(d *jx.Decoder) (string, error) {
	if d.Next() == jx.Number {
		n, err := d.Num()
		if err != nil {
			return "", err
		}
		return n.String(), nil
	}
	return d.Str()
}

func optStr(d *jx.Decoder) (string, error) {
	if d.Next() == jx.Null {
		return "", d.Null()
	}
	return d.Str()
}

func decodeSpecs(d *jx.Decoder) ([]product.Spec, error) {
	var specs []product.Spec
	err := d.Arr(func(d *jx.Decoder) error {
		var s product.Spec
		if err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
			var err error
			switch string(key) {
			case "icon":
				s.Icon, err = d.Str()
			case "text":
				s.Text, err = d.Str()
			default:
				err = d.Skip()
			}
			return err
		}); err != nil {
			return err
		}
		specs = append(specs, s)
		return nil
	})
	return specs, err
}

// DecodeSpecs parses a JSON array of {"icon","text"} objects.
func DecodeSpecs(data []byte) ([]product.Spec, error) {
	if len(data) == 0 {
		return nil, nil
	}
	specs, err := decodeSpecs(jx.DecodeBytes(data))
	if err != nil {
		return nil, errors.Wrap(err, "decode specs")
	}
	return specs, nil
}

// EncodeSpecs renders specs as a JSON array.
func EncodeSpecs(specs []product.Spec) []byte {
	var e jx.Encoder
	WriteSpecs(&e, specs)
	return e.Bytes()
}

// WriteSpecs writes specs as a JSON array.
func WriteSpecs(e *jx.Encoder, specs []product.Spec) {
	e.ArrStart()
	for _, s := range specs {
		e.ObjStart()
		e.FieldStart("icon")
		e.Str(s.Icon)
		e.FieldStart("text")
		e.Str(s.Text)
		e.ObjEnd()
	}
	e.ArrEnd()
}

// WriteProduct writes the full product, including description and specs.
func WriteProduct(e *jx.Encoder, p product.Product) {
	e.ObjStart()
	e.FieldStart("id")
	e.Str(p.ID)
	e.FieldStart("name")
	e.Str(p.Name)
	e.FieldStart("price")
	e.Int64(p.Price)
	e.FieldStart("category")
	e.Str(string(p.Category))
	if p.Badge != "" {
		e.FieldStart("badge")
		e.Str(p.Badge)
	}
	e.FieldStart("description")
	e.Str(p.Description)
	e.FieldStart("specs")
	WriteSpecs(e, p.Specs)
	e.ObjEnd()
}

// Encode renders products as a catalog document accepted by Decode.
func Encode(products []product.Product) []byte {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("products")
	e.ArrStart()
	for _, p := range products {
		WriteProduct(&e, p)
	}
	e.ArrEnd()
	e.ObjEnd()
	return e.Bytes()
}
