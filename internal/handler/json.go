package handler

import (
	"io"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/xenking/panel-storefront/internal/catalog"
	"github.com/xenking/panel-storefront/internal/session"
)

// errBadRequest marks malformed request bodies.
var errBadRequest = errors.New("bad request")

// readField decodes a JSON object body and returns the string value of field.
// Unknown fields are ignored; a missing field yields "".
func readField(r *http.Request, field string) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		return "", errors.Wrap(errBadRequest, err.Error())
	}
	if len(data) == 0 {
		return "", nil
	}

	var value string
	if err := jx.DecodeBytes(data).ObjBytes(func(d *jx.Decoder, key []byte) error {
		if string(key) != field {
			return d.Skip()
		}
		if d.Next() == jx.Number {
			n, err := d.Num()
			value = n.String()
			return err
		}
		v, err := d.Str()
		value = v
		return err
	}); err != nil {
		return "", errors.Wrap(errBadRequest, err.Error())
	}
	return value, nil
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, e *jx.Encoder) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(e.Bytes()); err != nil {
		zctx.From(r.Context()).Debug("Write response", zap.Error(err))
	}
}

func writeMessage(w http.ResponseWriter, r *http.Request, status int, message string) {
	var e jx.Encoder
	e.ObjStart()
	writeNotification(&e, session.Notification{Message: message, Alert: true})
	e.ObjEnd()
	writeJSON(w, r, status, &e)
}

// statusFor maps a notification to the response status: failures are 422.
func statusFor(n session.Notification) int {
	if n.IsError() {
		return http.StatusUnprocessableEntity
	}
	return http.StatusOK
}

func writeDecimal(e *jx.Encoder, d decimal.Decimal) {
	e.Num(jx.Num(d.String()))
}

// writeNotification writes the "notification" field; empty ones are omitted.
func writeNotification(e *jx.Encoder, n session.Notification) {
	if n.Empty() {
		return
	}
	e.FieldStart("notification")
	e.ObjStart()
	e.FieldStart("message")
	e.Str(n.Message)
	e.FieldStart("error")
	e.Bool(n.IsAlert())
	e.ObjEnd()
}

func writeCart(e *jx.Encoder, v session.CartView) {
	e.FieldStart("cart")
	e.ObjStart()
	e.FieldStart("lines")
	e.ArrStart()
	for _, l := range v.Lines {
		e.ObjStart()
		e.FieldStart("id")
		e.Str(l.ProductID)
		e.FieldStart("name")
		e.Str(l.Name)
		e.FieldStart("price")
		e.Int64(l.Price)
		e.FieldStart("priceText")
		e.Str(l.PriceText)
		e.FieldStart("quantity")
		e.Int(l.Quantity)
		e.FieldStart("total")
		writeDecimal(e, l.Total)
		e.FieldStart("totalText")
		e.Str(l.TotalText)
		e.ObjEnd()
	}
	e.ArrEnd()
	e.FieldStart("count")
	e.Int(v.Count)
	e.FieldStart("empty")
	e.Bool(v.Empty)
	e.FieldStart("subtotal")
	writeDecimal(e, v.Totals.Subtotal)
	e.FieldStart("discount")
	writeDecimal(e, v.Totals.Discount)
	e.FieldStart("total")
	writeDecimal(e, v.Totals.Total)
	e.FieldStart("subtotalText")
	e.Str(v.SubtotalText)
	e.FieldStart("discountText")
	e.Str(v.DiscountText)
	e.FieldStart("totalText")
	e.Str(v.TotalText)
	e.FieldStart("rate")
	writeDecimal(e, v.Rate)
	if v.CouponCode != "" {
		e.FieldStart("couponCode")
		e.Str(v.CouponCode)
	}
	e.ObjEnd()
}

func writeAction(e *jx.Encoder, a catalog.Action) {
	e.ObjStart()
	e.FieldStart("kind")
	e.Str(string(a.Kind))
	e.FieldStart("id")
	e.Str(a.ProductID)
	if a.Kind == catalog.ActionAddToCart {
		e.FieldStart("name")
		e.Str(a.Name)
		e.FieldStart("price")
		e.Int64(a.Price)
	}
	e.ObjEnd()
}

func writeCard(e *jx.Encoder, c catalog.Card) {
	e.ObjStart()
	e.FieldStart("id")
	e.Str(c.ID)
	e.FieldStart("name")
	e.Str(c.Name)
	e.FieldStart("price")
	e.Int64(c.Price)
	e.FieldStart("priceText")
	e.Str(c.PriceText)
	if c.Badge != "" {
		e.FieldStart("badge")
		e.Str(c.Badge)
	}
	e.FieldStart("category")
	e.Str(string(c.Category))
	e.FieldStart("specs")
	catalog.WriteSpecs(e, c.Specs)
	e.FieldStart("actions")
	e.ArrStart()
	writeAction(e, c.Detail)
	writeAction(e, c.AddToCart)
	e.ArrEnd()
	e.ObjEnd()
}
