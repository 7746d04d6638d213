package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/xenking/panel-storefront/internal/catalog"
	"github.com/xenking/panel-storefront/internal/domain/product"
	"github.com/xenking/panel-storefront/internal/session"
)

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	filter, err := product.ParseFilter(r.URL.Query().Get("category"))
	if err != nil {
		writeMessage(w, r, http.StatusBadRequest, err.Error())
		return
	}

	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("category")
	e.Str(string(filter))
	e.FieldStart("products")
	e.ArrStart()
	for _, c := range h.svc.Products(filter) {
		writeCard(&e, c)
	}
	e.ArrEnd()
	e.ObjEnd()
	writeJSON(w, r, http.StatusOK, &e)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Product(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeLookupError(w, r, err)
		return
	}

	var e jx.Encoder
	catalog.WriteProduct(&e, p)
	writeJSON(w, r, http.StatusOK, &e)
}

func (h *Handler) writeLookupError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, product.ErrNotFound) {
		writeMessage(w, r, http.StatusNotFound, "Produk tidak ditemukan")
		return
	}
	writeMessage(w, r, http.StatusServiceUnavailable, "Gagal memuat produk, coba lagi")
}

func (h *Handler) showDetail(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	p, n, ok := h.svc.ShowDetail(r.Context(), s, r.PathValue("id"))

	var e jx.Encoder
	e.ObjStart()
	if ok {
		e.FieldStart("product")
		catalog.WriteProduct(&e, p)
	}
	writeNotification(&e, n)
	e.ObjEnd()
	writeJSON(w, r, statusFor(n), &e)
}

func (h *Handler) addFromDetail(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	h.writeMutation(w, r, s, h.svc.AddFromDetail(r.Context(), s))
}

// getCart reads without starting a session; visitors without one see an
// empty cart.
func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	view := session.EmptyState().Cart
	if s, ok := h.lookup(r); ok {
		view = s.Cart()
	}
	var e jx.Encoder
	e.ObjStart()
	writeCart(&e, view)
	e.ObjEnd()
	writeJSON(w, r, http.StatusOK, &e)
}

func (h *Handler) addItem(w http.ResponseWriter, r *http.Request) {
	id, err := readField(r, "id")
	if err != nil || id == "" {
		writeMessage(w, r, http.StatusBadRequest, "id required")
		return
	}
	s := h.session(w, r)
	h.writeMutation(w, r, s, h.svc.AddToCart(r.Context(), s, id))
}

func (h *Handler) increaseItem(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	h.writeMutation(w, r, s, h.svc.Increase(r.Context(), s, r.PathValue("id")))
}

func (h *Handler) decreaseItem(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	h.writeMutation(w, r, s, h.svc.Decrease(r.Context(), s, r.PathValue("id")))
}

func (h *Handler) removeItem(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	h.writeMutation(w, r, s, h.svc.Remove(r.Context(), s, r.PathValue("id")))
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	h.writeMutation(w, r, s, h.svc.Clear(r.Context(), s))
}

func (h *Handler) applyCoupon(w http.ResponseWriter, r *http.Request) {
	code, err := readField(r, "code")
	if err != nil {
		writeMessage(w, r, http.StatusBadRequest, "invalid body")
		return
	}
	s := h.session(w, r)
	h.writeMutation(w, r, s, h.svc.ApplyCoupon(r.Context(), s, code))
}

func (h *Handler) checkout(w http.ResponseWriter, r *http.Request) {
	name, err := readField(r, "name")
	if err != nil {
		writeMessage(w, r, http.StatusBadRequest, "invalid body")
		return
	}
	s := h.session(w, r)
	res, n := h.svc.Checkout(r.Context(), s, name)

	var e jx.Encoder
	e.ObjStart()
	if !n.IsError() {
		e.FieldStart("message")
		e.Str(res.Message)
		if res.Delivery.URL != "" {
			e.FieldStart("url")
			e.Str(res.Delivery.URL)
		}
	}
	writeCart(&e, s.Cart())
	writeNotification(&e, n)
	e.ObjEnd()
	writeJSON(w, r, statusFor(n), &e)
}

// writeMutation responds with the recomputed cart and the notification.
func (h *Handler) writeMutation(w http.ResponseWriter, r *http.Request, s *session.Session, n session.Notification) {
	var e jx.Encoder
	e.ObjStart()
	writeCart(&e, s.Cart())
	writeNotification(&e, n)
	e.ObjEnd()
	writeJSON(w, r, statusFor(n), &e)
}
