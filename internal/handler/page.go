package handler

import (
	"net/http"
	"net/url"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/panel-storefront/internal/catalog"
	"github.com/xenking/panel-storefront/internal/domain/product"
	"github.com/xenking/panel-storefront/internal/session"
)

const msgOrderSent = "Pesanan berhasil dikirim"

type tab struct {
	Category product.Category
	Label    string
	Active   bool
}

var tabLabels = map[product.Category]string{
	product.CategoryAll:      "Semua",
	product.CategoryPanel:    "Panel",
	product.CategoryReseller: "Reseller",
	product.CategoryVPS:      "VPS",
}

type pageData struct {
	Filter      product.Category
	Tabs        []tab
	Cards       []catalog.Card
	Cart        session.CartView
	CouponInput string
	Detail      *product.Product
	Notice      session.Notification
}

func tabs(active product.Category) []tab {
	all := append([]product.Category{product.CategoryAll}, product.Categories...)
	out := make([]tab, len(all))
	for i, c := range all {
		out[i] = tab{Category: c, Label: tabLabels[c], Active: c == active}
	}
	return out
}

// filterOf reads the category filter; unknown values show everything.
func filterOf(raw string) product.Category {
	filter, err := product.ParseFilter(raw)
	if err != nil {
		return product.CategoryAll
	}
	return filter
}

func (h *Handler) index(w http.ResponseWriter, r *http.Request) {
	filter := filterOf(r.URL.Query().Get("category"))
	st := session.EmptyState()
	if s, ok := h.lookup(r); ok {
		st = s.TakeState()
	}

	data := pageData{
		Filter:      filter,
		Tabs:        tabs(filter),
		Cards:       h.svc.Products(filter),
		Cart:        st.Cart,
		CouponInput: st.CouponInput,
		Detail:      st.Detail,
		Notice:      st.Notice,
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.ExecuteTemplate(w, "index", data); err != nil {
		zctx.From(r.Context()).Error("Render page", zap.Error(err))
	}
}

// actionFunc performs a form action and returns the notification to flash
// and, optionally, a location to redirect to instead of the page.
type actionFunc func(h *Handler, r *http.Request, s *session.Session) (session.Notification, string)

func actionAdd(h *Handler, r *http.Request, s *session.Session) (session.Notification, string) {
	return h.svc.AddToCart(r.Context(), s, r.PostFormValue("id")), "#cart"
}

func actionDetail(h *Handler, r *http.Request, s *session.Session) (session.Notification, string) {
	_, n, _ := h.svc.ShowDetail(r.Context(), s, r.PostFormValue("id"))
	return n, "#detail"
}

func actionDetailAdd(h *Handler, r *http.Request, s *session.Session) (session.Notification, string) {
	return h.svc.AddFromDetail(r.Context(), s), "#cart"
}

func actionDetailClose(h *Handler, _ *http.Request, s *session.Session) (session.Notification, string) {
	h.svc.CloseDetail(s)
	return session.Notification{}, "#products"
}

func actionIncrease(h *Handler, r *http.Request, s *session.Session) (session.Notification, string) {
	return h.svc.Increase(r.Context(), s, r.PostFormValue("id")), "#cart"
}

func actionDecrease(h *Handler, r *http.Request, s *session.Session) (session.Notification, string) {
	return h.svc.Decrease(r.Context(), s, r.PostFormValue("id")), "#cart"
}

func actionRemove(h *Handler, r *http.Request, s *session.Session) (session.Notification, string) {
	return h.svc.Remove(r.Context(), s, r.PostFormValue("id")), "#cart"
}

func actionClear(h *Handler, r *http.Request, s *session.Session) (session.Notification, string) {
	return h.svc.Clear(r.Context(), s), "#cart"
}

func actionCoupon(h *Handler, r *http.Request, s *session.Session) (session.Notification, string) {
	return h.svc.ApplyCoupon(r.Context(), s, r.PostFormValue("code")), "#cart"
}

// actionCheckout sends the browser to the delivery link when the sink
// produced one.
func actionCheckout(h *Handler, r *http.Request, s *session.Session) (session.Notification, string) {
	res, n := h.svc.Checkout(r.Context(), s, r.PostFormValue("name"))
	if n.IsError() {
		return n, "#cart"
	}
	if res.Delivery.URL != "" {
		return session.Notification{}, res.Delivery.URL
	}
	return session.Notification{Message: msgOrderSent}, "#cart"
}

// action adapts a form action: run it, flash its notification and redirect
// back to the page (post/redirect/get).
func (h *Handler) action(fn actionFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form", http.StatusBadRequest)
			return
		}
		s := h.session(w, r)
		n, target := fn(h, r, s)
		s.Flash(n)

		if target == "" || target[0] == '#' {
			target = "/?category=" + url.QueryEscape(string(filterOf(r.PostFormValue("category")))) + target
		}
		http.Redirect(w, r, target, http.StatusSeeOther)
	}
}
