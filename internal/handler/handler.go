// Package handler serves the storefront page and its JSON API.
package handler

import (
	"html/template"
	"net/http"
	"time"

	"github.com/xenking/panel-storefront/internal/money"
	"github.com/xenking/panel-storefront/internal/session"
	"github.com/xenking/panel-storefront/pkg/httpmiddleware"
	"github.com/xenking/panel-storefront/web"
)

// DefaultCookieName names the session cookie when Config leaves it empty.
const DefaultCookieName = "store_session"

const maxBodySize = 1 << 20

var templates = template.Must(template.New("").
	Funcs(template.FuncMap{
		"rupiah": money.FormatInt,
	}).ParseFS(web.Templates, "templates/*.html"))

// Config holds non-dependency configuration for the Handler.
type Config struct {
	CookieName string
	// SessionTTL sets the cookie lifetime; zero makes it a browser-session cookie.
	SessionTTL time.Duration
	// SecureCookie marks the session cookie Secure.
	SecureCookie bool
	// Limiter guards the coupon and checkout actions per live session. Nil
	// disables limiting.
	Limiter *httpmiddleware.Limiter
}

// Handler maps HTTP requests onto session operations.
type Handler struct {
	svc    *session.Service
	store  *session.Store
	cookie http.Cookie
	limit  httpmiddleware.Middleware
}

// New creates a Handler.
func New(cfg Config, svc *session.Service, store *session.Store) *Handler {
	if cfg.CookieName == "" {
		cfg.CookieName = DefaultCookieName
	}
	h := &Handler{
		svc:   svc,
		store: store,
		cookie: http.Cookie{
			Name:     cfg.CookieName,
			Path:     "/",
			MaxAge:   int(cfg.SessionTTL / time.Second),
			Secure:   cfg.SecureCookie,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		},
		limit: func(next http.Handler) http.Handler { return next },
	}
	if cfg.Limiter != nil {
		h.limit = httpmiddleware.RateLimit(cfg.Limiter, httpmiddleware.SessionKey(cfg.CookieName, h.live))
	}
	return h
}

// Register adds the page, form action and API routes to mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.index)
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(web.Static())))

	mux.HandleFunc("POST /actions/add", h.action(actionAdd))
	mux.HandleFunc("POST /actions/detail", h.action(actionDetail))
	mux.HandleFunc("POST /actions/detail-add", h.action(actionDetailAdd))
	mux.HandleFunc("POST /actions/detail-close", h.action(actionDetailClose))
	mux.HandleFunc("POST /actions/increase", h.action(actionIncrease))
	mux.HandleFunc("POST /actions/decrease", h.action(actionDecrease))
	mux.HandleFunc("POST /actions/remove", h.action(actionRemove))
	mux.HandleFunc("POST /actions/clear", h.action(actionClear))
	mux.Handle("POST /actions/coupon", h.limit(h.action(actionCoupon)))
	mux.Handle("POST /actions/checkout", h.limit(h.action(actionCheckout)))

	mux.HandleFunc("GET /api/products", h.listProducts)
	mux.HandleFunc("GET /api/products/{id}", h.getProduct)
	mux.HandleFunc("POST /api/detail/{id}", h.showDetail)
	mux.HandleFunc("POST /api/detail/add", h.addFromDetail)
	mux.HandleFunc("GET /api/cart", h.getCart)
	mux.HandleFunc("POST /api/cart/items", h.addItem)
	mux.HandleFunc("POST /api/cart/items/{id}/increase", h.increaseItem)
	mux.HandleFunc("POST /api/cart/items/{id}/decrease", h.decreaseItem)
	mux.HandleFunc("DELETE /api/cart/items/{id}", h.removeItem)
	mux.HandleFunc("POST /api/cart/clear", h.clearCart)
	mux.Handle("POST /api/cart/coupon", h.limit(http.HandlerFunc(h.applyCoupon)))
	mux.Handle("POST /api/checkout", h.limit(http.HandlerFunc(h.checkout)))
}

// session returns the visitor's session, starting one and setting the cookie
// when the request carries none or an expired one. Only mutations call it.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) *session.Session {
	if s, ok := h.lookup(r); ok {
		return s
	}
	s := h.store.Create()
	c := h.cookie
	c.Value = s.ID
	http.SetCookie(w, &c)
	return s
}

// lookup returns the live session named by the request cookie, if any.
func (h *Handler) lookup(r *http.Request) (*session.Session, bool) {
	c, err := r.Cookie(h.cookie.Name)
	if err != nil || c.Value == "" {
		return nil, false
	}
	return h.store.Get(c.Value)
}

func (h *Handler) live(id string) bool {
	_, ok := h.store.Get(id)
	return ok
}
