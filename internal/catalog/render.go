package catalog

import (
	"github.com/xenking/panel-storefront/internal/domain/product"
	"github.com/xenking/panel-storefront/internal/money"
)

// ActionKind names a card affordance.
type ActionKind string

const (
	// ActionDetail opens the product detail view.
	ActionDetail ActionKind = "detail"
	// ActionAddToCart adds one unit of the product to the cart.
	ActionAddToCart ActionKind = "add-to-cart"
)

// Action is an affordance attached to a card. It carries everything the
// triggered operation needs.
type Action struct {
	Kind      ActionKind
	ProductID string
	Name      string
	Price     int64
}

// Card is the display element for one product.
type Card struct {
	ID        string
	Name      string
	Price     int64
	PriceText string
	Badge     string
	Category  product.Category
	Specs     []product.Spec
	Detail    Action
	AddToCart Action
}

// Render converts the products matching filter into cards, preserving
// catalog order. Each call builds a fresh set.
func Render(products []product.Product, filter product.Category) []Card {
	filtered := product.Filter(products, filter)
	cards := make([]Card, len(filtered))
	for i, p := range filtered {
		cards[i] = Card{
			ID:        p.ID,
			Name:      p.Name,
			Price:     p.Price,
			PriceText: money.FormatInt(p.Price),
			Badge:     p.Badge,
			Category:  p.Category,
			Specs:     append([]product.Spec(nil), p.Specs...),
			Detail:    Action{Kind: ActionDetail, ProductID: p.ID},
			AddToCart: Action{Kind: ActionAddToCart, ProductID: p.ID, Name: p.Name, Price: p.Price},
		}
	}
	return cards
}
