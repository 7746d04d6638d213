package product

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// ErrUnknownCategory is returned when a category filter names no known category.
var ErrUnknownCategory = errors.New("unknown category")

// Category groups products on the storefront tabs.
type Category string

// Known categories. CategoryAll is the filter sentinel and never a product's category.
const (
	CategoryAll      Category = "all"
	CategoryPanel    Category = "panel"
	CategoryReseller Category = "reseller"
	CategoryVPS      Category = "vps"
)

// Categories lists the product categories in tab order.
var Categories = []Category{CategoryPanel, CategoryReseller, CategoryVPS}

// ParseCategory validates a product category. The "all" sentinel is rejected.
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories {
		if string(c) == s {
			return c, nil
		}
	}
	return "", errors.Wrapf(ErrUnknownCategory, "%q", s)
}

// ParseFilter validates a catalog filter. Empty input selects all products.
func ParseFilter(s string) (Category, error) {
	if s == "" || s == string(CategoryAll) {
		return CategoryAll, nil
	}
	return ParseCategory(s)
}

// Spec is a single highlighted feature of a product.
type Spec struct {
	Icon string
	Text string
}

// Product represents a catalog item available for purchase. Price is in the
// smallest currency unit.
type Product struct {
	ID          string
	Name        string
	Price       int64
	Category    Category
	Badge       string
	Description string
	Specs       []Spec
}

// NotFoundError indicates a requested product does not exist.
type NotFoundError struct {
	ProductID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("product %s not found", e.ProductID)
}

// Unwrap makes errors.Is(err, ErrNotFound) hold.
func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// Repository lists the product catalog in display order.
type Repository interface {
	List(ctx context.Context) ([]Product, error)
}
