package product

// Filter returns the products in category, preserving catalog order.
// CategoryAll returns a copy of the whole catalog.
func Filter(products []Product, category Category) []Product {
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if category == CategoryAll || p.Category == category {
			out = append(out, p)
		}
	}
	return out
}

// Find returns the product with the given id.
func Find(products []Product, id string) (Product, bool) {
	for _, p := range products {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}
