package catalog

import "github.com/hwstudio/product-catalog/internal/domain"

// Stock comparators for List. Compose with Descending for reverse order.

// ByID orders products by ascending id.
func ByID(a, b domain.Product) bool {
	return a.ID < b.ID
}

// ByPrice orders products by ascending price.
func ByPrice(a, b domain.Product) bool {
	return a.Price.LessThan(b.Price)
}

// ByRating orders products by ascending aggregate rating.
func ByRating(a, b domain.Product) bool {
	return a.Rating.Level() < b.Rating.Level()
}

// Descending reverses a comparator.
func Descending(less func(a, b domain.Product) bool) func(a, b domain.Product) bool {
	return func(a, b domain.Product) bool {
		return less(b, a)
	}
}
