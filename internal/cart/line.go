package cart

import "github.com/phenrril/storefront/internal/domain"

// Key identifies a line: one line per (product, variant) pair.
type Key struct {
	ProductID string
	VariantID string
}

type LineItem struct {
	Product   domain.Product `json:"product"`
	VariantID string         `json:"variantId,omitempty"`
	Quantity  int            `json:"quantity"`
}

func (l LineItem) Key() Key {
	return Key{ProductID: l.Product.ID, VariantID: l.VariantID}
}

// UnitPrice is the product's minimum variant price.
func (l LineItem) UnitPrice() domain.Money {
	return l.Product.PriceRange.MinVariantPrice
}

func (l LineItem) Total() domain.Money {
	return l.UnitPrice().Times(l.Quantity)
}

// Variant returns the product variant the line points at, if the product lists it.
func (l LineItem) Variant() (domain.Variant, bool) {
	if l.VariantID == "" {
		return domain.Variant{}, false
	}
	return l.Product.FindVariant(l.VariantID)
}
