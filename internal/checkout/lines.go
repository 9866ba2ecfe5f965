package checkout

import (
	"github.com/phenrril/storefront/internal/cart"
	"github.com/phenrril/storefront/internal/domain"
)

// Resolvable reports whether the line names a variant the checkout can buy. When
// the product lists its variants, the id must be one of them.
func Resolvable(l cart.LineItem) bool {
	if l.VariantID == "" {
		return false
	}
	if len(l.Product.Variants) == 0 {
		return true
	}
	_, ok := l.Product.FindVariant(l.VariantID)
	return ok
}

// BuildLines serializes cart lines for the checkout service. Lines without a
// resolvable variant are left out and complete is false. Quantities are clamped
// and never drop below one.
func BuildLines(lines []cart.LineItem) (out []domain.CheckoutLine, complete bool) {
	complete = true
	out = make([]domain.CheckoutLine, 0, len(lines))
	for _, l := range lines {
		if !Resolvable(l) {
			complete = false
			continue
		}
		out = append(out, domain.CheckoutLine{
			MerchandiseID: l.VariantID,
			Quantity:      max(1, cart.Clamp(l.Quantity)),
		})
	}
	return out, complete
}

// Ready is true when the cart has lines and every one can be checked out.
func Ready(lines []cart.LineItem) bool {
	if len(lines) == 0 {
		return false
	}
	_, complete := BuildLines(lines)
	return complete
}
