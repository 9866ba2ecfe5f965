package checkout

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/phenrril/storefront/internal/cart"
	"github.com/phenrril/storefront/internal/domain"
)

func prod(id string, variants ...string) domain.Product {
	p := domain.Product{ID: id, PriceRange: domain.PriceRange{MinVariantPrice: domain.MustMoney("10", "EUR")}}
	for _, v := range variants {
		p.Variants = append(p.Variants, domain.Variant{ID: v})
	}
	if len(variants) > 0 {
		p.FirstVariantID = variants[0]
	}
	return p
}

func TestBuildLinesExcludesUnresolvedVariants(t *testing.T) {
	// line 2 has no resolvable variant: empty id, and an id the product does not list
	for _, missing := range []string{"", "ghost"} {
		lines := []cart.LineItem{
			{Product: prod("x", "x-1"), VariantID: "x-1", Quantity: 2},
			{Product: prod("y", "y-1"), VariantID: missing, Quantity: 1},
		}
		out, complete := BuildLines(lines)
		assert.False(t, complete)
		assert.Equal(t, []domain.CheckoutLine{{MerchandiseID: "x-1", Quantity: 2}}, out)
		assert.False(t, Ready(lines))
	}
}

func TestBuildLinesClampsQuantity(t *testing.T) {
	lines := []cart.LineItem{
		{Product: prod("a", "a-1"), VariantID: "a-1", Quantity: 0},
		{Product: prod("b", "b-1"), VariantID: "b-1", Quantity: -3},
		{Product: prod("c", "c-1"), VariantID: "c-1", Quantity: 150},
		{Product: prod("d"), VariantID: "d-unlisted", Quantity: 7},
	}
	out, complete := BuildLines(lines)
	assert.True(t, complete)
	assert.Equal(t, []domain.CheckoutLine{
		{MerchandiseID: "a-1", Quantity: 1},
		{MerchandiseID: "b-1", Quantity: 1},
		{MerchandiseID: "c-1", Quantity: 99},
		{MerchandiseID: "d-unlisted", Quantity: 7},
	}, out)
}

func TestReady(t *testing.T) {
	assert.False(t, Ready(nil))
	assert.True(t, Ready([]cart.LineItem{{Product: prod("x", "x-1"), VariantID: "x-1", Quantity: 1}}))
}
