package commerce

import (
	"context"
	"net/url"
	"strconv"

	"github.com/phenrril/storefront/internal/domain"
)

type productList struct {
	Products []domain.Product `json:"products"`
}

type productEnvelope struct {
	Product *domain.Product `json:"product"`
}

func (c *Client) List(ctx context.Context, f domain.ProductFilter) ([]domain.Product, error) {
	q := url.Values{}
	if f.Query != "" {
		q.Set("query", f.Query)
	}
	if f.Sort != "" {
		q.Set("sort", f.Sort)
	}
	if f.PageSize > 0 {
		q.Set("first", strconv.Itoa(f.PageSize))
	}
	if f.Page > 1 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	var out productList
	if err := c.do(ctx, "GET", "/products", q, "", nil, &out); err != nil {
		return nil, err
	}
	for i := range out.Products {
		normalize(&out.Products[i])
	}
	return out.Products, nil
}

func (c *Client) ByHandle(ctx context.Context, handle string) (*domain.Product, error) {
	var out productEnvelope
	if err := c.do(ctx, "GET", "/products/"+url.PathEscape(handle), nil, "", nil, &out); err != nil {
		return nil, err
	}
	if out.Product == nil {
		return nil, domain.ErrNotFound
	}
	normalize(out.Product)
	return out.Product, nil
}

// normalize fills fields the backend may leave out: the plain description, the
// first variant and a price range currency.
func normalize(p *domain.Product) {
	if p.Description == "" && p.DescriptionHTML != "" {
		p.Description = PlainText(p.DescriptionHTML)
	}
	if p.FirstVariantID == "" && len(p.Variants) > 0 {
		p.FirstVariantID = p.Variants[0].ID
	}
	if p.PriceRange.MinVariantPrice.CurrencyCode == "" {
		p.PriceRange.MinVariantPrice.CurrencyCode = domain.DefaultCurrency
	}
	if p.PriceRange.MaxVariantPrice.CurrencyCode == "" {
		p.PriceRange.MaxVariantPrice.CurrencyCode = p.PriceRange.MinVariantPrice.CurrencyCode
	}
}
