package domain

// Product is the reference the cart keeps for a purchasable item. The cart never
// mutates it.
type Product struct {
	ID              string          `json:"id"`
	Title           string          `json:"title"`
	Handle          string          `json:"handle"`
	Description     string          `json:"description,omitempty"`
	DescriptionHTML string          `json:"descriptionHtml,omitempty"`
	PriceRange      PriceRange      `json:"priceRange"`
	Images          []Image         `json:"images,omitempty"`
	Options         []ProductOption `json:"options,omitempty"`
	Variants        []Variant       `json:"variants,omitempty"`
	FirstVariantID  string          `json:"firstVariantId,omitempty"`
}

type PriceRange struct {
	MinVariantPrice Money `json:"minVariantPrice"`
	MaxVariantPrice Money `json:"maxVariantPrice"`
}

type Image struct {
	URL     string `json:"url"`
	AltText string `json:"altText,omitempty"`
	Width   int    `json:"width,omitempty"`
	Height  int    `json:"height,omitempty"`
}

type ProductOption struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

type SelectedOption struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type Variant struct {
	ID               string           `json:"id"`
	Title            string           `json:"title,omitempty"`
	AvailableForSale bool             `json:"availableForSale"`
	SelectedOptions  []SelectedOption `json:"selectedOptions,omitempty"`
	Price            *Money           `json:"price,omitempty"`
}

func (p Product) FindVariant(id string) (Variant, bool) {
	for _, v := range p.Variants {
		if v.ID == id {
			return v, true
		}
	}
	return Variant{}, false
}

func (p Product) FeaturedImage() (Image, bool) {
	if len(p.Images) == 0 {
		return Image{}, false
	}
	return p.Images[0], true
}

// Compact keeps what a cart line needs to render and price itself: identity,
// display fields, the price range, the first image and the chosen variant.
func (p Product) Compact(variantID string) Product {
	out := Product{
		ID:             p.ID,
		Title:          p.Title,
		Handle:         p.Handle,
		PriceRange:     p.PriceRange,
		FirstVariantID: p.FirstVariantID,
	}
	if img, ok := p.FeaturedImage(); ok {
		out.Images = []Image{img}
	}
	if v, ok := p.FindVariant(variantID); ok {
		out.Variants = []Variant{v}
	}
	return out
}

type ProductFilter struct {
	Query    string
	Sort     string // price_asc, price_desc, newest, title
	Page     int
	PageSize int
}
