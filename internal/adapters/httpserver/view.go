package httpserver

import (
	"html/template"

	"github.com/phenrril/storefront/internal/cart"
	"github.com/phenrril/storefront/internal/checkout"
	"github.com/phenrril/storefront/internal/domain"
	"github.com/phenrril/storefront/internal/variant"
)

var templateFuncs = template.FuncMap{
	"money": func(m domain.Money) string { return m.String() },
}

type optionView struct {
	Name  string `json:"name"`
	Value string `json:"value"`
	Kind  string `json:"kind"`
}

type lineView struct {
	ProductID    string        `json:"productId"`
	Handle       string        `json:"handle"`
	Title        string        `json:"title"`
	VariantID    string        `json:"variantId,omitempty"`
	VariantTitle string        `json:"variantTitle,omitempty"`
	Options      []optionView  `json:"options,omitempty"`
	Image        *domain.Image `json:"image,omitempty"`
	Quantity     int           `json:"quantity"`
	UnitPrice    domain.Money  `json:"unitPrice"`
	Total        domain.Money  `json:"total"`
	Resolved     bool          `json:"resolved"`
}

type cartView struct {
	Lines    []lineView   `json:"lines"`
	Count    int          `json:"count"`
	Subtotal domain.Money `json:"subtotal"`
	Ready    bool         `json:"checkoutReady"`
}

// cartViewOf renders the store in insertion order. Option names are tagged as
// size or color by the classifier, best effort.
func cartViewOf(store *cart.Store, c variant.Classifier) cartView {
	lines := store.Lines()
	v := cartView{
		Lines:    make([]lineView, 0, len(lines)),
		Count:    store.Count(),
		Subtotal: store.Subtotal(),
		Ready:    checkout.Ready(lines),
	}
	for _, l := range lines {
		lv := lineView{
			ProductID: l.Product.ID,
			Handle:    l.Product.Handle,
			Title:     l.Product.Title,
			VariantID: l.VariantID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice(),
			Total:     l.Total(),
			Resolved:  checkout.Resolvable(l),
		}
		if img, ok := l.Product.FeaturedImage(); ok {
			lv.Image = &img
		}
		if vr, ok := l.Variant(); ok {
			lv.VariantTitle = vr.Title
			for _, so := range vr.SelectedOptions {
				lv.Options = append(lv.Options, optionView{Name: so.Name, Value: so.Value, Kind: c.Classify(so.Name).String()})
			}
		}
		v.Lines = append(v.Lines, lv)
	}
	return v
}

type productView struct {
	domain.Product
	RequiresSelection bool                   `json:"requiresSelection"`
	SizeOptions       []domain.ProductOption `json:"sizeOptions,omitempty"`
	ColorOptions      []domain.ProductOption `json:"colorOptions,omitempty"`
	OtherOptions      []domain.ProductOption `json:"otherOptions,omitempty"`
	SelectedVariantID string                 `json:"selectedVariantId,omitempty"`
	CanAddToCart      bool                   `json:"canAddToCart"`
}

func productViewOf(p domain.Product, c variant.Classifier, sel variant.Selection) productView {
	g := variant.Classify(p, c)
	pv := productView{
		Product:           p,
		RequiresSelection: variant.RequiresSelection(p),
		SizeOptions:       g.Size,
		ColorOptions:      g.Color,
		OtherOptions:      g.Other,
	}
	if id, ok := variant.Resolve(p, sel); ok {
		pv.SelectedVariantID = id
		pv.CanAddToCart = true
	}
	return pv
}
