package postgres

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/phenrril/storefront/internal/domain"
)

// Filas del espejo del catálogo. Los productos se reconstruyen con toDomain;
// nadie más lee estas tablas.
type productRow struct {
	ID              string `gorm:"primaryKey;size:191"`
	Handle          string `gorm:"uniqueIndex;size:191;not null"`
	Title           string `gorm:"not null"`
	Description     string
	DescriptionHTML string
	MinPrice        decimal.Decimal `gorm:"type:numeric(12,2)"`
	MaxPrice        decimal.Decimal `gorm:"type:numeric(12,2)"`
	Currency        string          `gorm:"size:3"`
	FirstVariantID  string          `gorm:"size:191"`
	Active          bool            `gorm:"default:true"`
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Variants []variantRow `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Images   []imageRow   `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Options  []optionRow  `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
}

func (productRow) TableName() string { return "products" }

type variantRow struct {
	ID               string `gorm:"primaryKey;size:191"`
	ProductID        string `gorm:"index;size:191;not null"`
	Position         int
	Title            string
	AvailableForSale bool
	SelectedOptions  string           `gorm:"type:text"`
	Price            *decimal.Decimal `gorm:"type:numeric(12,2)"`
}

func (variantRow) TableName() string { return "variants" }

type imageRow struct {
	ID        uint   `gorm:"primaryKey"`
	ProductID string `gorm:"index;size:191;not null"`
	Position  int
	URL       string `gorm:"not null"`
	AltText   string
	Width     int
	Height    int
}

func (imageRow) TableName() string { return "images" }

type optionRow struct {
	ID        uint   `gorm:"primaryKey"`
	ProductID string `gorm:"index;size:191;not null"`
	Position  int
	Name      string `gorm:"not null"`
	Values    string `gorm:"type:text"`
}

func (optionRow) TableName() string { return "options" }

type featuredRow struct {
	ID           uint   `gorm:"primaryKey"`
	ProductID    string `gorm:"uniqueIndex;size:191;not null"`
	DisplayOrder int    `gorm:"not null;default:0"`
	CreatedAt    time.Time
}

func (featuredRow) TableName() string { return "featured_products" }

func fromDomain(p domain.Product) productRow {
	cur := p.PriceRange.MinVariantPrice.CurrencyCode
	if cur == "" {
		cur = domain.DefaultCurrency
	}
	row := productRow{
		ID:              p.ID,
		Handle:          p.Handle,
		Title:           p.Title,
		Description:     p.Description,
		DescriptionHTML: p.DescriptionHTML,
		MinPrice:        p.PriceRange.MinVariantPrice.Amount,
		MaxPrice:        p.PriceRange.MaxVariantPrice.Amount,
		Currency:        cur,
		FirstVariantID:  p.FirstVariantID,
		Active:          true,
	}
	for i, v := range p.Variants {
		sel, _ := json.Marshal(v.SelectedOptions)
		vr := variantRow{
			ID:               v.ID,
			ProductID:        p.ID,
			Position:         i,
			Title:            v.Title,
			AvailableForSale: v.AvailableForSale,
			SelectedOptions:  string(sel),
		}
		if v.Price != nil {
			amt := v.Price.Amount
			vr.Price = &amt
		}
		row.Variants = append(row.Variants, vr)
	}
	for i, im := range p.Images {
		row.Images = append(row.Images, imageRow{ProductID: p.ID, Position: i, URL: im.URL, AltText: im.AltText, Width: im.Width, Height: im.Height})
	}
	for i, o := range p.Options {
		vals, _ := json.Marshal(o.Values)
		row.Options = append(row.Options, optionRow{ProductID: p.ID, Position: i, Name: o.Name, Values: string(vals)})
	}
	return row
}

func (r productRow) toDomain() domain.Product {
	p := domain.Product{
		ID:              r.ID,
		Title:           r.Title,
		Handle:          r.Handle,
		Description:     r.Description,
		DescriptionHTML: r.DescriptionHTML,
		PriceRange: domain.PriceRange{
			MinVariantPrice: domain.Money{Amount: r.MinPrice, CurrencyCode: r.Currency},
			MaxVariantPrice: domain.Money{Amount: r.MaxPrice, CurrencyCode: r.Currency},
		},
		FirstVariantID: r.FirstVariantID,
	}
	for _, im := range r.Images {
		p.Images = append(p.Images, domain.Image{URL: im.URL, AltText: im.AltText, Width: im.Width, Height: im.Height})
	}
	for _, o := range r.Options {
		opt := domain.ProductOption{Name: o.Name}
		_ = json.Unmarshal([]byte(o.Values), &opt.Values)
		p.Options = append(p.Options, opt)
	}
	for _, v := range r.Variants {
		dv := domain.Variant{ID: v.ID, Title: v.Title, AvailableForSale: v.AvailableForSale}
		_ = json.Unmarshal([]byte(v.SelectedOptions), &dv.SelectedOptions)
		if v.Price != nil {
			dv.Price = &domain.Money{Amount: *v.Price, CurrencyCode: r.Currency}
		}
		p.Variants = append(p.Variants, dv)
	}
	if p.FirstVariantID == "" && len(p.Variants) > 0 {
		p.FirstVariantID = p.Variants[0].ID
	}
	return p
}
